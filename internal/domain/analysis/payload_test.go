package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePayload(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want map[string]any
	}{
		{"fenced", "```json\n{\"summary\":\"x\"}\n```", map[string]any{"summary": "x"}},
		{"upper fence", "```JSON\n{\"summary\":\"x\"}```", map[string]any{"summary": "x"}},
		{"bare fence", "```\n{\"a\":true}\n```", map[string]any{"a": true}},
		{"surrounded", "prefix {\"a\":1} suffix", map[string]any{"a": float64(1)}},
		{"nested", "Here you go: {\"a\":{\"b\":[1,2]}} thanks", map[string]any{"a": map[string]any{"b": []any{float64(1), float64(2)}}}},
		{"no json", "no json here", nil},
		{"empty", "", nil},
		{"broken", "{\"a\": ", nil},
		{"array", "[1,2,3]", nil},
		{"null", "null", nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ParsePayload(tc.in))
		})
	}
}
