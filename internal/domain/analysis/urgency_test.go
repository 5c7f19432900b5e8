package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeUrgency(t *testing.T) {
	cases := []struct {
		in   string
		want UrgencyLevel
	}{
		{"", UrgencyLow},
		{"High", UrgencyHigh},
		{"CRITICAL potassium", UrgencyHigh},
		{"urgent follow-up", UrgencyHigh},
		{"Moderate", UrgencyMedium},
		{"medium", UrgencyMedium},
		{"keep a watch on it", UrgencyMedium},
		{"routine", UrgencyLow},
		{"Low", UrgencyLow},
		// high keywords win over medium ones
		{"moderate but critical", UrgencyHigh},
		// substring containment, not whole words
		{"highlight", UrgencyHigh},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, NormalizeUrgency(tc.in))
		})
	}
}

func TestNormalizeUrgencyIsTotalAndDeterministic(t *testing.T) {
	inputs := []string{"", " ", "ñandú", "12345", "\x00\x01", "Medium-High", "lower"}
	valid := map[UrgencyLevel]bool{UrgencyLow: true, UrgencyMedium: true, UrgencyHigh: true}
	for _, in := range inputs {
		got := NormalizeUrgency(in)
		assert.True(t, valid[got], "input %q gave %q", in, got)
		assert.Equal(t, got, NormalizeUrgency(in))
	}
}

func TestNormalizeUrgencyIdempotent(t *testing.T) {
	for _, lvl := range []UrgencyLevel{UrgencyLow, UrgencyMedium, UrgencyHigh} {
		assert.Equal(t, lvl, NormalizeUrgency(string(lvl)))
	}
}
