package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const reportText = "Lipid panel\nLDL high 190\nRepeat lipid panel in 6 weeks\nHDL low 30"

func TestNormalizeNilUsesFallbackEverywhere(t *testing.T) {
	got := Normalize(nil, reportText)
	fb := ExtractFromFreeText(reportText)

	assert.Equal(t, fb, got)
}

func TestNormalizeKeepsNonEmptyLists(t *testing.T) {
	payload := map[string]any{
		"mainFindings": []any{"LDL markedly raised", "", nil, "HDL reduced", false, 0.0},
		"summary":      "Dyslipidemia",
	}

	got := NormalizePayload(payload, reportText)

	assert.Equal(t, []string{"LDL markedly raised", "HDL reduced"}, got.MainFindings)
	assert.Equal(t, "Dyslipidemia", got.Summary)
}

func TestNormalizePerFieldFallback(t *testing.T) {
	payload := map[string]any{
		"mainFindings": []any{"LDL markedly raised"},
	}
	fb := ExtractFromFreeText(reportText)

	got := NormalizePayload(payload, reportText)

	assert.Equal(t, []string{"LDL markedly raised"}, got.MainFindings)
	assert.Equal(t, fb.DoctorChecks, got.DoctorChecks)
	assert.Equal(t, fb.AbnormalValues, got.AbnormalValues)
	assert.Equal(t, fb.Summary, got.Summary)
	assert.Equal(t, fb.UrgencyReason, got.UrgencyReason)
	assert.Equal(t, fb.UrgencyLevel, got.UrgencyLevel)
}

func TestNormalizeAbnormalValueAliases(t *testing.T) {
	payload := map[string]any{
		"abnormalValues": []any{
			map[string]any{"name": "Hemoglobin", "value": 9.2, "severity": "Low", "referenceRange": "13-17 g/dL"},
			map[string]any{"testName": "TSH", "name": "ignored", "status": "High", "severity": "ignored"},
			map[string]any{"referenceRange": "only a range"},
			"not an object",
		},
	}

	got := NormalizePayload(payload, reportText)

	require.Len(t, got.AbnormalValues, 2)
	assert.Equal(t, AbnormalValue{TestName: "Hemoglobin", Value: "9.2", ReferenceRange: "13-17 g/dL", Status: "Low"}, got.AbnormalValues[0])
	assert.Equal(t, AbnormalValue{TestName: "TSH", Status: "High"}, got.AbnormalValues[1])
}

func TestNormalizeAbnormalValuesAllFilteredFallsBack(t *testing.T) {
	payload := map[string]any{
		"abnormalValues": []any{map[string]any{"referenceRange": "1-2"}},
	}

	got := NormalizePayload(payload, reportText)

	assert.Equal(t, ExtractFromFreeText(reportText).AbnormalValues, got.AbnormalValues)
}

func TestNormalizeUrgencyAliases(t *testing.T) {
	cases := []struct {
		name    string
		payload map[string]any
		level   UrgencyLevel
		reason  string
	}{
		{"level", map[string]any{"urgencyLevel": "moderate", "urgencyReason": "borderline lipids"}, UrgencyMedium, "borderline lipids"},
		{"alias", map[string]any{"urgency": "CRITICAL", "urgencyExplanation": "K+ 6.8"}, UrgencyHigh, "K+ 6.8"},
		{"level wins", map[string]any{"urgencyLevel": "low", "urgency": "high"}, UrgencyLow, defaultUrgencyReason},
		{"fallback", map[string]any{}, UrgencyHigh, defaultUrgencyReason},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := NormalizePayload(tc.payload, reportText)
			assert.Equal(t, tc.level, got.UrgencyLevel)
			assert.Equal(t, tc.reason, got.UrgencyReason)
		})
	}
}

func TestNormalizeDoesNotAliasInput(t *testing.T) {
	raw := &RawAnalysis{MainFindings: []string{"a", "b"}}

	got := Normalize(raw, "")
	got.MainFindings[0] = "changed"

	assert.Equal(t, "a", raw.MainFindings[0])
}

func TestNormalizeDemoAgainstEmptyText(t *testing.T) {
	got := Normalize(DemoRaw(), "")

	assert.Equal(t, UrgencyMedium, got.UrgencyLevel)
	assert.Len(t, got.MainFindings, 3)
	assert.Len(t, got.DoctorChecks, 2)
	assert.Equal(t, "Needs clinical validation", got.AbnormalValues[0].Status)
}
