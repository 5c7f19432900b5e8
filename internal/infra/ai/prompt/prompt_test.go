package prompt

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/healthsync/internal/domain/analysis"
)

func TestGetUserPrompt(t *testing.T) {
	age := 51
	got := GetUserPrompt("LDL 190", analysis.PatientInfo{Name: "Ana", Age: &age})
	assert.Equal(t, "Patient: Ana (Age: 51)\n\nLab Report:\nLDL 190", got)

	got = GetUserPrompt("LDL 190", analysis.PatientInfo{})
	assert.Contains(t, got, "Patient: Patient (Age: N/A)")
}

func TestLocalAnalyzerRoundTrip(t *testing.T) {
	text := "Hemoglobin High 9.2, please monitor"

	raw, err := LocalAnalyzer{}.AnalyzeReport(context.Background(), text, analysis.PatientInfo{})
	require.NoError(t, err)

	payload := analysis.ParsePayload(raw)
	require.NotNil(t, payload)
	assert.Equal(t, analysis.ExtractFromFreeText(text), analysis.NormalizePayload(payload, text))
}
