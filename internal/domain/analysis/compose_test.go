package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func intPtr(i int) *int { return &i }

func TestComposeText(t *testing.T) {
	a := StructuredAnalysis{
		Summary:      "Mild anemia.",
		MainFindings: []string{"Hemoglobin below range", "MCV normal"},
		AbnormalValues: []AbnormalValue{
			{TestName: "Hemoglobin", Value: "11.2 g/dL", ReferenceRange: "13-17", Status: "Low"},
			{Status: "High"},
		},
		DoctorChecks:  []string{"Iron studies"},
		UrgencyLevel:  UrgencyMedium,
		UrgencyReason: "Symptomatic anemia",
	}

	got := ComposeText(a, PatientInfo{Name: "Rakesh Sharma", Age: intPtr(42)})

	want := `AI Analysis

Patient: Rakesh Sharma (Age: 42)

Main Findings:
1. Hemoglobin below range
2. MCV normal

Abnormal Values:
1. Hemoglobin: 11.2 g/dL — Low (Ref: 13-17)
2. Item 2 — High

Doctor Should Check:
1. Iron studies

Urgency Level: Medium — Symptomatic anemia

Summary:
Mild anemia.`
	assert.Equal(t, want, got)
}

func TestComposeTextPlaceholders(t *testing.T) {
	got := ComposeText(StructuredAnalysis{}, PatientInfo{})

	want := `AI Analysis

Patient: Patient (Age: N/A)

Main Findings:
1. Main findings were limited due to report text quality

Abnormal Values:
1. No clear abnormal values detected from extracted text

Doctor Should Check:
1. Correlate findings with symptoms and prior reports

Urgency Level: Medium

Summary:
Clinical review recommended.`
	assert.Equal(t, want, got)
}

func TestComposeTextAgeZero(t *testing.T) {
	got := ComposeText(StructuredAnalysis{}, PatientInfo{Name: "Baby", Age: intPtr(0)})
	assert.Contains(t, got, "Patient: Baby (Age: 0)")
}

func TestComposeTextIsPure(t *testing.T) {
	a := Normalize(nil, "Glucose elevated 160\nRepeat fasting glucose")
	p := PatientInfo{Name: "A", Age: intPtr(30)}

	assert.Equal(t, ComposeText(a, p), ComposeText(a, p))
}

func TestComposeRoundTripUrgency(t *testing.T) {
	for _, lvl := range []UrgencyLevel{UrgencyLow, UrgencyMedium, UrgencyHigh} {
		t.Run(string(lvl), func(t *testing.T) {
			a := Normalize(&RawAnalysis{
				Summary:       "Routine panel.",
				MainFindings:  []string{"Sodium within range"},
				DoctorChecks:  []string{"Correlate clinically"},
				Urgency:       string(lvl),
				UrgencyReason: "Per reviewer",
			}, "")

			text := ComposeText(a, PatientInfo{Name: "Sam"})

			assert.Equal(t, lvl, ExtractFromFreeText(text).UrgencyLevel)
		})
	}
}
