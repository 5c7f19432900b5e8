package analysis

// DemoRaw is the canned response used when the AI provider is not configured
// or has run out of quota. It is normalized against the report text like any
// real response.
func DemoRaw() *RawAnalysis {
	return &RawAnalysis{
		Summary: "Demo mode response generated because AI service is unavailable.",
		MainFindings: []string{
			"Lab report uploaded and text extraction completed",
			"Potential abnormalities are flagged based on extracted text patterns",
			"Professional review is required for diagnosis",
		},
		AbnormalValues: []AbnormalValue{
			{TestName: "Extracted report values", Status: "Needs clinical validation"},
		},
		DoctorChecks: []string{
			"Correlate flagged items with patient symptoms",
			"Confirm values against original lab document",
		},
		Urgency:       string(UrgencyMedium),
		UrgencyReason: "Automatic fallback mode cannot provide full clinical confidence.",
	}
}
