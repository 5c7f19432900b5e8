package prompt

import (
	"fmt"
	"strconv"

	"github.com/bryanwahyu/healthsync/internal/domain/analysis"
)

// GetSystemPrompt provides strict directions and schema for JSON output.
func GetSystemPrompt() string {
	return `You are a clinical lab report analyzer.
Return STRICT JSON only. Do not include markdown.

Required response schema:
{
  "summary": "short 1-2 sentence summary",
  "mainFindings": ["finding 1", "finding 2"],
  "abnormalValues": [
    {
      "testName": "name of parameter",
      "value": "reported value",
      "referenceRange": "range if present",
      "status": "High|Low|Critical|Abnormal|Borderline"
    }
  ],
  "doctorChecks": ["what doctor should verify"],
  "urgencyLevel": "Low|Medium|High",
  "urgencyReason": "short reason"
}

Rules:
- Focus on clinically important findings first.
- Extract explicit abnormal flags from report text.
- If data is unclear, state uncertainty but still provide best extraction.
- Keep findings concise and actionable.`
}

// GetUserPrompt wraps the extracted report text with the patient line.
func GetUserPrompt(reportText string, patient analysis.PatientInfo) string {
	age := "N/A"
	if patient.Age != nil {
		age = strconv.Itoa(*patient.Age)
	}
	name := patient.Name
	if name == "" {
		name = "Patient"
	}
	return fmt.Sprintf("Patient: %s (Age: %s)\n\nLab Report:\n%s", name, age, reportText)
}

// GetPrompt joins system and user prompt for providers without a system role.
func GetPrompt(reportText string, patient analysis.PatientInfo) string {
	return GetSystemPrompt() + "\n\n" + GetUserPrompt(reportText, patient)
}
