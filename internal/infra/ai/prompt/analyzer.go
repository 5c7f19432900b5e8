package prompt

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/bryanwahyu/healthsync/internal/domain/analysis"
)

// LocalAnalyzer answers like a provider would, but derives the JSON from the
// report text itself. It is used for offline runs where no key is available.
type LocalAnalyzer struct{}

// AnalyzeReport never calls out; it returns the schema JSON built from the
// free-text extraction of reportText.
func (LocalAnalyzer) AnalyzeReport(_ context.Context, reportText string, _ analysis.PatientInfo) (string, error) {
	return AnalyzeReportText(reportText)
}

// AnalyzeReportText marshals the free-text extraction into the response schema.
func AnalyzeReportText(reportText string) (string, error) {
	type output struct {
		Summary        string                   `json:"summary"`
		MainFindings   []string                 `json:"mainFindings"`
		AbnormalValues []analysis.AbnormalValue `json:"abnormalValues"`
		DoctorChecks   []string                 `json:"doctorChecks"`
		UrgencyLevel   string                   `json:"urgencyLevel"`
		UrgencyReason  string                   `json:"urgencyReason"`
	}

	fb := analysis.ExtractFromFreeText(reportText)
	out := output{
		Summary:        fb.Summary,
		MainFindings:   fb.MainFindings,
		AbnormalValues: fb.AbnormalValues,
		DoctorChecks:   fb.DoctorChecks,
		UrgencyLevel:   string(fb.UrgencyLevel),
		UrgencyReason:  fb.UrgencyReason,
	}
	// keep arrays as [] rather than null in the payload
	if out.MainFindings == nil {
		out.MainFindings = []string{}
	}
	if out.DoctorChecks == nil {
		out.DoctorChecks = []string{}
	}

	b, err := json.Marshal(out)
	if err != nil {
		return "", fmt.Errorf("failed to marshal local analysis: %w", err)
	}
	return string(b), nil
}
