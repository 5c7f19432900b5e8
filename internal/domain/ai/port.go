package ai

import (
	"context"

	"github.com/bryanwahyu/healthsync/internal/domain/analysis"
)

// Client sends one lab report to a text-generation provider and returns the
// raw response text. Implementations make a single request with no retry.
type Client interface {
	AnalyzeReport(ctx context.Context, reportText string, patient analysis.PatientInfo) (string, error)
}
