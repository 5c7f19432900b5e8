package failures

import (
	"context"
)

// Repository defines persistence for failed analyses
type Repository interface {
	Save(ctx context.Context, f *Failure) error
	ListByPatient(ctx context.Context, patientID string, limit int) ([]*Failure, error)
}
