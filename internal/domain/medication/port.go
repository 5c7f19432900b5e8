package medication

import (
	"context"
	"errors"
)

var (
	ErrNoMedicines = errors.New("prescription has no medicines")
	ErrNotFound    = errors.New("reminder not found")
)

// Repository port (prescriptions and reminders of a patient)
type Repository interface {
	SavePrescription(ctx context.Context, p *Prescription) error
	ListPrescriptions(ctx context.Context, patientID string) ([]*Prescription, error)
	// FindReminder looks a reminder up by patient and medicine name; it
	// returns ErrNotFound when there is none.
	FindReminder(ctx context.Context, patientID, medicineName string) (*Reminder, error)
	SaveReminder(ctx context.Context, r *Reminder) error
	ListReminders(ctx context.Context, patientID string) ([]*Reminder, error)
}
