package medications

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/bryanwahyu/healthsync/internal/application"
	"github.com/bryanwahyu/healthsync/internal/domain/analysis"
	domain "github.com/bryanwahyu/healthsync/internal/domain/medication"
)

// Service implements medication tracking for patients.
type Service struct {
	Repo   domain.Repository
	Events analysis.Publisher
	Clock  application.Clock
	Log    zerolog.Logger
}

type AddPrescriptionCommand struct {
	PatientID string
	DoctorID  string
	Medicines []domain.Medicine
}

// AddPrescription stores the medicines that carry a name.
func (s *Service) AddPrescription(ctx context.Context, cmd AddPrescriptionCommand) (*domain.Prescription, error) {
	meds := make([]domain.Medicine, 0, len(cmd.Medicines))
	for _, m := range cmd.Medicines {
		if strings.TrimSpace(m.Name) == "" && strings.TrimSpace(m.DrugName) == "" {
			continue
		}
		meds = append(meds, m)
	}
	if len(meds) == 0 {
		return nil, domain.ErrNoMedicines
	}

	p := &domain.Prescription{
		ID:        uuid.New().String(),
		PatientID: cmd.PatientID,
		DoctorID:  cmd.DoctorID,
		Medicines: meds,
		CreatedAt: s.Clock.Now().UTC(),
	}
	if err := s.Repo.SavePrescription(ctx, p); err != nil {
		return nil, fmt.Errorf("save prescription: %w", err)
	}
	s.Log.Info().Str("patient_id", p.PatientID).Int("medicines", len(meds)).Msg("prescription added")
	s.publish(ctx, p.PatientID)
	return p, nil
}

// Overview lists today's medications and the active count for a patient.
func (s *Service) Overview(ctx context.Context, patientID string) (domain.Overview, error) {
	ps, err := s.Repo.ListPrescriptions(ctx, patientID)
	if err != nil {
		return domain.Overview{}, err
	}
	return domain.BuildOverview(ps), nil
}

// MarkTaken upserts the patient's reminder for the medicine as taken.
func (s *Service) MarkTaken(ctx context.Context, patientID, medicineName string) (*domain.Reminder, error) {
	name := domain.Medicine{Name: strings.TrimSpace(medicineName)}.Label()
	now := s.Clock.Now().UTC()

	r, err := s.Repo.FindReminder(ctx, patientID, name)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		r = &domain.Reminder{
			ID:           uuid.New().String(),
			PatientID:    patientID,
			MedicineName: name,
			CreatedAt:    now,
		}
	case err != nil:
		return nil, err
	}
	r.Status = domain.ReminderTaken
	r.TakenAt = &now

	if err := s.Repo.SaveReminder(ctx, r); err != nil {
		return nil, fmt.Errorf("save reminder: %w", err)
	}
	s.publish(ctx, patientID)
	return r, nil
}

// Adherence returns the patient's adherence percentage, nil when the patient
// has no reminders yet.
func (s *Service) Adherence(ctx context.Context, patientID string) (*int, error) {
	rs, err := s.Repo.ListReminders(ctx, patientID)
	if err != nil {
		return nil, err
	}
	return domain.AdherenceRate(rs, s.Clock.Now()), nil
}

func (s *Service) publish(ctx context.Context, patientID string) {
	if s.Events == nil {
		return
	}
	s.Events.Publish(ctx, analysis.Event{Kind: analysis.EventMedicationsUpdated, PatientID: patientID, At: s.Clock.Now().UTC()})
}
