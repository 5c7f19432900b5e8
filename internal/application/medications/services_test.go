package medications

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/healthsync/internal/domain/analysis"
	domain "github.com/bryanwahyu/healthsync/internal/domain/medication"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type memRepo struct {
	prescriptions []*domain.Prescription
	reminders     []*domain.Reminder
}

func (m *memRepo) SavePrescription(_ context.Context, p *domain.Prescription) error {
	m.prescriptions = append(m.prescriptions, p)
	return nil
}

func (m *memRepo) ListPrescriptions(_ context.Context, patientID string) ([]*domain.Prescription, error) {
	var out []*domain.Prescription
	for _, p := range m.prescriptions {
		if p.PatientID == patientID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memRepo) FindReminder(_ context.Context, patientID, name string) (*domain.Reminder, error) {
	for _, r := range m.reminders {
		if r.PatientID == patientID && r.MedicineName == name {
			cp := *r
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memRepo) SaveReminder(_ context.Context, r *domain.Reminder) error {
	for i, existing := range m.reminders {
		if existing.ID == r.ID {
			m.reminders[i] = r
			return nil
		}
	}
	m.reminders = append(m.reminders, r)
	return nil
}

func (m *memRepo) ListReminders(_ context.Context, patientID string) ([]*domain.Reminder, error) {
	var out []*domain.Reminder
	for _, r := range m.reminders {
		if r.PatientID == patientID {
			out = append(out, r)
		}
	}
	return out, nil
}

type recorder struct{ kinds []string }

func (r *recorder) Publish(_ context.Context, e analysis.Event) { r.kinds = append(r.kinds, e.Kind) }

var now = time.Date(2026, 3, 9, 7, 0, 0, 0, time.UTC)

func newSvc() (*Service, *memRepo, *recorder) {
	repo, rec := &memRepo{}, &recorder{}
	return &Service{Repo: repo, Events: rec, Clock: fixedClock{now}, Log: zerolog.Nop()}, repo, rec
}

func TestAddPrescriptionAndOverview(t *testing.T) {
	svc, _, events := newSvc()

	_, err := svc.AddPrescription(context.Background(), AddPrescriptionCommand{
		PatientID: "pat-1",
		Medicines: []domain.Medicine{
			{DrugName: "Metformin", Dosage: "500mg", Timings: []string{"morning"}},
			{Dosage: "nameless"},
			{Name: "Vitamin D", Schedule: "weekly"},
		},
	})
	require.NoError(t, err)

	ov, err := svc.Overview(context.Background(), "pat-1")
	require.NoError(t, err)
	assert.Equal(t, 2, ov.ActiveCount)
	assert.Equal(t, []domain.TodayItem{
		{Name: "Metformin", Instructions: "500mg - morning"},
		{Name: "Vitamin D", Instructions: " - weekly"},
	}, ov.Today)
	assert.Equal(t, []string{analysis.EventMedicationsUpdated}, events.kinds)

	other, err := svc.Overview(context.Background(), "pat-2")
	require.NoError(t, err)
	assert.Zero(t, other.ActiveCount)
}

func TestAddPrescriptionRequiresMedicines(t *testing.T) {
	svc, _, _ := newSvc()

	_, err := svc.AddPrescription(context.Background(), AddPrescriptionCommand{PatientID: "pat-1", Medicines: []domain.Medicine{{Dosage: "1"}}})

	assert.ErrorIs(t, err, domain.ErrNoMedicines)
}

func TestMarkTakenUpsertsAndAdherence(t *testing.T) {
	svc, repo, events := newSvc()
	ctx := context.Background()

	rate, err := svc.Adherence(ctx, "pat-1")
	require.NoError(t, err)
	assert.Nil(t, rate)

	repo.reminders = append(repo.reminders, &domain.Reminder{ID: "r-1", PatientID: "pat-1", MedicineName: "Aspirin", Status: domain.ReminderPending, CreatedAt: now})

	first, err := svc.MarkTaken(ctx, "pat-1", "Metformin")
	require.NoError(t, err)
	second, err := svc.MarkTaken(ctx, "pat-1", "Metformin")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, repo.reminders, 2)
	assert.Equal(t, domain.ReminderTaken, second.Status)
	assert.Equal(t, now, *second.TakenAt)
	assert.Len(t, events.kinds, 2)

	rate, err = svc.Adherence(ctx, "pat-1")
	require.NoError(t, err)
	require.NotNil(t, rate)
	assert.Equal(t, 50, *rate)
}

func TestMarkTakenDefaultsName(t *testing.T) {
	svc, _, _ := newSvc()

	r, err := svc.MarkTaken(context.Background(), "pat-1", "  ")

	require.NoError(t, err)
	assert.Equal(t, "Medication", r.MedicineName)
}
