package medication

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMedicineDisplay(t *testing.T) {
	cases := []struct {
		m     Medicine
		label string
		instr string
	}{
		{Medicine{Name: "metformin", DrugName: "Metformin XR", Dosage: "500mg", Timings: []string{"morning", "night"}}, "Metformin XR", "500mg - morning, night"},
		{Medicine{Name: "Atorvastatin", Dosage: "20mg", Schedule: "daily"}, "Atorvastatin", "20mg - daily"},
		{Medicine{}, "Medication", " - As prescribed"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.label, tc.m.Label())
		assert.Equal(t, tc.instr, tc.m.Instructions())
	}
}

func TestBuildOverview(t *testing.T) {
	ps := []*Prescription{
		{Medicines: []Medicine{{Name: "A"}, {Name: "B"}}},
		{Medicines: nil},
		{Medicines: []Medicine{{Name: "C"}, {Name: "D"}}},
	}

	ov := BuildOverview(ps)

	assert.Equal(t, 4, ov.ActiveCount)
	require.Len(t, ov.Today, 3)
	assert.Equal(t, "C", ov.Today[2].Name)

	empty := BuildOverview(nil)
	assert.Equal(t, 0, empty.ActiveCount)
	assert.NotNil(t, empty.Today)
}

func TestAdherenceRate(t *testing.T) {
	now := time.Date(2026, 3, 9, 18, 0, 0, 0, time.UTC)
	yesterday := now.AddDate(0, 0, -1)

	assert.Nil(t, AdherenceRate(nil, now))

	rs := []*Reminder{
		{Status: ReminderTaken, CreatedAt: yesterday},
		{Status: ReminderPending, CreatedAt: yesterday},
		{Status: ReminderMissed, CreatedAt: now},
		// old and neither taken nor pending: ignored
		{Status: ReminderMissed, CreatedAt: yesterday},
	}
	got := AdherenceRate(rs, now)
	require.NotNil(t, got)
	assert.Equal(t, 33, *got)

	got = AdherenceRate([]*Reminder{{Status: ReminderMissed, CreatedAt: yesterday}}, now)
	require.NotNil(t, got)
	assert.Equal(t, 0, *got)

	got = AdherenceRate([]*Reminder{{Status: ReminderTaken, CreatedAt: now}, {Status: ReminderPending, CreatedAt: now}}, now)
	assert.Equal(t, 50, *got)
}
