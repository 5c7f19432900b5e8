package medication

import (
	"strings"
	"time"
)

// Medicine is one line of a prescription.
type Medicine struct {
	Name     string   `json:"name,omitempty"`
	DrugName string   `json:"drugName,omitempty"`
	Dosage   string   `json:"dosage,omitempty"`
	Timings  []string `json:"timings,omitempty"`
	Schedule string   `json:"schedule,omitempty"`
}

// Label prefers the drug name over the free-form name.
func (m Medicine) Label() string {
	switch {
	case m.DrugName != "":
		return m.DrugName
	case m.Name != "":
		return m.Name
	default:
		return "Medication"
	}
}

// Instructions renders "dosage - when", falling back to the schedule and
// then to "As prescribed".
func (m Medicine) Instructions() string {
	when := strings.Join(m.Timings, ", ")
	if when == "" {
		when = m.Schedule
	}
	if when == "" {
		when = "As prescribed"
	}
	return m.Dosage + " - " + when
}

// Prescription groups the medicines from one upload.
type Prescription struct {
	ID        string     `json:"id"`
	PatientID string     `json:"patientId"`
	DoctorID  string     `json:"doctorId,omitempty"`
	Medicines []Medicine `json:"medicines"`
	CreatedAt time.Time  `json:"createdAt"`
}

type ReminderStatus string

const (
	ReminderTaken   ReminderStatus = "taken"
	ReminderPending ReminderStatus = "pending"
	ReminderMissed  ReminderStatus = "missed"
)

// Reminder tracks whether a patient took a medicine.
type Reminder struct {
	ID           string         `json:"id"`
	PatientID    string         `json:"patientId"`
	MedicineName string         `json:"medicineName"`
	Status       ReminderStatus `json:"status"`
	TakenAt      *time.Time     `json:"takenAt,omitempty"`
	CreatedAt    time.Time      `json:"createdAt"`
}

// TodayItem is one entry of the overview list.
type TodayItem struct {
	Name         string `json:"name"`
	Instructions string `json:"instructions"`
}

// Overview is what the patient dashboard shows about medications.
type Overview struct {
	Today       []TodayItem `json:"today"`
	ActiveCount int         `json:"activeCount"`
}
