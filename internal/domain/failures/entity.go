package failures

import "time"

// Phase tells where a submission failed.
type Phase string

const (
	PhaseExtract Phase = "extract"
	PhaseAI      Phase = "ai"
	PhasePersist Phase = "persist"
)

// Failure represents a persisted failed analysis attempt
type Failure struct {
	ID          int64     `json:"id"`
	PatientID   string    `json:"patientId"`
	RecordID    string    `json:"recordId,omitempty"`
	FileName    string    `json:"fileName,omitempty"`
	Phase       Phase     `json:"phase,omitempty"`
	Message     string    `json:"message"`
	DetailsJSON string    `json:"details,omitempty"` // raw JSON string
	CreatedAt   time.Time `json:"createdAt"`
}
