package analysis

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

var (
	// ErrNotFound is returned by repositories when no record matches.
	ErrNotFound = errors.New("analysis not found")
	// ErrSourceUnreadable marks report text too short to analyze.
	ErrSourceUnreadable = errors.New("file seems empty or could not be read")
	// ErrAnalysisFailed marks a submission whose analysis came back unsuccessful.
	ErrAnalysisFailed = errors.New("analysis failed")
)

// MinSourceLength is the shortest trimmed report text worth analyzing.
const MinSourceLength = 10

// MsgSourceUnreadable is the failure message for text below MinSourceLength.
const MsgSourceUnreadable = "File seems empty or could not be read. Please try uploading a text file or PDF."

// SourceLength counts the runes of the trimmed report text.
func SourceLength(text string) int {
	return utf8.RuneCountInString(strings.TrimSpace(text))
}

// Repository port (persistence for analysis records)
type Repository interface {
	Save(ctx context.Context, r *Record) error
	Get(ctx context.Context, id RecordID) (*Record, error)
	ListByDoctor(ctx context.Context, doctorID string, reviewed *bool, limit int) ([]*Record, error)
	ListByPatient(ctx context.Context, patientID string, limit int) ([]*Record, error)
	MarkReviewed(ctx context.Context, id RecordID, at time.Time) error
}

// SourceStore port (object storage for report text and exports)
type SourceStore interface {
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
}

// Event kinds emitted by the services.
const (
	EventAnalysisCompleted  = "analysis.completed"
	EventAnalysisFailed     = "analysis.failed"
	EventAnalysisReviewed   = "analysis.reviewed"
	EventMedicationsUpdated = "medications.updated"
)

// Event is emitted once per completed operation.
type Event struct {
	Kind      string
	PatientID string
	RecordID  RecordID
	IsDemo    bool
	At        time.Time
}

// Publisher port (observers of completed operations)
type Publisher interface {
	Publish(ctx context.Context, e Event)
}
