package analysis

import "time"

// RecordID identifier type
type RecordID string

// UrgencyLevel is the closed clinical priority tier
type UrgencyLevel string

const (
	UrgencyLow    UrgencyLevel = "Low"
	UrgencyMedium UrgencyLevel = "Medium"
	UrgencyHigh   UrgencyLevel = "High"
)

// UnassignedDoctor is used when a report is submitted without a doctor.
const UnassignedDoctor = "unassigned"

// AbnormalValue is one flagged lab parameter
type AbnormalValue struct {
	TestName       string `json:"testName"`
	Value          string `json:"value,omitempty"`
	ReferenceRange string `json:"referenceRange,omitempty"`
	Status         string `json:"status,omitempty"`
}

// empty reports whether the entry carries nothing worth displaying.
func (v AbnormalValue) empty() bool {
	return v.TestName == "" && v.Value == "" && v.Status == ""
}

// StructuredAnalysis is the canonical normalized interpretation of a lab report.
type StructuredAnalysis struct {
	Summary        string          `json:"summary"`
	MainFindings   []string        `json:"mainFindings"`
	AbnormalValues []AbnormalValue `json:"abnormalValues"`
	DoctorChecks   []string        `json:"doctorChecks"`
	UrgencyLevel   UrgencyLevel    `json:"urgencyLevel"`
	UrgencyReason  string          `json:"urgencyReason"`
}

// PatientInfo identifies the patient in composed reports.
type PatientInfo struct {
	Name string `json:"name,omitempty"`
	Age  *int   `json:"age,omitempty"`
}

// Record is the persisted unit handed to the storage sink.
type Record struct {
	ID           RecordID            `json:"id"`
	PatientID    string              `json:"patientId"`
	PatientName  string              `json:"patientName,omitempty"`
	DoctorID     string              `json:"doctorId"`
	FileName     string              `json:"fileName,omitempty"`
	SourceURL    string              `json:"sourceUrl,omitempty"`
	AnalysisText string              `json:"analysisText"`
	Structured   *StructuredAnalysis `json:"structuredAnalysis,omitempty"`
	Timestamp    time.Time           `json:"timestamp"`
	IsDemo       bool                `json:"isDemo,omitempty"`
	Reviewed     bool                `json:"reviewed"`
	ReviewedAt   *time.Time          `json:"reviewedAt,omitempty"`
}

// Result is what the analysis entry point hands back. Failures carry
// Success=false and a human readable Error instead of a payload.
type Result struct {
	Success    bool                `json:"success"`
	Analysis   string              `json:"analysis,omitempty"`
	Structured *StructuredAnalysis `json:"structuredAnalysis,omitempty"`
	Timestamp  time.Time           `json:"timestamp,omitempty"`
	IsDemo     bool                `json:"isDemo,omitempty"`
	Error      string              `json:"error,omitempty"`
}

// Failed builds a failure result.
func Failed(msg string) Result {
	return Result{Success: false, Error: msg}
}
