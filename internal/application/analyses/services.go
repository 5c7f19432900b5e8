package analyses

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/bryanwahyu/healthsync/internal/application"
	"github.com/bryanwahyu/healthsync/internal/domain/analysis"
	"github.com/bryanwahyu/healthsync/internal/domain/failures"
	"github.com/bryanwahyu/healthsync/internal/render"
)

// Analyzer runs the AI entry point on report text.
type Analyzer interface {
	AnalyzeLabReport(ctx context.Context, reportText string, patient analysis.PatientInfo) analysis.Result
}

// Exporter writes the PDF form of a composed analysis.
type Exporter interface {
	ExportPDF(w io.Writer, text, reportName, patientName, date string) error
}

// Service implements the use-cases around analysis records.
// Sources, Failures and Events are optional.
type Service struct {
	Repo     analysis.Repository
	Analyzer Analyzer
	Exporter Exporter
	Sources  analysis.SourceStore
	Failures failures.Repository
	Events   analysis.Publisher
	Clock    application.Clock
	Log      zerolog.Logger
}

//
// ==== USE CASES ====
//

// SubmitCommand is one uploaded report, already extracted to text.
type SubmitCommand struct {
	PatientID   string
	PatientName string
	Age         *int
	DoctorID    string
	FileName    string
	Text        string
}

// Submit analyzes a report and sends the record to the doctor. Unreadable
// text and unsuccessful analyses come back as a failed Result together with
// ErrSourceUnreadable or ErrAnalysisFailed; other errors are infrastructure
// failures.
func (s *Service) Submit(ctx context.Context, cmd SubmitCommand) (*analysis.Record, analysis.Result, error) {
	log := s.Log.With().Str("patient_id", cmd.PatientID).Str("file", cmd.FileName).Logger()

	if n := analysis.SourceLength(cmd.Text); n < analysis.MinSourceLength {
		s.recordFailure(ctx, cmd, "", failures.PhaseExtract, analysis.ErrSourceUnreadable.Error(), map[string]any{"text_length": n})
		return nil, analysis.Failed(analysis.MsgSourceUnreadable), analysis.ErrSourceUnreadable
	}

	patient := analysis.PatientInfo{Name: cmd.PatientName, Age: cmd.Age}
	res := s.Analyzer.AnalyzeLabReport(ctx, cmd.Text, patient)
	if !res.Success {
		log.Warn().Str("reason", res.Error).Msg("analysis unsuccessful")
		s.recordFailure(ctx, cmd, "", failures.PhaseAI, res.Error, nil)
		return nil, res, analysis.ErrAnalysisFailed
	}

	doctor := strings.TrimSpace(cmd.DoctorID)
	if doctor == "" {
		doctor = analysis.UnassignedDoctor
	}
	rec := &analysis.Record{
		ID:           analysis.RecordID(uuid.New().String()),
		PatientID:    cmd.PatientID,
		PatientName:  cmd.PatientName,
		DoctorID:     doctor,
		FileName:     cmd.FileName,
		AnalysisText: res.Analysis,
		Structured:   res.Structured,
		Timestamp:    res.Timestamp,
		IsDemo:       res.IsDemo,
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = s.Clock.Now().UTC()
	}

	if s.Sources != nil {
		key := fmt.Sprintf("%s/reports/%s.txt", cmd.PatientID, rec.ID)
		url, err := s.Sources.Put(ctx, key, "text/plain; charset=utf-8", []byte(cmd.Text))
		if err != nil {
			// archiving is best effort, the analysis itself is kept
			log.Warn().Err(err).Str("key", key).Msg("source archive failed")
		} else {
			rec.SourceURL = url
		}
	}

	if err := s.Repo.Save(ctx, rec); err != nil {
		s.recordFailure(ctx, cmd, string(rec.ID), failures.PhasePersist, err.Error(), nil)
		return nil, res, fmt.Errorf("save analysis: %w", err)
	}

	log.Info().Str("record_id", string(rec.ID)).Bool("demo", rec.IsDemo).Str("doctor_id", doctor).Msg("analysis sent to doctor")
	s.publish(ctx, analysis.Event{Kind: analysis.EventAnalysisCompleted, PatientID: rec.PatientID, RecordID: rec.ID, IsDemo: rec.IsDemo})
	return rec, res, nil
}

func (s *Service) Get(ctx context.Context, id analysis.RecordID) (*analysis.Record, error) {
	return s.Repo.Get(ctx, id)
}

// ListForDoctor returns the doctor's inbox, newest first. A nil reviewed
// returns both reviewed and pending records.
func (s *Service) ListForDoctor(ctx context.Context, doctorID string, reviewed *bool, limit int) ([]*analysis.Record, error) {
	return s.Repo.ListByDoctor(ctx, doctorID, reviewed, limit)
}

func (s *Service) ListForPatient(ctx context.Context, patientID string, limit int) ([]*analysis.Record, error) {
	return s.Repo.ListByPatient(ctx, patientID, limit)
}

// MarkReviewed flips the reviewed flag once; reviewing again is a no-op.
func (s *Service) MarkReviewed(ctx context.Context, id analysis.RecordID) (*analysis.Record, error) {
	rec, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.Reviewed {
		return rec, nil
	}

	now := s.Clock.Now().UTC()
	if err := s.Repo.MarkReviewed(ctx, id, now); err != nil {
		return nil, fmt.Errorf("mark reviewed: %w", err)
	}
	rec.Reviewed = true
	rec.ReviewedAt = &now

	s.publish(ctx, analysis.Event{Kind: analysis.EventAnalysisReviewed, PatientID: rec.PatientID, RecordID: rec.ID, IsDemo: rec.IsDemo})
	return rec, nil
}

// Render builds the blocks of a stored record for one view.
func (s *Service) Render(ctx context.Context, id analysis.RecordID, view render.View) (render.Document, error) {
	rec, err := s.Repo.Get(ctx, id)
	if err != nil {
		return render.Document{}, err
	}
	return render.Render(render.SourceOf(rec), view, s.Clock.Now()), nil
}

// ExportPDF renders the record's composed text as a PDF. With a source store
// configured the file is also archived and its URL returned.
func (s *Service) ExportPDF(ctx context.Context, id analysis.RecordID) ([]byte, string, error) {
	rec, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}

	text := rec.AnalysisText
	if text == "" && rec.Structured != nil {
		text = analysis.ComposeText(*rec.Structured, analysis.PatientInfo{Name: rec.PatientName})
	}
	name := rec.FileName
	if name == "" {
		name = string(rec.ID)
	}

	var buf bytes.Buffer
	if err := s.Exporter.ExportPDF(&buf, text, name, rec.PatientName, s.Clock.Now().Format("Jan 2, 2006")); err != nil {
		return nil, "", fmt.Errorf("export pdf: %w", err)
	}

	var url string
	if s.Sources != nil {
		key := fmt.Sprintf("%s/exports/%s.pdf", rec.PatientID, rec.ID)
		if url, err = s.Sources.Put(ctx, key, "application/pdf", buf.Bytes()); err != nil {
			s.Log.Warn().Err(err).Str("key", key).Msg("pdf archive failed")
			url = ""
		}
	}
	return buf.Bytes(), url, nil
}

// ListFailures returns recent failed submissions of a patient.
func (s *Service) ListFailures(ctx context.Context, patientID string, limit int) ([]*failures.Failure, error) {
	if s.Failures == nil {
		return []*failures.Failure{}, nil
	}
	return s.Failures.ListByPatient(ctx, patientID, limit)
}

func (s *Service) recordFailure(ctx context.Context, cmd SubmitCommand, recordID string, phase failures.Phase, msg string, details map[string]any) {
	s.publish(ctx, analysis.Event{Kind: analysis.EventAnalysisFailed, PatientID: cmd.PatientID, RecordID: analysis.RecordID(recordID)})
	if s.Failures == nil {
		return
	}
	f := &failures.Failure{
		PatientID: cmd.PatientID,
		RecordID:  recordID,
		FileName:  cmd.FileName,
		Phase:     phase,
		Message:   msg,
		CreatedAt: s.Clock.Now().UTC(),
	}
	if details != nil {
		if b, err := json.Marshal(details); err == nil {
			f.DetailsJSON = string(b)
		}
	}
	if err := s.Failures.Save(ctx, f); err != nil {
		s.Log.Error().Err(err).Str("phase", string(phase)).Msg("failed to save failure")
	}
}

func (s *Service) publish(ctx context.Context, e analysis.Event) {
	if s.Events == nil {
		return
	}
	if e.At.IsZero() {
		e.At = s.Clock.Now().UTC()
	}
	s.Events.Publish(ctx, e)
}

// IsClientError reports whether err came from the submission itself rather
// than from the service's own infrastructure.
func IsClientError(err error) bool {
	return errors.Is(err, analysis.ErrSourceUnreadable) || errors.Is(err, analysis.ErrAnalysisFailed)
}
