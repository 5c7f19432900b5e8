package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/bryanwahyu/healthsync/internal/domain/analysis"
	"github.com/bryanwahyu/healthsync/internal/infra/db"
)

type AnalysisRepository struct{ db *sql.DB }

func NewAnalysisRepository(conn *sql.DB) *AnalysisRepository { return &AnalysisRepository{db: conn} }

const analysisColumns = `id, patient_id, patient_name, doctor_id, file_name, source_url,
       analysis_text, structured_json, is_demo, reviewed, reviewed_at, created_at`

// Save insert/update an analysis record
func (r *AnalysisRepository) Save(ctx context.Context, a *analysis.Record) error {
	const q = `
INSERT INTO lab_analyses
(id, patient_id, patient_name, doctor_id, file_name, source_url,
 analysis_text, structured_json, is_demo, reviewed, reviewed_at, created_at)
VALUES ($1,$2,$3,$4,$5,$6,
        $7,$8,$9,$10,$11,$12)
ON CONFLICT (id) DO UPDATE SET
 doctor_id = EXCLUDED.doctor_id,
 source_url = EXCLUDED.source_url,
 analysis_text = EXCLUDED.analysis_text,
 structured_json = EXCLUDED.structured_json,
 reviewed = EXCLUDED.reviewed,
 reviewed_at = EXCLUDED.reviewed_at;`

	structured, err := db.EncodeStructured(a.Structured)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, q,
		a.ID, stringOrDash(a.PatientID), a.PatientName, stringOrDash(a.DoctorID), a.FileName, a.SourceURL,
		a.AnalysisText, structured, a.IsDemo, a.Reviewed, nullTime(a.ReviewedAt), nowIfZero(a.Timestamp),
	)
	return err
}

func (r *AnalysisRepository) Get(ctx context.Context, id analysis.RecordID) (*analysis.Record, error) {
	q := `SELECT ` + analysisColumns + ` FROM lab_analyses WHERE id = $1 LIMIT 1;`
	a, err := scanRecord(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, analysis.ErrNotFound
	}
	return a, err
}

func (r *AnalysisRepository) ListByDoctor(ctx context.Context, doctorID string, reviewed *bool, limit int) ([]*analysis.Record, error) {
	where := `doctor_id = $1`
	args := []any{doctorID}
	if reviewed != nil {
		args = append(args, *reviewed)
		where += fmt.Sprintf(` AND reviewed = $%d`, len(args))
	}
	args = append(args, db.ClampLimit(limit))
	q := fmt.Sprintf(`SELECT %s FROM lab_analyses WHERE %s ORDER BY created_at DESC, id DESC LIMIT $%d;`, analysisColumns, where, len(args))
	return r.list(ctx, q, args...)
}

func (r *AnalysisRepository) ListByPatient(ctx context.Context, patientID string, limit int) ([]*analysis.Record, error) {
	q := `SELECT ` + analysisColumns + ` FROM lab_analyses WHERE patient_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2;`
	return r.list(ctx, q, patientID, db.ClampLimit(limit))
}

func (r *AnalysisRepository) MarkReviewed(ctx context.Context, id analysis.RecordID, at time.Time) error {
	const q = `UPDATE lab_analyses SET reviewed = TRUE, reviewed_at = COALESCE(reviewed_at, $1) WHERE id = $2;`
	_, err := r.db.ExecContext(ctx, q, at, id)
	return err
}

func (r *AnalysisRepository) list(ctx context.Context, q string, args ...any) ([]*analysis.Record, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*analysis.Record{}
	for rows.Next() {
		a, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*analysis.Record, error) {
	var (
		a          analysis.Record
		structured string
		reviewedAt sql.NullTime
	)
	if err := row.Scan(
		&a.ID, &a.PatientID, &a.PatientName, &a.DoctorID, &a.FileName, &a.SourceURL,
		&a.AnalysisText, &structured, &a.IsDemo, &a.Reviewed, &reviewedAt, &a.Timestamp,
	); err != nil {
		return nil, err
	}
	s, err := db.DecodeStructured(structured)
	if err != nil {
		return nil, err
	}
	a.Structured = s
	a.PatientID = dashToEmpty(a.PatientID)
	a.DoctorID = dashToEmpty(a.DoctorID)
	a.ReviewedAt = timePtr(reviewedAt)
	return &a, nil
}
