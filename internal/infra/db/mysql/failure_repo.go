package mysql

import (
	"context"
	"database/sql"
	"strings"

	domain "github.com/bryanwahyu/healthsync/internal/domain/failures"
	"github.com/bryanwahyu/healthsync/internal/infra/db"
)

type FailureRepository struct {
	db *sql.DB
}

func NewFailureRepository(conn *sql.DB) *FailureRepository { return &FailureRepository{db: conn} }

func (r *FailureRepository) Save(ctx context.Context, f *domain.Failure) error {
	const q = `
INSERT INTO analysis_failures
  (patient_id, record_id, file_name, phase, message, details_json, created_at)
VALUES (?,?,?,?,?,?,?)
`
	msg := f.Message
	if strings.TrimSpace(msg) == "" {
		msg = "-"
	}
	res, err := r.db.ExecContext(ctx, q,
		stringOrDash(f.PatientID), stringOrDash(f.RecordID), stringOrDash(f.FileName), stringOrDash(string(f.Phase)),
		msg, db.NormalizeDetails(f.DetailsJSON), nowIfZero(f.CreatedAt),
	)
	if err != nil {
		return err
	}
	if id, err := res.LastInsertId(); err == nil {
		f.ID = id
	}
	return nil
}

func (r *FailureRepository) ListByPatient(ctx context.Context, patientID string, limit int) ([]*domain.Failure, error) {
	const q = `
SELECT id, patient_id, record_id, file_name, phase, message, details_json, created_at
FROM analysis_failures
WHERE patient_id = ?
ORDER BY created_at DESC, id DESC
LIMIT ?;`
	rows, err := r.db.QueryContext(ctx, q, patientID, db.ClampLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*domain.Failure{}
	for rows.Next() {
		var f domain.Failure
		if err := rows.Scan(&f.ID, &f.PatientID, &f.RecordID, &f.FileName, &f.Phase, &f.Message, &f.DetailsJSON, &f.CreatedAt); err != nil {
			return nil, err
		}
		f.RecordID = dashToEmpty(f.RecordID)
		f.FileName = dashToEmpty(f.FileName)
		out = append(out, &f)
	}
	return out, rows.Err()
}
