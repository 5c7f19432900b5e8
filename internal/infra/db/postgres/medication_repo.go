package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/bryanwahyu/healthsync/internal/domain/medication"
	"github.com/bryanwahyu/healthsync/internal/infra/db"
)

type MedicationRepository struct{ db *sql.DB }

func NewMedicationRepository(conn *sql.DB) *MedicationRepository {
	return &MedicationRepository{db: conn}
}

func (r *MedicationRepository) SavePrescription(ctx context.Context, p *medication.Prescription) error {
	const q = `
INSERT INTO prescriptions (id, patient_id, doctor_id, medicines_json, created_at)
VALUES ($1,$2,$3,$4,$5)
ON CONFLICT (id) DO UPDATE SET medicines_json = EXCLUDED.medicines_json;`
	meds, err := db.EncodeMedicines(p.Medicines)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, q, p.ID, stringOrDash(p.PatientID), stringOrDash(p.DoctorID), meds, nowIfZero(p.CreatedAt))
	return err
}

func (r *MedicationRepository) ListPrescriptions(ctx context.Context, patientID string) ([]*medication.Prescription, error) {
	const q = `
SELECT id, patient_id, doctor_id, medicines_json, created_at
FROM prescriptions
WHERE patient_id = $1
ORDER BY created_at ASC, id ASC;`
	rows, err := r.db.QueryContext(ctx, q, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*medication.Prescription
	for rows.Next() {
		var (
			p    medication.Prescription
			meds string
		)
		if err := rows.Scan(&p.ID, &p.PatientID, &p.DoctorID, &meds, &p.CreatedAt); err != nil {
			return nil, err
		}
		if p.Medicines, err = db.DecodeMedicines(meds); err != nil {
			return nil, err
		}
		p.DoctorID = dashToEmpty(p.DoctorID)
		out = append(out, &p)
	}
	return out, rows.Err()
}

func (r *MedicationRepository) FindReminder(ctx context.Context, patientID, medicineName string) (*medication.Reminder, error) {
	const q = `
SELECT id, patient_id, medicine_name, status, taken_at, created_at
FROM medication_reminders
WHERE patient_id = $1 AND medicine_name = $2 LIMIT 1;`
	rem, err := scanReminder(r.db.QueryRowContext(ctx, q, patientID, medicineName))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, medication.ErrNotFound
	}
	return rem, err
}

func (r *MedicationRepository) SaveReminder(ctx context.Context, rem *medication.Reminder) error {
	const q = `
INSERT INTO medication_reminders (id, patient_id, medicine_name, status, taken_at, created_at)
VALUES ($1,$2,$3,$4,$5,$6)
ON CONFLICT (patient_id, medicine_name) DO UPDATE SET
 status = EXCLUDED.status,
 taken_at = EXCLUDED.taken_at;`
	_, err := r.db.ExecContext(ctx, q, rem.ID, rem.PatientID, rem.MedicineName, string(rem.Status), nullTime(rem.TakenAt), nowIfZero(rem.CreatedAt))
	return err
}

func (r *MedicationRepository) ListReminders(ctx context.Context, patientID string) ([]*medication.Reminder, error) {
	const q = `
SELECT id, patient_id, medicine_name, status, taken_at, created_at
FROM medication_reminders
WHERE patient_id = $1
ORDER BY created_at ASC;`
	rows, err := r.db.QueryContext(ctx, q, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*medication.Reminder
	for rows.Next() {
		rem, err := scanReminder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rem)
	}
	return out, rows.Err()
}

func scanReminder(row rowScanner) (*medication.Reminder, error) {
	var (
		rem     medication.Reminder
		takenAt sql.NullTime
	)
	if err := row.Scan(&rem.ID, &rem.PatientID, &rem.MedicineName, &rem.Status, &takenAt, &rem.CreatedAt); err != nil {
		return nil, err
	}
	rem.TakenAt = timePtr(takenAt)
	return &rem, nil
}
