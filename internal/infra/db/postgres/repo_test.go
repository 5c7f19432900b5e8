package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/healthsync/internal/domain/analysis"
	"github.com/bryanwahyu/healthsync/internal/domain/failures"
	"github.com/bryanwahyu/healthsync/internal/domain/medication"
)

var ts = time.Date(2026, 3, 9, 9, 0, 0, 0, time.UTC)

func TestListByDoctorNumbersPlaceholders(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()
	repo := NewAnalysisRepository(conn)
	reviewed := true

	mock.ExpectQuery(regexp.QuoteMeta("WHERE doctor_id = $1 AND reviewed = $2 ORDER BY created_at DESC, id DESC LIMIT $3;")).
		WithArgs("doc-1", true, 10).
		WillReturnRows(sqlmock.NewRows([]string{"id", "patient_id", "patient_name", "doctor_id", "file_name", "source_url",
			"analysis_text", "structured_json", "is_demo", "reviewed", "reviewed_at", "created_at"}).
			AddRow("r1", "pat-1", "Ana", "doc-1", "", "", "text", `{"summary":"s"}`, false, true, ts, ts))

	got, err := repo.ListByDoctor(context.Background(), "doc-1", &reviewed, 10)

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "s", got[0].Structured.Summary)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveReminderUpsertsOnPatientAndName(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()
	repo := NewMedicationRepository(conn)

	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (patient_id, medicine_name) DO UPDATE")).
		WithArgs("m1", "pat-1", "Aspirin", "pending", nil, ts).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.SaveReminder(context.Background(), &medication.Reminder{
		ID: "m1", PatientID: "pat-1", MedicineName: "Aspirin", Status: medication.ReminderPending, CreatedAt: ts,
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFailureSaveReturnsID(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()
	repo := NewFailureRepository(conn)

	mock.ExpectQuery(regexp.QuoteMeta("RETURNING id")).
		WithArgs("pat-1", "-", "-", "extract", "-", "{}", ts).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

	f := &failures.Failure{PatientID: "pat-1", Phase: failures.PhaseExtract, CreatedAt: ts}
	require.NoError(t, repo.Save(context.Background(), f))
	assert.Equal(t, int64(7), f.ID)
}

func TestGetNotFound(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	mock.ExpectQuery(regexp.QuoteMeta("WHERE id = $1")).WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err = NewAnalysisRepository(conn).Get(context.Background(), "nope")
	assert.ErrorIs(t, err, analysis.ErrNotFound)
}
