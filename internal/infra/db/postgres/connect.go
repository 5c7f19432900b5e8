package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

func Connect(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx2, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx2); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS lab_analyses (
  id              TEXT        PRIMARY KEY,
  patient_id      TEXT        NOT NULL,
  patient_name    TEXT        NOT NULL,
  doctor_id       TEXT        NOT NULL,
  file_name       TEXT        NOT NULL,
  source_url      TEXT        NOT NULL,
  analysis_text   TEXT        NOT NULL,
  structured_json JSONB       NOT NULL,
  is_demo         BOOLEAN     NOT NULL DEFAULT FALSE,
  reviewed        BOOLEAN     NOT NULL DEFAULT FALSE,
  reviewed_at     TIMESTAMPTZ NULL,
  created_at      TIMESTAMPTZ NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_lab_analyses_doctor ON lab_analyses (doctor_id, reviewed, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_lab_analyses_patient ON lab_analyses (patient_id, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS prescriptions (
  id             TEXT        PRIMARY KEY,
  patient_id     TEXT        NOT NULL,
  doctor_id      TEXT        NOT NULL,
  medicines_json JSONB       NOT NULL,
  created_at     TIMESTAMPTZ NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS medication_reminders (
  id            TEXT        PRIMARY KEY,
  patient_id    TEXT        NOT NULL,
  medicine_name TEXT        NOT NULL,
  status        TEXT        NOT NULL,
  taken_at      TIMESTAMPTZ NULL,
  created_at    TIMESTAMPTZ NOT NULL,
  UNIQUE (patient_id, medicine_name)
)`,
	`CREATE TABLE IF NOT EXISTS analysis_failures (
  id           BIGSERIAL   PRIMARY KEY,
  patient_id   TEXT        NOT NULL,
  record_id    TEXT        NOT NULL,
  file_name    TEXT        NOT NULL,
  phase        TEXT        NOT NULL,
  message      TEXT        NOT NULL,
  details_json JSONB       NOT NULL,
  created_at   TIMESTAMPTZ NOT NULL
)`,
}

// Migrate creates the tables when they do not exist yet.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("postgres migrate: %w", err)
		}
	}
	return nil
}
