package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

func Connect(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	// test ping
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
  id              VARCHAR(64)  NOT NULL PRIMARY KEY,
  patient_id      VARCHAR(128) NOT NULL,
  patient_name    VARCHAR(255) NOT NULL,
  doctor_id       VARCHAR(128) NOT NULL,
  file_name       VARCHAR(255) NOT NULL,
  source_url      TEXT         NOT NULL,
  analysis_text   MEDIUMTEXT   NOT NULL,
  structured_json JSON         NOT NULL,
  is_demo         BOOLEAN      NOT NULL DEFAULT FALSE,
  reviewed        BOOLEAN      NOT NULL DEFAULT FALSE,
  reviewed_at     DATETIME(3)  NULL,
  created_at      DATETIME(3)  NOT NULL,
  KEY idx_lab_analyses_doctor (doctor_id, reviewed, created_at),
  KEY idx_lab_analyses_patient (patient_id, created_at)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS prescriptions (
  id             VARCHAR(64)  NOT NULL PRIMARY KEY,
  patient_id     VARCHAR(128) NOT NULL,
  doctor_id      VARCHAR(128) NOT NULL,
  medicines_json JSON         NOT NULL,
  created_at     DATETIME(3)  NOT NULL,
  KEY idx_prescriptions_patient (patient_id, created_at)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS medication_reminders (
  id            VARCHAR(64)  NOT NULL PRIMARY KEY,
  patient_id    VARCHAR(128) NOT NULL,
  medicine_name VARCHAR(255) NOT NULL,
  status        VARCHAR(16)  NOT NULL,
  taken_at      DATETIME(3)  NULL,
  created_at    DATETIME(3)  NOT NULL,
  UNIQUE KEY uq_reminder_patient_medicine (patient_id, medicine_name)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS analysis_failures (
  id           BIGINT       NOT NULL AUTO_INCREMENT PRIMARY KEY,
  patient_id   VARCHAR(128) NOT NULL,
  record_id    VARCHAR(64)  NOT NULL,
  file_name    VARCHAR(255) NOT NULL,
  phase        VARCHAR(16)  NOT NULL,
  message      TEXT         NOT NULL,
  details_json JSON         NOT NULL,
  created_at   DATETIME(3)  NOT NULL,
  KEY idx_failures_patient (patient_id, created_at)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Migrate creates the tables when they do not exist yet.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("mysql migrate: %w", err)
		}
	}
	return nil
}
