// Package db opens the local SQLite store and applies the schema.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Open opens (creating if necessary) the database at path and migrates the
// schema. Pass ":memory:" for an ephemeral database in tests.
func Open(path string) (*sql.DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := conn.Exec(p); err != nil {
			conn.Close()
			return nil, fmt.Errorf("apply pragma: %w", err)
		}
	}

	if err := migrate(conn); err != nil {
		conn.Close()
		return nil, err
	}

	return conn, nil
}

func migrate(conn *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS patients (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		date_of_birth TEXT,
		gender TEXT,
		risk_level TEXT NOT NULL DEFAULT 'low',
		preferred_modality TEXT NOT NULL DEFAULT 'CBT',
		notes TEXT,
		active INTEGER NOT NULL DEFAULT 1,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		patient_id TEXT NOT NULL REFERENCES patients(id),
		session_date TIMESTAMP NOT NULL,
		modality TEXT NOT NULL,
		duration_minutes INTEGER NOT NULL,
		phase TEXT NOT NULL,
		mood_before INTEGER,
		mood_after INTEGER,
		interventions_used TEXT,
		homework_assigned TEXT,
		crisis_flags TEXT,
		patient_feedback TEXT,
		summary TEXT,
		completed INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_sessions_patient ON sessions(patient_id, session_date DESC);

	CREATE TABLE IF NOT EXISTS assessments (
		id TEXT PRIMARY KEY,
		patient_id TEXT NOT NULL REFERENCES patients(id),
		session_id TEXT,
		assessment_type TEXT NOT NULL,
		responses TEXT NOT NULL,
		total_score INTEGER NOT NULL,
		severity_level TEXT NOT NULL,
		interpretation TEXT NOT NULL,
		assessment_date TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_assessments_patient ON assessments(patient_id, assessment_date DESC);

	CREATE TABLE IF NOT EXISTS treatment_goals (
		id TEXT PRIMARY KEY,
		patient_id TEXT NOT NULL REFERENCES patients(id),
		goal_type TEXT NOT NULL,
		description TEXT NOT NULL,
		current_progress INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'active',
		priority_level INTEGER NOT NULL DEFAULT 2,
		target_date TEXT,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_goals_patient ON treatment_goals(patient_id, status);

	CREATE TABLE IF NOT EXISTS homework_assignments (
		id TEXT PRIMARY KEY,
		patient_id TEXT NOT NULL REFERENCES patients(id),
		session_id TEXT,
		assignment_type TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT,
		due_date TEXT,
		completed INTEGER NOT NULL DEFAULT 0,
		completion_date TIMESTAMP,
		completion_notes TEXT,
		effectiveness_rating INTEGER,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_homework_patient ON homework_assignments(patient_id, completed);

	CREATE TABLE IF NOT EXISTS crisis_alerts (
		id TEXT PRIMARY KEY,
		patient_id TEXT NOT NULL REFERENCES patients(id),
		crisis_type TEXT NOT NULL,
		risk_level TEXT NOT NULL,
		trigger_text TEXT,
		assessment_score INTEGER NOT NULL DEFAULT 0,
		resolved INTEGER NOT NULL DEFAULT 0,
		follow_up_required INTEGER NOT NULL DEFAULT 1,
		notes TEXT,
		created_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_alerts_patient ON crisis_alerts(patient_id, created_at DESC);

	CREATE TABLE IF NOT EXISTS clinical_notes (
		id TEXT PRIMARY KEY,
		patient_id TEXT NOT NULL REFERENCES patients(id),
		session_id TEXT,
		note_type TEXT NOT NULL,
		subjective TEXT,
		objective TEXT,
		assessment TEXT,
		plan TEXT,
		created_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_notes_patient ON clinical_notes(patient_id, created_at DESC);
	`

	if _, err := conn.Exec(schema); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}

// WithTx runs fn inside a transaction, committing on success and rolling
// back on error or panic.
func WithTx(ctx context.Context, conn *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback after %w: %v", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
