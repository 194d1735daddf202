package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"therapy-ai-agent/internal/patient"
)

// Record is the persisted form of a session.
type Record struct {
	ID              uuid.UUID        `json:"id"`
	PatientID       uuid.UUID        `json:"patient_id"`
	Date            time.Time        `json:"session_date"`
	Modality        patient.Modality `json:"modality"`
	DurationMinutes int              `json:"duration_minutes"`
	Phase           string           `json:"phase"`
	MoodBefore      *int             `json:"mood_before,omitempty"`
	MoodAfter       *int             `json:"mood_after,omitempty"`
	Interventions   []string         `json:"interventions_used,omitempty"`
	Homework        []string         `json:"homework_assigned,omitempty"`
	CrisisFlags     []string         `json:"crisis_flags,omitempty"`
	PatientFeedback string           `json:"patient_feedback,omitempty"`
	Summary         string           `json:"summary,omitempty"`
	Completed       bool             `json:"completed"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

type Repository interface {
	Save(ctx context.Context, rec *Record) error
	GetByID(ctx context.Context, id uuid.UUID) (*Record, error)
	ListRecent(ctx context.Context, patientID uuid.UUID, limit int) ([]Record, error)
}

type sqliteRepo struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &sqliteRepo{db: db}
}

const sessionColumns = `id, patient_id, session_date, modality, duration_minutes, phase, mood_before, mood_after, interventions_used, homework_assigned, crisis_flags, patient_feedback, summary, completed, created_at, updated_at`

func (r *sqliteRepo) Save(ctx context.Context, rec *Record) error {
	interventionsJSON, err := json.Marshal(rec.Interventions)
	if err != nil {
		return err
	}
	homeworkJSON, err := json.Marshal(rec.Homework)
	if err != nil {
		return err
	}
	crisisJSON, err := json.Marshal(rec.CrisisFlags)
	if err != nil {
		return err
	}

	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	rec.UpdatedAt = time.Now()

	var moodBefore, moodAfter any
	if rec.MoodBefore != nil {
		moodBefore = *rec.MoodBefore
	}
	if rec.MoodAfter != nil {
		moodAfter = *rec.MoodAfter
	}

	query := `
		INSERT INTO sessions (` + sessionColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			duration_minutes = excluded.duration_minutes,
			phase = excluded.phase,
			mood_before = excluded.mood_before,
			mood_after = excluded.mood_after,
			interventions_used = excluded.interventions_used,
			homework_assigned = excluded.homework_assigned,
			crisis_flags = excluded.crisis_flags,
			patient_feedback = excluded.patient_feedback,
			summary = excluded.summary,
			completed = excluded.completed,
			updated_at = excluded.updated_at
	`
	_, err = r.db.ExecContext(ctx, query,
		rec.ID, rec.PatientID, rec.Date, rec.Modality, rec.DurationMinutes, rec.Phase,
		moodBefore, moodAfter, interventionsJSON, homeworkJSON, crisisJSON,
		rec.PatientFeedback, rec.Summary, rec.Completed, rec.CreatedAt, rec.UpdatedAt)
	return err
}

func (r *sqliteRepo) GetByID(ctx context.Context, id uuid.UUID) (*Record, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE id = ?`
	rec, err := scanRecord(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("session %s not found", id)
		}
		return nil, err
	}
	return rec, nil
}

func (r *sqliteRepo) ListRecent(ctx context.Context, patientID uuid.UUID, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 10
	}
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE patient_id = ? ORDER BY session_date DESC LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, patientID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*Record, error) {
	var rec Record
	var moodBefore, moodAfter sql.NullInt64
	var feedback, summary sql.NullString
	var interventionsJSON, homeworkJSON, crisisJSON []byte

	err := row.Scan(
		&rec.ID, &rec.PatientID, &rec.Date, &rec.Modality, &rec.DurationMinutes, &rec.Phase,
		&moodBefore, &moodAfter, &interventionsJSON, &homeworkJSON, &crisisJSON,
		&feedback, &summary, &rec.Completed, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if moodBefore.Valid {
		v := int(moodBefore.Int64)
		rec.MoodBefore = &v
	}
	if moodAfter.Valid {
		v := int(moodAfter.Int64)
		rec.MoodAfter = &v
	}
	rec.PatientFeedback = feedback.String
	rec.Summary = summary.String

	for _, pair := range []struct {
		raw  []byte
		dest *[]string
	}{
		{interventionsJSON, &rec.Interventions},
		{homeworkJSON, &rec.Homework},
		{crisisJSON, &rec.CrisisFlags},
	} {
		if len(pair.raw) > 0 {
			if err := json.Unmarshal(pair.raw, pair.dest); err != nil {
				return nil, fmt.Errorf("unmarshal session list: %w", err)
			}
		}
	}
	return &rec, nil
}
