package homework

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"therapy-ai-agent/internal/platform/db"
)

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Assignment, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, pendingOnly bool) ([]Assignment, error)
	Save(ctx context.Context, a *Assignment) error
	CompleteAll(ctx context.Context, ids []uuid.UUID, notes string, effectiveness int, completedAt time.Time) error
}

type sqliteRepo struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &sqliteRepo{db: db}
}

const assignmentColumns = `id, patient_id, session_id, assignment_type, title, description, due_date, completed, completion_date, completion_notes, effectiveness_rating, created_at, updated_at`

func (r *sqliteRepo) GetByID(ctx context.Context, id uuid.UUID) (*Assignment, error) {
	query := `SELECT ` + assignmentColumns + ` FROM homework_assignments WHERE id = ?`
	a, err := scanAssignment(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

func (r *sqliteRepo) ListByPatient(ctx context.Context, patientID uuid.UUID, pendingOnly bool) ([]Assignment, error) {
	query := `SELECT ` + assignmentColumns + ` FROM homework_assignments WHERE patient_id = ?`
	if pendingOnly {
		query += ` AND completed = 0`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assignments []Assignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, *a)
	}
	return assignments, rows.Err()
}

func (r *sqliteRepo) Save(ctx context.Context, a *Assignment) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	a.UpdatedAt = time.Now()

	var sessionID any
	if a.SessionID != nil {
		sessionID = *a.SessionID
	}
	var completionDate any
	if a.CompletionDate != nil {
		completionDate = *a.CompletionDate
	}
	var effectiveness any
	if a.Effectiveness != nil {
		effectiveness = *a.Effectiveness
	}

	query := `
		INSERT INTO homework_assignments (` + assignmentColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			assignment_type = excluded.assignment_type,
			title = excluded.title,
			description = excluded.description,
			due_date = excluded.due_date,
			completed = excluded.completed,
			completion_date = excluded.completion_date,
			completion_notes = excluded.completion_notes,
			effectiveness_rating = excluded.effectiveness_rating,
			updated_at = excluded.updated_at
	`
	_, err := r.db.ExecContext(ctx, query,
		a.ID, a.PatientID, sessionID, a.Type, a.Title, a.Description, a.DueDate,
		a.Completed, completionDate, a.CompletionNotes, effectiveness, a.CreatedAt, a.UpdatedAt)
	return err
}

// CompleteAll closes the given assignments in one transaction so a
// mid-loop failure cannot leave the set half closed.
func (r *sqliteRepo) CompleteAll(ctx context.Context, ids []uuid.UUID, notes string, effectiveness int, completedAt time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	return db.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		query := `
			UPDATE homework_assignments
			SET completed = 1, completion_date = ?, completion_notes = ?, effectiveness_rating = ?, updated_at = ?
			WHERE id = ? AND completed = 0
		`
		for _, id := range ids {
			if _, err := tx.ExecContext(ctx, query, completedAt, notes, effectiveness, completedAt, id); err != nil {
				return err
			}
		}
		return nil
	})
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAssignment(row rowScanner) (*Assignment, error) {
	var a Assignment
	var sessionID sql.NullString
	var description, dueDate, notes sql.NullString
	var completionDate sql.NullTime
	var effectiveness sql.NullInt64

	err := row.Scan(
		&a.ID, &a.PatientID, &sessionID, &a.Type, &a.Title, &description, &dueDate,
		&a.Completed, &completionDate, &notes, &effectiveness, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if sessionID.Valid {
		id, err := uuid.Parse(sessionID.String)
		if err != nil {
			return nil, err
		}
		a.SessionID = &id
	}
	a.Description = description.String
	a.DueDate = dueDate.String
	a.CompletionNotes = notes.String
	if completionDate.Valid {
		t := completionDate.Time
		a.CompletionDate = &t
	}
	if effectiveness.Valid {
		e := int(effectiveness.Int64)
		a.Effectiveness = &e
	}
	return &a, nil
}
