package goal

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Goal, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, status Status) ([]Goal, error)
	Save(ctx context.Context, g *Goal) error
}

type sqliteRepo struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &sqliteRepo{db: db}
}

const goalColumns = `id, patient_id, goal_type, description, current_progress, status, priority_level, target_date, created_at, updated_at`

func (r *sqliteRepo) GetByID(ctx context.Context, id uuid.UUID) (*Goal, error) {
	query := `SELECT ` + goalColumns + ` FROM treatment_goals WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)

	g, err := scanGoal(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return g, nil
}

func (r *sqliteRepo) ListByPatient(ctx context.Context, patientID uuid.UUID, status Status) ([]Goal, error) {
	query := `SELECT ` + goalColumns + ` FROM treatment_goals WHERE patient_id = ?`
	args := []any{patientID}
	if status != "" {
		query += ` AND status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY priority_level, created_at`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var goals []Goal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		goals = append(goals, *g)
	}
	return goals, rows.Err()
}

func (r *sqliteRepo) Save(ctx context.Context, g *Goal) error {
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now()
	}
	g.UpdatedAt = time.Now()

	query := `
		INSERT INTO treatment_goals (` + goalColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			goal_type = excluded.goal_type,
			description = excluded.description,
			current_progress = excluded.current_progress,
			status = excluded.status,
			priority_level = excluded.priority_level,
			target_date = excluded.target_date,
			updated_at = excluded.updated_at
	`
	_, err := r.db.ExecContext(ctx, query,
		g.ID, g.PatientID, g.Type, g.Description, g.CurrentProgress,
		g.Status, g.Priority, g.TargetDate, g.CreatedAt, g.UpdatedAt)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGoal(row rowScanner) (*Goal, error) {
	var g Goal
	var targetDate sql.NullString
	err := row.Scan(
		&g.ID, &g.PatientID, &g.Type, &g.Description, &g.CurrentProgress,
		&g.Status, &g.Priority, &targetDate, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return nil, err
	}
	g.TargetDate = targetDate.String
	return &g, nil
}
