package docs

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
)

type Repository interface {
	Save(ctx context.Context, n *Note) error
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]Note, error)
}

type sqliteRepo struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &sqliteRepo{db: db}
}

func (r *sqliteRepo) Save(ctx context.Context, n *Note) error {
	var sessionID any
	if n.SessionID != nil {
		sessionID = *n.SessionID
	}
	query := `
		INSERT INTO clinical_notes (id, patient_id, session_id, note_type, subjective, objective, assessment, plan, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		n.ID, n.PatientID, sessionID, n.Type,
		n.Subjective, n.Objective, n.Assessment, n.Plan, n.CreatedAt)
	return err
}

func (r *sqliteRepo) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]Note, error) {
	query := `
		SELECT id, patient_id, session_id, note_type, subjective, objective, assessment, plan, created_at
		FROM clinical_notes WHERE patient_id = ?
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notes []Note
	for rows.Next() {
		var n Note
		var sessionID sql.NullString
		var subjective, objective, assessment, plan sql.NullString
		err := rows.Scan(
			&n.ID, &n.PatientID, &sessionID, &n.Type,
			&subjective, &objective, &assessment, &plan, &n.CreatedAt)
		if err != nil {
			return nil, err
		}
		if sessionID.Valid {
			id, err := uuid.Parse(sessionID.String)
			if err != nil {
				return nil, err
			}
			n.SessionID = &id
		}
		n.Subjective = subjective.String
		n.Objective = objective.String
		n.Assessment = assessment.String
		n.Plan = plan.String
		notes = append(notes, n)
	}
	return notes, rows.Err()
}
