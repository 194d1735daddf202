package assessment

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"therapy-ai-agent/internal/scoring"
)

type Repository interface {
	Save(ctx context.Context, a *Assessment) error
	ListByPatient(ctx context.Context, patientID uuid.UUID, instrument scoring.Instrument) ([]Assessment, error)
}

type sqliteRepo struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &sqliteRepo{db: db}
}

func (r *sqliteRepo) Save(ctx context.Context, a *Assessment) error {
	responsesJSON, err := json.Marshal(a.Responses)
	if err != nil {
		return fmt.Errorf("marshal responses: %w", err)
	}

	var sessionID any
	if a.SessionID != nil {
		sessionID = *a.SessionID
	}

	query := `
		INSERT INTO assessments (id, patient_id, session_id, assessment_type, responses, total_score, severity_level, interpretation, assessment_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.ExecContext(ctx, query,
		a.ID, a.PatientID, sessionID, a.Type, responsesJSON,
		a.TotalScore, a.SeverityLevel, a.Interpretation, a.Date)
	return err
}

func (r *sqliteRepo) ListByPatient(ctx context.Context, patientID uuid.UUID, instrument scoring.Instrument) ([]Assessment, error) {
	query := `
		SELECT id, patient_id, session_id, assessment_type, responses, total_score, severity_level, interpretation, assessment_date
		FROM assessments WHERE patient_id = ?
	`
	args := []any{patientID}
	if instrument != "" {
		query += ` AND assessment_type = ?`
		args = append(args, instrument)
	}
	query += ` ORDER BY assessment_date DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assessments []Assessment
	for rows.Next() {
		var a Assessment
		var sessionID sql.NullString
		var responsesJSON []byte
		err := rows.Scan(
			&a.ID, &a.PatientID, &sessionID, &a.Type, &responsesJSON,
			&a.TotalScore, &a.SeverityLevel, &a.Interpretation, &a.Date)
		if err != nil {
			return nil, err
		}
		if sessionID.Valid {
			id, err := uuid.Parse(sessionID.String)
			if err != nil {
				return nil, fmt.Errorf("parse session id: %w", err)
			}
			a.SessionID = &id
		}
		if len(responsesJSON) > 0 {
			if err := json.Unmarshal(responsesJSON, &a.Responses); err != nil {
				return nil, fmt.Errorf("unmarshal responses: %w", err)
			}
		}
		assessments = append(assessments, a)
	}
	return assessments, rows.Err()
}
