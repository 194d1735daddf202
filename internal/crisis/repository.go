package crisis

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
)

type Repository interface {
	Save(ctx context.Context, a *Alert) error
	ListOpen(ctx context.Context, patientID uuid.UUID) ([]Alert, error)
	ListAll(ctx context.Context, patientID uuid.UUID) ([]Alert, error)
	MarkResolved(ctx context.Context, alertID uuid.UUID, notes string) error
}

type sqliteRepo struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &sqliteRepo{db: db}
}

func (r *sqliteRepo) Save(ctx context.Context, a *Alert) error {
	query := `
		INSERT INTO crisis_alerts (id, patient_id, crisis_type, risk_level, trigger_text, assessment_score, resolved, follow_up_required, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		a.ID, a.PatientID, a.CrisisType, a.RiskLevel, a.TriggerText,
		a.AssessmentScore, a.Resolved, a.FollowUpRequired, a.Notes, a.CreatedAt)
	return err
}

func (r *sqliteRepo) ListOpen(ctx context.Context, patientID uuid.UUID) ([]Alert, error) {
	query := `
		SELECT id, patient_id, crisis_type, risk_level, trigger_text, assessment_score, resolved, follow_up_required, notes, created_at
		FROM crisis_alerts WHERE patient_id = ? AND resolved = 0
		ORDER BY created_at DESC
	`
	return r.scanAlerts(ctx, query, patientID)
}

func (r *sqliteRepo) ListAll(ctx context.Context, patientID uuid.UUID) ([]Alert, error) {
	query := `
		SELECT id, patient_id, crisis_type, risk_level, trigger_text, assessment_score, resolved, follow_up_required, notes, created_at
		FROM crisis_alerts WHERE patient_id = ?
		ORDER BY created_at DESC
	`
	return r.scanAlerts(ctx, query, patientID)
}

func (r *sqliteRepo) scanAlerts(ctx context.Context, query string, patientID uuid.UUID) ([]Alert, error) {
	rows, err := r.db.QueryContext(ctx, query, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var alerts []Alert
	for rows.Next() {
		var a Alert
		var notes sql.NullString
		err := rows.Scan(
			&a.ID, &a.PatientID, &a.CrisisType, &a.RiskLevel, &a.TriggerText,
			&a.AssessmentScore, &a.Resolved, &a.FollowUpRequired, &notes, &a.CreatedAt)
		if err != nil {
			return nil, err
		}
		a.Notes = notes.String
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

func (r *sqliteRepo) MarkResolved(ctx context.Context, alertID uuid.UUID, notes string) error {
	query := `UPDATE crisis_alerts SET resolved = 1, follow_up_required = 0, notes = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query, notes, alertID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
