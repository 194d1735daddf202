package patient

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	List(ctx context.Context, includeInactive bool) ([]Patient, error)
	Save(ctx context.Context, p *Patient) error
}

type sqliteRepo struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &sqliteRepo{db: db}
}

const patientColumns = `id, name, date_of_birth, gender, risk_level, preferred_modality, notes, active, created_at, updated_at`

func (r *sqliteRepo) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	query := `SELECT ` + patientColumns + ` FROM patients WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)

	p, err := scanPatient(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *sqliteRepo) List(ctx context.Context, includeInactive bool) ([]Patient, error) {
	query := `SELECT ` + patientColumns + ` FROM patients`
	if !includeInactive {
		query += ` WHERE active = 1`
	}
	query += ` ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var patients []Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, err
		}
		patients = append(patients, *p)
	}
	return patients, rows.Err()
}

func (r *sqliteRepo) Save(ctx context.Context, p *Patient) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	p.UpdatedAt = time.Now()

	query := `
		INSERT INTO patients (` + patientColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			date_of_birth = excluded.date_of_birth,
			gender = excluded.gender,
			risk_level = excluded.risk_level,
			preferred_modality = excluded.preferred_modality,
			notes = excluded.notes,
			active = excluded.active,
			updated_at = excluded.updated_at
	`
	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.Name, p.DateOfBirth, p.Gender, p.RiskLevel,
		p.PreferredModality, p.Notes, p.Active, p.CreatedAt, p.UpdatedAt)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPatient(row rowScanner) (*Patient, error) {
	var p Patient
	var dob, gender, notes sql.NullString
	err := row.Scan(
		&p.ID, &p.Name, &dob, &gender, &p.RiskLevel,
		&p.PreferredModality, &notes, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.DateOfBirth = dob.String
	p.Gender = gender.String
	p.Notes = notes.String
	return &p, nil
}
