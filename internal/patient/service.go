// Package patient manages the patient roster and each patient's
// standing risk level.
package patient

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"therapy-ai-agent/internal/scoring"
)

type Service interface {
	Create(ctx context.Context, p *Patient) error
	Get(ctx context.Context, id uuid.UUID) (*Patient, error)
	List(ctx context.Context, includeInactive bool) ([]Patient, error)
	Update(ctx context.Context, p *Patient) error
	Deactivate(ctx context.Context, id uuid.UUID) error
	RaiseRisk(ctx context.Context, id uuid.UUID, level scoring.RiskLevel) error
}

type service struct {
	repo   Repository
	logger zerolog.Logger
}

func NewService(repo Repository, logger zerolog.Logger) Service {
	return &service{repo: repo, logger: logger}
}

func (s *service) Create(ctx context.Context, p *Patient) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.PreferredModality == "" {
		p.PreferredModality = ModalityCBT
	}
	if p.RiskLevel == "" {
		p.RiskLevel = scoring.RiskLow
	}
	p.Active = true

	if err := p.Validate(); err != nil {
		return err
	}
	if err := s.repo.Save(ctx, p); err != nil {
		return fmt.Errorf("create patient: %w", err)
	}

	s.logger.Info().Str("patient_id", p.ID.String()).Str("name", p.Name).Msg("patient created")
	return nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, includeInactive bool) ([]Patient, error) {
	return s.repo.List(ctx, includeInactive)
}

func (s *service) Update(ctx context.Context, p *Patient) error {
	if err := p.Validate(); err != nil {
		return err
	}
	existing, err := s.repo.GetByID(ctx, p.ID)
	if err != nil {
		return err
	}
	p.CreatedAt = existing.CreatedAt
	if err := s.repo.Save(ctx, p); err != nil {
		return fmt.Errorf("update patient: %w", err)
	}
	return nil
}

// Deactivate soft-deletes a patient. Session history and alerts are
// kept for the clinical record.
func (s *service) Deactivate(ctx context.Context, id uuid.UUID) error {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	p.Active = false
	if err := s.repo.Save(ctx, p); err != nil {
		return fmt.Errorf("deactivate patient: %w", err)
	}
	s.logger.Info().Str("patient_id", id.String()).Msg("patient deactivated")
	return nil
}

// RaiseRisk escalates the patient's standing risk level. The level is
// never lowered automatically; de-escalation is a clinician decision
// made through Update.
func (s *service) RaiseRisk(ctx context.Context, id uuid.UUID, level scoring.RiskLevel) error {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if level.Rank() <= p.RiskLevel.Rank() {
		return nil
	}
	p.RiskLevel = level
	if err := s.repo.Save(ctx, p); err != nil {
		return fmt.Errorf("raise patient risk: %w", err)
	}

	s.logger.Warn().
		Str("patient_id", id.String()).
		Str("risk_level", string(level)).
		Msg("patient risk level raised")
	return nil
}
