// Package goal tracks treatment goals and their progress.
package goal

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type Service interface {
	Create(ctx context.Context, g *Goal) error
	Get(ctx context.Context, id uuid.UUID) (*Goal, error)
	List(ctx context.Context, patientID uuid.UUID, status Status) ([]Goal, error)
	UpdateProgress(ctx context.Context, id uuid.UUID, progress int) (*Goal, error)
	BumpProgress(ctx context.Context, patientID uuid.UUID, delta int) (*Goal, error)
	SetStatus(ctx context.Context, id uuid.UUID, status Status) error
	ProgressReport(ctx context.Context, patientID uuid.UUID) (*Report, error)
}

type service struct {
	repo   Repository
	logger zerolog.Logger
}

func NewService(repo Repository, logger zerolog.Logger) Service {
	return &service{repo: repo, logger: logger}
}

func (s *service) Create(ctx context.Context, g *Goal) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	if g.Status == "" {
		g.Status = StatusActive
	}
	if g.Priority == 0 {
		g.Priority = 2
	}
	if err := g.Validate(); err != nil {
		return err
	}
	if err := s.repo.Save(ctx, g); err != nil {
		return fmt.Errorf("create goal: %w", err)
	}
	s.logger.Info().
		Str("patient_id", g.PatientID.String()).
		Str("goal_type", string(g.Type)).
		Msg("treatment goal created")
	return nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*Goal, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, patientID uuid.UUID, status Status) ([]Goal, error) {
	return s.repo.ListByPatient(ctx, patientID, status)
}

// UpdateProgress sets a goal's progress. Reaching 100 marks the goal
// achieved in the same update.
func (s *service) UpdateProgress(ctx context.Context, id uuid.UUID, progress int) (*Goal, error) {
	if progress < 0 || progress > 100 {
		return nil, fmt.Errorf("progress must be 0-100, got %d", progress)
	}
	g, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	g.CurrentProgress = progress
	if progress >= 100 {
		g.Status = StatusAchieved
	}
	if err := s.repo.Save(ctx, g); err != nil {
		return nil, fmt.Errorf("update goal progress: %w", err)
	}

	if g.Status == StatusAchieved {
		s.logger.Info().Str("goal_id", id.String()).Msg("treatment goal achieved")
	}
	return g, nil
}

// BumpProgress adds delta to the first active goal (highest priority,
// oldest first), capping at 100. A goal that reaches the cap
// transitions to achieved. Returns nil when no goal is active.
func (s *service) BumpProgress(ctx context.Context, patientID uuid.UUID, delta int) (*Goal, error) {
	active, err := s.repo.ListByPatient(ctx, patientID, StatusActive)
	if err != nil {
		return nil, err
	}
	if len(active) == 0 {
		return nil, nil
	}

	g := &active[0]
	progress := g.CurrentProgress + delta
	if progress > 100 {
		progress = 100
	}
	if progress < 0 {
		progress = 0
	}
	g.CurrentProgress = progress
	if progress >= 100 {
		g.Status = StatusAchieved
	}
	if err := s.repo.Save(ctx, g); err != nil {
		return nil, fmt.Errorf("bump goal progress: %w", err)
	}
	return g, nil
}

func (s *service) SetStatus(ctx context.Context, id uuid.UUID, status Status) error {
	switch status {
	case StatusActive, StatusAchieved, StatusModified, StatusDiscontinued, StatusOnHold:
	default:
		return fmt.Errorf("unknown goal status %q", status)
	}
	g, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	g.Status = status
	if err := s.repo.Save(ctx, g); err != nil {
		return fmt.Errorf("set goal status: %w", err)
	}
	return nil
}

func (s *service) ProgressReport(ctx context.Context, patientID uuid.UUID) (*Report, error) {
	goals, err := s.repo.ListByPatient(ctx, patientID, "")
	if err != nil {
		return nil, err
	}

	report := &Report{TotalCount: len(goals)}
	sum := 0
	for _, g := range goals {
		switch g.Status {
		case StatusActive:
			report.ActiveCount++
		case StatusAchieved:
			report.AchievedCount++
		}
		sum += g.CurrentProgress
	}
	if len(goals) > 0 {
		report.AverageProgress = float64(sum) / float64(len(goals))
	}
	return report, nil
}
