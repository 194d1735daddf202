// Package homework manages between-session assignments.
package homework

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// defaultEffectiveness is assumed when a patient reports completion in
// conversation without giving an explicit rating.
const defaultEffectiveness = 4

type Service interface {
	Assign(ctx context.Context, a *Assignment) error
	Pending(ctx context.Context, patientID uuid.UUID) ([]Assignment, error)
	List(ctx context.Context, patientID uuid.UUID) ([]Assignment, error)
	Complete(ctx context.Context, id uuid.UUID, notes string, effectiveness int) (*Assignment, error)
	ProcessFeedback(ctx context.Context, patientID uuid.UUID, input string) ([]Assignment, error)
}

type service struct {
	repo   Repository
	logger zerolog.Logger
}

func NewService(repo Repository, logger zerolog.Logger) Service {
	return &service{repo: repo, logger: logger}
}

func (s *service) Assign(ctx context.Context, a *Assignment) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.Type == "" {
		a.Type = "skill_practice"
	}
	if err := a.Validate(); err != nil {
		return err
	}
	if err := s.repo.Save(ctx, a); err != nil {
		return fmt.Errorf("assign homework: %w", err)
	}
	s.logger.Info().
		Str("patient_id", a.PatientID.String()).
		Str("title", a.Title).
		Msg("homework assigned")
	return nil
}

func (s *service) Pending(ctx context.Context, patientID uuid.UUID) ([]Assignment, error) {
	return s.repo.ListByPatient(ctx, patientID, true)
}

func (s *service) List(ctx context.Context, patientID uuid.UUID) ([]Assignment, error) {
	return s.repo.ListByPatient(ctx, patientID, false)
}

// Complete marks an assignment done, stamping the completion date so
// the completed flag and date stay in step.
func (s *service) Complete(ctx context.Context, id uuid.UUID, notes string, effectiveness int) (*Assignment, error) {
	if effectiveness < 1 || effectiveness > 5 {
		return nil, fmt.Errorf("effectiveness rating must be 1-5, got %d", effectiveness)
	}
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	a.Completed = true
	a.CompletionDate = &now
	a.CompletionNotes = notes
	a.Effectiveness = &effectiveness

	if err := s.repo.Save(ctx, a); err != nil {
		return nil, fmt.Errorf("complete homework: %w", err)
	}
	return a, nil
}

// ProcessFeedback completes all pending assignments when the patient's
// input reports they finished their homework. Returns the assignments
// that were closed.
func (s *service) ProcessFeedback(ctx context.Context, patientID uuid.UUID, input string) ([]Assignment, error) {
	if !MentionsCompletion(input) {
		return nil, nil
	}
	pending, err := s.repo.ListByPatient(ctx, patientID, true)
	if err != nil {
		return nil, err
	}
	if len(pending) == 0 {
		return nil, nil
	}

	now := time.Now()
	ids := make([]uuid.UUID, len(pending))
	for i := range pending {
		ids[i] = pending[i].ID
	}
	if err := s.repo.CompleteAll(ctx, ids, "reported complete in session", defaultEffectiveness, now); err != nil {
		return nil, fmt.Errorf("close pending homework: %w", err)
	}

	closed := make([]Assignment, len(pending))
	for i, a := range pending {
		a.Completed = true
		a.CompletionDate = &now
		a.CompletionNotes = "reported complete in session"
		effectiveness := defaultEffectiveness
		a.Effectiveness = &effectiveness
		closed[i] = a
	}
	return closed, nil
}
