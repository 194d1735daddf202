// Package assessment administers standardized instruments and tracks
// scores over time.
package assessment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"therapy-ai-agent/internal/scoring"
)

type Service interface {
	Administer(ctx context.Context, patientID uuid.UUID, sessionID *uuid.UUID, instrument scoring.Instrument, choices []int) (*Assessment, error)
	History(ctx context.Context, patientID uuid.UUID, instrument scoring.Instrument) ([]Assessment, error)
	TrackProgress(ctx context.Context, patientID uuid.UUID, instrument scoring.Instrument) (*Progress, error)
}

type service struct {
	repo   Repository
	logger zerolog.Logger
}

func NewService(repo Repository, logger zerolog.Logger) Service {
	return &service{repo: repo, logger: logger}
}

// Administer scores the chosen options against the instrument's bank
// and persists a new record. choices are option indexes, one per
// question in bank order.
func (s *service) Administer(ctx context.Context, patientID uuid.UUID, sessionID *uuid.UUID, instrument scoring.Instrument, choices []int) (*Assessment, error) {
	bank := BankFor(instrument)
	if bank == nil {
		return nil, fmt.Errorf("assessment type %q not supported", instrument)
	}
	if len(choices) != len(bank.Questions) {
		return nil, fmt.Errorf("%s expects %d responses, got %d", instrument, len(bank.Questions), len(choices))
	}

	responses := make(map[string]Response, len(choices))
	itemScores := make([]int, len(choices))
	for i, choice := range choices {
		q := bank.Questions[i]
		if choice < 0 || choice >= len(q.Options) {
			return nil, fmt.Errorf("question %d: choice %d out of range [0, %d]", q.ID, choice, len(q.Options)-1)
		}
		responses[fmt.Sprintf("q%d", q.ID)] = Response{Answer: q.Options[choice], Score: q.Scores[choice]}
		itemScores[i] = q.Scores[choice]
	}

	total, err := scoring.Score(instrument, itemScores)
	if err != nil {
		return nil, err
	}

	a := &Assessment{
		ID:             uuid.New(),
		PatientID:      patientID,
		SessionID:      sessionID,
		Type:           instrument,
		Responses:      responses,
		TotalScore:     total,
		SeverityLevel:  scoring.Severity(instrument, total),
		Interpretation: scoring.Interpret(instrument, total),
		Date:           time.Now(),
	}
	if err := s.repo.Save(ctx, a); err != nil {
		return nil, fmt.Errorf("save assessment: %w", err)
	}

	s.logger.Info().
		Str("patient_id", patientID.String()).
		Str("assessment_type", string(instrument)).
		Int("total_score", total).
		Str("severity", a.SeverityLevel).
		Msg("assessment completed")

	return a, nil
}

func (s *service) History(ctx context.Context, patientID uuid.UUID, instrument scoring.Instrument) ([]Assessment, error) {
	return s.repo.ListByPatient(ctx, patientID, instrument)
}

// TrackProgress compares the two most recent administrations. For the
// symptom scales a drop in score counts as improvement; for ORS and SRS
// a rise does.
func (s *service) TrackProgress(ctx context.Context, patientID uuid.UUID, instrument scoring.Instrument) (*Progress, error) {
	history, err := s.repo.ListByPatient(ctx, patientID, instrument)
	if err != nil {
		return nil, err
	}
	if len(history) < 2 {
		return nil, ErrNotEnoughHistory
	}

	change := history[0].TotalScore - history[1].TotalScore
	improvement := change < 0
	if instrument == scoring.ORS || instrument == scoring.SRS {
		improvement = change > 0
	}

	p := &Progress{
		Type:          instrument,
		LatestScore:   history[0].TotalScore,
		PreviousScore: history[1].TotalScore,
		Change:        change,
		Improvement:   improvement,
		Total:         len(history),
	}
	for i := len(history) - 1; i >= 0; i-- {
		p.ScoreHistory = append(p.ScoreHistory, history[i].TotalScore)
		p.DateHistory = append(p.DateHistory, history[i].Date)
	}
	return p, nil
}
