// Package docs generates and stores clinical notes.
package docs

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type Service interface {
	RecordSessionNote(ctx context.Context, patientID uuid.UUID, sessionID *uuid.UUID, summary SessionSummary) (*Note, error)
	RecordNote(ctx context.Context, n *Note) error
	List(ctx context.Context, patientID uuid.UUID) ([]Note, error)
}

type service struct {
	repo   Repository
	logger zerolog.Logger
}

func NewService(repo Repository, logger zerolog.Logger) Service {
	return &service{repo: repo, logger: logger}
}

// RecordSessionNote builds a SOAP note from the session summary and
// persists it.
func (s *service) RecordSessionNote(ctx context.Context, patientID uuid.UUID, sessionID *uuid.UUID, summary SessionSummary) (*Note, error) {
	n := &Note{
		ID:         uuid.New(),
		PatientID:  patientID,
		SessionID:  sessionID,
		Type:       NoteSOAP,
		Subjective: buildSubjective(summary),
		Objective:  buildObjective(summary),
		Assessment: buildAssessment(summary),
		Plan:       buildPlan(summary),
		CreatedAt:  time.Now(),
	}
	if len(summary.CrisisFlags) > 0 {
		n.Type = NoteCrisis
	}

	if err := s.repo.Save(ctx, n); err != nil {
		return nil, fmt.Errorf("save session note: %w", err)
	}
	s.logger.Info().
		Str("patient_id", patientID.String()).
		Str("note_type", string(n.Type)).
		Msg("clinical note recorded")
	return n, nil
}

func (s *service) RecordNote(ctx context.Context, n *Note) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.Type == "" {
		n.Type = NoteProgress
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	if err := s.repo.Save(ctx, n); err != nil {
		return fmt.Errorf("save note: %w", err)
	}
	return nil
}

func (s *service) List(ctx context.Context, patientID uuid.UUID) ([]Note, error) {
	return s.repo.ListByPatient(ctx, patientID)
}

func buildSubjective(sum SessionSummary) string {
	var b strings.Builder
	if sum.MoodBefore != nil {
		fmt.Fprintf(&b, "Patient reported mood of %d/10 at session start.", *sum.MoodBefore)
	} else {
		b.WriteString("Patient mood not reported at session start.")
	}
	if sum.PatientFeedback != "" {
		fmt.Fprintf(&b, " Patient feedback: %q.", sum.PatientFeedback)
	}
	return b.String()
}

func buildObjective(sum SessionSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d-minute %s session. Engagement level %d/10.",
		sum.DurationMinutes, sum.Modality, sum.Engagement)
	if sum.PhasesTotal > 0 {
		fmt.Fprintf(&b, " Completed %d of %d session phases.", sum.PhasesCompleted, sum.PhasesTotal)
	}
	if len(sum.Interventions) > 0 {
		fmt.Fprintf(&b, " Interventions used: %s.", strings.Join(sum.Interventions, ", "))
	}
	return b.String()
}

func buildAssessment(sum SessionSummary) string {
	var b strings.Builder
	if sum.MoodBefore != nil && sum.MoodAfter != nil {
		delta := *sum.MoodAfter - *sum.MoodBefore
		switch {
		case delta > 0:
			fmt.Fprintf(&b, "Mood improved from %d to %d over the session.", *sum.MoodBefore, *sum.MoodAfter)
		case delta < 0:
			fmt.Fprintf(&b, "Mood declined from %d to %d over the session.", *sum.MoodBefore, *sum.MoodAfter)
		default:
			fmt.Fprintf(&b, "Mood stable at %d across the session.", *sum.MoodBefore)
		}
	} else {
		b.WriteString("Insufficient mood data to assess within-session change.")
	}
	if len(sum.CrisisFlags) > 0 {
		fmt.Fprintf(&b, " CRISIS INDICATORS PRESENT: %s. Follow-up required.", strings.Join(sum.CrisisFlags, ", "))
	}
	return b.String()
}

func buildPlan(sum SessionSummary) string {
	var b strings.Builder
	if len(sum.Homework) > 0 {
		fmt.Fprintf(&b, "Homework assigned: %s.", strings.Join(sum.Homework, ", "))
	} else {
		b.WriteString("No homework assigned this session.")
	}
	b.WriteString(" Continue treatment per plan at next scheduled session.")
	if len(sum.CrisisFlags) > 0 {
		b.WriteString(" Safety follow-up before next session.")
	}
	return b.String()
}
