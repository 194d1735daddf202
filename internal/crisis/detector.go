// Package crisis screens patient input for safety concerns and records
// alerts that need clinical follow-up.
package crisis

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"therapy-ai-agent/internal/scoring"
)

const maxTriggerLen = 500

// categoryKeywords are checked in order after the weighted suicide
// screen. The first matching category wins.
var categoryKeywords = []struct {
	category Category
	risk     scoring.RiskLevel
	phrases  []string
}{
	{CategorySelfHarm, scoring.RiskModerate, []string{
		"cut myself", "hurt myself", "self harm", "cutting", "burning myself",
	}},
	{CategoryViolence, scoring.RiskHigh, []string{
		"kill someone", "hurt others", "violence", "revenge",
	}},
	{CategoryPsychosis, scoring.RiskModerate, []string{
		"voices telling me", "hearing voices", "people watching me", "conspiracy",
	}},
	{CategorySubstanceAbuse, scoring.RiskModerate, []string{
		"overdose", "too many pills", "drinking too much", "using again",
	}},
}

// Detect screens text for crisis indicators. Suicide risk is scored
// first with the weighted keyword model; other categories fall back to
// simple phrase matching in fixed priority order.
func Detect(text string) Detection {
	trigger := text
	if len(trigger) > maxTriggerLen {
		cut := maxTriggerLen
		for cut > 0 && !utf8.RuneStart(trigger[cut]) {
			cut--
		}
		trigger = trigger[:cut]
	}

	score := scoring.SuicideRisk(text)
	if level := scoring.RiskLevelForScore(score); level != scoring.RiskNone {
		return Detection{
			Detected:    true,
			Category:    CategorySuicide,
			RiskLevel:   level,
			Score:       score,
			TriggerText: trigger,
		}
	}

	lower := strings.ToLower(text)
	for _, ck := range categoryKeywords {
		for _, p := range ck.phrases {
			if strings.Contains(lower, p) {
				return Detection{
					Detected:    true,
					Category:    ck.category,
					RiskLevel:   ck.risk,
					TriggerText: trigger,
				}
			}
		}
	}

	return Detection{}
}

// Advisory returns the immediate safety guidance for a detection.
func Advisory(d Detection) string {
	if !d.Detected {
		return ""
	}
	switch d.Category {
	case CategorySuicide:
		switch d.RiskLevel {
		case scoring.RiskImminent:
			return "IMMINENT RISK: Do not leave the patient alone. Contact emergency services (911) now. National Suicide Prevention Lifeline: 988."
		case scoring.RiskHigh:
			return "HIGH RISK: Conduct a structured suicide risk interview and establish a safety plan before the session continues. Lifeline: 988, Crisis Text Line: text HOME to 741741."
		default:
			return "Suicide risk indicators present. Explore directly, assess intent and means, and document. Lifeline: 988."
		}
	case CategoryViolence:
		return "Risk of harm to others detected. Assess intent, target, and means. Duty-to-warn obligations may apply."
	case CategorySelfHarm:
		return "Self-harm indicators detected. Assess recency, frequency, and medical severity. Review coping alternatives."
	case CategoryPsychosis:
		return "Possible psychotic symptoms detected. Assess reality testing and consider psychiatric referral."
	case CategorySubstanceAbuse:
		return "Substance misuse indicators detected. Assess quantity, frequency, and withdrawal risk."
	}
	return ""
}

type Service interface {
	Screen(ctx context.Context, patientID uuid.UUID, text string) (Detection, error)
	ConductInterview(ctx context.Context, patientID uuid.UUID, responses map[string]int) (*InterviewResult, error)
	OpenAlerts(ctx context.Context, patientID uuid.UUID) ([]Alert, error)
	History(ctx context.Context, patientID uuid.UUID) ([]Alert, error)
	FollowUpNeeded(ctx context.Context, patientID uuid.UUID) (bool, error)
	Resolve(ctx context.Context, alertID uuid.UUID, notes string) error
}

type service struct {
	repo   Repository
	logger zerolog.Logger
}

func NewService(repo Repository, logger zerolog.Logger) Service {
	return &service{repo: repo, logger: logger}
}

// Screen runs detection and persists an alert when anything is found.
func (s *service) Screen(ctx context.Context, patientID uuid.UUID, text string) (Detection, error) {
	d := Detect(text)
	if !d.Detected {
		return d, nil
	}

	alert := &Alert{
		ID:               uuid.New(),
		PatientID:        patientID,
		CrisisType:       d.Category,
		RiskLevel:        d.RiskLevel,
		TriggerText:      d.TriggerText,
		AssessmentScore:  d.Score,
		FollowUpRequired: true,
		CreatedAt:        time.Now(),
	}
	if err := s.repo.Save(ctx, alert); err != nil {
		return d, fmt.Errorf("save crisis alert: %w", err)
	}

	s.logger.Warn().
		Str("patient_id", patientID.String()).
		Str("crisis_type", string(d.Category)).
		Str("risk_level", string(d.RiskLevel)).
		Int("score", d.Score).
		Msg("crisis alert raised")

	return d, nil
}

func (s *service) OpenAlerts(ctx context.Context, patientID uuid.UUID) ([]Alert, error) {
	return s.repo.ListOpen(ctx, patientID)
}

func (s *service) History(ctx context.Context, patientID uuid.UUID) ([]Alert, error) {
	return s.repo.ListAll(ctx, patientID)
}

// FollowUpNeeded reports whether any unresolved alert still requires
// clinical follow-up.
func (s *service) FollowUpNeeded(ctx context.Context, patientID uuid.UUID) (bool, error) {
	alerts, err := s.repo.ListOpen(ctx, patientID)
	if err != nil {
		return false, err
	}
	for _, a := range alerts {
		if a.FollowUpRequired {
			return true, nil
		}
	}
	return false, nil
}

func (s *service) Resolve(ctx context.Context, alertID uuid.UUID, notes string) error {
	if err := s.repo.MarkResolved(ctx, alertID, notes); err != nil {
		return fmt.Errorf("resolve crisis alert: %w", err)
	}
	return nil
}
