package crisis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"therapy-ai-agent/internal/scoring"
)

// InterviewQuestions is the structured suicide risk interview. Yes/no
// questions score their weight when answered yes; scale questions
// multiply the 0-10 answer by the weight. Negative weights are
// protective factors.
var InterviewQuestions = []InterviewQuestion{
	{ID: "q1", Text: "Have you had thoughts of death or dying recently?", Weight: 2},
	{ID: "q2", Text: "Have you thought about hurting yourself?", Weight: 3},
	{ID: "q3", Text: "Have you thought about suicide?", Weight: 4},
	{ID: "q4", Text: "Do you have a plan for how you would do it?", Weight: 3},
	{ID: "q5", Text: "Do you have access to the means in your plan?", Weight: 2},
	{ID: "q6", Text: "On a scale of 0-10, how likely are you to act on these thoughts?", Scale: true, Weight: 1},
	{ID: "q7", Text: "On a scale of 0-10, how hopeful do you feel about the future?", Scale: true, Weight: -1},
	{ID: "q8", Text: "On a scale of 0-10, how much support do you feel you have?", Scale: true, Weight: -0.5},
}

// ScoreInterview computes the weighted interview score. Yes/no answers
// are 1 for yes and 0 for no; scale answers are 0-10.
func ScoreInterview(responses map[string]int) (float64, error) {
	score := 0.0
	for _, q := range InterviewQuestions {
		answer, ok := responses[q.ID]
		if !ok {
			return 0, fmt.Errorf("missing response for %s", q.ID)
		}
		if q.Scale {
			if answer < 0 || answer > 10 {
				return 0, fmt.Errorf("response for %s out of range [0, 10]: %d", q.ID, answer)
			}
			score += float64(answer) * q.Weight
		} else {
			if answer != 0 && answer != 1 {
				return 0, fmt.Errorf("response for %s must be 0 or 1: %d", q.ID, answer)
			}
			if answer == 1 {
				score += q.Weight
			}
		}
	}
	return score, nil
}

// InterviewRiskLevel maps an interview score to a risk level.
func InterviewRiskLevel(score float64) scoring.RiskLevel {
	switch {
	case score >= 15:
		return scoring.RiskImminent
	case score >= 10:
		return scoring.RiskHigh
	case score >= 5:
		return scoring.RiskModerate
	default:
		return scoring.RiskLow
	}
}

// ConductInterview scores the responses and persists an alert when the
// result is above low risk.
func (s *service) ConductInterview(ctx context.Context, patientID uuid.UUID, responses map[string]int) (*InterviewResult, error) {
	score, err := ScoreInterview(responses)
	if err != nil {
		return nil, err
	}

	level := InterviewRiskLevel(score)
	result := &InterviewResult{
		Score:     score,
		RiskLevel: level,
		Advisory: Advisory(Detection{
			Detected:  true,
			Category:  CategorySuicide,
			RiskLevel: level,
		}),
	}

	if level.Rank() > scoring.RiskLow.Rank() {
		alert := &Alert{
			ID:               uuid.New(),
			PatientID:        patientID,
			CrisisType:       CategorySuicide,
			RiskLevel:        level,
			TriggerText:      "structured risk interview",
			AssessmentScore:  int(score),
			FollowUpRequired: true,
			CreatedAt:        time.Now(),
		}
		if err := s.repo.Save(ctx, alert); err != nil {
			return nil, fmt.Errorf("save interview alert: %w", err)
		}

		s.logger.Warn().
			Str("patient_id", patientID.String()).
			Float64("interview_score", score).
			Str("risk_level", string(level)).
			Msg("risk interview above threshold")
	}

	return result, nil
}
