package crisis

import (
	"time"

	"github.com/google/uuid"

	"therapy-ai-agent/internal/scoring"
)

// Category names the kind of crisis a detection matched.
type Category string

const (
	CategorySuicide        Category = "suicide"
	CategorySelfHarm       Category = "self_harm"
	CategoryViolence       Category = "violence"
	CategoryPsychosis      Category = "psychosis"
	CategorySubstanceAbuse Category = "substance_abuse"
)

// Detection is the outcome of screening a single patient utterance.
type Detection struct {
	Detected    bool
	Category    Category
	RiskLevel   scoring.RiskLevel
	Score       int
	TriggerText string
}

// Alert is a persisted crisis event tied to a patient.
type Alert struct {
	ID               uuid.UUID         `json:"id"`
	PatientID        uuid.UUID         `json:"patient_id"`
	CrisisType       Category          `json:"crisis_type"`
	RiskLevel        scoring.RiskLevel `json:"risk_level"`
	TriggerText      string            `json:"trigger_text"`
	AssessmentScore  int               `json:"assessment_score"`
	Resolved         bool              `json:"resolved"`
	FollowUpRequired bool              `json:"follow_up_required"`
	Notes            string            `json:"notes"`
	CreatedAt        time.Time         `json:"created_at"`
}

// InterviewQuestion is one item of the structured risk interview.
type InterviewQuestion struct {
	ID     string
	Text   string
	Scale  bool // true for 0-10 scale questions, false for yes/no
	Weight float64
}

// InterviewResult summarizes a completed risk interview.
type InterviewResult struct {
	Score     float64
	RiskLevel scoring.RiskLevel
	Advisory  string
}
