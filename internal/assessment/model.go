package assessment

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"therapy-ai-agent/internal/scoring"
)

var ErrNotEnoughHistory = errors.New("need at least 2 assessments to track progress")

// Question is one item of an instrument, with the option labels shown
// to the patient and the score each option carries.
type Question struct {
	ID      int      `json:"id"`
	Text    string   `json:"text"`
	Options []string `json:"options"`
	Scores  []int    `json:"scores"`
}

// Bank is the full definition of an instrument.
type Bank struct {
	Instrument   scoring.Instrument
	Name         string
	Instructions string
	Questions    []Question
}

// Response records both the chosen option and its score for one item.
type Response struct {
	Answer string `json:"answer"`
	Score  int    `json:"score"`
}

// Assessment is an immutable record of one administration. Rows are
// only ever inserted; corrections are new administrations.
type Assessment struct {
	ID             uuid.UUID           `json:"id"`
	PatientID      uuid.UUID           `json:"patient_id"`
	SessionID      *uuid.UUID          `json:"session_id,omitempty"`
	Type           scoring.Instrument  `json:"assessment_type"`
	Responses      map[string]Response `json:"responses"`
	TotalScore     int                 `json:"total_score"`
	SeverityLevel  string              `json:"severity_level"`
	Interpretation string              `json:"interpretation"`
	Date           time.Time           `json:"assessment_date"`
}

// Progress compares the two most recent administrations of one
// instrument. Lower scores mean improvement for the symptom scales.
type Progress struct {
	Type          scoring.Instrument `json:"assessment_type"`
	LatestScore   int                `json:"latest_score"`
	PreviousScore int                `json:"previous_score"`
	Change        int                `json:"change"`
	Improvement   bool               `json:"improvement"`
	ScoreHistory  []int              `json:"score_history"`
	DateHistory   []time.Time        `json:"date_history"`
	Total         int                `json:"total_assessments"`
}
