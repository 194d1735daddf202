package homework

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"therapy-ai-agent/internal/patient"
)

var ErrNotFound = errors.New("homework assignment not found")

type Assignment struct {
	ID              uuid.UUID  `json:"id"`
	PatientID       uuid.UUID  `json:"patient_id"`
	SessionID       *uuid.UUID `json:"session_id,omitempty"`
	Type            string     `json:"assignment_type"`
	Title           string     `json:"title"`
	Description     string     `json:"description,omitempty"`
	DueDate         string     `json:"due_date,omitempty"`
	Completed       bool       `json:"completed"`
	CompletionDate  *time.Time `json:"completion_date,omitempty"`
	CompletionNotes string     `json:"completion_notes,omitempty"`
	Effectiveness   *int       `json:"effectiveness_rating,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func (a *Assignment) Validate() error {
	if strings.TrimSpace(a.Title) == "" {
		return errors.New("assignment title is required")
	}
	if a.Completed != (a.CompletionDate != nil) {
		return errors.New("completed flag must match completion date")
	}
	return nil
}

// Suggest derives assignment titles from what was discussed in session.
// At most three are returned; modality defaults fill in when nothing
// specific was discussed.
func Suggest(discussion string, modality patient.Modality) []string {
	lower := strings.ToLower(discussion)
	var suggestions []string

	if strings.Contains(lower, "thought record") {
		suggestions = append(suggestions, "Daily thought records")
	}
	if strings.Contains(lower, "activity") && strings.Contains(lower, "schedule") {
		suggestions = append(suggestions, "Weekly activity scheduling")
	}
	if strings.Contains(lower, "mindfulness") {
		suggestions = append(suggestions, "Daily mindfulness practice")
	}

	if len(suggestions) == 0 {
		switch modality {
		case patient.ModalityDBT:
			suggestions = []string{"Daily mindfulness practice", "Distress tolerance skill diary"}
		case patient.ModalityACT:
			suggestions = []string{"Values clarification worksheet", "Daily defusion practice"}
		default:
			suggestions = []string{"Daily thought records", "Weekly activity scheduling"}
		}
	}

	if len(suggestions) > 3 {
		suggestions = suggestions[:3]
	}
	return suggestions
}

var completionPhrases = []string{"completed", "finished", "did it", "done"}

// MentionsCompletion reports whether patient input claims finished
// homework.
func MentionsCompletion(input string) bool {
	lower := strings.ToLower(input)
	for _, p := range completionPhrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}
