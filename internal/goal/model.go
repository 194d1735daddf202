package goal

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("treatment goal not found")

type Type string

const (
	TypeSymptom       Type = "symptom"
	TypeFunctional    Type = "functional"
	TypeBehavioral    Type = "behavioral"
	TypeInterpersonal Type = "interpersonal"
	TypeCognitive     Type = "cognitive"
)

type Status string

const (
	StatusActive       Status = "active"
	StatusAchieved     Status = "achieved"
	StatusModified     Status = "modified"
	StatusDiscontinued Status = "discontinued"
	StatusOnHold       Status = "on_hold"
)

type Goal struct {
	ID              uuid.UUID `json:"id"`
	PatientID       uuid.UUID `json:"patient_id"`
	Type            Type      `json:"goal_type"`
	Description     string    `json:"description"`
	CurrentProgress int       `json:"current_progress"`
	Status          Status    `json:"status"`
	Priority        int       `json:"priority_level"`
	TargetDate      string    `json:"target_date,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (g *Goal) Validate() error {
	if strings.TrimSpace(g.Description) == "" {
		return errors.New("goal description is required")
	}
	switch g.Type {
	case TypeSymptom, TypeFunctional, TypeBehavioral, TypeInterpersonal, TypeCognitive:
	default:
		return fmt.Errorf("unknown goal type %q", g.Type)
	}
	if g.Priority < 1 || g.Priority > 3 {
		return fmt.Errorf("priority must be 1-3, got %d", g.Priority)
	}
	if g.CurrentProgress < 0 || g.CurrentProgress > 100 {
		return fmt.Errorf("progress must be 0-100, got %d", g.CurrentProgress)
	}
	if g.TargetDate != "" {
		if _, err := time.Parse("2006-01-02", g.TargetDate); err != nil {
			return fmt.Errorf("target date must be YYYY-MM-DD: %w", err)
		}
	}
	return nil
}

// Report summarizes a patient's goals for the clinician.
type Report struct {
	ActiveCount     int     `json:"active_count"`
	AchievedCount   int     `json:"achieved_count"`
	TotalCount      int     `json:"total_count"`
	AverageProgress float64 `json:"average_progress"`
}
