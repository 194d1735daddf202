package patient

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"therapy-ai-agent/internal/scoring"
)

var ErrNotFound = errors.New("patient not found")

// Modality is the therapeutic approach used with a patient.
type Modality string

const (
	ModalityCBT           Modality = "CBT"
	ModalityDBT           Modality = "DBT"
	ModalityACT           Modality = "ACT"
	ModalityPsychodynamic Modality = "Psychodynamic"
)

// ModalitySkills lists the skills taught under each modality.
// Psychodynamic work is insight-oriented and has no discrete skill list.
var ModalitySkills = map[Modality][]string{
	ModalityCBT: {"thought challenging", "cognitive restructuring", "behavioral activation"},
	ModalityDBT: {"mindfulness", "distress tolerance", "emotion regulation"},
	ModalityACT: {"cognitive defusion", "values clarification", "mindful acceptance"},
}

type Patient struct {
	ID                uuid.UUID         `json:"id"`
	Name              string            `json:"name"`
	DateOfBirth       string            `json:"date_of_birth,omitempty"`
	Gender            string            `json:"gender,omitempty"`
	RiskLevel         scoring.RiskLevel `json:"risk_level"`
	PreferredModality Modality          `json:"preferred_modality"`
	Notes             string            `json:"notes,omitempty"`
	Active            bool              `json:"active"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

// Validate checks the fields a caller may set directly.
func (p *Patient) Validate() error {
	if len(strings.TrimSpace(p.Name)) < 2 {
		return errors.New("patient name must be at least 2 characters")
	}
	switch p.PreferredModality {
	case ModalityCBT, ModalityDBT, ModalityACT, ModalityPsychodynamic:
	default:
		return fmt.Errorf("unknown modality %q", p.PreferredModality)
	}
	if p.DateOfBirth != "" {
		dob, err := time.Parse("2006-01-02", p.DateOfBirth)
		if err != nil {
			return fmt.Errorf("date of birth must be YYYY-MM-DD: %w", err)
		}
		now := time.Now()
		if dob.After(now) {
			return errors.New("date of birth is in the future")
		}
		if dob.Before(now.AddDate(-120, 0, 0)) {
			return errors.New("date of birth implies age over 120")
		}
	}
	return nil
}
