package docs

import (
	"time"

	"github.com/google/uuid"
)

type NoteType string

const (
	NoteSOAP     NoteType = "soap"
	NoteCrisis   NoteType = "crisis"
	NoteProgress NoteType = "progress"
)

// Note is a SOAP-structured clinical note.
type Note struct {
	ID         uuid.UUID  `json:"id"`
	PatientID  uuid.UUID  `json:"patient_id"`
	SessionID  *uuid.UUID `json:"session_id,omitempty"`
	Type       NoteType   `json:"note_type"`
	Subjective string     `json:"subjective"`
	Objective  string     `json:"objective"`
	Assessment string     `json:"assessment"`
	Plan       string     `json:"plan"`
	CreatedAt  time.Time  `json:"created_at"`
}

// SessionSummary carries the facts a session note is built from.
type SessionSummary struct {
	PatientName     string
	Modality        string
	DurationMinutes int
	MoodBefore      *int
	MoodAfter       *int
	Interventions   []string
	Homework        []string
	CrisisFlags     []string
	PatientFeedback string
	Engagement      int
	PhasesCompleted int
	PhasesTotal     int
}
