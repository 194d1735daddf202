package session

import (
	"time"

	"github.com/google/uuid"

	"therapy-ai-agent/internal/patient"
)

// State is the in-memory working state of an active session. It is
// owned by the Manager and guarded by the per-patient slot lock.
type State struct {
	SessionID uuid.UUID
	PatientID uuid.UUID
	Modality  patient.Modality

	Phase      Phase
	PhaseStart time.Time
	StartedAt  time.Time

	// MoodRatings keys are capture points, e.g. "session_start" and
	// "session_end".
	MoodRatings map[string]int
	Engagement  int

	CrisisDetected  bool
	PhasesCompleted []Phase

	Topics           []string
	Interventions    []string
	HomeworkAssigned []string
	CrisisFlags      []string
	PatientFeedback  string

	CurrentSkill string
	exchanges    map[Phase]int
}

func newState(sessionID, patientID uuid.UUID, modality patient.Modality) *State {
	now := time.Now()
	return &State{
		SessionID:   sessionID,
		PatientID:   patientID,
		Modality:    modality,
		Phase:       Opening,
		PhaseStart:  now,
		StartedAt:   now,
		MoodRatings: map[string]int{},
		Engagement:  initialEngagement,
		exchanges:   map[Phase]int{},
	}
}

// completePhase records the finished phase once and moves to next.
func (s *State) completePhase(next Phase) {
	for _, p := range s.PhasesCompleted {
		if p == s.Phase {
			s.Phase = next
			s.PhaseStart = time.Now()
			return
		}
	}
	s.PhasesCompleted = append(s.PhasesCompleted, s.Phase)
	s.Phase = next
	s.PhaseStart = time.Now()
}

func (s *State) addIntervention(name string) {
	if name == "" {
		return
	}
	for _, existing := range s.Interventions {
		if existing == name {
			return
		}
	}
	s.Interventions = append(s.Interventions, name)
}

// Status is a read-only snapshot of a session for callers outside the
// Manager.
type Status struct {
	SessionID       uuid.UUID      `json:"session_id"`
	PatientID       uuid.UUID      `json:"patient_id"`
	Phase           string         `json:"phase"`
	Modality        string         `json:"modality"`
	Engagement      int            `json:"engagement"`
	MoodRatings     map[string]int `json:"mood_ratings"`
	PhasesCompleted []string       `json:"phases_completed"`
	CrisisDetected  bool           `json:"crisis_detected"`
	Elapsed         time.Duration  `json:"elapsed"`
}

func (s *State) status() Status {
	moods := make(map[string]int, len(s.MoodRatings))
	for k, v := range s.MoodRatings {
		moods[k] = v
	}
	completed := make([]string, len(s.PhasesCompleted))
	for i, p := range s.PhasesCompleted {
		completed[i] = p.String()
	}
	return Status{
		SessionID:       s.SessionID,
		PatientID:       s.PatientID,
		Phase:           s.Phase.String(),
		Modality:        string(s.Modality),
		Engagement:      s.Engagement,
		MoodRatings:     moods,
		PhasesCompleted: completed,
		CrisisDetected:  s.CrisisDetected,
		Elapsed:         time.Since(s.StartedAt),
	}
}

// Metrics summarizes a finished session.
type Metrics struct {
	Duration            time.Duration `json:"duration"`
	MoodDelta           *int          `json:"mood_delta,omitempty"`
	PhaseCompletionRate float64       `json:"phase_completion_rate"`
	Engagement          int           `json:"engagement"`
}

func (s *State) metrics() Metrics {
	m := Metrics{
		Duration:            time.Since(s.StartedAt),
		PhaseCompletionRate: float64(len(s.PhasesCompleted)) / float64(len(standardOrder)),
		Engagement:          s.Engagement,
	}
	before, hasBefore := s.MoodRatings["session_start"]
	after, hasAfter := s.MoodRatings["session_end"]
	if hasBefore && hasAfter {
		delta := after - before
		m.MoodDelta = &delta
	}
	return m
}
