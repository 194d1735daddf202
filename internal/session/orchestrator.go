// Package session runs the phase-structured therapy conversation.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"therapy-ai-agent/internal/agent"
	"therapy-ai-agent/internal/crisis"
	"therapy-ai-agent/internal/docs"
	"therapy-ai-agent/internal/goal"
	"therapy-ai-agent/internal/homework"
	"therapy-ai-agent/internal/patient"
)

var (
	ErrNoActiveSession = errors.New("no active session for patient")
	ErrSessionActive   = errors.New("patient already has an active session")
	ErrTurnInProgress  = errors.New("a turn is already being processed for this patient")
)

const goalProgressBump = 10

// Turn is the outcome of one conversational exchange.
type Turn struct {
	SessionID    uuid.UUID         `json:"session_id"`
	Reply        string            `json:"reply"`
	Phase        string            `json:"phase"`
	PhaseChanged bool              `json:"phase_changed"`
	Engagement   int               `json:"engagement"`
	Crisis       *crisis.Detection `json:"crisis,omitempty"`
	Advisory     string            `json:"advisory,omitempty"`
}

// EndResult summarizes an ended session.
type EndResult struct {
	Record  *Record `json:"record"`
	Metrics Metrics `json:"metrics"`
}

type patientSlot struct {
	mu    sync.Mutex
	state *State
}

// Manager owns all active sessions. One session per patient; one turn
// at a time per session.
type Manager struct {
	repo      Repository
	patients  patient.Service
	crises    crisis.Service
	goals     goal.Service
	homework  homework.Service
	notes     docs.Service
	responder agent.Responder
	logger    zerolog.Logger

	sessionDuration time.Duration

	mu    sync.Mutex
	slots map[uuid.UUID]*patientSlot
}

func NewManager(
	repo Repository,
	patients patient.Service,
	crises crisis.Service,
	goals goal.Service,
	hw homework.Service,
	notes docs.Service,
	responder agent.Responder,
	sessionDuration time.Duration,
	logger zerolog.Logger,
) *Manager {
	if sessionDuration <= 0 {
		sessionDuration = 50 * time.Minute
	}
	return &Manager{
		repo:            repo,
		patients:        patients,
		crises:          crises,
		goals:           goals,
		homework:        hw,
		notes:           notes,
		responder:       responder,
		logger:          logger,
		sessionDuration: sessionDuration,
		slots:           map[uuid.UUID]*patientSlot{},
	}
}

// Start opens a session for the patient. A patient can have only one
// active session at a time.
func (m *Manager) Start(ctx context.Context, patientID uuid.UUID, modality patient.Modality) (*Turn, error) {
	p, err := m.patients.Get(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if modality == "" {
		modality = p.PreferredModality
	}

	m.mu.Lock()
	if slot, ok := m.slots[patientID]; ok && slot.state != nil {
		m.mu.Unlock()
		return nil, ErrSessionActive
	}
	state := newState(uuid.New(), patientID, modality)
	m.slots[patientID] = &patientSlot{state: state}
	m.mu.Unlock()

	if err := m.persist(ctx, state, false, ""); err != nil {
		m.removeSlot(patientID)
		return nil, fmt.Errorf("start session: %w", err)
	}

	m.logger.Info().
		Str("patient_id", patientID.String()).
		Str("session_id", state.SessionID.String()).
		Str("modality", string(modality)).
		Msg("session started")

	opening := agent.SafeGenerate(ctx, m.responder, agent.Request{
		System: agent.SystemPrompt(modality),
		Prompt: agent.BuildPrompt(agent.PhaseContext{
			PatientName: p.Name,
			Modality:    modality,
			Phase:       Opening.String(),
			Input:       "(session is just beginning; greet the patient and ask how they are feeling on a scale of 1-10)",
		}),
	})

	return &Turn{
		SessionID:  state.SessionID,
		Reply:      opening,
		Phase:      state.Phase.String(),
		Engagement: state.Engagement,
	}, nil
}

// ProcessInput handles one patient utterance. Crisis screening runs
// before any phase logic and preempts it.
func (m *Manager) ProcessInput(ctx context.Context, patientID uuid.UUID, input string) (*Turn, error) {
	slot, state, err := m.acquire(patientID)
	if err != nil {
		return nil, err
	}
	defer slot.mu.Unlock()

	p, err := m.patients.Get(ctx, patientID)
	if err != nil {
		return nil, err
	}

	detection, err := m.crises.Screen(ctx, patientID, input)
	if err != nil {
		m.logger.Error().Err(err).Msg("crisis screening failed to persist alert")
	}
	if detection.Detected {
		return m.handleCrisis(ctx, p, state, input, detection)
	}

	state.Engagement = updateEngagement(state.Engagement, input)

	var turn *Turn
	switch state.Phase {
	case Opening:
		turn, err = m.handleOpening(ctx, p, state, input)
	case HomeworkReview:
		turn, err = m.handleHomeworkReview(ctx, p, state, input)
	case MainWork:
		turn, err = m.handleMainWork(ctx, p, state, input)
	case SkillPractice:
		turn, err = m.handleSkillPractice(ctx, p, state, input)
	case HomeworkAssignment:
		turn, err = m.handleHomeworkAssignment(ctx, p, state, input)
	case GoalReview:
		turn, err = m.handleGoalReview(ctx, p, state, input)
	case Closing:
		turn, err = m.handleClosing(ctx, p, state, input)
	case EmergencyIntervention:
		turn, err = m.handleEmergency(ctx, p, state, input)
	default:
		return nil, fmt.Errorf("session in unexpected phase %s", state.Phase)
	}
	if err != nil {
		return nil, err
	}

	if err := m.persist(ctx, state, false, ""); err != nil {
		m.logger.Error().Err(err).Msg("session snapshot persist failed")
	}
	return turn, nil
}

// End closes the session, flushes the record, and writes a SOAP note.
func (m *Manager) End(ctx context.Context, patientID uuid.UUID, summary string) (*EndResult, error) {
	m.mu.Lock()
	slot, ok := m.slots[patientID]
	m.mu.Unlock()
	if !ok || slot.state == nil {
		return nil, ErrNoActiveSession
	}

	slot.mu.Lock()
	defer slot.mu.Unlock()
	state := slot.state
	if state == nil {
		return nil, ErrNoActiveSession
	}

	state.Phase = Completed
	if err := m.persist(ctx, state, true, summary); err != nil {
		return nil, fmt.Errorf("end session: %w", err)
	}

	metrics := state.metrics()
	m.writeSessionNote(ctx, state, summary)
	m.removeSlot(patientID)

	m.logger.Info().
		Str("patient_id", patientID.String()).
		Str("session_id", state.SessionID.String()).
		Dur("duration", metrics.Duration).
		Float64("phase_completion_rate", metrics.PhaseCompletionRate).
		Msg("session ended")

	rec, err := m.repo.GetByID(ctx, state.SessionID)
	if err != nil {
		return nil, err
	}
	return &EndResult{Record: rec, Metrics: metrics}, nil
}

// Status reports the current state of a patient's active session.
func (m *Manager) Status(patientID uuid.UUID) (*Status, error) {
	m.mu.Lock()
	slot, ok := m.slots[patientID]
	m.mu.Unlock()
	if !ok || slot.state == nil {
		return nil, ErrNoActiveSession
	}
	slot.mu.Lock()
	defer slot.mu.Unlock()
	st := slot.state.status()
	return &st, nil
}

func (m *Manager) acquire(patientID uuid.UUID) (*patientSlot, *State, error) {
	m.mu.Lock()
	slot, ok := m.slots[patientID]
	m.mu.Unlock()
	if !ok || slot.state == nil {
		return nil, nil, ErrNoActiveSession
	}
	if !slot.mu.TryLock() {
		return nil, nil, ErrTurnInProgress
	}
	if slot.state == nil {
		slot.mu.Unlock()
		return nil, nil, ErrNoActiveSession
	}
	return slot, slot.state, nil
}

func (m *Manager) removeSlot(patientID uuid.UUID) {
	m.mu.Lock()
	if slot, ok := m.slots[patientID]; ok {
		slot.state = nil
		delete(m.slots, patientID)
	}
	m.mu.Unlock()
}

func (m *Manager) persist(ctx context.Context, state *State, completed bool, summary string) error {
	rec := &Record{
		ID:              state.SessionID,
		PatientID:       state.PatientID,
		Date:            state.StartedAt,
		Modality:        state.Modality,
		DurationMinutes: int(time.Since(state.StartedAt).Minutes()),
		Phase:           state.Phase.String(),
		Interventions:   state.Interventions,
		Homework:        state.HomeworkAssigned,
		CrisisFlags:     state.CrisisFlags,
		PatientFeedback: state.PatientFeedback,
		Summary:         summary,
		Completed:       completed,
	}
	if mood, ok := state.MoodRatings["session_start"]; ok {
		rec.MoodBefore = &mood
	}
	if mood, ok := state.MoodRatings["session_end"]; ok {
		rec.MoodAfter = &mood
	}
	return m.repo.Save(ctx, rec)
}

func (m *Manager) writeSessionNote(ctx context.Context, state *State, summary string) {
	sum := docs.SessionSummary{
		Modality:        string(state.Modality),
		DurationMinutes: int(time.Since(state.StartedAt).Minutes()),
		Interventions:   state.Interventions,
		Homework:        state.HomeworkAssigned,
		CrisisFlags:     state.CrisisFlags,
		PatientFeedback: state.PatientFeedback,
		Engagement:      state.Engagement,
		PhasesCompleted: len(state.PhasesCompleted),
		PhasesTotal:     len(standardOrder),
	}
	if mood, ok := state.MoodRatings["session_start"]; ok {
		v := mood
		sum.MoodBefore = &v
	}
	if mood, ok := state.MoodRatings["session_end"]; ok {
		v := mood
		sum.MoodAfter = &v
	}
	sessionID := state.SessionID
	if _, err := m.notes.RecordSessionNote(ctx, state.PatientID, &sessionID, sum); err != nil {
		m.logger.Error().Err(err).Msg("session note write failed")
	}
}
