package session

import (
	"context"
	"fmt"
	"strings"
	"time"

	"therapy-ai-agent/internal/agent"
	"therapy-ai-agent/internal/crisis"
	"therapy-ai-agent/internal/homework"
	"therapy-ai-agent/internal/patient"
	"therapy-ai-agent/internal/scoring"
)

func (m *Manager) handleCrisis(ctx context.Context, p *patient.Patient, state *State, input string, detection crisis.Detection) (*Turn, error) {
	state.CrisisDetected = true
	state.CrisisFlags = append(state.CrisisFlags, string(detection.Category))
	phaseChanged := state.Phase != EmergencyIntervention
	state.Phase = EmergencyIntervention
	state.PhaseStart = time.Now()

	if err := m.patients.RaiseRisk(ctx, p.ID, detection.RiskLevel); err != nil {
		m.logger.Error().Err(err).Msg("patient risk escalation failed")
	}

	reply := agent.SafeGenerate(ctx, m.responder, agent.Request{
		System: agent.SystemPrompt(state.Modality),
		Prompt: agent.BuildPrompt(agent.PhaseContext{
			PatientName: p.Name,
			Modality:    state.Modality,
			Phase:       EmergencyIntervention.String(),
			Input:       input,
		}),
		Crisis: true,
	})

	if err := m.persist(ctx, state, false, ""); err != nil {
		m.logger.Error().Err(err).Msg("session snapshot persist failed")
	}

	return &Turn{
		SessionID:    state.SessionID,
		Reply:        reply,
		Phase:        state.Phase.String(),
		PhaseChanged: phaseChanged,
		Engagement:   state.Engagement,
		Crisis:       &detection,
		Advisory:     crisis.Advisory(detection),
	}, nil
}

// handleEmergency keeps the session in crisis mode until the clinician
// ends it. Input here never routes back into the normal phase flow.
func (m *Manager) handleEmergency(ctx context.Context, p *patient.Patient, state *State, input string) (*Turn, error) {
	reply := agent.SafeGenerate(ctx, m.responder, agent.Request{
		System: agent.SystemPrompt(state.Modality),
		Prompt: agent.BuildPrompt(agent.PhaseContext{
			PatientName: p.Name,
			Modality:    state.Modality,
			Phase:       EmergencyIntervention.String(),
			Input:       input,
		}),
		Crisis: true,
	})
	return m.turn(state, reply, false), nil
}

func (m *Manager) handleOpening(ctx context.Context, p *patient.Patient, state *State, input string) (*Turn, error) {
	if mood, ok := extractMood(input); ok {
		state.MoodRatings["session_start"] = mood
	}
	_, moodCaptured := state.MoodRatings["session_start"]

	changed := false
	if openingComplete(input, moodCaptured) {
		state.completePhase(HomeworkReview)
		changed = true
	}

	reply := m.generate(ctx, p, state, input)
	return m.turn(state, reply, changed), nil
}

func (m *Manager) handleHomeworkReview(ctx context.Context, p *patient.Patient, state *State, input string) (*Turn, error) {
	pending, err := m.homework.Pending(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("load pending homework: %w", err)
	}

	if _, err := m.homework.ProcessFeedback(ctx, p.ID, input); err != nil {
		m.logger.Error().Err(err).Msg("homework feedback failed")
	}

	changed := false
	if homeworkReviewComplete(input, len(pending) > 0) {
		state.completePhase(MainWork)
		changed = true
	}

	reply := m.generate(ctx, p, state, input)
	return m.turn(state, reply, changed), nil
}

func (m *Manager) handleMainWork(ctx context.Context, p *patient.Patient, state *State, input string) (*Turn, error) {
	reply := m.generate(ctx, p, state, input)
	state.addIntervention(agent.IdentifyIntervention(reply, state.Modality))

	changed := false
	if mainWorkComplete(input, time.Since(state.PhaseStart), m.sessionDuration) {
		state.completePhase(SkillPractice)
		changed = true
		if skills := patient.ModalitySkills[state.Modality]; len(skills) > 0 {
			state.CurrentSkill = skills[0]
		}
	}
	return m.turn(state, reply, changed), nil
}

func (m *Manager) handleSkillPractice(ctx context.Context, p *patient.Patient, state *State, input string) (*Turn, error) {
	changed := false
	if skillPracticeComplete(input, state.CurrentSkill != "") {
		state.completePhase(HomeworkAssignment)
		changed = true
	}
	reply := m.generate(ctx, p, state, input)
	return m.turn(state, reply, changed), nil
}

func (m *Manager) handleHomeworkAssignment(ctx context.Context, p *patient.Patient, state *State, input string) (*Turn, error) {
	reply := m.generate(ctx, p, state, input)

	if !strings.Contains(strings.ToLower(input), "no homework") && len(state.HomeworkAssigned) == 0 {
		sessionID := state.SessionID
		due := time.Now().AddDate(0, 0, 7).Format("2006-01-02")
		for _, title := range homework.Suggest(input+" "+reply, state.Modality) {
			a := &homework.Assignment{
				PatientID:   p.ID,
				SessionID:   &sessionID,
				Title:       title,
				Description: fmt.Sprintf("Assigned during %s session on %s", state.Modality, state.StartedAt.Format("2006-01-02")),
				DueDate:     due,
			}
			if err := m.homework.Assign(ctx, a); err != nil {
				m.logger.Error().Err(err).Str("title", title).Msg("homework assignment failed")
				continue
			}
			state.HomeworkAssigned = append(state.HomeworkAssigned, title)
		}
	}

	changed := false
	if homeworkAssignmentComplete(input, len(state.HomeworkAssigned)) {
		state.completePhase(GoalReview)
		changed = true
	}
	return m.turn(state, reply, changed), nil
}

func (m *Manager) handleGoalReview(ctx context.Context, p *patient.Patient, state *State, input string) (*Turn, error) {
	active, err := m.goals.List(ctx, p.ID, "active")
	if err != nil {
		return nil, fmt.Errorf("load active goals: %w", err)
	}

	if len(active) > 0 && reportsProgress(input) {
		if _, err := m.goals.BumpProgress(ctx, p.ID, goalProgressBump); err != nil {
			m.logger.Error().Err(err).Msg("goal progress bump failed")
		}
	}

	state.exchanges[GoalReview]++
	changed := false
	if len(active) == 0 || state.exchanges[GoalReview] >= 1 {
		state.completePhase(Closing)
		changed = true
	}

	reply := m.generate(ctx, p, state, input)
	return m.turn(state, reply, changed), nil
}

// handleClosing captures the end-of-session mood and verbatim feedback.
// The session stays in closing until End is called.
func (m *Manager) handleClosing(ctx context.Context, p *patient.Patient, state *State, input string) (*Turn, error) {
	if mood, ok := extractMood(input); ok {
		state.MoodRatings["session_end"] = mood
	}
	state.PatientFeedback = input

	already := false
	for _, ph := range state.PhasesCompleted {
		if ph == Closing {
			already = true
		}
	}
	if !already {
		state.PhasesCompleted = append(state.PhasesCompleted, Closing)
	}

	reply := m.generate(ctx, p, state, input)
	return m.turn(state, reply, false), nil
}

func (m *Manager) generate(ctx context.Context, p *patient.Patient, state *State, input string) string {
	pc := agent.PhaseContext{
		PatientName: p.Name,
		Modality:    state.Modality,
		Phase:       state.Phase.String(),
		Input:       input,
	}
	if goals, err := m.goals.List(ctx, p.ID, "active"); err == nil {
		for _, g := range goals {
			pc.Goals = append(pc.Goals, g.Description)
		}
	}
	if pending, err := m.homework.Pending(ctx, p.ID); err == nil {
		for _, a := range pending {
			pc.Homework = append(pc.Homework, a.Title)
		}
	}
	return agent.SafeGenerate(ctx, m.responder, agent.Request{
		System: agent.SystemPrompt(state.Modality),
		Prompt: agent.BuildPrompt(pc),
		Crisis: p.RiskLevel.Rank() >= scoring.RiskHigh.Rank(),
	})
}

func (m *Manager) turn(state *State, reply string, changed bool) *Turn {
	return &Turn{
		SessionID:    state.SessionID,
		Reply:        reply,
		Phase:        state.Phase.String(),
		PhaseChanged: changed,
		Engagement:   state.Engagement,
	}
}
