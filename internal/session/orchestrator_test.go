package session

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"therapy-ai-agent/internal/agent"
	"therapy-ai-agent/internal/crisis"
	"therapy-ai-agent/internal/docs"
	"therapy-ai-agent/internal/goal"
	"therapy-ai-agent/internal/homework"
	"therapy-ai-agent/internal/patient"
	"therapy-ai-agent/internal/platform/db"
	"therapy-ai-agent/internal/scoring"
)

// scriptedResponder answers by current phase keyword so intervention
// identification has something to match.
type scriptedResponder struct {
	replies map[string]string
}

func (s *scriptedResponder) Generate(ctx context.Context, req agent.Request) (string, error) {
	for keyword, reply := range s.replies {
		if keyword != "" && containsAny(req.Prompt, []string{keyword}) {
			return reply, nil
		}
	}
	return "Tell me more about that.", nil
}

type harness struct {
	manager   *Manager
	patients  patient.Service
	goals     goal.Service
	homework  homework.Service
	crises    crisis.Service
	patientID uuid.UUID
}

func newHarness(t *testing.T, responder agent.Responder) *harness {
	t.Helper()
	conn, err := db.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	logger := zerolog.Nop()
	patients := patient.NewService(patient.NewRepository(conn), logger)
	crises := crisis.NewService(crisis.NewRepository(conn), logger)
	goals := goal.NewService(goal.NewRepository(conn), logger)
	hw := homework.NewService(homework.NewRepository(conn), logger)
	notes := docs.NewService(docs.NewRepository(conn), logger)

	p := &patient.Patient{Name: "Alex Rivera", PreferredModality: patient.ModalityCBT}
	require.NoError(t, patients.Create(context.Background(), p))

	manager := NewManager(
		NewRepository(conn), patients, crises, goals, hw, notes, responder,
		time.Nanosecond, logger)

	return &harness{
		manager:   manager,
		patients:  patients,
		goals:     goals,
		homework:  hw,
		crises:    crises,
		patientID: p.ID,
	}
}

func defaultResponder() *scriptedResponder {
	return &scriptedResponder{replies: map[string]string{
		"main_work": "Let's work through a thought record for that situation.",
	}}
}

func TestStart(t *testing.T) {
	h := newHarness(t, defaultResponder())
	ctx := context.Background()

	turn, err := h.manager.Start(ctx, h.patientID, "")
	require.NoError(t, err)
	assert.Equal(t, "opening", turn.Phase)
	assert.NotEmpty(t, turn.Reply)
	assert.Equal(t, initialEngagement, turn.Engagement)

	t.Run("second start rejected", func(t *testing.T) {
		_, err := h.manager.Start(ctx, h.patientID, "")
		assert.ErrorIs(t, err, ErrSessionActive)
	})

	t.Run("unknown patient rejected", func(t *testing.T) {
		_, err := h.manager.Start(ctx, uuid.New(), "")
		assert.ErrorIs(t, err, patient.ErrNotFound)
	})
}

func TestProcessInputWithoutSession(t *testing.T) {
	h := newHarness(t, defaultResponder())
	_, err := h.manager.ProcessInput(context.Background(), h.patientID, "hello")
	assert.ErrorIs(t, err, ErrNoActiveSession)
}

func TestFullSessionFlow(t *testing.T) {
	h := newHarness(t, defaultResponder())
	ctx := context.Background()

	require.NoError(t, h.goals.Create(ctx, &goal.Goal{
		PatientID:       h.patientID,
		Type:            goal.TypeSymptom,
		Description:     "Reduce work anxiety",
		CurrentProgress: 30,
	}))

	_, err := h.manager.Start(ctx, h.patientID, "")
	require.NoError(t, err)

	turn, err := h.manager.ProcessInput(ctx, h.patientID,
		"My mood is 4 out of 10 and I want to talk about work stress")
	require.NoError(t, err)
	assert.True(t, turn.PhaseChanged)
	assert.Equal(t, "homework_review", turn.Phase)

	// No pending homework, so review auto-completes.
	turn, err = h.manager.ProcessInput(ctx, h.patientID, "nothing from last time")
	require.NoError(t, err)
	assert.Equal(t, "main_work", turn.Phase)

	turn, err = h.manager.ProcessInput(ctx, h.patientID, "okay, that makes sense now")
	require.NoError(t, err)
	assert.Equal(t, "skill_practice", turn.Phase)

	turn, err = h.manager.ProcessInput(ctx, h.patientID, "got it, I will practice that")
	require.NoError(t, err)
	assert.Equal(t, "homework_assignment", turn.Phase)

	turn, err = h.manager.ProcessInput(ctx, h.patientID, "a thought record sounds doable")
	require.NoError(t, err)
	assert.Equal(t, "goal_review", turn.Phase)

	pending, err := h.homework.Pending(ctx, h.patientID)
	require.NoError(t, err)
	require.NotEmpty(t, pending)
	assert.Equal(t, "Daily thought records", pending[0].Title)

	turn, err = h.manager.ProcessInput(ctx, h.patientID, "work has been getting better")
	require.NoError(t, err)
	assert.Equal(t, "closing", turn.Phase)

	goals, err := h.goals.List(ctx, h.patientID, goal.StatusActive)
	require.NoError(t, err)
	require.Len(t, goals, 1)
	assert.Equal(t, 40, goals[0].CurrentProgress, "goal review bumps progress by 10")

	turn, err = h.manager.ProcessInput(ctx, h.patientID, "feeling like a 6, this was helpful")
	require.NoError(t, err)
	assert.Equal(t, "closing", turn.Phase, "closing holds until End")

	status, err := h.manager.Status(h.patientID)
	require.NoError(t, err)
	assert.Equal(t, 4, status.MoodRatings["session_start"])
	assert.Equal(t, 6, status.MoodRatings["session_end"])
	assert.Len(t, status.PhasesCompleted, 7)

	result, err := h.manager.End(ctx, h.patientID, "productive CBT session")
	require.NoError(t, err)
	assert.True(t, result.Record.Completed)
	assert.Equal(t, "completed", result.Record.Phase)
	assert.Contains(t, result.Record.Interventions, "Cognitive Restructuring")
	require.NotNil(t, result.Metrics.MoodDelta)
	assert.Equal(t, 2, *result.Metrics.MoodDelta)
	assert.InDelta(t, 1.0, result.Metrics.PhaseCompletionRate, 0.001)

	t.Run("registry cleared after end", func(t *testing.T) {
		_, err := h.manager.Status(h.patientID)
		assert.ErrorIs(t, err, ErrNoActiveSession)

		_, err = h.manager.Start(ctx, h.patientID, "")
		assert.NoError(t, err)
	})
}

func TestPhaseMonotonicity(t *testing.T) {
	h := newHarness(t, defaultResponder())
	ctx := context.Background()

	_, err := h.manager.Start(ctx, h.patientID, "")
	require.NoError(t, err)

	inputs := []string{
		"mood is 5 and I want to work on sleep",
		"nothing pending",
		"that makes sense now",
		"got it, ready to try",
	}
	var seen []string
	for _, input := range inputs {
		turn, err := h.manager.ProcessInput(ctx, h.patientID, input)
		require.NoError(t, err)
		seen = append(seen, turn.Phase)
	}
	assert.Equal(t, []string{"homework_review", "main_work", "skill_practice", "homework_assignment"}, seen)

	status, err := h.manager.Status(h.patientID)
	require.NoError(t, err)
	assert.Equal(t, []string{"opening", "homework_review", "main_work", "skill_practice"}, status.PhasesCompleted)
}

func TestMainWorkUsesPhaseClock(t *testing.T) {
	h := newHarness(t, defaultResponder())
	h.manager.sessionDuration = 50 * time.Minute
	ctx := context.Background()

	_, err := h.manager.Start(ctx, h.patientID, "")
	require.NoError(t, err)
	_, err = h.manager.ProcessInput(ctx, h.patientID, "My mood is 4 out of 10 and I want to talk about work stress")
	require.NoError(t, err)
	turn, err := h.manager.ProcessInput(ctx, h.patientID, "nothing from last time")
	require.NoError(t, err)
	require.Equal(t, "main_work", turn.Phase)

	slot := h.manager.slots[h.patientID]

	// A long-running session does not cut main work short when the
	// phase itself has only just begun.
	slot.state.StartedAt = time.Now().Add(-40 * time.Minute)
	turn, err = h.manager.ProcessInput(ctx, h.patientID, "okay, that makes sense now")
	require.NoError(t, err)
	assert.Equal(t, "main_work", turn.Phase)

	slot.state.PhaseStart = time.Now().Add(-30 * time.Minute)
	turn, err = h.manager.ProcessInput(ctx, h.patientID, "okay, that makes sense now")
	require.NoError(t, err)
	assert.Equal(t, "skill_practice", turn.Phase)
}

func TestCrisisPreemption(t *testing.T) {
	h := newHarness(t, defaultResponder())
	ctx := context.Background()

	_, err := h.manager.Start(ctx, h.patientID, "")
	require.NoError(t, err)

	// Walk into main work first.
	_, err = h.manager.ProcessInput(ctx, h.patientID, "mood is 5 and I want to work on sleep")
	require.NoError(t, err)
	_, err = h.manager.ProcessInput(ctx, h.patientID, "nothing pending")
	require.NoError(t, err)

	turn, err := h.manager.ProcessInput(ctx, h.patientID, "honestly I feel hopeless, like I want to die")
	require.NoError(t, err)
	assert.Equal(t, "emergency_intervention", turn.Phase)
	assert.True(t, turn.PhaseChanged)
	require.NotNil(t, turn.Crisis)
	assert.Equal(t, crisis.CategorySuicide, turn.Crisis.Category)
	assert.NotEmpty(t, turn.Advisory)

	alerts, err := h.crises.OpenAlerts(ctx, h.patientID)
	require.NoError(t, err)
	assert.NotEmpty(t, alerts)

	p, err := h.patients.Get(ctx, h.patientID)
	require.NoError(t, err)
	assert.True(t, p.RiskLevel.Rank() >= scoring.RiskHigh.Rank())

	t.Run("stays in emergency phase", func(t *testing.T) {
		turn, err := h.manager.ProcessInput(ctx, h.patientID, "I'm still here")
		require.NoError(t, err)
		assert.Equal(t, "emergency_intervention", turn.Phase)
	})

	t.Run("end records crisis flags", func(t *testing.T) {
		result, err := h.manager.End(ctx, h.patientID, "crisis session")
		require.NoError(t, err)
		assert.Contains(t, result.Record.CrisisFlags, "suicide")
	})
}

// blockingResponder signals when a generation starts and waits to be
// released, so the test can observe a turn mid-flight.
type blockingResponder struct {
	entered chan struct{}
	release chan struct{}
}

func (b *blockingResponder) Generate(ctx context.Context, req agent.Request) (string, error) {
	b.entered <- struct{}{}
	<-b.release
	return "Tell me more about that.", nil
}

func TestConcurrentTurnRejected(t *testing.T) {
	responder := &blockingResponder{
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	h := newHarness(t, responder)
	ctx := context.Background()

	// Start generates an opening line; let it through.
	go func() {
		<-responder.entered
		responder.release <- struct{}{}
	}()
	_, err := h.manager.Start(ctx, h.patientID, "")
	require.NoError(t, err)

	firstDone := make(chan error, 1)
	go func() {
		_, err := h.manager.ProcessInput(ctx, h.patientID, "mood is 5 and I want to work on sleep")
		firstDone <- err
	}()

	// The first turn now holds the patient slot inside Generate.
	<-responder.entered

	_, err = h.manager.ProcessInput(ctx, h.patientID, "me again")
	assert.ErrorIs(t, err, ErrTurnInProgress)

	responder.release <- struct{}{}
	require.NoError(t, <-firstDone)
}

func TestEndWithoutSession(t *testing.T) {
	h := newHarness(t, defaultResponder())
	_, err := h.manager.End(context.Background(), h.patientID, "")
	assert.ErrorIs(t, err, ErrNoActiveSession)
}

func TestEngagementUpdates(t *testing.T) {
	h := newHarness(t, defaultResponder())
	ctx := context.Background()

	_, err := h.manager.Start(ctx, h.patientID, "")
	require.NoError(t, err)

	turn, err := h.manager.ProcessInput(ctx, h.patientID, "exactly, good point")
	require.NoError(t, err)
	assert.Equal(t, 8, turn.Engagement)

	turn, err = h.manager.ProcessInput(ctx, h.patientID, "whatever")
	require.NoError(t, err)
	assert.Equal(t, 6, turn.Engagement)
}
