package agent

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"therapy-ai-agent/internal/patient"
)

type stubResponder struct {
	reply string
	err   error
}

func (s *stubResponder) Generate(ctx context.Context, req Request) (string, error) {
	return s.reply, s.err
}

func TestSafeGenerate(t *testing.T) {
	ctx := context.Background()

	t.Run("passes through a good reply", func(t *testing.T) {
		r := &stubResponder{reply: "How did that feel for you?"}
		assert.Equal(t, "How did that feel for you?", SafeGenerate(ctx, r, Request{Prompt: "x"}))
	})

	t.Run("general fallback on error", func(t *testing.T) {
		r := &stubResponder{err: errors.New("api down")}
		out := SafeGenerate(ctx, r, Request{Prompt: "x"})
		assert.Contains(t, out, "988")
		assert.Contains(t, out, "741741")
	})

	t.Run("crisis fallback on error during crisis", func(t *testing.T) {
		r := &stubResponder{err: errors.New("api down")}
		out := SafeGenerate(ctx, r, Request{Prompt: "x", Crisis: true})
		assert.Contains(t, out, "safety")
		assert.Contains(t, out, "988")
		assert.Contains(t, out, "911")
	})

	t.Run("empty reply treated as failure", func(t *testing.T) {
		r := &stubResponder{reply: ""}
		out := SafeGenerate(ctx, r, Request{Prompt: "x"})
		assert.Contains(t, out, "988")
	})
}

func TestGenerationError(t *testing.T) {
	inner := errors.New("timeout")
	err := &GenerationError{Reason: "retries exhausted", Err: inner}
	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "retries exhausted")
}

func TestThrottle(t *testing.T) {
	interval := 50 * time.Millisecond
	g := &geminiResponder{opts: Options{RequestInterval: interval}}
	ctx := context.Background()

	t.Run("first call does not wait", func(t *testing.T) {
		start := time.Now()
		require.NoError(t, g.throttle(ctx))
		assert.Less(t, time.Since(start), interval)
	})

	t.Run("second call waits the interval", func(t *testing.T) {
		start := time.Now()
		require.NoError(t, g.throttle(ctx))
		assert.GreaterOrEqual(t, time.Since(start), interval/2)
	})

	t.Run("cancelled context aborts the wait", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		require.NoError(t, g.throttle(ctx))
		assert.ErrorIs(t, g.throttle(cancelled), context.Canceled)
	})
}

func TestSystemPrompt(t *testing.T) {
	assert.Contains(t, SystemPrompt(patient.ModalityCBT), "cognitive behavioral therapy")
	assert.Contains(t, SystemPrompt(patient.ModalityDBT), "distress tolerance")
	assert.Contains(t, SystemPrompt(patient.ModalityACT), "values")
	assert.Contains(t, SystemPrompt(patient.ModalityPsychodynamic), "psychodynamic")
}

func TestBuildPrompt(t *testing.T) {
	pc := PhaseContext{
		PatientName: "Alex",
		Modality:    patient.ModalityCBT,
		Phase:       "homework_review",
		Goals:       []string{"Reduce panic attacks"},
		Homework:    []string{"Daily thought records"},
		Input:       "I did most of the records",
	}
	out := BuildPrompt(pc)
	assert.Contains(t, out, "homework_review")
	assert.Contains(t, out, "Daily thought records")
	assert.Contains(t, out, "Reduce panic attacks")
	assert.Contains(t, out, "Patient says: I did most of the records")
}

func TestIdentifyIntervention(t *testing.T) {
	cases := []struct {
		response string
		modality patient.Modality
		want     string
	}{
		{"Let's fill out a thought record together", patient.ModalityCBT, "Cognitive Restructuring"},
		{"We could try activity scheduling this week", patient.ModalityCBT, "Behavioral Activation"},
		{"A short mindfulness exercise may help", patient.ModalityDBT, "Mindfulness Practice"},
		{"What are your values around family?", patient.ModalityACT, "Values Clarification"},
		{"It sounds like you felt dismissed", patient.ModalityCBT, "Reflective Listening"},
		{"Tell me more about your week", patient.ModalityCBT, ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, IdentifyIntervention(tc.response, tc.modality), tc.response)
	}
}
