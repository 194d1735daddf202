package homework

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"therapy-ai-agent/internal/patient"
	"therapy-ai-agent/internal/platform/db"
)

func newTestService(t *testing.T) (Service, uuid.UUID) {
	t.Helper()
	conn, err := db.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	patientID := uuid.New()
	_, err = conn.Exec(
		`INSERT INTO patients (id, name, created_at, updated_at) VALUES (?, ?, datetime('now'), datetime('now'))`,
		patientID, "Test Patient")
	require.NoError(t, err)

	return NewService(NewRepository(conn), zerolog.Nop()), patientID
}

func TestSuggest(t *testing.T) {
	t.Run("from discussion keywords", func(t *testing.T) {
		got := Suggest("we worked on a thought record and mindfulness today", patient.ModalityCBT)
		assert.Equal(t, []string{"Daily thought records", "Daily mindfulness practice"}, got)
	})

	t.Run("activity scheduling needs both words", func(t *testing.T) {
		got := Suggest("let's schedule an activity plan for the week", patient.ModalityCBT)
		assert.Contains(t, got, "Weekly activity scheduling")

		got = Suggest("we talked about an activity you enjoy", patient.ModalityDBT)
		assert.NotContains(t, got, "Weekly activity scheduling")
	})

	t.Run("modality fallback", func(t *testing.T) {
		got := Suggest("general conversation", patient.ModalityACT)
		assert.Equal(t, []string{"Values clarification worksheet", "Daily defusion practice"}, got)
	})

	t.Run("capped at three", func(t *testing.T) {
		got := Suggest("thought record, activity schedule, mindfulness", patient.ModalityCBT)
		assert.LessOrEqual(t, len(got), 3)
	})
}

func TestValidateCompletionInvariant(t *testing.T) {
	a := Assignment{Title: "x", Completed: true}
	assert.Error(t, a.Validate())
}

func TestAssignAndComplete(t *testing.T) {
	svc, patientID := newTestService(t)
	ctx := context.Background()

	a := &Assignment{PatientID: patientID, Title: "Daily thought records"}
	require.NoError(t, svc.Assign(ctx, a))

	pending, err := svc.Pending(ctx, patientID)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	t.Run("effectiveness range validated", func(t *testing.T) {
		_, err := svc.Complete(ctx, a.ID, "", 6)
		assert.Error(t, err)
	})

	done, err := svc.Complete(ctx, a.ID, "kept it up all week", 5)
	require.NoError(t, err)
	assert.True(t, done.Completed)
	require.NotNil(t, done.CompletionDate)
	require.NotNil(t, done.Effectiveness)
	assert.Equal(t, 5, *done.Effectiveness)

	pending, err = svc.Pending(ctx, patientID)
	require.NoError(t, err)
	assert.Empty(t, pending)

	all, err := svc.List(ctx, patientID)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestProcessFeedback(t *testing.T) {
	svc, patientID := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Assign(ctx, &Assignment{PatientID: patientID, Title: "Daily thought records"}))
	require.NoError(t, svc.Assign(ctx, &Assignment{PatientID: patientID, Title: "Weekly activity scheduling"}))

	t.Run("no completion language", func(t *testing.T) {
		closed, err := svc.ProcessFeedback(ctx, patientID, "it was a hard week")
		require.NoError(t, err)
		assert.Empty(t, closed)
	})

	t.Run("completion language closes pending", func(t *testing.T) {
		closed, err := svc.ProcessFeedback(ctx, patientID, "I finished the thought records")
		require.NoError(t, err)
		assert.Len(t, closed, 2)
		for _, a := range closed {
			require.NotNil(t, a.Effectiveness)
			assert.Equal(t, defaultEffectiveness, *a.Effectiveness)
		}

		pending, err := svc.Pending(ctx, patientID)
		require.NoError(t, err)
		assert.Empty(t, pending)

		all, err := svc.List(ctx, patientID)
		require.NoError(t, err)
		require.Len(t, all, 2)
		for _, a := range all {
			assert.True(t, a.Completed)
			require.NotNil(t, a.CompletionDate)
			assert.Equal(t, "reported complete in session", a.CompletionNotes)
		}
	})

	t.Run("nothing pending is a no-op", func(t *testing.T) {
		closed, err := svc.ProcessFeedback(ctx, patientID, "all done")
		require.NoError(t, err)
		assert.Empty(t, closed)
	})
}
