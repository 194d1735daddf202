package goal

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

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

func TestCreateValidation(t *testing.T) {
	svc, patientID := newTestService(t)
	ctx := context.Background()

	t.Run("empty description", func(t *testing.T) {
		err := svc.Create(ctx, &Goal{PatientID: patientID, Type: TypeSymptom})
		assert.Error(t, err)
	})

	t.Run("unknown type", func(t *testing.T) {
		err := svc.Create(ctx, &Goal{PatientID: patientID, Type: "mystery", Description: "x"})
		assert.Error(t, err)
	})

	t.Run("priority out of range", func(t *testing.T) {
		err := svc.Create(ctx, &Goal{PatientID: patientID, Type: TypeSymptom, Description: "x", Priority: 5})
		assert.Error(t, err)
	})

	t.Run("defaults applied", func(t *testing.T) {
		g := &Goal{PatientID: patientID, Type: TypeBehavioral, Description: "Exercise three times a week"}
		require.NoError(t, svc.Create(ctx, g))
		assert.Equal(t, StatusActive, g.Status)
		assert.Equal(t, 2, g.Priority)
	})
}

func TestUpdateProgress(t *testing.T) {
	svc, patientID := newTestService(t)
	ctx := context.Background()

	g := &Goal{PatientID: patientID, Type: TypeSymptom, Description: "Reduce panic attacks"}
	require.NoError(t, svc.Create(ctx, g))

	updated, err := svc.UpdateProgress(ctx, g.ID, 40)
	require.NoError(t, err)
	assert.Equal(t, 40, updated.CurrentProgress)
	assert.Equal(t, StatusActive, updated.Status)

	t.Run("range validated", func(t *testing.T) {
		_, err := svc.UpdateProgress(ctx, g.ID, 120)
		assert.Error(t, err)
	})

	t.Run("reaching 100 marks achieved", func(t *testing.T) {
		updated, err := svc.UpdateProgress(ctx, g.ID, 100)
		require.NoError(t, err)
		assert.Equal(t, StatusAchieved, updated.Status)

		got, err := svc.Get(ctx, g.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusAchieved, got.Status)
	})
}

func TestBumpProgress(t *testing.T) {
	svc, patientID := newTestService(t)
	ctx := context.Background()

	near := &Goal{PatientID: patientID, Type: TypeFunctional, Description: "Return to work", CurrentProgress: 95, Priority: 1}
	mid := &Goal{PatientID: patientID, Type: TypeCognitive, Description: "Challenge automatic thoughts", CurrentProgress: 50, Priority: 2}
	done := &Goal{PatientID: patientID, Type: TypeSymptom, Description: "Sleep hygiene", Status: StatusAchieved, CurrentProgress: 100}
	require.NoError(t, svc.Create(ctx, near))
	require.NoError(t, svc.Create(ctx, mid))
	require.NoError(t, svc.Create(ctx, done))

	updated, err := svc.BumpProgress(ctx, patientID, 10)
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, near.ID, updated.ID, "only the first active goal is bumped")
	assert.Equal(t, 100, updated.CurrentProgress)
	assert.Equal(t, StatusAchieved, updated.Status)

	got, err := svc.Get(ctx, mid.ID)
	require.NoError(t, err)
	assert.Equal(t, 50, got.CurrentProgress, "other active goals are untouched")

	t.Run("next bump reaches the next active goal", func(t *testing.T) {
		updated, err := svc.BumpProgress(ctx, patientID, 10)
		require.NoError(t, err)
		require.NotNil(t, updated)
		assert.Equal(t, mid.ID, updated.ID)
		assert.Equal(t, 60, updated.CurrentProgress)
	})

	t.Run("no active goals is a no-op", func(t *testing.T) {
		require.NoError(t, svc.SetStatus(ctx, mid.ID, StatusOnHold))
		updated, err := svc.BumpProgress(ctx, patientID, 10)
		require.NoError(t, err)
		assert.Nil(t, updated)
	})
}

func TestProgressReport(t *testing.T) {
	svc, patientID := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Create(ctx, &Goal{PatientID: patientID, Type: TypeSymptom, Description: "a", CurrentProgress: 20}))
	require.NoError(t, svc.Create(ctx, &Goal{PatientID: patientID, Type: TypeSymptom, Description: "b", CurrentProgress: 100, Status: StatusAchieved}))
	require.NoError(t, svc.Create(ctx, &Goal{PatientID: patientID, Type: TypeSymptom, Description: "c", CurrentProgress: 30, Status: StatusOnHold}))

	report, err := svc.ProgressReport(ctx, patientID)
	require.NoError(t, err)
	assert.Equal(t, 3, report.TotalCount)
	assert.Equal(t, 1, report.ActiveCount)
	assert.Equal(t, 1, report.AchievedCount)
	assert.InDelta(t, 50.0, report.AverageProgress, 0.001)
}
