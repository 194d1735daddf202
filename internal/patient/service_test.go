package patient

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"therapy-ai-agent/internal/platform/db"
	"therapy-ai-agent/internal/scoring"
)

func newTestService(t *testing.T) Service {
	t.Helper()
	conn, err := db.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return NewService(NewRepository(conn), zerolog.Nop())
}

func TestCreateAndGet(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	p := &Patient{Name: "Alex Rivera", DateOfBirth: "1990-04-12", PreferredModality: ModalityDBT}
	require.NoError(t, svc.Create(ctx, p))
	require.NotEqual(t, uuid.Nil, p.ID)

	got, err := svc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alex Rivera", got.Name)
	assert.Equal(t, ModalityDBT, got.PreferredModality)
	assert.Equal(t, scoring.RiskLow, got.RiskLevel)
	assert.True(t, got.Active)
}

func TestCreateValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	t.Run("empty name", func(t *testing.T) {
		err := svc.Create(ctx, &Patient{Name: "   "})
		assert.Error(t, err)
	})

	t.Run("bad modality", func(t *testing.T) {
		err := svc.Create(ctx, &Patient{Name: "Sam", PreferredModality: "EMDR"})
		assert.Error(t, err)
	})

	t.Run("single character name", func(t *testing.T) {
		err := svc.Create(ctx, &Patient{Name: "S"})
		assert.Error(t, err)
	})

	t.Run("bad date of birth", func(t *testing.T) {
		err := svc.Create(ctx, &Patient{Name: "Sam", DateOfBirth: "12/04/1990"})
		assert.Error(t, err)
	})

	t.Run("future date of birth", func(t *testing.T) {
		err := svc.Create(ctx, &Patient{Name: "Sam", DateOfBirth: "2099-01-01"})
		assert.Error(t, err)
	})

	t.Run("implausible age", func(t *testing.T) {
		err := svc.Create(ctx, &Patient{Name: "Sam", DateOfBirth: "1880-01-01"})
		assert.Error(t, err)
	})

	t.Run("psychodynamic accepted", func(t *testing.T) {
		p := &Patient{Name: "Sam", PreferredModality: ModalityPsychodynamic}
		assert.NoError(t, svc.Create(ctx, p))
	})

	t.Run("defaults applied", func(t *testing.T) {
		p := &Patient{Name: "Sam"}
		require.NoError(t, svc.Create(ctx, p))
		assert.Equal(t, ModalityCBT, p.PreferredModality)
		assert.Equal(t, scoring.RiskLow, p.RiskLevel)
	})
}

func TestGetNotFound(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListExcludesInactive(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	a := &Patient{Name: "Active One"}
	b := &Patient{Name: "Gone One"}
	require.NoError(t, svc.Create(ctx, a))
	require.NoError(t, svc.Create(ctx, b))
	require.NoError(t, svc.Deactivate(ctx, b.ID))

	active, err := svc.List(ctx, false)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Active One", active[0].Name)

	all, err := svc.List(ctx, true)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestRaiseRisk(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	p := &Patient{Name: "Jordan"}
	require.NoError(t, svc.Create(ctx, p))

	require.NoError(t, svc.RaiseRisk(ctx, p.ID, scoring.RiskHigh))
	got, err := svc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, scoring.RiskHigh, got.RiskLevel)

	t.Run("never lowers automatically", func(t *testing.T) {
		require.NoError(t, svc.RaiseRisk(ctx, p.ID, scoring.RiskModerate))
		got, err := svc.Get(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, scoring.RiskHigh, got.RiskLevel)
	})
}
