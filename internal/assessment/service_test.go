package assessment

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

func TestBanks(t *testing.T) {
	for _, instrument := range Instruments() {
		bank := BankFor(instrument)
		require.NotNil(t, bank, "%s has a bank", instrument)
		assert.Len(t, bank.Questions, instrument.QuestionCount(), "%s question count", instrument)
		for _, q := range bank.Questions {
			assert.Equal(t, len(q.Options), len(q.Scores), "%s q%d options and scores align", instrument, q.ID)
			for _, s := range q.Scores {
				assert.LessOrEqual(t, s, instrument.MaxItemScore())
			}
		}
	}
}

func TestAdminister(t *testing.T) {
	svc, patientID := newTestService(t)
	ctx := context.Background()

	t.Run("moderate PHQ9", func(t *testing.T) {
		choices := []int{1, 1, 2, 2, 1, 1, 1, 1, 0}
		a, err := svc.Administer(ctx, patientID, nil, scoring.PHQ9, choices)
		require.NoError(t, err)
		assert.Equal(t, 10, a.TotalScore)
		assert.Equal(t, "Moderate", a.SeverityLevel)
		assert.Len(t, a.Responses, 9)
		assert.Equal(t, "Several days", a.Responses["q1"].Answer)
	})

	t.Run("unsupported instrument", func(t *testing.T) {
		_, err := svc.Administer(ctx, patientID, nil, scoring.Instrument("WHODAS"), []int{0})
		assert.Error(t, err)
	})

	t.Run("wrong response count", func(t *testing.T) {
		_, err := svc.Administer(ctx, patientID, nil, scoring.GAD7, []int{0, 1})
		assert.Error(t, err)
	})

	t.Run("choice out of range", func(t *testing.T) {
		_, err := svc.Administer(ctx, patientID, nil, scoring.GAD7, []int{0, 0, 0, 0, 0, 0, 9})
		assert.Error(t, err)
	})
}

func TestHistoryAndTrackProgress(t *testing.T) {
	svc, patientID := newTestService(t)
	ctx := context.Background()

	_, err := svc.TrackProgress(ctx, patientID, scoring.GAD7)
	assert.ErrorIs(t, err, ErrNotEnoughHistory)

	first := []int{2, 2, 2, 2, 2, 2, 2}  // 14
	second := []int{1, 1, 1, 1, 1, 1, 1} // 7
	_, err = svc.Administer(ctx, patientID, nil, scoring.GAD7, first)
	require.NoError(t, err)
	_, err = svc.Administer(ctx, patientID, nil, scoring.GAD7, second)
	require.NoError(t, err)

	history, err := svc.History(ctx, patientID, scoring.GAD7)
	require.NoError(t, err)
	require.Len(t, history, 2)

	p, err := svc.TrackProgress(ctx, patientID, scoring.GAD7)
	require.NoError(t, err)
	assert.Equal(t, 7, p.LatestScore)
	assert.Equal(t, 14, p.PreviousScore)
	assert.Equal(t, -7, p.Change)
	assert.True(t, p.Improvement)
	assert.Equal(t, []int{14, 7}, p.ScoreHistory)

	t.Run("ORS improvement means rising score", func(t *testing.T) {
		_, err := svc.Administer(ctx, patientID, nil, scoring.ORS, []int{1, 1, 1, 1}) // 8
		require.NoError(t, err)
		_, err = svc.Administer(ctx, patientID, nil, scoring.ORS, []int{4, 4, 4, 4}) // 32
		require.NoError(t, err)

		p, err := svc.TrackProgress(ctx, patientID, scoring.ORS)
		require.NoError(t, err)
		assert.Equal(t, 24, p.Change)
		assert.True(t, p.Improvement)
	})
}
