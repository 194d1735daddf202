package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScore(t *testing.T) {
	t.Run("sums valid responses", func(t *testing.T) {
		total, err := Score(GAD7, []int{1, 2, 3, 0, 1, 2, 3})
		require.NoError(t, err)
		assert.Equal(t, 12, total)
	})

	t.Run("rejects wrong response count", func(t *testing.T) {
		_, err := Score(PHQ9, []int{1, 2, 3})
		assert.Error(t, err)
	})

	t.Run("rejects out of range item", func(t *testing.T) {
		_, err := Score(PHQ9, []int{0, 0, 0, 0, 4, 0, 0, 0, 0})
		assert.Error(t, err)
	})

	t.Run("rejects negative item", func(t *testing.T) {
		_, err := Score(ORS, []int{5, -1, 5, 5})
		assert.Error(t, err)
	})

	t.Run("rejects unknown instrument", func(t *testing.T) {
		_, err := Score(Instrument("WHODAS"), []int{1})
		assert.Error(t, err)
	})
}

func TestSeverity(t *testing.T) {
	cases := []struct {
		instrument Instrument
		total      int
		want       string
	}{
		{PHQ9, 0, "Minimal"},
		{PHQ9, 4, "Minimal"},
		{PHQ9, 5, "Mild"},
		{PHQ9, 9, "Mild"},
		{PHQ9, 10, "Moderate"},
		{PHQ9, 14, "Moderate"},
		{PHQ9, 15, "Moderately Severe"},
		{PHQ9, 19, "Moderately Severe"},
		{PHQ9, 20, "Severe"},
		{PHQ9, 27, "Severe"},
		{GAD7, 4, "Minimal"},
		{GAD7, 5, "Mild"},
		{GAD7, 10, "Moderate"},
		{GAD7, 15, "Severe"},
		{GAD7, 21, "Severe"},
		{PCL5, 30, "Below Threshold"},
		{PCL5, 31, "Probable PTSD"},
		{PCL5, 49, "Probable PTSD"},
		{PCL5, 50, "High Probability PTSD"},
		{ORS, 24, "Clinical Range"},
		{ORS, 25, "Functioning Range"},
		{SRS, 35, "Below Cutoff"},
		{SRS, 36, "Above Cutoff"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Severity(tc.instrument, tc.total),
			"%s total %d", tc.instrument, tc.total)
	}
}

func TestInterpret(t *testing.T) {
	t.Run("severe PHQ9 adds escalation note", func(t *testing.T) {
		out := Interpret(PHQ9, 22)
		assert.Contains(t, out, "Severe")
		assert.Contains(t, out, "suicide risk assessment")
	})

	t.Run("moderate PHQ9 has no escalation note", func(t *testing.T) {
		out := Interpret(PHQ9, 12)
		assert.Contains(t, out, "Moderate")
		assert.NotContains(t, out, "immediate clinical attention")
	})
}

func TestSuicideRisk(t *testing.T) {
	t.Run("neutral text scores zero", func(t *testing.T) {
		assert.Equal(t, 0, SuicideRisk("I had an okay week at work"))
	})

	t.Run("high risk phrase scores three", func(t *testing.T) {
		assert.Equal(t, 3, SuicideRisk("sometimes I want to die"))
	})

	t.Run("method reference adds two", func(t *testing.T) {
		assert.Equal(t, 5, SuicideRisk("I want to die, I have pills"))
	})

	t.Run("protective factors reduce score", func(t *testing.T) {
		with := SuicideRisk("I feel hopeless")
		without := SuicideRisk("I feel hopeless but my family needs me")
		assert.Less(t, without, with)
	})

	t.Run("score never goes negative", func(t *testing.T) {
		assert.Equal(t, 0, SuicideRisk("family children future hope help support"))
	})

	t.Run("score caps at ten", func(t *testing.T) {
		text := "suicide kill myself end my life better off dead want to die pills rope gun"
		assert.Equal(t, 10, SuicideRisk(text))
	})
}

func TestRiskLevelForScore(t *testing.T) {
	cases := []struct {
		score int
		want  RiskLevel
	}{
		{0, RiskNone},
		{1, RiskLow},
		{2, RiskLow},
		{3, RiskModerate},
		{4, RiskModerate},
		{5, RiskHigh},
		{6, RiskHigh},
		{7, RiskImminent},
		{10, RiskImminent},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, RiskLevelForScore(tc.score), "score %d", tc.score)
	}
}

func TestRiskLevelRank(t *testing.T) {
	assert.True(t, RiskImminent.Rank() > RiskHigh.Rank())
	assert.True(t, RiskHigh.Rank() > RiskModerate.Rank())
	assert.True(t, RiskModerate.Rank() > RiskLow.Rank())
	assert.True(t, RiskLow.Rank() > RiskNone.Rank())
}
