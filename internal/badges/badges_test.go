package badges

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradecoach/internal/models"
)

func history(days int, score float64) []models.DailyScore {
	out := make([]models.DailyScore, days)
	for i := range out {
		out[i] = models.DailyScore{
			Risk:        score,
			Discipline:  score,
			Strategy:    score,
			Psychology:  score,
			Consistency: score,
		}
	}
	return out
}

func evalFor(t *testing.T, evals []Evaluation, bt models.BadgeType) Evaluation {
	t.Helper()
	for _, e := range evals {
		if e.Type == bt {
			return e
		}
	}
	t.Fatalf("no evaluation for %s", bt)
	return Evaluation{}
}

func TestEvaluateEarnsAtRequiredDays(t *testing.T) {
	evals := Evaluate(history(21, 95), nil)
	require.Len(t, evals, len(catalog))
	for _, e := range evals {
		assert.True(t, e.Earned, "%s should be earned with 21 qualifying days", e.Type)
		assert.True(t, e.Active)
		assert.Equal(t, 21, e.QualifyingDays)
		assert.Equal(t, 21, e.RequiredDays)
	}
}

func TestEvaluateOneDayShortStaysLocked(t *testing.T) {
	evals := Evaluate(history(20, 95), nil)
	for _, e := range evals {
		assert.False(t, e.Earned, "%s should not be earned with 20 qualifying days", e.Type)
		assert.Equal(t, 20, e.QualifyingDays)
	}
}

func TestEvaluateThresholdIsInclusive(t *testing.T) {
	// risk_guardian threshold is exactly 75.
	evals := Evaluate(history(21, 75), nil)
	e := evalFor(t, evals, models.BadgeRiskGuardian)
	assert.True(t, e.Earned)
	assert.Equal(t, 21, e.QualifyingDays)
}

func TestEvaluateCountsPerDimension(t *testing.T) {
	// Discipline above its threshold, risk below its own.
	h := history(21, 0)
	for i := range h {
		h[i].Discipline = 85
		h[i].Risk = 70
	}
	evals := Evaluate(h, nil)
	assert.True(t, evalFor(t, evals, models.BadgeDisciplineMaster).Earned)
	assert.False(t, evalFor(t, evals, models.BadgeRiskGuardian).Earned)
}

func TestEvaluateSentimentVetoBlocksMarketAware(t *testing.T) {
	triggers := []models.MentorTrigger{{PatternType: models.PatternSentimentFOMO}}

	evals := Evaluate(history(21, 95), triggers)
	marketAware := evalFor(t, evals, models.BadgeMarketAware)
	assert.False(t, marketAware.Earned, "sentiment_fomo in the window vetoes market_aware")
	assert.Equal(t, 21, marketAware.QualifyingDays, "veto does not erase qualifying days")

	// The veto is badge-specific: psychology_champion still earns.
	assert.True(t, evalFor(t, evals, models.BadgePsychologyChampion).Earned)
}

func TestEvaluateOtherTriggersDoNotVeto(t *testing.T) {
	triggers := []models.MentorTrigger{{PatternType: models.PatternOvertrading}}
	evals := Evaluate(history(21, 95), triggers)
	assert.True(t, evalFor(t, evals, models.BadgeMarketAware).Earned)
}

func TestCatalogIsCopied(t *testing.T) {
	cat := Catalog()
	require.Len(t, cat, 6)
	cat[0].Threshold = 1
	assert.NotEqual(t, 1.0, catalog[0].Threshold)
}

func TestLookup(t *testing.T) {
	def, ok := Lookup(models.BadgeConsistencyPro)
	require.True(t, ok)
	assert.Equal(t, models.DimensionConsistency, def.Dimension)
	assert.Equal(t, 70.0, def.Threshold)

	_, ok = Lookup(models.BadgeType("nope"))
	assert.False(t, ok)
}
