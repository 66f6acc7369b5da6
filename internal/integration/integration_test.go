// Package integration exercises the full analytics pipeline against a real
// SQLite store: seed account activity, run the mentor, compute daily
// scores, refresh challenges, and generate the monthly report.
package integration

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradecoach/internal/challenges"
	"tradecoach/internal/mentor"
	"tradecoach/internal/models"
	"tradecoach/internal/narrative"
	"tradecoach/internal/report"
	"tradecoach/internal/scoring"
	"tradecoach/internal/sentiment"
	"tradecoach/internal/store"
)

type pipeline struct {
	store      *store.SQLiteStore
	mentor     *mentor.Engine
	aggregator *scoring.Aggregator
	challenges *challenges.Engine
	reports    *report.Builder
}

func newPipeline(t *testing.T) *pipeline {
	t.Helper()

	st, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "tradecoach.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	logger := zerolog.Nop()
	provider := sentiment.NopProvider{}
	generator := narrative.NopGenerator{}

	challengeEngine, err := challenges.NewEngine(st, provider, logger)
	require.NoError(t, err)

	return &pipeline{
		store:      st,
		mentor:     mentor.NewEngine(st, provider, generator, logger),
		aggregator: scoring.NewAggregator(st, logger),
		challenges: challengeEngine,
		reports:    report.NewBuilder(st, provider, generator, logger),
	}
}

// seedActivity loads a session designed to trip four detectors: eight
// trades inside 24h (overtrading), an AAPL sell at a 15% loss within 48h
// of the buy (panic sell), and one NVDA position worth over half the
// portfolio (concentration and position size).
func seedActivity(t *testing.T, ctx context.Context, st *store.SQLiteStore, now time.Time) {
	t.Helper()

	require.NoError(t, st.SetBalance(ctx, 40000))
	require.NoError(t, st.UpsertHolding(ctx, &models.Holding{
		Symbol: "NVDA", AssetType: models.AssetStock, Quantity: 100, AveragePrice: 500,
	}))

	for i := 1; i <= 6; i++ {
		require.NoError(t, st.SaveTransaction(ctx, &models.Transaction{
			ID: "t-msft-" + strings.Repeat("x", i), Symbol: "MSFT", AssetType: models.AssetStock,
			Action: models.ActionBuy, Quantity: 1, Price: 100 + float64(i), Total: 100 + float64(i),
			Timestamp: now.Add(-time.Duration(i) * time.Hour).Format(time.RFC3339),
		}))
	}
	require.NoError(t, st.SaveTransaction(ctx, &models.Transaction{
		ID: "t-aapl-buy", Symbol: "AAPL", AssetType: models.AssetStock,
		Action: models.ActionBuy, Quantity: 10, Price: 100, Total: 1000,
		Timestamp: now.Add(-20 * time.Hour).Format(time.RFC3339),
	}))
	require.NoError(t, st.SaveTransaction(ctx, &models.Transaction{
		ID: "t-aapl-sell", Symbol: "AAPL", AssetType: models.AssetStock,
		Action: models.ActionSell, Quantity: 10, Price: 85, Total: 850,
		Timestamp: now.Add(-2 * time.Hour).Format(time.RFC3339),
	}))

	created := now.Format(time.RFC3339)
	require.NoError(t, st.SaveChecklist(ctx, &models.Checklist{
		ID: "cl-1", Symbol: "MSFT", CheckedTrend: true, CheckedVolume: true,
		CheckedNews: true, SetStopLoss: true, SetTarget: true, CompletedCount: 5, CreatedAt: created,
	}))
	require.NoError(t, st.SaveChecklist(ctx, &models.Checklist{
		ID: "cl-2", Symbol: "AAPL", CheckedTrend: true, CheckedVolume: true,
		CheckedNews: true, SetStopLoss: true, SetTarget: true, CompletedCount: 5, CreatedAt: created,
	}))
	require.NoError(t, st.SaveChecklist(ctx, &models.Checklist{
		ID: "cl-3", Symbol: "NVDA", Skipped: true, CreatedAt: created,
	}))
}

func patternSet(alerts []mentor.ResultAlert) map[models.PatternType]mentor.ResultAlert {
	out := make(map[models.PatternType]mentor.ResultAlert, len(alerts))
	for _, a := range alerts {
		out[a.PatternType] = a
	}
	return out
}

func TestPipelineEndToEnd(t *testing.T) {
	ctx := context.Background()
	p := newPipeline(t)
	now := time.Now().UTC()
	seedActivity(t, ctx, p.store, now)

	// First mentor pass: every seeded pattern fires for the first time.
	result, err := p.mentor.Analyze(ctx)
	require.NoError(t, err)

	found := patternSet(result.Alerts)
	for _, want := range []models.PatternType{
		models.PatternOvertrading,
		models.PatternPanicSell,
		models.PatternOverConcentration,
		models.PatternHighRiskPosition,
	} {
		alert, ok := found[want]
		require.True(t, ok, "expected %s alert", want)
		assert.Equal(t, models.EscalationFirst, alert.EscalationLevel)
		assert.True(t, strings.HasPrefix(alert.ID, "mt-"))
	}
	assert.Equal(t, models.SeverityCritical, found[models.PatternPanicSell].Severity)

	triggers, err := p.store.GetTriggers(ctx, 30)
	require.NoError(t, err)
	assert.Len(t, triggers, len(result.Alerts), "every alert persists as a trigger")

	// Second pass over the same state: the persisted triggers escalate the
	// repeats.
	result2, err := p.mentor.Analyze(ctx)
	require.NoError(t, err)
	found2 := patternSet(result2.Alerts)
	assert.Equal(t, models.EscalationRecurring, found2[models.PatternOvertrading].EscalationLevel)
	assert.Equal(t, 1, found2[models.PatternOvertrading].PriorCount)

	// Daily scoring sees the triggers and the trades.
	daily, err := p.aggregator.ComputeDaily(ctx)
	require.NoError(t, err)
	assert.Less(t, daily.Scores.Psychology, 100.0, "persisted triggers deduct from psychology")
	assert.Equal(t, 8, daily.Scores.TradeCount)
	assert.False(t, daily.Scores.Eligible)

	row, err := p.store.GetLatestDailyScore(ctx)
	require.NoError(t, err)
	assert.Equal(t, daily.Date, row.Date)
	assert.True(t, row.ActiveDay)

	// Challenges seed from the catalog and compute progress off the same
	// store.
	active, err := p.challenges.Refresh(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, active)
	for _, ch := range active {
		assert.True(t, strings.HasPrefix(ch.ID, "ch-"))
		assert.Equal(t, models.ChallengeActive, ch.Status)
	}

	// The monthly report rolls everything up and persists.
	rpt, err := p.reports.Generate(ctx)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(rpt.ID, "rpt-"))
	assert.NotEmpty(t, rpt.OverallGrade)
	assert.NotEmpty(t, rpt.PatternsDetected)

	latest, err := p.store.GetLatestReport(ctx)
	require.NoError(t, err)
	assert.Equal(t, rpt.ID, latest.ID)

	behavior, err := p.reports.Behavior(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, behavior.TotalScoredDays)
	assert.NotEmpty(t, behavior.TriggerTotals)

	profile, err := p.reports.Profile(ctx)
	require.NoError(t, err)
	assert.Equal(t, 8, profile.TotalTrades)
	assert.NotEmpty(t, profile.SkillLevel)
}

func TestPipelineQuietAccountStaysClean(t *testing.T) {
	ctx := context.Background()
	p := newPipeline(t)

	result, err := p.mentor.Analyze(ctx)
	require.NoError(t, err)
	assert.Empty(t, result.Alerts)

	daily, err := p.aggregator.ComputeDaily(ctx)
	require.NoError(t, err)
	assert.Equal(t, 100.0, daily.Scores.Psychology)
	assert.Equal(t, 0, daily.Scores.TradeCount)
	assert.False(t, daily.Scores.Eligible)
}
