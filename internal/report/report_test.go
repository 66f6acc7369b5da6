package report

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "tradecoach/internal/errors"
	"tradecoach/internal/models"
	"tradecoach/internal/narrative"
	"tradecoach/internal/sentiment"
)

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

type fakeStore struct {
	transactions []models.Transaction
	checklists   []models.Checklist
	triggers     []models.MentorTrigger
	counts       map[string]int
	daily        []models.DailyScore
	allScores    []models.DailyScore
	latest       *models.DailyScore
	badges       []models.Badge
	completed    int
	saved        []*models.MonthlyReport
}

func (s *fakeStore) GetTransactions(context.Context) ([]models.Transaction, error) {
	return s.transactions, nil
}
func (s *fakeStore) GetChecklists(context.Context, int) ([]models.Checklist, error) {
	return s.checklists, nil
}
func (s *fakeStore) GetTriggers(context.Context, int) ([]models.MentorTrigger, error) {
	return s.triggers, nil
}
func (s *fakeStore) GetTriggerCounts(context.Context) (map[string]int, error) {
	return s.counts, nil
}
func (s *fakeStore) GetDailyScores(context.Context, int) ([]models.DailyScore, error) {
	return s.daily, nil
}
func (s *fakeStore) GetAllDailyScores(context.Context) ([]models.DailyScore, error) {
	return s.allScores, nil
}
func (s *fakeStore) GetLatestDailyScore(context.Context) (*models.DailyScore, error) {
	if s.latest == nil {
		return nil, apperrors.ErrDataNotFound
	}
	return s.latest, nil
}
func (s *fakeStore) GetBadges(context.Context) ([]models.Badge, error) { return s.badges, nil }
func (s *fakeStore) CountCompletedChallenges(context.Context) (int, error) {
	return s.completed, nil
}
func (s *fakeStore) SaveReport(_ context.Context, r *models.MonthlyReport) error {
	s.saved = append(s.saved, r)
	return nil
}

func newTestBuilder(store Store) *Builder {
	b := NewBuilder(store, sentiment.NopProvider{}, narrative.NopGenerator{}, zerolog.Nop())
	b.Clock = func() time.Time { return testNow }
	return b
}

func score(date string, val float64) models.DailyScore {
	return models.DailyScore{
		Date:        date,
		Risk:        val,
		Discipline:  val,
		Strategy:    val,
		Psychology:  val,
		Consistency: val,
	}
}

func TestGenerateRequiresScoreHistory(t *testing.T) {
	builder := newTestBuilder(&fakeStore{})
	_, err := builder.Generate(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrNoScoreHistory)
}

func TestGeneratePersistsReport(t *testing.T) {
	store := &fakeStore{
		daily: []models.DailyScore{score("2025-06-14", 72), score("2025-06-13", 68)},
		transactions: []models.Transaction{
			{ID: "t1", Symbol: "AAPL", Action: models.ActionSell, Total: 5000, Timestamp: testNow.Add(-24 * time.Hour).Format(time.RFC3339)},
			{ID: "t2", Symbol: "TSLA", Action: models.ActionSell, Total: 1200, Timestamp: testNow.Add(-48 * time.Hour).Format(time.RFC3339)},
			{ID: "t3", Symbol: "AAPL", Action: models.ActionBuy, Total: 4000, Timestamp: testNow.Add(-72 * time.Hour).Format(time.RFC3339)},
		},
		triggers: []models.MentorTrigger{
			{PatternType: models.PatternFOMOBuy},
			{PatternType: models.PatternFOMOBuy},
			{PatternType: models.PatternOvertrading},
		},
		badges: []models.Badge{
			{BadgeType: models.BadgeRiskGuardian, Earned: true},
			{BadgeType: models.BadgeDisciplineMaster, QualifyingDays: 4},
			{BadgeType: models.BadgeMarketAware},
		},
	}
	builder := newTestBuilder(store)

	report, err := builder.Generate(context.Background())
	require.NoError(t, err)
	require.Len(t, store.saved, 1)

	assert.True(t, strings.HasPrefix(report.ID, "rpt-"))
	assert.Equal(t, 70.0, report.Risk)
	assert.Equal(t, "B+", report.OverallGrade)
	assert.Equal(t, "2025-05-16", report.PeriodStart)
	assert.Equal(t, "2025-06-15", report.PeriodEnd)

	// Best and worst sells ranked by raw sale proceeds.
	assert.Equal(t, "t1", report.BestTradeID)
	assert.Equal(t, "t2", report.WorstTradeID)

	assert.Equal(t, []string{"fomo_buy", "overtrading"}, report.PatternsDetected)
	assert.Equal(t, narrative.FallbackReportSummary("B+"), report.Narrative)

	require.Len(t, report.BadgeUpdates, 3)
	changes := map[models.BadgeType]string{}
	for _, u := range report.BadgeUpdates {
		changes[u.BadgeType] = u.Change
	}
	assert.Equal(t, "earned", changes[models.BadgeRiskGuardian])
	assert.Equal(t, "maintained", changes[models.BadgeDisciplineMaster])
	assert.Equal(t, "lost", changes[models.BadgeMarketAware])
}

func TestDimensionAveragesIgnoreZeroRows(t *testing.T) {
	scores := []models.DailyScore{
		{Date: "2025-06-14", Risk: 80},
		{Date: "2025-06-13", Risk: 60},
		{Date: "2025-06-12", Risk: 0},
	}
	avgs := dimensionAverages(scores)
	assert.Equal(t, 70.0, avgs["risk"])
	assert.Equal(t, 0.0, avgs["discipline"])
}

func TestComputeChecklistStats(t *testing.T) {
	checklists := []models.Checklist{
		{CompletedCount: 5},
		{CompletedCount: 5},
		{CompletedCount: 3},
		{Skipped: true},
	}
	stats := ComputeChecklistStats(checklists)
	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 50.0, stats.CompletionRate)
	assert.Equal(t, 25.0, stats.SkipRate)
	assert.Equal(t, 3.3, stats.AvgItems)
}

func TestComputeChecklistStatsEmpty(t *testing.T) {
	stats := ComputeChecklistStats(nil)
	assert.Equal(t, 0, stats.Total)
	assert.Equal(t, 0.0, stats.CompletionRate)
}

func TestBehaviorSummaryTrendsAndStreaks(t *testing.T) {
	var all []models.DailyScore
	// Previous window: averages 50.
	for d := 55; d > 35; d-- {
		all = append(all, score(testNow.AddDate(0, 0, -d).Format("2006-01-02"), 50))
	}
	// Current window: averages 65, every day a good day.
	for d := 20; d >= 1; d-- {
		all = append(all, score(testNow.AddDate(0, 0, -d).Format("2006-01-02"), 65))
	}

	summary := computeBehaviorSummary(all, map[string]int{"fomo_buy": 3}, testNow)
	assert.Equal(t, 40, summary.TotalScoredDays)
	assert.Equal(t, all[0].Date, summary.FirstScoreDate)
	assert.Equal(t, 65.0, summary.CurrentAvg["risk"])
	assert.Equal(t, 50.0, summary.PreviousAvg["risk"])
	assert.Equal(t, "improving", summary.ImprovementTrend["risk"])
	assert.Equal(t, 20, summary.LongestStreak)
	assert.Equal(t, 20, summary.CurrentStreak)
	assert.Equal(t, 3, summary.TriggerTotals["fomo_buy"])
}

func TestBehaviorSummaryStreakBreaks(t *testing.T) {
	all := []models.DailyScore{
		score("2025-06-10", 70),
		score("2025-06-11", 70),
		score("2025-06-12", 40),
		score("2025-06-13", 70),
	}
	summary := computeBehaviorSummary(all, nil, testNow)
	assert.Equal(t, 2, summary.LongestStreak)
	assert.Equal(t, 1, summary.CurrentStreak)
}

func TestComputeProfileSkillLevels(t *testing.T) {
	cases := []struct {
		val  float64
		want string
	}{
		{85, "Expert"},
		{80, "Expert"},
		{65, "Advanced"},
		{45, "Intermediate"},
		{20, "Beginner"},
	}
	for _, tc := range cases {
		s := score("2025-06-14", tc.val)
		profile := computeProfile(&s, nil, nil, 0, 0)
		assert.Equal(t, tc.want, profile.SkillLevel)
	}
}

func TestComputeProfileNoScores(t *testing.T) {
	profile := computeProfile(nil, nil, nil, 3, 1)
	assert.Equal(t, "Beginner", profile.SkillLevel)
	assert.Empty(t, profile.Strengths)
	assert.Empty(t, profile.Weaknesses)
	assert.Equal(t, 3, profile.ActiveDays)
	assert.Equal(t, 1, profile.ChallengesCompleted)
}

func TestComputeProfileStrengthsWeaknesses(t *testing.T) {
	s := models.DailyScore{
		Date:        "2025-06-14",
		Risk:        90,
		Discipline:  80,
		Strategy:    50,
		Psychology:  40,
		Consistency: 30,
	}
	profile := computeProfile(&s, nil, nil, 0, 0)
	assert.Equal(t, []string{"Risk Management", "Discipline"}, profile.Strengths)
	assert.Equal(t, []string{"Psychology", "Consistency"}, profile.Weaknesses)
}

func TestComputeWinRate(t *testing.T) {
	// Newest-first history: the most recent buy sets the reference price.
	txns := []models.Transaction{
		{Symbol: "AAPL", Action: models.ActionSell, Price: 120},
		{Symbol: "AAPL", Action: models.ActionBuy, Price: 100},
		{Symbol: "AAPL", Action: models.ActionBuy, Price: 150},
		{Symbol: "TSLA", Action: models.ActionSell, Price: 90},
		{Symbol: "TSLA", Action: models.ActionBuy, Price: 100},
	}
	assert.Equal(t, 50.0, computeWinRate(txns))
}

func TestProfileCountsActiveBadges(t *testing.T) {
	store := &fakeStore{
		badges: []models.Badge{
			{BadgeType: models.BadgeRiskGuardian, Active: true},
			{BadgeType: models.BadgeDisciplineMaster},
		},
	}
	builder := newTestBuilder(store)

	profile, err := builder.Profile(context.Background())
	require.NoError(t, err)
	require.Len(t, profile.ActiveBadges, 1)
	assert.Equal(t, models.BadgeRiskGuardian, profile.ActiveBadges[0].BadgeType)
}
