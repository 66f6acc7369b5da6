package scoring

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradecoach/internal/models"
)

// fakeStore keeps everything in memory and records upserts so tests can
// inspect exactly what a scoring pass persisted.
type fakeStore struct {
	balance      float64
	holdings     []models.Holding
	transactions []models.Transaction
	checklists   []models.Checklist
	triggers     []models.MentorTrigger

	scores map[string]models.DailyScore
	badges map[models.BadgeType]models.Badge
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		balance: 100000,
		scores:  make(map[string]models.DailyScore),
		badges:  make(map[models.BadgeType]models.Badge),
	}
}

func (f *fakeStore) GetBalance(_ context.Context) (float64, error) { return f.balance, nil }

func (f *fakeStore) GetHoldings(_ context.Context) ([]models.Holding, error) {
	return f.holdings, nil
}

func (f *fakeStore) GetTransactions(_ context.Context) ([]models.Transaction, error) {
	return f.transactions, nil
}

func (f *fakeStore) GetChecklists(_ context.Context, _ int) ([]models.Checklist, error) {
	return f.checklists, nil
}

func (f *fakeStore) GetTriggers(_ context.Context, _ int) ([]models.MentorTrigger, error) {
	return f.triggers, nil
}

func (f *fakeStore) GetDailyScores(_ context.Context, _ int) ([]models.DailyScore, error) {
	out := make([]models.DailyScore, 0, len(f.scores))
	for _, ds := range f.scores {
		out = append(out, ds)
	}
	return out, nil
}

func (f *fakeStore) UpsertDailyScore(_ context.Context, ds *models.DailyScore) error {
	f.scores[ds.Date] = *ds
	return nil
}

func (f *fakeStore) UpsertBadge(_ context.Context, b *models.Badge) error {
	f.badges[b.BadgeType] = *b
	return nil
}

func newTestAggregator(st Store, now time.Time) *Aggregator {
	agg := NewAggregator(st, zerolog.Nop())
	agg.Clock = func() time.Time { return now }
	return agg
}

func TestComputeDailyPersistsRowForToday(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	st := newFakeStore()
	st.transactions = []models.Transaction{
		{ID: "t1", Symbol: "AAPL", Action: models.ActionBuy, Quantity: 10, Price: 100, Timestamp: now.Add(-2 * time.Hour).Format(time.RFC3339)},
	}

	agg := newTestAggregator(st, now)
	result, err := agg.ComputeDaily(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "2025-06-15", result.Date)

	row, ok := st.scores["2025-06-15"]
	require.True(t, ok, "expected a score row keyed by today's date")
	assert.Equal(t, "ds-2025-06-15", row.ID)
	assert.Equal(t, result.Scores.Risk, row.Risk)
	assert.Equal(t, result.Scores.Psychology, row.Psychology)
	assert.Equal(t, 1, row.TradeCount)
	assert.True(t, row.ActiveDay, "a trade inside the window marks the day active")
	assert.Equal(t, now, row.ComputedAt)
}

func TestComputeDailyInactiveWithoutRecentTrades(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	st := newFakeStore()
	st.transactions = []models.Transaction{
		{ID: "t1", Symbol: "AAPL", Action: models.ActionBuy, Quantity: 10, Price: 100, Timestamp: now.AddDate(0, 0, -45).Format(time.RFC3339)},
	}

	agg := newTestAggregator(st, now)
	result, err := agg.ComputeDaily(context.Background())
	require.NoError(t, err)

	row := st.scores["2025-06-15"]
	assert.False(t, row.ActiveDay)
	assert.Equal(t, 0, row.TradeCount)
	assert.False(t, result.Scores.Eligible)
}

func TestComputeDailyIsIdempotentForTheDate(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	st := newFakeStore()

	agg := newTestAggregator(st, now)
	_, err := agg.ComputeDaily(context.Background())
	require.NoError(t, err)
	_, err = agg.ComputeDaily(context.Background())
	require.NoError(t, err)

	assert.Len(t, st.scores, 1, "recomputing the same date replaces the row")
}

func TestComputeDailyEvaluatesEveryBadge(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	st := newFakeStore()

	agg := newTestAggregator(st, now)
	result, err := agg.ComputeDaily(context.Background())
	require.NoError(t, err)

	require.NotEmpty(t, result.Badges)
	assert.Len(t, st.badges, len(result.Badges), "every evaluation is persisted")
	for _, eval := range result.Badges {
		b, ok := st.badges[eval.Type]
		require.True(t, ok)
		assert.Equal(t, eval.Earned, b.Earned)
		assert.Equal(t, eval.Active, b.Active)
		assert.Equal(t, eval.QualifyingDays, b.QualifyingDays)
		assert.Equal(t, now, b.UpdatedAt)
	}
}

func TestComputeDailyEarnedBadgeCarriesTimestamps(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	st := newFakeStore()
	// Pre-load enough high-scoring history for every badge threshold.
	for i := 1; i <= 20; i++ {
		date := now.AddDate(0, 0, -i).Format("2006-01-02")
		st.scores[date] = models.DailyScore{
			ID: "ds-" + date, Date: date,
			Risk: 95, Discipline: 95, Strategy: 95, Psychology: 95, Consistency: 95,
		}
	}

	agg := newTestAggregator(st, now)
	result, err := agg.ComputeDaily(context.Background())
	require.NoError(t, err)

	var sawEarned bool
	for _, eval := range result.Badges {
		if !eval.Earned {
			continue
		}
		sawEarned = true
		b := st.badges[eval.Type]
		require.NotNil(t, b.FirstEarnedAt)
		assert.Equal(t, now, *b.FirstEarnedAt)
		if eval.Active {
			require.NotNil(t, b.LastActiveAt)
			assert.Equal(t, now, *b.LastActiveAt)
		}
	}
	assert.True(t, sawEarned, "expected at least one badge earned from the loaded history")
}
