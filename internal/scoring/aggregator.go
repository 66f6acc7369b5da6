package scoring

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"tradecoach/internal/badges"
	"tradecoach/internal/errors"
	"tradecoach/internal/models"
	"tradecoach/internal/window"
)

// Store is the slice of the persistence collaborator the aggregator needs.
type Store interface {
	GetBalance(ctx context.Context) (float64, error)
	GetHoldings(ctx context.Context) ([]models.Holding, error)
	GetTransactions(ctx context.Context) ([]models.Transaction, error)
	GetChecklists(ctx context.Context, days int) ([]models.Checklist, error)
	GetTriggers(ctx context.Context, days int) ([]models.MentorTrigger, error)
	GetDailyScores(ctx context.Context, days int) ([]models.DailyScore, error)
	UpsertDailyScore(ctx context.Context, ds *models.DailyScore) error
	UpsertBadge(ctx context.Context, b *models.Badge) error
}

// Aggregator orchestrates the daily scoring pass: gather the 30-day facts,
// run the five computers and the gates, upsert one score row keyed by
// today's UTC date, then re-evaluate badges against the extended history.
// Safe to invoke any number of times per day.
type Aggregator struct {
	store Store
	log   zerolog.Logger

	// Clock is overridable for tests; defaults to time.Now.
	Clock func() time.Time
}

// NewAggregator creates a daily score aggregator.
func NewAggregator(st Store, logger zerolog.Logger) *Aggregator {
	return &Aggregator{
		store: st,
		log:   logger.With().Str("component", "aggregator").Logger(),
		Clock: time.Now,
	}
}

// DailyResult is one completed scoring pass.
type DailyResult struct {
	Date   string              `json:"date"`
	Scores ScoreSet            `json:"scores"`
	Badges []badges.Evaluation `json:"badges"`
}

// ComputeDaily runs one idempotent scoring pass for the current UTC date.
func (a *Aggregator) ComputeDaily(ctx context.Context) (*DailyResult, error) {
	now := a.Clock().UTC()
	date := window.DayKey(now)

	transactions, err := a.store.GetTransactions(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "load transactions")
	}
	holdings, err := a.store.GetHoldings(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "load holdings")
	}
	balance, err := a.store.GetBalance(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "load balance")
	}
	checklists, err := a.store.GetChecklists(ctx, WindowDays)
	if err != nil {
		return nil, errors.Wrap(err, "load checklists")
	}
	triggers, err := a.store.GetTriggers(ctx, WindowDays)
	if err != nil {
		return nil, errors.Wrap(err, "load triggers")
	}
	history, err := a.store.GetDailyScores(ctx, WindowDays)
	if err != nil {
		return nil, errors.Wrap(err, "load score history")
	}

	recent := FilterWindow(transactions, now, WindowDays)
	activeDays := ActiveDayCount(recent)

	scores := ComputeAll(Snapshot{
		Holdings:     holdings,
		Balance:      balance,
		Checklists:   checklists,
		Transactions: recent,
		Triggers:     triggers,
		History:      history,
		ActiveDays:   activeDays,
		TradeCount:   len(recent),
	})

	row := &models.DailyScore{
		ID:          "ds-" + date,
		Date:        date,
		Risk:        scores.Risk,
		Discipline:  scores.Discipline,
		Strategy:    scores.Strategy,
		Psychology:  scores.Psychology,
		Consistency: scores.Consistency,
		TradeCount:  scores.TradeCount,
		ActiveDay:   activeDays > 0,
		ComputedAt:  now,
	}
	if err := a.store.UpsertDailyScore(ctx, row); err != nil {
		return nil, errors.Wrap(err, "upsert daily score")
	}

	// Badges see the history including today's row.
	updated, err := a.store.GetDailyScores(ctx, WindowDays)
	if err != nil {
		return nil, errors.Wrap(err, "reload score history")
	}
	evaluations := badges.Evaluate(updated, triggers)
	for _, eval := range evaluations {
		badge := &models.Badge{
			BadgeType:      eval.Type,
			Earned:         eval.Earned,
			Active:         eval.Active,
			QualifyingDays: eval.QualifyingDays,
			RequiredDays:   eval.RequiredDays,
			UpdatedAt:      now,
		}
		if eval.Earned {
			ts := now
			badge.FirstEarnedAt = &ts
		}
		if eval.Active {
			ts := now
			badge.LastActiveAt = &ts
		}
		if err := a.store.UpsertBadge(ctx, badge); err != nil {
			return nil, errors.Wrapf(err, "upsert badge %s", eval.Type)
		}
		if eval.Earned {
			a.log.Info().Str("badge", string(eval.Type)).Int("qualifying_days", eval.QualifyingDays).Msg("Badge earned")
		}
	}

	a.log.Info().
		Str("date", date).
		Float64("risk", scores.Risk).
		Float64("discipline", scores.Discipline).
		Float64("strategy", scores.Strategy).
		Float64("psychology", scores.Psychology).
		Float64("consistency", scores.Consistency).
		Bool("eligible", scores.Eligible).
		Int("trade_count", scores.TradeCount).
		Msg("Daily scores computed")

	return &DailyResult{Date: date, Scores: scores, Badges: evaluations}, nil
}
