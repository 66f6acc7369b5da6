package report

import (
	"context"
	"time"

	apperrors "tradecoach/internal/errors"
	"tradecoach/internal/models"
	"tradecoach/internal/scoring"
	"tradecoach/internal/window"
)

// BehaviorSummary is the all-time behavior tracking view: rolling averages,
// per-dimension trend labels, streaks of good days, and lifetime trigger
// totals.
type BehaviorSummary struct {
	TriggerTotals    map[string]int     `json:"triggerTotals"`
	CurrentAvg       map[string]float64 `json:"currentAvg"`
	PreviousAvg      map[string]float64 `json:"previousAvg"`
	ImprovementTrend map[string]string  `json:"improvementTrend"`
	LongestStreak    int                `json:"longestStreak"`
	CurrentStreak    int                `json:"currentStreak"`
	TotalScoredDays  int                `json:"totalScoredDays"`
	FirstScoreDate   string             `json:"firstScoreDate,omitempty"`
}

// trendThreshold is the average-point move needed before a dimension is
// labeled improving or declining rather than stable.
const trendThreshold = 5.0

// Behavior builds the long-term summary from every daily score ever
// recorded plus lifetime trigger counts.
func (b *Builder) Behavior(ctx context.Context) (*BehaviorSummary, error) {
	allScores, err := b.store.GetAllDailyScores(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, "load all daily scores")
	}
	triggerCounts, err := b.store.GetTriggerCounts(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, "load trigger counts")
	}

	now := b.Clock().UTC()
	return computeBehaviorSummary(allScores, triggerCounts, now), nil
}

// computeBehaviorSummary is the pure core of Behavior. Scores are in
// ascending date order.
func computeBehaviorSummary(allScores []models.DailyScore, triggerCounts map[string]int, now time.Time) *BehaviorSummary {
	summary := &BehaviorSummary{
		TriggerTotals:   triggerCounts,
		TotalScoredDays: len(allScores),
	}
	if len(allScores) > 0 {
		summary.FirstScoreDate = allScores[0].Date
	}

	cutoffCurrent := window.DayKey(now.AddDate(0, 0, -scoring.WindowDays))
	cutoffPrevious := window.DayKey(now.AddDate(0, 0, -2*scoring.WindowDays))

	var current, previous []models.DailyScore
	for _, s := range allScores {
		switch {
		case s.Date >= cutoffCurrent:
			current = append(current, s)
		case s.Date >= cutoffPrevious:
			previous = append(previous, s)
		}
	}
	summary.CurrentAvg = dimensionAverages(current)
	summary.PreviousAvg = dimensionAverages(previous)

	summary.ImprovementTrend = make(map[string]string, len(models.Dimensions))
	for _, dim := range models.Dimensions {
		diff := summary.CurrentAvg[string(dim)] - summary.PreviousAvg[string(dim)]
		switch {
		case diff > trendThreshold:
			summary.ImprovementTrend[string(dim)] = "improving"
		case diff < -trendThreshold:
			summary.ImprovementTrend[string(dim)] = "declining"
		default:
			summary.ImprovementTrend[string(dim)] = "stable"
		}
	}

	// Streaks of days whose 5-dimension mean clears 60. CurrentStreak is
	// the run ending at the most recent scored day.
	var longest, streak int
	for _, s := range allScores {
		mean := (s.Risk + s.Discipline + s.Strategy + s.Psychology + s.Consistency) / float64(len(models.Dimensions))
		if mean >= 60 {
			streak++
			if streak > longest {
				longest = streak
			}
		} else {
			streak = 0
		}
	}
	summary.LongestStreak = longest
	summary.CurrentStreak = streak

	return summary
}
