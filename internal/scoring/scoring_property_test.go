package scoring

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"tradecoach/internal/models"
)

func TestScoreBoundsProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	inRange := func(v float64) bool { return v >= 0 && v <= 100 }

	properties.Property("risk stays in [0, 100]", prop.ForAll(
		func(balance, qty, price float64, count int) bool {
			holdings := make([]models.Holding, count)
			for i := range holdings {
				holdings[i] = models.Holding{
					Symbol:       "S",
					AssetType:    models.AssetStock,
					Quantity:     qty,
					AveragePrice: price,
				}
			}
			return inRange(Risk(holdings, balance))
		},
		gen.Float64Range(0, 1e7),
		gen.Float64Range(0, 1e4),
		gen.Float64Range(0, 1e5),
		gen.IntRange(0, 10),
	))

	properties.Property("discipline stays in [0, 100]", prop.ForAll(
		func(completed []int, tradeCount int) bool {
			checklists := make([]models.Checklist, len(completed))
			for i, c := range completed {
				checklists[i] = models.Checklist{
					CompletedCount: c,
					Skipped:        c == 0,
				}
			}
			return inRange(Discipline(checklists, tradeCount))
		},
		gen.SliceOf(gen.IntRange(0, 5)),
		gen.IntRange(0, 100),
	))

	properties.Property("psychology stays in [0, 100]", prop.ForAll(
		func(fomo, panics, over, other int) bool {
			var triggers []models.MentorTrigger
			add := func(pt models.PatternType, n int) {
				for i := 0; i < n; i++ {
					triggers = append(triggers, models.MentorTrigger{PatternType: pt})
				}
			}
			add(models.PatternFOMOBuy, fomo)
			add(models.PatternPanicSell, panics)
			add(models.PatternOvertrading, over)
			add(models.PatternHoldingLosers, other)
			return inRange(Psychology(triggers))
		},
		gen.IntRange(0, 30), gen.IntRange(0, 30), gen.IntRange(0, 30), gen.IntRange(0, 30),
	))

	properties.Property("consistency stays in [0, 100]", prop.ForAll(
		func(scores []float64, activeDays int) bool {
			history := make([]models.DailyScore, len(scores))
			for i, v := range scores {
				history[i] = models.DailyScore{Risk: v, Discipline: v, Strategy: v, Psychology: v}
			}
			return inRange(Consistency(history, activeDays))
		},
		gen.SliceOf(gen.Float64Range(0, 100)),
		gen.IntRange(0, 60),
	))

	properties.Property("letter grade is defined for the full range", prop.ForAll(
		func(avg float64) bool {
			switch LetterGrade(avg) {
			case "A+", "A", "B+", "B", "C+", "C", "D", "F":
				return true
			}
			return false
		},
		gen.Float64Range(0, 100),
	))

	properties.TestingRun(t)
}
