package scoring

import "tradecoach/internal/models"

// Eligibility thresholds over the 30-day window.
const (
	eligibleTradeCount = 25
	eligibleActiveDays = 15
)

// Eligible reports whether the window carries enough activity for the
// scores to be treated as meaningful at all.
func Eligible(tradeCount, activeDays int) bool {
	return tradeCount >= eligibleTradeCount || activeDays >= eligibleActiveDays
}

// DataSufficiency computes the per-dimension insufficient-data flags.
// True means the dimension's inputs are too thin. The flags accompany the
// scores as advisory metadata and never modify them.
func DataSufficiency(
	holdings []models.Holding,
	checklists []models.Checklist,
	transactions []models.Transaction,
	history []models.DailyScore,
	tradeCount int,
) Sufficiency {
	var sells int
	for _, t := range transactions {
		if t.Action == models.ActionSell {
			sells++
		}
	}
	return Sufficiency{
		Risk:        len(holdings) == 0,
		Discipline:  tradeCount == 0 || len(checklists) == 0,
		Strategy:    sells == 0,
		Psychology:  tradeCount == 0,
		Consistency: len(history) < 3,
	}
}
