package challenges

import (
	"context"
	"sort"
	"time"

	"tradecoach/internal/models"
	"tradecoach/internal/sentiment"
	"tradecoach/internal/window"
)

// Facts is the account state progress functions compute against.
// Transactions are newest-first, unfiltered; Checklists cover the trailing
// 30 days.
type Facts struct {
	Holdings     []models.Holding
	Balance      float64
	Transactions []models.Transaction
	Checklists   []models.Checklist
	Now          time.Time
}

// ProgressFunc computes current progress for one challenge type. Progress
// is monotone-capped at the template target where the metric is unbounded.
type ProgressFunc func(ctx context.Context, facts Facts, provider sentiment.Provider) float64

// progressFuncs maps every catalog type to its computation. Validated
// against Templates at engine construction.
var progressFuncs = map[models.ChallengeType]ProgressFunc{
	models.ChallengeDiversifySectors: progressDiversifySectors,
	models.ChallengeCashReserve:      progressCashReserve,
	models.ChallengeChecklistStreak:  progressChecklistStreak,
	models.ChallengeHoldDuration:     progressHoldDuration,
	models.ChallengeTradeVariety:     progressTradeVariety,
	models.ChallengeNeutralTrader:    progressNeutralTrader,
	models.ChallengeHypeResistant:    progressHypeResistant,
}

// progressDiversifySectors counts distinct type:symbol pairs currently held.
func progressDiversifySectors(_ context.Context, facts Facts, _ sentiment.Provider) float64 {
	seen := make(map[string]struct{})
	for _, h := range facts.Holdings {
		if h.Symbol == "" || h.AssetType == "" {
			continue
		}
		seen[string(h.AssetType)+":"+h.Symbol] = struct{}{}
	}
	return float64(len(seen))
}

// progressCashReserve counts consecutive days ending today with no buys,
// provided cash currently holds at least 25% of portfolio value. The scan
// is a simplification: current cash percentage stands in for the historical
// one.
func progressCashReserve(_ context.Context, facts Facts, _ sentiment.Provider) float64 {
	total := facts.Balance
	for _, h := range facts.Holdings {
		total += h.MarketValue()
	}
	if total <= 0 {
		return 0
	}
	if facts.Balance/total*100 < 25 {
		return 0
	}

	buyDays := make(map[string]struct{})
	for _, t := range facts.Transactions {
		if t.Action != models.ActionBuy {
			continue
		}
		ts, ok := window.Parse(t.Timestamp)
		if !ok {
			continue
		}
		buyDays[window.DayKey(ts)] = struct{}{}
	}

	var consecutive float64
	for offset := 0; offset < 30; offset++ {
		day := window.DayKey(facts.Now.AddDate(0, 0, -offset))
		if _, bought := buyDays[day]; bought {
			break
		}
		consecutive++
	}
	if consecutive > 7 {
		consecutive = 7
	}
	return consecutive
}

// progressChecklistStreak counts consecutive fully-completed checklists,
// newest first.
func progressChecklistStreak(_ context.Context, facts Facts, _ sentiment.Provider) float64 {
	sorted := make([]models.Checklist, len(facts.Checklists))
	copy(sorted, facts.Checklists)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].CreatedAt > sorted[j].CreatedAt })

	var streak float64
	for _, c := range sorted {
		if !c.FullyCompleted() {
			break
		}
		streak++
	}
	if streak > 10 {
		streak = 10
	}
	return streak
}

// progressHoldDuration is the longest current holding duration in days,
// measured from the earliest buy of each held symbol.
func progressHoldDuration(_ context.Context, facts Facts, _ sentiment.Provider) float64 {
	var maxDays float64
	for _, h := range facts.Holdings {
		earliest, found := earliestBuyOf(facts.Transactions, h.Symbol)
		if !found {
			continue
		}
		days := facts.Now.Sub(earliest).Hours() / 24
		if days > maxDays {
			maxDays = days
		}
	}
	if maxDays > 5 {
		maxDays = 5
	}
	return maxDays
}

func earliestBuyOf(transactions []models.Transaction, symbol string) (time.Time, bool) {
	var earliest time.Time
	var found bool
	for _, t := range transactions {
		if t.Symbol != symbol || t.Action != models.ActionBuy {
			continue
		}
		ts, ok := window.Parse(t.Timestamp)
		if !ok {
			continue
		}
		if !found || ts.Before(earliest) {
			earliest = ts
			found = true
		}
	}
	return earliest, found
}

// progressTradeVariety counts distinct asset types ever traded.
func progressTradeVariety(_ context.Context, facts Facts, _ sentiment.Provider) float64 {
	seen := make(map[models.AssetType]struct{})
	for _, t := range facts.Transactions {
		if t.AssetType != "" {
			seen[t.AssetType] = struct{}{}
		}
	}
	return float64(len(seen))
}

// progressNeutralTrader counts distinct symbols bought in the trailing 30
// days whose cached sentiment mood is neutral. No provider, no credit.
func progressNeutralTrader(ctx context.Context, facts Facts, provider sentiment.Provider) float64 {
	if provider == nil {
		return 0
	}
	cutoff := window.Cutoff(facts.Now, 30)

	var count float64
	checked := make(map[string]struct{})
	for _, t := range facts.Transactions {
		if t.Action != models.ActionBuy || !window.Within(t.Timestamp, cutoff) {
			continue
		}
		if _, dup := checked[t.Symbol]; dup {
			continue
		}
		checked[t.Symbol] = struct{}{}

		snapshot, ok, err := provider.Cached(ctx, t.Symbol)
		if err != nil || !ok {
			continue
		}
		if snapshot.Mood == sentiment.MoodNeutral {
			count++
		}
	}
	if count > 3 {
		count = 3
	}
	return count
}

// progressHypeResistant counts consecutive days ending today without a buy,
// scanning the trailing 14 days. No buys at all in the window earns full
// credit.
func progressHypeResistant(_ context.Context, facts Facts, _ sentiment.Provider) float64 {
	cutoff := window.Cutoff(facts.Now, 14)

	buyDays := make(map[string]struct{})
	for _, t := range facts.Transactions {
		if t.Action != models.ActionBuy {
			continue
		}
		ts, ok := window.Parse(t.Timestamp)
		if !ok || ts.Before(cutoff) {
			continue
		}
		buyDays[window.DayKey(ts)] = struct{}{}
	}

	if len(buyDays) == 0 {
		return 7
	}

	var consecutive float64
	for offset := 0; offset < 14; offset++ {
		day := window.DayKey(facts.Now.AddDate(0, 0, -offset))
		if _, bought := buyDays[day]; bought {
			break
		}
		consecutive++
	}
	if consecutive > 7 {
		consecutive = 7
	}
	return consecutive
}
