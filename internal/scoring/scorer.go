// Package scoring computes the five 0-100 behavioral scores over a rolling
// 30-day window, plus the eligibility and data-sufficiency gates.
//
// Every computer is a pure function over a caller-supplied snapshot: no
// stored state, no side effects, safe to run in parallel. Scores always
// clamp to [0, 100] and the heuristics are fixed by product definition, so
// changes here need a product decision, not a refactor.
package scoring

import (
	"math"
	"time"

	"tradecoach/internal/models"
	"tradecoach/internal/window"
)

// WindowDays is the rolling evaluation window.
const WindowDays = 30

// Snapshot bundles the facts the score computers read. Transactions are
// newest-first, already filtered to the trailing window; History holds the
// trailing window's daily score rows.
type Snapshot struct {
	Holdings     []models.Holding
	Balance      float64
	Checklists   []models.Checklist
	Transactions []models.Transaction
	Triggers     []models.MentorTrigger
	History      []models.DailyScore
	ActiveDays   int
	TradeCount   int
}

// Sufficiency flags dimensions whose inputs are too thin for the score to
// mean anything. True means insufficient. Advisory only: the scores are
// still computed and returned unchanged.
type Sufficiency struct {
	Risk        bool `json:"risk"`
	Discipline  bool `json:"discipline"`
	Strategy    bool `json:"strategy"`
	Psychology  bool `json:"psychology"`
	Consistency bool `json:"consistency"`
}

// ScoreSet is the result of one full scoring pass.
type ScoreSet struct {
	Risk         float64     `json:"risk"`
	Discipline   float64     `json:"discipline"`
	Strategy     float64     `json:"strategy"`
	Psychology   float64     `json:"psychology"`
	Consistency  float64     `json:"consistency"`
	Eligible     bool        `json:"eligible"`
	TradeCount   int         `json:"tradeCount"`
	ActiveDays   int         `json:"activeDays"`
	Insufficient Sufficiency `json:"insufficientData"`
}

// Score returns the value for the given dimension.
func (s ScoreSet) Score(dim models.Dimension) float64 {
	switch dim {
	case models.DimensionRisk:
		return s.Risk
	case models.DimensionDiscipline:
		return s.Discipline
	case models.DimensionStrategy:
		return s.Strategy
	case models.DimensionPsychology:
		return s.Psychology
	case models.DimensionConsistency:
		return s.Consistency
	}
	return 0
}

// Average returns the mean of the five dimensions.
func (s ScoreSet) Average() float64 {
	return (s.Risk + s.Discipline + s.Strategy + s.Psychology + s.Consistency) / 5
}

// ComputeAll runs the five score computers and both gates over a snapshot.
func ComputeAll(snap Snapshot) ScoreSet {
	return ScoreSet{
		Risk:        round1(Risk(snap.Holdings, snap.Balance)),
		Discipline:  round1(Discipline(snap.Checklists, snap.TradeCount)),
		Strategy:    round1(Strategy(snap.Transactions)),
		Psychology:  round1(Psychology(snap.Triggers)),
		Consistency: round1(Consistency(snap.History, snap.ActiveDays)),
		Eligible:    Eligible(snap.TradeCount, snap.ActiveDays),
		TradeCount:  snap.TradeCount,
		ActiveDays:  snap.ActiveDays,
		Insufficient: DataSufficiency(
			snap.Holdings, snap.Checklists, snap.Transactions,
			snap.History, snap.TradeCount,
		),
	}
}

// Risk scores position diversity, cash reserve, and single-position
// exposure. An empty portfolio (total value <= 0) is neutral.
func Risk(holdings []models.Holding, balance float64) float64 {
	totalValue := balance
	positionValues := make([]float64, 0, len(holdings))
	for _, h := range holdings {
		val := h.MarketValue()
		positionValues = append(positionValues, val)
		totalValue += val
	}

	if totalValue <= 0 {
		return 50
	}

	score := 100.0

	// -15 per missing holding below 3
	if len(holdings) < 3 {
		score -= float64(3-len(holdings)) * 15
	}

	// Cash reserve below 10% of total
	cashPct := balance / totalValue * 100
	if cashPct < 10 {
		score -= (10 - cashPct) * 2
	}

	// Any position above 25% of total
	for _, val := range positionValues {
		pct := val / totalValue * 100
		if pct > 25 {
			score -= (pct - 25) * 1.5
		}
	}

	return clamp(score)
}

// Discipline scores checklist completion. No trades is neutral; trading
// without any checklists at all is poor discipline.
func Discipline(checklists []models.Checklist, tradeCount int) float64 {
	if tradeCount == 0 {
		return 50
	}
	if len(checklists) == 0 {
		return 20
	}

	var fullCompletions, skips, totalItems int
	for _, c := range checklists {
		if c.FullyCompleted() {
			fullCompletions++
		}
		if c.Skipped {
			skips++
		}
		totalItems += c.CompletedCount
	}

	total := float64(len(checklists))
	completionRatio := float64(fullCompletions) / total
	avgItems := float64(totalItems) / total
	skipRatio := float64(skips) / total

	score := completionRatio*60 + (avgItems/models.ChecklistItemCount)*40
	score -= skipRatio * 20

	return clamp(score)
}

// Strategy scores win rate, profit/loss ratio, and holding duration from
// sell transactions. Sells are classified against the flat mean of all buy
// prices seen for the symbol, not inventory-matched lots. Transactions are
// expected newest-first; the duration for a sell is measured against the
// symbol's first-listed buy.
func Strategy(transactions []models.Transaction) float64 {
	var sells []models.Transaction
	buysBySymbol := make(map[string][]models.Transaction)
	for _, t := range transactions {
		switch t.Action {
		case models.ActionSell:
			sells = append(sells, t)
		case models.ActionBuy:
			buysBySymbol[t.Symbol] = append(buysBySymbol[t.Symbol], t)
		}
	}

	if len(sells) == 0 {
		return 40
	}

	var wins, losses int
	var totalProfit, totalLoss float64
	for _, sell := range sells {
		buys := buysBySymbol[sell.Symbol]
		if len(buys) == 0 {
			continue
		}
		var sum float64
		for _, b := range buys {
			sum += b.Price
		}
		avgBuy := sum / float64(len(buys))

		if sell.Price > avgBuy {
			wins++
			totalProfit += (sell.Price - avgBuy) * sell.Quantity
		} else {
			losses++
			totalLoss += (avgBuy - sell.Price) * sell.Quantity
		}
	}

	totalTrades := wins + losses
	if totalTrades == 0 {
		return 40
	}

	winRate := float64(wins) / float64(totalTrades)

	// Default 2.0 when there are no losses, capped at 3.
	plRatio := 2.0
	if totalLoss > 0 {
		plRatio = math.Min(totalProfit/totalLoss, 3.0)
	}

	durationScore := 50.0
	var durations []float64
	for _, sell := range sells {
		buys := buysBySymbol[sell.Symbol]
		sellTS, ok := window.Parse(sell.Timestamp)
		if !ok || len(buys) == 0 {
			continue
		}
		buyTS, ok := window.Parse(buys[0].Timestamp)
		if !ok {
			continue
		}
		durations = append(durations, window.Days(sellTS.Sub(buyTS)))
	}
	if len(durations) > 0 {
		var sum float64
		for _, d := range durations {
			sum += d
		}
		switch avg := sum / float64(len(durations)); {
		case avg >= 3:
			durationScore = 80
		case avg >= 1:
			durationScore = 60
		default:
			durationScore = 30
		}
	}

	score := winRate*40 + (plRatio/3.0)*30 + (durationScore/100)*30
	return clamp(score)
}

// psychologyDeductions maps pattern types to their score penalty. Every
// trigger instance counts; there is no dedup.
var psychologyDeductions = map[models.PatternType]float64{
	models.PatternFOMOBuy:     10,
	models.PatternPanicSell:   15,
	models.PatternOvertrading: 10,
}

const defaultDeduction = 5

// Psychology starts at 100 and subtracts per detected trigger.
func Psychology(triggers []models.MentorTrigger) float64 {
	score := 100.0
	for _, trig := range triggers {
		if d, ok := psychologyDeductions[trig.PatternType]; ok {
			score -= d
		} else {
			score -= defaultDeduction
		}
	}
	return clamp(score)
}

// stabilityDimensions are pooled for the consistency variance term.
var stabilityDimensions = []models.Dimension{
	models.DimensionRisk,
	models.DimensionDiscipline,
	models.DimensionStrategy,
	models.DimensionPsychology,
}

// Consistency scores active-day ratio (50%), score stability (30%), and
// absence of drawdown days (20%) over the score history.
func Consistency(history []models.DailyScore, activeDays int) float64 {
	activeRatio := math.Min(float64(activeDays)/WindowDays, 1.0)
	activeComponent := activeRatio * 50

	// Default when there is not enough history to judge stability.
	stabilityComponent := 30.0
	if len(history) >= 3 {
		var values []float64
		for _, ds := range history {
			for _, dim := range stabilityDimensions {
				if v := ds.Score(dim); v > 0 {
					values = append(values, v)
				}
			}
		}
		if len(values) >= 3 {
			stability := math.Max(0, 100-sampleVariance(values)/5)
			stabilityComponent = stability / 100 * 30
		}
	}

	// A drawdown day has a sub-30 mean across the four non-consistency
	// dimensions.
	var drawdownDays int
	for _, ds := range history {
		var sum float64
		for _, dim := range stabilityDimensions {
			sum += ds.Score(dim)
		}
		if sum/4 < 30 {
			drawdownDays++
		}
	}
	denom := float64(len(history))
	if denom < 1 {
		denom = 1
	}
	drawdownComponent := (1 - float64(drawdownDays)/denom) * 20

	return clamp(activeComponent + stabilityComponent + drawdownComponent)
}

// sampleVariance returns the n-1 variance of the values.
func sampleVariance(values []float64) float64 {
	n := float64(len(values))
	if n < 2 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / n
	var ss float64
	for _, v := range values {
		d := v - mean
		ss += d * d
	}
	return ss / (n - 1)
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// ActiveDayCount counts distinct UTC calendar days with at least one
// parseable transaction.
func ActiveDayCount(transactions []models.Transaction) int {
	days := make(map[string]struct{})
	for _, t := range transactions {
		if ts, ok := window.Parse(t.Timestamp); ok {
			days[window.DayKey(ts)] = struct{}{}
		}
	}
	return len(days)
}

// FilterWindow returns the transactions inside the trailing window, newest
// order preserved. Unparseable timestamps are excluded.
func FilterWindow(transactions []models.Transaction, now time.Time, days int) []models.Transaction {
	cutoff := window.Cutoff(now, days)
	out := make([]models.Transaction, 0, len(transactions))
	for _, t := range transactions {
		if window.Within(t.Timestamp, cutoff) {
			out = append(out, t)
		}
	}
	return out
}
