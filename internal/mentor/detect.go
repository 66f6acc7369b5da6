// Package mentor detects behavioral patterns in trading activity and
// escalates them against the user's trigger history.
//
// Each detector is a stateless scan over a fact snapshot. Detector output
// is deliberately overlapping in places (high_risk_position fires alongside
// over_concentration); the overlap is part of the product definition.
package mentor

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"tradecoach/internal/models"
	"tradecoach/internal/sentiment"
	"tradecoach/internal/window"
)

// Alert is one detected pattern before escalation and persistence.
type Alert struct {
	PatternType models.PatternType `json:"patternType"`
	Severity    models.Severity    `json:"severity"`
	Symbol      string             `json:"symbol,omitempty"`
	Message     string             `json:"message"`
}

// Snapshot is the live state the detectors scan. Transactions are
// newest-first, unfiltered; each detector applies its own trailing window.
type Snapshot struct {
	Transactions []models.Transaction
	Holdings     []models.Holding
	Balance      float64
	Now          time.Time
}

// Detection thresholds.
const (
	fomoPriceFactor       = 1.15
	fomoMinWindowTrades   = 3
	panicLossPctThreshold = -10
	overtradingMaxPerDay  = 5
	concentrationPct      = 30
	highRiskPct           = 25
	loserLossPct          = -20
	loserMinDaysHeld      = 14
	hypePositivePct       = 70
)

// DetectAll runs every detector and returns the combined alerts.
// Sentiment lookups degrade to "no signal" when the provider is
// unavailable, so detection never fails outright.
func DetectAll(ctx context.Context, snap Snapshot, provider sentiment.Provider, log zerolog.Logger) []Alert {
	var alerts []Alert
	alerts = append(alerts, DetectFOMOBuy(snap)...)
	alerts = append(alerts, DetectPanicSell(snap)...)
	alerts = append(alerts, DetectOvertrading(snap)...)
	alerts = append(alerts, DetectOverConcentration(snap)...)
	alerts = append(alerts, DetectHoldingLosers(snap)...)
	alerts = append(alerts, DetectHighRiskPosition(snap)...)
	alerts = append(alerts, DetectSentimentFOMO(ctx, snap, provider, log)...)
	return alerts
}

// groupBySymbol buckets transactions per symbol, preserving first-seen
// symbol order so detector output is deterministic.
func groupBySymbol(transactions []models.Transaction) ([]string, map[string][]models.Transaction) {
	var order []string
	grouped := make(map[string][]models.Transaction)
	for _, t := range transactions {
		if _, seen := grouped[t.Symbol]; !seen {
			order = append(order, t.Symbol)
		}
		grouped[t.Symbol] = append(grouped[t.Symbol], t)
	}
	return order, grouped
}

// DetectFOMOBuy flags buys in the trailing 48h priced more than 15% above
// the symbol's 30-day mean trade price. Needs at least 3 window trades for
// the mean to be meaningful; at most one alert per symbol.
func DetectFOMOBuy(snap Snapshot) []Alert {
	var alerts []Alert
	windowCutoff := window.Cutoff(snap.Now, 30)
	recentCutoff := snap.Now.Add(-48 * time.Hour)

	symbols, grouped := groupBySymbol(snap.Transactions)
	for _, sym := range symbols {
		var windowPrices []float64
		var recentBuys []models.Transaction
		for _, t := range grouped[sym] {
			ts, ok := window.Parse(t.Timestamp)
			if !ok {
				continue
			}
			if !ts.Before(windowCutoff) {
				windowPrices = append(windowPrices, t.Price)
			}
			if t.Action == models.ActionBuy && !ts.Before(recentCutoff) {
				recentBuys = append(recentBuys, t)
			}
		}

		if len(windowPrices) < fomoMinWindowTrades || len(recentBuys) == 0 {
			continue
		}

		var sum float64
		for _, p := range windowPrices {
			sum += p
		}
		avg := sum / float64(len(windowPrices))
		if avg <= 0 {
			continue
		}

		for _, buy := range recentBuys {
			if buy.Price > avg*fomoPriceFactor {
				alerts = append(alerts, Alert{
					PatternType: models.PatternFOMOBuy,
					Severity:    models.SeverityWarning,
					Symbol:      sym,
					Message: fmt.Sprintf("Possible FOMO detected: You bought %s when its price was significantly above its recent average. "+
						"Consider reviewing historical price context before buying.", sym),
				})
				break
			}
		}
	}

	return alerts
}

// DetectPanicSell flags a sell in the trailing 7d at more than a 10%% loss
// against a buy of the same symbol within the preceding 48h.
//
// The scan stops at the first qualifying sell/buy pair across all symbols,
// so a run yields at most one panic_sell alert. That matches the shipped
// behavior; "one alert per symbol" would be the more defensible rule and
// is tracked as an open product question.
func DetectPanicSell(snap Snapshot) []Alert {
	var alerts []Alert
	sellCutoff := window.Cutoff(snap.Now, 7)

	symbols, grouped := groupBySymbol(snap.Transactions)
	for _, sym := range symbols {
		var buys, sells []models.Transaction
		for _, t := range grouped[sym] {
			switch t.Action {
			case models.ActionBuy:
				buys = append(buys, t)
			case models.ActionSell:
				sells = append(sells, t)
			}
		}

		for _, sell := range sells {
			sellTS, ok := window.Parse(sell.Timestamp)
			if !ok || sellTS.Before(sellCutoff) {
				continue
			}
			for _, buy := range buys {
				buyTS, ok := window.Parse(buy.Timestamp)
				if !ok || buy.Price <= 0 {
					continue
				}
				held := sellTS.Sub(buyTS)
				if held <= 0 || held > 48*time.Hour {
					continue
				}
				lossPct := (sell.Price - buy.Price) / buy.Price * 100
				if lossPct < panicLossPctThreshold {
					alerts = append(alerts, Alert{
						PatternType: models.PatternPanicSell,
						Severity:    models.SeverityCritical,
						Symbol:      sym,
						Message: fmt.Sprintf("Possible panic sell: You sold %s at a %.1f%% loss within %dh of buying. "+
							"Quick exits from losses can lock in avoidable losses.", sym, -lossPct, int(held.Hours())),
					})
					return alerts
				}
			}
		}
	}

	return alerts
}

// DetectOvertrading flags more than 5 transactions in the trailing 24h with
// one global alert carrying the count.
func DetectOvertrading(snap Snapshot) []Alert {
	cutoff := snap.Now.Add(-24 * time.Hour)
	var count int
	for _, t := range snap.Transactions {
		if window.Within(t.Timestamp, cutoff) {
			count++
		}
	}
	if count <= overtradingMaxPerDay {
		return nil
	}
	return []Alert{{
		PatternType: models.PatternOvertrading,
		Severity:    models.SeverityWarning,
		Message: fmt.Sprintf("High trading frequency detected: %d trades in the past 24 hours. "+
			"Frequent trading can increase transaction costs and emotional decision-making.", count),
	}}
}

// portfolioValue is balance plus every holding at its market value.
func portfolioValue(holdings []models.Holding, balance float64) float64 {
	total := balance
	for _, h := range holdings {
		total += h.MarketValue()
	}
	return total
}

// DetectOverConcentration flags each holding above 30% of total portfolio
// value.
func DetectOverConcentration(snap Snapshot) []Alert {
	return detectPositionSize(snap, concentrationPct, func(sym string, pct float64) Alert {
		return Alert{
			PatternType: models.PatternOverConcentration,
			Severity:    models.SeverityWarning,
			Symbol:      sym,
			Message: fmt.Sprintf("Portfolio concentration alert: %s makes up %.1f%% of your portfolio. "+
				"Diversification can help manage overall risk.", sym, pct),
		}
	})
}

// DetectHighRiskPosition flags each holding above 25% of total portfolio
// value. Overlaps DetectOverConcentration on purpose: the two thresholds
// teach different lessons.
func DetectHighRiskPosition(snap Snapshot) []Alert {
	return detectPositionSize(snap, highRiskPct, func(sym string, pct float64) Alert {
		return Alert{
			PatternType: models.PatternHighRiskPosition,
			Severity:    models.SeverityWarning,
			Symbol:      sym,
			Message: fmt.Sprintf("Large position size: %s represents %.1f%% of your total portfolio value. "+
				"Large single positions increase portfolio risk.", sym, pct),
		}
	})
}

func detectPositionSize(snap Snapshot, thresholdPct float64, build func(string, float64) Alert) []Alert {
	total := portfolioValue(snap.Holdings, snap.Balance)
	if total <= 0 {
		return nil
	}

	var alerts []Alert
	for _, h := range snap.Holdings {
		pct := h.MarketValue() / total * 100
		if pct > thresholdPct {
			alerts = append(alerts, build(h.Symbol, pct))
		}
	}
	return alerts
}

// DetectHoldingLosers flags each holding with more than a 20% unrealized
// loss held at least 14 days since its earliest buy.
func DetectHoldingLosers(snap Snapshot) []Alert {
	var alerts []Alert
	for _, h := range snap.Holdings {
		if h.AveragePrice <= 0 {
			continue
		}
		current := h.CurrentPrice
		if current == 0 {
			current = h.AveragePrice
		}
		lossPct := (current - h.AveragePrice) / h.AveragePrice * 100
		if lossPct >= loserLossPct {
			continue
		}

		earliest, ok := earliestBuy(snap.Transactions, h.Symbol)
		if !ok {
			continue
		}
		daysHeld := int(snap.Now.Sub(earliest).Hours() / 24)
		if daysHeld >= loserMinDaysHeld {
			alerts = append(alerts, Alert{
				PatternType: models.PatternHoldingLosers,
				Severity:    models.SeverityInfo,
				Symbol:      h.Symbol,
				Message: fmt.Sprintf("Extended unrealized loss: %s is down %.1f%% and has been held for %d days. "+
					"Consider reviewing your exit plan for this position.", h.Symbol, -lossPct, daysHeld),
			})
		}
	}
	return alerts
}

// earliestBuy returns the earliest parseable buy timestamp for a symbol.
func earliestBuy(transactions []models.Transaction, symbol string) (time.Time, bool) {
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

// DetectSentimentFOMO flags a buy in the trailing 48h of a symbol whose
// cached sentiment shows more than 70% positive coverage. One alert per
// run; lookups past the first hit are skipped. Provider outages degrade to
// no signal.
func DetectSentimentFOMO(ctx context.Context, snap Snapshot, provider sentiment.Provider, log zerolog.Logger) []Alert {
	if provider == nil {
		return nil
	}

	recentCutoff := snap.Now.Add(-48 * time.Hour)
	checked := make(map[string]struct{})
	for _, t := range snap.Transactions {
		if t.Action != models.ActionBuy || !window.Within(t.Timestamp, recentCutoff) {
			continue
		}
		if _, done := checked[t.Symbol]; done {
			continue
		}
		checked[t.Symbol] = struct{}{}

		snapSent, ok, err := provider.Cached(ctx, t.Symbol)
		if err != nil {
			log.Warn().Err(err).Str("symbol", t.Symbol).Msg("Sentiment lookup failed, treating as no signal")
			continue
		}
		if !ok || snapSent.PositivePct <= hypePositivePct {
			continue
		}

		return []Alert{{
			PatternType: models.PatternSentimentFOMO,
			Severity:    models.SeverityWarning,
			Symbol:      t.Symbol,
			Message: fmt.Sprintf("You entered %s during a period of high news optimism (%.0f%% positive sentiment). "+
				"Such periods can increase volatility and emotional trading.", t.Symbol, snapSent.PositivePct),
		}}
	}

	return nil
}
