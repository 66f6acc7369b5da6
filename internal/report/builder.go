// Package report builds the monthly performance report, the long-term
// behavior summary, and the trader profile from persisted scores, triggers,
// and trades.
package report

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	apperrors "tradecoach/internal/errors"
	"tradecoach/internal/logging"
	"tradecoach/internal/models"
	"tradecoach/internal/narrative"
	"tradecoach/internal/scoring"
	"tradecoach/internal/sentiment"
	"tradecoach/internal/window"
)

// Store is the persistence surface report building needs.
type Store interface {
	GetTransactions(ctx context.Context) ([]models.Transaction, error)
	GetChecklists(ctx context.Context, days int) ([]models.Checklist, error)
	GetTriggers(ctx context.Context, days int) ([]models.MentorTrigger, error)
	GetTriggerCounts(ctx context.Context) (map[string]int, error)
	GetDailyScores(ctx context.Context, days int) ([]models.DailyScore, error)
	GetAllDailyScores(ctx context.Context) ([]models.DailyScore, error)
	GetLatestDailyScore(ctx context.Context) (*models.DailyScore, error)
	GetBadges(ctx context.Context) ([]models.Badge, error)
	CountCompletedChallenges(ctx context.Context) (int, error)
	SaveReport(ctx context.Context, report *models.MonthlyReport) error
}

// Builder assembles reports and summaries. The narrative generator is
// optional; its failures degrade to a deterministic summary.
type Builder struct {
	store     Store
	sentiment sentiment.Provider
	generator narrative.Generator
	log       zerolog.Logger

	// Clock is overridable for tests; defaults to time.Now.
	Clock func() time.Time
}

// NewBuilder creates a report builder.
func NewBuilder(store Store, provider sentiment.Provider, generator narrative.Generator, logger zerolog.Logger) *Builder {
	return &Builder{
		store:     store,
		sentiment: provider,
		generator: generator,
		log:       logging.WithComponent(logger, "report"),
		Clock:     time.Now,
	}
}

// Generate builds and persists a monthly report over the trailing 30 days.
// Returns ErrNoScoreHistory when no daily scores exist yet.
func (b *Builder) Generate(ctx context.Context) (*models.MonthlyReport, error) {
	now := b.Clock().UTC()

	daily, err := b.store.GetDailyScores(ctx, scoring.WindowDays)
	if err != nil {
		return nil, apperrors.Wrap(err, "load daily scores")
	}
	if len(daily) == 0 {
		return nil, apperrors.ErrNoScoreHistory
	}

	avgs := dimensionAverages(daily)
	grade := scoring.LetterGrade(meanOf(avgs))

	transactions, err := b.store.GetTransactions(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, "load transactions")
	}
	cutoff := window.Cutoff(now, scoring.WindowDays)
	recent := filterAfter(transactions, cutoff)

	bestID, worstID, bestSym, worstSym := bestWorstSells(recent)

	triggers, err := b.store.GetTriggers(ctx, scoring.WindowDays)
	if err != nil {
		return nil, apperrors.Wrap(err, "load triggers")
	}
	patterns := distinctPatterns(triggers)
	frequency := patternFrequency(triggers)

	trend, err := b.trendFacts(ctx, now)
	if err != nil {
		return nil, err
	}

	checklists, err := b.store.GetChecklists(ctx, scoring.WindowDays)
	if err != nil {
		return nil, apperrors.Wrap(err, "load checklists")
	}
	checklistStats := ComputeChecklistStats(checklists)

	var buys, sells int
	for _, t := range recent {
		switch t.Action {
		case models.ActionBuy:
			buys++
		case models.ActionSell:
			sells++
		}
	}
	tradeStats := &narrative.TradeStats{Total: len(recent), Buys: buys, Sells: sells}

	summary := b.summarize(ctx, narrative.ReportFacts{
		Scores:           avgs,
		Grade:            grade,
		Patterns:         patterns,
		BestSymbol:       bestSym,
		WorstSymbol:      worstSym,
		Trend:            trend,
		PatternFrequency: frequency,
		Checklists:       checklistStats,
		Trades:           tradeStats,
		SentimentContext: b.sentimentContext(ctx, recent),
	})

	badges, err := b.store.GetBadges(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, "load badges")
	}
	updates := badgeUpdates(badges)

	report := &models.MonthlyReport{
		ID:               "rpt-" + uuid.New().String(),
		PeriodStart:      window.DayKey(now.AddDate(0, 0, -scoring.WindowDays)),
		PeriodEnd:        window.DayKey(now),
		Risk:             avgs["risk"],
		Discipline:       avgs["discipline"],
		Strategy:         avgs["strategy"],
		Psychology:       avgs["psychology"],
		Consistency:      avgs["consistency"],
		OverallGrade:     grade,
		BestTradeID:      bestID,
		WorstTradeID:     worstID,
		PatternsDetected: patterns,
		Narrative:        summary,
		BadgeUpdates:     updates,
		CreatedAt:        now,
	}
	if err := b.store.SaveReport(ctx, report); err != nil {
		return nil, apperrors.Wrap(err, "save report")
	}

	b.log.Info().Str("grade", grade).Int("patterns", len(patterns)).Msg("Monthly report generated")
	return report, nil
}

func (b *Builder) summarize(ctx context.Context, facts narrative.ReportFacts) string {
	summary, err := b.generator.ReportSummary(ctx, facts)
	if err != nil {
		logging.LogCollaboratorFallback(b.log, "narrative", "report_summary", err)
		return narrative.FallbackReportSummary(facts.Grade)
	}
	return summary
}

// trendFacts splits the trailing 60 days of scores at the 30-day boundary
// and averages each half per dimension.
func (b *Builder) trendFacts(ctx context.Context, now time.Time) (*narrative.TrendFacts, error) {
	scores, err := b.store.GetDailyScores(ctx, 2*scoring.WindowDays)
	if err != nil {
		return nil, apperrors.Wrap(err, "load trend scores")
	}

	boundary := window.DayKey(now.AddDate(0, 0, -scoring.WindowDays))
	var current, previous []models.DailyScore
	for _, s := range scores {
		if s.Date >= boundary {
			current = append(current, s)
		} else {
			previous = append(previous, s)
		}
	}

	return &narrative.TrendFacts{
		Current:  dimensionAverages(current),
		Previous: dimensionAverages(previous),
	}, nil
}

// sentimentContextMaxSymbols bounds the prompt size.
const sentimentContextMaxSymbols = 5

func (b *Builder) sentimentContext(ctx context.Context, recent []models.Transaction) string {
	var ctxStr string
	seen := make(map[string]struct{})
	count := 0
	for _, t := range recent {
		if count >= sentimentContextMaxSymbols {
			break
		}
		if t.Symbol == "" {
			continue
		}
		if _, dup := seen[t.Symbol]; dup {
			continue
		}
		seen[t.Symbol] = struct{}{}
		count++

		snapshot, ok, err := b.sentiment.Cached(ctx, t.Symbol)
		if err != nil || !ok {
			continue
		}
		summary := snapshot.Summary
		if summary == "" {
			summary = "N/A"
		}
		if ctxStr != "" {
			ctxStr += "\n"
		}
		ctxStr += "  " + t.Symbol + ": " + snapshot.Mood + ", " + summary
	}
	return ctxStr
}

// dimensionAverages averages each dimension over the rows where it scored
// above zero, rounded to one decimal. A dimension with no positive rows
// averages to zero.
func dimensionAverages(scores []models.DailyScore) map[string]float64 {
	avgs := make(map[string]float64, len(models.Dimensions))
	for _, dim := range models.Dimensions {
		var sum float64
		var n int
		for _, s := range scores {
			if v := s.Score(dim); v > 0 {
				sum += v
				n++
			}
		}
		if n > 0 {
			avgs[string(dim)] = math.Round(sum/float64(n)*10) / 10
		} else {
			avgs[string(dim)] = 0
		}
	}
	return avgs
}

func meanOf(avgs map[string]float64) float64 {
	var sum float64
	for _, dim := range models.Dimensions {
		sum += avgs[string(dim)]
	}
	return sum / float64(len(models.Dimensions))
}

func filterAfter(transactions []models.Transaction, cutoff time.Time) []models.Transaction {
	var out []models.Transaction
	for _, t := range transactions {
		if window.Within(t.Timestamp, cutoff) {
			out = append(out, t)
		}
	}
	return out
}

// bestWorstSells picks the period's best and worst trades among sells by
// raw sale proceeds.
func bestWorstSells(recent []models.Transaction) (bestID, worstID, bestSym, worstSym string) {
	var sells []models.Transaction
	for _, t := range recent {
		if t.Action == models.ActionSell {
			sells = append(sells, t)
		}
	}
	if len(sells) == 0 {
		return "", "", "", ""
	}
	sort.SliceStable(sells, func(i, j int) bool { return sells[i].Total < sells[j].Total })
	worst, best := sells[0], sells[len(sells)-1]
	return best.ID, worst.ID, best.Symbol, worst.Symbol
}

func distinctPatterns(triggers []models.MentorTrigger) []string {
	seen := make(map[string]struct{})
	var patterns []string
	for _, t := range triggers {
		pt := string(t.PatternType)
		if pt == "" {
			continue
		}
		if _, dup := seen[pt]; dup {
			continue
		}
		seen[pt] = struct{}{}
		patterns = append(patterns, pt)
	}
	sort.Strings(patterns)
	return patterns
}

func patternFrequency(triggers []models.MentorTrigger) map[string]int {
	freq := make(map[string]int)
	for _, t := range triggers {
		if t.PatternType != "" {
			freq[string(t.PatternType)]++
		}
	}
	return freq
}

// ComputeChecklistStats aggregates checklist usage: completion and skip
// rates plus average items checked, each rounded to one decimal.
func ComputeChecklistStats(checklists []models.Checklist) *narrative.ChecklistStats {
	stats := &narrative.ChecklistStats{Total: len(checklists)}
	if stats.Total == 0 {
		return stats
	}

	var full, skipped, items int
	for _, c := range checklists {
		if c.FullyCompleted() {
			full++
		}
		if c.Skipped {
			skipped++
		}
		items += c.CompletedCount
	}
	total := float64(stats.Total)
	stats.CompletionRate = math.Round(float64(full)/total*1000) / 10
	stats.SkipRate = math.Round(float64(skipped)/total*1000) / 10
	stats.AvgItems = math.Round(float64(items)/total*10) / 10
	return stats
}

// badgeUpdates classifies each badge for the report period: earned badges
// report "earned", non-earned badges with qualifying progress report
// "maintained", the rest "lost".
func badgeUpdates(badges []models.Badge) []models.BadgeUpdate {
	updates := make([]models.BadgeUpdate, 0, len(badges))
	for _, b := range badges {
		change := "lost"
		switch {
		case b.Earned:
			change = "earned"
		case b.QualifyingDays > 0:
			change = "maintained"
		}
		updates = append(updates, models.BadgeUpdate{BadgeType: b.BadgeType, Change: change})
	}
	return updates
}
