package mentor

import (
	"context"
	"fmt"
	"strings"
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

// Store is the persistence surface the mentor engine needs.
type Store interface {
	GetBalance(ctx context.Context) (float64, error)
	GetHoldings(ctx context.Context) ([]models.Holding, error)
	GetTransactions(ctx context.Context) ([]models.Transaction, error)
	GetTriggers(ctx context.Context, days int) ([]models.MentorTrigger, error)
	SaveTrigger(ctx context.Context, trigger *models.MentorTrigger) error
}

// ResultAlert is one alert as returned from an analysis run: the enriched
// alert plus the narrative and the identity of the persisted trigger.
type ResultAlert struct {
	EnrichedAlert
	ID        string `json:"id"`
	Narrative string `json:"narrative,omitempty"`
	CreatedAt string `json:"createdAt"`
}

// AnalysisResult is one full mentor run: the alerts found now, enriched
// with escalation and narrative, plus improvement notes for patterns that
// stopped recurring.
type AnalysisResult struct {
	Alerts           []ResultAlert `json:"alerts"`
	ImprovementNotes []string      `json:"improvementNotes"`
}

// Engine runs pattern detection, escalation, narrative enrichment, and
// trigger persistence as one analysis pass.
type Engine struct {
	store     Store
	sentiment sentiment.Provider
	generator narrative.Generator
	log       zerolog.Logger

	// Clock is overridable for tests; defaults to time.Now.
	Clock func() time.Time
}

// NewEngine creates a mentor engine. Pass sentiment.NopProvider or
// narrative.NopGenerator when those collaborators are not configured.
func NewEngine(store Store, provider sentiment.Provider, generator narrative.Generator, logger zerolog.Logger) *Engine {
	return &Engine{
		store:     store,
		sentiment: provider,
		generator: generator,
		log:       logging.WithComponent(logger, "mentor"),
		Clock:     time.Now,
	}
}

// Analyze runs every detector against current account state, escalates the
// findings against 30-day trigger history, attaches generated feedback, and
// persists each alert as a new trigger. Collaborator failures degrade: a
// generator error leaves narratives empty, a sentiment error skips only the
// hype detector.
func (e *Engine) Analyze(ctx context.Context) (*AnalysisResult, error) {
	balance, err := e.store.GetBalance(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, "load balance")
	}
	holdings, err := e.store.GetHoldings(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, "load holdings")
	}
	transactions, err := e.store.GetTransactions(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, "load transactions")
	}

	now := e.Clock().UTC()
	snap := Snapshot{
		Transactions: transactions,
		Holdings:     holdings,
		Balance:      balance,
		Now:          now,
	}

	alerts := DetectAll(ctx, snap, e.sentiment, e.log)

	history, err := e.store.GetTriggers(ctx, scoring.WindowDays)
	if err != nil {
		return nil, apperrors.Wrap(err, "load trigger history")
	}

	enriched, improvements := Escalate(alerts, history)
	e.log.Info().
		Int("alerts", len(enriched)).
		Int("improvements", len(improvements)).
		Msg("mentor analysis complete")

	feedback := e.generateFeedback(ctx, enriched, improvements, snap)

	result := &AnalysisResult{ImprovementNotes: improvements}
	for _, alert := range enriched {
		trigger := models.MentorTrigger{
			ID:          "mt-" + uuid.New().String(),
			PatternType: alert.PatternType,
			Severity:    alert.Severity,
			Symbol:      alert.Symbol,
			Message:     alert.Message,
			Narrative:   feedback[string(alert.PatternType)],
			CreatedAt:   now.Format(time.RFC3339),
		}
		if err := e.store.SaveTrigger(ctx, &trigger); err != nil {
			return nil, apperrors.Wrap(err, "save trigger")
		}
		logging.LogTrigger(e.log, string(alert.PatternType), string(alert.Severity), alert.Symbol, string(alert.EscalationLevel))
		result.Alerts = append(result.Alerts, ResultAlert{
			EnrichedAlert: alert,
			ID:            trigger.ID,
			Narrative:     trigger.Narrative,
			CreatedAt:     trigger.CreatedAt,
		})
	}

	return result, nil
}

// generateFeedback asks the narrative generator for per-pattern feedback.
// Returns an empty map on any failure.
func (e *Engine) generateFeedback(ctx context.Context, alerts []EnrichedAlert, improvements []string, snap Snapshot) map[string]string {
	if len(alerts) == 0 {
		return nil
	}

	facts := narrative.MentorFacts{
		HistoryContext:   historyContext(alerts, improvements),
		SentimentContext: e.sentimentContext(ctx, snap),
	}
	for _, a := range alerts {
		facts.Alerts = append(facts.Alerts, narrative.AlertFact{
			PatternType:    string(a.PatternType),
			Severity:       string(a.Severity),
			Symbol:         a.Symbol,
			Message:        a.Message,
			EscalationNote: a.EscalationNote,
		})
	}

	feedback, err := e.generator.MentorFeedback(ctx, facts)
	if err != nil {
		logging.LogCollaboratorFallback(e.log, "narrative", "mentor_feedback", err)
		return nil
	}
	return feedback
}

// historyContext summarizes escalation state for the generator prompt:
// recurrence notes for non-first alerts plus any improvement notes.
func historyContext(alerts []EnrichedAlert, improvements []string) string {
	var lines []string
	for _, a := range alerts {
		if a.EscalationLevel != models.EscalationFirst {
			lines = append(lines, fmt.Sprintf("- %s: %s", a.PatternType, a.EscalationNote))
		}
	}
	for _, note := range improvements {
		lines = append(lines, "- "+note)
	}
	return strings.Join(lines, "\n")
}

// sentimentContextMaxSymbols bounds the prompt size.
const sentimentContextMaxSymbols = 5

// sentimentContext summarizes cached sentiment for recently traded symbols.
// Only non-neutral moods are included; lookup failures and misses are
// silently skipped.
func (e *Engine) sentimentContext(ctx context.Context, snap Snapshot) string {
	cutoff := window.Cutoff(snap.Now, scoring.WindowDays)
	seen := make(map[string]struct{})
	var lines []string
	for _, tx := range snap.Transactions {
		if len(lines) >= sentimentContextMaxSymbols {
			break
		}
		if !window.Within(tx.Timestamp, cutoff) {
			continue
		}
		if _, dup := seen[tx.Symbol]; dup {
			continue
		}
		seen[tx.Symbol] = struct{}{}

		snapshot, ok, err := e.sentiment.Cached(ctx, tx.Symbol)
		if err != nil || !ok {
			continue
		}
		if snapshot.Mood == "" || snapshot.Mood == sentiment.MoodNeutral {
			continue
		}
		line := fmt.Sprintf("- %s: mood=%s (%.0f%% positive, %.0f%% negative)",
			tx.Symbol, snapshot.Mood, snapshot.PositivePct, snapshot.NegativePct)
		if snapshot.Summary != "" {
			line += ", summary: " + snapshot.Summary
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
