// Package narrative generates educational text from structured facts via a
// black-box text generator. Narratives are optional and non-authoritative:
// every operation has a deterministic fallback, and a generator failure
// never fails the computation that asked for the text.
package narrative

import (
	"context"
	"fmt"
)

// AlertFact is the flat view of an enriched mentor alert passed to the
// generator.
type AlertFact struct {
	PatternType    string
	Severity       string
	Symbol         string
	Message        string
	EscalationNote string
}

// MentorFacts are the structured facts behind mentor feedback.
type MentorFacts struct {
	Alerts           []AlertFact
	HistoryContext   string
	SentimentContext string
}

// TrendFacts compares current and previous 30-day dimension averages.
type TrendFacts struct {
	Current  map[string]float64
	Previous map[string]float64
}

// ChecklistStats summarizes checklist usage over the report period.
type ChecklistStats struct {
	Total          int     `json:"totalChecklists"`
	CompletionRate float64 `json:"completionRate"`
	SkipRate       float64 `json:"skipRate"`
	AvgItems       float64 `json:"averageItemsChecked"`
}

// TradeStats summarizes trading volume over the report period.
type TradeStats struct {
	Total int `json:"total"`
	Buys  int `json:"buys"`
	Sells int `json:"sells"`
}

// ReportFacts are the structured facts behind a monthly report summary.
type ReportFacts struct {
	Scores           map[string]float64
	Grade            string
	Patterns         []string
	BestSymbol       string
	WorstSymbol      string
	Trend            *TrendFacts
	PatternFrequency map[string]int
	Checklists       *ChecklistStats
	Trades           *TradeStats
	SentimentContext string
}

// Generator produces educational text from structured facts. Both
// operations may fail; callers fall back to the deterministic texts below.
type Generator interface {
	// MentorFeedback returns per-pattern feedback keyed by pattern type.
	MentorFeedback(ctx context.Context, facts MentorFacts) (map[string]string, error)
	// ReportSummary returns a 5-7 sentence monthly performance summary.
	ReportSummary(ctx context.Context, facts ReportFacts) (string, error)
}

// FallbackReportSummary is the deterministic report summary used whenever
// the generator is unavailable. It cites only the grade.
func FallbackReportSummary(grade string) string {
	return fmt.Sprintf("Overall grade: %s. Keep practicing to improve your trading skills.", grade)
}

// NopGenerator is a Generator with no backing model. MentorFeedback yields
// nothing; ReportSummary yields the deterministic fallback.
type NopGenerator struct{}

// MentorFeedback returns no feedback.
func (NopGenerator) MentorFeedback(context.Context, MentorFacts) (map[string]string, error) {
	return nil, nil
}

// ReportSummary returns the deterministic fallback text.
func (NopGenerator) ReportSummary(_ context.Context, facts ReportFacts) (string, error) {
	return FallbackReportSummary(facts.Grade), nil
}
