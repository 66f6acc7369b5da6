package models

// PatternType identifies a detectable behavior pattern.
type PatternType string

const (
	PatternFOMOBuy           PatternType = "fomo_buy"
	PatternPanicSell         PatternType = "panic_sell"
	PatternOvertrading       PatternType = "overtrading"
	PatternOverConcentration PatternType = "over_concentration"
	PatternHoldingLosers     PatternType = "holding_losers"
	PatternHighRiskPosition  PatternType = "high_risk_position"
	PatternSentimentFOMO     PatternType = "sentiment_fomo"
)

// Severity classifies how serious a detected pattern is.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// EscalationLevel classifies a pattern's recent recurrence.
type EscalationLevel string

const (
	EscalationFirst      EscalationLevel = "first"
	EscalationRecurring  EscalationLevel = "recurring"
	EscalationPersistent EscalationLevel = "persistent"
)

// MentorTrigger is a persisted pattern detection. Append-only; only
// Dismissed mutates after insert.
type MentorTrigger struct {
	ID          string      `json:"id"`
	PatternType PatternType `json:"patternType"`
	Severity    Severity    `json:"severity"`
	Symbol      string      `json:"symbol,omitempty"`
	Message     string      `json:"message"`
	Narrative   string      `json:"narrative,omitempty"`
	Dismissed   bool        `json:"dismissed"`
	CreatedAt   string      `json:"createdAt"`
}

// SentimentSnapshot is the cached news-sentiment view for a symbol, produced
// by the external sentiment collaborator. Lookup-only from this subsystem.
type SentimentSnapshot struct {
	Symbol      string  `json:"symbol"`
	Mood        string  `json:"mood"`
	PositivePct float64 `json:"positive_pct"`
	NegativePct float64 `json:"negative_pct"`
	Summary     string  `json:"summary,omitempty"`
}
