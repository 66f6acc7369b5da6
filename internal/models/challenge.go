package models

import "time"

// ChallengeType identifies a challenge template.
type ChallengeType string

const (
	ChallengeDiversifySectors ChallengeType = "diversify_sectors"
	ChallengeCashReserve      ChallengeType = "cash_reserve"
	ChallengeChecklistStreak  ChallengeType = "checklist_streak"
	ChallengeHoldDuration     ChallengeType = "hold_duration"
	ChallengeTradeVariety     ChallengeType = "trade_variety"
	ChallengeNeutralTrader    ChallengeType = "neutral_trader"
	ChallengeHypeResistant    ChallengeType = "hype_resistant"
)

// ChallengeTypes lists all challenge types in catalog order.
var ChallengeTypes = []ChallengeType{
	ChallengeDiversifySectors,
	ChallengeCashReserve,
	ChallengeChecklistStreak,
	ChallengeHoldDuration,
	ChallengeTradeVariety,
	ChallengeNeutralTrader,
	ChallengeHypeResistant,
}

// ChallengeStatus is the lifecycle state of a challenge instance.
// Completed and expired are terminal.
type ChallengeStatus string

const (
	ChallengeActive    ChallengeStatus = "active"
	ChallengeCompleted ChallengeStatus = "completed"
	ChallengeExpired   ChallengeStatus = "expired"
)

// Challenge is one instance of a challenge template. After any refresh there
// is exactly one active instance per type.
type Challenge struct {
	ID            string          `json:"id"`
	ChallengeType ChallengeType   `json:"challengeType"`
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	Target        float64         `json:"targetValue"`
	Current       float64         `json:"currentValue"`
	Status        ChallengeStatus `json:"status"`
	StartedAt     time.Time       `json:"startedAt"`
	ExpiresAt     time.Time       `json:"expiresAt"`
	CompletedAt   *time.Time      `json:"completedAt,omitempty"`
}

// ProgressPct returns display progress as a percentage capped at 100.
func (c Challenge) ProgressPct() float64 {
	if c.Target <= 0 {
		return 0
	}
	pct := c.Current / c.Target * 100
	if pct > 100 {
		return 100
	}
	return pct
}
