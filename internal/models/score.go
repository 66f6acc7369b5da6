package models

import "time"

// DailyScore is one day's behavioral score snapshot. Date is the unique key
// (UTC calendar date, "2006-01-02"); recomputation upserts by date, so the
// row is idempotent for unchanged inputs.
type DailyScore struct {
	ID          string    `json:"id"`
	Date        string    `json:"date"`
	Risk        float64   `json:"risk"`
	Discipline  float64   `json:"discipline"`
	Strategy    float64   `json:"strategy"`
	Psychology  float64   `json:"psychology"`
	Consistency float64   `json:"consistency"`
	TradeCount  int       `json:"tradeCount"`
	ActiveDay   bool      `json:"activeDay"`
	ComputedAt  time.Time `json:"computedAt"`
}

// Score returns the value for the given dimension.
func (d DailyScore) Score(dim Dimension) float64 {
	switch dim {
	case DimensionRisk:
		return d.Risk
	case DimensionDiscipline:
		return d.Discipline
	case DimensionStrategy:
		return d.Strategy
	case DimensionPsychology:
		return d.Psychology
	case DimensionConsistency:
		return d.Consistency
	}
	return 0
}

// BadgeType identifies an achievement badge.
type BadgeType string

const (
	BadgeRiskGuardian       BadgeType = "risk_guardian"
	BadgeDisciplineMaster   BadgeType = "discipline_master"
	BadgeConsistencyPro     BadgeType = "consistency_pro"
	BadgeStrategyBuilder    BadgeType = "strategy_builder"
	BadgePsychologyChampion BadgeType = "psychology_champion"
	BadgeMarketAware        BadgeType = "market_aware"
)

// Badge is the persisted state of one achievement. BadgeType is the unique
// key. FirstEarnedAt is sticky: set on the first earning evaluation and
// never cleared. LastActiveAt is stamped only while the badge is active.
type Badge struct {
	BadgeType      BadgeType  `json:"badgeType"`
	Earned         bool       `json:"earned"`
	Active         bool       `json:"active"`
	QualifyingDays int        `json:"qualifyingDays"`
	RequiredDays   int        `json:"requiredDays"`
	FirstEarnedAt  *time.Time `json:"firstEarnedAt,omitempty"`
	LastActiveAt   *time.Time `json:"lastActiveAt,omitempty"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}
