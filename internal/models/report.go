package models

import "time"

// BadgeUpdate records how a badge moved during a report period.
type BadgeUpdate struct {
	BadgeType BadgeType `json:"badgeType"`
	Change    string    `json:"change"` // "earned", "maintained", "lost"
}

// MonthlyReport is an append-only summary of a trailing 30-day period.
type MonthlyReport struct {
	ID               string        `json:"id"`
	PeriodStart      string        `json:"periodStart"`
	PeriodEnd        string        `json:"periodEnd"`
	Risk             float64       `json:"risk"`
	Discipline       float64       `json:"discipline"`
	Strategy         float64       `json:"strategy"`
	Psychology       float64       `json:"psychology"`
	Consistency      float64       `json:"consistency"`
	OverallGrade     string        `json:"overallGrade"`
	BestTradeID      string        `json:"bestTradeId,omitempty"`
	WorstTradeID     string        `json:"worstTradeId,omitempty"`
	PatternsDetected []string      `json:"patternsDetected"`
	Narrative        string        `json:"narrative"`
	BadgeUpdates     []BadgeUpdate `json:"badgeUpdates"`
	CreatedAt        time.Time     `json:"createdAt"`
}
