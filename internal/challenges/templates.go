// Package challenges manages trading missions: a fixed template catalog,
// per-type progress computation, and the active/completed/expired lifecycle.
package challenges

import "tradecoach/internal/models"

// Template defines one challenge type: its display copy, target, and how
// long an instance runs before expiring.
type Template struct {
	Type         models.ChallengeType
	Title        string
	Description  string
	Target       float64
	DurationDays int
}

// Templates is the challenge catalog. One instance of each type is active
// at any time once seeded.
var Templates = []Template{
	{
		Type:         models.ChallengeDiversifySectors,
		Title:        "Sector Explorer",
		Description:  "Hold 3 or more unique asset types (stocks and crypto) at the same time.",
		Target:       3,
		DurationDays: 30,
	},
	{
		Type:         models.ChallengeCashReserve,
		Title:        "Cash Discipline",
		Description:  "Keep at least 25% of your portfolio in cash for 7 consecutive days.",
		Target:       7,
		DurationDays: 30,
	},
	{
		Type:         models.ChallengeChecklistStreak,
		Title:        "Mindful Trader",
		Description:  "Complete 10 consecutive full trade checklists without skipping.",
		Target:       10,
		DurationDays: 30,
	},
	{
		Type:         models.ChallengeHoldDuration,
		Title:        "Patient Investor",
		Description:  "Hold at least 1 position for 5 or more days.",
		Target:       5,
		DurationDays: 30,
	},
	{
		Type:         models.ChallengeTradeVariety,
		Title:        "Multi-Market Learner",
		Description:  "Execute trades in both stocks and crypto markets.",
		Target:       2,
		DurationDays: 30,
	},
	{
		Type:         models.ChallengeNeutralTrader,
		Title:        "Calm Waters",
		Description:  "Execute 3 trades when market sentiment for the asset is neutral.",
		Target:       3,
		DurationDays: 30,
	},
	{
		Type:         models.ChallengeHypeResistant,
		Title:        "Hype Resistant",
		Description:  "Go 7 days without buying any asset with >70% positive sentiment.",
		Target:       7,
		DurationDays: 14,
	},
}
