// Package store provides data persistence implementations.
package store

import (
	"context"
	"time"

	"tradecoach/internal/models"
)

// DefaultBalance is the paper-trading account's starting cash.
const DefaultBalance = 100000.0

// DataStore defines the interface for persistence operations.
// GetTransactions returns newest-first; GetDailyScores returns newest-first;
// GetAllDailyScores returns oldest-first. Callers rely on those orders.
type DataStore interface {
	// Portfolio operations
	GetBalance(ctx context.Context) (float64, error)
	SetBalance(ctx context.Context, balance float64) error
	GetHoldings(ctx context.Context) ([]models.Holding, error)
	UpsertHolding(ctx context.Context, holding *models.Holding) error

	// Transaction operations
	SaveTransaction(ctx context.Context, tx *models.Transaction) error
	GetTransactions(ctx context.Context) ([]models.Transaction, error)

	// Checklist operations
	SaveChecklist(ctx context.Context, checklist *models.Checklist) error
	GetChecklists(ctx context.Context, days int) ([]models.Checklist, error)

	// Mentor trigger operations
	SaveTrigger(ctx context.Context, trigger *models.MentorTrigger) error
	DismissTrigger(ctx context.Context, id string) error
	GetTriggers(ctx context.Context, days int) ([]models.MentorTrigger, error)
	GetRecentTriggers(ctx context.Context, limit int) ([]models.MentorTrigger, error)
	GetTriggerCounts(ctx context.Context) (map[string]int, error)

	// Daily score operations
	UpsertDailyScore(ctx context.Context, score *models.DailyScore) error
	GetDailyScores(ctx context.Context, days int) ([]models.DailyScore, error)
	GetAllDailyScores(ctx context.Context) ([]models.DailyScore, error)
	GetLatestDailyScore(ctx context.Context) (*models.DailyScore, error)

	// Badge operations
	UpsertBadge(ctx context.Context, badge *models.Badge) error
	GetBadges(ctx context.Context) ([]models.Badge, error)

	// Challenge operations
	SaveChallenge(ctx context.Context, challenge *models.Challenge) error
	UpdateChallenge(ctx context.Context, id string, current float64, status models.ChallengeStatus, completedAt *time.Time) error
	GetActiveChallenges(ctx context.Context) ([]models.Challenge, error)
	GetChallengeHistory(ctx context.Context, limit int) ([]models.Challenge, error)
	CountCompletedChallenges(ctx context.Context) (int, error)

	// Report operations
	SaveReport(ctx context.Context, report *models.MonthlyReport) error
	GetLatestReport(ctx context.Context) (*models.MonthlyReport, error)
	GetReportHistory(ctx context.Context, limit int) ([]models.MonthlyReport, error)

	// Close closes the store
	Close() error
}
