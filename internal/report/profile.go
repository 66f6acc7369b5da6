package report

import (
	"context"
	"math"
	"sort"

	apperrors "tradecoach/internal/errors"
	"tradecoach/internal/models"
	"tradecoach/internal/scoring"
)

// TraderProfile is the at-a-glance skill view: level, strongest and weakest
// dimensions, activity counts, and active badges.
type TraderProfile struct {
	SkillLevel           string              `json:"skillLevel"`
	ActiveBadges         []models.Badge      `json:"activeBadges"`
	CurrentScores        *models.DailyScore  `json:"currentScores,omitempty"`
	Strengths            []string            `json:"strengths"`
	Weaknesses           []string            `json:"weaknesses"`
	TotalTrades          int                 `json:"totalTrades"`
	ActiveDays           int                 `json:"activeDays"`
	WinRate              float64             `json:"winRate"`
	ChallengesCompleted  int                 `json:"challengesCompleted"`
}

// Profile assembles the trader profile from the latest score row, badges,
// and the full trade history.
func (b *Builder) Profile(ctx context.Context) (*TraderProfile, error) {
	latest, err := b.store.GetLatestDailyScore(ctx)
	if err != nil && !apperrors.Is(err, apperrors.ErrDataNotFound) {
		return nil, apperrors.Wrap(err, "load latest score")
	}
	badges, err := b.store.GetBadges(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, "load badges")
	}
	transactions, err := b.store.GetTransactions(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, "load transactions")
	}
	daily, err := b.store.GetDailyScores(ctx, scoring.WindowDays)
	if err != nil {
		return nil, apperrors.Wrap(err, "load daily scores")
	}
	completed, err := b.store.CountCompletedChallenges(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, "count completed challenges")
	}

	var activeDays int
	for _, s := range daily {
		if s.ActiveDay {
			activeDays++
		}
	}

	return computeProfile(latest, badges, transactions, activeDays, completed), nil
}

// computeProfile is the pure core of Profile.
func computeProfile(latest *models.DailyScore, badges []models.Badge, transactions []models.Transaction, activeDays, completed int) *TraderProfile {
	profile := &TraderProfile{
		CurrentScores:       latest,
		Strengths:           []string{},
		Weaknesses:          []string{},
		TotalTrades:         len(transactions),
		ActiveDays:          activeDays,
		ChallengesCompleted: completed,
	}

	var avg float64
	if latest != nil {
		for _, dim := range models.Dimensions {
			avg += latest.Score(dim)
		}
		avg /= float64(len(models.Dimensions))
	}
	switch {
	case avg >= 80:
		profile.SkillLevel = "Expert"
	case avg >= 60:
		profile.SkillLevel = "Advanced"
	case avg >= 40:
		profile.SkillLevel = "Intermediate"
	default:
		profile.SkillLevel = "Beginner"
	}

	if latest != nil {
		dims := make([]models.Dimension, len(models.Dimensions))
		copy(dims, models.Dimensions)
		sort.SliceStable(dims, func(i, j int) bool {
			return latest.Score(dims[i]) > latest.Score(dims[j])
		})
		for _, d := range dims[:2] {
			profile.Strengths = append(profile.Strengths, models.DimensionLabels[d])
		}
		for _, d := range dims[len(dims)-2:] {
			profile.Weaknesses = append(profile.Weaknesses, models.DimensionLabels[d])
		}
	}

	profile.WinRate = computeWinRate(transactions)

	for _, badge := range badges {
		if badge.Active {
			profile.ActiveBadges = append(profile.ActiveBadges, badge)
		}
	}

	return profile
}

// computeWinRate counts sells that beat the first-listed buy price of the
// same symbol. Transactions are newest-first, so "first-listed" is the most
// recent buy.
func computeWinRate(transactions []models.Transaction) float64 {
	buyPrice := make(map[string]float64)
	for _, t := range transactions {
		if t.Action == models.ActionBuy {
			if _, seen := buyPrice[t.Symbol]; !seen {
				buyPrice[t.Symbol] = t.Price
			}
		}
	}

	var sells, wins int
	for _, t := range transactions {
		if t.Action != models.ActionSell {
			continue
		}
		sells++
		if bp := buyPrice[t.Symbol]; bp > 0 && t.Price > bp {
			wins++
		}
	}
	if sells == 0 {
		return 0
	}
	return math.Round(float64(wins)/float64(sells)*1000) / 10
}
