// Package scheduler runs the periodic scoring and challenge refresh loop.
package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"tradecoach/internal/logging"
	"tradecoach/internal/models"
	"tradecoach/internal/scoring"
)

// ScoringService runs one daily scoring pass.
type ScoringService interface {
	ComputeDaily(ctx context.Context) (*scoring.DailyResult, error)
}

// ChallengeService advances the challenge lifecycle.
type ChallengeService interface {
	Refresh(ctx context.Context) ([]models.Challenge, error)
}

// Scheduler periodically recomputes scores and refreshes challenges. The
// scoring pass is idempotent per date, so overlapping runs converge.
type Scheduler struct {
	scoring    ScoringService
	challenges ChallengeService
	interval   time.Duration
	log        zerolog.Logger

	stopCh chan struct{}
}

// New creates a scheduler with the given tick interval.
func New(scoringSvc ScoringService, challengeSvc ChallengeService, interval time.Duration, logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		scoring:    scoringSvc,
		challenges: challengeSvc,
		interval:   interval,
		log:        logging.WithComponent(logger, "scheduler"),
		stopCh:     make(chan struct{}),
	}
}

// Start runs the loop in a background goroutine. One pass runs immediately
// so a fresh install has scores without waiting a full interval.
func (s *Scheduler) Start(ctx context.Context) {
	go s.run(ctx)
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	close(s.stopCh)
}

func (s *Scheduler) run(ctx context.Context) {
	s.log.Info().Dur("interval", s.interval).Msg("scheduler started")

	s.runOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("scheduler stopped")
			return
		case <-s.stopCh:
			s.log.Info().Msg("scheduler stopped")
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

// runOnce executes a single pass. Failures are logged and retried on the
// next tick; a scoring failure does not block the challenge refresh.
func (s *Scheduler) runOnce(ctx context.Context) {
	start := time.Now()

	result, err := s.scoring.ComputeDaily(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("scheduled scoring pass failed")
	} else {
		s.log.Info().
			Str("date", result.Date).
			Float64("average", result.Scores.Average()).
			Msg("scheduled scoring pass complete")
	}

	if _, err := s.challenges.Refresh(ctx); err != nil {
		s.log.Error().Err(err).Msg("scheduled challenge refresh failed")
	}

	s.log.Debug().Dur("duration", time.Since(start)).Msg("scheduler pass finished")
}
