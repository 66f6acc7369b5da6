package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"tradecoach/internal/models"
	"tradecoach/internal/scoring"
)

type countingScoring struct {
	calls atomic.Int32
	err   error
}

func (c *countingScoring) ComputeDaily(context.Context) (*scoring.DailyResult, error) {
	c.calls.Add(1)
	if c.err != nil {
		return nil, c.err
	}
	return &scoring.DailyResult{Date: "2025-06-15"}, nil
}

type countingChallenges struct {
	calls atomic.Int32
}

func (c *countingChallenges) Refresh(context.Context) ([]models.Challenge, error) {
	c.calls.Add(1)
	return nil, nil
}

func TestSchedulerRunsImmediatePass(t *testing.T) {
	sc := &countingScoring{}
	ch := &countingChallenges{}
	s := New(sc, ch, time.Hour, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)

	assert.Eventually(t, func() bool {
		return sc.calls.Load() >= 1 && ch.calls.Load() >= 1
	}, time.Second, 10*time.Millisecond)

	s.Stop()
}

func TestSchedulerTicks(t *testing.T) {
	sc := &countingScoring{}
	ch := &countingChallenges{}
	s := New(sc, ch, 20*time.Millisecond, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)

	assert.Eventually(t, func() bool {
		return sc.calls.Load() >= 3
	}, time.Second, 5*time.Millisecond)

	s.Stop()
}

func TestScoringFailureDoesNotBlockRefresh(t *testing.T) {
	sc := &countingScoring{err: assert.AnError}
	ch := &countingChallenges{}
	s := New(sc, ch, time.Hour, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)

	assert.Eventually(t, func() bool {
		return ch.calls.Load() >= 1
	}, time.Second, 10*time.Millisecond)

	s.Stop()
}

func TestStopEndsLoop(t *testing.T) {
	sc := &countingScoring{}
	ch := &countingChallenges{}
	s := New(sc, ch, 10*time.Millisecond, zerolog.Nop())

	s.Start(context.Background())
	assert.Eventually(t, func() bool { return sc.calls.Load() >= 1 }, time.Second, 5*time.Millisecond)
	s.Stop()

	stopped := sc.calls.Load()
	time.Sleep(50 * time.Millisecond)
	assert.LessOrEqual(t, sc.calls.Load(), stopped+1)
}
