package worker

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// StaleFailer fails jobs that have not progressed since a cutoff.
type StaleFailer interface {
	FailStale(ctx context.Context, before time.Time) (int, error)
}

// Sweeper periodically fails queued or running jobs that stopped reporting progress,
// which covers deliveries lost by the queue or runs killed with their process.
type Sweeper struct {
	jobs       StaleFailer
	staleAfter time.Duration
	interval   time.Duration
	logger     *zap.Logger
	now        func() time.Time
}

func NewSweeper(jobs StaleFailer, staleAfter, interval time.Duration, logger *zap.Logger) *Sweeper {
	return &Sweeper{
		jobs:       jobs,
		staleAfter: staleAfter,
		interval:   interval,
		logger:     logger,
		now:        time.Now,
	}
}

// Run sweeps once immediately and then on every tick until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	s.logger.Info("starting stale job sweeper",
		zap.Duration("stale_after", s.staleAfter),
		zap.Duration("interval", s.interval))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.Sweep(ctx)
	for {
		select {
		case <-ticker.C:
			s.Sweep(ctx)
		case <-ctx.Done():
			s.logger.Info("sweeper stopped")
			return
		}
	}
}

func (s *Sweeper) Sweep(ctx context.Context) int {
	start := time.Now()
	n, err := s.jobs.FailStale(ctx, s.now().Add(-s.staleAfter))
	if err != nil {
		s.logger.Error("sweep failed", zap.Error(err), zap.Int("failed_jobs", n))
		return n
	}
	if n > 0 {
		s.logger.Warn("failed stale jobs", zap.Int("count", n), zap.Duration("duration", time.Since(start)))
	}
	return n
}
