// Package worker consumes generation tasks and keeps abandoned jobs from lingering.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"brochure-backend/internal/queue"
	"brochure-backend/internal/services"
)

// Runner executes generation for one job.
type Runner interface {
	Run(ctx context.Context, jobID, projectID uuid.UUID) error
}

type PoolConfig struct {
	Concurrency int
	// Timeout bounds a single run. Zero means no limit.
	Timeout time.Duration
}

// Pool runs tasks from a queue on a fixed number of goroutines. Runs for different
// jobs share nothing.
type Pool struct {
	source queue.Source
	runner Runner
	cfg    PoolConfig
	logger *zap.Logger
}

func NewPool(source queue.Source, runner Runner, cfg PoolConfig, logger *zap.Logger) *Pool {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	return &Pool{source: source, runner: runner, cfg: cfg, logger: logger}
}

// Run blocks until ctx is cancelled and every in-flight run has returned.
// Cancelling ctx stops intake only: a run already started keeps going until it
// finishes or hits Timeout, so shutdown can take up to Timeout.
func (p *Pool) Run(ctx context.Context) error {
	deliveries, err := p.source.Deliveries(ctx)
	if err != nil {
		return fmt.Errorf("subscribe to deliveries: %w", err)
	}

	p.logger.Info("worker pool started", zap.Int("concurrency", p.cfg.Concurrency))

	var wg sync.WaitGroup
	for i := range p.cfg.Concurrency {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.loop(ctx, i, deliveries)
		}()
	}
	wg.Wait()

	p.logger.Info("worker pool stopped")
	return nil
}

func (p *Pool) loop(ctx context.Context, id int, deliveries <-chan queue.Delivery) {
	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-deliveries:
			if !ok {
				return
			}
			if ctx.Err() != nil {
				// Received while shutting down; hand it back instead of starting a run.
				_ = d.Fail(ctx.Err())
				return
			}
			p.handle(ctx, id, d)
		}
	}
}

func (p *Pool) handle(ctx context.Context, id int, d queue.Delivery) {
	log := p.logger.With(
		zap.Int("worker", id),
		zap.String("job_id", d.Task.JobID.String()),
		zap.String("project_id", d.Task.ProjectID.String()),
	)

	runCtx := context.WithoutCancel(ctx)
	if p.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(runCtx, p.cfg.Timeout)
		defer cancel()
	}

	log.Debug("running generation", zap.Duration("queued_for", time.Since(d.Task.EnqueuedAt)))
	err := p.runner.Run(runCtx, d.Task.JobID, d.Task.ProjectID)

	switch {
	case err == nil, errors.Is(err, services.ErrJobSuperseded):
		if ackErr := d.Ack(); ackErr != nil {
			log.Warn("failed to ack delivery", zap.Error(ackErr))
		}
	default:
		log.Error("generation run failed", zap.Error(err))
		if failErr := d.Fail(err); failErr != nil {
			log.Warn("failed to report delivery failure", zap.Error(failErr))
		}
	}
}
