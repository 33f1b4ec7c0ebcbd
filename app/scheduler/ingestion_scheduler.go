// Package scheduler
package scheduler

import (
	"context"
	"time"

	"github.com/avast/retry-go/v4"
	businessflow "github.com/nekomata/nekomata/business_flow"
	"github.com/nekomata/nekomata/config"
	"github.com/nekomata/nekomata/logger"
	"github.com/rs/zerolog"
)

// IngestionScheduler periodically triggers ingestion runs against the
// upstream provider. The pipeline itself never retries; this scheduler is
// the outer collaborator that owns retry policy for transient failures.
type IngestionScheduler struct {
	flow     businessflow.IngestionFlow
	cfg      config.SchedulerConfig
	log      zerolog.Logger
	interval time.Duration
}

// NewIngestionScheduler creates a new ingestion scheduler
func NewIngestionScheduler(flow businessflow.IngestionFlow, cfg config.SchedulerConfig) *IngestionScheduler {
	interval := cfg.IngestionInterval
	if interval <= 0 {
		interval = time.Hour
	}

	return &IngestionScheduler{
		flow:     flow,
		cfg:      cfg,
		log:      logger.For("scheduler"),
		interval: interval,
	}
}

// Start launches the scheduler loop. The returned cancel function stops it.
func (s *IngestionScheduler) Start(parent context.Context) func() {
	ctx, cancel := context.WithCancel(parent)

	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.log.Info().Dur("interval", s.interval).Msg("ingestion scheduler started")

		for {
			select {
			case <-ctx.Done():
				s.log.Info().Msg("ingestion scheduler stopped")
				return
			case <-ticker.C:
				s.runOnce(ctx)
			}
		}
	}()

	return cancel
}

func (s *IngestionScheduler) runOnce(ctx context.Context) {
	attempts := s.cfg.RetryAttempts
	if attempts <= 0 {
		attempts = 1
	}
	delay := s.cfg.RetryDelay
	if delay <= 0 {
		delay = 10 * time.Second
	}

	err := retry.Do(
		func() error {
			summary, err := s.flow.RunIngestion(ctx)
			if err != nil {
				return err
			}
			s.log.Info().
				Str("run_id", summary.RunID).
				Int("inserted", summary.Inserted).
				Int("skipped", summary.Skipped).
				Int("failed", summary.Failed).
				Msg("scheduled ingestion run finished")
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(uint(attempts)),
		retry.Delay(delay),
		retry.LastErrorOnly(true),
		// Store failures are not transient; retrying only hammers the DB.
		retry.RetryIf(businessflow.IsUpstreamUnavailable),
	)
	if err != nil {
		s.log.Error().Err(err).Msg("scheduled ingestion run failed")
	}
}
