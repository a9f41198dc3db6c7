package checkout

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/tidemart/storefront/internal/domain"
	"github.com/tidemart/storefront/internal/repository"
)

const sweepBatchSize = 50

// Sweeper periodically retries abandoned reconciliation-failed attempts so
// a confirmed ledger transfer never stays without order records longer than
// one sweep interval.
type Sweeper struct {
	pipeline *Pipeline
	repos    *repository.Repositories
	interval time.Duration
	logger   *zap.Logger
}

// NewSweeper creates a new reconciliation sweeper
func NewSweeper(pipeline *Pipeline, repos *repository.Repositories, interval time.Duration, logger *zap.Logger) *Sweeper {
	return &Sweeper{
		pipeline: pipeline,
		repos:    repos,
		interval: interval,
		logger:   logger,
	}
}

// Run polls until the context is cancelled
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	attempts, err := s.repos.CheckoutAttempt.ListByStatus(ctx, domain.AttemptStatusReconciliationFailed, sweepBatchSize)
	if err != nil {
		s.logger.Error("Failed to list unreconciled attempts", zap.Error(err))
		return
	}

	for _, attempt := range attempts {
		result, err := s.pipeline.RetryReconciliation(ctx, attempt.TxDigest)
		if err != nil {
			s.logger.Error("Sweep retry failed",
				zap.String("tx_digest", attempt.TxDigest),
				zap.Error(err))
			continue
		}
		if result.Status == StatusReconciled {
			s.logger.Info("Recovered unreconciled attempt",
				zap.String("tx_digest", attempt.TxDigest),
				zap.Int("orders", len(result.Orders)))
		}
	}
}
