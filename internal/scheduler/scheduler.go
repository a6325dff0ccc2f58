// Package scheduler wires up the cron job that periodically re-checks prices
// for every user with tracked products.
package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/gauravrohinda/trackprices/internal/logger"
	"github.com/gauravrohinda/trackprices/internal/monitor"
	"github.com/gauravrohinda/trackprices/internal/store"
)

// Scheduler wraps robfig/cron and manages the check loop. The core checker
// stays free of wall-clock concerns; this is the only place that knows about
// intervals.
type Scheduler struct {
	cron    *cron.Cron
	repo    *store.ProductRepository
	checker *monitor.Checker
	spec    string // cron spec, e.g. "@every 12h"
}

// New creates a Scheduler that fires every intervalHours hours.
func New(repo *store.ProductRepository, checker *monitor.Checker, intervalHours int) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		repo:    repo,
		checker: checker,
		spec:    fmt.Sprintf("@every %dh", intervalHours),
	}
}

// Start registers the job and starts the scheduler. Also runs one batch
// immediately so history is populated without waiting for the first tick.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.runBatches(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	logger.Log.Info("cron started", zap.String("spec", s.spec))

	// Run immediately on startup (non-blocking)
	go s.runBatches(ctx)

	return nil
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	logger.Log.Info("cron stopped")
}

// runBatches runs one check batch per user with tracked products.
func (s *Scheduler) runBatches(ctx context.Context) {
	userIDs, err := s.repo.ListUserIDs(ctx)
	if err != nil {
		logger.Log.Error("listing users failed", zap.Error(err))
		return
	}
	if len(userIDs) == 0 {
		logger.Log.Info("no tracked products — nothing to check")
		return
	}

	for _, uid := range userIDs {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if err := s.checker.RunCheck(ctx, uid); err != nil {
			logger.Log.Error("check batch failed",
				zap.String("user_id", uid),
				zap.Error(err),
			)
		}
	}
}
