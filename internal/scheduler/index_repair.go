package scheduler

import (
	"context"
	"time"

	"github.com/shelfmark/shelfmark/internal/logger"
	redisstore "github.com/shelfmark/shelfmark/internal/store/redis"
)

// IndexRepairer periodically reconciles the per-user bookmark list indexes
// against the bookmark documents. Drift can accumulate after partial write
// failures; the repairer re-adds missing index entries and drops dangling
// ones.
type IndexRepairer struct {
	store    *redisstore.Store
	logger   logger.Logger
	interval time.Duration
	stopCh   chan struct{}
}

// NewIndexRepairer creates a new index repairer
func NewIndexRepairer(
	store *redisstore.Store,
	log logger.Logger,
	interval time.Duration,
) *IndexRepairer {
	return &IndexRepairer{
		store:    store,
		logger:   log,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the periodic repair process
func (ir *IndexRepairer) Start(ctx context.Context) error {
	// Run immediately on start
	if err := ir.Repair(ctx); err != nil {
		ir.logger.Warn("initial index repair failed",
			logger.Error(err))
	}

	ticker := time.NewTicker(ir.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := ir.Repair(ctx); err != nil {
					ir.logger.Error("index repair failed",
						logger.Error(err))
				}
			case <-ir.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the repairer
func (ir *IndexRepairer) Stop() {
	close(ir.stopCh)
}

// Repair runs one reconciliation pass
func (ir *IndexRepairer) Repair(ctx context.Context) error {
	stats, err := ir.store.RepairIndexes(ctx)
	if err != nil {
		return err
	}

	if stats.Indexed > 0 || stats.Removed > 0 {
		ir.logger.Info("bookmark index repair completed",
			logger.Int("indexed", stats.Indexed),
			logger.Int("removed", stats.Removed))
	} else {
		ir.logger.Debug("bookmark indexes consistent")
	}

	return nil
}
