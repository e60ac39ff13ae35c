package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/shelfmark/shelfmark/internal/index"
	"github.com/shelfmark/shelfmark/internal/logger"
	"github.com/shelfmark/shelfmark/internal/sources/featured"
)

// FeaturedReloader handles periodic reloading of the curated shelves
type FeaturedReloader struct {
	loader        *featured.Loader
	mapper        *featured.Mapper
	index         *index.FeaturedIndex
	logger        logger.Logger
	interval      time.Duration
	stopCh        chan struct{}
	manualTrigger chan struct{}
}

// NewFeaturedReloader creates a new featured shelves reloader
func NewFeaturedReloader(
	featuredFile string,
	idx *index.FeaturedIndex,
	log logger.Logger,
	interval time.Duration,
	manualTrigger chan struct{},
) *FeaturedReloader {
	return &FeaturedReloader{
		loader:        featured.NewLoader(featuredFile),
		mapper:        featured.NewMapper(),
		index:         idx,
		logger:        log,
		interval:      interval,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start begins the periodic reload process
func (fr *FeaturedReloader) Start(ctx context.Context) error {
	// Load immediately on start
	if err := fr.Reload(ctx); err != nil {
		return fmt.Errorf("initial featured reload failed: %w", err)
	}

	ticker := time.NewTicker(fr.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := fr.Reload(ctx); err != nil {
					fr.logger.Error("failed to reload featured shelves",
						logger.Error(err))
				}
			case <-fr.manualTrigger:
				fr.logger.Info("manual featured reload triggered")
				if err := fr.Reload(ctx); err != nil {
					fr.logger.Error("failed to reload featured shelves",
						logger.Error(err))
				}
			case <-fr.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the reloader
func (fr *FeaturedReloader) Stop() {
	close(fr.stopCh)
}

// Reload loads the featured file and swaps the in-memory index
func (fr *FeaturedReloader) Reload(_ context.Context) error {
	fr.logger.Info("reloading featured shelves")

	file, err := fr.loader.Load()
	if err != nil {
		return fmt.Errorf("failed to load featured shelves: %w", err)
	}

	shelves, err := fr.mapper.MapShelves(file)
	if err != nil {
		return fmt.Errorf("failed to map featured shelves: %w", err)
	}

	fr.index.Update(shelves)
	fr.logger.Info("featured shelves updated",
		logger.Int("shelves", len(shelves)))

	return nil
}
