package scheduler

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/linkjump/internal/index"
	"github.com/MrSnakeDoc/linkjump/internal/logger"
	redisstore "github.com/MrSnakeDoc/linkjump/internal/store/redis"
)

const (
	// DefaultGCThreshold is the duration after which disabled links are deleted
	DefaultGCThreshold = 30 * 24 * time.Hour // 30 days
)

// GarbageCollector handles cleanup of links that left the catalog long ago
type GarbageCollector struct {
	store     *redisstore.Store
	index     *index.MemoryIndex
	logger    logger.Logger
	interval  time.Duration
	threshold time.Duration
	stopCh    chan struct{}
}

// NewGarbageCollector creates a new garbage collector
func NewGarbageCollector(
	store *redisstore.Store,
	idx *index.MemoryIndex,
	log logger.Logger,
	interval time.Duration,
	threshold time.Duration,
) *GarbageCollector {
	if threshold == 0 {
		threshold = DefaultGCThreshold
	}

	return &GarbageCollector{
		store:     store,
		index:     idx,
		logger:    log,
		interval:  interval,
		threshold: threshold,
		stopCh:    make(chan struct{}),
	}
}

// Start begins the periodic garbage collection process
func (gc *GarbageCollector) Start(ctx context.Context) error {
	// Run immediately on start
	if err := gc.Collect(ctx); err != nil {
		gc.logger.Warn("initial garbage collection failed",
			logger.Error(err))
	}

	runEvery(ctx, gc.interval, nil, gc.stopCh, gc.logger, "garbage", gc.Collect)
	return nil
}

// Stop stops the garbage collector
func (gc *GarbageCollector) Stop() {
	close(gc.stopCh)
}

// Collect removes links that have been disabled for longer than the threshold
func (gc *GarbageCollector) Collect(ctx context.Context) error {
	gc.logger.Debug("running garbage collection for disabled links")

	now := time.Now()
	deleted := 0

	for _, r := range gc.index.GetAllLinks() {
		if !r.Disabled || r.UpdatedAt.IsZero() {
			continue
		}

		disabledFor := now.Sub(r.UpdatedAt)
		if disabledFor < gc.threshold {
			continue
		}

		gc.index.DeleteLink(r.ID)

		// Delete from Redis store (best effort)
		if gc.store != nil {
			if err := gc.store.DeleteLink(ctx, r.ID); err != nil {
				gc.logger.Warn("failed to delete link from redis",
					logger.String("link_id", r.ID),
					logger.Error(err))
			}
		}

		gc.logger.Info("garbage collected disabled link",
			logger.String("link_id", r.ID),
			logger.String("name", r.Link.Name()),
			logger.String("disabled_for", disabledFor.String()))

		deleted++
	}

	if deleted > 0 {
		gc.logger.Info("garbage collection completed",
			logger.Int("links_deleted", deleted))
	} else {
		gc.logger.Debug("no links to garbage collect")
	}

	return nil
}
