package scheduler

import (
	"context"

	"github.com/MrSnakeDoc/linkjump/internal/index"
	"github.com/MrSnakeDoc/linkjump/internal/logger"
	redisstore "github.com/MrSnakeDoc/linkjump/internal/store/redis"
)

// RedisSyncer syncs links from Redis to memory index on startup
type RedisSyncer struct {
	store  *redisstore.Store
	index  *index.MemoryIndex
	logger logger.Logger
}

// NewRedisSyncer creates a new Redis syncer
func NewRedisSyncer(
	store *redisstore.Store,
	idx *index.MemoryIndex,
	log logger.Logger,
) *RedisSyncer {
	return &RedisSyncer{
		store:  store,
		index:  idx,
		logger: log,
	}
}

// Sync loads links and click counters from Redis and updates memory index.
// The click hash outlives link TTLs, so it wins over the stored record.
func (rs *RedisSyncer) Sync(ctx context.Context) error {
	rs.logger.Info("syncing links from redis to memory")

	records, err := rs.store.GetAllLinks(ctx)
	if err != nil {
		return err
	}

	if len(records) == 0 {
		rs.logger.Info("no links found in redis")
		return nil
	}

	clicks, err := rs.store.GetClickStats(ctx)
	if err != nil {
		rs.logger.Warn("failed to load click stats, keeping stored counters", logger.Error(err))
	}

	for _, r := range records {
		r.AddSource(SourceRedis)
		if n, ok := clicks[r.ID]; ok && n > r.Clicks {
			r.Clicks = n
		}
	}

	rs.index.UpdateLinks(records)

	rs.logger.Info("synced links from redis",
		logger.Int("count", len(records)))

	return nil
}
