package scheduler

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/MrSnakeDoc/linkjump/internal/catalog"
	"github.com/MrSnakeDoc/linkjump/internal/index"
	"github.com/MrSnakeDoc/linkjump/internal/logger"
	"github.com/MrSnakeDoc/linkjump/internal/platform"
	redisstore "github.com/MrSnakeDoc/linkjump/internal/store/redis"
)

const (
	// SourceCatalog marks records that came from the catalog file
	SourceCatalog = "catalog"
	// SourceRedis marks records warmed from Redis
	SourceRedis = "redis"
)

// CatalogReloader handles periodic reloading of the link catalog.
// The catalog file is a captured search response; it is filtered against the
// simulated device every time it is loaded.
type CatalogReloader struct {
	catalogFile   string
	simulator     *platform.Simulator
	store         *redisstore.Store
	index         *index.MemoryIndex
	logger        logger.Logger
	interval      time.Duration
	concurrency   int
	stopCh        chan struct{}
	manualTrigger chan struct{}

	// serializes reloads coming from the ticker and the profile reloader
	mu sync.Mutex
}

// NewCatalogReloader creates a new catalog reloader
func NewCatalogReloader(
	catalogFile string,
	sim *platform.Simulator,
	store *redisstore.Store,
	idx *index.MemoryIndex,
	log logger.Logger,
	interval time.Duration,
	concurrency int,
	manualTrigger chan struct{},
) *CatalogReloader {
	return &CatalogReloader{
		catalogFile:   catalogFile,
		simulator:     sim,
		store:         store,
		index:         idx,
		logger:        log,
		interval:      interval,
		concurrency:   concurrency,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start loads the catalog once and then reloads it periodically
func (cr *CatalogReloader) Start(ctx context.Context) error {
	if err := cr.Reload(ctx); err != nil {
		return fmt.Errorf("initial catalog reload failed: %w", err)
	}
	runEvery(ctx, cr.interval, cr.manualTrigger, cr.stopCh, cr.logger, "catalog", cr.Reload)
	return nil
}

// Stop stops the reloader
func (cr *CatalogReloader) Stop() {
	close(cr.stopCh)
}

// Reload parses the catalog against the current device and updates index + store
func (cr *CatalogReloader) Reload(ctx context.Context) error {
	cr.mu.Lock()
	defer cr.mu.Unlock()

	cr.logger.Info("reloading catalog", logger.String("file", cr.catalogFile))

	data, err := os.ReadFile(cr.catalogFile)
	if err != nil {
		return fmt.Errorf("failed to read catalog file: %w", err)
	}

	sess := cr.simulator.NewSession(platform.SessionOptions{Logger: cr.logger})
	result, err := catalog.ParseSearchResponse(ctx, data, sess.Env(), cr.concurrency)
	if err != nil {
		return fmt.Errorf("failed to parse catalog: %w", err)
	}

	now := time.Now()
	records := cr.merge(result, now)

	cr.index.UpdateLinks(records)
	cr.index.SetApps(result.RequestID, result.Apps)

	cr.logger.Info("loaded catalog",
		logger.String("request_id", result.RequestID),
		logger.String("device", sess.Device().Name),
		logger.Int("apps", len(result.Apps)),
		logger.Int("links", len(records)))

	// Update Redis store (best effort)
	if cr.store != nil {
		if err := cr.store.SaveLinksMany(ctx, records); err != nil {
			cr.logger.Warn("failed to save links to redis", logger.Error(err))
		} else {
			cr.logger.Debug("links saved to redis")
		}
		if n, err := cr.store.FlushOutcomes(ctx); err != nil {
			cr.logger.Warn("failed to flush cached outcomes", logger.Error(err))
		} else if n > 0 {
			cr.logger.Debug("flushed cached outcomes", logger.Int("count", n))
		}
	}

	return nil
}

// merge combines the parsed catalog with what the index already holds.
// Known links keep their click history. Catalog links that vanished are
// disabled; records from other sources are left untouched.
func (cr *CatalogReloader) merge(result *catalog.SearchResult, now time.Time) []*catalog.Record {
	existing := make(map[string]*catalog.Record)
	for _, r := range cr.index.GetAllLinks() {
		existing[r.ID] = r
	}

	seen := make(map[string]bool)
	records := make([]*catalog.Record, 0, len(existing))

	for _, l := range result.Links() {
		id := l.EntityID()
		if id == "" {
			cr.logger.Debug("skipping catalog link without entity id",
				logger.String("package", l.DestinationPackage()),
				logger.String("name", l.Name()))
			continue
		}
		if seen[id] {
			continue
		}
		seen[id] = true

		r, ok := existing[id]
		if !ok {
			records = append(records, catalog.NewRecord(l, SourceCatalog, now))
			continue
		}
		r.Link = l
		r.AddSource(SourceCatalog)
		r.LastSeenAt = now
		r.UpdatedAt = now
		r.Disabled = false
		records = append(records, r)
	}

	disabled := 0
	for id, r := range existing {
		if seen[id] {
			continue
		}
		if r.HasSource(SourceCatalog) && !r.Disabled {
			// The GC measures from UpdatedAt, so only stamp the transition.
			r.Disabled = true
			r.UpdatedAt = now
			disabled++
		}
		records = append(records, r)
	}

	if disabled > 0 {
		cr.logger.Info("marking removed links as disabled", logger.Int("count", disabled))
	}

	return records
}
