package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/linkjump/internal/logger"
	"github.com/MrSnakeDoc/linkjump/internal/platform"
	"github.com/MrSnakeDoc/linkjump/internal/sources/profile"
)

// ProfileReloader handles periodic reloading of the simulated device profile
type ProfileReloader struct {
	loader        *profile.Loader
	mapper        *profile.Mapper
	simulator     *platform.Simulator
	catalog       *CatalogReloader // optional, re-filtered after each device change
	logger        logger.Logger
	interval      time.Duration
	stopCh        chan struct{}
	manualTrigger chan struct{}
}

// NewProfileReloader creates a new profile reloader. catalog may be nil.
func NewProfileReloader(
	profileFile string,
	sim *platform.Simulator,
	catalog *CatalogReloader,
	log logger.Logger,
	interval time.Duration,
	manualTrigger chan struct{},
) *ProfileReloader {
	return &ProfileReloader{
		loader:        profile.NewLoader(profileFile),
		mapper:        profile.NewMapper(),
		simulator:     sim,
		catalog:       catalog,
		logger:        log,
		interval:      interval,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start loads the profile once and then reloads it periodically.
// The initial load does not touch the catalog; the catalog reloader does its
// own initial load afterwards.
func (pr *ProfileReloader) Start(ctx context.Context) error {
	if err := pr.load(); err != nil {
		return fmt.Errorf("initial profile reload failed: %w", err)
	}
	runEvery(ctx, pr.interval, pr.manualTrigger, pr.stopCh, pr.logger, "profile", pr.Reload)
	return nil
}

// Stop stops the reloader
func (pr *ProfileReloader) Stop() {
	close(pr.stopCh)
}

// Reload installs the profile on the simulator and re-filters the catalog
func (pr *ProfileReloader) Reload(ctx context.Context) error {
	if err := pr.load(); err != nil {
		return err
	}
	if pr.catalog == nil {
		return nil
	}
	if err := pr.catalog.Reload(ctx); err != nil {
		return fmt.Errorf("failed to re-filter catalog for new device: %w", err)
	}
	return nil
}

func (pr *ProfileReloader) load() error {
	pr.logger.Info("reloading device profile", logger.String("file", pr.loader.Path()))

	f, err := pr.loader.Load()
	if err != nil {
		return fmt.Errorf("failed to load profile: %w", err)
	}

	device, err := pr.mapper.MapDevice(f)
	if err != nil {
		return fmt.Errorf("failed to map profile: %w", err)
	}

	pr.simulator.SetDevice(device)

	pr.logger.Info("device profile loaded",
		logger.String("device", device.Name),
		logger.Int("apps", len(device.Apps())),
		logger.Bool("shortcuts", device.SupportsShortcuts))

	return nil
}
