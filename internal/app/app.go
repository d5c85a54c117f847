package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/linkjump/internal/config"
	"github.com/MrSnakeDoc/linkjump/internal/domain"
	"github.com/MrSnakeDoc/linkjump/internal/httpserver"
	"github.com/MrSnakeDoc/linkjump/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linkjump/internal/index"
	"github.com/MrSnakeDoc/linkjump/internal/logger"
	"github.com/MrSnakeDoc/linkjump/internal/platform"
	"github.com/MrSnakeDoc/linkjump/internal/redis"
	"github.com/MrSnakeDoc/linkjump/internal/scheduler"
	redisstore "github.com/MrSnakeDoc/linkjump/internal/store/redis"
	"github.com/MrSnakeDoc/linkjump/internal/tracking"
	"github.com/MrSnakeDoc/linkjump/internal/utils"
	"github.com/MrSnakeDoc/linkjump/internal/version"
)

type App struct {
	cfg             *config.Config
	logger          logger.Logger
	server          *httpserver.Server
	redisClient     *goredis.Client
	memIndex        *index.MemoryIndex
	catalogReloader *scheduler.CatalogReloader
	profileReloader *scheduler.ProfileReloader
	gc              *scheduler.GarbageCollector
	notifier        *tracking.Notifier
}

func New() *App {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	// Initialize Redis early - fail fast if unavailable
	loggerClient.Infof("Connecting to Redis at %s", cfg.RedisAddr)
	redisClient, err := redis.New(context.Background(), redis.ConnectOptions{
		Addr:           cfg.RedisAddr,
		User:           cfg.RedisUser,
		Password:       cfg.RedisPassword,
		RedisDB:        cfg.RedisDB,
		DialTimeout:    cfg.RedisDT,
		ReadTimeout:    cfg.RedisRT,
		WriteTimeout:   cfg.RedisWT,
		PoolSize:       cfg.RedisPoolSize,
		ConnectTimeout: cfg.RedisConnectTimeout,
		RetryInterval:  cfg.RedisRetryInterval,
		MaxWait:        cfg.RedisMaxWait,
		PingTimeout:    cfg.RedisPingTimeout,
		WarnThreshold:  cfg.RedisWarnThreshold,
	}, loggerClient)
	if err != nil {
		loggerClient.Errorf("Failed to connect to Redis: %v", err)
		os.Exit(1)
	}
	loggerClient.Info("Redis initialized successfully")

	memIndex := index.NewMemoryIndex()
	store := redisstore.NewStore(redisClient)

	// The device starts empty; the profile reloader installs the real one.
	simulator := platform.NewSimulator(nil)

	// Warm the index from Redis so links keep their clicks across restarts
	syncer := scheduler.NewRedisSyncer(store, memIndex, loggerClient)
	if err := syncer.Sync(context.Background()); err != nil {
		loggerClient.Warn("failed to sync from redis on startup, will load from catalog",
			logger.Error(err))
	}

	reloadTrigger := make(chan struct{}, 1)
	profileReloadTrigger := make(chan struct{}, 1)

	catalogReloader := scheduler.NewCatalogReloader(
		cfg.CatalogFile,
		simulator,
		store,
		memIndex,
		loggerClient,
		cfg.ReloadInterval,
		cfg.ParseConcurrency,
		reloadTrigger,
	)

	profileReloader := scheduler.NewProfileReloader(
		cfg.ProfileFile,
		simulator,
		catalogReloader,
		loggerClient,
		cfg.ReloadInterval,
		profileReloadTrigger,
	)

	gc := scheduler.NewGarbageCollector(
		store,
		memIndex,
		loggerClient,
		cfg.GCInterval,
		scheduler.DefaultGCThreshold,
	)

	var (
		notifier *tracking.Notifier
		tracker  domain.ClickTracker
	)
	if cfg.TrackingEnabled {
		notifier = tracking.NewNotifier(cfg.TrackingTimeout, loggerClient)
		tracker = notifier
		loggerClient.Info("click tracking enabled",
			logger.Duration("timeout", cfg.TrackingTimeout))
	} else {
		loggerClient.Info("click tracking disabled")
	}

	// Dependencies passed to routes (extend as needed).
	d := deps.Deps{
		Logger:               loggerClient,
		StartTime:            time.Now(),
		Version:              version.Version,
		Commit:               version.Commit,
		BuildDate:            version.BuildDate,
		GoVersion:            version.GoVersion,
		TimeNow:              time.Now,
		AllowedHosts:         cfg.AllowedHosts,
		AllowedCIDRS:         cfg.AllowedCIDRS,
		TrustProxy:           cfg.TrustProxy,
		ProfileFile:          cfg.ProfileFile,
		CatalogFile:          cfg.CatalogFile,
		RedisClient:          redisClient,
		Store:                store,
		MemoryIndex:          memIndex,
		Simulator:            simulator,
		Tracker:              tracker,
		LaunchFlags:          domain.LaunchFlags(cfg.LaunchFlags),
		FallbackToStore:      cfg.FallbackToStore,
		MaxCandidates:        cfg.MaxCandidates,
		OutcomeTTL:           cfg.OutcomeTTL,
		ReloadTrigger:        reloadTrigger,
		ProfileReloadTrigger: profileReloadTrigger,
	}

	server := httpserver.New(cfg, loggerClient, d)

	return &App{
		cfg:             cfg,
		logger:          loggerClient,
		server:          server,
		redisClient:     redisClient,
		memIndex:        memIndex,
		catalogReloader: catalogReloader,
		profileReloader: profileReloader,
		gc:              gc,
		notifier:        notifier,
	}
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting LinkJump v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("LinkJump %s", version.String())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The catalog is filtered against the device, so the profile goes first
	if err := a.profileReloader.Start(ctx); err != nil {
		return fmt.Errorf("failed to start profile reloader: %w", err)
	}
	a.logger.Info("profile reloader started",
		logger.Duration("interval", a.cfg.ReloadInterval))

	if err := a.catalogReloader.Start(ctx); err != nil {
		return fmt.Errorf("failed to start catalog reloader: %w", err)
	}
	a.logger.Info("catalog reloader started",
		logger.Duration("interval", a.cfg.ReloadInterval),
		logger.Int("links", a.memIndex.Count()))

	if err := a.gc.Start(ctx); err != nil {
		return fmt.Errorf("failed to start garbage collector: %w", err)
	}
	a.logger.Info("garbage collector started",
		logger.Duration("interval", a.cfg.GCInterval))

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	a.profileReloader.Stop()
	a.catalogReloader.Stop()
	a.gc.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	// In-flight tracking calls may still be running after the last request
	if a.notifier != nil {
		if err := a.notifier.Close(shutdownCtx); err != nil {
			a.logger.Warn("click notifications still pending at shutdown", logger.Error(err))
		}
		sent, failed := a.notifier.Stats()
		a.logger.Info("click tracking stopped",
			logger.Int64("sent", sent),
			logger.Int64("failed", failed))
	}

	if a.redisClient != nil {
		utils.MustClose(a.redisClient, a.logger)
		a.logger.Info("✅ Redis closed")
	}

	a.logger.Info("✅ LinkJump stopped cleanly")
	return nil
}
