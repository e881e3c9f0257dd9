package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/flintmeta/internal/catalog"
	"github.com/MrSnakeDoc/flintmeta/internal/config"
	"github.com/MrSnakeDoc/flintmeta/internal/httpclient"
	"github.com/MrSnakeDoc/flintmeta/internal/httpserver"
	"github.com/MrSnakeDoc/flintmeta/internal/httpserver/deps"
	"github.com/MrSnakeDoc/flintmeta/internal/index"
	"github.com/MrSnakeDoc/flintmeta/internal/logger"
	"github.com/MrSnakeDoc/flintmeta/internal/metrics"
	"github.com/MrSnakeDoc/flintmeta/internal/profile"
	"github.com/MrSnakeDoc/flintmeta/internal/redis"
	"github.com/MrSnakeDoc/flintmeta/internal/scheduler"
	"github.com/MrSnakeDoc/flintmeta/internal/sources/launchermeta"
	"github.com/MrSnakeDoc/flintmeta/internal/sources/maven"
	redisstore "github.com/MrSnakeDoc/flintmeta/internal/store/redis"
	"github.com/MrSnakeDoc/flintmeta/internal/version"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	redisClient *goredis.Client
	memIndex    *index.MemoryIndex
	refresher   *scheduler.Refresher
}

func New() (*App, error) {
	cfg := config.Load()
	src := cfg.Sources

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)
	m := metrics.New()

	coords := catalog.Coordinates{
		Loader:       maven.Coordinate(src.Loader),
		Installer:    maven.Coordinate(src.Installer),
		Mappings:     maven.Coordinate(src.Mappings),
		Intermediary: maven.Coordinate(src.Intermediary),
	}

	// Degraded maven listings are counted per source
	onMavenFailure := maven.WithFailureHook(func(c maven.Coordinate, _ error) {
		if source := coords.Source(c); source != "" {
			m.SourceFailed(source)
		}
	})

	httpClient := httpclient.NewDefaultClient(cfg.FetchTimeout, cfg.FetchRetries)
	primary := maven.NewRepository(src.PrimaryRepository, httpClient, loggerClient, onMavenFailure)
	mirror := maven.NewRepository(src.MirrorRepository, httpClient, loggerClient, onMavenFailure)
	vendor := launchermeta.NewClient(src.VendorManifest, httpClient)

	memIndex := index.NewMemoryIndex()
	catalogOpts := []catalog.Option{catalog.WithMetrics(m)}

	// Redis is optional: it only mirrors published snapshots
	var (
		redisClient *goredis.Client
		store       *redisstore.Store
	)
	if cfg.MirrorEnabled() {
		loggerClient.Infof("Connecting to Redis at %s", cfg.RedisAddr)
		client, err := redis.New(context.Background(), redis.ConnectOptions{
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
		}, loggerClient)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		loggerClient.Info("Redis initialized successfully, snapshot mirror enabled")

		redisClient = client
		store = redisstore.NewStore(client, cfg.RedisSnapshotTTL)
		catalogOpts = append(catalogOpts, catalog.WithMirror(store))
	} else {
		loggerClient.Info("META_REDIS_ADDR not set, snapshot mirror disabled")
	}

	cat := catalog.New(primary, mirror, vendor, coords, memIndex, loggerClient, catalogOpts...)

	profiles := profile.NewBuilder(httpClient, primary, mirror, profile.Options{
		Name:         src.ProfileName,
		EmulationArg: src.EmulationArg(),
	}, loggerClient, m)

	// Create manual reload trigger channel
	reloadTrigger := make(chan struct{}, 1)
	refresher := scheduler.NewRefresher(cat, loggerClient, m, cfg.RefreshInterval, reloadTrigger)

	// Dependencies passed to routes (extend as needed).
	d := deps.Deps{
		Logger:        loggerClient,
		StartTime:     time.Now(),
		Version:       version.Version,
		Commit:        version.Commit,
		BuildDate:     version.BuildDate,
		GoVersion:     version.GoVersion,
		TimeNow:       time.Now,
		AdminCIDRS:    cfg.AdminCIDRS,
		TrustProxy:    cfg.TrustProxy,
		CacheMaxAge:   cfg.CacheMaxAge,
		Catalog:       cat,
		Profiles:      profiles,
		MemoryIndex:   memIndex,
		Metrics:       m,
		Refresher:     refresher,
		Store:         store,
		ReloadTrigger: reloadTrigger,
	}

	server := httpserver.New(cfg, loggerClient, d)

	return &App{
		cfg:         cfg,
		logger:      loggerClient,
		server:      server,
		redisClient: redisClient,
		memIndex:    memIndex,
		refresher:   refresher,
	}, nil
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting flintmeta v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("flintmeta %s (commit=%s, built=%s, go=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion)
	defer func() {
		_ = a.logger.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// First rebuild is synchronous: without the vendor manifest there is nothing to serve
	if err := a.refresher.Start(ctx); err != nil {
		a.closeRedis()
		return fmt.Errorf("failed to start catalog refresher: %w", err)
	}
	a.logger.Info("catalog refresher started",
		logger.Duration("interval", a.cfg.RefreshInterval),
		logger.Int64("generation", int64(a.memIndex.Generation())))

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
		a.refresher.Stop()
		a.closeRedis()
		return err
	}

	a.refresher.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	a.closeRedis()
	a.logger.Info("✅ flintmeta stopped cleanly")
	return nil
}

func (a *App) closeRedis() {
	if a.redisClient == nil {
		return
	}
	if err := a.redisClient.Close(); err != nil {
		a.logger.Warnf("failed to close redis: %v", err)
	} else {
		a.logger.Info("✅ Redis closed cleanly")
	}
}
