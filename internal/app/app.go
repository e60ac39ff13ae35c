package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	openai "github.com/sashabaranov/go-openai"

	"github.com/shelfmark/shelfmark/internal/catalog"
	"github.com/shelfmark/shelfmark/internal/config"
	"github.com/shelfmark/shelfmark/internal/httpserver"
	"github.com/shelfmark/shelfmark/internal/httpserver/deps"
	"github.com/shelfmark/shelfmark/internal/identity"
	"github.com/shelfmark/shelfmark/internal/index"
	"github.com/shelfmark/shelfmark/internal/logger"
	"github.com/shelfmark/shelfmark/internal/redis"
	"github.com/shelfmark/shelfmark/internal/scheduler"
	"github.com/shelfmark/shelfmark/internal/service"
	redisstore "github.com/shelfmark/shelfmark/internal/store/redis"
	"github.com/shelfmark/shelfmark/internal/version"
)

type App struct {
	cfg              *config.Config
	logger           logger.Logger
	server           *httpserver.Server
	redisClient      *goredis.Client
	featuredReloader *scheduler.FeaturedReloader
	repairer         *scheduler.IndexRepairer
}

func New() *App {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	// Initialize Redis early - fail fast if unavailable
	loggerClient.Infof("Connecting to Redis at %s", cfg.RedisAddr)
	redisClient, err := redis.New(redis.ConnectOptions{
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

	store := redisstore.NewStore(redisClient)
	bookmarks := service.NewBookmarks(store, loggerClient)
	catalogClient := catalog.New(cfg.CatalogBaseURL, cfg.CatalogAPIKey, cfg.CatalogTimeout)
	resolver := identity.NewRedisResolver(redisClient)

	// Recommendations are optional; without an API key the endpoint reports
	// itself disabled.
	var recommender *service.Recommender
	if cfg.OpenAIAPIKey != "" {
		recommender = service.NewRecommender(
			openai.NewClient(cfg.OpenAIAPIKey),
			catalogClient,
			cfg.OpenAIModel,
			loggerClient,
		)
		loggerClient.Info("recommendation service enabled",
			logger.String("model", cfg.OpenAIModel))
	} else {
		loggerClient.Info("no model API key configured, recommendations disabled")
	}

	// Featured shelves are optional as well.
	var featuredIdx *index.FeaturedIndex
	var featuredReloader *scheduler.FeaturedReloader
	var featuredTrigger chan struct{}
	if cfg.FeaturedFile != "" {
		loggerClient.Info("featured file configured, initializing reloader",
			logger.String("file", cfg.FeaturedFile))
		featuredIdx = index.NewFeaturedIndex()
		featuredTrigger = make(chan struct{}, 1)
		featuredReloader = scheduler.NewFeaturedReloader(
			cfg.FeaturedFile,
			featuredIdx,
			loggerClient,
			cfg.ReloadInterval,
			featuredTrigger,
		)
	} else {
		loggerClient.Info("featured file not configured, featured shelves disabled")
	}

	repairer := scheduler.NewIndexRepairer(store, loggerClient, cfg.RepairInterval)

	d := deps.Deps{
		Logger:                loggerClient,
		StartTime:             time.Now(),
		Version:               version.Version,
		Commit:                version.Commit,
		BuildDate:             version.BuildDate,
		GoVersion:             version.GoVersion,
		TimeNow:               time.Now,
		AllowedHosts:          cfg.AllowedHosts,
		AllowedCIDRS:          cfg.AllowedCIDRS,
		AllowedOrigins:        cfg.AllowedOrigins,
		TrustProxy:            cfg.TrustProxy,
		RedisClient:           redisClient,
		Store:                 store,
		Bookmarks:             bookmarks,
		Recommender:           recommender,
		Catalog:               catalogClient,
		Identity:              resolver,
		Featured:              featuredIdx,
		FeaturedReloadTrigger: featuredTrigger,
		SearchCacheTTL:        cfg.SearchCacheTTL,
		SearchMaxResult:       cfg.SearchMaxResult,
		RecommendBurst:        cfg.RecommendBurst,
		RecommendPerMin:       cfg.RecommendPerMin,
	}

	server := httpserver.New(cfg, loggerClient, d)

	return &App{
		cfg:              cfg,
		logger:           loggerClient,
		server:           server,
		redisClient:      redisClient,
		featuredReloader: featuredReloader,
		repairer:         repairer,
	}
}

func (a *App) Run() error {
	a.logger.Infof("Starting Shelfmark %s on %s (commit=%s, built=%s, go=%s)",
		version.Version, a.cfg.ListenPort, version.Commit, version.BuildDate, version.GoVersion)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if a.featuredReloader != nil {
		if err := a.featuredReloader.Start(ctx); err != nil {
			return fmt.Errorf("failed to start featured reloader: %w", err)
		}
		a.logger.Info("featured reloader started",
			logger.Duration("interval", a.cfg.ReloadInterval))
	}

	if err := a.repairer.Start(ctx); err != nil {
		return fmt.Errorf("failed to start index repairer: %w", err)
	}
	a.logger.Info("index repairer started",
		logger.Duration("interval", a.cfg.RepairInterval))

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("Shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	if a.featuredReloader != nil {
		a.featuredReloader.Stop()
	}
	a.repairer.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warnf("failed to close redis: %v", err)
		} else {
			a.logger.Info("Redis closed cleanly")
		}
	}

	a.logger.Info("Shelfmark stopped cleanly")
	return nil
}
