package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"SignalDesk/internal/api"
	"SignalDesk/internal/collector"
	"SignalDesk/internal/config"
	"SignalDesk/internal/dashboard"
	"SignalDesk/internal/logger"
	"SignalDesk/internal/notifier"
	"SignalDesk/internal/prefs"
	"SignalDesk/internal/recorder"
	"SignalDesk/internal/scheduler"
	"SignalDesk/internal/strategy"
)

var version = "dev"

func main() {
	logCfg := logger.LoadConfigFromEnv()
	if err := logger.Init(logCfg); err != nil {
		panic(err)
	}
	defer logger.Sync()
	if logCfg.Tracing {
		if err := logger.InitTracing(version); err != nil {
			logger.Fatal("init tracing", "error", err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	logger.Info(ctx, "SignalDesk starting", "version", version)

	// Load config
	cfgPath := config.DefaultPath
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		logger.Fatal("load config", "error", err)
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal("config validation", "error", err)
	}

	// Init fetchers
	var (
		fetcher collector.Fetcher
		news    collector.NewsSource
	)
	if cfg.DataSource.Mock {
		mock := &collector.MockFetcher{}
		fetcher, news = mock, mock
	} else {
		fetcher = collector.NewCoinGeckoFetcher(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy)
		news = collector.NewNewsFetcher(cfg.DataSource.NewsURL, cfg.DataSource.NewsAPIKey, cfg.Proxy)
	}

	// Market-data cache
	ttl := time.Duration(cfg.Cache.TTLSeconds) * time.Second
	if ttl > 0 {
		cache, closeCache := newCache(ctx, cfg)
		defer closeCache()
		fetcher = collector.NewCachedFetcher(fetcher, cache, ttl)
	}
	logger.Info(ctx, "data source ready", "source", fetcher.Name())

	col := collector.NewCollector(fetcher, news)
	col.TopLimit = cfg.DataSource.TopLimit

	// Init prefs
	pm, err := prefs.NewManager(cfg.Prefs.StateFile, cfg.Tier(), cfg.Prefs.Watchlist)
	if err != nil {
		logger.Fatal("init prefs manager", "error", err)
	}

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			logger.Warn(ctx, "init sqlite recorder failed, using noop", "error", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}
	defer rec.Close()

	engine := strategy.NewEngine(cfg.Strategy, nil)
	svc := dashboard.NewService(col, engine, pm, rec)

	// Init Telegram notifier
	var (
		tn   *notifier.TelegramNotifier
		push notifier.Notifier
	)
	if cfg.Telegram.Enabled {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		push = tn
	}

	// Init scheduler
	sched := scheduler.NewScheduler(ctx, svc, push)
	sched.MarketsLimit = 10
	if err := sched.RegisterAll(cfg.Schedule.RefreshCron, cfg.Schedule.NewsCron); err != nil {
		logger.Fatal("register cron tasks", "error", err)
	}
	sched.Start()
	defer sched.Stop()

	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		logger.Info(ctx, "telegram polling started")
	}

	// HTTP API
	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           api.NewRouter(svc),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info(ctx, "http server listening", "addr", cfg.HTTP.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(ctx, "http server failed", "error", err)
			cancel()
		}
	}()

	// Optional: run immediately on start
	if os.Getenv("RUN_ON_START") == "true" {
		logger.Info(ctx, "RUN_ON_START enabled, refreshing watchlist now")
		go sched.RunRefreshNow()
	}

	logger.Info(ctx, "SignalDesk is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
		logger.Info(ctx, "shutdown signal received, stopping...")
	case <-ctx.Done():
	}
	cancel()

	shutdownCtx, done := context.WithTimeout(context.Background(), 10*time.Second)
	defer done()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error(shutdownCtx, "http shutdown", "error", err)
	}
	if err := logger.Shutdown(shutdownCtx); err != nil {
		logger.Error(shutdownCtx, "tracing shutdown", "error", err)
	}
	logger.Info(shutdownCtx, "SignalDesk stopped")
}

// newCache returns Redis when configured and reachable, else an in-memory cache.
func newCache(ctx context.Context, cfg *config.Config) (collector.Cache, func()) {
	if cfg.Cache.RedisAddr != "" {
		client := redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs:    []string{cfg.Cache.RedisAddr},
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		err := client.Ping(pingCtx).Err()
		if err == nil {
			logger.Info(ctx, "using redis cache", "addr", cfg.Cache.RedisAddr)
			return collector.NewRedisCache(client), func() { _ = client.Close() }
		}
		logger.Warn(ctx, "redis unreachable, using memory cache", "addr", cfg.Cache.RedisAddr, "error", err)
		_ = client.Close()
	}
	mc := collector.NewMemoryCache(time.Minute)
	return mc, mc.Close
}
