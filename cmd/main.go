package main

import (
	"context"
	"crypto/tls"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"

	"github.com/KasumiMercury/primind-deadline-monitor/internal/config"
	"github.com/KasumiMercury/primind-deadline-monitor/internal/domain"
	"github.com/KasumiMercury/primind-deadline-monitor/internal/handler"
	"github.com/KasumiMercury/primind-deadline-monitor/internal/health"
	"github.com/KasumiMercury/primind-deadline-monitor/internal/infra/repository"
	"github.com/KasumiMercury/primind-deadline-monitor/internal/infra/runrecorder"
	"github.com/KasumiMercury/primind-deadline-monitor/internal/observability/logging"
	"github.com/KasumiMercury/primind-deadline-monitor/internal/observability/metrics"
	"github.com/KasumiMercury/primind-deadline-monitor/internal/observability/middleware"
	"github.com/KasumiMercury/primind-deadline-monitor/internal/service/deadline"
	"github.com/KasumiMercury/primind-deadline-monitor/internal/service/dispatch"
	"github.com/KasumiMercury/primind-deadline-monitor/internal/service/monitor"
	"github.com/KasumiMercury/primind-deadline-monitor/internal/service/urgency"
)

// Version is set via ldflags at build time
var Version = "dev"

const moduleName = logging.Module("deadline-monitor")

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		return 1
	}

	obs, err := initObservability(ctx, cfg.LogLevel)
	if err != nil {
		slog.Error("failed to initialize observability", slog.String("error", err.Error()))
		return 1
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := obs.Shutdown(shutdownCtx); err != nil {
			slog.Warn("observability shutdown error", slog.String("error", err.Error()))
		}
	}()

	slog.SetDefault(obs.Logger())

	if err := config.ValidateForRun(cfg); err != nil {
		slog.Error("configuration validation error", slog.String("error", err.Error()))
		return 1
	}

	monitorMetrics, err := metrics.NewMonitorMetrics()
	if err != nil {
		slog.Error("failed to initialize monitor metrics", slog.String("error", err.Error()))
		return 1
	}

	// InfluxDB for local, BigQuery for gcloud
	resultRecorder, err := runrecorder.NewRecorder(ctx, runrecorder.LoadConfig())
	if err != nil {
		slog.Error("failed to initialize run result recorder", slog.String("error", err.Error()))
		return 1
	}
	defer func() {
		if err := resultRecorder.Close(); err != nil {
			slog.Warn("failed to close run result recorder", slog.String("error", err.Error()))
		}
	}()

	db, err := repository.OpenDatabase(ctx, cfg.Database.URL, repository.DatabaseOptions{
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		slog.Error("failed to connect database",
			slog.String("event", "database.connect.fail"),
			slog.String("error", err.Error()),
		)
		return 1
	}
	defer func() {
		if err := repository.CloseDatabase(db); err != nil {
			slog.Warn("failed to close database", slog.String("error", err.Error()))
		}
	}()

	if cfg.Database.AutoMigrate {
		if err := repository.MigrateNotifications(ctx, db); err != nil {
			slog.Error("failed to migrate notification schema",
				slog.String("event", "database.migrate.fail"),
				slog.String("error", err.Error()),
			)
			return 1
		}
	}

	redisClient, err := connectRedis(ctx, cfg.Redis)
	if err != nil {
		return 1
	}
	if redisClient != nil {
		defer func() {
			if err := redisClient.Close(); err != nil {
				slog.Warn("failed to close redis client", slog.String("error", err.Error()))
			}
		}()
	}

	rules, err := deadline.LoadRuleTable(cfg.Monitor.RulesPath, cfg.Monitor.DefaultBusinessDays)
	if err != nil {
		slog.Error("failed to load jurisdiction rules",
			slog.String("path", cfg.Monitor.RulesPath),
			slog.String("error", err.Error()),
		)
		return 1
	}

	requestRepo := repository.NewRequestRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	claimStore := newClaimStore(redisClient)

	calculator := deadline.NewCalculator(rules, cfg.Monitor.Location)
	dispatcher := dispatch.NewService(
		calculator,
		urgency.NewClassifier(),
		notificationRepo,
		claimStore,
		cfg.Monitor.DedupWindow,
		monitorMetrics,
	)
	monitorService := monitor.NewService(
		requestRepo,
		dispatcher,
		resultRecorder,
		monitorMetrics,
		cfg.Monitor.Workers,
	)

	slog.Info("deadline monitor initialized",
		slog.String("mode", string(cfg.Mode)),
		slog.Int("workers", cfg.Monitor.Workers),
		slog.Int("jurisdiction_rules", rules.Len()),
		slog.Int("default_business_days", rules.DefaultDays()),
		slog.Duration("dedup_window", cfg.Monitor.DedupWindow),
		slog.String("timezone", cfg.Monitor.Location.String()),
	)

	if cfg.Mode == config.ModeOneshot {
		return runOnce(ctx, monitorService, cfg.Monitor.RunTimeout)
	}

	return serve(ctx, cancel, cfg, monitorService, health.NewChecker(redisClient, db, Version))
}

// connectRedis returns a nil client when Redis cannot be reached; the dedup
// window is then enforced by the notifications table alone.
func connectRedis(ctx context.Context, cfg *config.RedisConfig) (*redis.Client, error) {
	opts := &redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
	if cfg.TLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	redisClient := redis.NewClient(opts)

	if err := redisotel.InstrumentTracing(redisClient); err != nil {
		slog.Error("failed to instrument redis tracing",
			slog.String("event", "redis.otel.tracing.fail"),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	if err := redisotel.InstrumentMetrics(redisClient); err != nil {
		slog.Error("failed to instrument redis metrics",
			slog.String("event", "redis.otel.metrics.fail"),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	if err := redisClient.Ping(ctx).Err(); err != nil {
		slog.Warn("redis unavailable, running without dedup claims",
			slog.String("event", "redis.connect.fail"),
			slog.String("addr", cfg.Addr),
			slog.String("error", err.Error()),
		)
		_ = redisClient.Close()
		return nil, nil
	}

	slog.Info("redis connected",
		slog.String("addr", cfg.Addr),
	)

	return redisClient, nil
}

func newClaimStore(redisClient *redis.Client) domain.DedupClaimStore {
	if redisClient == nil {
		return nil
	}
	return repository.NewDedupClaimRepository(redisClient)
}

func runOnce(ctx context.Context, monitorService *monitor.Service, timeout time.Duration) int {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	summary, err := monitorService.Run(ctx, time.Now(), "")
	if err != nil {
		attrs := []any{
			slog.String("event", "monitor.run.fail"),
			slog.String("error", err.Error()),
		}
		if summary != nil {
			attrs = append(attrs, slog.String("run_id", summary.RunID))
		}
		slog.ErrorContext(ctx, "monitor run failed", attrs...)
		return 1
	}

	for _, runErr := range summary.Errors {
		slog.WarnContext(ctx, "request evaluation failed",
			slog.String("run_id", summary.RunID),
			slog.String("request_id", runErr.RequestID),
			slog.String("reason", runErr.Reason),
		)
	}

	return 0
}

func serve(
	ctx context.Context,
	cancel context.CancelFunc,
	cfg *config.Config,
	monitorService *monitor.Service,
	healthChecker *health.Checker,
) int {
	httpMetrics, err := metrics.NewHTTPMetrics()
	if err != nil {
		slog.Error("failed to initialize HTTP metrics", slog.String("error", err.Error()))
		return 1
	}

	monitorHandler := handler.NewMonitorHandler(monitorService, cfg.Monitor.RunTimeout)

	r := gin.New()
	r.Use(middleware.Gin(middleware.GinConfig{
		SkipPaths:   []string{"/health", "/health/live", "/health/ready"},
		Module:      moduleName,
		TracerName:  "github.com/KasumiMercury/primind-deadline-monitor/internal/observability/middleware",
		HTTPMetrics: httpMetrics,
	}))
	r.Use(middleware.PanicRecoveryGin())

	r.GET("/health/live", healthChecker.LiveHandler())
	r.GET("/health/ready", healthChecker.ReadyHandler())
	r.GET("/health", healthChecker.ReadyHandler())

	v1 := r.Group("/api/v1")
	{
		v1.POST("/deadlines/run", monitorHandler.HandleRun)
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("starting server",
			slog.String("port", cfg.Port),
		)
		serverErr <- srv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		slog.Info("shutdown signal received", slog.String("signal", sig.String()))
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("failed to shutdown server", slog.String("error", err.Error()))
			return 1
		}

		slog.Info("server exited properly")
		return 0

	case err := <-serverErr:
		if errors.Is(err, http.ErrServerClosed) {
			return 0
		}
		slog.Error("server exited with error", slog.String("error", err.Error()))
		return 1
	}
}
