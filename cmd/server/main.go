package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	"github.com/nathanyu/account-ledger/internal/config"
	"github.com/nathanyu/account-ledger/internal/eventstore"
	"github.com/nathanyu/account-ledger/internal/handler"
	"github.com/nathanyu/account-ledger/internal/middleware"
	"github.com/nathanyu/account-ledger/internal/notification"
	"github.com/nathanyu/account-ledger/internal/queue"
	"github.com/nathanyu/account-ledger/internal/repository"
	"github.com/nathanyu/account-ledger/internal/service"
	"github.com/nathanyu/account-ledger/internal/telemetry"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

const serviceName = "account-ledger"

// serviceVersion is overridden at build time with -ldflags "-X main.serviceVersion=...".
var serviceVersion = "dev"

func main() {
	if err := run(); err != nil {
		slog.Error("service failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		return err
	}

	telemetry.InitLogger(serviceName, cfg.Environment, cfg.LogLevel)

	cleanup, err := telemetry.InitTracer(telemetry.TracerConfig{
		ServiceName:    serviceName,
		ServiceVersion: serviceVersion,
		Environment:    cfg.Environment,
		Endpoint:       cfg.OTLPEndpoint,
	})
	if err != nil {
		slog.Warn("failed to initialize tracer", "error", err)
	} else {
		defer cleanup()
	}

	gin.SetMode(cfg.GinMode)
	slog.Info("starting account ledger", "storage", cfg.Backend)

	ctx := context.Background()

	accounts, closeRepo, err := openRepository(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeRepo()

	inbox := notification.NewInbox(cfg.InboxSize)
	notifiers := notification.Multi{notification.NewLogNotifier(nil)}

	if cfg.NATSUrl != "" {
		slog.Info("connecting to NATS", "url", cfg.NATSUrl)
		natsClient, err := queue.NewNATSClient(cfg.NATSUrl, serviceName)
		if err != nil {
			return err
		}
		defer natsClient.Close()

		notifiers = append(notifiers, notification.NewNATSNotifier(natsClient, cfg.NotificationSubject))
		if err := inbox.Start(natsClient.GetConn(), cfg.NotificationSubject); err != nil {
			return fmt.Errorf("failed to subscribe notification inbox: %w", err)
		}
		defer inbox.Stop()
	} else {
		notifiers = append(notifiers, inbox)
	}

	transfers := service.NewTransferService(accounts, notifiers, nil)
	accountService := service.NewAccountService(accounts, transfers)
	h := handler.NewHandler(accountService, transfers, inbox)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Tracing())
	router.Use(middleware.Metrics())
	handler.SetupRoutes(router, h)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	// Separate port for Prometheus scraping
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.MetricsPort),
		Handler: metricsMux,
	}

	serveErr := make(chan error, 2)
	go func() {
		slog.Info("HTTP server listening", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()
	go func() {
		slog.Info("metrics server listening", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- fmt.Errorf("metrics server error: %w", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		slog.Info("shutting down", "signal", sig.String())
	case err := <-serveErr:
		slog.Error("server stopped unexpectedly", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("HTTP server forced to shutdown", "error", err)
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("metrics server forced to shutdown", "error", err)
	}

	slog.Info("service stopped")
	return nil
}

// openRepository builds the configured storage backend and a function releasing it.
func openRepository(ctx context.Context, cfg *config.Config) (service.AccountRepository, func(), error) {
	switch cfg.Backend {
	case config.BackendJournal:
		slog.Info("opening account journal", "path", cfg.Journal.Path)
		store, err := eventstore.NewEventStore(cfg.Journal.Path)
		if err != nil {
			return nil, nil, err
		}
		repo, err := repository.NewJournalRepository(store)
		if err != nil {
			store.Close()
			return nil, nil, err
		}
		return repo, func() { store.Close() }, nil

	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		slog.Info("connected to redis", "addr", cfg.Redis.Addr)
		return repository.NewRedisRepository(client), func() { client.Close() }, nil

	case config.BackendPostgres:
		db, err := sql.Open("postgres", cfg.DB.DSN)
		if err != nil {
			return nil, nil, err
		}
		if err := pingWithRetry(ctx, db, 10); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		repo := repository.NewPostgresRepository(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		slog.Info("connected to postgres")
		return repo, func() { db.Close() }, nil

	default:
		return repository.NewMemoryRepository(), func() {}, nil
	}
}

func pingWithRetry(ctx context.Context, db *sql.DB, attempts int) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = db.PingContext(ctx); err == nil {
			return nil
		}
		slog.Info("waiting for postgres", "attempt", i+1, "error", err)
		time.Sleep(time.Second)
	}
	return err
}
