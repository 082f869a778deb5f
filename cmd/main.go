// cmd/main.go is the application entry point.
// It wires together all layers and starts the HTTP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/Shivanand-hulikatti/event-booking/internal/config"
	"github.com/Shivanand-hulikatti/event-booking/internal/database"
	"github.com/Shivanand-hulikatti/event-booking/internal/handler"
	"github.com/Shivanand-hulikatti/event-booking/internal/logger"
	"github.com/Shivanand-hulikatti/event-booking/internal/publisher"
	"github.com/Shivanand-hulikatti/event-booking/internal/repository"
	"github.com/Shivanand-hulikatti/event-booking/internal/service"
	"github.com/Shivanand-hulikatti/event-booking/internal/telemetry"
)

// bookingPublisher is what the booking service publishes through and main
// closes on shutdown.
type bookingPublisher interface {
	service.EventPublisher
	Close() error
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "event-booking: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── 1. Configuration and logging ─────────────────────────────────────
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.LogLevel, !cfg.App.IsProduction())
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	tp, err := telemetryProvider(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := tp.Shutdown(context.WithoutCancel(ctx)); err != nil {
			log.Warn("telemetry shutdown failed", zap.Error(err))
		}
	}()

	// ── 2. Connect to PostgreSQL ──────────────────────────────────────────
	pool, err := database.NewPool(ctx, cfg.Database, log)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer pool.Close()
	log.Info("connected to PostgreSQL", zap.String("host", cfg.Database.Host), zap.String("db", cfg.Database.DBName))

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, pool); err != nil {
			return err
		}
		log.Info("database schema applied")
	}

	// ── 3. Optional infrastructure ────────────────────────────────────────
	var idempotency handler.IdempotencyStore
	if rdb := database.NewRedis(ctx, cfg.Redis, log); rdb != nil {
		defer func() { _ = rdb.Close() }()
		idempotency = rdb
		log.Info("idempotency store enabled", zap.String("addr", cfg.Redis.Addr()))
	}

	pub, err := newPublisher(cfg.Kafka, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := pub.Close(); err != nil {
			log.Warn("publisher close failed", zap.Error(err))
		}
	}()

	// ── 4. Wire up layers ────────────────────────────────────────────────
	tx := database.NewTransactor(pool)
	eventRepo := repository.NewEventRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)

	bookingSvc := service.NewBookingService(tx, eventRepo, bookingRepo, pub, log)
	eventSvc := service.NewEventService(tx, eventRepo, bookingRepo, log)
	querySvc := service.NewQueryService(eventRepo, bookingRepo)

	router := handler.NewRouter(handler.RouterConfig{
		Handler:        handler.New(bookingSvc, eventSvc, querySvc, log),
		DB:             pool,
		JWTSecret:      cfg.JWT.Secret,
		AllowedOrigin:  cfg.CORS.AllowedOrigin,
		Idempotency:    idempotency,
		IdempotencyTTL: cfg.Redis.IdempotencyTTL,
		Log:            log,
	})

	// ── 5. Start server with graceful shutdown ────────────────────────────
	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr), zap.String("env", cfg.App.Environment))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	log.Info("server stopped")
	return nil
}

// loadConfig reads CONFIG_FILE when it is set, else the optional .env in the
// working directory.
func loadConfig() (*config.Config, error) {
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		return config.LoadWithPath(path)
	}
	return config.Load()
}

func telemetryProvider(ctx context.Context, cfg *config.Config) (*telemetry.Provider, error) {
	return telemetry.Init(ctx, telemetry.Config{
		Enabled:       cfg.OTel.Enabled,
		ServiceName:   cfg.OTel.ServiceName,
		Environment:   cfg.App.Environment,
		CollectorAddr: cfg.OTel.CollectorAddr,
		SampleRatio:   cfg.OTel.SampleRatio,
	})
}

// newPublisher returns the Kafka producer, or a no-op publisher when Kafka
// is disabled.
func newPublisher(cfg config.KafkaConfig, log *zap.Logger) (bookingPublisher, error) {
	if !cfg.Enabled {
		log.Info("kafka disabled, booking events are not published")
		return publisher.NoOp{}, nil
	}
	k, err := publisher.NewKafka(publisher.Config{
		Brokers:  cfg.Brokers,
		Topic:    cfg.Topic,
		ClientID: cfg.ClientID,
	}, log)
	if err != nil {
		return nil, err
	}
	log.Info("kafka publisher enabled", zap.Strings("brokers", cfg.Brokers), zap.String("topic", cfg.Topic))
	return k, nil
}
