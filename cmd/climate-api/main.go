package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"

	httpapi "github.com/i474232898/surfsup-climate-api/internal/api/http"
	"github.com/i474232898/surfsup-climate-api/internal/climate"
	"github.com/i474232898/surfsup-climate-api/internal/config"
	"github.com/i474232898/surfsup-climate-api/internal/logger"
	"github.com/i474232898/surfsup-climate-api/internal/scheduler"
	"github.com/i474232898/surfsup-climate-api/internal/store"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logg, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logg.Sync()

	// Record Store, constructed once and shared by every request.
	recordStore, closeStore, err := openStore(cfg.Store)
	if err != nil {
		logg.Fatal("failed to open record store", "driver", cfg.Store.Driver, "error", err)
	}
	defer closeStore()
	logg.Info("record store ready", "driver", cfg.Store.Driver)

	guarded := store.NewBreakerStore(recordStore, store.BreakerConfig{
		MaxRequests:      cfg.Breaker.MaxRequests,
		Interval:         cfg.Breaker.Interval,
		Timeout:          cfg.Breaker.Timeout,
		FailureThreshold: cfg.Breaker.FailureThreshold,
	}, logg)

	service := climate.NewService(guarded, logg)

	// Periodic dataset probe feeding /health.
	prober := scheduler.New(service, cfg.Probe.Interval, logg)
	if err := prober.Start(); err != nil {
		logg.Fatal("failed to start probe scheduler", "error", err)
	}
	defer prober.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "surfsup-climate-api",
		DisableStartupMessage: true,
		ReadTimeout:           cfg.Server.ReadTimeout,
		WriteTimeout:          cfg.Server.WriteTimeout,
		ErrorHandler:          httpapi.ErrorHandler,
	})

	// Global middleware
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(recover.New())

	httpapi.RegisterRoutes(app, service, prober, logg)

	go func() {
		logg.Info("listening", "port", cfg.Server.Port)
		if err := app.Listen(":" + cfg.Server.Port); err != nil {
			logg.Error("fiber server stopped", "error", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logg.Error("error during shutdown", "error", err)
	}
}

// openStore builds the configured Record Store and returns its release func.
func openStore(cfg config.StoreConfig) (climate.RecordStore, func(), error) {
	switch cfg.Driver {
	case "memory":
		s, err := store.LoadCSV(cfg.MeasurementsCSV, cfg.StationsCSV)
		if err != nil {
			return nil, nil, err
		}
		return s, func() {}, nil

	case store.DriverSQLite, store.DriverPostgres:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		s, err := store.OpenSQL(ctx, cfg.Driver, cfg.DSN, store.SQLOptions{
			MaxOpenConns: cfg.MaxOpenConns,
			QueryTimeout: cfg.QueryTimeout,
		})
		if err != nil {
			return nil, nil, err
		}
		if err := s.ValidateSchema(); err != nil {
			_ = s.Close()
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unsupported store driver %q", cfg.Driver)
	}
}
