package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"spendtrack/internal/amqp"
	"spendtrack/internal/config"
	"spendtrack/internal/core"
	apphttp "spendtrack/internal/http"
	"spendtrack/internal/services"
	"spendtrack/internal/storage"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	// Setup structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	// Choose data backend (default: sqlite)
	var store services.Ledger
	switch cfg.DataBackend {
	case "memory":
		mem := storage.NewMemoryRepository()
		seedMemoryBackend(mem)
		store = mem
		logger.Info("Initialized memory backend", "backend", cfg.DataBackend)
	default:
		sqliteRepo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
		if err != nil {
			logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
			os.Exit(1)
		}
		defer sqliteRepo.Close()
		store = sqliteRepo
		logger.Info("Initialized SQLite backend", "backend", cfg.DataBackend, "path", cfg.SQLiteDBPath)
	}

	// AMQP is optional; reviews still complete when the broker is down.
	var publisher services.ReviewPublisher
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("AMQP unavailable, review events disabled", "error", err)
		} else {
			defer amqpClient.Close()
			publisher = amqpClient
			logger.Info("AMQP client initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	lifecycle := services.NewLifecycleManager(store, publisher)
	analytics := services.NewAnalyticsService(store)

	srv := apphttp.NewServer(":"+cfg.Port, lifecycle, analytics, apphttp.Options{
		RequestTimeout: cfg.RequestTimeout,
		RateLimitPerIP: cfg.RateLimitPerIP,
	})
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting spendtrack server", "port", cfg.Port, "backend", cfg.DataBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}

// seedMemoryBackend gives the in-memory backend the same reference data
// the SQLite migrations seed, so both backends start in a usable state.
func seedMemoryBackend(mem *storage.MemoryRepository) {
	now := time.Now().UTC()
	mem.SeedUsers(
		core.User{ID: 1, Username: "ada", Name: "Ada Admin", Role: core.RoleAdmin},
		core.User{ID: 2, Username: "mia", Name: "Mia Manager", Role: core.RoleManager},
		core.User{ID: 3, Username: "sam", Name: "Sam Sales", Role: core.RoleSalesperson},
		core.User{ID: 4, Username: "eve", Name: "Eve Engineer", Role: core.RoleEmployee},
		core.User{ID: 5, Username: "finn", Name: "Finn Fielder", Role: core.RoleEmployee},
	)
	mem.SeedProjects(
		core.Project{ID: 1, Name: "Harbor Bridge Retrofit", ClientID: 1, Status: core.ProjectInProgress, StartDate: now.AddDate(0, -3, 0), Budget: core.Money{Cents: 1000000}, CreatedByID: 3},
		core.Project{ID: 2, Name: "Depot Expansion", ClientID: 2, Status: core.ProjectInProgress, StartDate: now.AddDate(0, -1, 0), Budget: core.Money{Cents: 2500000}, CreatedByID: 3},
		core.Project{ID: 3, Name: "Site Survey Pilot", ClientID: 1, Status: core.ProjectOnHold, StartDate: now, Budget: core.Money{Cents: 0}, CreatedByID: 3},
	)
}
