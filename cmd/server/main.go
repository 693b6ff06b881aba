package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/garnizeh/campus/api"
	dbfs "github.com/garnizeh/campus/db"
	"github.com/garnizeh/campus/internal/ai"
	"github.com/garnizeh/campus/internal/config"
	"github.com/garnizeh/campus/internal/db"
	"github.com/garnizeh/campus/internal/jobs"
	"github.com/garnizeh/campus/internal/repository/memory"
	"github.com/garnizeh/campus/internal/repository/sqlite"
	"github.com/garnizeh/campus/internal/seed"
	"github.com/garnizeh/campus/pkg/repository"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	var configPath = flag.String("config", "", "Path to config YAML file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("server failed", slog.Any("err", err))
		os.Exit(1)
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}

func run(configPath string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)
	api.SetLogger(logger)
	logger.Info("starting campus server", slog.String("version", version), slog.String("build_time", buildTime), slog.String("store", cfg.Store))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		store    repository.Store
		notifier jobs.Notifier
		pool     *jobs.WorkerPool
	)
	deliverer := jobs.LogDeliverer{Logger: logger.With(slog.String("component", "notify"))}

	switch cfg.Store {
	case config.StoreMemory:
		store = memory.New()
		notifier = jobs.DirectNotifier{Deliverer: deliverer}
	default:
		conn, err := db.New(ctx, cfg.DatabasePath, logger)
		if err != nil {
			return err
		}
		defer func() {
			if err := conn.Close(); err != nil {
				logger.Error("close db", slog.Any("err", err))
			}
		}()
		if err := db.Migrate(ctx, conn, dbfs.Migrations); err != nil {
			return err
		}

		store = sqlite.New(conn, logger)
		jobRepo := jobs.NewRepository(conn)
		notifier = jobs.NewQueueNotifier(jobRepo)
		pool = jobs.NewWorkerPool(jobRepo, map[string]jobs.Handler{
			jobs.TypeNotifyUser: jobs.NotifyHandler(deliverer),
		}, logger, cfg.Workers)
		pool.Start(ctx)
		defer pool.Stop()
	}

	if cfg.Seed {
		res, err := seed.Sample(ctx, store)
		if err != nil {
			return err
		}
		logger.Info("sample data loaded", slog.Int("users", res.Users), slog.Int("projects", res.Projects))
	}

	advisor, closeAI, err := ai.NewAdvisorFromConfig(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeAI()

	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      api.SetupRoutes(cfg, version, buildTime, store, advisor, notifier),
		ReadTimeout:  cfg.APITimeout,
		WriteTimeout: cfg.APITimeout + cfg.EngineConfig.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", slog.String("addr", cfg.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	logger.Info("shutting down server")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	logger.Info("server exited")
	return nil
}
