package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/campus-ai/tutor-core/internal/api"
	"github.com/campus-ai/tutor-core/internal/curriculum"
	"github.com/campus-ai/tutor-core/internal/metrics"
	"github.com/campus-ai/tutor-core/internal/platform/cache"
	"github.com/campus-ai/tutor-core/internal/platform/config"
	"github.com/campus-ai/tutor-core/internal/platform/database"
	"github.com/campus-ai/tutor-core/internal/progress"
)

const sessionTTL = 24 * time.Hour

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(newLogger(cfg.Log))

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	loader := curriculum.NewLoader(cfg.Curriculum.Path)
	// A broken curriculum document is fatal at startup, not at first request.
	if _, err := loader.Catalog(); err != nil {
		slog.Error("failed to load curriculum", "error", err)
		os.Exit(1)
	}

	var store progress.ProgressStore
	var events progress.EventLogger
	if cfg.Database.Enabled {
		db, err := database.New(ctx, cfg.Database)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		if err := progress.Migrate(ctx, db.Pool); err != nil {
			slog.Error("failed to migrate database", "error", err)
			os.Exit(1)
		}
		store, err = progress.NewPostgresStore(db.Pool)
		if err != nil {
			slog.Error("failed to create progress store", "error", err)
			os.Exit(1)
		}
		events = progress.NewPostgresEventLogger(db.Pool)
		slog.Info("using postgres progress store")
	}

	var sessions progress.SessionStore
	if cfg.Cache.Enabled {
		c, err := cache.New(ctx, cfg.Cache)
		if err != nil {
			slog.Error("failed to connect to cache", "error", err)
			os.Exit(1)
		}
		defer c.Close()
		sessions = progress.NewRedisSessionStore(c.Client, sessionTTL)
		slog.Info("using redis session store")
	}

	hub := api.NewHub()
	loggers := progress.MultiLogger{hub}
	if events != nil {
		loggers = append(loggers, events)
	}

	engine := progress.NewEngine(progress.EngineConfig{
		Loader: loader,
		Store:  store,
		Events: loggers,
	})

	collector := metrics.NewCollector(cfg.Metrics.SlowThresholdMS)

	srv := api.NewServer(api.ServerConfig{
		Engine:          engine,
		Collector:       collector,
		Sessions:        sessions,
		Hub:             hub,
		ReportTokenHash: cfg.Report.TokenHash,
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      srv.Routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}

// newLogger builds the process logger from config.
func newLogger(cfg config.LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLogLevel(cfg.Level)}
	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
