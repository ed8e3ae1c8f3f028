package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/BobbyOffiong/spelling-bee-organizer/internal/config"
	"github.com/BobbyOffiong/spelling-bee-organizer/internal/database"
	"github.com/BobbyOffiong/spelling-bee-organizer/internal/handler/health"
	"github.com/BobbyOffiong/spelling-bee-organizer/internal/live"
	"github.com/BobbyOffiong/spelling-bee-organizer/internal/migrations"
	"github.com/BobbyOffiong/spelling-bee-organizer/internal/server"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, stdout io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	// --- SQLite ---
	db, err := database.Open(ctx, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("connecting to sqlite: %w", err)
	}
	defer db.Close()

	applied, err := migrations.Run(ctx, db)
	if err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	logger.Info("connected to sqlite", "path", cfg.DBPath, "migrations_applied", len(applied))

	store := server.NewSQLiteStore(db)

	// --- Live runs ---
	hub := live.NewHub(ctx, store, live.Config{
		TurnSeconds:  cfg.TurnSeconds,
		TickInterval: cfg.TickInterval,
		Recorder:     store,
		Logger:       logger,
	})
	defer hub.Close()

	// --- HTTP Server ---
	srv := server.New(cfg.HTTPAddr, logger, server.Deps{
		Organizers:   store,
		Competitions: store,
		Hub:          hub,
		Checks: map[string]health.Checker{
			"sqlite": database.Checker{DB: db},
			"live":   hub,
		},
		SPADir: cfg.SPADir,
	})

	// --- Run ---
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting http server", "addr", cfg.HTTPAddr)
		return srv.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down http server")
		return srv.Shutdown(context.Background())
	})

	return g.Wait()
}
