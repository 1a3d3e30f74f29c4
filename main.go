package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"notesqa/internal/app"
	"notesqa/internal/config"
	"notesqa/internal/logger"
)

func main() {
	// Initialize structured logger
	slog.SetDefault(logger.New(os.Stdout, "info"))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(logger.New(os.Stdout, cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, cfg)
	stop()

	if err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

// run loads everything the server needs and only then starts listening, so a
// startup failure never leaves a bound port behind.
func run(ctx context.Context, cfg *config.Config) error {
	deps, err := app.Bootstrap(ctx, cfg)
	if err != nil {
		return err
	}
	defer deps.Close()

	a, err := app.New(cfg, deps)
	if err != nil {
		return err
	}
	return a.Run(ctx)
}
