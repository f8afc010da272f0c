package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/magabrotheeeer/jmfx-signals/internal/app/broadcaster"
	"github.com/magabrotheeeer/jmfx-signals/internal/config"
	"github.com/magabrotheeeer/jmfx-signals/internal/lib/sl"
)

func main() {
	cfg := config.MustLoad()
	logger := sl.New(os.Stdout, cfg.Env, cfg.LogLevel)

	logger.Info("starting broadcaster", slog.String("env", cfg.Env))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := broadcaster.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize broadcaster", sl.Err(err))
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil {
		logger.Error("broadcaster stopped with error", sl.Err(err))
		os.Exit(1)
	}

	logger.Info("broadcaster stopped gracefully")
}
