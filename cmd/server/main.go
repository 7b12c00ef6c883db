// Package main is the entry point for the TruAssets console API.
//
// main stays minimal: read configuration, build the logger, hand both to
// internal/server and block until shutdown. Everything else lives in
// internal/.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/sakif/truassets/internal/config"
	"github.com/sakif/truassets/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(logger)

	srv, err := server.New(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start blocks until SIGINT/SIGTERM.
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
