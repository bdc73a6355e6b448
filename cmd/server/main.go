// Package main is the entry point for the samewave entity store.
//
// main stays small: it reads configuration, builds the logger and hands
// everything else to internal/server.
package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/sakif/samewave/internal/config"
	"github.com/sakif/samewave/internal/server"
)

func main() {
	configPath := flag.String("config", os.Getenv("SAMEWAVE_CONFIG"), "path to a YAML config file")
	flag.Parse()

	// === 1. ENVIRONMENT ===
	// .env is optional; variables already exported win.
	bootLogger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	if err := config.LoadDotEnv(); err != nil {
		bootLogger.Error("failed to load .env", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// === 2. CONFIGURATION ===
	cfg, err := config.Load(config.New(), *configPath)
	if err != nil {
		bootLogger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// === 3. LOGGING ===
	// Validate already accepted the level, so the error is impossible here.
	level, _ := config.ParseLevel(cfg.LogLevel)
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	// === 4. CREATE AND START THE SERVER ===
	// A nil searcher makes the server build its catalog gateway from
	// cfg.Catalog.
	srv, err := server.New(*cfg, nil, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start blocks until SIGINT or SIGTERM.
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
