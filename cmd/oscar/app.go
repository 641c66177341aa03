package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/oscarhq/oscar/internal/config"
	"github.com/oscarhq/oscar/internal/localstore"
	"github.com/oscarhq/oscar/internal/remote"
	"github.com/oscarhq/oscar/internal/syncer"
	"github.com/oscarhq/oscar/internal/writethrough"
)

// App bundles the stores and services every command needs. It is
// built once per invocation and passed explicitly; there is no global
// storage singleton.
type App struct {
	Config *config.Config
	Local  *localstore.Store
	Remote *remote.Client
	Writes *writethrough.Service
	Coord  syncer.Coordinator
	Logger *log.Logger
}

func newApp(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := log.New(os.Stderr, "[oscar] ", log.LstdFlags)
	if cfg.LogFile != "" {
		logger = log.New(&lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		}, "[oscar] ", log.LstdFlags)
	}

	store, err := localstore.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open local store: %w", err)
	}
	if err := store.InitSchema(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to initialize local store: %w", err)
	}

	// The remote client connects lazily so commands work offline.
	client, err := remote.New(cfg.RedisURL, logger)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to configure remote store: %w", err)
	}

	return &App{
		Config: cfg,
		Local:  store,
		Remote: client,
		Writes: writethrough.New(store, client, logger),
		Coord:  syncer.New(store, client, logger),
		Logger: logger,
	}, nil
}

func (a *App) Close() {
	if err := a.Remote.Close(); err != nil {
		a.Logger.Printf("Error closing remote client: %v", err)
	}
	if err := a.Local.Close(); err != nil {
		a.Logger.Printf("Error closing local store: %v", err)
	}
}

// mustApp builds the App or exits. Commands call this at the top of
// their Run functions.
func mustApp(ctx context.Context) *App {
	app, err := newApp(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return app
}
