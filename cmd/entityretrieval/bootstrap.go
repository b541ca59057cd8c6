package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/entityretrieval/entityretrieval/internal/config"
	"github.com/entityretrieval/entityretrieval/internal/observe"
	"github.com/entityretrieval/entityretrieval/internal/store"
)

// loadConfig loads the YAML config at configPath and installs a logger at
// its configured level as the slog default.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config file %q not found", configPath)
		}
		return nil, err
	}

	slog.SetDefault(newLogger(cfg.Server.LogLevel))
	return cfg, nil
}

// openStore connects to the entity store described by cfg.Store.
func openStore(ctx context.Context, cfg *config.Config) (*store.Store, error) {
	s, err := store.NewStore(ctx, cfg.Store.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open entity store: %w", err)
	}
	return s, nil
}

func newLogger(level config.LogLevel) *slog.Logger {
	var lvl slog.Level
	switch level {
	case config.LogLevelDebug:
		lvl = slog.LevelDebug
	case config.LogLevelWarn:
		lvl = slog.LevelWarn
	case config.LogLevelError:
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

// initMetrics wires the Prometheus exporter bridge and returns a shutdown
// function the caller should defer.
func initMetrics(ctx context.Context) (*observe.Metrics, func(context.Context) error, error) {
	shutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{ServiceName: "entityretrieval"})
	if err != nil {
		return nil, nil, fmt.Errorf("init telemetry providers: %w", err)
	}
	return observe.DefaultMetrics(), shutdown, nil
}
