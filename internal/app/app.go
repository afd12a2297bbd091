// Package app wires configuration, adapters, services and the HTTP server
// into the agentrouter process.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/LaughingJackalope/agentrouter/internal/adapter/postgres"
	pgmapping "github.com/LaughingJackalope/agentrouter/internal/adapter/postgres/mapping"
	"github.com/LaughingJackalope/agentrouter/internal/adapter/redis/dedup"
	"github.com/LaughingJackalope/agentrouter/internal/config"
)

// Run is the router entry point. It loads configuration, connects the store,
// the bus and the optional dedup cache, and serves HTTP until ctx is
// cancelled.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log)

	logger.Info("starting agentrouter",
		slog.String("version", BuildVersion()),
		slog.String("bus_driver", cfg.Bus.Driver),
		slog.String("health_policy", cfg.Health.Policy),
		slog.Bool("dedup", cfg.Dedup.Enabled),
	)

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer pool.Close()

	if cfg.Database.AutoMigrate {
		if err := migrate(ctx, pool, logger); err != nil {
			return err
		}
	}

	bus, err := OpenBus(ctx, cfg.Bus)
	if err != nil {
		return fmt.Errorf("open bus: %w", err)
	}
	defer func() {
		if err := bus.Close(); err != nil {
			logger.Warn("close bus", slog.String("error", err.Error()))
		}
	}()

	deps := Deps{
		DB:        pool,
		Mappings:  pgmapping.New(pool),
		Tx:        postgres.NewTxManager(pool),
		Publisher: bus.Publisher,
		BusAdmin:  bus.Admin,
		Clock:     clockwork.NewRealClock(),
	}

	if cfg.Dedup.Enabled {
		rdb, err := dedup.NewClient(ctx, cfg.Dedup)
		if err != nil {
			return fmt.Errorf("dedup: %w", err)
		}
		defer rdb.Close()
		deps.Dedup = dedup.NewStore(rdb)
	}

	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		deps.Registry = reg
	}

	handler, err := NewHandler(cfg, logger, deps)
	if err != nil {
		return err
	}

	err = Serve(ctx, cfg.Server, handler, logger)
	logger.Info("agentrouter stopped")
	return err
}

func migrate(ctx context.Context, pool *pgxpool.Pool, logger *slog.Logger) error {
	m, err := postgres.NewMigrator(pool, nil)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(ctx, logger); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}
