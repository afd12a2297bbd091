// Command migrate applies, rolls back or reports the embedded schema
// migrations of the mapping store.
//
// Usage: migrate [up|down|status]   (default: up)
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/LaughingJackalope/agentrouter/internal/adapter/postgres"
	"github.com/LaughingJackalope/agentrouter/internal/app"
	"github.com/LaughingJackalope/agentrouter/internal/config"
)

func main() {
	command := "up"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := app.NewLogger(cfg.Log)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := run(ctx, cfg, logger, command); err != nil {
		logger.Error("migrate failed", slog.String("command", command), slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger, command string) error {
	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer pool.Close()

	m, err := postgres.NewMigrator(pool, nil)
	if err != nil {
		return err
	}
	defer m.Close()

	switch command {
	case "up":
		return m.Up(ctx, logger)
	case "down":
		return m.Down(ctx, logger)
	case "status":
		return m.Status(ctx, logger)
	default:
		return fmt.Errorf("unknown command %q (want up, down or status)", command)
	}
}
