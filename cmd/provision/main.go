// Command provision creates the bus resources of one agent inbox: the
// dead-letter topic, the inbox topic and the inbox subscription. It is
// idempotent and does not touch the mapping store.
//
// Exit codes: 0 = success, 1 = error, 2 = usage.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/LaughingJackalope/agentrouter/internal/app"
	"github.com/LaughingJackalope/agentrouter/internal/config"
	"github.com/LaughingJackalope/agentrouter/internal/service/provisioning"
)

func main() {
	address := flag.String("address", "", "agent address to provision (required)")
	group := flag.String("group", "", "consumer group suffix of the subscription (default from config)")
	dryRun := flag.Bool("dry-run", false, "print the derived resource names without touching the bus")
	flag.Parse()

	if strings.TrimSpace(*address) == "" {
		fmt.Fprintln(os.Stderr, "provision: -address is required")
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := app.NewLogger(cfg.Log)

	consumerGroup := cfg.Provisioning.ConsumerGroup
	if *group != "" {
		consumerGroup = *group
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	if *dryRun {
		names := provisioning.NewOrchestrator(logger, nil, consumerGroup).Names(*address)
		printJSON(names)
		return
	}

	bus, err := app.OpenBus(ctx, cfg.Bus)
	if err != nil {
		logger.Error("open bus", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer bus.Close() //nolint:errcheck

	names, err := provisioning.NewOrchestrator(logger, bus.Admin, consumerGroup,
		provisioning.WithTimeout(cfg.Provisioning.Timeout)).Provision(ctx, *address)
	if err != nil {
		logger.Error("provisioning failed",
			slog.String("address", *address),
			slog.String("error", err.Error()),
		)
		bus.Close() //nolint:errcheck
		os.Exit(1)
	}

	logger.Info("provisioning completed",
		slog.String("address", *address),
		slog.String("driver", cfg.Bus.Driver),
	)
	printJSON(names)
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(v) //nolint:errcheck
}
