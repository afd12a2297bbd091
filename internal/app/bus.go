package app

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/LaughingJackalope/agentrouter/internal/adapter/kafka"
	"github.com/LaughingJackalope/agentrouter/internal/adapter/pubsub"
	"github.com/LaughingJackalope/agentrouter/internal/config"
)

// Bus is the publisher and the admin of the configured message bus.
type Bus struct {
	Publisher Publisher
	Admin     BusAdmin
	close     func() error
}

// Close releases the bus clients.
func (b *Bus) Close() error {
	if b.close == nil {
		return nil
	}
	return b.close()
}

// OpenBus connects to the bus selected by cfg.Driver.
func OpenBus(ctx context.Context, cfg config.BusConfig) (*Bus, error) {
	switch cfg.Driver {
	case config.BusDriverPubSub:
		if cfg.PubSub.EmulatorHost != "" {
			if err := os.Setenv("PUBSUB_EMULATOR_HOST", cfg.PubSub.EmulatorHost); err != nil {
				return nil, fmt.Errorf("set emulator host: %w", err)
			}
		}
		client, err := pubsub.NewClient(ctx, cfg.PubSub.ProjectID)
		if err != nil {
			return nil, err
		}
		pub := pubsub.NewPublisher(client)
		return &Bus{
			Publisher: pub,
			Admin:     pubsub.NewProvisioner(client),
			close: func() error {
				pub.Close()
				return client.Close()
			},
		}, nil

	case config.BusDriverKafka:
		producer, admin, err := kafka.Dial(cfg.Kafka)
		if err != nil {
			return nil, err
		}
		pub := kafka.NewPublisher(producer)
		return &Bus{
			Publisher: pub,
			Admin:     kafka.NewProvisioner(admin, cfg.Kafka.Partitions, cfg.Kafka.ReplicationFactor),
			close: func() error {
				return errors.Join(pub.Close(), admin.Close())
			},
		}, nil

	default:
		return nil, fmt.Errorf("unknown bus driver %q", cfg.Driver)
	}
}
