package pubsub

import (
	"context"
	"fmt"

	"cloud.google.com/go/pubsub"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/LaughingJackalope/agentrouter/internal/domain"
)

// Provisioner creates topics and subscriptions. Resources that already exist
// are left as they are.
type Provisioner struct {
	client *pubsub.Client
}

// NewProvisioner creates a Provisioner on client.
func NewProvisioner(client *pubsub.Client) *Provisioner {
	return &Provisioner{client: client}
}

// EnsureTopic creates the topic name unless it exists.
func (p *Provisioner) EnsureTopic(ctx context.Context, name string) error {
	_, err := p.client.CreateTopic(ctx, name)
	if err != nil && status.Code(err) != codes.AlreadyExists {
		return fmt.Errorf("create topic %s: %w", name, err)
	}
	return nil
}

// EnsureSubscription creates the pull subscription described by spec unless
// it exists. An existing subscription is not reconfigured.
func (p *Provisioner) EnsureSubscription(ctx context.Context, spec domain.SubscriptionSpec) error {
	cfg := pubsub.SubscriptionConfig{
		Topic:             p.client.Topic(spec.Topic),
		AckDeadline:       spec.AckDeadline,
		RetentionDuration: spec.Retention,
	}
	if spec.DeadLetterTopic != "" {
		cfg.DeadLetterPolicy = &pubsub.DeadLetterPolicy{
			DeadLetterTopic:     p.client.Topic(spec.DeadLetterTopic).String(),
			MaxDeliveryAttempts: spec.MaxDeliveryAttempts,
		}
	}

	_, err := p.client.CreateSubscription(ctx, spec.Name, cfg)
	if err != nil && status.Code(err) != codes.AlreadyExists {
		return fmt.Errorf("create subscription %s: %w", spec.Name, err)
	}
	return nil
}
