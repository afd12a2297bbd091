// Package provisioning creates the bus resources backing an agent inbox.
package provisioning

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/LaughingJackalope/agentrouter/internal/domain"
	"github.com/LaughingJackalope/agentrouter/internal/naming"
)

type busAdmin interface {
	EnsureTopic(ctx context.Context, name string) error
	EnsureSubscription(ctx context.Context, spec domain.SubscriptionSpec) error
}

// DefaultTimeout bounds one provisioning run.
const DefaultTimeout = 30 * time.Second

// Option customizes an Orchestrator.
type Option func(*Orchestrator)

// WithTimeout replaces DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// Orchestrator ensures the DLQ topic, the inbox topic and the inbox
// subscription of an agent exist. Every step treats "already exists" as
// success, so Provision is safe to repeat.
type Orchestrator struct {
	bus     busAdmin
	group   string
	timeout time.Duration
	sf      singleflight.Group
	log     *slog.Logger
}

// NewOrchestrator creates an Orchestrator that names subscriptions after group.
func NewOrchestrator(log *slog.Logger, bus busAdmin, group string, opts ...Option) *Orchestrator {
	if group == "" {
		group = naming.DefaultConsumerGroup
	}
	o := &Orchestrator{
		bus:     bus,
		group:   group,
		timeout: DefaultTimeout,
		log:     log.With("service", "provisioning"),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Names returns the resource names Provision would ensure for address.
func (o *Orchestrator) Names(address string) naming.Names {
	return naming.DeriveFor(strings.TrimSpace(address), o.group)
}

// Provision ensures all resources for address. Concurrent calls for the same
// address share one execution, which is bounded by the orchestrator timeout
// and outlives any single caller. A caller whose ctx ends stops waiting.
func (o *Orchestrator) Provision(ctx context.Context, address string) (naming.Names, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return naming.Names{}, domain.NewValidationError("address", "required")
	}

	names := o.Names(address)

	ch := o.sf.DoChan(names.Subscription, func() (any, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.timeout)
		defer cancel()
		return nil, o.ensure(fctx, names)
	})

	var shared bool
	select {
	case <-ctx.Done():
		return naming.Names{}, fmt.Errorf("provision %s: %w", address, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return naming.Names{}, res.Err
		}
		shared = res.Shared
	}

	o.log.InfoContext(ctx, "bus resources ensured",
		slog.String("address", address),
		slog.String("topic", names.Topic),
		slog.String("subscription", names.Subscription),
		slog.String("dlq_topic", names.DLQTopic),
		slog.Bool("shared", shared),
	)

	return names, nil
}

// ensure creates the dead-letter topic first so the subscription can point
// at it.
func (o *Orchestrator) ensure(ctx context.Context, names naming.Names) error {
	if err := o.bus.EnsureTopic(ctx, names.DLQTopic); err != nil {
		return fmt.Errorf("ensure dlq topic %s: %w", names.DLQTopic, err)
	}
	if err := o.bus.EnsureTopic(ctx, names.Topic); err != nil {
		return fmt.Errorf("ensure topic %s: %w", names.Topic, err)
	}

	spec := domain.SubscriptionSpec{
		Name:                names.Subscription,
		Topic:               names.Topic,
		DeadLetterTopic:     names.DLQTopic,
		AckDeadline:         domain.DefaultAckDeadline,
		Retention:           domain.DefaultRetention,
		MaxDeliveryAttempts: domain.DefaultMaxDeliveryAttempts,
	}
	if err := o.bus.EnsureSubscription(ctx, spec); err != nil {
		return fmt.Errorf("ensure subscription %s: %w", names.Subscription, err)
	}
	return nil
}
