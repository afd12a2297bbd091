package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/LaughingJackalope/agentrouter/internal/config"
	"github.com/LaughingJackalope/agentrouter/internal/domain"
	"github.com/LaughingJackalope/agentrouter/internal/observe"
	"github.com/LaughingJackalope/agentrouter/internal/service/health"
	"github.com/LaughingJackalope/agentrouter/internal/service/ingest"
	"github.com/LaughingJackalope/agentrouter/internal/service/mapping"
	"github.com/LaughingJackalope/agentrouter/internal/service/provisioning"
	"github.com/LaughingJackalope/agentrouter/internal/transport/middleware"
	"github.com/LaughingJackalope/agentrouter/internal/transport/rest"
)

// MappingStore persists agent mappings.
type MappingStore interface {
	Create(ctx context.Context, m *domain.AgentMapping) (*domain.AgentMapping, error)
	GetByAddress(ctx context.Context, address string) (*domain.AgentMapping, error)
	GetByAddressForUpdate(ctx context.Context, address string) (*domain.AgentMapping, error)
	Update(ctx context.Context, address string, patch domain.MappingPatch, updatedAt time.Time, updatedBy *string) (*domain.AgentMapping, error)
	Delete(ctx context.Context, address string) error
	List(ctx context.Context, filter domain.MappingFilter) ([]*domain.AgentMapping, int, error)
}

// TxRunner runs fn in one store transaction.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Publisher sends an envelope to an inbox and returns the bus message ID.
type Publisher interface {
	Publish(ctx context.Context, inbox string, env domain.Envelope) (string, error)
}

// BusAdmin creates bus topics and subscriptions idempotently.
type BusAdmin interface {
	EnsureTopic(ctx context.Context, name string) error
	EnsureSubscription(ctx context.Context, spec domain.SubscriptionSpec) error
}

// DedupStore holds replay keys for sender-provided message IDs.
type DedupStore interface {
	Reserve(ctx context.Context, key, messageID string, ttl time.Duration) (string, bool, error)
	Release(ctx context.Context, key, messageID string) error
}

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the external collaborators of the HTTP handler. Dedup and
// Registry are optional.
type Deps struct {
	DB        Pinger
	Mappings  MappingStore
	Tx        TxRunner
	Publisher Publisher
	BusAdmin  BusAdmin
	Dedup     DedupStore
	Registry  *prometheus.Registry
	Clock     clockwork.Clock
}

// NewHandler builds the services on deps and returns the fully wrapped
// HTTP handler.
func NewHandler(cfg *config.Config, logger *slog.Logger, deps Deps) (http.Handler, error) {
	policy, err := health.ParsePolicy(cfg.Health.Policy)
	if err != nil {
		return nil, fmt.Errorf("health policy: %w", err)
	}

	clock := deps.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	observers := observe.Multi{observe.NewLog(logger)}
	var metricsHandler http.Handler
	if deps.Registry != nil {
		metrics, err := observe.NewMetrics(deps.Registry)
		if err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
		observers = append(observers, metrics)
		metricsHandler = promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{})
	}

	orchestrator := provisioning.NewOrchestrator(logger, deps.BusAdmin, cfg.Provisioning.ConsumerGroup,
		provisioning.WithTimeout(cfg.Provisioning.Timeout))
	mappings := mapping.NewService(logger, deps.Mappings, deps.Tx, orchestrator, clock)
	reconciler := health.NewReconciler(logger, mappings, observers, policy, clock)

	var opts []ingest.Option
	if deps.Dedup != nil {
		opts = append(opts, ingest.WithDedup(deps.Dedup, cfg.Dedup.TTL))
	}
	router := ingest.NewRouter(logger, mappings, deps.Publisher, observers, clock, ingest.Config{
		LookupTimeout:  cfg.Router.LookupTimeout,
		PublishTimeout: cfg.Router.PublishTimeout,
	}, opts...)

	probes := rest.NewHealthHandler(deps.DB, BuildVersion())
	if p, ok := deps.Dedup.(Pinger); ok {
		probes.WithComponent("dedup", p)
	}

	mux := rest.NewMux(rest.Handlers{
		Health:      probes,
		Messages:    rest.NewMessageHandler(router, cfg.Server.MaxBodyBytes, logger),
		Agents:      rest.NewAgentHandler(mappings, cfg.Server.MaxBodyBytes, logger),
		AgentHealth: rest.NewAgentHealthHandler(reconciler, cfg.Server.MaxBodyBytes, logger),
		Metrics:     metricsHandler,
		MetricsPath: cfg.Metrics.Path,
	})

	return middleware.Chain(
		middleware.RequestID(),
		middleware.Actor(),
		middleware.Logger(logger),
		middleware.Recovery(logger),
	)(mux), nil
}
