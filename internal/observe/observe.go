// Package observe receives routing and health reconciliation events and fans
// them out to logging and metrics sinks.
package observe

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/LaughingJackalope/agentrouter/internal/domain"
)

// RouteEvent describes one terminal routing outcome.
type RouteEvent struct {
	MessageID               uuid.UUID
	TargetAddress           string
	Outcome                 domain.OutcomeKind
	Code                    domain.ErrorCode
	Err                     error
	Duplicate               bool
	Latency                 time.Duration
	SenderID                string
	CorrelationID           string
	SenderProvidedMessageID string
}

// HealthEvent describes one processed health report.
type HealthEvent struct {
	Address        string
	ReportedStatus domain.ReportedStatus
	PreviousStatus domain.MappingStatus
	Status         domain.MappingStatus
	Applied        bool
	EffectiveAt    time.Time
	Details        map[string]any
}

// Transitioned reports whether the report changed the routing status.
func (e HealthEvent) Transitioned() bool {
	return e.Applied && e.PreviousStatus != e.Status
}

// Observer is notified of routing and health events. Implementations must be
// safe for concurrent use.
type Observer interface {
	RouteCompleted(ctx context.Context, ev RouteEvent)
	HealthReported(ctx context.Context, ev HealthEvent)
}

// Nop discards all events.
type Nop struct{}

func (Nop) RouteCompleted(context.Context, RouteEvent)   {}
func (Nop) HealthReported(context.Context, HealthEvent) {}

// Multi forwards every event to each observer in order.
type Multi []Observer

func (m Multi) RouteCompleted(ctx context.Context, ev RouteEvent) {
	for _, o := range m {
		o.RouteCompleted(ctx, ev)
	}
}

func (m Multi) HealthReported(ctx context.Context, ev HealthEvent) {
	for _, o := range m {
		o.HealthReported(ctx, ev)
	}
}
