// Package health reconciles self-reported agent health into routing status.
package health

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/LaughingJackalope/agentrouter/internal/domain"
	"github.com/LaughingJackalope/agentrouter/internal/observe"
	"github.com/LaughingJackalope/agentrouter/internal/service/mapping"
)

// UpdatedBy is recorded as the actor of status changes made by health reports.
const UpdatedBy = "agent_health_check"

type mutator interface {
	Mutate(ctx context.Context, address string, updatedBy *string, fn mapping.MutateFunc) (*mapping.Mutation, error)
}

type observer interface {
	HealthReported(ctx context.Context, ev observe.HealthEvent)
}

// ReportInput is a health report as received from an agent.
type ReportInput struct {
	Address        string
	ReportedStatus string
	Details        map[string]any
	Timestamp      *time.Time
}

// Validate checks all fields and collects all errors.
func (i ReportInput) Validate() error {
	var errs []domain.FieldError
	if strings.TrimSpace(i.Address) == "" {
		errs = append(errs, domain.FieldError{Field: "address", Message: "required"})
	}
	if !domain.ReportedStatus(normalize(i.ReportedStatus)).IsValid() {
		errs = append(errs, domain.FieldError{
			Field:   "reportedStatus",
			Message: fmt.Sprintf("must be %s or %s", domain.ReportedHealthy, domain.ReportedUnhealthy),
		})
	}
	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// report normalizes a validated input.
func (i ReportInput) report() domain.HealthReport {
	return domain.HealthReport{
		Address:        strings.TrimSpace(i.Address),
		ReportedStatus: domain.ReportedStatus(normalize(i.ReportedStatus)),
		Details:        i.Details,
		Timestamp:      i.Timestamp,
	}
}

// Result is the outcome of a processed report.
type Result struct {
	Applied        bool
	Mapping        *domain.AgentMapping
	PreviousStatus domain.MappingStatus
}

// Reconciler applies health reports to agent mappings.
type Reconciler struct {
	mappings mutator
	observer observer
	policy   Policy
	clock    clockwork.Clock
	log      *slog.Logger
}

// NewReconciler creates a new Reconciler.
func NewReconciler(log *slog.Logger, mappings mutator, obs observer, policy Policy, clock clockwork.Clock) *Reconciler {
	if policy == "" {
		policy = PolicyReceiptOrder
	}
	return &Reconciler{
		mappings: mappings,
		observer: obs,
		policy:   policy,
		clock:    clock,
		log:      log.With("service", "health"),
	}
}

// Report sets the mapping status from the reported health and records the
// health check time, in one transaction. Unknown addresses yield
// domain.ErrNotFound and nothing is created.
func (r *Reconciler) Report(ctx context.Context, input ReportInput) (*Result, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	report := input.report()
	target := report.ReportedStatus.MappingStatus()

	effective := r.clock.Now()
	if report.Timestamp != nil {
		effective = *report.Timestamp
	}
	effective = effective.UTC().Truncate(time.Microsecond)

	actor := UpdatedBy
	m, err := r.mappings.Mutate(ctx, report.Address, &actor, func(current domain.AgentMapping) (*domain.MappingPatch, error) {
		if !r.policy.accepts(current.LastHealthCheckAt, effective) {
			return nil, nil
		}
		return &domain.MappingPatch{Status: &target, LastHealthCheckAt: &effective}, nil
	})
	if err != nil {
		return nil, fmt.Errorf("report health: %w", err)
	}

	result := &Result{
		Applied:        m.Applied,
		Mapping:        m.After,
		PreviousStatus: m.Before.Status,
	}

	r.notify(ctx, observe.HealthEvent{
		Address:        report.Address,
		ReportedStatus: report.ReportedStatus,
		PreviousStatus: result.PreviousStatus,
		Status:         result.Mapping.Status,
		Applied:        result.Applied,
		EffectiveAt:    effective,
		Details:        report.Details,
	})

	r.log.DebugContext(ctx, "health report processed",
		slog.String("address", report.Address),
		slog.String("reported_status", report.ReportedStatus.String()),
		slog.Bool("applied", result.Applied),
		slog.String("policy", r.policy.String()),
	)

	return result, nil
}

// notify reports the processed report. The update is already committed, so
// observer panics are contained.
func (r *Reconciler) notify(ctx context.Context, ev observe.HealthEvent) {
	if r.observer == nil {
		return
	}
	defer func() {
		if p := recover(); p != nil {
			r.log.ErrorContext(ctx, "observer panicked",
				slog.String("address", ev.Address),
				slog.Any("panic", p),
			)
		}
	}()

	r.observer.HealthReported(ctx, ev)
}

func normalize(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
