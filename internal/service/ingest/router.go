// Package ingest routes inbound messages to the inbox of their target agent.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/LaughingJackalope/agentrouter/internal/domain"
	"github.com/LaughingJackalope/agentrouter/internal/observe"
)

type mappingLookup interface {
	Get(ctx context.Context, address string) (*domain.AgentMapping, error)
}

type publisher interface {
	Publish(ctx context.Context, inbox string, env domain.Envelope) (string, error)
}

type deduper interface {
	Reserve(ctx context.Context, key, messageID string, ttl time.Duration) (existing string, reserved bool, err error)
	Release(ctx context.Context, key, messageID string) error
}

type observer interface {
	RouteCompleted(ctx context.Context, ev observe.RouteEvent)
}

const (
	DefaultLookupTimeout  = 2 * time.Second
	DefaultPublishTimeout = 10 * time.Second
)

// Config bounds the blocking steps of Route. Zero values take the defaults.
type Config struct {
	LookupTimeout  time.Duration
	PublishTimeout time.Duration
}

// Option customizes a Router.
type Option func(*Router)

// WithDedup enables replay detection for messages carrying a
// sender-provided message ID.
func WithDedup(store deduper, ttl time.Duration) Option {
	return func(r *Router) {
		r.dedup = store
		r.dedupTTL = ttl
	}
}

// WithIDGenerator replaces the message ID generator.
func WithIDGenerator(fn func() uuid.UUID) Option {
	return func(r *Router) { r.newID = fn }
}

// Router validates, resolves, transforms and publishes inbound messages.
// It holds no per-message state and is safe for concurrent use.
type Router struct {
	mappings  mappingLookup
	publisher publisher
	observer  observer
	dedup     deduper
	dedupTTL  time.Duration
	clock     clockwork.Clock
	newID     func() uuid.UUID
	encode    func(domain.InboundMessage, time.Time) (domain.Envelope, error)
	cfg       Config
	log       *slog.Logger
}

// NewRouter creates a new Router.
func NewRouter(
	log *slog.Logger,
	mappings mappingLookup,
	pub publisher,
	obs observer,
	clock clockwork.Clock,
	cfg Config,
	opts ...Option,
) *Router {
	r := &Router{
		mappings:  mappings,
		publisher: pub,
		observer:  obs,
		clock:     clock,
		newID:     uuid.New,
		encode:    Encode,
		cfg:       cfg,
		log:       log.With("service", "ingest"),
	}
	if r.cfg.LookupTimeout <= 0 {
		r.cfg.LookupTimeout = DefaultLookupTimeout
	}
	if r.cfg.PublishTimeout <= 0 {
		r.cfg.PublishTimeout = DefaultPublishTimeout
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Route takes msg through validation, lookup, transformation and publishing
// and returns the terminal outcome. A fresh message ID is always assigned;
// any ID already on msg is ignored. Nothing is published unless the outcome
// is accepted.
func (r *Router) Route(ctx context.Context, msg domain.InboundMessage) domain.Outcome {
	start := r.clock.Now()
	msg.MessageID = r.newID()
	msg.TargetAddress = strings.TrimSpace(msg.TargetAddress)

	out := r.route(ctx, msg)
	if out.MessageID == uuid.Nil {
		out.MessageID = msg.MessageID
	}
	out.Latency = r.clock.Since(start)

	r.notify(ctx, msg, out)
	return out
}

// Reject records a request that could not be read as a message. It gets a
// message ID and is reported as INVALID_REQUEST like any other rejection.
func (r *Router) Reject(ctx context.Context, cause error) domain.Outcome {
	msg := domain.InboundMessage{MessageID: r.newID()}
	out := rejected(domain.CodeInvalidRequest, cause)
	out.MessageID = msg.MessageID

	r.notify(ctx, msg, out)
	return out
}

func (r *Router) route(ctx context.Context, msg domain.InboundMessage) domain.Outcome {
	if err := validate(msg); err != nil {
		return rejected(domain.CodeInvalidRequest, err)
	}

	key, reserved, original := r.reserve(ctx, msg)
	if original != uuid.Nil {
		// Replays report the ID of the original message.
		return domain.Outcome{Kind: domain.OutcomeAccepted, MessageID: original, Duplicate: true}
	}

	out := r.deliver(ctx, msg)
	if reserved && !out.Accepted() {
		r.release(ctx, key, msg.MessageID.String())
	}
	return out
}

func (r *Router) deliver(ctx context.Context, msg domain.InboundMessage) domain.Outcome {
	m, out, ok := r.resolve(ctx, msg.TargetAddress)
	if !ok {
		return out
	}

	env, err := r.encode(msg, r.clock.Now())
	if err != nil {
		return failed(domain.CodeTransformationError, err)
	}

	if err := ctx.Err(); err != nil {
		return failed(domain.CodeRequestCancelled, err)
	}

	// Once issued, the publish is not tied to the caller's lifetime.
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.cfg.PublishTimeout)
	defer cancel()

	serverID, err := r.publisher.Publish(pctx, m.InboxName, env)
	if err != nil {
		return failed(domain.CodePublishError, fmt.Errorf("%w: %w", domain.ErrPublish, err))
	}

	r.log.DebugContext(ctx, "message published",
		slog.String("message_id", msg.MessageID.String()),
		slog.String("inbox", m.InboxName),
		slog.String("server_id", serverID),
	)

	return domain.Outcome{Kind: domain.OutcomeAccepted}
}

// resolve looks up the target mapping and checks it can receive messages.
func (r *Router) resolve(ctx context.Context, address string) (*domain.AgentMapping, domain.Outcome, bool) {
	lctx, cancel := context.WithTimeout(ctx, r.cfg.LookupTimeout)
	defer cancel()

	m, err := r.mappings.Get(lctx, address)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return nil, rejected(domain.CodeAgentNotFound, err), false
	case err != nil && ctx.Err() != nil:
		return nil, failed(domain.CodeRequestCancelled, ctx.Err()), false
	case err != nil:
		return nil, failed(domain.CodeStoreError, fmt.Errorf("%w: %w", domain.ErrStore, err)), false
	}

	if m.Routable() {
		return m, domain.Outcome{}, true
	}

	switch m.Status {
	case domain.MappingStatusActive:
		return nil, failed(domain.CodeConfigError,
			fmt.Errorf("%w: agent %s has no inbox", domain.ErrConfigIntegrity, address)), false
	case domain.MappingStatusInactive:
		return nil, rejected(domain.CodeAgentInactive, fmt.Errorf("agent %s is inactive", address)), false
	default:
		return nil, failed(domain.CodeUnknownStatus,
			fmt.Errorf("%w: agent %s has status %q", domain.ErrConfigIntegrity, address, m.Status)), false
	}
}

// reserve claims the dedup key of msg. It returns the original message ID
// when msg is a replay. Store errors are logged and routing continues.
func (r *Router) reserve(ctx context.Context, msg domain.InboundMessage) (key string, reserved bool, original uuid.UUID) {
	if r.dedup == nil || msg.Sender.SenderProvidedMessageID == "" {
		return "", false, uuid.Nil
	}

	key = DedupKey(msg)
	existing, ok, err := r.dedup.Reserve(ctx, key, msg.MessageID.String(), r.dedupTTL)
	if err != nil {
		r.log.WarnContext(ctx, "dedup reserve failed, routing without dedup",
			slog.String("message_id", msg.MessageID.String()),
			slog.String("error", err.Error()),
		)
		return "", false, uuid.Nil
	}
	if ok {
		return key, true, uuid.Nil
	}

	id, err := uuid.Parse(existing)
	if err != nil {
		r.log.WarnContext(ctx, "dedup entry unreadable, routing without dedup",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return "", false, uuid.Nil
	}
	return key, false, id
}

func (r *Router) release(ctx context.Context, key, messageID string) {
	if err := r.dedup.Release(context.WithoutCancel(ctx), key, messageID); err != nil {
		r.log.WarnContext(ctx, "dedup release failed",
			slog.String("message_id", messageID),
			slog.String("error", err.Error()),
		)
	}
}

// notify reports the outcome. Observer panics are contained.
func (r *Router) notify(ctx context.Context, msg domain.InboundMessage, out domain.Outcome) {
	if r.observer == nil {
		return
	}
	defer func() {
		if p := recover(); p != nil {
			r.log.ErrorContext(ctx, "observer panicked",
				slog.String("message_id", out.MessageID.String()),
				slog.Any("panic", p),
			)
		}
	}()

	r.observer.RouteCompleted(ctx, observe.RouteEvent{
		MessageID:               out.MessageID,
		TargetAddress:           msg.TargetAddress,
		Outcome:                 out.Kind,
		Code:                    out.Code,
		Err:                     out.Err,
		Duplicate:               out.Duplicate,
		Latency:                 out.Latency,
		SenderID:                msg.Sender.SenderID,
		CorrelationID:           msg.Sender.CorrelationID,
		SenderProvidedMessageID: msg.Sender.SenderProvidedMessageID,
	})
}

// DedupKey is the replay key of msg.
func DedupKey(msg domain.InboundMessage) string {
	return "dedup:" + msg.TargetAddress + ":" + msg.Sender.SenderID + ":" + msg.Sender.SenderProvidedMessageID
}

func validate(msg domain.InboundMessage) error {
	var errs []domain.FieldError
	if msg.TargetAddress == "" {
		errs = append(errs, domain.FieldError{Field: "targetAddress", Message: "required"})
	}
	if !isJSONObject(msg.Payload) {
		errs = append(errs, domain.FieldError{Field: "payload", Message: "must be a JSON object"})
	}
	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

func rejected(code domain.ErrorCode, err error) domain.Outcome {
	return domain.Outcome{Kind: domain.OutcomeRejected, Code: code, Err: err}
}

func failed(code domain.ErrorCode, err error) domain.Outcome {
	return domain.Outcome{Kind: domain.OutcomeFailed, Code: code, Err: err}
}
