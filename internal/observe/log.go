package observe

import (
	"context"
	"log/slog"

	"github.com/LaughingJackalope/agentrouter/internal/domain"
)

// Log writes one structured line per event.
type Log struct {
	log *slog.Logger
}

// NewLog creates a logging observer.
func NewLog(log *slog.Logger) *Log {
	return &Log{log: log.With("component", "observer")}
}

func (l *Log) RouteCompleted(ctx context.Context, ev RouteEvent) {
	attrs := []slog.Attr{
		slog.String("message_id", ev.MessageID.String()),
		slog.String("target_address", ev.TargetAddress),
		slog.String("outcome", ev.Outcome.String()),
		slog.Duration("latency", ev.Latency),
	}
	if ev.Code != "" {
		attrs = append(attrs, slog.String("code", ev.Code.String()))
	}
	if ev.Duplicate {
		attrs = append(attrs, slog.Bool("duplicate", true))
	}
	if ev.SenderID != "" {
		attrs = append(attrs, slog.String("sender_id", ev.SenderID))
	}
	if ev.CorrelationID != "" {
		attrs = append(attrs, slog.String("correlation_id", ev.CorrelationID))
	}
	if ev.SenderProvidedMessageID != "" {
		attrs = append(attrs, slog.String("sender_message_id", ev.SenderProvidedMessageID))
	}
	if ev.Err != nil {
		attrs = append(attrs, slog.String("error", ev.Err.Error()))
	}

	level := slog.LevelInfo
	switch ev.Outcome {
	case domain.OutcomeRejected:
		level = slog.LevelWarn
	case domain.OutcomeFailed:
		level = slog.LevelError
	}

	l.log.LogAttrs(ctx, level, "message routed", attrs...)
}

func (l *Log) HealthReported(ctx context.Context, ev HealthEvent) {
	attrs := []slog.Attr{
		slog.String("address", ev.Address),
		slog.String("reported_status", ev.ReportedStatus.String()),
		slog.String("previous_status", ev.PreviousStatus.String()),
		slog.String("status", ev.Status.String()),
		slog.Bool("applied", ev.Applied),
		slog.Time("effective_at", ev.EffectiveAt),
	}
	if len(ev.Details) > 0 {
		attrs = append(attrs, slog.Any("details", ev.Details))
	}

	switch {
	case ev.Transitioned():
		l.log.LogAttrs(ctx, slog.LevelInfo, "agent status changed", attrs...)
	case !ev.Applied:
		l.log.LogAttrs(ctx, slog.LevelWarn, "stale health report ignored", attrs...)
	default:
		l.log.LogAttrs(ctx, slog.LevelDebug, "health report recorded", attrs...)
	}
}
