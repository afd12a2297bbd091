package observe

import (
	"context"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "agentrouter"

// Metrics records events as Prometheus series.
type Metrics struct {
	routeTotal    *prometheus.CounterVec
	routeDuration *prometheus.HistogramVec
	healthTotal   *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		routeTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "route_total",
			Help:      "Routing attempts by terminal outcome and error code.",
		}, []string{"outcome", "code"}),
		routeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "route_duration_seconds",
			Help:      "Routing latency from receipt to terminal outcome.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"outcome"}),
		healthTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "health_reports_total",
			Help:      "Processed health reports by reported status and whether they were applied.",
		}, []string{"status", "applied"}),
	}

	for _, c := range []prometheus.Collector{m.routeTotal, m.routeDuration, m.healthTotal} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) RouteCompleted(_ context.Context, ev RouteEvent) {
	outcome := ev.Outcome.String()
	m.routeTotal.WithLabelValues(outcome, ev.Code.String()).Inc()
	m.routeDuration.WithLabelValues(outcome).Observe(ev.Latency.Seconds())
}

func (m *Metrics) HealthReported(_ context.Context, ev HealthEvent) {
	m.healthTotal.WithLabelValues(ev.ReportedStatus.String(), strconv.FormatBool(ev.Applied)).Inc()
}
