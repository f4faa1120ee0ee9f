package observability

import (
	"context"
	"net/http"

	"github.com/aretw0/sluice/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors fed by lifecycle hooks.
type Metrics struct {
	Passes       *prometheus.CounterVec
	PassDuration *prometheus.HistogramVec
	Evaluations  *prometheus.CounterVec
	Evaluated    prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Passes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sluice_passes_total",
				Help: "Total number of recompute passes",
			},
			[]string{"trigger", "result"},
		),
		PassDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sluice_pass_duration_seconds",
				Help:    "Duration of recompute passes",
				Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
			},
			[]string{"trigger"},
		),
		Evaluations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sluice_node_evaluations_total",
				Help: "Total number of node evaluations",
			},
			[]string{"kind"},
		),
		Evaluated: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sluice_last_pass_combinators",
			Help: "Number of Combinator nodes computed by the last successful pass",
		}),
	}
	for _, c := range []prometheus.Collector{m.Passes, m.PassDuration, m.Evaluations, m.Evaluated} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Hooks returns lifecycle hooks that record into the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnPassEnd: func(_ context.Context, e *domain.PassEvent) {
			result := "ok"
			if e.Err != nil {
				result = "error"
			} else {
				m.Evaluated.Set(float64(e.Evaluated))
			}
			m.Passes.WithLabelValues(string(e.Trigger), result).Inc()
			m.PassDuration.WithLabelValues(string(e.Trigger)).Observe(e.Duration.Seconds())
		},
		OnNodeEvaluated: func(_ context.Context, e *domain.NodeEvent) {
			m.Evaluations.WithLabelValues(string(e.Kind)).Inc()
		},
	}
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
