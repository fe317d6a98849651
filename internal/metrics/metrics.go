// Package metrics provides Prometheus metrics for digest runs.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Search outcomes.
const (
	SearchOK     = "ok"
	SearchFailed = "failed"
)

// Quote results.
const (
	QuotePriced   = "priced"
	QuoteUnpriced = "unpriced"
	QuoteRejected = "rejected"
)

// Metrics owns a private registry so several runs can coexist in one
// process (tests, the preview server). A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	// SearchesTotal counts catalog searches by outcome.
	SearchesTotal *prometheus.CounterVec
	// QuotesTotal counts raw records by normalization result.
	QuotesTotal *prometheus.CounterVec
	// RunsTotal counts finished runs by terminal state.
	RunsTotal *prometheus.CounterVec
	// RunDuration observes the wall time of each run.
	RunDuration prometheus.Histogram
	// LastSuccess is the unix time of the last run that delivered a report.
	LastSuccess prometheus.Gauge
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		SearchesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "digest_searches_total",
				Help: "Total number of catalog searches by outcome",
			},
			[]string{"outcome"},
		),
		QuotesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "digest_quotes_total",
				Help: "Total number of catalog records by normalization result",
			},
			[]string{"result"},
		),
		RunsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "digest_runs_total",
				Help: "Total number of digest runs by terminal state",
			},
			[]string{"state"},
		),
		RunDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "digest_run_duration_seconds",
				Help:    "Duration of digest runs",
				Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
			},
		),
		LastSuccess: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "digest_last_success_timestamp_seconds",
				Help: "Unix timestamp of the last run that delivered a report",
			},
		),
	}
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ObserveSearch(outcome string) {
	if m == nil {
		return
	}
	m.SearchesTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveQuote(result string) {
	if m == nil {
		return
	}
	m.QuotesTotal.WithLabelValues(result).Inc()
}

// ObserveRun records a finished run. delivered marks the success gauge.
func (m *Metrics) ObserveRun(state string, took time.Duration, delivered bool, at time.Time) {
	if m == nil {
		return
	}
	m.RunsTotal.WithLabelValues(state).Inc()
	m.RunDuration.Observe(took.Seconds())
	if delivered {
		m.LastSuccess.Set(float64(at.Unix()))
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Push sends the registry to a Pushgateway under job.
func (m *Metrics) Push(ctx context.Context, url, job string) error {
	if m == nil || url == "" {
		return nil
	}
	return push.New(url, job).Gatherer(m.registry).PushContext(ctx)
}
