// Package metrics exposes Prometheus instrumentation for the signal
// engine daemon.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Alias1177/signalengine/internal/model"
)

// Metrics holds the daemon's Prometheus collectors.
type Metrics struct {
	registry *prometheus.Registry

	BatchesTotal    *prometheus.CounterVec // labels: status
	SignalsTotal    *prometheus.CounterVec // labels: pair, direction
	HoldsTotal      *prometheus.CounterVec // labels: reason
	SkippedTotal    *prometheus.CounterVec // labels: reason
	BatchDuration   prometheus.Histogram
	PortfolioHeat   prometheus.Gauge
	PublishFailures prometheus.Counter
}

// New registers all collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		BatchesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "signalengine_batches_total",
			Help: "Batch evaluations by final status.",
		}, []string{"status"}),
		SignalsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "signalengine_signals_total",
			Help: "Emitted signals by pair and direction.",
		}, []string{"pair", "direction"}),
		HoldsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "signalengine_holds_total",
			Help: "Hold outcomes by first reason tag.",
		}, []string{"reason"}),
		SkippedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "signalengine_skipped_pairs_total",
			Help: "Pairs skipped during batch evaluation by reason.",
		}, []string{"reason"}),
		BatchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "signalengine_batch_duration_seconds",
			Help:    "Wall time of one batch evaluation.",
			Buckets: prometheus.DefBuckets,
		}),
		PortfolioHeat: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "signalengine_portfolio_heat",
			Help: "Total committed risk after the last batch.",
		}),
		PublishFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "signalengine_publish_failures_total",
			Help: "Signal publications that failed.",
		}),
	}
	reg.MustRegister(
		m.BatchesTotal, m.SignalsTotal, m.HoldsTotal, m.SkippedTotal,
		m.BatchDuration, m.PortfolioHeat, m.PublishFailures,
	)
	return m
}

// Handler serves the registry for scraping.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveBatch records the outcome of one batch evaluation.
func (m *Metrics) ObserveBatch(res *model.BatchResult, elapsed time.Duration) {
	m.BatchesTotal.WithLabelValues(string(res.Status)).Inc()
	m.BatchDuration.Observe(elapsed.Seconds())
	m.PortfolioHeat.Set(res.Ledger.Heat())
	for _, sig := range res.Signals {
		m.SignalsTotal.WithLabelValues(string(sig.Pair), string(sig.Direction)).Inc()
		if sig.IsHold() && len(sig.Reasons) > 0 {
			m.HoldsTotal.WithLabelValues(sig.Reasons[0]).Inc()
		}
	}
	for _, sk := range res.Skipped {
		m.SkippedTotal.WithLabelValues(sk.Reason).Inc()
	}
}
