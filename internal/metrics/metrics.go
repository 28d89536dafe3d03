package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// #region metrics
// Metrics are the analyzer's Prometheus collectors. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	eventsTotal    prometheus.Counter
	acceptedTotal  prometheus.Counter
	eventDuration  prometheus.Histogram
	recordsTotal   *prometheus.CounterVec
	adminOpsTotal  *prometheus.CounterVec
	rpcTotal       *prometheus.CounterVec
	rpcDuration    *prometheus.HistogramVec
	dictionarySize *prometheus.GaugeVec
}

// New builds the collectors and registers them on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		eventsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "histo_events_total",
			Help: "Total events dispatched to the spectra.",
		}),
		acceptedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "histo_spectrum_increments_total",
			Help: "Total (event, spectrum) pairs that passed the gate and were incremented.",
		}),
		eventDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "histo_event_duration_seconds",
			Help:    "Histogram of per-event dispatch durations.",
			Buckets: prometheus.ExponentialBuckets(1e-7, 4, 10),
		}),
		recordsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "histo_records_total",
			Help: "Total records read by type.",
		}, []string{"type"}),
		adminOpsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "histo_admin_operations_total",
			Help: "Total administrative operations by operation and outcome.",
		}, []string{"operation", "outcome"}),
		rpcTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "histo_rpc_requests_total",
			Help: "Total admin RPCs by method and status code.",
		}, []string{"method", "code"}),
		rpcDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "histo_rpc_duration_seconds",
			Help:    "Histogram of admin RPC durations by method.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
		dictionarySize: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "histo_dictionary_entries",
			Help: "Current entries per dictionary (parameters, conditions, spectra).",
		}, []string{"dictionary"}),
	}

	m.registry.MustRegister(
		m.eventsTotal,
		m.acceptedTotal,
		m.eventDuration,
		m.recordsTotal,
		m.adminOpsTotal,
		m.rpcTotal,
		m.rpcDuration,
		m.dictionarySize,
	)
	return m
}

// Registry exposes the registry for tests and extra collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// #endregion metrics

// #region recorders
// Event records one dispatched event and how many spectra took it.
func (m *Metrics) Event(accepted int, d time.Duration) {
	if m == nil {
		return
	}
	m.eventsTotal.Inc()
	m.acceptedTotal.Add(float64(accepted))
	m.eventDuration.Observe(d.Seconds())
}

// Record counts one record read from a stream.
func (m *Metrics) Record(typeName string) {
	if m == nil {
		return
	}
	m.recordsTotal.WithLabelValues(typeName).Inc()
}

// AdminOperation counts one administrative operation.
func (m *Metrics) AdminOperation(op string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.adminOpsTotal.WithLabelValues(op, outcome).Inc()
}

// RPC records one admin RPC.
func (m *Metrics) RPC(method, code string, d time.Duration) {
	if m == nil {
		return
	}
	m.rpcTotal.WithLabelValues(method, code).Inc()
	m.rpcDuration.WithLabelValues(method).Observe(d.Seconds())
}

// DictionarySizes sets the dictionary gauges.
func (m *Metrics) DictionarySizes(params, conds, specs int) {
	if m == nil {
		return
	}
	m.dictionarySize.WithLabelValues("parameters").Set(float64(params))
	m.dictionarySize.WithLabelValues("conditions").Set(float64(conds))
	m.dictionarySize.WithLabelValues("spectra").Set(float64(specs))
}

// #endregion recorders
