// Package metrics exposes Prometheus collectors for chat exchanges and
// session history. A nil *Metrics is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "sovereign"

// Outcome labels for ObserveRequest.
const (
	OutcomeOK = "ok"
)

// Operation results for RecordOperation.
const (
	resultOK    = "ok"
	resultError = "error"
)

// Metrics groups the collectors shared by the transport and the session.
type Metrics struct {
	requests     *prometheus.CounterVec
	latency      *prometheus.HistogramVec
	historyTurns prometheus.Gauge
	evictions    prometheus.Counter
	operations   *prometheus.CounterVec
}

// New creates the collectors and registers them with reg. A nil reg
// leaves them unregistered, which is what most tests want.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chat_requests_total",
			Help:      "Chat endpoint exchanges by outcome.",
		}, []string{"outcome"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "chat_request_duration_seconds",
			Help:      "Wall time of chat endpoint exchanges.",
			Buckets:   []float64{0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"outcome"}),
		historyTurns: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "session_history_turns",
			Help:      "Turns currently retained in the session history, system turn included.",
		}),
		evictions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_evicted_turns_total",
			Help:      "Turns dropped by the sliding window.",
		}),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_operations_total",
			Help:      "Session operations by name and result.",
		}, []string{"op", "result"}),
	}

	if reg != nil {
		reg.MustRegister(m.requests, m.latency, m.historyTurns, m.evictions, m.operations)
	}
	return m
}

// ObserveRequest records one exchange with the chat endpoint. outcome is
// OutcomeOK or a provider.ErrorKind label.
func (m *Metrics) ObserveRequest(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(outcome).Inc()
	m.latency.WithLabelValues(outcome).Observe(d.Seconds())
}

// SetHistoryLen publishes the current history length.
func (m *Metrics) SetHistoryLen(n int) {
	if m == nil {
		return
	}
	m.historyTurns.Set(float64(n))
}

// AddEvictions counts turns dropped by the sliding window.
func (m *Metrics) AddEvictions(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.evictions.Add(float64(n))
}

// RecordOperation counts a session operation and whether it failed.
func (m *Metrics) RecordOperation(op string, err error) {
	if m == nil {
		return
	}
	result := resultOK
	if err != nil {
		result = resultError
	}
	m.operations.WithLabelValues(op, result).Inc()
}
