package feature

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricsNamespace = "flaglite"
	metricsSubsystem = "evaluator"
)

// Metrics collects evaluation counters. A nil *Metrics records nothing.
type Metrics struct {
	evaluations *prometheus.CounterVec
	fetches     *prometheus.CounterVec
	errors      *prometheus.CounterVec
	coalesced   prometheus.Counter
	fetchDur    prometheus.Histogram
}

// NewMetrics creates the evaluator collectors and registers them with reg.
// A nil registerer leaves them unregistered, which is handy in tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		evaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "evaluations_total",
			Help:      "Number of flag evaluations by outcome source.",
		}, []string{"source"}),
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "fetches_total",
			Help:      "Number of remote flag fetches by result.",
		}, []string{"result"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "errors_total",
			Help:      "Number of evaluations that fell back to the default, by error kind.",
		}, []string{"kind"}),
		coalesced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "coalesced_total",
			Help:      "Number of evaluations that joined an in-flight fetch.",
		}),
		fetchDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "fetch_duration_seconds",
			Help:      "Duration of remote flag fetches.",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	if reg != nil {
		reg.MustRegister(m.evaluations, m.fetches, m.errors, m.coalesced, m.fetchDur)
	}
	return m
}

// Evaluations exposes the evaluation counter, labelled by source: cache, fetch or default.
func (m *Metrics) Evaluations() *prometheus.CounterVec { return m.evaluations }

// Fetches exposes the fetch counter, labelled by result: success or error.
func (m *Metrics) Fetches() *prometheus.CounterVec { return m.fetches }

// Errors exposes the fallback counter, labelled by error kind.
func (m *Metrics) Errors() *prometheus.CounterVec { return m.errors }

// Coalesced exposes the counter of evaluations that shared another caller's fetch.
func (m *Metrics) Coalesced() prometheus.Counter { return m.coalesced }

func (m *Metrics) observeEvaluation(source string) {
	if m == nil {
		return
	}
	m.evaluations.WithLabelValues(source).Inc()
}

func (m *Metrics) observeFetch(err error, d time.Duration) {
	if m == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "error"
	}
	m.fetches.WithLabelValues(result).Inc()
	m.fetchDur.Observe(d.Seconds())
}

func (m *Metrics) observeError(err error) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(Kind(err)).Inc()
}

func (m *Metrics) observeCoalesced() {
	if m == nil {
		return
	}
	m.coalesced.Inc()
}
