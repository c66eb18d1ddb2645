package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles Prometheus collectors for the extraction run.
// All methods are nil-safe so callers can run without metrics wired.
type Metrics struct {
	Registry        *prometheus.Registry
	AttemptsTotal   *prometheus.CounterVec
	AttemptDuration *prometheus.HistogramVec
	ReroutesTotal   prometheus.Counter
	DropsTotal      prometheus.Counter
	KeywordsTotal   prometheus.Counter
	QueueDepth      prometheus.Gauge
	ExclusionSize   prometheus.Gauge
}

// New constructs and registers all metrics on a dedicated registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	attempts := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "keyscope_attempts_total",
			Help: "Extraction attempts by provider and outcome.",
		},
		[]string{"provider", "outcome"},
	)
	attemptDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "keyscope_attempt_duration_seconds",
			Help:    "Extraction attempt latency by provider.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider"},
	)
	reroutes := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "keyscope_reroutes_total",
			Help: "Tasks re-queued for another provider after a failure.",
		},
	)
	drops := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "keyscope_drops_total",
			Help: "Tasks dropped after exhausting all providers.",
		},
	)
	keywords := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "keyscope_keywords_total",
			Help: "Keywords accepted into results.",
		},
	)
	queueDepth := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "keyscope_queue_depth",
			Help: "Tasks currently waiting in the shared queue.",
		},
	)
	exclusionSize := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "keyscope_exclusion_size",
			Help: "Keywords currently on the exclusion list.",
		},
	)

	registry.MustRegister(attempts, attemptDuration, reroutes, drops, keywords, queueDepth, exclusionSize)

	return &Metrics{
		Registry:        registry,
		AttemptsTotal:   attempts,
		AttemptDuration: attemptDuration,
		ReroutesTotal:   reroutes,
		DropsTotal:      drops,
		KeywordsTotal:   keywords,
		QueueDepth:      queueDepth,
		ExclusionSize:   exclusionSize,
	}
}

// ObserveAttempt records one extraction attempt with its outcome and latency.
func (m *Metrics) ObserveAttempt(provider, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.AttemptsTotal.WithLabelValues(provider, outcome).Inc()
	m.AttemptDuration.WithLabelValues(provider).Observe(d.Seconds())
}

// IncReroutes increments the reroute counter.
func (m *Metrics) IncReroutes() {
	if m == nil {
		return
	}
	m.ReroutesTotal.Inc()
}

// IncDrops increments the dropped tasks counter.
func (m *Metrics) IncDrops() {
	if m == nil {
		return
	}
	m.DropsTotal.Inc()
}

// AddKeywords counts keywords accepted into results.
func (m *Metrics) AddKeywords(n int) {
	if m == nil {
		return
	}
	m.KeywordsTotal.Add(float64(n))
}

// SetQueueDepth records the current queue length.
func (m *Metrics) SetQueueDepth(n int) {
	if m == nil {
		return
	}
	m.QueueDepth.Set(float64(n))
}

// SetExclusionSize records the current exclusion list length.
func (m *Metrics) SetExclusionSize(n int) {
	if m == nil {
		return
	}
	m.ExclusionSize.Set(float64(n))
}

// Handler exposes the registry in Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
