package workflow

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics collects Prometheus metrics for session execution.
//
// All metrics are namespaced "stockintel":
//   - sessions_started_total (counter)
//   - sessions_resumed_total (counter)
//   - suspensions_total (counter): suspend points reached, including
//     re-suspends after invalid input
//   - outcomes_total (counter, label: outcome): terminal outcomes
//   - step_failures_total (counter, label: stage): worker failures
//   - step_duration_seconds (histogram, label: stage): worker latency
//
// Pass a custom registry for isolation, or prometheus.DefaultRegisterer to
// use the global one. Expose via promhttp in the host process.
type Metrics struct {
	sessionsStarted prometheus.Counter
	sessionsResumed prometheus.Counter
	suspensions     prometheus.Counter
	outcomes        *prometheus.CounterVec
	stepFailures    *prometheus.CounterVec
	stepDuration    *prometheus.HistogramVec
}

// NewMetrics creates and registers the session metrics with the given
// registry. A nil registry falls back to prometheus.DefaultRegisterer.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		sessionsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "stockintel",
			Name:      "sessions_started_total",
			Help:      "Number of sessions started.",
		}),
		sessionsResumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "stockintel",
			Name:      "sessions_resumed_total",
			Help:      "Number of resume calls accepted for suspended sessions.",
		}),
		suspensions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "stockintel",
			Name:      "suspensions_total",
			Help:      "Number of times a session suspended awaiting external input.",
		}),
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stockintel",
			Name:      "outcomes_total",
			Help:      "Terminal session outcomes.",
		}, []string{"outcome"}),
		stepFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stockintel",
			Name:      "step_failures_total",
			Help:      "Worker failures by stage.",
		}, []string{"stage"}),
		stepDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "stockintel",
			Name:      "step_duration_seconds",
			Help:      "Worker execution duration by stage.",
			Buckets:   []float64{.005, .025, .1, .5, 1, 2.5, 5, 10, 30},
		}, []string{"stage"}),
	}

	registry.MustRegister(
		m.sessionsStarted,
		m.sessionsResumed,
		m.suspensions,
		m.outcomes,
		m.stepFailures,
		m.stepDuration,
	)
	return m
}

func (m *Metrics) sessionStarted() {
	if m == nil {
		return
	}
	m.sessionsStarted.Inc()
}

func (m *Metrics) sessionResumed() {
	if m == nil {
		return
	}
	m.sessionsResumed.Inc()
}

func (m *Metrics) suspended() {
	if m == nil {
		return
	}
	m.suspensions.Inc()
}

func (m *Metrics) outcome(outcome string) {
	if m == nil {
		return
	}
	m.outcomes.WithLabelValues(outcome).Inc()
}

func (m *Metrics) stepFailed(stage string) {
	if m == nil {
		return
	}
	m.stepFailures.WithLabelValues(stage).Inc()
}

func (m *Metrics) observeStep(stage string, seconds float64) {
	if m == nil {
		return
	}
	m.stepDuration.WithLabelValues(stage).Observe(seconds)
}
