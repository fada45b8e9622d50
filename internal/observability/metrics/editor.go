package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// EditorMetrics observes the orchestration itself: submissions by
// decided action and outcome, per-step durations, resend results and
// the number of live editing sessions.
type EditorMetrics struct {
	service string

	submissionsTotal *prometheus.CounterVec
	submissionTime   *prometheus.HistogramVec
	stepTime         *prometheus.HistogramVec
	stepTotal        *prometheus.CounterVec
	resendTotal      *prometheus.CounterVec
	activeSessions   prometheus.Gauge
}

func NewEditorMetrics(registry *prometheus.Registry, service string) *EditorMetrics {
	m := &EditorMetrics{
		submissionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "edo",
				Subsystem: "editor",
				Name:      "submissions_total",
				Help:      "Submissions by post-submit action and outcome.",
			},
			[]string{"service", "action", "outcome"},
		),
		submissionTime: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "edo",
				Subsystem: "editor",
				Name:      "submission_duration_seconds",
				Help:      "End-to-end submission duration.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"service", "action"},
		),
		stepTime: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "edo",
				Subsystem: "editor",
				Name:      "submission_step_duration_seconds",
				Help:      "Duration of individual submission steps.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"service", "step"},
		),
		stepTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "edo",
				Subsystem: "editor",
				Name:      "submission_steps_total",
				Help:      "Submission steps by outcome.",
			},
			[]string{"service", "step", "outcome"},
		),
		resendTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "edo",
				Subsystem: "editor",
				Name:      "kias_resend_total",
				Help:      "Integration resend attempts by result.",
			},
			[]string{"service", "result"},
		),
		activeSessions: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "edo",
				Subsystem: "editor",
				Name:      "active_sessions",
				Help:      "Live editing sessions.",
				ConstLabels: prometheus.Labels{
					"service": service,
				},
			},
		),
	}
	m.service = service
	registry.MustRegister(
		m.submissionsTotal,
		m.submissionTime,
		m.stepTime,
		m.stepTotal,
		m.resendTotal,
		m.activeSessions,
	)
	return m
}

func (m *EditorMetrics) StepFinished(step, outcome string, elapsed time.Duration) {
	m.stepTotal.WithLabelValues(m.service, step, outcome).Inc()
	m.stepTime.WithLabelValues(m.service, step).Observe(elapsed.Seconds())
}

func (m *EditorMetrics) SubmissionFinished(action, outcome string, elapsed time.Duration) {
	m.submissionsTotal.WithLabelValues(m.service, action, outcome).Inc()
	m.submissionTime.WithLabelValues(m.service, action).Observe(elapsed.Seconds())
}

func (m *EditorMetrics) ResendFinished(success bool) {
	result := "failed"
	if success {
		result = "ok"
	}
	m.resendTotal.WithLabelValues(m.service, result).Inc()
}

func (m *EditorMetrics) SetActiveSessions(count int) {
	m.activeSessions.Set(float64(count))
}
