// Package metrics exposes decay analysis diagnostics as Prometheus metrics.
package metrics

import (
	"time"

	"github.com/chrissnell/fluxdecay/internal/decay"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	metricsNamespace  = "fluxdecay"
	analysisSubsystem = "analysis"
)

// Candidate outcomes
const (
	OutcomeAccepted = "accepted"
	OutcomeRejected = "rejected"
)

// Metrics counts what the decay pipeline reports. It implements decay.Observer.
type Metrics struct {
	// SegmentsTotal counts merged decay segments by element
	SegmentsTotal *prometheus.CounterVec

	// NoValidDataTotal counts series that had no valid samples, by element
	NoValidDataTotal *prometheus.CounterVec

	// CandidatesTotal counts candidate segments by outcome (accepted, rejected)
	CandidatesTotal *prometheus.CounterVec

	// ShiftAttemptsTotal counts backward start steps by whether they were taken
	ShiftAttemptsTotal *prometheus.CounterVec

	// ShiftStopsTotal counts finished start searches by final state
	ShiftStopsTotal *prometheus.CounterVec

	// ShiftSteps records the accepted steps per start search
	ShiftSteps prometheus.Histogram

	// EventDurationHours records the time above threshold of accepted events
	EventDurationHours prometheus.Histogram
}

var _ decay.Observer = (*Metrics)(nil)

// New creates the analysis metrics and registers them with reg
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		SegmentsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: analysisSubsystem,
				Name:      "segments_total",
				Help:      "Decay segments detected by element",
			},
			[]string{"element"},
		),

		NoValidDataTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: analysisSubsystem,
				Name:      "no_valid_data_total",
				Help:      "Analyzed series without any valid flux sample, by element",
			},
			[]string{"element"},
		),

		CandidatesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: analysisSubsystem,
				Name:      "candidates_total",
				Help:      "Candidate decay events by outcome of the duration gate",
			},
			[]string{"outcome"},
		),

		ShiftAttemptsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: analysisSubsystem,
				Name:      "shift_attempts_total",
				Help:      "Backward start steps by whether they lowered the start flux",
			},
			[]string{"accepted"},
		),

		ShiftStopsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: analysisSubsystem,
				Name:      "shift_stops_total",
				Help:      "Finished start searches by final state",
			},
			[]string{"state"},
		),

		ShiftSteps: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: analysisSubsystem,
				Name:      "shift_steps",
				Help:      "Accepted backward steps per start search",
				Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 21},
			},
		),

		EventDurationHours: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: analysisSubsystem,
				Name:      "event_duration_hours",
				Help:      "Time above the flux threshold of accepted events in hours",
				Buckets:   []float64{6, 12, 24, 48, 96, 192, 384},
			},
		),
	}
}

func (m *Metrics) NoValidData(element string) {
	m.NoValidDataTotal.WithLabelValues(element).Inc()
}

func (m *Metrics) SegmentsDetected(element string, segments int) {
	m.SegmentsTotal.WithLabelValues(element).Add(float64(segments))
}

func (m *Metrics) ShiftStarted(decay.DecaySegment, float64, float64, time.Duration) {}

func (m *Metrics) ShiftAttempted(a decay.ShiftAttempt) {
	if a.Accepted {
		m.ShiftAttemptsTotal.WithLabelValues("true").Inc()
	} else {
		m.ShiftAttemptsTotal.WithLabelValues("false").Inc()
	}
}

func (m *Metrics) ShiftStopped(s decay.StartShift) {
	m.ShiftStopsTotal.WithLabelValues(s.State.String()).Inc()
	m.ShiftSteps.Observe(float64(s.Steps))
}

func (m *Metrics) CandidateRejected(int, decay.DecaySegment, float64) {
	m.CandidatesTotal.WithLabelValues(OutcomeRejected).Inc()
}

func (m *Metrics) EventAccepted(e decay.DecayEvent) {
	m.CandidatesTotal.WithLabelValues(OutcomeAccepted).Inc()
	m.EventDurationHours.Observe(e.DurationAboveThresholdHours)
}
