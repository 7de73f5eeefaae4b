package decay

import (
	"time"

	"go.uber.org/zap"
)

// Observer receives diagnostics from the pipeline and the event refiner.
// Implementations must be safe for concurrent use.
type Observer interface {
	// NoValidData is reported when an element has no valid samples to analyze
	NoValidData(element string)

	// SegmentsDetected is reported once per analyzed reference series
	SegmentsDetected(element string, segments int)

	// ShiftStarted is reported when a candidate's start flux exceeds its end flux
	ShiftStarted(seg DecaySegment, startFlux, endFlux float64, step time.Duration)

	// ShiftAttempted is reported for every backward step of the start search
	ShiftAttempted(attempt ShiftAttempt)

	// ShiftStopped is reported when a start search ends
	ShiftStopped(shift StartShift)

	// CandidateRejected is reported when a candidate fails the duration gate
	CandidateRejected(number int, seg DecaySegment, durationHours float64)

	// EventAccepted is reported for every emitted event
	EventAccepted(event DecayEvent)
}

// NopObserver discards all diagnostics
type NopObserver struct{}

func (NopObserver) NoValidData(string) {}
func (NopObserver) SegmentsDetected(string, int) {}
func (NopObserver) ShiftStarted(DecaySegment, float64, float64, time.Duration) {}
func (NopObserver) ShiftAttempted(ShiftAttempt) {}
func (NopObserver) ShiftStopped(StartShift) {}
func (NopObserver) CandidateRejected(int, DecaySegment, float64) {}
func (NopObserver) EventAccepted(DecayEvent) {}

// LogObserver writes diagnostics to a zap logger
type LogObserver struct {
	logger *zap.SugaredLogger
}

// NewLogObserver creates an Observer backed by logger
func NewLogObserver(logger *zap.SugaredLogger) *LogObserver {
	return &LogObserver{logger: logger}
}

func (o *LogObserver) NoValidData(element string) {
	o.logger.Infow("no valid data", "element", element)
}

func (o *LogObserver) SegmentsDetected(element string, segments int) {
	o.logger.Infow("decay segments detected", "element", element, "segments", segments)
}

func (o *LogObserver) ShiftStarted(seg DecaySegment, startFlux, endFlux float64, step time.Duration) {
	o.logger.Debugw("start shifting",
		"start", seg.Start,
		"end", seg.End,
		"start_flux", startFlux,
		"end_flux", endFlux,
		"step", step)
}

func (o *LogObserver) ShiftAttempted(a ShiftAttempt) {
	o.logger.Debugw("shift attempt",
		"step", a.Step,
		"current_start_flux", a.PreviousFlux,
		"shifted_start", a.Candidate,
		"new_start_flux", a.CandidateFlux,
		"accepted", a.Accepted)
}

func (o *LogObserver) ShiftStopped(s StartShift) {
	switch s.State {
	case ShiftStoppedAtBoundary:
		o.logger.Infow("reached the beginning of the data, stopping shift", "start", s.Start, "steps", s.Steps)
	case ShiftStoppedNoImprovement:
		o.logger.Debugw("flux increased, stopping shift", "start", s.Start, "steps", s.Steps)
	default:
		o.logger.Debugw("shift finished", "state", s.State.String(), "start", s.Start, "steps", s.Steps)
	}
}

func (o *LogObserver) CandidateRejected(number int, seg DecaySegment, durationHours float64) {
	o.logger.Debugw("candidate below minimum duration",
		"candidate", number,
		"start", seg.Start,
		"end", seg.End,
		"duration_hours", durationHours)
}

func (o *LogObserver) EventAccepted(e DecayEvent) {
	o.logger.Infow("decay event",
		"event", e.Number,
		"start", e.Start,
		"end", e.End,
		"duration_hours", e.DurationAboveThresholdHours,
		"elements_decaying", e.ElementsDecaying)
}

// MultiObserver fans diagnostics out to several observers
type MultiObserver []Observer

func (m MultiObserver) NoValidData(element string) {
	for _, o := range m {
		o.NoValidData(element)
	}
}

func (m MultiObserver) SegmentsDetected(element string, segments int) {
	for _, o := range m {
		o.SegmentsDetected(element, segments)
	}
}

func (m MultiObserver) ShiftStarted(seg DecaySegment, startFlux, endFlux float64, step time.Duration) {
	for _, o := range m {
		o.ShiftStarted(seg, startFlux, endFlux, step)
	}
}

func (m MultiObserver) ShiftAttempted(a ShiftAttempt) {
	for _, o := range m {
		o.ShiftAttempted(a)
	}
}

func (m MultiObserver) ShiftStopped(s StartShift) {
	for _, o := range m {
		o.ShiftStopped(s)
	}
}

func (m MultiObserver) CandidateRejected(number int, seg DecaySegment, durationHours float64) {
	for _, o := range m {
		o.CandidateRejected(number, seg, durationHours)
	}
}

func (m MultiObserver) EventAccepted(e DecayEvent) {
	for _, o := range m {
		o.EventAccepted(e)
	}
}
