package decay

import (
	"errors"
	"fmt"
	"time"
)

// minShiftStep is the smallest backward step taken by the start search
const minShiftStep = 8 * time.Hour

// contiguityGap is the largest spacing between above-threshold samples that
// still counts as one contiguous run
const contiguityGap = time.Hour

// ErrSegmentOutsideSeries is returned when a segment's ends are not samples of the series
var ErrSegmentOutsideSeries = errors.New("segment endpoints are not samples of the series")

// ShiftState tracks the backward start search
type ShiftState int

const (
	// ShiftNotNeeded means the segment's start flux did not exceed its end flux
	ShiftNotNeeded ShiftState = iota

	// ShiftSearching means the search is still stepping backward
	ShiftSearching

	// ShiftShifted means at least one step was accepted and the start flux
	// no longer exceeds the end flux
	ShiftShifted

	// ShiftStoppedAtBoundary means a step would have left the available data
	ShiftStoppedAtBoundary

	// ShiftStoppedNoImprovement means a step did not lower the start flux
	ShiftStoppedNoImprovement
)

func (s ShiftState) String() string {
	switch s {
	case ShiftNotNeeded:
		return "not_needed"
	case ShiftSearching:
		return "searching"
	case ShiftShifted:
		return "shifted"
	case ShiftStoppedAtBoundary:
		return "stopped_at_boundary"
	case ShiftStoppedNoImprovement:
		return "stopped_no_improvement"
	default:
		return fmt.Sprintf("ShiftState(%d)", int(s))
	}
}

// ShiftAttempt describes one backward step of the start search
type ShiftAttempt struct {
	Step          int
	Candidate     time.Time
	CandidateFlux float64
	PreviousFlux  float64
	Accepted      bool
}

// StartShift is the outcome of the backward start search
type StartShift struct {
	Start      time.Time
	StartIndex int
	State      ShiftState
	StepSize   time.Duration
	Steps      int // accepted steps
	Attempts   int

	// AcceptedFluxes holds the start flux after each accepted step, beginning
	// with the original start flux. It is strictly decreasing.
	AcceptedFluxes []float64
}

// DurationRule selects how the time above threshold is measured
type DurationRule string

const (
	// DurationLastContiguous measures from the first above-threshold sample to
	// the later sample of the last pair of consecutive above-threshold samples
	// no more than an hour apart
	DurationLastContiguous DurationRule = "last-contiguous"

	// DurationFirstRun measures from the first above-threshold sample to the
	// end of the run that starts there; any gap over an hour ends the run
	DurationFirstRun DurationRule = "first-run"
)

// RefinerParams controls start refinement and the duration gate
type RefinerParams struct {
	// FluxThreshold is the flux the reference element must stay at or above
	FluxThreshold float64

	// MinDurationHours is the shortest time above threshold an event may have
	MinDurationHours float64

	// DurationRule selects how time above threshold is measured
	DurationRule DurationRule
}

// Refinement is a candidate segment after start refinement and measurement
type Refinement struct {
	Segment       DecaySegment
	Shift         StartShift
	DurationHours float64
	Accepted      bool
}

// Refiner moves candidate starts back to their local flux minimum and gates
// candidates on time spent above a flux threshold
type Refiner struct {
	params   RefinerParams
	observer Observer
}

// NewRefiner creates a Refiner. A nil observer discards diagnostics.
func NewRefiner(params RefinerParams, observer Observer) *Refiner {
	if observer == nil {
		observer = NopObserver{}
	}
	return &Refiner{
		params:   params,
		observer: observer,
	}
}

// ShiftStep returns the backward step used for a segment: one twelfth of its
// span truncated to whole hours, but never less than eight hours
func ShiftStep(seg DecaySegment) time.Duration {
	step := time.Duration(int(seg.Hours()/12)) * time.Hour
	if step < minShiftStep {
		return minShiftStep
	}
	return step
}

// ShiftStart searches backward from the segment start while the start flux
// exceeds the end flux. Each step snaps to the last sample at or before
// start-step and is taken only if it lowers the start flux. The search ends
// at the beginning of the data at the latest.
func (r *Refiner) ShiftStart(seg DecaySegment, series FluxSeries) (StartShift, error) {
	startIdx := series.IndexOf(seg.Start)
	endIdx := series.IndexOf(seg.End)
	if startIdx < 0 || endIdx < 0 {
		return StartShift{}, fmt.Errorf("%w: %s - %s", ErrSegmentOutsideSeries, seg.Start, seg.End)
	}

	startFlux := series[startIdx].Flux
	endFlux := series[endIdx].Flux

	shift := StartShift{
		Start:      seg.Start,
		StartIndex: startIdx,
		State:      ShiftNotNeeded,
	}
	if startFlux <= endFlux {
		return shift, nil
	}

	shift.StepSize = ShiftStep(seg)
	shift.State = ShiftSearching
	shift.AcceptedFluxes = []float64{startFlux}
	r.observer.ShiftStarted(seg, startFlux, endFlux, shift.StepSize)

	for startFlux > endFlux {
		idx := series.LastAtOrBefore(series[startIdx].Time.Add(-shift.StepSize))
		if idx < 0 {
			shift.State = ShiftStoppedAtBoundary
			break
		}

		shift.Attempts++
		attempt := ShiftAttempt{
			Step:          shift.Attempts,
			Candidate:     series[idx].Time,
			CandidateFlux: series[idx].Flux,
			PreviousFlux:  startFlux,
			Accepted:      series[idx].Flux < startFlux,
		}
		r.observer.ShiftAttempted(attempt)

		if !attempt.Accepted {
			shift.State = ShiftStoppedNoImprovement
			break
		}

		startIdx = idx
		startFlux = series[idx].Flux
		shift.Start = series[idx].Time
		shift.StartIndex = idx
		shift.Steps++
		shift.State = ShiftShifted
		shift.AcceptedFluxes = append(shift.AcceptedFluxes, startFlux)
	}

	r.observer.ShiftStopped(shift)
	return shift, nil
}

// Refine shifts the segment start, measures the time above the flux
// threshold between the refined start and the end, and applies the minimum
// duration gate.
func (r *Refiner) Refine(seg DecaySegment, series FluxSeries) (Refinement, error) {
	shift, err := r.ShiftStart(seg, series)
	if err != nil {
		return Refinement{}, err
	}

	endIdx := series.IndexOf(seg.End)
	duration := DurationAboveThreshold(series[shift.StartIndex:endIdx], r.params.FluxThreshold, r.params.DurationRule)

	return Refinement{
		Segment:       DecaySegment{Start: shift.Start, End: seg.End},
		Shift:         shift,
		DurationHours: duration,
		Accepted:      duration >= r.params.MinDurationHours,
	}, nil
}

// DurationAboveThreshold returns the hours the series spends at or above
// threshold, measured according to rule. Fewer than two samples at or above
// the threshold give zero.
func DurationAboveThreshold(series FluxSeries, threshold float64, rule DurationRule) float64 {
	var above []time.Time
	for _, s := range series {
		if s.Flux >= threshold {
			above = append(above, s.Time)
		}
	}
	if len(above) < 2 {
		return 0
	}

	switch rule {
	case DurationFirstRun:
		end := 0
		for end+1 < len(above) && above[end+1].Sub(above[end]) <= contiguityGap {
			end++
		}
		return above[end].Sub(above[0]).Hours()
	default:
		last := -1
		for i := 0; i+1 < len(above); i++ {
			if above[i+1].Sub(above[i]) <= contiguityGap {
				last = i
			}
		}
		if last < 0 {
			return 0
		}
		return above[last+1].Sub(above[0]).Hours()
	}
}
