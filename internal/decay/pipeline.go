// Package decay detects exponential decay events in multi-element particle
// flux data. A reference element's series is scanned with sliding-window
// regression, each candidate's onset is moved back to its local flux
// minimum, candidates are gated on time spent above a flux threshold, and
// the remaining elements are classified as co-decaying or not.
package decay

import (
	"context"
	"fmt"
	"slices"
	"time"
)

// Params is the analysis configuration. The pipeline applies no defaults
// and does not validate thresholds; an unreachable slope threshold simply
// yields no events.
type Params struct {
	// ReferenceElement is the element whose decays define events (e.g. "He")
	ReferenceElement string

	// EnergyLevel is the one-based index into the cube's energy dimension
	EnergyLevel int

	// WindowSize is the regression window, in samples, for the reference element
	WindowSize int

	// WindowSizeForDecayCount is the regression window, in samples, used to
	// classify the other elements inside an event
	WindowSizeForDecayCount int

	// SlopeThreshold is the log10-flux slope per sample a window must fall below
	SlopeThreshold float64

	// RValueThreshold is the absolute correlation a window must exceed
	RValueThreshold float64

	// FluxThreshold is the reference flux level used for the duration gate
	FluxThreshold float64

	// MinDurationHours is the minimum time above FluxThreshold
	MinDurationHours float64

	// DurationRule selects how time above threshold is measured
	DurationRule DurationRule

	// Workers bounds concurrent element classification
	Workers int
}

func (p Params) detector() DetectorParams {
	return DetectorParams{
		WindowSize:      p.WindowSize,
		SlopeThreshold:  p.SlopeThreshold,
		RValueThreshold: p.RValueThreshold,
	}
}

func (p Params) classifier() ClassifierParams {
	return ClassifierParams{
		EnergyLevel: p.EnergyLevel,
		Reference:   p.ReferenceElement,
		Detector: DetectorParams{
			WindowSize:      p.WindowSizeForDecayCount,
			SlopeThreshold:  p.SlopeThreshold,
			RValueThreshold: p.RValueThreshold,
		},
		Workers: p.Workers,
	}
}

func (p Params) refiner() RefinerParams {
	return RefinerParams{
		FluxThreshold:    p.FluxThreshold,
		MinDurationHours: p.MinDurationHours,
		DurationRule:     p.DurationRule,
	}
}

// Pipeline turns a dataset into a table of decay events
type Pipeline struct {
	params   Params
	observer Observer
	refiner  *Refiner
}

// NewPipeline creates a Pipeline. A nil observer discards diagnostics.
func NewPipeline(params Params, observer Observer) *Pipeline {
	if observer == nil {
		observer = NopObserver{}
	}
	return &Pipeline{
		params:   params,
		observer: observer,
		refiner:  NewRefiner(params.refiner(), observer),
	}
}

// Run detects, refines, gates and classifies decay events of the reference
// element. Events are returned in chronological order and numbered by the
// position of their candidate segment, so numbers are stable when the
// duration gate changes. The dataset is not modified.
func (p *Pipeline) Run(ctx context.Context, ds Dataset) ([]DecayEvent, error) {
	if err := ds.Validate(); err != nil {
		return nil, err
	}

	series, err := ds.Series(p.params.EnergyLevel, p.params.ReferenceElement, time.Time{}, time.Time{})
	if err != nil {
		return nil, fmt.Errorf("reference series: %w", err)
	}

	// Non-positive flux has no logarithm, so such a series cannot decay
	events := []DecayEvent{}
	if !slices.ContainsFunc(series, func(s Sample) bool { return s.Flux > 0 }) {
		p.observer.NoValidData(p.params.ReferenceElement)
		return events, nil
	}

	segments := DetectSegments(series, p.params.detector())
	p.observer.SegmentsDetected(p.params.ReferenceElement, len(segments))

	for i, seg := range segments {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		number := i + 1

		ref, err := p.refiner.Refine(seg, series)
		if err != nil {
			return nil, fmt.Errorf("candidate %d: %w", number, err)
		}
		if !ref.Accepted {
			p.observer.CandidateRejected(number, ref.Segment, ref.DurationHours)
			continue
		}

		cls, err := ClassifyElements(ctx, ds, ref.Segment, p.params.classifier())
		if err != nil {
			return nil, fmt.Errorf("classifying candidate %d: %w", number, err)
		}

		event := NewDecayEvent(number, ref, cls)
		p.observer.EventAccepted(event)
		events = append(events, event)
	}

	return events, nil
}
