package decay

import (
	"math"
	"testing"
	"time"
)

var epoch = time.Date(2001, time.April, 2, 0, 0, 0, 0, time.UTC)

// hourlySeries builds a series with one sample per hour starting at epoch
func hourlySeries(fluxes []float64) FluxSeries {
	series := make(FluxSeries, len(fluxes))
	for i, f := range fluxes {
		series[i] = Sample{Time: epoch.Add(time.Duration(i) * time.Hour), Flux: f}
	}
	return series
}

// onsetDecay is flat at 100 for ten samples and then decays as 100*10^(-0.05t)
func onsetDecay() []float64 {
	fluxes := make([]float64, 0, 50)
	for i := 0; i < 10; i++ {
		fluxes = append(fluxes, 100.0)
	}
	for t := 0; t < 40; t++ {
		fluxes = append(fluxes, 100*math.Pow(10, -0.05*float64(t)))
	}
	return fluxes
}

var scenarioParams = DetectorParams{
	WindowSize:      5,
	SlopeThreshold:  -0.02,
	RValueThreshold: 0.9,
}

func TestDetectSegmentsOnsetDecay(t *testing.T) {
	series := hourlySeries(onsetDecay())

	segments := DetectSegments(series, scenarioParams)
	if len(segments) != 1 {
		t.Fatalf("expected 1 segment, got %d: %v", len(segments), segments)
	}

	// Smoothing with sigma 1 bends the flat-to-decay corner, so the first
	// qualifying window begins two samples before the onset at index 10
	seg := segments[0]
	if !seg.Start.Equal(series[8].Time) {
		t.Errorf("segment starts at %s, expected %s", seg.Start, series[8].Time)
	}
	if !seg.End.Equal(series[48].Time) {
		t.Errorf("segment ends at %s, expected %s", seg.End, series[48].Time)
	}
}

func TestDetectSegmentsEdgeCases(t *testing.T) {
	negative := make([]float64, 30)
	for i := range negative {
		negative[i] = -5
	}

	constant := make([]float64, 30)
	for i := range constant {
		constant[i] = 42
	}

	rising := make([]float64, 30)
	for i := range rising {
		rising[i] = math.Pow(10, 0.05*float64(i))
	}

	tests := []struct {
		name   string
		series FluxSeries
		params DetectorParams
	}{
		{name: "empty series", series: FluxSeries{}, params: scenarioParams},
		{name: "all non-positive", series: hourlySeries(negative), params: scenarioParams},
		{name: "shorter than window", series: hourlySeries(onsetDecay()[10:14]), params: scenarioParams},
		{name: "exactly one window", series: hourlySeries(onsetDecay()[10:15]), params: scenarioParams},
		{name: "constant flux", series: hourlySeries(constant), params: scenarioParams},
		{name: "rising flux", series: hourlySeries(rising), params: scenarioParams},
		{
			name:   "window too small to fit",
			series: hourlySeries(onsetDecay()),
			params: DetectorParams{WindowSize: 1, SlopeThreshold: -0.02, RValueThreshold: 0.9},
		},
		{
			name:   "slope threshold steeper than the decay",
			series: hourlySeries(onsetDecay()),
			params: DetectorParams{WindowSize: 5, SlopeThreshold: -1, RValueThreshold: 0.9},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			segments := DetectSegments(tt.series, tt.params)
			if len(segments) != 0 {
				t.Errorf("expected no segments, got %v", segments)
			}
		})
	}
}

func TestDetectSegmentsSkipsUndefinedWindows(t *testing.T) {
	fluxes := onsetDecay()
	// A non-positive sample poisons every window whose smoothed values
	// fall within the kernel radius of it.
	fluxes[30] = 0

	series := hourlySeries(fluxes)
	segments := DetectSegments(series, scenarioParams)

	if len(segments) != 2 {
		t.Fatalf("expected the gap to split the decay into 2 segments, got %d: %v", len(segments), segments)
	}
	for _, seg := range segments {
		gap := series[30].Time
		if !seg.End.Before(gap.Add(-4*time.Hour)) && !seg.Start.After(gap.Add(4*time.Hour)) {
			t.Errorf("segment %v overlaps the undefined region around %s", seg, gap)
		}
	}
}

func TestDetectSegmentsValidity(t *testing.T) {
	// Three decays separated by injections
	var fluxes []float64
	for cycle := 0; cycle < 3; cycle++ {
		for i := 0; i < 8; i++ {
			fluxes = append(fluxes, 10+float64(i)*40)
		}
		for i := 0; i < 30; i++ {
			fluxes = append(fluxes, 300*math.Pow(10, -0.04*float64(i)))
		}
	}
	series := hourlySeries(fluxes)

	segments := DetectSegments(series, DetectorParams{WindowSize: 6, SlopeThreshold: -0.02, RValueThreshold: 0.9})
	if len(segments) != 3 {
		t.Fatalf("expected 3 segments, got %d: %v", len(segments), segments)
	}

	for i, seg := range segments {
		if !seg.Start.Before(seg.End) {
			t.Errorf("segment %d: start %s not before end %s", i, seg.Start, seg.End)
		}
		if series.IndexOf(seg.Start) < 0 || series.IndexOf(seg.End) < 0 {
			t.Errorf("segment %d: endpoints %s - %s are not sample timestamps", i, seg.Start, seg.End)
		}
		if i > 0 && !segments[i-1].End.Before(seg.Start) {
			t.Errorf("segments %d and %d overlap", i-1, i)
		}
	}

	if again := MergeSegments(segments, SamplingInterval(series)); !equalSegments(again, segments) {
		t.Errorf("merging detected segments again changed them: %v -> %v", segments, again)
	}
}

func TestMergeSegments(t *testing.T) {
	at := func(h int) time.Time { return epoch.Add(time.Duration(h) * time.Hour) }

	tests := []struct {
		name      string
		raw       []DecaySegment
		tolerance time.Duration
		expected  []DecaySegment
	}{
		{
			name:      "empty",
			raw:       nil,
			tolerance: time.Hour,
			expected:  []DecaySegment{},
		},
		{
			name: "shifted windows collapse into one",
			raw: []DecaySegment{
				{Start: at(0), End: at(4)},
				{Start: at(1), End: at(5)},
				{Start: at(2), End: at(6)},
			},
			tolerance: time.Hour,
			expected:  []DecaySegment{{Start: at(0), End: at(6)}},
		},
		{
			name: "adjacent within one interval",
			raw: []DecaySegment{
				{Start: at(0), End: at(4)},
				{Start: at(5), End: at(9)},
			},
			tolerance: time.Hour,
			expected:  []DecaySegment{{Start: at(0), End: at(9)}},
		},
		{
			name: "starts three hours apart with hourly sampling stay separate",
			raw: []DecaySegment{
				{Start: at(0), End: at(1)},
				{Start: at(3), End: at(4)},
			},
			tolerance: time.Hour,
			expected: []DecaySegment{
				{Start: at(0), End: at(1)},
				{Start: at(3), End: at(4)},
			},
		},
		{
			name: "starts three hours apart with four-hour sampling merge",
			raw: []DecaySegment{
				{Start: at(0), End: at(1)},
				{Start: at(3), End: at(4)},
			},
			tolerance: 4 * time.Hour,
			expected:  []DecaySegment{{Start: at(0), End: at(4)}},
		},
		{
			name: "contained segment keeps the later end",
			raw: []DecaySegment{
				{Start: at(0), End: at(10)},
				{Start: at(2), End: at(5)},
			},
			tolerance: time.Hour,
			expected:  []DecaySegment{{Start: at(0), End: at(10)}},
		},
		{
			name: "unsorted input",
			raw: []DecaySegment{
				{Start: at(20), End: at(24)},
				{Start: at(0), End: at(4)},
			},
			tolerance: time.Hour,
			expected: []DecaySegment{
				{Start: at(0), End: at(4)},
				{Start: at(20), End: at(24)},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			merged := MergeSegments(tt.raw, tt.tolerance)
			if !equalSegments(merged, tt.expected) {
				t.Fatalf("expected %v, got %v", tt.expected, merged)
			}

			if again := MergeSegments(merged, tt.tolerance); !equalSegments(again, merged) {
				t.Errorf("merge is not idempotent: %v -> %v", merged, again)
			}
		})
	}
}

func TestSamplingInterval(t *testing.T) {
	if got := SamplingInterval(hourlySeries([]float64{1})); got != 0 {
		t.Errorf("single sample: expected 0, got %v", got)
	}
	if got := SamplingInterval(hourlySeries([]float64{1, 2, 3})); got != time.Hour {
		t.Errorf("hourly series: expected 1h, got %v", got)
	}
}

func equalSegments(a, b []DecaySegment) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Start.Equal(b[i].Start) || !a[i].End.Equal(b[i].End) {
			return false
		}
	}
	return true
}
