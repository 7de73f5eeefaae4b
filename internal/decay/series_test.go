package decay

import (
	"errors"
	"testing"
	"time"
)

func TestDatasetSeries(t *testing.T) {
	ds := newDataset(2, map[string][]float64{
		"He": {1, SentinelFlux, 3, 4, SentinelFlux, 6},
		"O":  {SentinelFlux, SentinelFlux, SentinelFlux, SentinelFlux, SentinelFlux, SentinelFlux},
	})

	tests := []struct {
		name     string
		element  string
		level    int
		from, to time.Time
		expected []float64
		err      error
	}{
		{name: "sentinels removed", element: "He", level: 1, expected: []float64{1, 3, 4, 6}},
		{name: "inclusive window", element: "He", level: 1, from: ds.Times[2], to: ds.Times[5], expected: []float64{3, 4, 6}},
		{name: "open start", element: "He", level: 1, to: ds.Times[2], expected: []float64{1, 3}},
		{name: "window between samples", element: "He", level: 1, from: ds.Times[4].Add(time.Minute), to: ds.Times[5].Add(-time.Minute), expected: []float64{}},
		{name: "all sentinel", element: "O", level: 1, expected: []float64{}},
		{name: "unfilled energy level", element: "He", level: 2, expected: []float64{}},
		{name: "unknown element", element: "Xe", level: 1, err: ErrUnknownElement},
		{name: "energy level too high", element: "He", level: 3, err: ErrEnergyLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			series, err := ds.Series(tt.level, tt.element, tt.from, tt.to)
			if tt.err != nil {
				if !errors.Is(err, tt.err) {
					t.Fatalf("expected %v, got %v", tt.err, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			fluxes := series.Fluxes()
			if len(fluxes) != len(tt.expected) {
				t.Fatalf("expected %v, got %v", tt.expected, fluxes)
			}
			for i := range fluxes {
				if fluxes[i] != tt.expected[i] {
					t.Errorf("sample %d: expected %f, got %f", i, tt.expected[i], fluxes[i])
				}
			}
		})
	}
}

func TestFluxSeriesLookup(t *testing.T) {
	series := FluxSeries{
		{Time: epoch, Flux: 1},
		{Time: epoch.Add(time.Hour), Flux: 2},
		{Time: epoch.Add(3 * time.Hour), Flux: 3},
	}

	tests := []struct {
		t          time.Time
		index      int
		atOrBefore int
	}{
		{t: epoch.Add(-time.Minute), index: -1, atOrBefore: -1},
		{t: epoch, index: 0, atOrBefore: 0},
		{t: epoch.Add(2 * time.Hour), index: -1, atOrBefore: 1},
		{t: epoch.Add(3 * time.Hour), index: 2, atOrBefore: 2},
		{t: epoch.Add(5 * time.Hour), index: -1, atOrBefore: 2},
	}

	for _, tt := range tests {
		if got := series.IndexOf(tt.t); got != tt.index {
			t.Errorf("IndexOf(%s) = %d, expected %d", tt.t, got, tt.index)
		}
		if got := series.LastAtOrBefore(tt.t); got != tt.atOrBefore {
			t.Errorf("LastAtOrBefore(%s) = %d, expected %d", tt.t, got, tt.atOrBefore)
		}
	}
}

func TestDatasetValidate(t *testing.T) {
	ds := newDataset(1, map[string][]float64{"He": {1, 2, 3}})
	if err := ds.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ds.Elements = ElementMapping{"He": 0, "O": 1}
	if err := ds.Validate(); !errors.Is(err, ErrShape) {
		t.Errorf("column outside the cube: expected ErrShape, got %v", err)
	}
}
