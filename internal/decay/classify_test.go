package decay

import (
	"context"
	"errors"
	"math"
	"reflect"
	"testing"
)

// newDataset builds an hourly dataset with one column per element. Only the
// first energy level is filled; any other levels stay at the sentinel.
func newDataset(energies int, fluxes map[string][]float64) Dataset {
	elements := make(ElementMapping)
	n := 0
	for name, f := range fluxes {
		elements[name] = 0
		if len(f) > n {
			n = len(f)
		}
	}
	for i, name := range elements.Names() {
		elements[name] = i
	}

	cube := NewFluxCube(energies, n, len(elements))
	for name, f := range fluxes {
		for t, v := range f {
			cube.Set(0, t, elements[name], v)
		}
	}

	return Dataset{
		Cube:     cube,
		Times:    hourlySeries(make([]float64, n)).Times(),
		Elements: elements,
	}
}

func constantFlux(n int, flux float64) []float64 {
	f := make([]float64, n)
	for i := range f {
		f[i] = flux
	}
	return f
}

func classificationDataset() Dataset {
	decay := onsetDecay()
	n := len(decay)

	// Ne only decays before the event window
	ne := constantFlux(n, SentinelFlux)
	for i := 0; i < 10; i++ {
		ne[i] = 100 * math.Pow(10, -0.1*float64(i))
	}

	return newDataset(2, map[string][]float64{
		"He": decay,
		"O":  decay,
		"Fe": constantFlux(n, 50),
		"C":  constantFlux(n, SentinelFlux),
		"Ne": ne,
	})
}

func TestClassifyElements(t *testing.T) {
	ds := classificationDataset()
	window := DecaySegment{Start: ds.Times[10], End: ds.Times[len(ds.Times)-1]}

	for _, workers := range []int{0, 1, 4} {
		cls, err := ClassifyElements(context.Background(), ds, window, ClassifierParams{
			EnergyLevel: 1,
			Reference:   "He",
			Detector:    scenarioParams,
			Workers:     workers,
		})
		if err != nil {
			t.Fatalf("workers=%d: unexpected error: %v", workers, err)
		}

		if want := []string{"O"}; !reflect.DeepEqual(cls.Decaying, want) {
			t.Errorf("workers=%d: decaying = %v, expected %v", workers, cls.Decaying, want)
		}
		if want := []string{"C", "Fe", "Ne"}; !reflect.DeepEqual(cls.NonDecaying, want) {
			t.Errorf("workers=%d: non-decaying = %v, expected %v", workers, cls.NonDecaying, want)
		}
	}
}

func TestClassifyElementsOtherEnergyLevel(t *testing.T) {
	ds := classificationDataset()
	window := DecaySegment{Start: ds.Times[0], End: ds.Times[len(ds.Times)-1]}

	// Level 2 holds only sentinels, so nothing decays there
	cls, err := ClassifyElements(context.Background(), ds, window, ClassifierParams{
		EnergyLevel: 2,
		Reference:   "He",
		Detector:    scenarioParams,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cls.Decaying) != 0 {
		t.Errorf("expected no decaying elements, got %v", cls.Decaying)
	}
	if want := []string{"C", "Fe", "Ne", "O"}; !reflect.DeepEqual(cls.NonDecaying, want) {
		t.Errorf("non-decaying = %v, expected %v", cls.NonDecaying, want)
	}
}

func TestClassifyElementsOnlyReference(t *testing.T) {
	ds := newDataset(1, map[string][]float64{"He": onsetDecay()})
	window := DecaySegment{Start: ds.Times[0], End: ds.Times[len(ds.Times)-1]}

	cls, err := ClassifyElements(context.Background(), ds, window, ClassifierParams{
		EnergyLevel: 1,
		Reference:   "He",
		Detector:    scenarioParams,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cls.Decaying == nil || cls.NonDecaying == nil {
		t.Errorf("expected empty, non-nil lists, got %#v", cls)
	}
	if len(cls.Decaying)+len(cls.NonDecaying) != 0 {
		t.Errorf("expected no classified elements, got %#v", cls)
	}
}

func TestClassifyElementsErrors(t *testing.T) {
	ds := classificationDataset()
	window := DecaySegment{Start: ds.Times[0], End: ds.Times[len(ds.Times)-1]}

	_, err := ClassifyElements(context.Background(), ds, window, ClassifierParams{
		EnergyLevel: 3,
		Reference:   "He",
		Detector:    scenarioParams,
	})
	if !errors.Is(err, ErrEnergyLevel) {
		t.Errorf("energy level 3: expected ErrEnergyLevel, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = ClassifyElements(ctx, ds, window, ClassifierParams{
		EnergyLevel: 1,
		Reference:   "He",
		Detector:    scenarioParams,
		Workers:     2,
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("canceled context: expected context.Canceled, got %v", err)
	}
}
