package decay

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// SentinelFlux marks an invalid or missing flux sample in instrument data
const SentinelFlux = -999.9

var (
	// ErrUnknownElement is returned when an element is not present in the mapping
	ErrUnknownElement = errors.New("unknown element")

	// ErrEnergyLevel is returned when an energy level is outside the cube
	ErrEnergyLevel = errors.New("energy level out of range")

	// ErrShape is returned when the cube, time axis and element mapping disagree
	ErrShape = errors.New("inconsistent dataset shape")
)

// Sample is a single flux measurement for one element at one energy level
type Sample struct {
	Time time.Time `json:"time"`
	Flux float64   `json:"flux"`
}

// FluxSeries is an ordered run of samples with strictly increasing times
type FluxSeries []Sample

// Times returns the timestamps of the series
func (s FluxSeries) Times() []time.Time {
	times := make([]time.Time, len(s))
	for i, sample := range s {
		times[i] = sample.Time
	}
	return times
}

// Fluxes returns the flux values of the series
func (s FluxSeries) Fluxes() []float64 {
	fluxes := make([]float64, len(s))
	for i, sample := range s {
		fluxes[i] = sample.Flux
	}
	return fluxes
}

// IndexOf returns the index of the sample taken exactly at t, or -1
func (s FluxSeries) IndexOf(t time.Time) int {
	i := sort.Search(len(s), func(i int) bool { return !s[i].Time.Before(t) })
	if i < len(s) && s[i].Time.Equal(t) {
		return i
	}
	return -1
}

// LastAtOrBefore returns the index of the last sample taken at or before t, or -1
func (s FluxSeries) LastAtOrBefore(t time.Time) int {
	return sort.Search(len(s), func(i int) bool { return s[i].Time.After(t) }) - 1
}

// ValidSamples drops sentinel samples. The input is not modified.
func ValidSamples(samples []Sample) FluxSeries {
	valid := make(FluxSeries, 0, len(samples))
	for _, sample := range samples {
		if sample.Flux == SentinelFlux {
			continue
		}
		valid = append(valid, sample)
	}
	return valid
}

// ElementMapping maps element names to their column in the flux cube
type ElementMapping map[string]int

// Names returns the element names in sorted order
func (m ElementMapping) Names() []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FluxCube holds flux values indexed by (energy level, time index, element index).
// Energy levels are zero-based internally.
type FluxCube struct {
	energies int
	times    int
	elements int
	values   []float64
}

// NewFluxCube allocates a cube with every cell set to SentinelFlux
func NewFluxCube(energies, times, elements int) *FluxCube {
	c := &FluxCube{
		energies: energies,
		times:    times,
		elements: elements,
		values:   make([]float64, energies*times*elements),
	}
	for i := range c.values {
		c.values[i] = SentinelFlux
	}
	return c
}

// Dims returns the cube dimensions as (energies, times, elements)
func (c *FluxCube) Dims() (int, int, int) {
	return c.energies, c.times, c.elements
}

func (c *FluxCube) offset(energy, t, element int) int {
	return (energy*c.times+t)*c.elements + element
}

// At returns the flux at a zero-based energy index, time index and element index
func (c *FluxCube) At(energy, t, element int) float64 {
	return c.values[c.offset(energy, t, element)]
}

// Set stores the flux at a zero-based energy index, time index and element index
func (c *FluxCube) Set(energy, t, element int, flux float64) {
	c.values[c.offset(energy, t, element)] = flux
}

// Dataset bundles what a flux data source provides: the cube, its time axis
// and the element mapping.
type Dataset struct {
	Cube     *FluxCube
	Times    []time.Time
	Elements ElementMapping
}

// Validate checks that the time axis and the element mapping fit the cube
func (ds Dataset) Validate() error {
	if ds.Cube == nil {
		return fmt.Errorf("%w: no flux cube", ErrShape)
	}
	_, times, elements := ds.Cube.Dims()
	if len(ds.Times) != times {
		return fmt.Errorf("%w: time axis has %d entries, cube has %d", ErrShape, len(ds.Times), times)
	}
	for name, idx := range ds.Elements {
		if idx < 0 || idx >= elements {
			return fmt.Errorf("%w: element %s maps to column %d of %d", ErrShape, name, idx, elements)
		}
	}
	return nil
}

// checkEnergyLevel verifies a one-based energy level against the cube
func (ds Dataset) checkEnergyLevel(level int) error {
	energies, _, _ := ds.Cube.Dims()
	if level < 1 || level > energies {
		return fmt.Errorf("%w: level %d, cube has %d", ErrEnergyLevel, level, energies)
	}
	return nil
}

// Series extracts the sentinel-filtered series for an element at a one-based
// energy level. When from and to are non-zero, only samples inside the
// inclusive window [from, to] are returned.
func (ds Dataset) Series(energyLevel int, element string, from, to time.Time) (FluxSeries, error) {
	idx, ok := ds.Elements[element]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownElement, element)
	}
	if err := ds.checkEnergyLevel(energyLevel); err != nil {
		return nil, err
	}

	raw := make([]Sample, 0, len(ds.Times))
	for t, ts := range ds.Times {
		if !from.IsZero() && ts.Before(from) {
			continue
		}
		if !to.IsZero() && ts.After(to) {
			continue
		}
		raw = append(raw, Sample{Time: ts, Flux: ds.Cube.At(energyLevel-1, t, idx)})
	}
	return ValidSamples(raw), nil
}
