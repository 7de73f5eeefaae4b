package decay

import (
	"math"
	"sort"
	"time"
)

// smoothingSigma is the Gaussian smoothing width in samples applied to log flux
const smoothingSigma = 1.0

// DetectorParams controls sliding-window decay detection
type DetectorParams struct {
	// WindowSize is the number of consecutive samples fitted per window
	WindowSize int

	// SlopeThreshold is the log10-flux slope per sample a window must fall below
	SlopeThreshold float64

	// RValueThreshold is the absolute correlation a window must exceed (0-1)
	RValueThreshold float64
}

// DecaySegment is an interval classified as exponential decay. Both ends are
// timestamps of samples in the analyzed series.
type DecaySegment struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Hours returns the length of the segment in hours
func (s DecaySegment) Hours() float64 {
	return s.End.Sub(s.Start).Hours()
}

// LogFlux maps flux to log10 space. Non-positive flux becomes NaN.
func LogFlux(fluxes []float64) []float64 {
	logged := make([]float64, len(fluxes))
	for i, f := range fluxes {
		if f > 0 {
			logged[i] = math.Log10(f)
		} else {
			logged[i] = math.NaN()
		}
	}
	return logged
}

// DetectSegments finds intervals of a sentinel-free series whose smoothed log
// flux falls with a slope below p.SlopeThreshold and a correlation stronger
// than p.RValueThreshold, then merges overlapping or adjacent intervals.
func DetectSegments(series FluxSeries, p DetectorParams) []DecaySegment {
	n := len(series)
	if p.WindowSize < 2 || n <= p.WindowSize {
		return []DecaySegment{}
	}

	smoothed := GaussianFilter1D(LogFlux(series.Fluxes()), smoothingSigma)
	x := windowIndex(p.WindowSize)

	var raw []DecaySegment
	for i := 0; i < n-p.WindowSize; i++ {
		window := smoothed[i : i+p.WindowSize]
		if hasNaN(window) {
			continue
		}

		slope, r := fitWindow(x, window)
		if slope < p.SlopeThreshold && math.Abs(r) > p.RValueThreshold {
			raw = append(raw, DecaySegment{
				Start: series[i].Time,
				End:   series[i+p.WindowSize-1].Time,
			})
		}
	}

	return MergeSegments(raw, SamplingInterval(series))
}

// SamplingInterval returns the cadence of a series, taken from its first two
// samples. Series with fewer than two samples have no interval.
func SamplingInterval(series FluxSeries) time.Duration {
	if len(series) < 2 {
		return 0
	}
	return series[1].Time.Sub(series[0].Time)
}

// MergeSegments joins segments whose start falls at or before the previous
// segment's end plus tolerance. The result is sorted and disjoint. Merging an
// already merged list returns it unchanged.
func MergeSegments(raw []DecaySegment, tolerance time.Duration) []DecaySegment {
	sorted := make([]DecaySegment, len(raw))
	copy(sorted, raw)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start.Before(sorted[j].Start)
	})

	merged := make([]DecaySegment, 0, len(sorted))
	for _, seg := range sorted {
		if len(merged) > 0 {
			last := &merged[len(merged)-1]
			if !seg.Start.After(last.End.Add(tolerance)) {
				if seg.End.After(last.End) {
					last.End = seg.End
				}
				continue
			}
		}
		merged = append(merged, seg)
	}
	return merged
}
