package decay

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// ClassifierParams controls per-element decay classification
type ClassifierParams struct {
	// EnergyLevel is the one-based energy level to analyze
	EnergyLevel int

	// Reference is the element that triggered the event; it is never classified
	Reference string

	// Detector holds the segment detection settings for co-decaying elements
	Detector DetectorParams

	// Workers bounds how many elements are analyzed concurrently. Values
	// below one analyze elements sequentially.
	Workers int
}

// Classification splits the non-reference elements by whether they decay
// inside an event window. Both lists are sorted.
type Classification struct {
	Decaying    []string
	NonDecaying []string
}

// ClassifyElements runs segment detection for every element except the
// reference inside the inclusive window and reports which elements show at
// least one decay segment. Elements without valid samples in the window are
// non-decaying.
func ClassifyElements(ctx context.Context, ds Dataset, window DecaySegment, p ClassifierParams) (Classification, error) {
	if err := ds.checkEnergyLevel(p.EnergyLevel); err != nil {
		return Classification{}, err
	}

	var names []string
	for _, name := range ds.Elements.Names() {
		if name != p.Reference {
			names = append(names, name)
		}
	}

	decaying := make([]bool, len(names))

	g, ctx := errgroup.WithContext(ctx)
	workers := p.Workers
	if workers < 1 {
		workers = 1
	}
	g.SetLimit(workers)

	for i, name := range names {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			series, err := ds.Series(p.EnergyLevel, name, window.Start, window.End)
			if err != nil {
				return err
			}
			if len(series) == 0 {
				return nil
			}
			decaying[i] = len(DetectSegments(series, p.Detector)) > 0
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Classification{}, err
	}

	cls := Classification{
		Decaying:    []string{},
		NonDecaying: []string{},
	}
	for i, name := range names {
		if decaying[i] {
			cls.Decaying = append(cls.Decaying, name)
		} else {
			cls.NonDecaying = append(cls.NonDecaying, name)
		}
	}
	return cls, nil
}
