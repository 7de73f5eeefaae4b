// Package sis loads Solar Isotope Spectrometer element flux files into a
// decay dataset. Each file holds one element: a fixed-size text header
// followed by rows of a fractional year and one flux column per energy level.
package sis

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/chrissnell/fluxdecay/internal/decay"
	"go.uber.org/zap"
)

const (
	// DefaultHeaderLines is the header length of SIS level 2 text files
	DefaultHeaderLines = 25

	// DefaultEnergyLevels is the number of SIS energy channels per element
	DefaultEnergyLevels = 8

	fileExtension = ".txt"
	daysPerYear   = 365
)

// ErrNoFiles is returned when a folder holds no data files
var ErrNoFiles = errors.New("no SIS data files found")

// Loader reads a folder of SIS files
type Loader struct {
	HeaderLines  int
	EnergyLevels int

	logger *zap.SugaredLogger
}

// NewLoader creates a Loader with the SIS defaults. A nil logger is replaced
// with a no-op logger.
func NewLoader(logger *zap.SugaredLogger) *Loader {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Loader{
		HeaderLines:  DefaultHeaderLines,
		EnergyLevels: DefaultEnergyLevels,
		logger:       logger,
	}
}

// LoadFolder reads every .txt file in dir, in name order, into one dataset.
// The element column of each file is its position in that order and the time
// axis is taken from the first file.
func (l *Loader) LoadFolder(dir string) (decay.Dataset, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return decay.Dataset{}, fmt.Errorf("reading data folder %s: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), fileExtension) {
			continue
		}
		files = append(files, entry.Name())
	}
	sort.Strings(files)

	if len(files) == 0 {
		return decay.Dataset{}, fmt.Errorf("%w in %s", ErrNoFiles, dir)
	}

	elements := make(decay.ElementMapping, len(files))
	var times []time.Time
	fluxes := make([][][]float64, len(files))

	for i, name := range files {
		element := ElementName(name)
		if _, dup := elements[element]; dup {
			return decay.Dataset{}, fmt.Errorf("element %s appears in more than one file (%s)", element, name)
		}
		elements[element] = i

		fileTimes, rows, err := l.loadFile(filepath.Join(dir, name))
		if err != nil {
			return decay.Dataset{}, err
		}

		if times == nil {
			times = fileTimes
		} else if len(rows) != len(times) {
			return decay.Dataset{}, fmt.Errorf("%w: %s has %d rows, expected %d", decay.ErrShape, name, len(rows), len(times))
		}
		fluxes[i] = rows

		l.logger.Infof("loaded %d samples for element %s from %s", len(rows), element, name)
	}

	cube := decay.NewFluxCube(l.EnergyLevels, len(times), len(files))
	for el, rows := range fluxes {
		for t, row := range rows {
			for e, flux := range row {
				cube.Set(e, t, el, flux)
			}
		}
	}

	return decay.Dataset{
		Cube:     cube,
		Times:    times,
		Elements: elements,
	}, nil
}

func (l *Loader) loadFile(path string) ([]time.Time, [][]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	times, rows, err := Parse(f, l.HeaderLines, l.EnergyLevels)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return times, rows, nil
}

// Parse reads one SIS file. The first headerLines lines are skipped, as are
// blank lines and lines starting with '#'. Each remaining row must hold a
// fractional year and at least energyLevels flux values; extra columns are
// ignored.
func Parse(r io.Reader, headerLines, energyLevels int) ([]time.Time, [][]float64, error) {
	scanner := bufio.NewScanner(r)

	var times []time.Time
	var rows [][]float64

	line := 0
	for scanner.Scan() {
		line++
		if line <= headerLines {
			continue
		}

		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		fields := strings.Fields(text)
		if len(fields) < energyLevels+1 {
			return nil, nil, fmt.Errorf("line %d: expected %d columns, found %d", line, energyLevels+1, len(fields))
		}

		year, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("line %d: invalid fractional year: %w", line, err)
		}

		row := make([]float64, energyLevels)
		for e := range row {
			row[e], err = strconv.ParseFloat(fields[e+1], 64)
			if err != nil {
				return nil, nil, fmt.Errorf("line %d: invalid flux in column %d: %w", line, e+2, err)
			}
		}

		times = append(times, FractionalYearToTime(year))
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, err
	}

	return times, rows, nil
}

// FractionalYearToTime converts a fractional year to UTC. The fraction is
// scaled by 365 days regardless of leap years and the result is rounded to
// the nearest second.
func FractionalYearToTime(fy float64) time.Time {
	year := math.Floor(fy)
	offset := (fy - year) * daysPerYear * 24 * float64(time.Hour)
	start := time.Date(int(year), time.January, 1, 0, 0, 0, 0, time.UTC)
	return start.Add(time.Duration(offset)).Round(time.Second)
}

// ElementName derives the element from a file name: the text before the
// first underscore with only its first letter upper case
func ElementName(filename string) string {
	base := strings.TrimSuffix(filepath.Base(filename), fileExtension)
	base, _, _ = strings.Cut(base, "_")
	if base == "" {
		return base
	}

	runes := []rune(strings.ToLower(base))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
