package decay

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// windowIndex returns 0..n-1 as float64, the regression abscissa for a window
func windowIndex(n int) []float64 {
	x := make([]float64, n)
	for i := range x {
		x[i] = float64(i)
	}
	return x
}

// fitWindow performs an ordinary least-squares fit of y against x and returns
// the slope and the Pearson correlation coefficient. A window with no
// variance yields a NaN correlation.
func fitWindow(x, y []float64) (slope, r float64) {
	_, slope = stat.LinearRegression(x, y, nil, false)
	r = stat.Correlation(x, y, nil)
	return slope, r
}

// hasNaN reports whether any value is NaN
func hasNaN(values []float64) bool {
	for _, v := range values {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}
