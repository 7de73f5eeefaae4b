package decay

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// gaussianTruncate is the kernel half-width in standard deviations
const gaussianTruncate = 4.0

// GaussianKernel returns the normalized Gaussian weights for the given sigma,
// truncated at gaussianTruncate standard deviations. The kernel has
// 2*radius+1 taps where radius = int(truncate*sigma + 0.5).
func GaussianKernel(sigma float64) []float64 {
	radius := int(gaussianTruncate*sigma + 0.5)
	kernel := make([]float64, 2*radius+1)
	for i := -radius; i <= radius; i++ {
		x := float64(i)
		kernel[i+radius] = math.Exp(-0.5 * x * x / (sigma * sigma))
	}
	floats.Scale(1/floats.Sum(kernel), kernel)
	return kernel
}

// GaussianFilter1D smooths data with a truncated Gaussian kernel (scipy.ndimage.gaussian_filter1d compatible).
// Samples beyond either end are taken from the half-sample symmetric
// reflection of the data (d c b a | a b c d | d c b a). A NaN anywhere
// under the kernel makes the output NaN.
func GaussianFilter1D(data []float64, sigma float64) []float64 {
	n := len(data)
	if n == 0 {
		return []float64{}
	}

	kernel := GaussianKernel(sigma)
	radius := len(kernel) / 2
	result := make([]float64, n)

	for i := 0; i < n; i++ {
		sum := 0.0
		for k := -radius; k <= radius; k++ {
			sum += kernel[k+radius] * data[reflectIndex(i+k, n)]
		}
		result[i] = sum
	}
	return result
}

// reflectIndex folds an out-of-range index back into [0, n) using
// half-sample symmetric reflection, repeating as often as needed.
func reflectIndex(idx, n int) int {
	period := 2 * n
	m := idx % period
	if m < 0 {
		m += period
	}
	if m >= n {
		m = period - 1 - m
	}
	return m
}
