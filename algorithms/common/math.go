package common

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/stat"
)

// Summary statistics shared by the extractors, built on gonum

// Mean calculates the arithmetic mean, 0 for empty input
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}
	return stat.Mean(data, nil)
}

// PopVariance calculates the population (biased) variance, 0 for empty input
func PopVariance(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}
	return stat.PopVariance(data, nil)
}

// MeanSquare calculates mean(x^2)
func MeanSquare(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}
	return floats.Dot(data, data) / float64(len(data))
}

// CoefficientOfVariation returns popStdDev/mean and false when the mean is zero
func CoefficientOfVariation(data []float64) (float64, bool) {
	mean := Mean(data)
	if mean == 0 {
		return 0.0, false
	}
	return math.Sqrt(PopVariance(data)) / mean, true
}

// ColumnMeans averages a Time x N matrix over time
func ColumnMeans(frames [][]float64, width int) []float64 {
	means := make([]float64, width)
	if len(frames) == 0 {
		return means
	}

	for _, frame := range frames {
		for i := 0; i < width && i < len(frame); i++ {
			means[i] += frame[i]
		}
	}
	floats.Scale(1/float64(len(frames)), means)

	return means
}

// ColumnMax returns the per column maximum of a Time x N matrix
func ColumnMax(frames [][]float64, width int) []float64 {
	maxima := make([]float64, width)
	if len(frames) == 0 {
		return maxima
	}

	for i := range maxima {
		maxima[i] = math.Inf(-1)
	}
	for _, frame := range frames {
		for i := 0; i < width && i < len(frame); i++ {
			maxima[i] = math.Max(maxima[i], frame[i])
		}
	}

	return maxima
}

// FirstNonFinite returns the index of the first NaN or Inf value, or -1
func FirstNonFinite(data []float64) int {
	for i, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return i
		}
	}
	return -1
}

// Clamp constrains a value to a range
func Clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// Round rounds to the given number of decimal places; negative precision is a no-op
func Round(value float64, precision int) float64 {
	if precision < 0 {
		return value
	}
	return scalar.Round(value, precision)
}
