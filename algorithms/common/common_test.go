package common

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummaryStatistics(t *testing.T) {
	data := []float64{1, 2, 3, 4}

	assert.Equal(t, 2.5, Mean(data))
	assert.InDelta(t, 1.25, PopVariance(data), 1e-12)
	assert.InDelta(t, 7.5, MeanSquare(data), 1e-12)

	assert.Equal(t, 0.0, Mean(nil))
	assert.Equal(t, 0.0, PopVariance(nil))
	assert.Equal(t, 0.0, MeanSquare(nil))
}

func TestCoefficientOfVariation(t *testing.T) {
	cov, ok := CoefficientOfVariation([]float64{1, 2, 3, 4})
	require.True(t, ok)
	assert.InDelta(t, math.Sqrt(1.25)/2.5, cov, 1e-12)

	_, ok = CoefficientOfVariation([]float64{0, 0, 0})
	assert.False(t, ok)

	_, ok = CoefficientOfVariation(nil)
	assert.False(t, ok)
}

func TestColumnReductions(t *testing.T) {
	frames := [][]float64{{1, -4}, {3, -2}}

	assert.Equal(t, []float64{2, -3}, ColumnMeans(frames, 2))
	assert.Equal(t, []float64{3, -2}, ColumnMax(frames, 2))
	assert.Equal(t, []float64{0, 0, 0}, ColumnMeans(nil, 3))
	assert.Equal(t, []float64{0, 0}, ColumnMax(nil, 2))
}

func TestFirstNonFinite(t *testing.T) {
	assert.Equal(t, -1, FirstNonFinite([]float64{0, 1, -1}))
	assert.Equal(t, 1, FirstNonFinite([]float64{0, math.NaN(), math.Inf(1)}))
	assert.Equal(t, 0, FirstNonFinite([]float64{math.Inf(-1)}))
}

func TestClampAndRound(t *testing.T) {
	assert.Equal(t, 0.0, Clamp(-2, 0, 1))
	assert.Equal(t, 1.0, Clamp(3, 0, 1))
	assert.Equal(t, 0.4, Clamp(0.4, 0, 1))

	assert.Equal(t, 1.23, Round(1.23456, 2))
	assert.Equal(t, 1.23456, Round(1.23456, -1))
	assert.Equal(t, 3.0, Round(2.5, 0))
	assert.Equal(t, -3.0, Round(-2.5, 0))
}

func TestResampleSignal(t *testing.T) {
	interp := NewInterpolator()

	up := interp.ResampleSignal([]float64{0, 1, 2, 3}, 1, 2)
	require.Len(t, up, 8)
	assert.InDelta(t, 0.5, up[1], 1e-12)
	assert.InDelta(t, 3.0, up[7], 1e-12)

	down := interp.ResampleSignal([]float64{0, 1, 2, 3, 4, 5}, 2, 1)
	assert.Equal(t, []float64{0, 2, 4}, down)

	same := []float64{1, 2}
	copied := interp.ResampleSignal(same, 44100, 44100)
	assert.Equal(t, same, copied)
	copied[0] = 9
	assert.Equal(t, 1.0, same[0])

	assert.Empty(t, interp.ResampleSignal(nil, 1, 2))
	assert.Empty(t, interp.ResampleSignal([]float64{1}, 0, 2))
}
