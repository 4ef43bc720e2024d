package windowing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPeriodicHann(t *testing.T) {
	coeffs := NewPeriodicHann(8).coefficients
	require.Len(t, coeffs, 8)

	for i, c := range coeffs {
		want := 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/8))
		assert.InDelta(t, want, c, 1e-12, "coefficient %d", i)
	}
}

func TestSymmetricHannEndpoints(t *testing.T) {
	coeffs := NewHann(9, true).coefficients

	assert.InDelta(t, 0.0, coeffs[0], 1e-12)
	assert.InDelta(t, 0.0, coeffs[8], 1e-12)
	assert.InDelta(t, 1.0, coeffs[4], 1e-12)
}

func TestApplyInPlaceLengthMismatch(t *testing.T) {
	h := NewPeriodicHann(4)
	assert.Error(t, h.ApplyInPlace(make([]float64, 3)))

	signal := []float64{1, 1, 1, 1}
	require.NoError(t, h.ApplyInPlace(signal))
	assert.InDelta(t, 0.0, signal[0], 1e-12)
	assert.InDelta(t, 1.0, signal[2], 1e-12)
}

func TestDegenerateSizes(t *testing.T) {
	assert.Empty(t, NewPeriodicHann(0).coefficients)
	assert.Equal(t, []float64{1}, NewPeriodicHann(1).coefficients)
}
