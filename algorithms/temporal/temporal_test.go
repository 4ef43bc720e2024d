package temporal

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func constantFrames(values []float64, bands int) [][]float64 {
	frames := make([][]float64, len(values))
	for t, v := range values {
		frames[t] = make([]float64, bands)
		for b := range frames[t] {
			frames[t][b] = v
		}
	}
	return frames
}

func TestOnsetStrengthPadding(t *testing.T) {
	ons := NewOnsetStrength(2048, 512)
	assert.Equal(t, 3, ons.padWidth)

	// rise from 0 dB to 5 dB between frames 2 and 3
	envelope := ons.Compute(constantFrames([]float64{0, 0, 0, 5, 5, 5}, 4))
	assert.Equal(t, []float64{0, 0, 0, 0, 0, 5}, envelope)
}

func TestOnsetStrengthIgnoresDecreases(t *testing.T) {
	ons := NewOnsetStrength(2, 1) // pad of 2
	envelope := ons.Compute(constantFrames([]float64{10, 0, 4, 4}, 2))
	assert.Equal(t, []float64{0, 0, 0, 4}, envelope)
}

func TestOnsetStrengthShortInput(t *testing.T) {
	ons := NewOnsetStrength(2048, 512)
	assert.Empty(t, ons.Compute(nil))
	assert.Equal(t, []float64{0}, ons.Compute(constantFrames([]float64{3}, 2)))
}

func TestTempoOfImpulseTrain(t *testing.T) {
	const (
		sampleRate = 22050
		hopSize    = 512
		period     = 22
	)
	envelope := make([]float64, 500)
	for i := 0; i < len(envelope); i += period {
		envelope[i] = 1
	}

	tempo := NewTempoEstimation(sampleRate, hopSize).EstimateTempo(envelope)
	assert.InDelta(t, 60.0*sampleRate/(hopSize*period), tempo, 1e-9)
}

func TestTempoPrefersPriorBetweenOctaves(t *testing.T) {
	// impulses every 43 frames (about 60 BPM); multiples of the period score lower under the prior
	envelope := make([]float64, 1000)
	for i := 0; i < len(envelope); i += 43 {
		envelope[i] = 1
	}

	tempo := NewTempoEstimation(22050, 512).EstimateTempo(envelope)
	assert.InDelta(t, 60.0*22050/(512*43), tempo, 1e-9)
}

func TestTempoOfSilence(t *testing.T) {
	te := NewTempoEstimation(22050, 512)
	assert.Equal(t, 0.0, te.EstimateTempo(make([]float64, 200)))
	assert.Equal(t, 0.0, te.EstimateTempo(nil))
	assert.Equal(t, 0.0, te.EstimateTempo([]float64{1}))
}

func TestTempoRespectsMaxBPM(t *testing.T) {
	// constant envelope correlates equally at every lag, so the prior decides
	envelope := make([]float64, 400)
	for i := range envelope {
		envelope[i] = 1
	}

	tempo := NewTempoEstimation(22050, 512).EstimateTempo(envelope)
	assert.LessOrEqual(t, tempo, DefaultMaxBPM)
	assert.Greater(t, tempo, 0.0)
}

func TestSetPriorPicksTempoOctave(t *testing.T) {
	envelope := make([]float64, 440)
	for i := 0; i < len(envelope); i += 22 {
		envelope[i] = 1
	}

	te := NewTempoEstimation(22050, 512)
	assert.InDelta(t, 60.0*22050/(512*22), te.EstimateTempo(envelope), 1e-9)

	te.SetPrior(60, 0)
	assert.Equal(t, DefaultStdBPM, te.stdBPM)
	assert.InDelta(t, 60.0*22050/(512*44), te.EstimateTempo(envelope), 1e-9)
}

func TestClassifyTempoCategory(t *testing.T) {
	tests := []struct {
		tempo    float64
		expected string
	}{
		{0, "none"},
		{45, "very_slow"},
		{80, "slow"},
		{110, "moderate"},
		{128, "fast"},
		{170, "very_fast"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, ClassifyTempoCategory(tt.tempo))
	}
}

func TestShortTimeEnergy(t *testing.T) {
	e := NewEnergy(4, 2)

	energies := e.ComputeShortTimeEnergy([]float64{1, -1, 1, -1, 0, 0})
	require.Len(t, energies, 2)
	assert.InDelta(t, 1.0, energies[0], 1e-12)
	assert.InDelta(t, math.Sqrt(0.5), energies[1], 1e-12)

	assert.Len(t, e.ComputeShortTimeEnergy([]float64{0.5}), 1)
	assert.Empty(t, e.ComputeShortTimeEnergy(nil))

	stats := e.ComputeEnergyStatistics([]float64{1, -1, 1, -1, 0, 0})
	assert.InDelta(t, 1.0, stats["rms_max"], 1e-12)
}
