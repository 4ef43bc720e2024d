package spectral

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanBlaney/sonido-insight/algorithms/windowing"
)

func sine(freq float64, sampleRate, n int) []float64 {
	signal := make([]float64, n)
	for i := range signal {
		signal[i] = math.Sin(2 * math.Pi * freq * float64(i) / float64(sampleRate))
	}
	return signal
}

func TestFrequencyBins(t *testing.T) {
	bins := FrequencyBins(22050, 2048)
	require.Len(t, bins, 1025)
	assert.Equal(t, 0.0, bins[0])
	assert.InDelta(t, 11025.0, bins[1024], 1e-9)
	assert.InDelta(t, 22050.0/2048.0, bins[1], 1e-9)
}

func TestSTFTCenteredFrameCount(t *testing.T) {
	stft := NewSTFT()
	signal := sine(440, 44100, 44100)

	result, err := stft.ComputeCentered(signal, 2048, 512, 44100, windowing.NewPeriodicHann(2048))
	require.NoError(t, err)

	assert.Equal(t, 44100/512+1, result.TimeFrames)
	assert.Equal(t, 1025, result.FreqBins)
	assert.Len(t, result.Magnitude, result.TimeFrames)
	assert.InDelta(t, 44100.0/2048.0, result.FreqResolution, 1e-9)
}

func TestSTFTShortSignalStillProducesFrame(t *testing.T) {
	stft := NewSTFT()

	result, err := stft.ComputeCentered([]float64{0.5, -0.5, 0.25}, 2048, 512, 22050, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, result.TimeFrames)
}

func TestSTFTErrors(t *testing.T) {
	stft := NewSTFT()

	_, err := stft.ComputeCentered(nil, 2048, 512, 22050, nil)
	assert.Error(t, err)

	_, err = stft.ComputeWithWindow(make([]float64, 100), 2048, 512, 22050, nil)
	assert.Error(t, err)

	_, err = stft.ComputeWithWindow(make([]float64, 4096), 2048, 0, 22050, nil)
	assert.Error(t, err)
}

func TestSpectralShapeOfSine(t *testing.T) {
	frame := sine(1000, 22050, 2048)
	require.NoError(t, windowing.NewPeriodicHann(2048).ApplyInPlace(frame))
	spectrum := NewFFT().Magnitude(frame)

	shape := NewSpectralShape(22050).Compute(spectrum)

	assert.InDelta(t, 1000.0, shape.Centroid, 50.0)
	assert.Less(t, shape.Bandwidth, 500.0)
	assert.InDelta(t, 1000.0, shape.Rolloff, 30.0)
}

func TestSpectralShapeSilentFrame(t *testing.T) {
	shape := NewSpectralShape(22050).Compute(make([]float64, 1025))
	assert.Equal(t, ShapeFrame{}, shape)
}

func TestSpectralShapeRolloffUsesMagnitude(t *testing.T) {
	// 4 bins over 0..sr/2 with sr=6 -> 0,1,2,3 Hz
	spectrum := []float64{1, 1, 1, 1}
	shape := NewSpectralShape(6).Compute(spectrum)

	// 85% of 4 = 3.4 reached at the fourth bin
	assert.Equal(t, 3.0, shape.Rolloff)
	assert.InDelta(t, 1.5, shape.Centroid, 1e-12)
	assert.InDelta(t, math.Sqrt(1.25), shape.Bandwidth, 1e-12)
}

func TestSpectralShapeComputeFrames(t *testing.T) {
	series := NewSpectralShape(6).ComputeFrames([][]float64{{1, 1, 1, 1}, {0, 0, 0, 0}})
	assert.Equal(t, []float64{1.5, 0}, series.Centroid)
	assert.Len(t, series.Bandwidth, 2)
	assert.Len(t, series.Rolloff, 2)
}

func TestZeroCrossingRate(t *testing.T) {
	zcr := NewZeroCrossingRate()

	assert.InDelta(t, 0.75, zcr.Compute([]float64{1, -1, 1, -1}), 1e-12)
	assert.Equal(t, 0.0, zcr.Compute([]float64{0, 0, 0, 0}))
	// values inside the zero threshold are not crossings
	assert.Equal(t, 0.0, zcr.Compute([]float64{1e-12, -1e-12, 1e-12}))
	assert.Equal(t, 0.0, zcr.Mean(make([]float64, 4096)))
}

func TestZeroCrossingRateFrames(t *testing.T) {
	zcr := NewZeroCrossingRateWithParams(4, 2, false)
	values := zcr.ComputeFrames([]float64{1, -1, 1, -1, 1, 1})
	require.Len(t, values, 2)
	assert.InDelta(t, 0.75, values[0], 1e-12)
	assert.InDelta(t, 0.5, values[1], 1e-12)

	centered := NewZeroCrossingRate().ComputeFrames(make([]float64, 22050))
	assert.Len(t, centered, 22050/512+1)
}

func TestSlaneyMelScale(t *testing.T) {
	ms := NewMelScale()
	assert.InDelta(t, 15.0, ms.HzToMel(1000), 1e-12)
	assert.InDelta(t, 7.5, ms.HzToMel(500), 1e-12)

	for _, hz := range []float64{100, 999, 1000, 4000, 11025} {
		assert.InDelta(t, hz, ms.MelToHz(ms.HzToMel(hz)), 1e-6)
	}

	htk := NewHTKMelScale()
	assert.InDelta(t, 1000.0, htk.MelToHz(htk.HzToMel(1000)), 1e-6)
}

func TestMelFilterBank(t *testing.T) {
	bank := NewMelScale().CreateMelFilterBank(128, 2048, 22050, 0, 11025)
	require.Len(t, bank, 128)

	for m, filter := range bank {
		require.Len(t, filter, 1025)
		sum := 0.0
		for _, w := range filter {
			assert.GreaterOrEqual(t, w, 0.0)
			sum += w
		}
		assert.Greater(t, sum, 0.0, "filter %d is empty", m)
	}

	assert.Nil(t, NewMelScale().CreateMelFilterBank(0, 2048, 22050, 0, 0))
	assert.Nil(t, NewMelScale().CreateMelFilterBank(10, 2048, 22050, 5000, 4000))
}

func TestPowerToDB(t *testing.T) {
	db := PowerToDB([][]float64{{1, 1e-12}, {100, 0}}, DefaultDecibelParams())

	assert.InDelta(t, 0.0, db[0][0], 1e-9)
	assert.InDelta(t, -60.0, db[0][1], 1e-9)
	assert.InDelta(t, 20.0, db[1][0], 1e-9)
	assert.InDelta(t, -60.0, db[1][1], 1e-9)
}

func TestMFCCOfSilence(t *testing.T) {
	mfcc := NewMFCC(22050, 13)
	power := make([][]float64, 3)
	for i := range power {
		power[i] = make([]float64, 1025)
	}

	frames, err := mfcc.ComputeFrames(power)
	require.NoError(t, err)
	require.Len(t, frames, 3)

	for _, coeffs := range frames {
		require.Len(t, coeffs, 13)
		assert.InDelta(t, -100*math.Sqrt(128), coeffs[0], 1e-6)
		for k := 1; k < 13; k++ {
			assert.InDelta(t, 0.0, coeffs[k], 1e-6)
		}
	}
}

func TestMFCCTooManyCoefficients(t *testing.T) {
	params := DefaultMFCCParams(22050)
	params.NumCoefficients = 40
	params.NumMelFilters = 20

	err := NewMFCCWithParams(22050, params).Initialize(2048)
	assert.Error(t, err)
}
