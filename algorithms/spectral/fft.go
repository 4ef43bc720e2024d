package spectral

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// FFT wraps mjibson/go-dsp for real input signals
type FFT struct{}

// NewFFT creates a new FFT calculator
func NewFFT() *FFT {
	return &FFT{}
}

// Compute computes the full complex spectrum of a real signal.
// go-dsp handles non power-of-two sizes.
func (f *FFT) Compute(x []float64) []complex128 {
	if len(x) == 0 {
		return []complex128{}
	}

	return fft.FFTReal(x)
}

// Magnitude returns |X[k]| for the non-negative frequencies (len(x)/2 + 1 bins)
func (f *FFT) Magnitude(x []float64) []float64 {
	if len(x) == 0 {
		return []float64{}
	}

	spectrum := f.Compute(x)
	bins := len(x)/2 + 1
	magnitude := make([]float64, bins)
	for i := range bins {
		magnitude[i] = cmplx.Abs(spectrum[i])
	}
	return magnitude
}

// FrequencyBins returns the centre frequency of each of the fftSize/2+1 bins
func FrequencyBins(sampleRate, fftSize int) []float64 {
	if fftSize <= 0 {
		return []float64{}
	}

	bins := make([]float64, fftSize/2+1)
	for i := range bins {
		bins[i] = float64(i) * float64(sampleRate) / float64(fftSize)
	}
	return bins
}
