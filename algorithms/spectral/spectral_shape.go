package spectral

import "math"

// DefaultRolloffPercent is the fraction of cumulative magnitude below the rolloff frequency
const DefaultRolloffPercent = 0.85

// SpectralShape computes the centroid, bandwidth and rolloff of magnitude spectra.
// The three share the same frequency axis, so it is computed once per FFT size.
type SpectralShape struct {
	sampleRate     int
	rolloffPercent float64
	freqBins       []float64
}

// ShapeFrame holds the shape descriptors of a single frame
type ShapeFrame struct {
	Centroid  float64 `json:"centroid"`
	Bandwidth float64 `json:"bandwidth"`
	Rolloff   float64 `json:"rolloff"`
}

// ShapeSeries holds framewise shape descriptors
type ShapeSeries struct {
	Centroid  []float64 `json:"centroid"`
	Bandwidth []float64 `json:"bandwidth"`
	Rolloff   []float64 `json:"rolloff"`
}

// NewSpectralShape creates a shape calculator with the default 85% rolloff
func NewSpectralShape(sampleRate int) *SpectralShape {
	return NewSpectralShapeWithRolloff(sampleRate, DefaultRolloffPercent)
}

// NewSpectralShapeWithRolloff creates a shape calculator with a custom rolloff fraction
func NewSpectralShapeWithRolloff(sampleRate int, rolloffPercent float64) *SpectralShape {
	if rolloffPercent <= 0 || rolloffPercent >= 1 {
		rolloffPercent = DefaultRolloffPercent
	}
	return &SpectralShape{
		sampleRate:     sampleRate,
		rolloffPercent: rolloffPercent,
	}
}

func (s *SpectralShape) bins(numBins int) []float64 {
	if len(s.freqBins) != numBins {
		s.freqBins = FrequencyBins(s.sampleRate, (numBins-1)*2)
	}
	return s.freqBins
}

// Compute calculates the shape of one magnitude spectrum.
// A silent frame yields zeros for all three descriptors.
func (s *SpectralShape) Compute(spectrum []float64) ShapeFrame {
	if len(spectrum) < 2 {
		return ShapeFrame{}
	}
	freqs := s.bins(len(spectrum))

	total := 0.0
	weighted := 0.0
	for i, mag := range spectrum {
		total += mag
		weighted += freqs[i] * mag
	}
	if total == 0 {
		return ShapeFrame{}
	}

	centroid := weighted / total

	spread := 0.0
	for i, mag := range spectrum {
		diff := freqs[i] - centroid
		spread += diff * diff * mag
	}

	return ShapeFrame{
		Centroid:  centroid,
		Bandwidth: math.Sqrt(spread / total),
		Rolloff:   s.rolloff(spectrum, freqs, total),
	}
}

// rolloff returns the lowest bin frequency below which rolloffPercent of the
// total magnitude lies
func (s *SpectralShape) rolloff(spectrum, freqs []float64, total float64) float64 {
	target := s.rolloffPercent * total
	cumulative := 0.0
	for i, mag := range spectrum {
		cumulative += mag
		if cumulative >= target {
			return freqs[i]
		}
	}
	return freqs[len(freqs)-1]
}

// ComputeFrames processes a Time x Frequency magnitude spectrogram
func (s *SpectralShape) ComputeFrames(spectrogram [][]float64) ShapeSeries {
	series := ShapeSeries{
		Centroid:  make([]float64, len(spectrogram)),
		Bandwidth: make([]float64, len(spectrogram)),
		Rolloff:   make([]float64, len(spectrogram)),
	}

	for t, spectrum := range spectrogram {
		frame := s.Compute(spectrum)
		series.Centroid[t] = frame.Centroid
		series.Bandwidth[t] = frame.Bandwidth
		series.Rolloff[t] = frame.Rolloff
	}

	return series
}
