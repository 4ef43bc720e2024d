package spectral

import (
	"math"
)

// Slaney mel scale constants: linear below 1 kHz, logarithmic above
const (
	slaneyHzPerMel = 200.0 / 3.0
	slaneyBreakHz  = 1000.0
	slaneyBreakMel = slaneyBreakHz / slaneyHzPerMel
)

var slaneyLogStep = math.Log(6.4) / 27.0

// MelScale provides mel frequency conversion and filter banks.
// The default is the Slaney (Auditory Toolbox) scale with area-normalised
// filters; HTK mode uses 2595*log10(1+f/700) with unit-peak triangles.
type MelScale struct {
	htk bool
}

// NewMelScale creates a Slaney mel scale converter
func NewMelScale() *MelScale {
	return &MelScale{}
}

// NewHTKMelScale creates an HTK mel scale converter
func NewHTKMelScale() *MelScale {
	return &MelScale{htk: true}
}

// HzToMel converts frequency in Hz to mel scale
func (ms *MelScale) HzToMel(hz float64) float64 {
	if ms.htk {
		return 2595.0 * math.Log10(1.0+hz/700.0)
	}
	if hz < slaneyBreakHz {
		return hz / slaneyHzPerMel
	}
	return slaneyBreakMel + math.Log(hz/slaneyBreakHz)/slaneyLogStep
}

// MelToHz converts mel scale to frequency in Hz
func (ms *MelScale) MelToHz(mel float64) float64 {
	if ms.htk {
		return 700.0 * (math.Pow(10.0, mel/2595.0) - 1.0)
	}
	if mel < slaneyBreakMel {
		return mel * slaneyHzPerMel
	}
	return slaneyBreakHz * math.Exp(slaneyLogStep*(mel-slaneyBreakMel))
}

// CreateMelFilterBank creates numFilters triangular filters over the
// fftSize/2+1 positive-frequency bins. Filters are built on the continuous
// frequency axis, so narrow low-frequency filters never collapse to zero width.
func (ms *MelScale) CreateMelFilterBank(numFilters int, fftSize int, sampleRate int, lowFreq, highFreq float64) [][]float64 {
	if numFilters <= 0 || fftSize <= 0 || sampleRate <= 0 {
		return nil
	}
	if highFreq <= 0 || highFreq > float64(sampleRate)/2 {
		highFreq = float64(sampleRate) / 2
	}
	if lowFreq < 0 || lowFreq >= highFreq {
		return nil
	}

	fftFreqs := FrequencyBins(sampleRate, fftSize)

	// numFilters+2 edge frequencies equally spaced in mel
	lowMel := ms.HzToMel(lowFreq)
	highMel := ms.HzToMel(highFreq)
	edges := make([]float64, numFilters+2)
	melStep := (highMel - lowMel) / float64(numFilters+1)
	for i := range edges {
		edges[i] = ms.MelToHz(lowMel + float64(i)*melStep)
	}

	filterBank := make([][]float64, numFilters)
	for m := range numFilters {
		left, center, right := edges[m], edges[m+1], edges[m+2]
		filter := make([]float64, len(fftFreqs))

		for k, f := range fftFreqs {
			lower := (f - left) / (center - left)
			upper := (right - f) / (right - center)
			filter[k] = math.Max(0, math.Min(lower, upper))
		}

		if !ms.htk {
			norm := 2.0 / (right - left)
			for k := range filter {
				filter[k] *= norm
			}
		}

		filterBank[m] = filter
	}

	return filterBank
}

// ApplyFilterBank applies mel filter bank to a power spectrum
func (ms *MelScale) ApplyFilterBank(powerSpectrum []float64, filterBank [][]float64) []float64 {
	if len(filterBank) == 0 || len(powerSpectrum) == 0 {
		return []float64{}
	}

	melSpectrum := make([]float64, len(filterBank))

	for i, filter := range filterBank {
		sum := 0.0
		for j := 0; j < len(filter) && j < len(powerSpectrum); j++ {
			sum += powerSpectrum[j] * filter[j]
		}
		melSpectrum[i] = sum
	}

	return melSpectrum
}

// MelSpectrogram maps a Time x Frequency power spectrogram to Time x Mel
func (ms *MelScale) MelSpectrogram(powerSpectrogram [][]float64, filterBank [][]float64) [][]float64 {
	melSpectrogram := make([][]float64, len(powerSpectrogram))

	for t, frame := range powerSpectrogram {
		melSpectrogram[t] = ms.ApplyFilterBank(frame, filterBank)
	}

	return melSpectrogram
}
