package temporal

import (
	"gonum.org/v1/gonum/floats"
)

// OnsetStrength computes a spectral-flux onset envelope from a log-mel
// spectrogram: positive first difference over time, averaged across mel bands.
type OnsetStrength struct {
	lag      int
	padWidth int
}

// NewOnsetStrength creates an onset envelope calculator for centred frames.
// The envelope is shifted right by lag + fftSize/(2*hopSize) frames so that
// onset values line up with the frame in which the energy rise happens.
func NewOnsetStrength(fftSize, hopSize int) *OnsetStrength {
	pad := 1
	if hopSize > 0 {
		pad += fftSize / (2 * hopSize)
	}
	return &OnsetStrength{
		lag:      1,
		padWidth: pad,
	}
}

// Compute returns one onset value per input frame from a Time x Mel dB matrix
func (ons *OnsetStrength) Compute(logMel [][]float64) []float64 {
	numFrames := len(logMel)
	envelope := make([]float64, numFrames)
	if numFrames <= ons.lag {
		return envelope
	}

	flux := make([]float64, 0, numFrames-ons.lag)
	for t := ons.lag; t < numFrames; t++ {
		current, previous := logMel[t], logMel[t-ons.lag]
		bands := min(len(current), len(previous))
		if bands == 0 {
			flux = append(flux, 0)
			continue
		}

		diff := make([]float64, bands)
		floats.SubTo(diff, current[:bands], previous[:bands])
		for i, d := range diff {
			if d < 0 {
				diff[i] = 0
			}
		}
		flux = append(flux, floats.Sum(diff)/float64(bands))
	}

	// left pad with zeros, then trim back to the frame count
	for i, v := range flux {
		idx := i + ons.padWidth
		if idx >= numFrames {
			break
		}
		envelope[idx] = v
	}

	return envelope
}
