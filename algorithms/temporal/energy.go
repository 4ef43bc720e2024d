package temporal

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Energy computes frame level loudness of a waveform
type Energy struct {
	frameSize int
	hopSize   int
}

// NewEnergy creates a new energy calculator
func NewEnergy(frameSize, hopSize int) *Energy {
	return &Energy{
		frameSize: frameSize,
		hopSize:   hopSize,
	}
}

// ComputeShortTimeEnergy returns the RMS of each full frame.
// Signals shorter than one frame yield a single RMS over the whole signal.
func (e *Energy) ComputeShortTimeEnergy(signal []float64) []float64 {
	if len(signal) == 0 || e.hopSize <= 0 || e.frameSize <= 0 {
		return []float64{}
	}
	if len(signal) < e.frameSize {
		return []float64{rms(signal)}
	}

	numFrames := (len(signal)-e.frameSize)/e.hopSize + 1
	energies := make([]float64, numFrames)

	for i := range numFrames {
		start := i * e.hopSize
		energies[i] = rms(signal[start : start+e.frameSize])
	}

	return energies
}

// ComputeEnergyStatistics summarises the short-time RMS curve
func (e *Energy) ComputeEnergyStatistics(signal []float64) map[string]float64 {
	energies := e.ComputeShortTimeEnergy(signal)
	if len(energies) == 0 {
		return map[string]float64{"rms_mean": 0, "rms_max": 0}
	}

	return map[string]float64{
		"rms_mean": floats.Sum(energies) / float64(len(energies)),
		"rms_max":  floats.Max(energies),
	}
}

func rms(frame []float64) float64 {
	return math.Sqrt(floats.Dot(frame, frame) / float64(len(frame)))
}
