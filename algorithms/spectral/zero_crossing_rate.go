package spectral

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// zeroThreshold clamps near-silent samples to zero before sign comparison
const zeroThreshold = 1e-10

// ZeroCrossingRate calculates the fraction of sign changes per analysis frame
type ZeroCrossingRate struct {
	frameSize int
	hopSize   int
	centered  bool
}

// NewZeroCrossingRate creates a calculator with 2048-sample frames, 512 hop,
// centred framing
func NewZeroCrossingRate() *ZeroCrossingRate {
	return NewZeroCrossingRateWithParams(2048, 512, true)
}

// NewZeroCrossingRateWithParams creates calculator with custom parameters
func NewZeroCrossingRateWithParams(frameSize, hopSize int, centered bool) *ZeroCrossingRate {
	if frameSize <= 0 {
		frameSize = 2048
	}
	if hopSize <= 0 {
		hopSize = frameSize / 4
	}
	return &ZeroCrossingRate{
		frameSize: frameSize,
		hopSize:   hopSize,
		centered:  centered,
	}
}

// Compute returns crossings divided by frame length (0-1).
// Zero counts as positive; |x| <= 1e-10 is treated as zero.
func (zcr *ZeroCrossingRate) Compute(frame []float64) float64 {
	if len(frame) < 2 {
		return 0.0
	}

	crossings := 0
	prev := signbit(frame[0])
	for i := 1; i < len(frame); i++ {
		cur := signbit(frame[i])
		if cur != prev {
			crossings++
		}
		prev = cur
	}

	return float64(crossings) / float64(len(frame))
}

func signbit(x float64) bool {
	if math.Abs(x) <= zeroThreshold {
		return false
	}
	return x < 0
}

// ComputeFrames calculates the rate for overlapping frames of a signal.
// Centred framing pads frameSize/2 samples on each side by repeating the edge
// samples, so any non-empty signal produces at least one frame.
func (zcr *ZeroCrossingRate) ComputeFrames(signal []float64) []float64 {
	if len(signal) == 0 {
		return []float64{}
	}

	padded := signal
	if zcr.centered {
		padded = edgePad(signal, zcr.frameSize/2)
	}

	if len(padded) < zcr.frameSize {
		return []float64{zcr.Compute(padded)}
	}

	numFrames := (len(padded)-zcr.frameSize)/zcr.hopSize + 1
	values := make([]float64, numFrames)

	for i := range numFrames {
		start := i * zcr.hopSize
		values[i] = zcr.Compute(padded[start : start+zcr.frameSize])
	}

	return values
}

// Mean returns the mean framewise rate
func (zcr *ZeroCrossingRate) Mean(signal []float64) float64 {
	values := zcr.ComputeFrames(signal)
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, nil)
}

func edgePad(signal []float64, pad int) []float64 {
	padded := make([]float64, len(signal)+2*pad)
	copy(padded[pad:], signal)
	first, last := signal[0], signal[len(signal)-1]
	for i := range pad {
		padded[i] = first
		padded[len(padded)-1-i] = last
	}
	return padded
}
