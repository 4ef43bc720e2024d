package temporal

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Default tempo prior and search limits
const (
	DefaultStartBPM = 120.0
	DefaultStdBPM   = 1.0 // octaves
	DefaultMaxBPM   = 320.0
	DefaultACSize   = 8.0 // seconds
)

// TempoEstimation estimates a single global tempo from an onset envelope.
// The envelope autocorrelation is scored against a log-normal prior over BPM
// and the best scoring lag wins.
type TempoEstimation struct {
	sampleRate int
	hopSize    int
	startBPM   float64
	stdBPM     float64
	maxBPM     float64
	acSize     float64
}

// NewTempoEstimation creates a tempo estimator for envelopes sampled every hopSize samples
func NewTempoEstimation(sampleRate, hopSize int) *TempoEstimation {
	return &TempoEstimation{
		sampleRate: sampleRate,
		hopSize:    hopSize,
		startBPM:   DefaultStartBPM,
		stdBPM:     DefaultStdBPM,
		maxBPM:     DefaultMaxBPM,
		acSize:     DefaultACSize,
	}
}

// SetPrior changes the centre (BPM) and width (octaves) of the tempo prior
func (te *TempoEstimation) SetPrior(startBPM, stdBPM float64) {
	if startBPM > 0 {
		te.startBPM = startBPM
	}
	if stdBPM > 0 {
		te.stdBPM = stdBPM
	}
}

// EstimateTempo returns the tempo in BPM, or 0 when the envelope carries no energy
func (te *TempoEstimation) EstimateTempo(envelope []float64) float64 {
	if len(envelope) < 2 || te.sampleRate <= 0 || te.hopSize <= 0 {
		return 0.0
	}

	maxLag := int(te.acSize * float64(te.sampleRate) / float64(te.hopSize))
	if maxLag > len(envelope) {
		maxLag = len(envelope)
	}

	autocorr := te.calculateAutocorrelation(envelope, maxLag)
	if autocorr[0] <= 0 {
		return 0.0
	}

	bestScore := math.Inf(-1)
	bestLag := 0
	for lag := 1; lag < len(autocorr); lag++ {
		bpm := te.lagToBPM(lag)
		if bpm > te.maxBPM {
			continue
		}

		strength := math.Max(0, autocorr[lag]/autocorr[0])
		score := math.Log1p(1e6*strength) + te.logPrior(bpm)
		if score > bestScore {
			bestScore = score
			bestLag = lag
		}
	}

	if bestLag == 0 {
		return 0.0
	}

	return te.lagToBPM(bestLag)
}

// calculateAutocorrelation returns the raw autocorrelation for lags [0, maxLag)
func (te *TempoEstimation) calculateAutocorrelation(signal []float64, maxLag int) []float64 {
	autocorr := make([]float64, maxLag)
	n := len(signal)

	for lag := range maxLag {
		autocorr[lag] = floats.Dot(signal[:n-lag], signal[lag:])
	}

	return autocorr
}

// lagToBPM converts an envelope lag in frames to beats per minute
func (te *TempoEstimation) lagToBPM(lag int) float64 {
	return 60.0 * float64(te.sampleRate) / (float64(te.hopSize) * float64(lag))
}

// logPrior is the log of a Gaussian over log2(BPM)
func (te *TempoEstimation) logPrior(bpm float64) float64 {
	z := (math.Log2(bpm) - math.Log2(te.startBPM)) / te.stdBPM
	return -0.5 * z * z
}

// ClassifyTempoCategory classifies tempo into broad categories
func ClassifyTempoCategory(tempo float64) string {
	switch {
	case tempo <= 0:
		return "none"
	case tempo < 60:
		return "very_slow"
	case tempo < 90:
		return "slow"
	case tempo < 120:
		return "moderate"
	case tempo < 150:
		return "fast"
	default:
		return "very_fast"
	}
}
