package extractors

import (
	"context"
	"fmt"

	"github.com/RyanBlaney/sonido-insight/algorithms/chroma"
	"github.com/RyanBlaney/sonido-insight/algorithms/common"
	"github.com/RyanBlaney/sonido-insight/algorithms/spectral"
	"github.com/RyanBlaney/sonido-insight/algorithms/temporal"
	"github.com/RyanBlaney/sonido-insight/algorithms/windowing"
	"github.com/RyanBlaney/sonido-insight/logging"
	"github.com/RyanBlaney/sonido-insight/profile/config"
)

// Extractor computes a FeatureVector from a mono waveform.
// It holds no per-call state and is safe for concurrent use.
type Extractor struct {
	config *config.FeatureConfig
	logger logging.Logger
}

// NewExtractor creates a feature extractor; nil config uses the defaults
func NewExtractor(cfg *config.FeatureConfig) *Extractor {
	defaults := config.DefaultFeatureConfig()
	if cfg == nil {
		cfg = defaults
	} else {
		merged := *cfg
		if merged.WindowSize <= 0 {
			merged.WindowSize = defaults.WindowSize
		}
		if merged.HopSize <= 0 {
			merged.HopSize = defaults.HopSize
		}
		if merged.MFCCCoefficients <= 0 {
			merged.MFCCCoefficients = defaults.MFCCCoefficients
		}
		if merged.MelBands <= 0 {
			merged.MelBands = defaults.MelBands
		}
		if merged.RolloffPercent <= 0 || merged.RolloffPercent >= 1 {
			merged.RolloffPercent = defaults.RolloffPercent
		}
		if merged.TuningFreq <= 0 {
			merged.TuningFreq = defaults.TuningFreq
		}
		if merged.StartBPM <= 0 {
			merged.StartBPM = defaults.StartBPM
		}
		cfg = &merged
	}

	return &Extractor{
		config: cfg,
		logger: logging.WithFields(logging.Fields{
			"component": "feature_extractor",
		}),
	}
}

// Config returns the effective feature configuration
func (e *Extractor) Config() config.FeatureConfig {
	return *e.config
}

// Extract runs the full descriptor pipeline. Invalid input fails before any
// work is done; no partial vector is ever returned.
func (e *Extractor) Extract(ctx context.Context, samples []float64, sampleRate int) (*FeatureVector, error) {
	if err := validateInput(samples, sampleRate); err != nil {
		return nil, err
	}

	logger := e.logger.WithFields(logging.Fields{
		"function":    "Extract",
		"samples":     len(samples),
		"sample_rate": sampleRate,
	})
	logger.Debug("Starting feature extraction")

	windowSize, hopSize := e.config.WindowSize, e.config.HopSize

	stftResult, err := spectral.NewSTFT().ComputeCentered(samples, windowSize, hopSize, sampleRate, windowing.NewPeriodicHann(windowSize))
	if err != nil {
		return nil, fmt.Errorf("failed to compute STFT: %w", err)
	}
	power := stftResult.Power()

	logger.Debug("STFT computed", logging.Fields{
		"time_frames": stftResult.TimeFrames,
		"freq_bins":   stftResult.FreqBins,
	})

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	features := &FeatureVector{
		SampleRate: sampleRate,
		NumSamples: len(samples),
		NumFrames:  stftResult.TimeFrames,
	}

	// spectral shape on magnitude
	shape := spectral.NewSpectralShapeWithRolloff(sampleRate, e.config.RolloffPercent).ComputeFrames(stftResult.Magnitude)
	features.SpectralCentroid = common.Mean(shape.Centroid)
	features.SpectralBandwidth = common.Mean(shape.Bandwidth)
	features.SpectralRolloff = common.Mean(shape.Rolloff)

	features.ZeroCrossingRate = spectral.NewZeroCrossingRateWithParams(windowSize, hopSize, true).Mean(samples)

	// mel dB spectrogram feeds both MFCC and onset strength
	mfccParams := spectral.DefaultMFCCParams(sampleRate)
	mfccParams.NumCoefficients = e.config.MFCCCoefficients
	mfccParams.NumMelFilters = e.config.MelBands
	mfcc := spectral.NewMFCCWithParams(sampleRate, mfccParams)

	logMel, err := mfcc.LogMelSpectrogram(power)
	if err != nil {
		return nil, fmt.Errorf("failed to compute mel spectrogram: %w", err)
	}
	coefficients := mfcc.FromLogMel(logMel)
	features.MFCCMeans = common.ColumnMeans(coefficients, e.config.MFCCCoefficients)
	features.MFCCMax = common.ColumnMax(coefficients, e.config.MFCCCoefficients)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	features.OnsetEnvelope = temporal.NewOnsetStrength(windowSize, hopSize).Compute(logMel)
	tempoEstimator := temporal.NewTempoEstimation(sampleRate, hopSize)
	tempoEstimator.SetPrior(e.config.StartBPM, temporal.DefaultStdBPM)
	features.Tempo = tempoEstimator.EstimateTempo(features.OnsetEnvelope)
	features.BeatConsistency = beatConsistency(features.OnsetEnvelope)

	chromaSTFT := chroma.NewChromaSTFT(sampleRate, e.config.TuningFreq)
	chromagram := chromaSTFT.FromPower(power, windowSize)
	features.ChromaMeans = chroma.Means(chromagram)
	features.DominantChroma = chroma.DominantPitchClass(features.ChromaMeans)

	features.Variance = common.PopVariance(samples)
	features.MeanSquare = common.MeanSquare(samples)
	features.RMSMax = temporal.NewEnergy(windowSize, hopSize).ComputeEnergyStatistics(samples)["rms_max"]

	logger.Debug("Feature extraction completed", logging.Fields{
		"tempo":           features.Tempo,
		"centroid":        features.SpectralCentroid,
		"dominant_chroma": features.DominantChroma,
	})

	return features, nil
}

func validateInput(samples []float64, sampleRate int) error {
	if len(samples) == 0 {
		return ErrEmptyWaveform
	}
	if sampleRate <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidSampleRate, sampleRate)
	}
	if idx := common.FirstNonFinite(samples); idx >= 0 {
		return fmt.Errorf("%w at index %d", ErrNonFiniteSample, idx)
	}
	return nil
}

// beatConsistency is 1 - coefficient of variation of the onset envelope,
// clamped to [0, 1]. A zero-mean envelope has no defined CoV and scores 0.
func beatConsistency(envelope []float64) float64 {
	cov, ok := common.CoefficientOfVariation(envelope)
	if !ok {
		return 0
	}
	return common.Clamp(1-cov, 0, 1)
}
