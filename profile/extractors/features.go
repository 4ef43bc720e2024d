package extractors

import (
	"errors"

	"github.com/RyanBlaney/sonido-insight/algorithms/chroma"
)

var (
	// ErrEmptyWaveform is returned for a waveform with no samples
	ErrEmptyWaveform = errors.New("empty waveform")
	// ErrInvalidSampleRate is returned for a non-positive sample rate
	ErrInvalidSampleRate = errors.New("invalid sample rate")
	// ErrNonFiniteSample is returned when the waveform holds NaN or Inf
	ErrNonFiniteSample = errors.New("non-finite sample")
)

// FeatureVector holds the clip level descriptors the label rules read.
// Framewise features are already reduced to their mean over frames.
type FeatureVector struct {
	SampleRate int     `json:"sample_rate"`
	NumSamples int     `json:"num_samples"`
	NumFrames  int     `json:"num_frames"`
	Tempo      float64 `json:"tempo"` // BPM, 0 when no rhythm was found

	SpectralCentroid  float64 `json:"spectral_centroid"`  // Hz
	SpectralBandwidth float64 `json:"spectral_bandwidth"` // Hz
	SpectralRolloff   float64 `json:"spectral_rolloff"`   // Hz
	ZeroCrossingRate  float64 `json:"zero_crossing_rate"` // crossings per sample

	MFCCMeans []float64 `json:"mfcc_means"`
	MFCCMax   []float64 `json:"mfcc_max"`

	ChromaMeans    [chroma.NumPitchClasses]float64 `json:"chroma_means"`
	DominantChroma int                             `json:"dominant_chroma"`

	OnsetEnvelope   []float64 `json:"onset_envelope,omitempty"`
	BeatConsistency float64   `json:"beat_consistency"` // [0, 1]

	Variance   float64 `json:"variance"`    // population variance of the samples
	MeanSquare float64 `json:"mean_square"` // mean(x^2)
	RMSMax     float64 `json:"rms_max"`
}

// MFCC returns the mean of coefficient i, 0 when it was not computed
func (f *FeatureVector) MFCC(i int) float64 {
	if i < 0 || i >= len(f.MFCCMeans) {
		return 0
	}
	return f.MFCCMeans[i]
}

// MFCCPeak returns the maximum of coefficient i across frames, 0 when it was not computed
func (f *FeatureVector) MFCCPeak(i int) float64 {
	if i < 0 || i >= len(f.MFCCMax) {
		return 0
	}
	return f.MFCCMax[i]
}

// Summary returns the scalar features for reports and debugging
func (f *FeatureVector) Summary() map[string]float64 {
	return map[string]float64{
		"tempo":              f.Tempo,
		"spectral_centroid":  f.SpectralCentroid,
		"spectral_bandwidth": f.SpectralBandwidth,
		"spectral_rolloff":   f.SpectralRolloff,
		"zero_crossing_rate": f.ZeroCrossingRate,
		"beat_consistency":   f.BeatConsistency,
		"variance":           f.Variance,
		"mean_square":        f.MeanSquare,
		"rms_max":            f.RMSMax,
		"mfcc_1_max":         f.MFCCPeak(1),
	}
}
