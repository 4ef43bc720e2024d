package labels

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/RyanBlaney/sonido-insight/algorithms/chroma"
	"github.com/RyanBlaney/sonido-insight/algorithms/common"
	"github.com/RyanBlaney/sonido-insight/profile/config"
	"github.com/RyanBlaney/sonido-insight/profile/extractors"
)

// Rule thresholds
const (
	genreCentroidSpan   = 5000.0 // Hz covered by one pass over the genre list
	confidenceSpan      = 5000.0 // bandwidth that maps to 100% confidence
	minConfidence       = 50
	maxConfidence       = 100
	electronicCentroid  = 3000.0
	energyScale         = 10000.0
	energyLowCeiling    = 1000.0
	energyMediumCeiling = 2000.0
	smallVariance       = 0.01
	mediumVariance      = 0.05
	bassMeanSquare      = 0.005
	beatsTempo          = 80.0
	vocalMFCC           = 100.0
	highPresenceMFCC    = 150.0
	qualitySampleRate   = 44100
	qualityBandwidth    = 1000.0
)

const noneLabel = "None"

var ErrInvalidVocabulary = errors.New("invalid vocabulary")

// Mapper turns a FeatureVector into labels with fixed threshold rules.
// It does no I/O and never fails once constructed.
type Mapper struct {
	vocab    config.Vocabulary
	register RegisterStrategy
}

// Option configures a Mapper
type Option func(*Mapper)

// WithVocabulary replaces the built-in label lists
func WithVocabulary(vocab config.Vocabulary) Option {
	return func(m *Mapper) {
		m.vocab = vocab.Clone()
	}
}

// WithRegisterStrategy sets how the vocal register is chosen
func WithRegisterStrategy(strategy RegisterStrategy) Option {
	return func(m *Mapper) {
		if strategy != nil {
			m.register = strategy
		}
	}
}

// WithRandomRegister picks the vocal register at random from a seeded source
func WithRandomRegister(seed int64) Option {
	return WithRegisterStrategy(NewRandomRegister(seed))
}

// NewMapper creates a mapper with the default vocabulary and centroid register
func NewMapper(opts ...Option) (*Mapper, error) {
	m := &Mapper{
		vocab:    config.DefaultVocabulary(),
		register: CentroidRegister{},
	}
	for _, opt := range opts {
		opt(m)
	}

	if err := validateVocabulary(m.vocab); err != nil {
		return nil, err
	}
	return m, nil
}

func validateVocabulary(v config.Vocabulary) error {
	switch {
	case len(v.Genres) == 0:
		return fmt.Errorf("%w: no genres", ErrInvalidVocabulary)
	case len(v.Moods) < 3:
		return fmt.Errorf("%w: need at least 3 moods, got %d", ErrInvalidVocabulary, len(v.Moods))
	case len(v.Instruments) < 3:
		return fmt.Errorf("%w: need at least 3 instruments, got %d", ErrInvalidVocabulary, len(v.Instruments))
	case len(v.UseCases) < 4:
		return fmt.Errorf("%w: need at least 4 use cases, got %d", ErrInvalidVocabulary, len(v.UseCases))
	case len(v.VocalTypes) == 0:
		return fmt.Errorf("%w: no vocal types", ErrInvalidVocabulary)
	case len(v.Keys) != chroma.NumPitchClasses:
		return fmt.Errorf("%w: need %d keys, got %d", ErrInvalidVocabulary, chroma.NumPitchClasses, len(v.Keys))
	}
	return nil
}

// Vocabulary returns a copy of the label lists in use
func (m *Mapper) Vocabulary() config.Vocabulary {
	return m.vocab.Clone()
}

// RegisterStrategy returns the name of the vocal register strategy
func (m *Mapper) RegisterStrategy() string {
	return m.register.Name()
}

// Map applies every rule to the features; a nil vector maps like silence
func (m *Mapper) Map(features *extractors.FeatureVector) AnalysisResult {
	if features == nil {
		features = &extractors.FeatureVector{}
	}

	genre := m.Genre(features.SpectralCentroid, features.SpectralBandwidth)
	energy := m.Energy(features.SpectralRolloff, features.ZeroCrossingRate, features.Variance)

	return AnalysisResult{
		Genre:       genre,
		Mood:        m.Mood(features.Tempo, energy.Level),
		Instruments: m.Instruments(features.MeanSquare, features.Tempo, features.SpectralCentroid),
		Energy:      energy,
		Emotion:     Emotion(features.MFCCMeans),
		UseCases:    m.UseCases(genre.MainGenre, energy.Level),
		Vocal:       m.Vocal(features),
		Technical:   m.Technical(features),
	}
}

// Genre indexes the genre list by spectral centroid and scores confidence by bandwidth
func (m *Mapper) Genre(centroid, bandwidth float64) GenreResult {
	n := len(m.vocab.Genres)
	idx := int(math.Max(centroid, 0)/genreCentroidSpan*float64(n)) % n

	confidence := int(math.Min(maxConfidence, math.Max(minConfidence, bandwidth/confidenceSpan*100)))

	result := GenreResult{
		MainGenre:  m.vocab.Genres[idx],
		Confidence: confidence,
	}
	if result.MainGenre != "Electronic" && centroid > electronicCentroid {
		result.Elements = "Electronic"
	}
	return result
}

// Energy buckets (rolloff + zcr*10000)/10000 into three levels
func (m *Mapper) Energy(rolloff, zcr, variance float64) EnergyResult {
	value := (rolloff + zcr*energyScale) / energyScale
	result := EnergyResult{Variance: VarianceCategory(variance)}

	switch {
	case value < energyLowCeiling:
		result.Level, result.Text = 0.3, "Low"
	case value < energyMediumCeiling:
		result.Level, result.Text = 0.6, "Medium"
	default:
		result.Level, result.Text = 0.9, "High"
	}
	return result
}

// EnergyForValue exposes the bucket step function on a precomputed energy value
func (m *Mapper) EnergyForValue(value float64) EnergyResult {
	return m.Energy(value*energyScale, 0, 0)
}

// VarianceCategory labels the waveform variance
func VarianceCategory(variance float64) string {
	switch {
	case variance < smallVariance:
		return "small"
	case variance < mediumVariance:
		return "medium"
	default:
		return "large"
	}
}

// Mood returns exactly one mood with its intensity
func (m *Mapper) Mood(tempo, energyLevel float64) map[string]int {
	switch {
	case tempo > 120 && energyLevel > 0.7:
		return map[string]int{m.vocab.Moods[0]: 100}
	case tempo > 100 && energyLevel > 0.5:
		return map[string]int{m.vocab.Moods[1]: 87}
	default:
		return map[string]int{m.vocab.Moods[2]: 23}
	}
}

// Emotion squashes the MFCC mean sum into [0, 1]
func Emotion(mfccMeans []float64) EmotionResult {
	sum := 0.0
	for _, v := range mfccMeans {
		sum += v
	}
	return EmotionResult{Value: common.Clamp((sum+100)/200, 0, 1)}
}

// Instruments never returns an empty list
func (m *Mapper) Instruments(meanSquare, tempo, centroid float64) []string {
	var instruments []string
	if meanSquare > bassMeanSquare {
		instruments = append(instruments, m.vocab.Instruments[0])
	}
	if tempo > beatsTempo {
		instruments = append(instruments, m.vocab.Instruments[1])
	}
	if centroid > electronicCentroid {
		instruments = append(instruments, m.vocab.Instruments[2])
	}
	if len(instruments) == 0 {
		instruments = append(instruments, m.vocab.Instruments[0])
	}
	return instruments
}

// UseCases picks activity tags from genre and energy. Energetic hip hop gets
// use cases 0-2, energetic electronic gets 1 and 3, anything else 0-2.
func (m *Mapper) UseCases(genre string, energyLevel float64) []string {
	switch {
	case genre == "Hip Hop" && energyLevel > 0.7:
		return slices.Clone(m.vocab.UseCases[:3])
	case genre == "Electronic" && energyLevel > 0.6:
		return []string{m.vocab.UseCases[1], m.vocab.UseCases[3]}
	default:
		return slices.Clone(m.vocab.UseCases[:3])
	}
}

// Vocal detects vocals from the peak of MFCC coefficient 1
func (m *Mapper) Vocal(features *extractors.FeatureVector) VocalResult {
	peak := features.MFCCPeak(1)
	if peak <= vocalMFCC {
		return VocalResult{
			Instrumentation: "Instrumental",
			Register:        noneLabel,
			Presence:        noneLabel,
			Autotune:        noneLabel,
		}
	}

	presence := "Medium"
	if peak > highPresenceMFCC {
		presence = "High"
	}
	return VocalResult{
		Instrumentation: "Vocal",
		Register:        m.register.Register(features, m.vocab.VocalTypes),
		Presence:        presence,
		Autotune:        "Low",
	}
}

// Technical reports key, tempo, beat consistency and a quality grade
func (m *Mapper) Technical(features *extractors.FeatureVector) TechnicalResult {
	keyIdx := features.DominantChroma
	if keyIdx < 0 || keyIdx >= len(m.vocab.Keys) {
		keyIdx = 0
	}

	return TechnicalResult{
		Key:             m.vocab.Keys[keyIdx],
		BPM:             int(features.Tempo),
		BeatConsistency: fmt.Sprintf("%.2f", features.BeatConsistency),
		Quality:         Quality(features.SampleRate, features.SpectralBandwidth),
	}
}

// Quality grades the clip by sample rate first, then bandwidth
func Quality(sampleRate int, bandwidth float64) string {
	switch {
	case sampleRate < qualitySampleRate:
		return "Medium"
	case bandwidth < qualityBandwidth:
		return "High"
	default:
		return "Very High"
	}
}
