package profile

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/RyanBlaney/sonido-insight/logging"
	"github.com/RyanBlaney/sonido-insight/profile/config"
	"github.com/RyanBlaney/sonido-insight/profile/extractors"
	"github.com/RyanBlaney/sonido-insight/profile/labels"
	"github.com/RyanBlaney/sonido-insight/transcode"
)

// Register strategy names accepted in AnalyzerConfig
const (
	RegisterCentroid = "centroid"
	RegisterRandom   = "random"
)

// AnalysisReport wraps the labels with the context they were produced in
type AnalysisReport struct {
	ID         string                    `json:"id" yaml:"id"`
	Source     string                    `json:"source,omitempty" yaml:"source,omitempty"`
	Timestamp  time.Time                 `json:"timestamp" yaml:"timestamp"`
	Duration   float64                   `json:"duration_seconds" yaml:"duration_seconds"`
	SampleRate int                       `json:"sample_rate" yaml:"sample_rate"`
	Result     labels.AnalysisResult     `json:"result" yaml:"result"`
	Features   map[string]float64        `json:"features,omitempty" yaml:"features,omitempty"`
	Vector     *extractors.FeatureVector `json:"-" yaml:"-"`
}

// AnalyzerConfig holds configuration for the analysis pipeline
type AnalyzerConfig struct {
	FeatureConfig    *config.FeatureConfig    `json:"feature_config"`
	Vocabulary       *config.Vocabulary       `json:"vocabulary,omitempty"`
	RegisterStrategy string                   `json:"register_strategy"` // "centroid" or "random"
	RegisterSeed     int64                    `json:"register_seed"`
	DecoderConfig    *transcode.DecoderConfig `json:"decoder_config"`
}

// DefaultAnalyzerConfig returns the default pipeline configuration
func DefaultAnalyzerConfig() *AnalyzerConfig {
	return &AnalyzerConfig{
		FeatureConfig:    config.DefaultFeatureConfig(),
		RegisterStrategy: RegisterCentroid,
		DecoderConfig:    transcode.DefaultDecoderConfig(),
	}
}

// Analyzer runs load -> extract -> map. It keeps no per-call state, so one
// Analyzer can serve concurrent requests.
type Analyzer struct {
	config    *AnalyzerConfig
	extractor *extractors.Extractor
	mapper    *labels.Mapper
	loader    *transcode.Loader
	logger    logging.Logger
}

// NewAnalyzer creates an analyzer; a nil config uses the defaults
func NewAnalyzer(cfg *AnalyzerConfig) (*Analyzer, error) {
	if cfg == nil {
		cfg = DefaultAnalyzerConfig()
	}

	var opts []labels.Option
	if cfg.Vocabulary != nil {
		opts = append(opts, labels.WithVocabulary(*cfg.Vocabulary))
	}
	switch cfg.RegisterStrategy {
	case "", RegisterCentroid:
	case RegisterRandom:
		opts = append(opts, labels.WithRandomRegister(cfg.RegisterSeed))
	default:
		return nil, fmt.Errorf("unknown register strategy %q", cfg.RegisterStrategy)
	}

	mapper, err := labels.NewMapper(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create label mapper: %w", err)
	}

	return &Analyzer{
		config:    cfg,
		extractor: extractors.NewExtractor(cfg.FeatureConfig),
		mapper:    mapper,
		loader:    transcode.NewLoader(cfg.DecoderConfig),
		logger: logging.WithFields(logging.Fields{
			"component": "analyzer",
		}),
	}, nil
}

// Analyze extracts features from decoded audio and maps them to labels
func (a *Analyzer) Analyze(ctx context.Context, audioData *transcode.AudioData) (*AnalysisReport, error) {
	if audioData == nil {
		return nil, fmt.Errorf("audio data cannot be nil")
	}

	id := uuid.NewString()
	logger := a.logger.WithFields(logging.Fields{
		"function":    "Analyze",
		"analysis_id": id,
		"sample_rate": audioData.SampleRate,
		"samples":     len(audioData.PCM),
	})

	logger.Debug("Starting analysis")

	features, err := a.extractor.Extract(ctx, audioData.PCM, audioData.SampleRate)
	if err != nil {
		logger.Error(err, "Failed to extract features")
		return nil, fmt.Errorf("feature extraction failed: %w", err)
	}

	report := &AnalysisReport{
		ID:         id,
		Timestamp:  time.Now(),
		Duration:   audioData.Seconds(),
		SampleRate: audioData.SampleRate,
		Result:     a.mapper.Map(features),
		Features:   features.Summary(),
		Vector:     features,
	}
	if audioData.Metadata != nil {
		report.Source = audioData.Metadata.Path
	}

	logger.Debug("Analysis completed", logging.Fields{
		"genre": report.Result.Genre.MainGenre,
		"key":   report.Result.Technical.Key,
		"bpm":   report.Result.Technical.BPM,
	})

	return report, nil
}

// AnalyzeFile loads a file with the given options and analyzes it
func (a *Analyzer) AnalyzeFile(ctx context.Context, path string, opts transcode.LoadOptions) (*AnalysisReport, error) {
	audioData, err := a.loader.Load(ctx, path, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to load audio: %w", err)
	}
	return a.Analyze(ctx, audioData)
}

// Mapper returns the label mapper in use
func (a *Analyzer) Mapper() *labels.Mapper {
	return a.mapper
}
