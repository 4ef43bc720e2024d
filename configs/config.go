package configs

import (
	"fmt"
	"slices"
	"time"

	"github.com/spf13/viper"

	"github.com/RyanBlaney/sonido-insight/logging"
	"github.com/RyanBlaney/sonido-insight/profile"
	profileconfig "github.com/RyanBlaney/sonido-insight/profile/config"
	"github.com/RyanBlaney/sonido-insight/transcode"
)

// Sample rates offered in the upload form; others are accepted with a warning
var StandardSampleRates = []int{22050, 44100, 48000}

// Duration caps offered in the upload form; 0 analyzes the whole file
var AllowedDurations = []time.Duration{0, 30 * time.Second, 60 * time.Second, 90 * time.Second}

// Config represents the application configuration
type Config struct {
	// Application settings
	Verbose  bool   `mapstructure:"verbose" yaml:"verbose"`
	LogLevel string `mapstructure:"log_level" yaml:"log_level"`

	Audio    AudioConfig    `mapstructure:"audio" yaml:"audio"`
	Analysis AnalysisConfig `mapstructure:"analysis" yaml:"analysis"`
	Server   ServerConfig   `mapstructure:"server" yaml:"server"`
	Output   OutputConfig   `mapstructure:"output" yaml:"output"`
}

// AudioConfig contains audio loading settings
type AudioConfig struct {
	SampleRate  int           `mapstructure:"sample_rate" yaml:"sample_rate"`
	MaxDuration time.Duration `mapstructure:"max_duration" yaml:"max_duration"`
	FFmpegPath  string        `mapstructure:"ffmpeg_path" yaml:"ffmpeg_path"`
	Timeout     time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// AnalysisConfig contains feature extraction and labelling settings
type AnalysisConfig struct {
	FFTSize          int     `mapstructure:"fft_size" yaml:"fft_size"`
	HopSize          int     `mapstructure:"hop_size" yaml:"hop_size"`
	NMFCC            int     `mapstructure:"n_mfcc" yaml:"n_mfcc"`
	NMels            int     `mapstructure:"n_mels" yaml:"n_mels"`
	TuningFreq       float64 `mapstructure:"tuning_freq" yaml:"tuning_freq"`
	StartBPM         float64 `mapstructure:"start_bpm" yaml:"start_bpm"`
	RegisterStrategy string  `mapstructure:"register_strategy" yaml:"register_strategy"`
	RegisterSeed     int64   `mapstructure:"register_seed" yaml:"register_seed"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Address     string `mapstructure:"address" yaml:"address"`
	MaxUploadMB int64  `mapstructure:"max_upload_mb" yaml:"max_upload_mb"`
	TempDir     string `mapstructure:"temp_dir" yaml:"temp_dir"`
}

// OutputConfig contains output formatting settings
type OutputConfig struct {
	Format    string `mapstructure:"format" yaml:"format"`
	Precision int    `mapstructure:"precision" yaml:"precision"`
}

// LoadConfig decodes configuration from v, or the global viper when v is nil
func LoadConfig(v *viper.Viper) (*Config, error) {
	if v == nil {
		v = viper.GetViper()
	}
	SetDefaults(v)

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unable to decode configuration: %w", err)
	}

	return config, nil
}

// ValidateConfig validates the configuration. Non-fatal issues come back as warnings.
func ValidateConfig(config *Config) ([]string, error) {
	var warnings []string

	if config.Audio.SampleRate <= 0 {
		return nil, fmt.Errorf("audio sample rate must be positive")
	}
	if !slices.Contains(StandardSampleRates, config.Audio.SampleRate) {
		warnings = append(warnings, fmt.Sprintf("non-standard sample rate %d Hz", config.Audio.SampleRate))
	}

	if !slices.Contains(AllowedDurations, config.Audio.MaxDuration) {
		return nil, fmt.Errorf("max duration must be one of 0s, 30s, 60s, 90s, got %s", config.Audio.MaxDuration)
	}

	if config.Analysis.FFTSize <= 0 || config.Analysis.HopSize <= 0 {
		return nil, fmt.Errorf("fft size and hop size must be positive")
	}
	if config.Analysis.HopSize > config.Analysis.FFTSize {
		return nil, fmt.Errorf("hop size %d exceeds fft size %d", config.Analysis.HopSize, config.Analysis.FFTSize)
	}
	if config.Analysis.NMFCC < 2 {
		return nil, fmt.Errorf("at least 2 MFCC coefficients are required, got %d", config.Analysis.NMFCC)
	}
	if config.Analysis.NMels < config.Analysis.NMFCC {
		return nil, fmt.Errorf("mel bands (%d) must be at least the MFCC count (%d)", config.Analysis.NMels, config.Analysis.NMFCC)
	}
	if config.Analysis.TuningFreq <= 0 {
		return nil, fmt.Errorf("tuning frequency must be positive, got %g", config.Analysis.TuningFreq)
	}
	if config.Analysis.StartBPM <= 0 {
		return nil, fmt.Errorf("start bpm must be positive, got %g", config.Analysis.StartBPM)
	}

	switch config.Analysis.RegisterStrategy {
	case profile.RegisterCentroid, profile.RegisterRandom:
	default:
		return nil, fmt.Errorf("unknown register strategy %q", config.Analysis.RegisterStrategy)
	}

	switch config.Output.Format {
	case "json", "yaml", "table":
	default:
		return nil, fmt.Errorf("unknown output format %q", config.Output.Format)
	}

	if config.Server.MaxUploadMB <= 0 {
		return nil, fmt.Errorf("max upload size must be positive")
	}

	if _, err := logging.ParseLevel(config.LogLevel); err != nil {
		return nil, err
	}

	return warnings, nil
}

// AnalyzerConfig builds the analysis pipeline configuration
func (c *Config) AnalyzerConfig() *profile.AnalyzerConfig {
	features := profileconfig.DefaultFeatureConfig()
	features.WindowSize = c.Analysis.FFTSize
	features.HopSize = c.Analysis.HopSize
	features.MFCCCoefficients = c.Analysis.NMFCC
	features.MelBands = c.Analysis.NMels
	features.TuningFreq = c.Analysis.TuningFreq
	features.StartBPM = c.Analysis.StartBPM

	decoder := transcode.DefaultDecoderConfig()
	decoder.TargetSampleRate = c.Audio.SampleRate
	if c.Audio.FFmpegPath != "" {
		decoder.FFmpegPath = c.Audio.FFmpegPath
	}
	if c.Audio.Timeout > 0 {
		decoder.Timeout = c.Audio.Timeout
	}

	return &profile.AnalyzerConfig{
		FeatureConfig:    features,
		RegisterStrategy: c.Analysis.RegisterStrategy,
		RegisterSeed:     c.Analysis.RegisterSeed,
		DecoderConfig:    decoder,
	}
}

// LoadOptions returns the loader options for the configured rate and cap
func (c *Config) LoadOptions() transcode.LoadOptions {
	return transcode.LoadOptions{
		SampleRate:  c.Audio.SampleRate,
		MaxDuration: c.Audio.MaxDuration,
	}
}
