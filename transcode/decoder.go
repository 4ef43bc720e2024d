package transcode

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/RyanBlaney/sonido-insight/logging"
)

// DecoderConfig holds ffmpeg decoder configuration
type DecoderConfig struct {
	TargetSampleRate int           `json:"target_sample_rate"`
	TargetChannels   int           `json:"target_channels"`
	FFmpegPath       string        `json:"ffmpeg_path"` // Path to ffmpeg binary
	Timeout          time.Duration `json:"timeout"`     // Timeout for ffmpeg operations
}

// DefaultDecoderConfig returns default decoder configuration
func DefaultDecoderConfig() *DecoderConfig {
	return &DecoderConfig{
		TargetSampleRate: 22050,
		TargetChannels:   1,
		FFmpegPath:       "ffmpeg", // Assume in PATH
		Timeout:          30 * time.Second,
	}
}

// Decoder decodes anything ffmpeg understands (FLAC, OGG, and fallbacks)
type Decoder struct {
	config *DecoderConfig
}

// NewDecoder creates a new ffmpeg audio decoder
func NewDecoder(config *DecoderConfig) *Decoder {
	if config == nil {
		config = DefaultDecoderConfig()
	}
	if config.TargetChannels <= 0 {
		config.TargetChannels = 1
	}
	if config.FFmpegPath == "" {
		config.FFmpegPath = "ffmpeg"
	}
	return &Decoder{config: config}
}

// DecodeFile decodes a file to mono float samples at the target rate.
// ffmpeg does the downmix, resampling and duration cap itself.
func (d *Decoder) DecodeFile(ctx context.Context, filename string, maxDuration time.Duration) (*AudioData, error) {
	logger := logging.WithFields(logging.Fields{
		"component": "audio_decoder",
		"function":  "DecodeFile",
		"filename":  filename,
	})

	if err := d.checkFFmpegAvailability(); err != nil {
		return nil, err
	}

	args := d.buildFFmpegArgs(filename, maxDuration)

	if d.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.config.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, d.config.FFmpegPath, args...)

	logger.Debug("Running FFmpeg command", logging.Fields{
		"command": fmt.Sprintf("%s %s", d.config.FFmpegPath, strings.Join(args, " ")),
	})

	startTime := time.Now()
	output, err := cmd.Output()
	if err != nil {
		var exitError *exec.ExitError
		if errors.As(err, &exitError) {
			logger.Error(err, "FFmpeg decode failed", logging.Fields{
				"stderr": string(exitError.Stderr),
			})
			return nil, fmt.Errorf("ffmpeg decode failed: %w, stderr: %s", err, strings.TrimSpace(string(exitError.Stderr)))
		}
		return nil, fmt.Errorf("ffmpeg decode failed: %w", err)
	}

	samples := bytesToFloat64(output)
	if len(samples) == 0 {
		return nil, ErrEmptyAudio
	}

	logger.Debug("FFmpeg decode completed", logging.Fields{
		"output_bytes": len(output),
		"samples":      len(samples),
		"decode_time":  time.Since(startTime).Seconds(),
	})

	audio := NewAudioData(Downmix(samples, d.config.TargetChannels), d.config.TargetSampleRate)
	audio.Metadata = &FileMetadata{
		Path:             filename,
		Decoder:          "ffmpeg",
		SourceSampleRate: d.config.TargetSampleRate,
		SourceChannels:   d.config.TargetChannels,
	}
	return audio, nil
}

// buildFFmpegArgs builds the argument list for raw f64le output on stdout
func (d *Decoder) buildFFmpegArgs(filename string, maxDuration time.Duration) []string {
	args := []string{
		"-v", "error", // Suppress verbose output
		"-i", filename,
	}

	if maxDuration > 0 {
		args = append(args, "-t", fmt.Sprintf("%.3f", maxDuration.Seconds()))
	}

	args = append(args,
		"-map", "0:a:0?",
		"-vn",
		"-f", "f64le",
		"-ac", strconv.Itoa(d.config.TargetChannels),
		"-ar", strconv.Itoa(d.config.TargetSampleRate),
		"pipe:1",
	)

	return args
}

// bytesToFloat64 converts little-endian f64 bytes to samples, dropping a trailing partial sample
func bytesToFloat64(data []byte) []float64 {
	n := len(data) / 8
	samples := make([]float64, n)

	for i := range n {
		bits := binary.LittleEndian.Uint64(data[i*8:])
		samples[i] = math.Float64frombits(bits)
	}

	return samples
}

// checkFFmpegAvailability checks the configured ffmpeg binary can be found
func (d *Decoder) checkFFmpegAvailability() error {
	if _, err := exec.LookPath(d.config.FFmpegPath); err != nil {
		return fmt.Errorf("%w at %q: %v", ErrFFmpegNotFound, d.config.FFmpegPath, err)
	}
	return nil
}

// GetConfig returns decoder configuration information
func (d *Decoder) GetConfig() map[string]any {
	return map[string]any{
		"target_sample_rate": d.config.TargetSampleRate,
		"target_channels":    d.config.TargetChannels,
		"ffmpeg_path":        d.config.FFmpegPath,
		"timeout":            d.config.Timeout,
	}
}
