package transcode

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/RyanBlaney/sonido-insight/algorithms/common"
	"github.com/RyanBlaney/sonido-insight/logging"
)

// Container formats recognised by the loader
const (
	FormatWAV  = "wav"
	FormatMP3  = "mp3"
	FormatFLAC = "flac"
	FormatOGG  = "ogg"
)

var extensionFormats = map[string]string{
	".wav":  FormatWAV,
	".wave": FormatWAV,
	".mp3":  FormatMP3,
	".flac": FormatFLAC,
	".ogg":  FormatOGG,
	".oga":  FormatOGG,
}

// SupportedExtensions lists the file extensions accepted for upload
func SupportedExtensions() []string {
	return []string{".mp3", ".wav", ".flac", ".ogg"}
}

// LoadOptions controls how a file becomes a waveform
type LoadOptions struct {
	SampleRate  int           `json:"sample_rate"`  // target rate, 0 keeps the source rate
	MaxDuration time.Duration `json:"max_duration"` // 0 means the whole file
}

// Loader turns audio files into mono waveforms. WAV and MP3 decode natively;
// everything else goes through ffmpeg.
type Loader struct {
	ffmpeg       *Decoder
	interpolator *common.Interpolator
	logger       logging.Logger
}

// NewLoader creates a loader; a nil config uses ffmpeg from PATH
func NewLoader(config *DecoderConfig) *Loader {
	if config == nil {
		config = DefaultDecoderConfig()
	}
	return &Loader{
		ffmpeg:       NewDecoder(config),
		interpolator: common.NewInterpolator(),
		logger: logging.WithFields(logging.Fields{
			"component": "audio_loader",
		}),
	}
}

// Load decodes a file, downmixes to mono, resamples and applies the duration cap
func (l *Loader) Load(ctx context.Context, path string, opts LoadOptions) (*AudioData, error) {
	logger := l.logger.WithFields(logging.Fields{
		"function":     "Load",
		"path":         path,
		"sample_rate":  opts.SampleRate,
		"max_duration": opts.MaxDuration.Seconds(),
	})

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}

	logger.Debug("Detected audio format", logging.Fields{"format": format})

	var audio *AudioData
	switch format {
	case FormatWAV, FormatMP3:
		audio, err = l.loadNative(path, format)
	default:
		audio, err = l.loadFFmpeg(ctx, path, opts)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", filepath.Base(path), err)
	}
	audio.Metadata.Format = format

	if opts.SampleRate > 0 && audio.SampleRate != opts.SampleRate {
		logger.Debug("Resampling", logging.Fields{
			"from": audio.SampleRate,
			"to":   opts.SampleRate,
		})
		audio.PCM = l.interpolator.ResampleSignal(audio.PCM, audio.SampleRate, opts.SampleRate)
		audio.SampleRate = opts.SampleRate
	}

	var truncated bool
	audio.PCM, truncated = Truncate(audio.PCM, audio.SampleRate, opts.MaxDuration)
	audio.Metadata.Truncated = audio.Metadata.Truncated || truncated
	audio.Duration = samplesToDuration(len(audio.PCM), audio.SampleRate)

	if len(audio.PCM) == 0 {
		return nil, ErrEmptyAudio
	}

	logger.Debug("Audio loaded", logging.Fields{
		"samples":   len(audio.PCM),
		"duration":  audio.Duration.Seconds(),
		"truncated": audio.Metadata.Truncated,
	})

	return audio, nil
}

func (l *Loader) loadNative(path, format string) (*AudioData, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var (
		interleaved []float64
		sampleRate  int
		channels    int
		bitDepth    int
	)

	if format == FormatWAV {
		interleaved, sampleRate, channels, bitDepth, err = decodeWAV(file)
	} else {
		channels, bitDepth = mp3Channels, 16
		interleaved, sampleRate, err = decodeMP3(bufio.NewReader(file))
	}
	if err != nil {
		return nil, err
	}
	if len(interleaved) == 0 {
		return nil, ErrEmptyAudio
	}

	audio := NewAudioData(Downmix(interleaved, channels), sampleRate)
	audio.Metadata = &FileMetadata{
		Path:             path,
		Decoder:          "native",
		SourceSampleRate: sampleRate,
		SourceChannels:   channels,
		BitDepth:         bitDepth,
	}
	return audio, nil
}

func (l *Loader) loadFFmpeg(ctx context.Context, path string, opts LoadOptions) (*AudioData, error) {
	config := *l.ffmpeg.config
	if opts.SampleRate > 0 {
		config.TargetSampleRate = opts.SampleRate
	}

	audio, err := NewDecoder(&config).DecodeFile(ctx, path, opts.MaxDuration)
	if err != nil {
		return nil, err
	}
	// ffmpeg stops at -t so a full-length result means the cap was hit
	if opts.MaxDuration > 0 && audio.Duration >= opts.MaxDuration {
		audio.Metadata.Truncated = true
	}
	return audio, nil
}

// DetectFormat picks a container format from the extension, falling back to
// the file header when the extension is unknown
func DetectFormat(path string) (string, error) {
	if format, ok := extensionFormats[strings.ToLower(filepath.Ext(path))]; ok {
		return format, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	header := make([]byte, 12)
	n, _ := file.Read(header)
	if format := SniffFormat(header[:n]); format != "" {
		return format, nil
	}

	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
}

// SniffFormat identifies a container from its first bytes, "" if unknown
func SniffFormat(header []byte) string {
	switch {
	case len(header) >= 12 && bytes.Equal(header[:4], []byte("RIFF")) && bytes.Equal(header[8:12], []byte("WAVE")):
		return FormatWAV
	case bytes.HasPrefix(header, []byte("fLaC")):
		return FormatFLAC
	case bytes.HasPrefix(header, []byte("OggS")):
		return FormatOGG
	case bytes.HasPrefix(header, []byte("ID3")):
		return FormatMP3
	case len(header) >= 2 && header[0] == 0xFF && header[1]&0xE0 == 0xE0:
		return FormatMP3
	}
	return ""
}
