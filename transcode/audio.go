package transcode

import (
	"errors"
	"time"
)

var (
	// ErrUnsupportedFormat is returned when no decoder handles the input
	ErrUnsupportedFormat = errors.New("unsupported audio format")
	// ErrEmptyAudio is returned when a decoder produces no samples
	ErrEmptyAudio = errors.New("no audio samples decoded")
	// ErrFFmpegNotFound is returned when a format needs ffmpeg and it is not installed
	ErrFFmpegNotFound = errors.New("ffmpeg not found")
)

// AudioData represents decoded mono audio
type AudioData struct {
	PCM        []float64     `json:"-"` // samples in [-1, 1]
	SampleRate int           `json:"sample_rate"`
	Channels   int           `json:"channels"`
	Duration   time.Duration `json:"duration"`
	Timestamp  time.Time     `json:"timestamp"`
	Metadata   *FileMetadata `json:"metadata,omitempty"`
}

// FileMetadata describes the source of decoded audio
type FileMetadata struct {
	Path             string `json:"path"`
	Format           string `json:"format"`
	Decoder          string `json:"decoder"`
	SourceSampleRate int    `json:"source_sample_rate"`
	SourceChannels   int    `json:"source_channels"`
	BitDepth         int    `json:"bit_depth,omitempty"`
	Truncated        bool   `json:"truncated,omitempty"`
}

// NewAudioData wraps mono samples and fills in the duration
func NewAudioData(pcm []float64, sampleRate int) *AudioData {
	return &AudioData{
		PCM:        pcm,
		SampleRate: sampleRate,
		Channels:   1,
		Duration:   samplesToDuration(len(pcm), sampleRate),
		Timestamp:  time.Now(),
	}
}

// Seconds returns the clip length in seconds
func (a *AudioData) Seconds() float64 {
	if a.SampleRate <= 0 {
		return 0
	}
	return float64(len(a.PCM)) / float64(a.SampleRate)
}

// Downmix averages interleaved channels into a mono signal
func Downmix(interleaved []float64, channels int) []float64 {
	if channels <= 1 {
		out := make([]float64, len(interleaved))
		copy(out, interleaved)
		return out
	}

	frames := len(interleaved) / channels
	mono := make([]float64, frames)
	for i := range frames {
		sum := 0.0
		for c := range channels {
			sum += interleaved[i*channels+c]
		}
		mono[i] = sum / float64(channels)
	}

	return mono
}

// Truncate caps a signal at maxDuration; zero or negative means no cap
func Truncate(pcm []float64, sampleRate int, maxDuration time.Duration) ([]float64, bool) {
	if maxDuration <= 0 || sampleRate <= 0 {
		return pcm, false
	}

	limit := int(maxDuration.Seconds() * float64(sampleRate))
	if len(pcm) <= limit {
		return pcm, false
	}
	return pcm[:limit], true
}

func samplesToDuration(samples, sampleRate int) time.Duration {
	if sampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(samples) / float64(sampleRate) * float64(time.Second))
}
