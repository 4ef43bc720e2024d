package transcode

import (
	"fmt"
	"io"

	"github.com/go-audio/wav"
)

// decodeWAV reads a PCM WAV stream into interleaved float samples in [-1, 1]
func decodeWAV(r io.ReadSeeker) (samples []float64, sampleRate, channels, bitDepth int, err error) {
	decoder := wav.NewDecoder(r)
	if !decoder.IsValidFile() {
		return nil, 0, 0, 0, fmt.Errorf("%w: invalid WAV file", ErrUnsupportedFormat)
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, 0, 0, 0, fmt.Errorf("could not read PCM buffer: %w", err)
	}
	if buf.Format == nil || buf.Format.NumChannels <= 0 {
		return nil, 0, 0, 0, fmt.Errorf("%w: WAV file has no channel layout", ErrUnsupportedFormat)
	}

	bitDepth = int(decoder.BitDepth)
	if bitDepth <= 0 {
		bitDepth = buf.SourceBitDepth
	}

	samples = make([]float64, len(buf.Data))
	switch bitDepth {
	case 8:
		// 8-bit WAV is unsigned
		for i, v := range buf.Data {
			samples[i] = float64(v-128) / 128.0
		}
	case 16, 24, 32:
		scale := float64(int64(1) << (bitDepth - 1))
		for i, v := range buf.Data {
			samples[i] = float64(v) / scale
		}
	default:
		return nil, 0, 0, 0, fmt.Errorf("%w: %d-bit WAV", ErrUnsupportedFormat, bitDepth)
	}

	return samples, buf.Format.SampleRate, buf.Format.NumChannels, bitDepth, nil
}
