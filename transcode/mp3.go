package transcode

import (
	"errors"
	"fmt"
	"io"

	"github.com/hajimehoshi/go-mp3"
)

// mp3Channels is fixed: go-mp3 always emits 16-bit little-endian stereo
const mp3Channels = 2

// decodeMP3 reads an MP3 stream into interleaved stereo float samples in [-1, 1]
func decodeMP3(r io.Reader) (samples []float64, sampleRate int, err error) {
	decoder, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, 0, fmt.Errorf("mp3 decode failed: %w", err)
	}

	if length := decoder.Length(); length > 0 {
		samples = make([]float64, 0, length/2)
	}

	buf := make([]byte, 4096)
	for {
		n, readErr := decoder.Read(buf)
		for i := 0; i+1 < n; i += 2 {
			sample := int16(buf[i]) | int16(buf[i+1])<<8
			samples = append(samples, float64(sample)/32768.0)
		}
		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				break
			}
			return nil, 0, fmt.Errorf("mp3 read failed: %w", readErr)
		}
	}

	return samples, decoder.SampleRate(), nil
}
