package chroma

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// NumPitchClasses is the number of chroma bins, C through B
const NumPitchClasses = 12

// PitchClassNames labels the chroma bins; index 0 is C
var PitchClassNames = [NumPitchClasses]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// ChromaSTFT folds an STFT power spectrogram into 12 octave-independent pitch
// classes. Each FFT bin inside [minFreq, maxFreq] is assigned to its nearest
// equal-tempered semitone relative to the tuning frequency (A4).
// Frames are normalised so their strongest pitch class is 1.
type ChromaSTFT struct {
	sampleRate int
	tuningFreq float64
	minFreq    float64
	maxFreq    float64
}

// NewChromaSTFT creates a new STFT-based chromagram calculator
func NewChromaSTFT(sampleRate int, tuningFreq float64) *ChromaSTFT {
	if tuningFreq <= 0 {
		tuningFreq = 440.0
	}
	return &ChromaSTFT{
		sampleRate: sampleRate,
		tuningFreq: tuningFreq,
		minFreq:    80.0,   // Approximate E2
		maxFreq:    8000.0, // High enough for harmonics
	}
}

// FromPower converts a Time x Frequency power spectrogram into a chromagram
func (cs *ChromaSTFT) FromPower(power [][]float64, fftSize int) [][]float64 {
	chromagram := make([][]float64, len(power))
	if len(power) == 0 {
		return chromagram
	}

	mapping := cs.calculateChromaMapping(len(power[0]), float64(cs.sampleRate)/float64(fftSize))

	for t, frame := range power {
		chromagram[t] = make([]float64, NumPitchClasses)
		for f, energy := range frame {
			if bin := mapping[f]; bin >= 0 {
				chromagram[t][bin] += energy
			}
		}
		normalizeMax(chromagram[t])
	}

	return chromagram
}

// calculateChromaMapping maps FFT bins to chroma bins, -1 outside the range
func (cs *ChromaSTFT) calculateChromaMapping(freqBins int, freqResolution float64) []int {
	mapping := make([]int, freqBins)

	for f := range freqBins {
		frequency := float64(f) * freqResolution

		if frequency < cs.minFreq || frequency > cs.maxFreq {
			mapping[f] = -1
			continue
		}

		midiNote := int(math.Round(cs.frequencyToMIDI(frequency)))
		mapping[f] = ((midiNote % NumPitchClasses) + NumPitchClasses) % NumPitchClasses
	}

	return mapping
}

// frequencyToMIDI converts frequency to MIDI note number: 69 + 12*log2(f/A4)
func (cs *ChromaSTFT) frequencyToMIDI(frequency float64) float64 {
	if frequency <= 0 {
		return 0
	}
	return 69.0 + 12.0*math.Log2(frequency/cs.tuningFreq)
}

// normalizeMax scales a frame so its maximum is 1; silent frames stay zero
func normalizeMax(frame []float64) {
	peak := floats.Max(frame)
	if peak <= 1e-10 {
		return
	}
	floats.Scale(1/peak, frame)
}

// Means returns the per pitch class mean over all frames
func Means(chromagram [][]float64) [NumPitchClasses]float64 {
	var means [NumPitchClasses]float64
	if len(chromagram) == 0 {
		return means
	}

	for _, frame := range chromagram {
		for bin := 0; bin < NumPitchClasses && bin < len(frame); bin++ {
			means[bin] += frame[bin]
		}
	}
	for bin := range means {
		means[bin] /= float64(len(chromagram))
	}

	return means
}

// DominantPitchClass returns the index of the strongest mean bin.
// Ties resolve to the lowest index.
func DominantPitchClass(means [NumPitchClasses]float64) int {
	return floats.MaxIdx(means[:])
}
