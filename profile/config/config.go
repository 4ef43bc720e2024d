package config

// Vocabulary holds the ordered label lists the mapper indexes into.
// Order matters: several rules pick by position.
type Vocabulary struct {
	Genres      []string `json:"genres" yaml:"genres"`
	Moods       []string `json:"moods" yaml:"moods"`
	Instruments []string `json:"instruments" yaml:"instruments"`
	UseCases    []string `json:"use_cases" yaml:"use_cases"`
	VocalTypes  []string `json:"vocal_types" yaml:"vocal_types"`
	Keys        []string `json:"keys" yaml:"keys"`
}

// DefaultVocabulary returns the built-in label lists
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		Genres:      []string{"Hip Hop", "Electronic", "Rock", "Pop", "Classical", "Jazz", "Country", "R&B", "Metal", "Folk"},
		Moods:       []string{"Bold", "Confident", "Restless", "Energetic", "Calm", "Melancholic", "Upbeat", "Tense"},
		Instruments: []string{"Bass", "Beats", "Synth", "Guitar", "Piano", "Drums", "Strings", "Brass", "Woodwinds"},
		UseCases:    []string{"extreme sports", "party", "beats", "workout", "relaxation", "focus", "driving", "meditation"},
		VocalTypes:  []string{"female and male", "female", "male", "group", "chorus", "instrumental"},
		Keys: []string{
			"C major", "C# minor", "D major", "D# minor", "E major", "F minor",
			"F# major", "G minor", "G# major", "A minor", "A# major", "B minor",
		},
	}
}

// Clone returns a deep copy so callers cannot mutate a shared vocabulary
func (v Vocabulary) Clone() Vocabulary {
	return Vocabulary{
		Genres:      append([]string(nil), v.Genres...),
		Moods:       append([]string(nil), v.Moods...),
		Instruments: append([]string(nil), v.Instruments...),
		UseCases:    append([]string(nil), v.UseCases...),
		VocalTypes:  append([]string(nil), v.VocalTypes...),
		Keys:        append([]string(nil), v.Keys...),
	}
}

// FeatureConfig holds frame and filter bank parameters for extraction
type FeatureConfig struct {
	WindowSize       int     `json:"window_size"`
	HopSize          int     `json:"hop_size"`
	MFCCCoefficients int     `json:"mfcc_coefficients"`
	MelBands         int     `json:"mel_bands"`
	RolloffPercent   float64 `json:"rolloff_percent"`
	TuningFreq       float64 `json:"tuning_freq"`
	StartBPM         float64 `json:"start_bpm"`
}

// DefaultFeatureConfig returns the default analysis parameters
func DefaultFeatureConfig() *FeatureConfig {
	return &FeatureConfig{
		WindowSize:       2048,
		HopSize:          512,
		MFCCCoefficients: 13,
		MelBands:         128,
		RolloffPercent:   0.85,
		TuningFreq:       440.0,
		StartBPM:         120.0,
	}
}
