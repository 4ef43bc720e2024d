package labels

// AnalysisResult is the descriptor bundle shown to the user.
// Every leaf is a plain scalar so it serialises as-is to JSON and YAML.
type AnalysisResult struct {
	Genre       GenreResult     `json:"genre" yaml:"genre"`
	Mood        map[string]int  `json:"mood" yaml:"mood"`
	Instruments []string        `json:"instruments" yaml:"instruments"`
	Energy      EnergyResult    `json:"energy" yaml:"energy"`
	Emotion     EmotionResult   `json:"emotion" yaml:"emotion"`
	UseCases    []string        `json:"use_cases" yaml:"use_cases"`
	Vocal       VocalResult     `json:"vocal" yaml:"vocal"`
	Technical   TechnicalResult `json:"technical" yaml:"technical"`
}

type GenreResult struct {
	MainGenre  string `json:"main_genre" yaml:"main_genre"`
	Confidence int    `json:"confidence" yaml:"confidence"` // 50-100
	Elements   string `json:"elements" yaml:"elements"`
}

type EnergyResult struct {
	Level    float64 `json:"level" yaml:"level"` // 0.3, 0.6 or 0.9
	Text     string  `json:"text" yaml:"text"`
	Variance string  `json:"variance" yaml:"variance"`
}

type EmotionResult struct {
	Value float64 `json:"value" yaml:"value"` // 0 negative, 1 positive
}

type VocalResult struct {
	Instrumentation string `json:"instrumentation" yaml:"instrumentation"`
	Register        string `json:"register" yaml:"register"`
	Presence        string `json:"presence" yaml:"presence"`
	Autotune        string `json:"autotune" yaml:"autotune"`
}

type TechnicalResult struct {
	Key             string `json:"key" yaml:"key"`
	BPM             int    `json:"bpm" yaml:"bpm"`
	BeatConsistency string `json:"beat_consistency" yaml:"beat_consistency"` // two decimals
	Quality         string `json:"quality" yaml:"quality"`
}

// PrimaryMood returns the single mood label and its intensity
func (r AnalysisResult) PrimaryMood() (string, int) {
	for name, value := range r.Mood {
		return name, value
	}
	return "", 0
}
