package dashboard

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/RyanBlaney/sonido-insight/algorithms/temporal"
	"github.com/RyanBlaney/sonido-insight/profile/labels"
)

var (
	titleCaser = cases.Title(language.English)
	upperCaser = cases.Upper(language.English)
)

// Labels under the energy bar
var EnergyLabels = []string{"Low", "Medium", "High"}

// SectionLabel renders a snake_case key as an upper case section heading
func SectionLabel(key string) string {
	return upperCaser.String(strings.ReplaceAll(key, "_", " "))
}

// MetricTitle renders a snake_case key as a title cased metric name
func MetricTitle(key string) string {
	switch key {
	case "bpm":
		return "BPM"
	case "autotune":
		return "Autotune Presence"
	case "register":
		return "Vocal Register"
	case "presence":
		return "Vocal Presence"
	}
	return titleCaser.String(strings.ReplaceAll(key, "_", " "))
}

// TempoCategory names the tempo band a BPM value falls in, e.g. "Very Fast"
func TempoCategory(bpm int) string {
	return MetricTitle(temporal.ClassifyTempoCategory(float64(bpm)))
}

// View is the render model of one analysis result
type View struct {
	Genre          Pill
	GenreElements  string
	Moods          []Pill
	Instruments    []Pill
	UseCases       []Pill
	Energy         ProgressBar
	EnergyText     string
	EnergyVariance string
	Emotion        EmotionBar
	Vocal          []Metric
	Technical      []Metric
	Quality        Pill
}

// NewView builds the render model for an analysis result
func NewView(result labels.AnalysisResult) *View {
	view := &View{
		Genre: Pill{
			Text:  fmt.Sprintf("%s %d%%", result.Genre.MainGenre, result.Genre.Confidence),
			Class: PillDefault,
		},
		GenreElements:  result.Genre.Elements,
		Energy:         NewProgressBar(result.Energy.Level, EnergyLabels...),
		EnergyText:     result.Energy.Text,
		EnergyVariance: result.Energy.Variance,
		Emotion:        NewEmotionBar(result.Emotion.Value),
		Quality:        Pill{Text: result.Technical.Quality, Class: PillQuality},
	}

	moods := make([]string, 0, len(result.Mood))
	for mood := range result.Mood {
		moods = append(moods, mood)
	}
	sort.Strings(moods)
	for _, mood := range moods {
		view.Moods = append(view.Moods, Pill{
			Text:  fmt.Sprintf("%s %d%%", mood, result.Mood[mood]),
			Class: PillDefault,
		})
	}

	for _, instrument := range result.Instruments {
		view.Instruments = append(view.Instruments, Pill{Text: instrument, Class: PillInstrument})
	}
	for _, useCase := range result.UseCases {
		view.UseCases = append(view.UseCases, Pill{Text: useCase, Class: PillUseCase})
	}

	view.Vocal = []Metric{
		{Title: MetricTitle("instrumentation"), Value: result.Vocal.Instrumentation},
		{Title: MetricTitle("autotune"), Value: result.Vocal.Autotune},
		{Title: MetricTitle("register"), Value: result.Vocal.Register},
		{Title: MetricTitle("presence"), Value: result.Vocal.Presence},
	}
	view.Technical = []Metric{
		{Title: MetricTitle("key"), Value: result.Technical.Key},
		{Title: MetricTitle("bpm"), Value: strconv.Itoa(result.Technical.BPM)},
		{Title: MetricTitle("tempo_category"), Value: TempoCategory(result.Technical.BPM)},
		{Title: MetricTitle("beat_consistency"), Value: result.Technical.BeatConsistency},
	}

	return view
}

// Option is one entry of a form select
type Option struct {
	Value    string
	Label    string
	Selected bool
}

// Form describes the upload form and the current selection
type Form struct {
	SampleRates []Option
	Durations   []Option
	Formats     []string
}

// NewForm builds the upload form with the given choices preselected
func NewForm(sampleRates []int, durations []time.Duration, selectedRate int, selectedDuration time.Duration, formats []string) Form {
	form := Form{Formats: formats}

	for _, rate := range sampleRates {
		form.SampleRates = append(form.SampleRates, Option{
			Value:    strconv.Itoa(rate),
			Label:    fmt.Sprintf("%d Hz", rate),
			Selected: rate == selectedRate,
		})
	}
	for _, d := range durations {
		form.Durations = append(form.Durations, Option{
			Value:    strconv.Itoa(int(d.Seconds())),
			Label:    DurationLabel(d),
			Selected: d == selectedDuration,
		})
	}

	return form
}

// DurationLabel renders a duration cap; zero means the whole file
func DurationLabel(d time.Duration) string {
	if d <= 0 {
		return "Full song"
	}
	return fmt.Sprintf("%d seconds", int(d.Seconds()))
}

// Page is the data handed to the dashboard template
type Page struct {
	Title    string
	Form     Form
	FileName string
	Result   *View
	Error    string
}
