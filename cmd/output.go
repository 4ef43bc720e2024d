package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/RyanBlaney/sonido-insight/algorithms/common"
	"github.com/RyanBlaney/sonido-insight/dashboard"
	"github.com/RyanBlaney/sonido-insight/profile"
)

// writeReport renders a report as json, yaml or a human readable table
func writeReport(w io.Writer, report *profile.AnalysisReport, format string, precision int) error {
	if report.Features != nil {
		rounded := make(map[string]float64, len(report.Features))
		for k, v := range report.Features {
			rounded[k] = common.Round(v, precision)
		}
		report.Features = rounded
	}

	switch format {
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(report)
	case "yaml":
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(report); err != nil {
			return err
		}
		return encoder.Close()
	case "table":
		writeTable(w, report, precision)
		return nil
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func writeTable(w io.Writer, report *profile.AnalysisReport, precision int) {
	result := report.Result

	fmt.Fprintf(w, "%s (%.1fs @ %d Hz)\n", report.Source, report.Duration, report.SampleRate)

	printSection(w, "genre")
	printKeyValue(w, "Main Genre", fmt.Sprintf("%s (%d%%)", result.Genre.MainGenre, result.Genre.Confidence))
	printKeyValue(w, "Elements", result.Genre.Elements)

	printSection(w, "mood")
	mood, intensity := result.PrimaryMood()
	printKeyValue(w, mood, fmt.Sprintf("%d%%", intensity))

	printSection(w, "instruments")
	printKeyValue(w, strings.Join(result.Instruments, ", "), "")

	printSection(w, "suggested_use_cases")
	printKeyValue(w, strings.Join(result.UseCases, ", "), "")

	printSection(w, "energy")
	printKeyValue(w, "Level", fmt.Sprintf("%s (%.1f)", result.Energy.Text, result.Energy.Level))
	printKeyValue(w, "Variance", result.Energy.Variance)

	printSection(w, "emotion")
	printKeyValue(w, "Value", strconv.FormatFloat(common.Round(result.Emotion.Value, precision), 'f', -1, 64))

	printSection(w, "vocal_analysis")
	printKeyValue(w, dashboard.MetricTitle("instrumentation"), result.Vocal.Instrumentation)
	printKeyValue(w, dashboard.MetricTitle("register"), result.Vocal.Register)
	printKeyValue(w, dashboard.MetricTitle("presence"), result.Vocal.Presence)
	printKeyValue(w, dashboard.MetricTitle("autotune"), result.Vocal.Autotune)

	printSection(w, "technical_specs")
	printKeyValue(w, dashboard.MetricTitle("key"), result.Technical.Key)
	printKeyValue(w, dashboard.MetricTitle("bpm"), strconv.Itoa(result.Technical.BPM))
	printKeyValue(w, dashboard.MetricTitle("tempo_category"), dashboard.TempoCategory(result.Technical.BPM))
	printKeyValue(w, dashboard.MetricTitle("beat_consistency"), result.Technical.BeatConsistency)
	printKeyValue(w, dashboard.MetricTitle("quality"), result.Technical.Quality)

	if len(report.Features) == 0 {
		return
	}

	printSection(w, "features")
	keys := make([]string, 0, len(report.Features))
	for k := range report.Features {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		printKeyValue(w, dashboard.MetricTitle(k), strconv.FormatFloat(report.Features[k], 'f', -1, 64))
	}
}

func printSection(w io.Writer, key string) {
	title := dashboard.SectionLabel(key)
	fmt.Fprintf(w, "\n%s\n", title)
	fmt.Fprintln(w, strings.Repeat("-", len(title)))
}

func printKeyValue(w io.Writer, key, value string) {
	if value == "" {
		fmt.Fprintf(w, "%-25s\n", key)
	} else {
		fmt.Fprintf(w, "%-25s %s\n", key+":", value)
	}
}
