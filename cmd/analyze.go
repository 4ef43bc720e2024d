package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/RyanBlaney/sonido-insight/logging"
	"github.com/RyanBlaney/sonido-insight/profile"
)

func newAnalyzeCmd(a *app) *cobra.Command {
	var withFeatures bool

	analyzeCmd := &cobra.Command{
		Use:   "analyze <file>",
		Short: "Analyze an audio file",
		Long: `Analyze an audio file and print its descriptors.

The file is decoded, downmixed to mono, resampled to --sample-rate and cut to
--duration (0 analyzes the whole file) before features are extracted.

Examples:
  # Table output with the default 30 second window
  sonido-insight analyze song.mp3

  # Whole file at 44.1 kHz as JSON, including the raw feature summary
  sonido-insight analyze song.flac --duration 0 --sample-rate 44100 -o json --features`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runAnalyze(cmd, args[0], withFeatures)
		},
	}

	analyzeCmd.Flags().Int("sample-rate", 22050, "analysis sample rate in Hz")
	analyzeCmd.Flags().Duration("duration", 30*time.Second, "analyze at most this much audio: 0s (whole file), 30s, 60s or 90s")
	analyzeCmd.Flags().StringP("output", "o", "table", "output format (table, json, yaml)")
	analyzeCmd.Flags().Int("precision", 3, "decimal places for feature values")
	analyzeCmd.Flags().String("register", profile.RegisterCentroid, "vocal register strategy (centroid, random)")
	analyzeCmd.Flags().Int64("seed", 0, "seed for the random register strategy")
	analyzeCmd.Flags().String("ffmpeg", "ffmpeg", "ffmpeg binary used for FLAC and OGG")
	analyzeCmd.Flags().BoolVar(&withFeatures, "features", false, "include the raw feature summary")

	return analyzeCmd
}

func (a *app) runAnalyze(cmd *cobra.Command, path string, withFeatures bool) error {
	logger := logging.WithFields(logging.Fields{
		"function": "runAnalyze",
		"file":     path,
	})

	analyzer, err := profile.NewAnalyzer(a.config.AnalyzerConfig())
	if err != nil {
		return err
	}

	report, err := analyzer.AnalyzeFile(cmd.Context(), path, a.config.LoadOptions())
	if err != nil {
		return fmt.Errorf("failed to analyze %s: %w", path, err)
	}

	logger.Debug("Analysis finished", logging.Fields{"analysis_id": report.ID})

	if !withFeatures {
		report.Features = nil
	}

	return writeReport(cmd.OutOrStdout(), report, a.config.Output.Format, a.config.Output.Precision)
}
