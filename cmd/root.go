package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/RyanBlaney/sonido-insight/configs"
	"github.com/RyanBlaney/sonido-insight/logging"
)

const (
	appName   = "sonido-insight"
	envPrefix = "SONIDO_INSIGHT"
)

// flagKeys maps command line flags onto configuration keys
var flagKeys = map[string]string{
	"verbose":     "verbose",
	"log-level":   "log_level",
	"output":      "output.format",
	"precision":   "output.precision",
	"sample-rate": "audio.sample_rate",
	"duration":    "audio.max_duration",
	"ffmpeg":      "audio.ffmpeg_path",
	"register":    "analysis.register_strategy",
	"seed":        "analysis.register_seed",
	"address":     "server.address",
	"temp-dir":    "server.temp_dir",
}

// app carries state shared by the commands of one root command
type app struct {
	v          *viper.Viper
	configFile string
	config     *configs.Config
}

// NewRootCmd builds the command tree with its own viper instance
func NewRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:   appName,
		Short: "Descriptive music analysis",
		Long: `Sonido Insight analyzes an audio file and describes it in plain terms.

It extracts spectral, rhythmic and tonal features from the waveform and maps
them onto genre, mood, instruments, energy, emotion, suggested use cases,
vocal characteristics and technical specs (key, BPM, beat consistency, quality).

Supported formats: MP3 and WAV natively, FLAC and OGG through ffmpeg.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initializeConfig(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.configFile, "config", "",
		"config file (default is $HOME/.config/sonido-insight/sonido-insight.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output (debug logging)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(
		newAnalyzeCmd(a),
		newServeCmd(a),
		newConfigCmd(a),
	)

	return rootCmd
}

// Execute adds all child commands to the root command and runs it
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// initializeConfig reads the config file and environment, binds flags and loads the result
func (a *app) initializeConfig(cmd *cobra.Command) error {
	if err := a.readConfig(); err != nil {
		return err
	}

	if err := bindFlags(cmd, a.v); err != nil {
		return fmt.Errorf("failed to bind flags: %w", err)
	}

	config, err := configs.LoadConfig(a.v)
	if err != nil {
		return err
	}

	warnings, err := configs.ValidateConfig(config)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	level, _ := logging.ParseLevel(config.LogLevel)
	if config.Verbose {
		level = logging.DebugLevel
	}
	logging.SetLevel(level)

	for _, warning := range warnings {
		logging.Warn("Configuration warning", logging.Fields{"warning": warning})
	}

	a.config = config
	return nil
}

// readConfig reads in the config file and ENV variables if set
func (a *app) readConfig() error {
	if a.configFile != "" {
		a.v.SetConfigFile(a.configFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			a.v.AddConfigPath(filepath.Join(home, ".config", appName))
		}
		a.v.AddConfigPath(filepath.Join("/etc", appName))
		a.v.AddConfigPath("./configs")
		a.v.SetConfigName(appName)
		a.v.SetConfigType("yaml")
	}

	a.v.SetEnvPrefix(envPrefix)
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	a.v.AutomaticEnv()

	configs.SetDefaults(a.v)

	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if a.configFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}

	logging.Debug("Using config file", logging.Fields{"path": a.v.ConfigFileUsed()})
	return nil
}

// bindFlags binds each known cobra flag to its configuration key
func bindFlags(cmd *cobra.Command, v *viper.Viper) error {
	var lastErr error

	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		key, ok := flagKeys[f.Name]
		if !ok {
			return
		}
		if err := v.BindPFlag(key, f); err != nil {
			lastErr = err
		}
	})

	return lastErr
}
