package configs

import (
	"os"
	"time"

	"github.com/spf13/viper"
)

// SetDefaults sets default values for every key that is not already set
func SetDefaults(v *viper.Viper) {
	// Application defaults
	v.SetDefault("verbose", false)
	v.SetDefault("log_level", "info")

	// Audio loading defaults
	v.SetDefault("audio.sample_rate", 22050)
	v.SetDefault("audio.max_duration", 30*time.Second)
	v.SetDefault("audio.ffmpeg_path", "ffmpeg")
	v.SetDefault("audio.timeout", 30*time.Second)

	// Analysis defaults
	v.SetDefault("analysis.fft_size", 2048)
	v.SetDefault("analysis.hop_size", 512)
	v.SetDefault("analysis.n_mfcc", 13)
	v.SetDefault("analysis.n_mels", 128)
	v.SetDefault("analysis.tuning_freq", 440.0)
	v.SetDefault("analysis.start_bpm", 120.0)
	v.SetDefault("analysis.register_strategy", "centroid")
	v.SetDefault("analysis.register_seed", 0)

	// Server defaults
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.max_upload_mb", 50)
	v.SetDefault("server.temp_dir", os.TempDir())

	// Output defaults
	v.SetDefault("output.format", "table")
	v.SetDefault("output.precision", 3)
}
