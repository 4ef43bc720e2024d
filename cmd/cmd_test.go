package cmd

import (
	"bytes"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/RyanBlaney/sonido-insight/configs"
	"github.com/RyanBlaney/sonido-insight/profile"
	"github.com/RyanBlaney/sonido-insight/profile/labels"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sonido-insight.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func writeToneWAV(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tone.wav")
	file, err := os.Create(path)
	require.NoError(t, err)

	data := make([]int, 22050)
	for i := range data {
		data[i] = int(16000 * math.Sin(2*math.Pi*440*float64(i)/22050))
	}
	encoder := wav.NewEncoder(file, 22050, 16, 1, 1)
	require.NoError(t, encoder.Write(&audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: 22050},
		Data:           data,
		SourceBitDepth: 16,
	}))
	require.NoError(t, encoder.Close())
	require.NoError(t, file.Close())
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestRootCommand(t *testing.T) {
	tests := []struct {
		name           string
		args           []string
		wantErr        bool
		expectedOutput string
	}{
		{"no args shows help", []string{}, false, "Sonido Insight analyzes"},
		{"help flag", []string{"--help"}, false, "Available Commands:"},
		{"invalid flag", []string{"--invalid-flag"}, true, ""},
		{"analyze needs a file", []string{"analyze"}, true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, tt.args...)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			if tt.expectedOutput != "" {
				assert.Contains(t, out, tt.expectedOutput)
			}
		})
	}
}

func TestPersistentFlags(t *testing.T) {
	cmd := NewRootCmd()

	logFlag := cmd.PersistentFlags().Lookup("log-level")
	require.NotNil(t, logFlag)
	assert.Equal(t, "info", logFlag.DefValue)

	assert.NotNil(t, cmd.PersistentFlags().Lookup("config"))
	assert.NotNil(t, cmd.PersistentFlags().ShorthandLookup("v"))
}

func TestAnalyzeJSON(t *testing.T) {
	config := writeConfigFile(t, "log_level: error\n")
	wavPath := writeToneWAV(t)

	out, err := run(t, "--config", config, "analyze", wavPath, "-o", "json", "--features", "--precision", "2")
	require.NoError(t, err)

	var report profile.AnalysisReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, wavPath, report.Source)
	assert.Equal(t, 22050, report.SampleRate)
	assert.Equal(t, "A minor", report.Result.Technical.Key)
	require.Contains(t, report.Features, "spectral_centroid")

	centroid := report.Features["spectral_centroid"]
	assert.Equal(t, math.Round(centroid*100)/100, centroid)
}

func TestAnalyzeYAMLAndTable(t *testing.T) {
	config := writeConfigFile(t, "log_level: error\n")
	wavPath := writeToneWAV(t)

	out, err := run(t, "--config", config, "analyze", wavPath, "--output", "yaml")
	require.NoError(t, err)

	var decoded struct {
		Result labels.AnalysisResult `yaml:"result"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "A minor", decoded.Result.Technical.Key)
	assert.NotContains(t, out, "features:")

	out, err = run(t, "--config", config, "analyze", wavPath)
	require.NoError(t, err)
	assert.Contains(t, out, "GENRE")
	assert.Contains(t, out, "SUGGESTED USE CASES")
	assert.Contains(t, out, "TECHNICAL SPECS")
	assert.Contains(t, out, "Key:")
	assert.Contains(t, out, "Tempo Category:")
	assert.Contains(t, out, "A minor")
	assert.NotContains(t, out, "FEATURES")
}

func TestAnalyzeOutputFormatFromConfig(t *testing.T) {
	config := writeConfigFile(t, "log_level: error\noutput:\n  format: json\n")

	out, err := run(t, "--config", config, "analyze", writeToneWAV(t))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(strings.TrimSpace(out), "{"))
}

func TestAnalyzeErrors(t *testing.T) {
	config := writeConfigFile(t, "log_level: error\n")

	_, err := run(t, "--config", config, "analyze", filepath.Join(t.TempDir(), "missing.wav"))
	assert.Error(t, err)

	_, err = run(t, "--config", config, "analyze", writeToneWAV(t), "--duration", "45s")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")

	_, err = run(t, "--config", config, "analyze", writeToneWAV(t), "-o", "csv")
	assert.Error(t, err)

	_, err = run(t, "--config", filepath.Join(t.TempDir(), "absent.yaml"), "analyze", writeToneWAV(t))
	assert.Error(t, err)
}

func TestConfigShow(t *testing.T) {
	config := writeConfigFile(t, "log_level: error\nanalysis:\n  n_mfcc: 20\n")
	t.Setenv("SONIDO_INSIGHT_AUDIO_SAMPLE_RATE", "44100")

	out, err := run(t, "--config", config, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "# "+config)

	var shown configs.Config
	require.NoError(t, yaml.Unmarshal([]byte(out), &shown))
	assert.Equal(t, 44100, shown.Audio.SampleRate)
	assert.Equal(t, 20, shown.Analysis.NMFCC)
	assert.Equal(t, "error", shown.LogLevel)
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "sonido-insight.yaml")
	config := writeConfigFile(t, "log_level: error\n")

	out, err := run(t, "--config", config, "config", "init", path)
	require.NoError(t, err)
	assert.Contains(t, out, path)

	v := viper.New()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())
	loaded, err := configs.LoadConfig(v)
	require.NoError(t, err)
	_, err = configs.ValidateConfig(loaded)
	assert.NoError(t, err)
	assert.Equal(t, 22050, loaded.Audio.SampleRate)

	_, err = run(t, "--config", config, "config", "init", path)
	assert.Error(t, err, "existing files are not overwritten")
}

func TestWriteReportUnknownFormat(t *testing.T) {
	err := writeReport(new(bytes.Buffer), &profile.AnalysisReport{}, "xml", 3)
	assert.Error(t, err)
}
