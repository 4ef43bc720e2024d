package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanBlaney/sonido-insight/configs"
	"github.com/RyanBlaney/sonido-insight/profile"
	"github.com/RyanBlaney/sonido-insight/transcode"
)

type fakeAnalyzer struct {
	err      error
	path     string
	existed  bool
	lastOpts transcode.LoadOptions
}

func (f *fakeAnalyzer) AnalyzeFile(_ context.Context, path string, opts transcode.LoadOptions) (*profile.AnalysisReport, error) {
	f.path = path
	f.lastOpts = opts
	_, err := os.Stat(path)
	f.existed = err == nil
	if f.err != nil {
		return nil, f.err
	}
	return &profile.AnalysisReport{
		ID:       "fixed",
		Source:   path,
		Features: map[string]float64{"tempo": 120},
	}, nil
}

func testConfig(t *testing.T) *configs.Config {
	t.Helper()
	cfg, err := configs.LoadConfig(viper.New())
	require.NoError(t, err)
	cfg.Server.TempDir = t.TempDir()
	cfg.Server.MaxUploadMB = 1
	return cfg
}

func newTestServer(t *testing.T, analyzer Analyzer) (*Server, *configs.Config) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := testConfig(t)
	srv, err := New(cfg, analyzer)
	require.NoError(t, err)
	return srv, cfg
}

func wavBytes(t *testing.T, sampleRate int, seconds float64) []byte {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture.wav")
	file, err := os.Create(path)
	require.NoError(t, err)

	data := make([]int, int(seconds*float64(sampleRate)))
	for i := range data {
		data[i] = int(16000 * math.Sin(2*math.Pi*440*float64(i)/float64(sampleRate)))
	}
	encoder := wav.NewEncoder(file, sampleRate, 16, 1, 1)
	require.NoError(t, encoder.Write(&audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}))
	require.NoError(t, encoder.Close())
	require.NoError(t, file.Close())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	return content
}

func multipartRequest(t *testing.T, target, filename string, content []byte, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	if filename != "" {
		part, err := writer.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestNewValidation(t *testing.T) {
	_, err := New(nil, &fakeAnalyzer{})
	assert.Error(t, err)

	_, err = New(testConfig(t), nil)
	assert.Error(t, err)
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t, &fakeAnalyzer{})

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(requestIDHeader))

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestNotFound(t *testing.T) {
	srv, _ := newTestServer(t, &fakeAnalyzer{})

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), `"error"`)
}

func TestAnalyzeEndpoint(t *testing.T) {
	analyzer, err := profile.NewAnalyzer(nil)
	require.NoError(t, err)
	srv, cfg := newTestServer(t, analyzer)

	req := multipartRequest(t, "/api/v1/analyze", "tone.wav", wavBytes(t, 22050, 1), map[string]string{
		"sample_rate": "22050",
		"duration":    "30",
		"features":    "true",
	})
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var report profile.AnalysisReport
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.Equal(t, "tone.wav", report.Source)
	assert.Equal(t, 22050, report.SampleRate)
	assert.Equal(t, "A minor", report.Result.Technical.Key)
	assert.Contains(t, report.Features, "tempo")

	entries, err := os.ReadDir(cfg.Server.TempDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "upload must be removed after analysis")
}

func TestAnalyzeEndpointOptions(t *testing.T) {
	fake := &fakeAnalyzer{}
	srv, cfg := newTestServer(t, fake)

	req := multipartRequest(t, "/api/v1/analyze", "song.MP3", []byte("ID3"), map[string]string{
		"sample_rate": "44100",
		"duration":    "0",
	})
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, transcode.LoadOptions{SampleRate: 44100, MaxDuration: 0}, fake.lastOpts)
	assert.True(t, fake.existed)
	assert.Equal(t, ".mp3", filepath.Ext(fake.path))
	assert.Equal(t, cfg.Server.TempDir, filepath.Dir(fake.path))
	assert.NoFileExists(t, fake.path)
	assert.NotContains(t, w.Body.String(), `"features"`)

	// defaults come from the config
	req = multipartRequest(t, "/api/v1/analyze", "song.wav", []byte("RIFF"), nil)
	w = httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, transcode.LoadOptions{SampleRate: 22050, MaxDuration: 30 * time.Second}, fake.lastOpts)
}

func TestAnalyzeEndpointErrors(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		content  []byte
		fields   map[string]string
		err      error
		status   int
	}{
		{"missing file", "", nil, nil, nil, http.StatusBadRequest},
		{"bad sample rate", "a.wav", []byte("x"), map[string]string{"sample_rate": "fast"}, nil, http.StatusBadRequest},
		{"negative sample rate", "a.wav", []byte("x"), map[string]string{"sample_rate": "-1"}, nil, http.StatusBadRequest},
		{"bad duration", "a.wav", []byte("x"), map[string]string{"duration": "45"}, nil, http.StatusBadRequest},
		{"unsupported extension", "a.txt", []byte("x"), nil, nil, http.StatusUnsupportedMediaType},
		{"too large", "a.wav", make([]byte, 3<<20), nil, nil, http.StatusRequestEntityTooLarge},
		{"empty audio", "a.wav", []byte("x"), nil, transcode.ErrEmptyAudio, http.StatusUnprocessableEntity},
		{"no ffmpeg", "a.flac", []byte("x"), nil, transcode.ErrFFmpegNotFound, http.StatusNotImplemented},
		{"internal", "a.ogg", []byte("x"), nil, errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeAnalyzer{err: tt.err}
			srv, cfg := newTestServer(t, fake)

			w := httptest.NewRecorder()
			srv.Handler().ServeHTTP(w, multipartRequest(t, "/api/v1/analyze", tt.filename, tt.content, tt.fields))

			assert.Equal(t, tt.status, w.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])

			entries, err := os.ReadDir(cfg.Server.TempDir)
			require.NoError(t, err)
			assert.Empty(t, entries)
		})
	}
}

func TestAnalyzeEndpointRejectsNonMultipart(t *testing.T) {
	srv, _ := newTestServer(t, &fakeAnalyzer{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", bytes.NewBufferString(`{"file":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDashboard(t *testing.T) {
	analyzer, err := profile.NewAnalyzer(nil)
	require.NoError(t, err)
	srv, _ := newTestServer(t, analyzer)

	t.Run("welcome page", func(t *testing.T) {
		w := httptest.NewRecorder()
		srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Upload an audio file to begin analysis")
		assert.Contains(t, w.Body.String(), `<option value="30" selected>30 seconds</option>`)
	})

	t.Run("upload", func(t *testing.T) {
		req := multipartRequest(t, "/", "tone.wav", wavBytes(t, 22050, 1), map[string]string{
			"sample_rate": "44100",
			"duration":    "60",
		})
		w := httptest.NewRecorder()
		srv.Handler().ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		html := w.Body.String()
		assert.Contains(t, html, "tone.wav")
		assert.Contains(t, html, "TECHNICAL SPECS")
		assert.Contains(t, html, "A minor")
		assert.Contains(t, html, `<option value="44100" selected>44100 Hz</option>`)
		assert.Contains(t, html, `<option value="60" selected>60 seconds</option>`)
	})

	t.Run("upload error", func(t *testing.T) {
		req := multipartRequest(t, "/", "notes.txt", []byte("hello"), nil)
		w := httptest.NewRecorder()
		srv.Handler().ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
		assert.Contains(t, w.Body.String(), "Error analyzing audio")
	})
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusServiceUnavailable, statusFor(context.Canceled))
	assert.Equal(t, http.StatusRequestEntityTooLarge, statusFor(&http.MaxBytesError{Limit: 1}))
	assert.Equal(t, http.StatusInternalServerError, statusFor(errors.New("x")))
}

func TestRunStopsOnCancel(t *testing.T) {
	srv, cfg := newTestServer(t, &fakeAnalyzer{})
	cfg.Server.Address = "127.0.0.1:0"

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
