package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/RyanBlaney/sonido-insight/configs"
	"github.com/RyanBlaney/sonido-insight/logging"
	"github.com/RyanBlaney/sonido-insight/profile"
	"github.com/RyanBlaney/sonido-insight/profile/extractors"
	"github.com/RyanBlaney/sonido-insight/transcode"
)

// form fields shared by the API and the dashboard
const (
	fieldFile       = "file"
	fieldSampleRate = "sample_rate"
	fieldDuration   = "duration"
	fieldFeatures   = "features"
)

var errInvalidRequest = errors.New("invalid request")

// multipart framing on top of the file itself
const multipartOverhead = 1 << 20

// loadOptions reads sample_rate (Hz) and duration (seconds) falling back to the config
func (s *Server) loadOptions(c *gin.Context) (transcode.LoadOptions, error) {
	opts := s.config.LoadOptions()

	if raw := strings.TrimSpace(c.PostForm(fieldSampleRate)); raw != "" {
		rate, err := strconv.Atoi(raw)
		if err != nil || rate <= 0 {
			return opts, fmt.Errorf("%w: sample_rate must be a positive integer", errInvalidRequest)
		}
		opts.SampleRate = rate
	}

	if raw := strings.TrimSpace(c.PostForm(fieldDuration)); raw != "" {
		seconds, err := strconv.Atoi(raw)
		if err != nil {
			return opts, fmt.Errorf("%w: duration must be a whole number of seconds", errInvalidRequest)
		}
		duration := time.Duration(seconds) * time.Second
		if !slices.Contains(configs.AllowedDurations, duration) {
			return opts, fmt.Errorf("%w: duration must be one of 0, 30, 60, 90", errInvalidRequest)
		}
		opts.MaxDuration = duration
	}

	return opts, nil
}

// parseUpload caps the body size and parses the multipart form
func (s *Server) parseUpload(c *gin.Context) error {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxUploadBytes()+multipartOverhead)

	if err := c.Request.ParseMultipartForm(s.engine.MaxMultipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return tooLarge
		}
		return fmt.Errorf("%w: %v", errInvalidRequest, err)
	}
	return nil
}

// analyzeUpload saves the multipart file, analyzes it and removes it again
func (s *Server) analyzeUpload(c *gin.Context, opts transcode.LoadOptions) (*profile.AnalysisReport, error) {
	header, err := c.FormFile(fieldFile)
	if err != nil {
		return nil, fmt.Errorf("%w: missing %q file field", errInvalidRequest, fieldFile)
	}
	if header.Size > s.maxUploadBytes() {
		return nil, &http.MaxBytesError{Limit: s.maxUploadBytes()}
	}

	path, err := s.saveUpload(header)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			s.logger.Error(err, "Failed to remove upload", logging.Fields{"path": path})
		}
	}()

	report, err := s.analyzer.AnalyzeFile(c.Request.Context(), path, opts)
	if err != nil {
		return nil, err
	}
	report.Source = header.Filename

	return report, nil
}

// saveUpload copies the upload into the temp dir, keeping its extension for format detection
func (s *Server) saveUpload(header *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !slices.Contains(transcode.SupportedExtensions(), ext) {
		return "", fmt.Errorf("%w: %q", transcode.ErrUnsupportedFormat, header.Filename)
	}

	src, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	dst, err := os.CreateTemp(s.config.Server.TempDir, "sonido-upload-*"+ext)
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(dst.Name())
		return "", fmt.Errorf("failed to save upload: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(dst.Name())
		return "", fmt.Errorf("failed to save upload: %w", err)
	}

	return dst.Name(), nil
}

// statusFor maps pipeline errors to HTTP status codes
func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, errInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, transcode.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, transcode.ErrEmptyAudio),
		errors.Is(err, extractors.ErrEmptyWaveform),
		errors.Is(err, extractors.ErrInvalidSampleRate),
		errors.Is(err, extractors.ErrNonFiniteSample):
		return http.StatusUnprocessableEntity
	case errors.Is(err, transcode.ErrFFmpegNotFound):
		return http.StatusNotImplemented
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
