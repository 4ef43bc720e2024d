package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/RyanBlaney/sonido-insight/configs"
	"github.com/RyanBlaney/sonido-insight/dashboard"
	"github.com/RyanBlaney/sonido-insight/logging"
	"github.com/RyanBlaney/sonido-insight/profile"
	"github.com/RyanBlaney/sonido-insight/transcode"
)

const shutdownTimeout = 10 * time.Second

// Analyzer is the part of the pipeline the handlers need
type Analyzer interface {
	AnalyzeFile(ctx context.Context, path string, opts transcode.LoadOptions) (*profile.AnalysisReport, error)
}

// Server serves the JSON API and the upload dashboard
type Server struct {
	config   *configs.Config
	analyzer Analyzer
	renderer *dashboard.Renderer
	engine   *gin.Engine
	logger   logging.Logger
}

// New creates a server with all routes registered
func New(cfg *configs.Config, analyzer Analyzer) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if analyzer == nil {
		return nil, fmt.Errorf("analyzer cannot be nil")
	}

	renderer, err := dashboard.NewRenderer()
	if err != nil {
		return nil, err
	}

	s := &Server{
		config:   cfg,
		analyzer: analyzer,
		renderer: renderer,
		engine:   gin.New(),
		logger: logging.WithFields(logging.Fields{
			"component": "http_server",
		}),
	}

	s.engine.MaxMultipartMemory = s.maxUploadBytes()
	s.engine.Use(gin.Recovery(), s.requestLogger())
	s.engine.SetHTMLTemplate(renderer.Template())
	s.registerRoutes()

	return s, nil
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run listens on the configured address until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.config.Server.Address,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- fmt.Errorf("server error: %w", err)
		}
		close(serverErr)
	}()

	s.logger.Info("Server listening", logging.Fields{"address": s.config.Server.Address})

	select {
	case <-ctx.Done():
		s.logger.Info("Shutting down server")
	case err, ok := <-serverErr:
		if ok {
			return err
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	s.logger.Info("Server stopped")
	return nil
}

func (s *Server) maxUploadBytes() int64 {
	return s.config.Server.MaxUploadMB << 20
}
