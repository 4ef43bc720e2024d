package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/RyanBlaney/sonido-insight/configs"
	"github.com/RyanBlaney/sonido-insight/dashboard"
	"github.com/RyanBlaney/sonido-insight/logging"
	"github.com/RyanBlaney/sonido-insight/transcode"
)

// analyze handles POST /api/v1/analyze
func (s *Server) analyze(c *gin.Context) {
	logger := s.logger.WithContext(c.Request.Context()).WithFields(logging.Fields{
		"function": "analyze",
	})

	if err := s.parseUpload(c); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	opts, err := s.loadOptions(c)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	report, err := s.analyzeUpload(c, opts)
	if err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			logger.Error(err, "Analysis failed")
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	if include, _ := strconv.ParseBool(c.PostForm(fieldFeatures)); !include {
		report.Features = nil
	}

	c.JSON(http.StatusOK, report)
}

// dashboardPage handles GET /
func (s *Server) dashboardPage(c *gin.Context) {
	c.HTML(http.StatusOK, dashboard.TemplateName, s.page(s.config.LoadOptions()))
}

// dashboardUpload handles POST / from the upload form
func (s *Server) dashboardUpload(c *gin.Context) {
	err := s.parseUpload(c)
	opts := s.config.LoadOptions()
	if err == nil {
		opts, err = s.loadOptions(c)
	}
	if err != nil {
		page := s.page(s.config.LoadOptions())
		page.Error = err.Error()
		c.HTML(statusFor(err), dashboard.TemplateName, page)
		return
	}

	page := s.page(opts)

	report, err := s.analyzeUpload(c, opts)
	if err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			s.logger.WithContext(c.Request.Context()).Error(err, "Dashboard analysis failed")
		}
		page.Error = err.Error()
		c.HTML(status, dashboard.TemplateName, page)
		return
	}

	page.FileName = report.Source
	page.Result = dashboard.NewView(report.Result)
	c.HTML(http.StatusOK, dashboard.TemplateName, page)
}

func (s *Server) page(opts transcode.LoadOptions) dashboard.Page {
	formats := make([]string, 0, len(transcode.SupportedExtensions()))
	for _, ext := range transcode.SupportedExtensions() {
		formats = append(formats, strings.TrimPrefix(ext, "."))
	}

	return dashboard.Page{
		Title: "Sonido Insight",
		Form: dashboard.NewForm(
			configs.StandardSampleRates,
			configs.AllowedDurations,
			opts.SampleRate,
			opts.MaxDuration,
			formats,
		),
	}
}
