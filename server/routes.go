package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/RyanBlaney/sonido-insight/logging"
)

const requestIDHeader = "X-Request-ID"

func (s *Server) registerRoutes() {
	s.engine.GET("/health", s.health)

	s.engine.GET("/", s.dashboardPage)
	s.engine.POST("/", s.dashboardUpload)

	v1 := s.engine.Group("/api/v1")
	v1.POST("/analyze", s.analyze)

	s.engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "the requested endpoint was not found",
			"path":  c.Request.URL.Path,
		})
	})
}

// requestLogger tags each request with an ID and logs its outcome
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(requestIDHeader, requestID)
		c.Request = c.Request.WithContext(logging.ContextWithFields(c.Request.Context(), logging.Fields{
			"request_id": requestID,
		}))

		c.Next()

		s.logger.WithContext(c.Request.Context()).Debug("Request handled", logging.Fields{
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status":      c.Writer.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
		})
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
