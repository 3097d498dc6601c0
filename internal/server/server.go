// Package server wires the gateway's HTTP surface: route registration,
// CORS, request logging and the handlers that translate between transport
// requests and the synthesis backends.
package server

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/voxrelay/tts-gateway/internal/config"
	"github.com/voxrelay/tts-gateway/internal/observability"
	"github.com/voxrelay/tts-gateway/internal/tts"
)

// Server dispatches parsed HTTP requests to the synthesis backends.
type Server struct {
	config   *config.Config
	router   *gin.Engine
	primary  tts.Synthesizer
	fallback tts.Synthesizer
	logger   zerolog.Logger
}

// New builds a fully routed server around the two synthesis backends.
func New(cfg *config.Config, primary, fallback tts.Synthesizer, logger zerolog.Logger) *Server {
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		config:   cfg,
		router:   gin.New(),
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// Handler returns the http.Handler to mount on the listener.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupMiddleware() {
	s.router.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		s.logger.Error().Interface("panic", recovered).Str("path", c.Request.URL.Path).Msg("panic recovered")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}))

	s.router.Use(cors.New(cors.Config{
		AllowOrigins:     s.config.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	s.router.Use(s.requestIDMiddleware())
	s.router.Use(s.loggingMiddleware())
}

func (s *Server) setupRoutes() {
	s.router.GET("/", s.handleIndex)
	s.router.GET("/speech", s.handleSpeechGet)
	s.router.POST("/speech", s.handleSpeechPost)
	s.router.GET("/voices", s.handleVoices)
	s.router.GET("/health", s.handleHealth)

	if s.config.MetricsEnabled {
		s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}
}

func (s *Server) requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = observability.NewRequestID()
		}
		c.Set("requestID", requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		observability.RequestStarted()
		c.Next()
		observability.RequestFinished()

		s.logger.Info().
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Str("method", c.Request.Method).
			Str("path", path).
			Str("request_id", c.GetString("requestID")).
			Msg("request handled")
	}
}
