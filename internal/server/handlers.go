package server

import (
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/voxrelay/tts-gateway/internal/auth"
	"github.com/voxrelay/tts-gateway/internal/observability"
	"github.com/voxrelay/tts-gateway/internal/tts"
)

const (
	serviceName = "Text-to-Speech Gateway"

	// englishLocalePrefix filters the voice catalog for /voices.
	englishLocalePrefix = "en-"

	// maxVoicesListed caps the /voices response.
	maxVoicesListed = 10
)

// selected returns the backend serving the current request. Recomputed per
// request from configuration and credential presence alone.
func (s *Server) selected() tts.Provider {
	return tts.Select(s.config.UseFreeTTS, s.config.HasCredentials())
}

func (s *Server) synthesizer() tts.Synthesizer {
	if s.selected() == tts.Primary {
		return s.primary
	}
	return s.fallback
}

// sendError maps the error taxonomy to distinct transport status codes:
// invalid input is the caller's fault (400), missing credentials mean the
// service is misconfigured (503), and rejected token issuance or synthesis
// calls are an upstream problem (502).
func (s *Server) sendError(c *gin.Context, err error) {
	var status int
	switch {
	case errors.Is(err, tts.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, auth.ErrNoCredentials):
		status = http.StatusServiceUnavailable
	case errors.Is(err, auth.ErrTokenIssue), errors.Is(err, tts.ErrUpstream):
		status = http.StatusBadGateway
	default:
		s.logger.Error().Err(err).Str("request_id", c.GetString("requestID")).Msg("unexpected synthesis error")
		status = http.StatusInternalServerError
	}

	c.JSON(status, gin.H{"error": err.Error()})
}

func (s *Server) synthesize(c *gin.Context, req tts.Request) (*tts.Result, bool) {
	if err := req.Validate(); err != nil {
		s.sendError(c, err)
		return nil, false
	}

	backend := s.synthesizer()
	start := time.Now()
	res, err := backend.Synthesize(c.Request.Context(), req)
	if err != nil {
		observability.RecordSynthesis(backend.Name(), start, 0, false)
		s.sendError(c, err)
		return nil, false
	}
	observability.RecordSynthesis(backend.Name(), start, len(res.Audio), true)

	return res, true
}

func (s *Server) handleIndex(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": serviceName,
		"endpoints": gin.H{
			"GET /speech?text=hello": "Generate speech from text",
			"POST /speech":           "Generate speech with JSON body",
			"GET /voices":            "List available voices",
			"GET /health":            "Health check",
		},
		"usage": "Visit /speech?text=Your+text+here to get audio",
	})
}

func (s *Server) handleSpeechGet(c *gin.Context) {
	req := tts.Request{Text: c.Query("text")}

	res, ok := s.synthesize(c, req)
	if !ok {
		return
	}

	c.Data(http.StatusOK, res.MimeType, res.Audio)
}

func (s *Server) handleSpeechPost(c *gin.Context) {
	var req tts.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no text provided in JSON body"})
		return
	}

	res, ok := s.synthesize(c, req)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":       "success",
		"text":         req.Text,
		"audio_format": "mp3",
		"audio_data":   base64.StdEncoding.EncodeToString(res.Audio),
		"voice":        res.Voice,
	})
}

func (s *Server) handleVoices(c *gin.Context) {
	if s.selected() == tts.Fallback {
		c.JSON(http.StatusOK, gin.H{
			"message":       "Using free TTS service - voice selection not available",
			"default_voice": "free-tts",
		})
		return
	}

	catalog, err := s.primary.Voices(c.Request.Context())
	if err != nil {
		observability.RecordVoiceList(false)
		s.sendError(c, err)
		return
	}
	observability.RecordVoiceList(true)

	english := make([]tts.Voice, 0, maxVoicesListed)
	for _, v := range catalog {
		if !strings.HasPrefix(v.Locale, englishLocalePrefix) {
			continue
		}
		english = append(english, v)
		if len(english) == maxVoicesListed {
			break
		}
	}

	c.JSON(http.StatusOK, english)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":         "healthy",
		"service":        serviceName,
		"using_free_tts": s.config.UsingFreeTTS(),
	})
}
