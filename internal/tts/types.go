// Package tts provides the two speech synthesis backends the gateway can
// forward to: the Azure Cognitive Services Speech API (paid, bearer-token
// authenticated, voice-selectable) and the Google Translate TTS endpoint
// (free, unauthenticated, fixed voice). Both are exposed through the
// Synthesizer interface and selected per request by Select.
package tts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	// MaxTextLength is the longest accepted input, in characters.
	MaxTextLength = 1000

	// DefaultVoice is the Azure voice used when a request does not name one.
	DefaultVoice = "en-US-JennyNeural"

	// MimeTypeMP3 is the media type of every synthesis result.
	MimeTypeMP3 = "audio/mpeg"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrUpstream     = errors.New("upstream synthesis failure")
)

// Request is a normalized synthesis request. Voice is only honored by the
// Azure backend; the fallback always uses its fixed voice.
type Request struct {
	Text  string `json:"text" binding:"required"`
	Voice string `json:"voice" binding:"omitempty"`
}

// Validate checks the request text against the gateway's input limits.
func (r *Request) Validate() error {
	if strings.TrimSpace(r.Text) == "" {
		return errors.Join(ErrInvalidInput, errors.New("text cannot be empty"))
	}
	if utf8.RuneCountInString(r.Text) > MaxTextLength {
		return errors.Join(ErrInvalidInput, fmt.Errorf("text too long: maximum %d characters", MaxTextLength))
	}
	return nil
}

// Result is the normalized output of a synthesis call.
type Result struct {
	Audio    []byte
	MimeType string
	Voice    string // effective voice label reported to the caller
}

// Voice describes one entry of the upstream voice catalog. Field names
// mirror the Azure voices/list response.
type Voice struct {
	Name      string `json:"Name"`
	ShortName string `json:"ShortName"`
	Gender    string `json:"Gender"`
	Locale    string `json:"Locale"`
}

// Synthesizer is the abstraction over a TTS backend.
//
// Implementations must be safe for concurrent use; the HTTP layer calls
// them from per-request goroutines.
type Synthesizer interface {
	// Synthesize converts text to audio in a single upstream call.
	Synthesize(ctx context.Context, req Request) (*Result, error)

	// Voices returns the backend's voice catalog. Backends without a
	// selectable catalog return an empty slice.
	Voices(ctx context.Context) ([]Voice, error)

	// Name identifies the backend in logs, metrics and responses.
	Name() string
}
