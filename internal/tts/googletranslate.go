package tts

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// browserUserAgent is required by the translate endpoint, which rejects
// non-browser clients.
const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// GoogleTranslateSynthesizer implements Synthesizer using the free Google
// Translate TTS endpoint. No authentication, no voice selection; long text
// is sent as-is and may be truncated upstream.
type GoogleTranslateSynthesizer struct {
	endpoint   string
	httpClient *http.Client
}

// NewGoogleTranslateSynthesizer creates the free fallback synthesizer.
func NewGoogleTranslateSynthesizer(timeout time.Duration) *GoogleTranslateSynthesizer {
	return &GoogleTranslateSynthesizer{
		endpoint:   "https://translate.google.com/translate_tts",
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (s *GoogleTranslateSynthesizer) Name() string {
	return "free-tts"
}

// Synthesize performs a single unauthenticated GET against the translate
// endpoint. The requested voice is ignored; the result always reports the
// fixed "free-tts" voice label.
func (s *GoogleTranslateSynthesizer) Synthesize(ctx context.Context, req Request) (*Result, error) {
	params := url.Values{}
	params.Set("ie", "UTF-8")
	params.Set("q", req.Text)
	params.Set("tl", "en")
	params.Set("client", "tw-ob")

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, errors.Join(ErrUpstream, fmt.Errorf("failed to create request: %w", err))
	}
	httpReq.Header.Set("User-Agent", browserUserAgent)

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return nil, errors.Join(ErrUpstream, fmt.Errorf("free tts request failed: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Join(ErrUpstream, fmt.Errorf("free tts endpoint returned status %d", resp.StatusCode))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Join(ErrUpstream, fmt.Errorf("failed to read audio response: %w", err))
	}

	return &Result{Audio: audio, MimeType: MimeTypeMP3, Voice: s.Name()}, nil
}

// Voices returns an empty catalog: the fallback has no selectable voices.
func (s *GoogleTranslateSynthesizer) Voices(ctx context.Context) ([]Voice, error) {
	return []Voice{}, nil
}
