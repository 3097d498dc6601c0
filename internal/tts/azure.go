package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/voxrelay/tts-gateway/internal/auth"
)

const userAgent = "tts-gateway"

// AzureSynthesizer implements Synthesizer using the Azure Cognitive
// Services Speech REST API. Every call presents a bearer token obtained
// from the shared TokenCache.
type AzureSynthesizer struct {
	tokens     *auth.TokenCache
	synthURL   string
	voicesURL  string
	httpClient *http.Client
}

// NewAzureSynthesizer creates an Azure-backed synthesizer for the given
// region, sharing the process-wide token cache.
func NewAzureSynthesizer(tokens *auth.TokenCache, region string, timeout time.Duration) *AzureSynthesizer {
	return &AzureSynthesizer{
		tokens:     tokens,
		synthURL:   fmt.Sprintf("https://%s.tts.speech.microsoft.com/cognitiveservices/v1", region),
		voicesURL:  fmt.Sprintf("https://%s.tts.speech.microsoft.com/cognitiveservices/voices/list", region),
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (s *AzureSynthesizer) Name() string {
	return "azure"
}

// buildSSML wraps the text in the speech-markup envelope the synthesis
// endpoint expects. The text is XML-escaped so reserved characters cannot
// break the envelope.
func buildSSML(voice, text string) string {
	var escaped bytes.Buffer
	xml.EscapeText(&escaped, []byte(text))

	return fmt.Sprintf(`<speak version='1.0' xml:lang='en-US'><voice xml:lang='en-US' xml:gender='Female' name='%s'>%s</voice></speak>`,
		voice, escaped.String())
}

// Synthesize converts text to MP3 audio in a single upstream call. Token
// cache errors (auth.ErrNoCredentials, auth.ErrTokenIssue) propagate as-is.
func (s *AzureSynthesizer) Synthesize(ctx context.Context, req Request) (*Result, error) {
	token, err := s.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	voice := req.Voice
	if voice == "" {
		voice = DefaultVoice
	}
	ssml := buildSSML(voice, req.Text)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.synthURL, bytes.NewBufferString(ssml))
	if err != nil {
		return nil, errors.Join(ErrUpstream, fmt.Errorf("failed to create request: %w", err))
	}
	httpReq.Header.Set("Authorization", "Bearer "+token)
	httpReq.Header.Set("Content-Type", "application/ssml+xml")
	httpReq.Header.Set("X-Microsoft-OutputFormat", "audio-16khz-128kbitrate-mono-mp3")
	httpReq.Header.Set("User-Agent", userAgent)

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return nil, errors.Join(ErrUpstream, fmt.Errorf("synthesis request failed: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Join(ErrUpstream, fmt.Errorf("synthesis endpoint returned status %d", resp.StatusCode))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Join(ErrUpstream, fmt.Errorf("failed to read audio response: %w", err))
	}

	return &Result{Audio: audio, MimeType: MimeTypeMP3, Voice: voice}, nil
}

// Voices fetches the full upstream voice catalog using the shared token
// cache.
func (s *AzureSynthesizer) Voices(ctx context.Context) ([]Voice, error) {
	token, err := s.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, s.voicesURL, nil)
	if err != nil {
		return nil, errors.Join(ErrUpstream, fmt.Errorf("failed to create request: %w", err))
	}
	httpReq.Header.Set("Authorization", "Bearer "+token)

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return nil, errors.Join(ErrUpstream, fmt.Errorf("voice list request failed: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Join(ErrUpstream, fmt.Errorf("voice list endpoint returned status %d", resp.StatusCode))
	}

	var voices []Voice
	if err := json.NewDecoder(resp.Body).Decode(&voices); err != nil {
		return nil, errors.Join(ErrUpstream, fmt.Errorf("failed to decode voice list: %w", err))
	}

	return voices, nil
}
