package tts

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/voxrelay/tts-gateway/internal/auth"
)

func newTokenServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("test-bearer-token"))
	}))
}

func newAzure(t *testing.T, tokenURL, synthURL, voicesURL string) *AzureSynthesizer {
	t.Helper()
	tokens := auth.NewTokenCacheForEndpoint("key", tokenURL, 5*time.Second)
	s := NewAzureSynthesizer(tokens, "eastus", 5*time.Second)
	if synthURL != "" {
		s.synthURL = synthURL
	}
	if voicesURL != "" {
		s.voicesURL = voicesURL
	}
	return s
}

func TestAzureSynthesize(t *testing.T) {
	tokenSrv := newTokenServer(t)
	defer tokenSrv.Close()

	var gotSSML string
	var gotHeaders http.Header
	synthSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		gotSSML = string(body)
		gotHeaders = r.Header.Clone()
		w.Write([]byte("mp3-bytes"))
	}))
	defer synthSrv.Close()

	s := newAzure(t, tokenSrv.URL, synthSrv.URL, "")

	res, err := s.Synthesize(context.Background(), Request{Text: "hello world"})
	if err != nil {
		t.Fatalf("Synthesize() failed: %v", err)
	}

	if string(res.Audio) != "mp3-bytes" {
		t.Errorf("Expected audio 'mp3-bytes', got '%s'", res.Audio)
	}
	if res.MimeType != MimeTypeMP3 {
		t.Errorf("Expected mime type '%s', got '%s'", MimeTypeMP3, res.MimeType)
	}
	if res.Voice != DefaultVoice {
		t.Errorf("Expected default voice '%s', got '%s'", DefaultVoice, res.Voice)
	}

	if got := gotHeaders.Get("Authorization"); got != "Bearer test-bearer-token" {
		t.Errorf("Expected bearer token header, got '%s'", got)
	}
	if got := gotHeaders.Get("Content-Type"); got != "application/ssml+xml" {
		t.Errorf("Expected SSML content type, got '%s'", got)
	}
	if got := gotHeaders.Get("X-Microsoft-OutputFormat"); got != "audio-16khz-128kbitrate-mono-mp3" {
		t.Errorf("Expected fixed output format header, got '%s'", got)
	}
	if got := gotHeaders.Get("User-Agent"); got != userAgent {
		t.Errorf("Expected User-Agent '%s', got '%s'", userAgent, got)
	}

	if !strings.Contains(gotSSML, "name='"+DefaultVoice+"'") {
		t.Errorf("Expected SSML tagged with default voice, got: %s", gotSSML)
	}
	if !strings.Contains(gotSSML, ">hello world<") {
		t.Errorf("Expected text embedded in SSML, got: %s", gotSSML)
	}
}

func TestAzureSynthesize_CustomVoice(t *testing.T) {
	tokenSrv := newTokenServer(t)
	defer tokenSrv.Close()

	var gotSSML string
	synthSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		gotSSML = string(body)
		w.Write([]byte("audio"))
	}))
	defer synthSrv.Close()

	s := newAzure(t, tokenSrv.URL, synthSrv.URL, "")

	res, err := s.Synthesize(context.Background(), Request{Text: "hi", Voice: "en-GB-SoniaNeural"})
	if err != nil {
		t.Fatalf("Synthesize() failed: %v", err)
	}
	if res.Voice != "en-GB-SoniaNeural" {
		t.Errorf("Expected requested voice in result, got '%s'", res.Voice)
	}
	if !strings.Contains(gotSSML, "name='en-GB-SoniaNeural'") {
		t.Errorf("Expected SSML tagged with requested voice, got: %s", gotSSML)
	}
}

func TestAzureSynthesize_EscapesMarkup(t *testing.T) {
	tokenSrv := newTokenServer(t)
	defer tokenSrv.Close()

	var gotSSML string
	synthSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		gotSSML = string(body)
		w.Write([]byte("audio"))
	}))
	defer synthSrv.Close()

	s := newAzure(t, tokenSrv.URL, synthSrv.URL, "")

	if _, err := s.Synthesize(context.Background(), Request{Text: `5 < 6 & "quotes"`}); err != nil {
		t.Fatalf("Synthesize() failed: %v", err)
	}

	if strings.Contains(gotSSML, "5 < 6") {
		t.Errorf("Expected reserved characters escaped, got: %s", gotSSML)
	}
	if !strings.Contains(gotSSML, "5 &lt; 6 &amp;") {
		t.Errorf("Expected escaped text in SSML, got: %s", gotSSML)
	}
}

func TestAzureSynthesize_UpstreamError(t *testing.T) {
	tokenSrv := newTokenServer(t)
	defer tokenSrv.Close()

	synthSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer synthSrv.Close()

	s := newAzure(t, tokenSrv.URL, synthSrv.URL, "")

	_, err := s.Synthesize(context.Background(), Request{Text: "hi"})
	if !errors.Is(err, ErrUpstream) {
		t.Fatalf("Expected ErrUpstream, got %v", err)
	}
	if !strings.Contains(err.Error(), "429") {
		t.Errorf("Expected status code in error, got: %v", err)
	}
}

func TestAzureSynthesize_PropagatesAuthErrors(t *testing.T) {
	tokens := auth.NewTokenCacheForEndpoint("", "http://127.0.0.1:0", 5*time.Second)
	s := NewAzureSynthesizer(tokens, "eastus", 5*time.Second)

	_, err := s.Synthesize(context.Background(), Request{Text: "hi"})
	if !errors.Is(err, auth.ErrNoCredentials) {
		t.Fatalf("Expected ErrNoCredentials to propagate, got %v", err)
	}
}

func TestAzureVoices(t *testing.T) {
	tokenSrv := newTokenServer(t)
	defer tokenSrv.Close()

	catalog := []Voice{
		{Name: "Microsoft Server Speech Text to Speech Voice (en-US, JennyNeural)", ShortName: "en-US-JennyNeural", Gender: "Female", Locale: "en-US"},
		{Name: "Microsoft Server Speech Text to Speech Voice (de-DE, KatjaNeural)", ShortName: "de-DE-KatjaNeural", Gender: "Female", Locale: "de-DE"},
	}
	voicesSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-bearer-token" {
			t.Errorf("Expected bearer token header, got '%s'", got)
		}
		json.NewEncoder(w).Encode(catalog)
	}))
	defer voicesSrv.Close()

	s := newAzure(t, tokenSrv.URL, "", voicesSrv.URL)

	voices, err := s.Voices(context.Background())
	if err != nil {
		t.Fatalf("Voices() failed: %v", err)
	}
	if len(voices) != 2 {
		t.Fatalf("Expected 2 voices, got %d", len(voices))
	}
	if voices[0].ShortName != "en-US-JennyNeural" {
		t.Errorf("Expected catalog order preserved, got '%s'", voices[0].ShortName)
	}
}

func TestAzureVoices_UpstreamError(t *testing.T) {
	tokenSrv := newTokenServer(t)
	defer tokenSrv.Close()

	voicesSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer voicesSrv.Close()

	s := newAzure(t, tokenSrv.URL, "", voicesSrv.URL)

	if _, err := s.Voices(context.Background()); !errors.Is(err, ErrUpstream) {
		t.Fatalf("Expected ErrUpstream, got %v", err)
	}
}
