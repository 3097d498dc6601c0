package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/voxrelay/tts-gateway/internal/observability"
)

var (
	// ErrNoCredentials is returned when the authenticated provider is used
	// without a configured subscription key. No network call is made.
	ErrNoCredentials = errors.New("speech key not configured")

	// ErrTokenIssue is returned when the upstream token endpoint rejects
	// the issuance call or cannot be reached.
	ErrTokenIssue = errors.New("token issuance failed")
)

// tokenTTL is deliberately below the upstream's ~10 minute validity to
// tolerate clock drift and in-flight request latency.
const tokenTTL = 9 * time.Minute

// TokenCache holds the process-wide Azure bearer token and renews it lazily
// on expiry. The mutex is held across the renewal call, so concurrent
// callers with an expired token wait and reuse the winning renewal's result
// instead of issuing duplicate calls.
type TokenCache struct {
	key        string
	issueURL   string
	httpClient *http.Client
	now        func() time.Time

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

// NewTokenCache creates a token cache for the given subscription key and
// region. The key may be empty; Token then fails with ErrNoCredentials.
func NewTokenCache(key, region string, timeout time.Duration) *TokenCache {
	return NewTokenCacheForEndpoint(key,
		fmt.Sprintf("https://%s.api.cognitive.microsoft.com/sts/v1.0/issueToken", region), timeout)
}

// NewTokenCacheForEndpoint creates a token cache issuing tokens from an
// explicit endpoint URL, for sovereign-cloud regions and tests.
func NewTokenCacheForEndpoint(key, issueURL string, timeout time.Duration) *TokenCache {
	return &TokenCache{
		key:        key,
		issueURL:   issueURL,
		httpClient: &http.Client{Timeout: timeout},
		now:        time.Now,
	}
}

// Token returns a valid bearer token, issuing a fresh one from the upstream
// authentication endpoint if none is cached or the cached one has expired.
func (c *TokenCache) Token(ctx context.Context) (string, error) {
	if c.key == "" {
		return "", ErrNoCredentials
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && c.now().Before(c.expiresAt) {
		observability.RecordTokenCacheHit()
		return c.token, nil
	}

	token, err := c.issue(ctx)
	if err != nil {
		observability.RecordTokenRenewal(false)
		return "", err
	}
	observability.RecordTokenRenewal(true)

	c.token = token
	c.expiresAt = c.now().Add(tokenTTL)
	return token, nil
}

func (c *TokenCache) issue(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.issueURL, strings.NewReader(""))
	if err != nil {
		return "", errors.Join(ErrTokenIssue, fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", c.key)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", errors.Join(ErrTokenIssue, fmt.Errorf("token request failed: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", errors.Join(ErrTokenIssue, fmt.Errorf("token endpoint returned status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Join(ErrTokenIssue, fmt.Errorf("failed to read token response: %w", err))
	}

	return string(body), nil
}
