package tts

// Provider identifies which synthesis backend serves a request.
type Provider int

const (
	// Primary is the paid, authenticated Azure backend.
	Primary Provider = iota
	// Fallback is the free, unauthenticated Google Translate backend.
	Fallback
)

// String returns the provider's name as used in logs and responses.
func (p Provider) String() string {
	if p == Primary {
		return "azure"
	}
	return "free-tts"
}

// Select picks the backend for a request. It is a pure function of the
// free-tier override and credential presence, recomputed per request: the
// Azure backend is used only when credentials are configured and the
// override is off.
func Select(freeOverride, hasCredentials bool) Provider {
	if hasCredentials && !freeOverride {
		return Primary
	}
	return Fallback
}
