package api

import "net/http"

// SessionProvider resolves the authenticated user for a request. The second
// return value is false when no authenticated user is present. The
// authentication protocol itself lives outside this service.
type SessionProvider interface {
	CurrentUser(r *http.Request) (string, bool)
}

// userIDHeader is set by the authenticating reverse proxy in front of this
// service.
const userIDHeader = "X-User-ID"

// HeaderSessions resolves the user from the trusted identity header.
type HeaderSessions struct{}

// NewHeaderSessions creates a header-based session provider.
func NewHeaderSessions() *HeaderSessions {
	return &HeaderSessions{}
}

// CurrentUser implements SessionProvider.
func (h *HeaderSessions) CurrentUser(r *http.Request) (string, bool) {
	userID := r.Header.Get(userIDHeader)
	if userID == "" {
		return "", false
	}

	return userID, true
}
