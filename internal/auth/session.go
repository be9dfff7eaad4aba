// Package auth holds the backend credentials as an explicitly passed
// session object: populated at startup (or login), rotated on refresh,
// cleared when a refresh fails.
package auth

import "sync"

// Session is a thread-safe holder for the bearer token pair.
type Session struct {
	mu           sync.RWMutex
	accessToken  string
	refreshToken string
}

func NewSession(accessToken, refreshToken string) *Session {
	return &Session{
		accessToken:  accessToken,
		refreshToken: refreshToken,
	}
}

func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

func (s *Session) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshToken
}

// SetTokens installs a freshly issued token pair.
func (s *Session) SetTokens(accessToken, refreshToken string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken = accessToken
	s.refreshToken = refreshToken
}

// Clear drops both tokens. Called when a refresh attempt fails and the
// session is no longer usable.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken = ""
	s.refreshToken = ""
}

// Authenticated reports whether the session currently carries an access
// token.
func (s *Session) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken != ""
}
