package api

import "sync"

// Role values returned by the remote API.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Session holds the authenticated identity for the lifetime of a browser
// session or CLI run. It is passed explicitly to everything that issues
// remote calls; there is no package-level singleton. Establish and Clear are
// the only writers.
type Session struct {
	mu    sync.RWMutex
	token string
	user  User
}

// NewSession returns an empty, unauthenticated session.
func NewSession() *Session {
	return &Session{}
}

// Establish stores the bearer token and user returned by a successful login.
func (s *Session) Establish(token string, user User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.user = user
}

// Clear discards the stored credential. Called on logout and whenever the
// remote API rejects the token.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.user = User{}
}

// Token returns the stored bearer token, or "" when unauthenticated.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns the authenticated user record.
func (s *Session) User() User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// IsAdmin reports whether the session belongs to an admin user.
// Destructive controls and the company profile are gated on this.
func (s *Session) IsAdmin() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user.Role == RoleAdmin
}
