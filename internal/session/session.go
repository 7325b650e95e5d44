// Package session holds the authenticated admin session shared by outgoing requests.
package session

import (
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"epol-dashboard/internal/models"
)

// Reason explains a session transition
type Reason string

const (
	ReasonLogin   Reason = "login"
	ReasonLogout  Reason = "logout"
	ReasonExpired Reason = "expired"
)

// Event is delivered to listeners on every real transition
type Event struct {
	Authenticated bool
	Reason        Reason
}

// Session is created on login and invalidated on logout or on a 401.
type Session struct {
	mu        sync.RWMutex
	token     string
	profile   *models.Profile
	expiresAt time.Time

	listenersMu sync.Mutex
	listeners   []func(Event)
}

func New() *Session {
	return &Session{}
}

// Login stores the token and profile. An `exp` claim is honoured when the
// token is a JWT; opaque tokens never expire locally.
func (s *Session) Login(token string, profile *models.Profile) {
	s.mu.Lock()
	s.token = token
	s.profile = profile
	s.expiresAt = tokenExpiry(token)
	s.mu.Unlock()

	s.emit(Event{Authenticated: true, Reason: ReasonLogin})
}

// Logout clears the session. Returns false when it was already invalid.
func (s *Session) Logout() bool {
	return s.invalidate(ReasonLogout)
}

// Expire clears the session after the backend rejected the token.
// Returns false when it was already invalid, so listeners fire once.
func (s *Session) Expire() bool {
	return s.invalidate(ReasonExpired)
}

func (s *Session) invalidate(reason Reason) bool {
	s.mu.Lock()
	if s.token == "" {
		s.mu.Unlock()
		return false
	}
	s.token = ""
	s.profile = nil
	s.expiresAt = time.Time{}
	s.mu.Unlock()

	s.emit(Event{Authenticated: false, Reason: reason})
	return true
}

// Token returns the bearer token, if any
func (s *Session) Token() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.token != ""
}

func (s *Session) Authenticated() bool {
	_, ok := s.Token()
	return ok
}

// Profile returns a copy of the cached admin profile
func (s *Session) Profile() *models.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.profile == nil {
		return nil
	}
	p := *s.profile
	return &p
}

// Expired reports whether the token carries an `exp` that is not after now.
func (s *Session) Expired(now time.Time) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != "" && !s.expiresAt.IsZero() && !now.Before(s.expiresAt)
}

// OnChange registers fn for login/logout/expiry transitions.
// Listeners run synchronously on the goroutine that caused the transition.
func (s *Session) OnChange(fn func(Event)) {
	s.listenersMu.Lock()
	s.listeners = append(s.listeners, fn)
	s.listenersMu.Unlock()
}

func (s *Session) emit(ev Event) {
	s.listenersMu.Lock()
	listeners := append([]func(Event){}, s.listeners...)
	s.listenersMu.Unlock()

	for _, fn := range listeners {
		fn(ev)
	}
}

// tokenExpiry reads `exp` without verifying the signature; the backend does that.
func tokenExpiry(token string) time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}
