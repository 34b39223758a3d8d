package server

import (
	"crypto/subtle"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

const sessionCookieName = "newsdesk_session"

// sessionTTL bounds how long an idle editorial session stays valid.
const sessionTTL = 12 * time.Hour

// sessionStore tracks live editorial sessions in memory. Sessions do
// not survive a restart, matching the log-in-again-per-visit model.
type sessionStore struct {
	mu       sync.Mutex
	sessions map[string]time.Time // token -> expiry
}

func newSessionStore() *sessionStore {
	return &sessionStore{sessions: map[string]time.Time{}}
}

// create mints a new session token.
func (s *sessionStore) create() string {
	token := uuid.NewString()
	s.mu.Lock()
	s.sessions[token] = time.Now().Add(sessionTTL)
	s.mu.Unlock()
	return token
}

// valid reports whether the token names a live session, pruning it when
// expired.
func (s *sessionStore) valid(token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	expiry, ok := s.sessions[token]
	if !ok {
		return false
	}
	if time.Now().After(expiry) {
		delete(s.sessions, token)
		return false
	}
	return true
}

// revoke drops a session.
func (s *sessionStore) revoke(token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}

type loginRequest struct {
	Password string `json:"password"`
}

// handleLogin checks the password against the allow list and issues a
// session cookie.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	if !s.passwordAllowed(req.Password) {
		s.log.Warn("rejected login attempt", "remote_addr", r.RemoteAddr)
		s.respondError(w, http.StatusUnauthorized, "Incorrect password. Please try again.")
		return
	}

	token := s.sessions.create()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	s.respondJSON(w, http.StatusOK, map[string]bool{"authenticated": true})
}

// handleLogout revokes the current session, if any.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		s.sessions.revoke(cookie.Value)
	}
	http.SetCookie(w, &http.Cookie{
		Name:   sessionCookieName,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})
	s.respondJSON(w, http.StatusOK, map[string]bool{"authenticated": false})
}

// handleSession reports whether the caller holds a live session.
func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]bool{"authenticated": true})
}

// requireSession guards the editorial API.
func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessionCookieName)
		if err != nil || !s.sessions.valid(cookie.Value) {
			s.respondError(w, http.StatusUnauthorized, "Authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// passwordAllowed compares the candidate against every configured
// password in constant time.
func (s *Server) passwordAllowed(candidate string) bool {
	allowed := false
	for _, password := range s.passwords {
		if subtle.ConstantTimeCompare([]byte(candidate), []byte(password)) == 1 {
			allowed = true
		}
	}
	return allowed
}
