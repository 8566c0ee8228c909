// Package auth implements DB-backed API sessions. Clients log in once,
// receive an opaque token and replay it in the X-Auth-Token header.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"time"

	"gorm.io/gorm"

	"timebill/internal/httpx"
	"timebill/internal/models"
)

// HeaderName carries the session token on API requests.
const HeaderName = "X-Auth-Token"

type ctxKey string

const usernameCtxKey = ctxKey("username")

// NewToken returns a random 64-hex-char session token.
func NewToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// Sessions manages token lifecycles against the sessions table.
type Sessions struct {
	db  *gorm.DB
	ttl time.Duration
}

func NewSessions(db *gorm.DB, ttl time.Duration) *Sessions {
	return &Sessions{db: db, ttl: ttl}
}

// Create issues a fresh token for username.
func (s *Sessions) Create(username string) (string, error) {
	token, err := NewToken()
	if err != nil {
		return "", err
	}
	sess := models.Session{Token: token, Username: username, ExpiresAt: time.Now().Add(s.ttl)}
	if err := s.db.Create(&sess).Error; err != nil {
		return "", err
	}
	return token, nil
}

// Lookup resolves a live token to its username.
func (s *Sessions) Lookup(token string) (string, bool) {
	if token == "" {
		return "", false
	}
	var sess models.Session
	err := s.db.Where("token = ? AND expires_at > ?", token, time.Now()).First(&sess).Error
	if err != nil {
		return "", false
	}
	return sess.Username, true
}

// Delete invalidates a token. Unknown tokens are a no-op.
func (s *Sessions) Delete(token string) error {
	return s.db.Where("token = ?", token).Delete(&models.Session{}).Error
}

// Cleanup removes expired sessions.
func (s *Sessions) Cleanup() error {
	return s.db.Where("expires_at <= ?", time.Now()).Delete(&models.Session{}).Error
}

// WithUsername stores the authenticated username in the context.
func WithUsername(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, usernameCtxKey, username)
}

// UsernameFromContext extracts the authenticated username.
func UsernameFromContext(ctx context.Context) (string, bool) {
	v := ctx.Value(usernameCtxKey)
	if v == nil {
		return "", false
	}
	name, ok := v.(string)
	return name, ok
}

// Middleware attaches the session user to the request context when the
// token header carries a live session.
func (s *Sessions) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if username, ok := s.Lookup(r.Header.Get(HeaderName)); ok {
			r = r.WithContext(WithUsername(r.Context(), username))
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAuth rejects requests without an authenticated user.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := UsernameFromContext(r.Context()); !ok {
			httpx.JSONError(w, http.StatusForbidden, "invalid_credentials", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}
