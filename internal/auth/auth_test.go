package auth

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"timebill/internal/models"
)

func setupSessionDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.Session{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestSessionCreateLookupDelete(t *testing.T) {
	s := NewSessions(setupSessionDB(t), 30*24*time.Hour)
	token, err := s.Create("alice")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(token) != 64 {
		t.Fatalf("expected 64-hex token got %q", token)
	}
	if name, ok := s.Lookup(token); !ok || name != "alice" {
		t.Fatalf("lookup: got %q ok=%v", name, ok)
	}
	if err := s.Delete(token); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := s.Lookup(token); ok {
		t.Fatal("deleted token must not resolve")
	}
}

func TestSessionExpiryAndCleanup(t *testing.T) {
	db := setupSessionDB(t)
	s := NewSessions(db, -time.Hour) // already expired on creation
	token, err := s.Create("bob")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, ok := s.Lookup(token); ok {
		t.Fatal("expired token must not resolve")
	}
	if err := s.Cleanup(); err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	var count int64
	if err := db.Model(&models.Session{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected expired sessions removed, %d left", count)
	}
}

func TestMiddlewareAndRequireAuth(t *testing.T) {
	s := NewSessions(setupSessionDB(t), time.Hour)
	token, err := s.Create("carol")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	var gotUser string
	h := s.Middleware(RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, _ = UsernameFromContext(r.Context())
	})))

	// Without a token: 403.
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/anything", nil))
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", w.Code)
	}

	// With the token: handler sees the user.
	req := httptest.NewRequest(http.MethodGet, "/api/anything", nil)
	req.Header.Set(HeaderName, token)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusOK || gotUser != "carol" {
		t.Fatalf("expected authenticated pass-through, code=%d user=%q", w.Code, gotUser)
	}
}
