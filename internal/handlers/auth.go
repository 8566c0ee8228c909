package handlers

import (
	"log"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"timebill/internal/auth"
	"timebill/internal/httpx"
	"timebill/internal/models"
)

type AuthHandler struct {
	DB       *gorm.DB
	Sessions *auth.Sessions
}

func NewAuthHandler(db *gorm.DB, sessions *auth.Sessions) *AuthHandler {
	return &AuthHandler{DB: db, Sessions: sessions}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
}

// Login: POST /api/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.ReadJSON(r, &req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		httpx.JSONError(w, http.StatusForbidden, "invalid_credentials", nil)
		return
	}

	var user models.User
	if err := h.DB.Where("username = ?", req.Username).First(&user).Error; err != nil {
		log.Printf("login failed: unknown user %q", req.Username)
		httpx.JSONError(w, http.StatusForbidden, "invalid_credentials", nil)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		log.Printf("login failed: bad password for %q", req.Username)
		httpx.JSONError(w, http.StatusForbidden, "invalid_credentials", nil)
		return
	}

	// Opportunistic housekeeping before issuing a new token.
	if err := h.Sessions.Cleanup(); err != nil {
		log.Printf("session cleanup: %v", err)
	}
	token, err := h.Sessions.Create(user.Username)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "session_create_failed", nil)
		return
	}
	log.Printf("session created for %q", user.Username)
	httpx.JSON(w, http.StatusOK, loginResponse{Token: token, Username: user.Username})
}

// Logout: POST /api/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if token := r.Header.Get(auth.HeaderName); token != "" {
		if err := h.Sessions.Delete(token); err != nil {
			log.Printf("logout: %v", err)
		}
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "success"})
}
