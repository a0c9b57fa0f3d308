package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/princekumar9234/DarkBot/internal/api/middlewares"
	"github.com/princekumar9234/DarkBot/internal/auth"
	"github.com/princekumar9234/DarkBot/internal/core"
	"github.com/princekumar9234/DarkBot/internal/services"
)

// AuthHandler serves signup, login and logout.
type AuthHandler struct {
	users      *services.UserService
	tokens     *auth.TokenManager
	production bool
}

func NewAuthHandler(users *services.UserService, tokens *auth.TokenManager, production bool) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens, production: production}
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req services.SignupInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, core.NewValidationError("invalid request body"))
		return
	}

	user, err := h.users.Signup(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}

	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	h.setSessionCookie(w, token)

	writeJSON(w, http.StatusCreated, envelope{
		"success": true,
		"message": "Account created successfully!",
		"user":    user,
		"token":   token,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, core.NewValidationError("invalid request body"))
		return
	}

	user, err := h.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	h.setSessionCookie(w, token)

	writeJSON(w, http.StatusOK, envelope{
		"success": true,
		"message": "Logged in successfully!",
		"user":    user,
		"token":   token,
	})
}

// Logout clears the client-held cookie. Issued tokens are not revoked and
// stay valid until their 7-day expiry.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	middlewares.ClearSessionCookie(w)
	writeJSON(w, http.StatusOK, envelope{
		"success": true,
		"message": "Logged out successfully.",
	})
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middlewares.SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(auth.SessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.production,
		SameSite: http.SameSiteLaxMode,
	})
}
