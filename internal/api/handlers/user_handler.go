package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/princekumar9234/DarkBot/internal/api/middlewares"
	"github.com/princekumar9234/DarkBot/internal/core"
	"github.com/princekumar9234/DarkBot/internal/models"
	"github.com/princekumar9234/DarkBot/internal/services"
)

// UserHandler serves profile, password, preference and account endpoints.
type UserHandler struct {
	users *services.UserService
}

func NewUserHandler(users *services.UserService) *UserHandler {
	return &UserHandler{users: users}
}

func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, _ := middlewares.UserID(r.Context())
	user, err := h.users.Get(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"success": true, "user": user})
}

type updateProfileRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, _ := middlewares.UserID(r.Context())
	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, core.NewValidationError("invalid request body"))
		return
	}

	user, err := h.users.UpdateProfile(r.Context(), userID, req.Name, req.Email)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{
		"success": true,
		"message": "Profile updated successfully.",
		"user":    user,
	})
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, _ := middlewares.UserID(r.Context())
	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, core.NewValidationError("invalid request body"))
		return
	}

	if err := h.users.ChangePassword(r.Context(), userID, req.CurrentPassword, req.NewPassword, req.ConfirmPassword); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{
		"success": true,
		"message": "Password changed successfully.",
	})
}

func (h *UserHandler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	userID, _ := middlewares.UserID(r.Context())
	var req models.Preferences
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, core.NewValidationError("invalid request body"))
		return
	}

	user, err := h.users.UpdatePreferences(r.Context(), userID, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{
		"success": true,
		"message": "Preferences updated.",
		"user":    user,
	})
}

// DeleteAccount removes the user and cascades to every chat they own, then
// clears the session cookie.
func (h *UserHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	userID, _ := middlewares.UserID(r.Context())
	if err := h.users.DeleteAccount(r.Context(), userID); err != nil {
		writeError(w, err)
		return
	}
	middlewares.ClearSessionCookie(w)
	writeJSON(w, http.StatusOK, envelope{
		"success": true,
		"message": "Account deleted successfully.",
	})
}
