package handlers

import (
	"encoding/json"
	"net/http"

	"shared-house-backend/internal/middleware"
	"shared-house-backend/internal/models"
	"shared-house-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// AuthHandler handles authentication HTTP requests
type AuthHandler struct {
	authService *services.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// DeviceInfo is the device identification sent with a login
type DeviceInfo struct {
	DeviceID   string `json:"device_id"`
	DeviceName string `json:"device_name"`
	Platform   string `json:"platform"`
}

// LoginRequest represents the request body for login
type LoginRequest struct {
	Token      string     `json:"token"`
	DeviceInfo DeviceInfo `json:"device_info"`
}

// LoginResponse carries the user and the session token
type LoginResponse struct {
	User         *models.User `json:"user"`
	SessionToken string       `json:"session_token"`
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Token == "" {
		respondError(w, "token is required", http.StatusBadRequest)
		return
	}
	if req.DeviceInfo.DeviceID == "" || req.DeviceInfo.DeviceName == "" || req.DeviceInfo.Platform == "" {
		respondError(w, "device_info requires device_id, device_name and platform", http.StatusBadRequest)
		return
	}

	device := models.UserDevice{
		DeviceID:   req.DeviceInfo.DeviceID,
		DeviceName: req.DeviceInfo.DeviceName,
		Platform:   req.DeviceInfo.Platform,
	}

	user, token, err := h.authService.Login(ctx, req.Token, device)
	if err != nil {
		log.Error().
			Err(err).
			Str("device_id", device.DeviceID).
			Msg("Login failed")
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, LoginResponse{User: user, SessionToken: token})
}

// Logout handles POST /api/v1/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	h.authService.Logout(userID)
	respondJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

// Verify handles GET /api/v1/auth/verify
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	user, err := h.authService.GetUser(ctx, userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to load user for verify")
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"valid": true, "user": user})
}

// Refresh handles POST /api/v1/auth/refresh
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	token, err := h.authService.Refresh(userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to refresh session")
		respondError(w, "operation failed", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"session_token": token})
}

// UpdatePushTokenRequest represents the request body for push token updates
type UpdatePushTokenRequest struct {
	PushToken *string `json:"push_token"`
}

// UpdatePushToken handles PUT /api/v1/users/push-token
func (h *AuthHandler) UpdatePushToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req UpdatePushTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.authService.UpdatePushToken(ctx, userID, req.PushToken); err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to update push token")
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Push token updated"})
}
