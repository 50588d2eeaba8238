package handlers

import (
	"encoding/json"
	"net/http"

	"shared-house-backend/internal/middleware"
	"shared-house-backend/internal/models"
	"shared-house-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// MaintenanceHandler handles maintenance request HTTP requests
type MaintenanceHandler struct {
	maintenanceService *services.MaintenanceService
}

// NewMaintenanceHandler creates a new maintenance handler
func NewMaintenanceHandler(maintenanceService *services.MaintenanceService) *MaintenanceHandler {
	return &MaintenanceHandler{
		maintenanceService: maintenanceService,
	}
}

// CreateMaintenanceRequest represents the request body for reporting an
// issue
type CreateMaintenanceRequest struct {
	Description string   `json:"description"`
	Location    string   `json:"location"`
	PhotoURLs   []string `json:"photo_urls"`
}

// Create handles POST /api/v1/maintenance
func (h *MaintenanceHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req CreateMaintenanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	request, err := h.maintenanceService.Create(ctx, userID, req.Description, req.Location, req.PhotoURLs)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to create maintenance request")
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, request)
}

// List handles GET /api/v1/maintenance with an optional ?status= filter.
func (h *MaintenanceHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	status := models.MaintenanceStatus(r.URL.Query().Get("status"))

	requests, err := h.maintenanceService.List(ctx, status)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list maintenance requests")
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"requests": requests})
}

// Get handles GET /api/v1/maintenance/{id}
func (h *MaintenanceHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := chi.URLParam(r, "id")

	request, err := h.maintenanceService.GetByID(ctx, requestID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, request)
}

// Assign handles POST /api/v1/maintenance/{id}/assign. Without an
// explicit assignee the caller assigns the request to themselves.
func (h *MaintenanceHandler) Assign(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := chi.URLParam(r, "id")

	var req struct {
		AssigneeID string `json:"assignee_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.AssigneeID == "" {
		req.AssigneeID = middleware.GetUserID(ctx)
	}

	request, err := h.maintenanceService.Assign(ctx, requestID, req.AssigneeID)
	if err != nil {
		log.Error().Err(err).Str("request_id", requestID).Msg("Failed to assign maintenance request")
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, request)
}

// Complete handles POST /api/v1/maintenance/{id}/complete
func (h *MaintenanceHandler) Complete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := chi.URLParam(r, "id")
	userID := middleware.GetUserID(ctx)

	var req struct {
		ResolutionNotes string `json:"resolution_notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	request, err := h.maintenanceService.Complete(ctx, requestID, req.ResolutionNotes, userID)
	if err != nil {
		log.Error().Err(err).Str("request_id", requestID).Msg("Failed to complete maintenance request")
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, request)
}

// Reopen handles POST /api/v1/maintenance/{id}/reopen
func (h *MaintenanceHandler) Reopen(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := chi.URLParam(r, "id")

	var req struct {
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	request, err := h.maintenanceService.Reopen(ctx, requestID, req.Reason)
	if err != nil {
		log.Error().Err(err).Str("request_id", requestID).Msg("Failed to reopen maintenance request")
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, request)
}
