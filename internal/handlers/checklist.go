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

// ChecklistHandler handles exit checklist HTTP requests
type ChecklistHandler struct {
	checklistService *services.ChecklistService
}

// NewChecklistHandler creates a new checklist handler
func NewChecklistHandler(checklistService *services.ChecklistService) *ChecklistHandler {
	return &ChecklistHandler{
		checklistService: checklistService,
	}
}

// CreateChecklistRequest represents the request body for creating a
// checklist
type CreateChecklistRequest struct {
	BookingID *string `json:"booking_id"`
}

// Create handles POST /api/v1/checklists
func (h *ChecklistHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req CreateChecklistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	checklist, err := h.checklistService.Create(ctx, userID, req.BookingID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to create checklist")
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, checklist)
}

// List handles GET /api/v1/checklists. With ?mine=true only the caller's
// checklists are returned.
func (h *ChecklistHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	filterUserID := ""
	if r.URL.Query().Get("mine") == "true" {
		filterUserID = middleware.GetUserID(ctx)
	}

	checklists, err := h.checklistService.List(ctx, filterUserID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list checklists")
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"checklists": checklists})
}

// Get handles GET /api/v1/checklists/{id}
func (h *ChecklistHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	checklistID := chi.URLParam(r, "id")

	checklist, err := h.checklistService.GetByID(ctx, checklistID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, checklist)
}

// AddEntryRequest represents the request body for adding a checklist
// entry
type AddEntryRequest struct {
	Category models.ChecklistCategory `json:"category"`
	Notes    string                   `json:"notes"`
	PhotoURL *string                  `json:"photo_url"`
}

// AddEntry handles POST /api/v1/checklists/{id}/entries
func (h *ChecklistHandler) AddEntry(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	checklistID := chi.URLParam(r, "id")

	var req AddEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Category == "" {
		respondError(w, "category is required", http.StatusBadRequest)
		return
	}

	checklist, err := h.checklistService.AddEntry(ctx, checklistID, req.Category, req.Notes, req.PhotoURL)
	if err != nil {
		log.Error().Err(err).Str("checklist_id", checklistID).Msg("Failed to add checklist entry")
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, checklist)
}

// Submit handles POST /api/v1/checklists/{id}/submit
func (h *ChecklistHandler) Submit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	checklistID := chi.URLParam(r, "id")

	checklist, err := h.checklistService.Submit(ctx, checklistID)
	if err != nil {
		log.Warn().Err(err).Str("checklist_id", checklistID).Msg("Checklist submission rejected")
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, checklist)
}
