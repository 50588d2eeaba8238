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

// BookingHandler handles booking HTTP requests
type BookingHandler struct {
	bookingService *services.BookingService
}

// NewBookingHandler creates a new booking handler
func NewBookingHandler(bookingService *services.BookingService) *BookingHandler {
	return &BookingHandler{
		bookingService: bookingService,
	}
}

// BookingRequest represents the request body for creating or updating a
// booking
type BookingRequest struct {
	StartDate models.CivilDate `json:"start_date"`
	EndDate   models.CivilDate `json:"end_date"`
	Notes     string           `json:"notes"`
}

// Create handles POST /api/v1/bookings
func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	booking, err := h.bookingService.Create(ctx, userID, req.StartDate, req.EndDate, req.Notes)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to create booking")
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, booking)
}

// List handles GET /api/v1/bookings. With ?mine=true only the caller's
// bookings are returned.
func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	filterUserID := ""
	if r.URL.Query().Get("mine") == "true" {
		filterUserID = middleware.GetUserID(ctx)
	}

	bookings, err := h.bookingService.List(ctx, filterUserID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list bookings")
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"bookings": bookings})
}

// Get handles GET /api/v1/bookings/{id}
func (h *BookingHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	bookingID := chi.URLParam(r, "id")

	booking, err := h.bookingService.GetByID(ctx, bookingID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, booking)
}

// Update handles PUT /api/v1/bookings/{id}
func (h *BookingHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	bookingID := chi.URLParam(r, "id")

	var req BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	booking, err := h.bookingService.Update(ctx, bookingID, req.StartDate, req.EndDate, req.Notes)
	if err != nil {
		log.Error().Err(err).Str("booking_id", bookingID).Msg("Failed to update booking")
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, booking)
}

// Cancel handles DELETE /api/v1/bookings/{id}
func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	bookingID := chi.URLParam(r, "id")

	booking, err := h.bookingService.Cancel(ctx, bookingID)
	if err != nil {
		log.Error().Err(err).Str("booking_id", bookingID).Msg("Failed to cancel booking")
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, booking)
}
