package handlers

import (
	"net/http"

	"shared-house-backend/internal/models"
	"shared-house-backend/internal/services"

	"github.com/rs/zerolog/log"
)

const (
	upcomingHorizonDays = 30
	upcomingLimit       = 5
	recentChecklists    = 5
)

// DashboardHandler aggregates house state for the home screen.
type DashboardHandler struct {
	bookingService     *services.BookingService
	maintenanceService *services.MaintenanceService
	checklistService   *services.ChecklistService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(
	bookingService *services.BookingService,
	maintenanceService *services.MaintenanceService,
	checklistService *services.ChecklistService,
) *DashboardHandler {
	return &DashboardHandler{
		bookingService:     bookingService,
		maintenanceService: maintenanceService,
		checklistService:   checklistService,
	}
}

// DashboardSummary is the aggregated payload for the home screen.
type DashboardSummary struct {
	CurrentBookings    int                `json:"current_bookings"`
	UpcomingBookings   []models.Booking   `json:"upcoming_bookings"`
	PendingMaintenance int                `json:"pending_maintenance"`
	RecentChecklists   []models.Checklist `json:"recent_checklists"`
}

// Summary handles GET /api/v1/dashboard
func (h *DashboardHandler) Summary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	current, err := h.bookingService.CurrentCount(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to count current bookings")
		respondDomainError(w, err)
		return
	}

	upcoming, err := h.bookingService.Upcoming(ctx, upcomingHorizonDays, upcomingLimit)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list upcoming bookings")
		respondDomainError(w, err)
		return
	}
	if upcoming == nil {
		upcoming = []models.Booking{}
	}

	pending, err := h.maintenanceService.PendingCount(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to count pending maintenance")
		respondDomainError(w, err)
		return
	}

	recent, err := h.checklistService.Recent(ctx, recentChecklists)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list recent checklists")
		respondDomainError(w, err)
		return
	}
	if recent == nil {
		recent = []models.Checklist{}
	}

	respondJSON(w, http.StatusOK, DashboardSummary{
		CurrentBookings:    current,
		UpcomingBookings:   upcoming,
		PendingMaintenance: pending,
		RecentChecklists:   recent,
	})
}
