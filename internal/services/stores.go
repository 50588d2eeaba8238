package services

import (
	"context"
	"time"

	"shared-house-backend/internal/models"
)

// Store interfaces consumed by the services. The pgx repositories implement
// them; tests substitute in-memory fakes. Lookup misses are reported as
// errors wrapping ErrNotFound.

// BookingStore persists bookings. CreateIfFree and UpdateIfFree run the
// conflict re-check and the write in a single transaction and return the
// overlapping bookings instead of writing when the range is taken.
type BookingStore interface {
	CreateIfFree(ctx context.Context, booking *models.Booking) (conflicts []models.Booking, err error)
	UpdateIfFree(ctx context.Context, booking *models.Booking) (conflicts []models.Booking, err error)
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	List(ctx context.Context, userID string) ([]models.Booking, error)
	ListActive(ctx context.Context) ([]models.Booking, error)
	Cancel(ctx context.Context, id string) (*models.Booking, error)
	MarkChecklistCompleted(ctx context.Context, bookingID, checklistID string) error
	MarkReminderSent(ctx context.Context, bookingID string) error
}

// UserStore persists users and their device bindings.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByExternalUID(ctx context.Context, uid string) (*models.User, error)
	UpdateDevice(ctx context.Context, userID string, current models.UserDevice, history []models.UserDevice) error
	UpdatePushToken(ctx context.Context, userID string, pushToken *string) error
	ListByRole(ctx context.Context, role models.UserRole) ([]models.User, error)
}

// ChecklistStore persists exit checklists.
type ChecklistStore interface {
	Create(ctx context.Context, checklist *models.Checklist) error
	GetByID(ctx context.Context, id string) (*models.Checklist, error)
	GetByBooking(ctx context.Context, bookingID string) (*models.Checklist, error)
	List(ctx context.Context, userID string) ([]models.Checklist, error)
	AppendEntry(ctx context.Context, id string, entry models.ChecklistEntry) error
	MarkSubmitted(ctx context.Context, id string, submittedAt time.Time) error
}

// MaintenanceStore persists maintenance requests.
type MaintenanceStore interface {
	Create(ctx context.Context, request *models.MaintenanceRequest) error
	GetByID(ctx context.Context, id string) (*models.MaintenanceRequest, error)
	List(ctx context.Context, status models.MaintenanceStatus) ([]models.MaintenanceRequest, error)
	Update(ctx context.Context, request *models.MaintenanceRequest) error
}

// EventSink receives realtime events for connected clients. The websocket
// hub implements it; a NopSink is used where realtime is disabled.
type EventSink interface {
	Broadcast(event string, data any)
}

// NopSink discards events.
type NopSink struct{}

// Broadcast implements EventSink.
func (NopSink) Broadcast(string, any) {}
