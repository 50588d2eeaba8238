package services

import (
	"context"
	"fmt"
	"time"

	"shared-house-backend/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// BookingService handles booking business logic: range validation,
// conflict resolution and lifecycle changes. Persistence, push and
// realtime delivery are injected collaborators.
type BookingService struct {
	bookings    BookingStore
	users       UserStore
	notifier    Notifier
	events      EventSink
	maxSpanDays int
	now         func() time.Time
}

// NewBookingService creates a new booking service
func NewBookingService(bookings BookingStore, users UserStore, notifier Notifier, events EventSink) *BookingService {
	return &BookingService{
		bookings:    bookings,
		users:       users,
		notifier:    notifier,
		events:      events,
		maxSpanDays: MaxBookingSpanDays,
		now:         time.Now,
	}
}

// Create validates the candidate range, resolves conflicts against all
// non-cancelled bookings and persists the booking. The store commits the
// conflict check and the insert in one transaction, so two concurrent
// overlapping requests cannot both succeed.
func (s *BookingService) Create(ctx context.Context, userID string, start, end models.CivilDate, notes string) (*models.Booking, error) {
	today := models.CivilDateOf(s.now())
	if err := ValidateRange(start, end, today, s.maxSpanDays); err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to validate user: %w", err)
	}

	booking := &models.Booking{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		UserName:  user.Name,
		StartDate: start,
		EndDate:   end,
		Notes:     notes,
		Status:    models.BookingStatusActive,
		CreatedAt: s.now(),
		UpdatedAt: s.now(),
	}

	conflicts, err := s.bookings.CreateIfFree(ctx, booking)
	if err != nil {
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}
	if len(conflicts) > 0 {
		return nil, newConflictError(conflicts)
	}

	log.Info().
		Str("booking_id", booking.ID).
		Str("user_id", user.ID).
		Str("start_date", start.String()).
		Str("end_date", end.String()).
		Msg("Booking created")

	// Confirmation push is fire-and-forget; delivery failure never fails
	// the booking.
	s.notifier.Send(ctx, user, "booking_confirmed", map[string]string{
		"booking_id": booking.ID,
		"start_date": start.String(),
		"end_date":   end.String(),
	})
	s.events.Broadcast("booking_created", booking)

	return booking, nil
}

// Update re-validates the modified range and re-runs the conflict check,
// excluding the booking itself so it never conflicts with its own dates.
func (s *BookingService) Update(ctx context.Context, id string, start, end models.CivilDate, notes string) (*models.Booking, error) {
	today := models.CivilDateOf(s.now())
	if err := ValidateRange(start, end, today, s.maxSpanDays); err != nil {
		return nil, err
	}

	booking, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	if booking.IsCancelled() {
		return nil, fmt.Errorf("booking %s: %w", id, ErrNotFound)
	}

	booking.StartDate = start
	booking.EndDate = end
	booking.Notes = notes
	booking.UpdatedAt = s.now()

	conflicts, err := s.bookings.UpdateIfFree(ctx, booking)
	if err != nil {
		return nil, fmt.Errorf("failed to update booking: %w", err)
	}
	if len(conflicts) > 0 {
		return nil, newConflictError(conflicts)
	}

	log.Info().
		Str("booking_id", booking.ID).
		Str("start_date", start.String()).
		Str("end_date", end.String()).
		Msg("Booking updated")

	return booking, nil
}

// Cancel marks a booking cancelled. Cancelling an already-cancelled
// booking is a no-op that returns the same cancelled state.
func (s *BookingService) Cancel(ctx context.Context, id string) (*models.Booking, error) {
	booking, err := s.bookings.Cancel(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to cancel booking: %w", err)
	}

	log.Info().Str("booking_id", id).Msg("Booking cancelled")
	s.events.Broadcast("booking_cancelled", booking)

	return booking, nil
}

// GetByID retrieves a booking by ID.
func (s *BookingService) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	return s.bookings.GetByID(ctx, id)
}

// List returns bookings, optionally filtered by owner.
func (s *BookingService) List(ctx context.Context, userID string) ([]models.Booking, error) {
	return s.bookings.List(ctx, userID)
}

// MarkChecklistCompleted links a submitted checklist to its booking.
func (s *BookingService) MarkChecklistCompleted(ctx context.Context, bookingID, checklistID string) error {
	return s.bookings.MarkChecklistCompleted(ctx, bookingID, checklistID)
}

// CurrentCount returns the number of active bookings whose span covers
// today.
func (s *BookingService) CurrentCount(ctx context.Context) (int, error) {
	bookings, err := s.bookings.ListActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list bookings: %w", err)
	}
	today := models.CivilDateOf(s.now())
	count := 0
	for _, b := range bookings {
		if Overlaps(today, today, b.StartDate, b.EndDate) {
			count++
		}
	}
	return count, nil
}

// Upcoming returns up to limit active bookings starting within the next
// days, soonest first.
func (s *BookingService) Upcoming(ctx context.Context, days, limit int) ([]models.Booking, error) {
	bookings, err := s.bookings.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	today := models.CivilDateOf(s.now())
	horizon := today.AddDays(days)

	var upcoming []models.Booking
	for _, b := range bookings {
		if !b.StartDate.Before(today.Time) && !b.StartDate.After(horizon.Time) {
			upcoming = append(upcoming, b)
		}
	}
	sortByStartDate(upcoming)
	if limit > 0 && len(upcoming) > limit {
		upcoming = upcoming[:limit]
	}
	return upcoming, nil
}

func newConflictError(conflicts []models.Booking) *ConflictError {
	err := &ConflictError{Conflicts: make([]BookingConflict, 0, len(conflicts))}
	for _, c := range conflicts {
		err.Conflicts = append(err.Conflicts, BookingConflict{
			BookingID: c.ID,
			UserName:  c.UserName,
			StartDate: c.StartDate,
			EndDate:   c.EndDate,
		})
	}
	return err
}
