package services

import (
	"context"
	"fmt"
	"time"

	"shared-house-backend/internal/models"

	"github.com/rs/zerolog/log"
)

const scanRetryDelay = time.Minute

// ReminderScanner periodically sweeps active bookings and emits exit
// checklist reminders for stays ending today, plus advance notices for
// stays ending tomorrow.
type ReminderScanner struct {
	bookings BookingStore
	users    UserStore
	notifier Notifier
	interval time.Duration
	now      func() time.Time
}

// NewReminderScanner creates a new reminder scanner
func NewReminderScanner(bookings BookingStore, users UserStore, notifier Notifier, interval time.Duration) *ReminderScanner {
	if interval <= 0 {
		interval = time.Hour
	}
	return &ReminderScanner{
		bookings: bookings,
		users:    users,
		notifier: notifier,
		interval: interval,
		now:      time.Now,
	}
}

// Run starts the scan loop: one immediate scan, then one per interval
// until the context is cancelled. A failed scan backs off briefly and the
// loop keeps going.
func (s *ReminderScanner) Run(ctx context.Context) {
	log.Info().Dur("interval", s.interval).Msg("Starting reminder scanner")

	if _, err := s.ScanOnce(ctx); err != nil {
		log.Error().Err(err).Msg("Reminder scan failed")
	}

	timer := time.NewTimer(s.interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Reminder scanner shutting down")
			return
		case <-timer.C:
			if _, err := s.ScanOnce(ctx); err != nil {
				log.Error().Err(err).Msg("Reminder scan failed, backing off")
				timer.Reset(scanRetryDelay)
				continue
			}
			timer.Reset(s.interval)
		}
	}
}

// ScanOnce reads all active bookings and returns the reminder events for
// this pass. Reminders for stays ending today are pushed to the owner and
// the booking is marked reminder-sent; advance notices for stays ending
// tomorrow are logged only, dispatch being a pluggable follow-up. A
// malformed booking record is skipped, never aborting the scan.
func (s *ReminderScanner) ScanOnce(ctx context.Context) ([]models.ReminderEvent, error) {
	bookings, err := s.bookings.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active bookings: %w", err)
	}

	today := models.CivilDateOf(s.now())
	tomorrow := today.AddDays(1)

	var events []models.ReminderEvent
	for _, booking := range bookings {
		if booking.ExitChecklistCompleted {
			continue
		}
		if booking.StartDate.IsZero() || booking.EndDate.IsZero() {
			log.Warn().Str("booking_id", booking.ID).Msg("Booking has malformed dates, skipping")
			continue
		}

		switch {
		case booking.EndDate.Equal(today.Time):
			event := models.ReminderEvent{
				BookingID: booking.ID,
				UserID:    booking.UserID,
				Kind:      models.ReminderExitDueToday,
				Message:   ExitReminderMessage,
			}
			events = append(events, event)
			s.dispatch(ctx, booking, event)
		case booking.EndDate.Equal(tomorrow.Time):
			events = append(events, models.ReminderEvent{
				BookingID: booking.ID,
				UserID:    booking.UserID,
				Kind:      models.ReminderExitDueTomorrow,
				Message:   AdvanceExitReminderMessage,
			})
			log.Info().
				Str("booking_id", booking.ID).
				Str("user_id", booking.UserID).
				Msg("Advance exit reminder due")
		}
	}

	log.Debug().Int("events", len(events)).Msg("Reminder scan completed")
	return events, nil
}

// dispatch pushes a same-day reminder to the booking owner. Failures are
// logged and never propagate; a lost reminder will be retried on the next
// scan because reminder_sent is only set after a successful push.
func (s *ReminderScanner) dispatch(ctx context.Context, booking models.Booking, event models.ReminderEvent) {
	user, err := s.users.GetByID(ctx, booking.UserID)
	if err != nil {
		log.Error().Err(err).Str("booking_id", booking.ID).Msg("Failed to load booking owner for reminder")
		return
	}

	if err := s.notifier.Send(ctx, user, "exit_reminder", map[string]string{
		"booking_id": booking.ID,
		"message":    event.Message,
	}); err != nil {
		log.Error().Err(err).Str("booking_id", booking.ID).Msg("Failed to send exit reminder")
		return
	}

	if err := s.bookings.MarkReminderSent(ctx, booking.ID); err != nil {
		log.Error().Err(err).Str("booking_id", booking.ID).Msg("Failed to mark reminder sent")
	}

	log.Info().Str("booking_id", booking.ID).Str("user_id", booking.UserID).Msg("Exit reminder sent")
}
