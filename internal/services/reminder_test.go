package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"shared-house-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newReminderFixture(t *testing.T) (*ReminderScanner, *fakeBookingStore, *recordingNotifier) {
	t.Helper()

	bookings := newFakeBookingStore()
	users := newFakeUserStore(
		testUser("u1", "Alice", models.RoleFamilyMember),
		testUser("u2", "Bob", models.RoleFamilyMember),
	)
	notifier := &recordingNotifier{}

	scanner := NewReminderScanner(bookings, users, notifier, time.Hour)
	scanner.now = fixedClock(time.Date(2026, time.September, 15, 6, 0, 0, 0, time.UTC))
	return scanner, bookings, notifier
}

func addBooking(t *testing.T, store *fakeBookingStore, b models.Booking) {
	t.Helper()
	if b.Status == "" {
		b.Status = models.BookingStatusActive
	}
	_, err := store.CreateIfFree(context.Background(), &b)
	require.NoError(t, err)
}

func TestScanOnce(t *testing.T) {
	ctx := context.Background()

	t.Run("stay ending today gets a push", func(t *testing.T) {
		scanner, bookings, notifier := newReminderFixture(t)
		addBooking(t, bookings, models.Booking{ID: "b1", UserID: "u1", StartDate: date(10), EndDate: date(15)})

		events, err := scanner.ScanOnce(ctx)
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, models.ReminderExitDueToday, events[0].Kind)
		assert.Equal(t, ExitReminderMessage, events[0].Message)

		require.Len(t, notifier.pushes, 1)
		assert.Equal(t, "u1", notifier.pushes[0].UserID)
		assert.Equal(t, "exit_reminder", notifier.pushes[0].Event)

		stored, err := bookings.GetByID(ctx, "b1")
		require.NoError(t, err)
		assert.True(t, stored.ReminderSent)
	})

	t.Run("stay ending tomorrow is an advance notice only", func(t *testing.T) {
		scanner, bookings, notifier := newReminderFixture(t)
		addBooking(t, bookings, models.Booking{ID: "b1", UserID: "u1", StartDate: date(12), EndDate: date(16)})

		events, err := scanner.ScanOnce(ctx)
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, models.ReminderExitDueTomorrow, events[0].Kind)
		assert.Empty(t, notifier.pushes)
	})

	t.Run("completed checklist suppresses the reminder", func(t *testing.T) {
		scanner, bookings, notifier := newReminderFixture(t)
		addBooking(t, bookings, models.Booking{ID: "b1", UserID: "u1", StartDate: date(10), EndDate: date(15), ExitChecklistCompleted: true})

		events, err := scanner.ScanOnce(ctx)
		require.NoError(t, err)
		assert.Empty(t, events)
		assert.Empty(t, notifier.pushes)
	})

	t.Run("cancelled and out-of-window bookings are ignored", func(t *testing.T) {
		scanner, bookings, notifier := newReminderFixture(t)
		addBooking(t, bookings, models.Booking{ID: "b1", UserID: "u1", StartDate: date(10), EndDate: date(15), Status: models.BookingStatusCancelled})
		addBooking(t, bookings, models.Booking{ID: "b2", UserID: "u2", StartDate: date(20), EndDate: date(25)})

		events, err := scanner.ScanOnce(ctx)
		require.NoError(t, err)
		assert.Empty(t, events)
		assert.Empty(t, notifier.pushes)
	})

	t.Run("malformed booking is skipped, scan continues", func(t *testing.T) {
		scanner, bookings, notifier := newReminderFixture(t)
		addBooking(t, bookings, models.Booking{ID: "broken", UserID: "u2", StartDate: date(1)})
		addBooking(t, bookings, models.Booking{ID: "b1", UserID: "u1", StartDate: date(10), EndDate: date(15)})

		events, err := scanner.ScanOnce(ctx)
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, "b1", events[0].BookingID)
		require.Len(t, notifier.pushes, 1)
	})

	t.Run("failed push leaves the reminder pending", func(t *testing.T) {
		scanner, bookings, notifier := newReminderFixture(t)
		notifier.err = errors.New("apns unreachable")
		addBooking(t, bookings, models.Booking{ID: "b1", UserID: "u1", StartDate: date(10), EndDate: date(15)})

		_, err := scanner.ScanOnce(ctx)
		require.NoError(t, err)

		stored, err := bookings.GetByID(ctx, "b1")
		require.NoError(t, err)
		assert.False(t, stored.ReminderSent)

		// The next scan retries once the push channel recovers.
		notifier.err = nil
		_, err = scanner.ScanOnce(ctx)
		require.NoError(t, err)
		stored, err = bookings.GetByID(ctx, "b1")
		require.NoError(t, err)
		assert.True(t, stored.ReminderSent)
	})

	t.Run("store failure surfaces", func(t *testing.T) {
		scanner, bookings, _ := newReminderFixture(t)
		bookings.listErr = errors.New("connection refused")

		_, err := scanner.ScanOnce(ctx)
		assert.Error(t, err)
	})
}

func TestRunStopsOnContextCancel(t *testing.T) {
	scanner, _, _ := newReminderFixture(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		scanner.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scanner did not stop after context cancellation")
	}
}
