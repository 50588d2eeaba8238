package services

import (
	"context"
	"testing"
	"time"

	"shared-house-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(category models.ChecklistCategory, notes string) models.ChecklistEntry {
	return models.ChecklistEntry{Category: category, Notes: notes}
}

func completeEntries() []models.ChecklistEntry {
	return []models.ChecklistEntry{
		entry(models.CategoryRefrigerator, "emptied and wiped down"),
		entry(models.CategoryFreezer, "defrosted, door left ajar"),
		entry(models.CategoryCloset, "all linens washed"),
	}
}

func TestValidateEntries(t *testing.T) {
	tests := []struct {
		name         string
		entries      []models.ChecklistEntry
		wantCategory models.ChecklistCategory
	}{
		{name: "no entries is valid", entries: nil},
		{name: "all required categories covered", entries: completeEntries()},
		{
			name: "general entries are exempt from the notes rule",
			entries: append(completeEntries(),
				entry(models.CategoryGeneral, "ok")),
		},
		{
			name: "missing closet",
			entries: []models.ChecklistEntry{
				entry(models.CategoryRefrigerator, "emptied and wiped down"),
				entry(models.CategoryFreezer, "defrosted, door left ajar"),
			},
			wantCategory: models.CategoryCloset,
		},
		{
			name: "short refrigerator notes",
			entries: []models.ChecklistEntry{
				entry(models.CategoryRefrigerator, "ok"),
				entry(models.CategoryFreezer, "defrosted, door left ajar"),
				entry(models.CategoryCloset, "all linens washed"),
			},
			wantCategory: models.CategoryRefrigerator,
		},
		{
			name: "whitespace does not count toward the minimum",
			entries: []models.ChecklistEntry{
				entry(models.CategoryRefrigerator, "   ok   "),
				entry(models.CategoryFreezer, "defrosted, door left ajar"),
				entry(models.CategoryCloset, "all linens washed"),
			},
			wantCategory: models.CategoryRefrigerator,
		},
		{
			name: "one bad entry fails the whole category",
			entries: append(completeEntries(),
				entry(models.CategoryFreezer, "eh")),
			wantCategory: models.CategoryFreezer,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEntries(tt.entries)
			if tt.wantCategory == "" {
				assert.NoError(t, err)
				return
			}
			var incompleteErr *IncompleteCategoryError
			require.ErrorAs(t, err, &incompleteErr)
			assert.Equal(t, tt.wantCategory, incompleteErr.Category)
		})
	}
}

func newChecklistFixture(t *testing.T) (*ChecklistService, *fakeChecklistStore, *fakeBookingStore, *recordingSink) {
	t.Helper()

	checklists := newFakeChecklistStore()
	bookings := newFakeBookingStore()
	users := newFakeUserStore(testUser("u1", "Alice", models.RoleFamilyMember))
	sink := &recordingSink{}

	svc := NewChecklistService(checklists, bookings, users, sink)
	svc.now = fixedClock(time.Date(2026, time.September, 15, 9, 0, 0, 0, time.UTC))
	return svc, checklists, bookings, sink
}

func TestChecklistSubmit(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects incomplete checklist", func(t *testing.T) {
		svc, _, _, _ := newChecklistFixture(t)

		checklist, err := svc.Create(ctx, "u1", nil)
		require.NoError(t, err)
		_, err = svc.AddEntry(ctx, checklist.ID, models.CategoryRefrigerator, "emptied and cleaned", nil)
		require.NoError(t, err)

		_, err = svc.Submit(ctx, checklist.ID)
		var incompleteErr *IncompleteCategoryError
		require.ErrorAs(t, err, &incompleteErr)
		assert.Equal(t, models.CategoryFreezer, incompleteErr.Category)
	})

	t.Run("submits and marks the booking", func(t *testing.T) {
		svc, _, bookings, sink := newChecklistFixture(t)

		booking := &models.Booking{ID: "b1", UserID: "u1", UserName: "Alice", StartDate: date(10), EndDate: date(15), Status: models.BookingStatusActive}
		_, err := bookings.CreateIfFree(ctx, booking)
		require.NoError(t, err)

		checklist, err := svc.Create(ctx, "u1", &booking.ID)
		require.NoError(t, err)
		for _, e := range completeEntries() {
			_, err = svc.AddEntry(ctx, checklist.ID, e.Category, e.Notes, nil)
			require.NoError(t, err)
		}

		submitted, err := svc.Submit(ctx, checklist.ID)
		require.NoError(t, err)
		assert.True(t, submitted.IsComplete)
		require.NotNil(t, submitted.SubmittedAt)

		updated, err := bookings.GetByID(ctx, booking.ID)
		require.NoError(t, err)
		assert.True(t, updated.ExitChecklistCompleted)
		require.NotNil(t, updated.ExitChecklistID)
		assert.Equal(t, checklist.ID, *updated.ExitChecklistID)

		require.Len(t, sink.events, 1)
		assert.Equal(t, "checklist_submitted", sink.events[0].Event)
	})

	t.Run("resubmission is a no-op", func(t *testing.T) {
		svc, _, _, sink := newChecklistFixture(t)

		checklist, err := svc.Create(ctx, "u1", nil)
		require.NoError(t, err)
		for _, e := range completeEntries() {
			_, err = svc.AddEntry(ctx, checklist.ID, e.Category, e.Notes, nil)
			require.NoError(t, err)
		}

		first, err := svc.Submit(ctx, checklist.ID)
		require.NoError(t, err)
		second, err := svc.Submit(ctx, checklist.ID)
		require.NoError(t, err)
		assert.Equal(t, first.SubmittedAt, second.SubmittedAt)
		assert.Len(t, sink.events, 1)
	})

	t.Run("no entries can be added after submission", func(t *testing.T) {
		svc, _, _, _ := newChecklistFixture(t)

		checklist, err := svc.Create(ctx, "u1", nil)
		require.NoError(t, err)
		for _, e := range completeEntries() {
			_, err = svc.AddEntry(ctx, checklist.ID, e.Category, e.Notes, nil)
			require.NoError(t, err)
		}
		_, err = svc.Submit(ctx, checklist.ID)
		require.NoError(t, err)

		_, err = svc.AddEntry(ctx, checklist.ID, models.CategoryGeneral, "left keys in the box", nil)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("empty checklist submits clean", func(t *testing.T) {
		svc, _, _, _ := newChecklistFixture(t)

		checklist, err := svc.Create(ctx, "u1", nil)
		require.NoError(t, err)

		submitted, err := svc.Submit(ctx, checklist.ID)
		require.NoError(t, err)
		assert.True(t, submitted.IsComplete)
	})
}

func TestChecklistEntryOrder(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newChecklistFixture(t)

	checklist, err := svc.Create(ctx, "u1", nil)
	require.NoError(t, err)

	for i, e := range completeEntries() {
		updated, err := svc.AddEntry(ctx, checklist.ID, e.Category, e.Notes, nil)
		require.NoError(t, err)
		assert.Equal(t, i+1, updated.Entries[i].Order)
	}
}

func TestChecklistCreateValidatesBooking(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newChecklistFixture(t)

	missing := "no-such-booking"
	_, err := svc.Create(ctx, "u1", &missing)
	assert.ErrorIs(t, err, ErrNotFound)
}
