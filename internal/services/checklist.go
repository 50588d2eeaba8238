package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"shared-house-backend/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const minEntryNotesLen = 5

// ChecklistService handles exit checklist business logic.
type ChecklistService struct {
	checklists ChecklistStore
	bookings   BookingStore
	users      UserStore
	events     EventSink
	now        func() time.Time
}

// NewChecklistService creates a new checklist service
func NewChecklistService(checklists ChecklistStore, bookings BookingStore, users UserStore, events EventSink) *ChecklistService {
	return &ChecklistService{
		checklists: checklists,
		bookings:   bookings,
		users:      users,
		events:     events,
		now:        time.Now,
	}
}

// Create creates an empty checklist, optionally linked to a booking.
func (s *ChecklistService) Create(ctx context.Context, userID string, bookingID *string) (*models.Checklist, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to validate user: %w", err)
	}

	if bookingID != nil {
		if _, err := s.bookings.GetByID(ctx, *bookingID); err != nil {
			return nil, fmt.Errorf("failed to validate booking: %w", err)
		}
	}

	checklist := &models.Checklist{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		UserName:  user.Name,
		BookingID: bookingID,
		Entries:   []models.ChecklistEntry{},
		CreatedAt: s.now(),
		UpdatedAt: s.now(),
	}

	if err := s.checklists.Create(ctx, checklist); err != nil {
		return nil, fmt.Errorf("failed to create checklist: %w", err)
	}

	log.Info().Str("checklist_id", checklist.ID).Str("user_id", user.ID).Msg("Checklist created")
	return checklist, nil
}

// AddEntry appends a category entry to a checklist. Photos are optional;
// only notes are required.
func (s *ChecklistService) AddEntry(ctx context.Context, id string, category models.ChecklistCategory, notes string, photoURL *string) (*models.Checklist, error) {
	checklist, err := s.checklists.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get checklist: %w", err)
	}
	if checklist.IsComplete {
		return nil, fmt.Errorf("checklist %s already submitted: %w", id, ErrInvalidTransition)
	}

	entry := models.ChecklistEntry{
		Category:  category,
		Notes:     notes,
		PhotoURL:  photoURL,
		Order:     len(checklist.Entries) + 1,
		CreatedAt: s.now(),
	}

	if err := s.checklists.AppendEntry(ctx, id, entry); err != nil {
		return nil, fmt.Errorf("failed to add checklist entry: %w", err)
	}
	checklist.Entries = append(checklist.Entries, entry)

	return checklist, nil
}

// ValidateEntries checks checklist completeness: every required category
// needs at least one entry, and every entry in a required category needs
// trimmed notes of at least 5 characters. The general category is exempt.
// A checklist with no entries at all is not yet ready to validate and
// passes; the rules bind at submission.
func ValidateEntries(entries []models.ChecklistEntry) error {
	if len(entries) == 0 {
		return nil
	}

	byCategory := make(map[models.ChecklistCategory][]models.ChecklistEntry)
	for _, entry := range entries {
		byCategory[entry.Category] = append(byCategory[entry.Category], entry)
	}

	for _, category := range models.RequiredChecklistCategories {
		categoryEntries := byCategory[category]
		if len(categoryEntries) == 0 {
			return &IncompleteCategoryError{
				Category: category,
				Reason:   "at least one entry is required",
			}
		}
		for _, entry := range categoryEntries {
			if len(strings.TrimSpace(entry.Notes)) < minEntryNotesLen {
				return &IncompleteCategoryError{
					Category: category,
					Reason:   fmt.Sprintf("entry notes must be at least %d characters", minEntryNotesLen),
				}
			}
		}
	}

	return nil
}

// Submit validates the checklist and marks it complete. Submission is a
// one-way transition; submitting an already-complete checklist is a no-op.
// The linked booking is marked checklist-completed best-effort: a failure
// there does not fail the submission.
func (s *ChecklistService) Submit(ctx context.Context, id string) (*models.Checklist, error) {
	checklist, err := s.checklists.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get checklist: %w", err)
	}
	if checklist.IsComplete {
		return checklist, nil
	}

	if err := ValidateEntries(checklist.Entries); err != nil {
		return nil, err
	}

	submittedAt := s.now()
	if err := s.checklists.MarkSubmitted(ctx, id, submittedAt); err != nil {
		return nil, fmt.Errorf("failed to submit checklist: %w", err)
	}
	checklist.IsComplete = true
	checklist.SubmittedAt = &submittedAt

	if checklist.BookingID != nil {
		if err := s.bookings.MarkChecklistCompleted(ctx, *checklist.BookingID, checklist.ID); err != nil {
			log.Warn().
				Err(err).
				Str("checklist_id", id).
				Str("booking_id", *checklist.BookingID).
				Msg("Failed to mark booking checklist completed")
		}
	}

	log.Info().Str("checklist_id", id).Str("user_id", checklist.UserID).Msg("Checklist submitted")
	s.events.Broadcast("checklist_submitted", checklist)

	return checklist, nil
}

// GetByID retrieves a checklist by ID.
func (s *ChecklistService) GetByID(ctx context.Context, id string) (*models.Checklist, error) {
	return s.checklists.GetByID(ctx, id)
}

// GetByBooking retrieves the checklist linked to a booking.
func (s *ChecklistService) GetByBooking(ctx context.Context, bookingID string) (*models.Checklist, error) {
	return s.checklists.GetByBooking(ctx, bookingID)
}

// List returns checklists, optionally filtered by owner.
func (s *ChecklistService) List(ctx context.Context, userID string) ([]models.Checklist, error) {
	return s.checklists.List(ctx, userID)
}

// Recent returns up to limit checklists, newest first.
func (s *ChecklistService) Recent(ctx context.Context, limit int) ([]models.Checklist, error) {
	checklists, err := s.checklists.List(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to list checklists: %w", err)
	}
	sortChecklistsNewestFirst(checklists)
	if limit > 0 && len(checklists) > limit {
		checklists = checklists[:limit]
	}
	return checklists, nil
}

func sortChecklistsNewestFirst(checklists []models.Checklist) {
	sort.Slice(checklists, func(i, j int) bool {
		return checklists[i].CreatedAt.After(checklists[j].CreatedAt)
	})
}
