package services

import (
	"errors"
	"fmt"
	"strings"

	"shared-house-backend/internal/models"
)

// Domain errors. Handlers match these with errors.Is / errors.As and map
// each to a distinct HTTP status; infrastructure failures are wrapped
// separately and must never satisfy any of them.
var (
	ErrInvalidRange        = errors.New("end date must be after start date")
	ErrPastDate            = errors.New("cannot create bookings for past dates")
	ErrRangeTooLong        = errors.New("booking duration cannot exceed the maximum span")
	ErrNotFound            = errors.New("not found")
	ErrDeviceNotAuthorized = errors.New("device not authorized")
	ErrInvalidToken        = errors.New("invalid token")
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrValidation          = errors.New("validation failed")
)

// BookingConflict identifies one existing booking intersecting a candidate
// date range.
type BookingConflict struct {
	BookingID string           `json:"booking_id"`
	UserName  string           `json:"user_name"`
	StartDate models.CivilDate `json:"start_date"`
	EndDate   models.CivilDate `json:"end_date"`
}

// ConflictError reports every existing booking that overlaps a candidate
// range, sorted by start date.
type ConflictError struct {
	Conflicts []BookingConflict
}

func (e *ConflictError) Error() string {
	details := make([]string, 0, len(e.Conflicts))
	for _, c := range e.Conflicts {
		details = append(details, fmt.Sprintf("%s (%s - %s)", c.UserName, c.StartDate, c.EndDate))
	}
	return "booking conflicts with existing bookings: " + strings.Join(details, ", ")
}

// IncompleteCategoryError names the checklist category that blocks
// submission.
type IncompleteCategoryError struct {
	Category models.ChecklistCategory
	Reason   string
}

func (e *IncompleteCategoryError) Error() string {
	return fmt.Sprintf("checklist category %q incomplete: %s", e.Category, e.Reason)
}
