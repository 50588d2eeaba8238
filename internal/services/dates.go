package services

import (
	"sort"

	"shared-house-backend/internal/models"
)

// MaxBookingSpanDays is the default maximum stay length.
const MaxBookingSpanDays = 30

// ValidateRange checks a candidate [start, end] pair against the booking
// date rules. The caller supplies today so the check stays a pure function
// of its inputs.
func ValidateRange(start, end, today models.CivilDate, maxSpanDays int) error {
	if !start.Before(end.Time) {
		return ErrInvalidRange
	}
	if start.Before(today.Time) {
		return ErrPastDate
	}
	if start.DaysUntil(end) > maxSpanDays {
		return ErrRangeTooLong
	}
	return nil
}

// Overlaps reports whether two inclusive date ranges intersect:
// [s1,e1] and [s2,e2] overlap iff s1 <= e2 && s2 <= e1.
func Overlaps(s1, e1, s2, e2 models.CivilDate) bool {
	return !s1.After(e2.Time) && !s2.After(e1.Time)
}

// FindConflicts returns the non-cancelled bookings whose inclusive date
// spans intersect the candidate range, sorted by start date. A booking
// whose ID equals excludeID is skipped so an update never conflicts with
// itself. Cancelled bookings never participate regardless of dates.
func FindConflicts(start, end models.CivilDate, bookings []models.Booking, excludeID string) []models.Booking {
	var conflicts []models.Booking
	for _, b := range bookings {
		if b.IsCancelled() {
			continue
		}
		if excludeID != "" && b.ID == excludeID {
			continue
		}
		if Overlaps(start, end, b.StartDate, b.EndDate) {
			conflicts = append(conflicts, b)
		}
	}
	sortByStartDate(conflicts)
	return conflicts
}

func sortByStartDate(bookings []models.Booking) {
	sort.Slice(bookings, func(i, j int) bool {
		return bookings[i].StartDate.Before(bookings[j].StartDate.Time)
	})
}
