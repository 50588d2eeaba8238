package repository

import (
	"context"
	"errors"
	"fmt"

	"shared-house-backend/internal/models"
	"shared-house-backend/internal/services"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// BookingRepository handles database operations for bookings
type BookingRepository struct {
	db *pgxpool.Pool
}

// NewBookingRepository creates a new booking repository
func NewBookingRepository(db *pgxpool.Pool) *BookingRepository {
	return &BookingRepository{db: db}
}

const bookingColumns = `
	id, user_id, user_name, start_date, end_date, notes, status,
	exit_checklist_completed, exit_checklist_id, reminder_sent,
	created_at, updated_at
`

// CreateIfFree inserts the booking unless a non-cancelled booking overlaps
// its range. The overlap check and the insert run in one transaction with
// the overlapping rows locked, so two concurrent overlapping creates
// cannot both commit. Returns the conflicting bookings when rejected.
func (r *BookingRepository) CreateIfFree(ctx context.Context, booking *models.Booking) ([]models.Booking, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	conflicts, err := lockConflicting(ctx, tx, booking.StartDate, booking.EndDate, "")
	if err != nil {
		return nil, err
	}
	if len(conflicts) > 0 {
		return conflicts, nil
	}

	query := `
		INSERT INTO bookings (` + bookingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err = tx.Exec(ctx, query,
		booking.ID, booking.UserID, booking.UserName,
		booking.StartDate.Time, booking.EndDate.Time, booking.Notes, booking.Status,
		booking.ExitChecklistCompleted, booking.ExitChecklistID, booking.ReminderSent,
		booking.CreatedAt, booking.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit booking: %w", err)
	}
	return nil, nil
}

// UpdateIfFree rewrites a booking's range and notes unless another
// non-cancelled booking overlaps the new range. The booking itself is
// excluded from the overlap check.
func (r *BookingRepository) UpdateIfFree(ctx context.Context, booking *models.Booking) ([]models.Booking, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	conflicts, err := lockConflicting(ctx, tx, booking.StartDate, booking.EndDate, booking.ID)
	if err != nil {
		return nil, err
	}
	if len(conflicts) > 0 {
		return conflicts, nil
	}

	query := `
		UPDATE bookings
		SET start_date = $2, end_date = $3, notes = $4, updated_at = $5
		WHERE id = $1
	`
	result, err := tx.Exec(ctx, query,
		booking.ID, booking.StartDate.Time, booking.EndDate.Time, booking.Notes, booking.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update booking: %w", err)
	}
	if result.RowsAffected() == 0 {
		return nil, fmt.Errorf("booking %s: %w", booking.ID, services.ErrNotFound)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit booking update: %w", err)
	}
	return nil, nil
}

func lockConflicting(ctx context.Context, tx pgx.Tx, start, end models.CivilDate, excludeID string) ([]models.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE status = 'active' AND start_date <= $2 AND end_date >= $1
	`
	args := []any{start.Time, end.Time}
	if excludeID != "" {
		query += ` AND id <> $3`
		args = append(args, excludeID)
	}
	query += `
		ORDER BY start_date
		FOR UPDATE
	`

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to check booking conflicts: %w", err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// GetByID retrieves a booking by ID
func (r *BookingRepository) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE id = $1
	`
	booking, err := scanBooking(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("booking %s: %w", id, services.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return booking, nil
}

// List retrieves bookings, optionally filtered by owner, soonest first
func (r *BookingRepository) List(ctx context.Context, userID string) ([]models.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
	`
	var args []any
	if userID != "" {
		query += ` WHERE user_id = $1`
		args = append(args, userID)
	}
	query += ` ORDER BY start_date`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// ListActive retrieves all non-cancelled bookings
func (r *BookingRepository) ListActive(ctx context.Context) ([]models.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE status = 'active'
		ORDER BY start_date
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list active bookings: %w", err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// Cancel marks a booking cancelled and returns its current state.
// Cancelling an already-cancelled booking leaves it unchanged.
func (r *BookingRepository) Cancel(ctx context.Context, id string) (*models.Booking, error) {
	query := `
		UPDATE bookings
		SET status = 'cancelled', updated_at = now()
		WHERE id = $1 AND status <> 'cancelled'
	`
	if _, err := r.db.Exec(ctx, query, id); err != nil {
		return nil, fmt.Errorf("failed to cancel booking: %w", err)
	}
	return r.GetByID(ctx, id)
}

// MarkChecklistCompleted links a submitted checklist to its booking
func (r *BookingRepository) MarkChecklistCompleted(ctx context.Context, bookingID, checklistID string) error {
	query := `
		UPDATE bookings
		SET exit_checklist_completed = true, exit_checklist_id = $2, updated_at = now()
		WHERE id = $1
	`
	result, err := r.db.Exec(ctx, query, bookingID, checklistID)
	if err != nil {
		return fmt.Errorf("failed to mark checklist completed: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("booking %s: %w", bookingID, services.ErrNotFound)
	}
	return nil
}

// MarkReminderSent flags that the exit reminder went out for a booking
func (r *BookingRepository) MarkReminderSent(ctx context.Context, bookingID string) error {
	query := `
		UPDATE bookings
		SET reminder_sent = true, updated_at = now()
		WHERE id = $1
	`
	if _, err := r.db.Exec(ctx, query, bookingID); err != nil {
		return fmt.Errorf("failed to mark reminder sent: %w", err)
	}
	return nil
}

func scanBooking(row pgx.Row) (*models.Booking, error) {
	var b models.Booking
	err := row.Scan(
		&b.ID, &b.UserID, &b.UserName,
		&b.StartDate.Time, &b.EndDate.Time, &b.Notes, &b.Status,
		&b.ExitChecklistCompleted, &b.ExitChecklistID, &b.ReminderSent,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func scanBookings(rows pgx.Rows) ([]models.Booking, error) {
	var bookings []models.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, *booking)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read bookings: %w", err)
	}
	return bookings, nil
}
