package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"shared-house-backend/internal/models"
	"shared-house-backend/internal/services"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ChecklistRepository handles database operations for exit checklists
type ChecklistRepository struct {
	db *pgxpool.Pool
}

// NewChecklistRepository creates a new checklist repository
func NewChecklistRepository(db *pgxpool.Pool) *ChecklistRepository {
	return &ChecklistRepository{db: db}
}

const checklistColumns = `
	id, user_id, user_name, booking_id, entries, important_notes,
	is_complete, submitted_at, created_at, updated_at
`

// Create creates a new checklist
func (r *ChecklistRepository) Create(ctx context.Context, checklist *models.Checklist) error {
	entries := checklist.Entries
	if entries == nil {
		entries = []models.ChecklistEntry{}
	}
	entriesData, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to encode checklist entries: %w", err)
	}

	query := `
		INSERT INTO checklists (` + checklistColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err = r.db.Exec(ctx, query,
		checklist.ID, checklist.UserID, checklist.UserName, checklist.BookingID,
		entriesData, checklist.ImportantNotes,
		checklist.IsComplete, checklist.SubmittedAt, checklist.CreatedAt, checklist.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create checklist: %w", err)
	}
	return nil
}

// GetByID retrieves a checklist by ID
func (r *ChecklistRepository) GetByID(ctx context.Context, id string) (*models.Checklist, error) {
	query := `
		SELECT ` + checklistColumns + `
		FROM checklists
		WHERE id = $1
	`
	checklist, err := scanChecklist(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("checklist %s: %w", id, services.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get checklist: %w", err)
	}
	return checklist, nil
}

// GetByBooking retrieves the checklist linked to a booking
func (r *ChecklistRepository) GetByBooking(ctx context.Context, bookingID string) (*models.Checklist, error) {
	query := `
		SELECT ` + checklistColumns + `
		FROM checklists
		WHERE booking_id = $1
		LIMIT 1
	`
	checklist, err := scanChecklist(r.db.QueryRow(ctx, query, bookingID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("checklist for booking %s: %w", bookingID, services.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get checklist by booking: %w", err)
	}
	return checklist, nil
}

// List retrieves checklists, optionally filtered by owner, newest first
func (r *ChecklistRepository) List(ctx context.Context, userID string) ([]models.Checklist, error) {
	query := `
		SELECT ` + checklistColumns + `
		FROM checklists
	`
	var args []any
	if userID != "" {
		query += ` WHERE user_id = $1`
		args = append(args, userID)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list checklists: %w", err)
	}
	defer rows.Close()

	var checklists []models.Checklist
	for rows.Next() {
		checklist, err := scanChecklist(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan checklist: %w", err)
		}
		checklists = append(checklists, *checklist)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read checklists: %w", err)
	}
	return checklists, nil
}

// AppendEntry appends one entry to a checklist's entry array
func (r *ChecklistRepository) AppendEntry(ctx context.Context, id string, entry models.ChecklistEntry) error {
	entryData, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode checklist entry: %w", err)
	}

	query := `
		UPDATE checklists
		SET entries = entries || $2::jsonb, updated_at = now()
		WHERE id = $1
	`
	result, err := r.db.Exec(ctx, query, id, entryData)
	if err != nil {
		return fmt.Errorf("failed to append checklist entry: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("checklist %s: %w", id, services.ErrNotFound)
	}
	return nil
}

// MarkSubmitted flags a checklist complete with its submission timestamp
func (r *ChecklistRepository) MarkSubmitted(ctx context.Context, id string, submittedAt time.Time) error {
	query := `
		UPDATE checklists
		SET is_complete = true, submitted_at = $2, updated_at = $2
		WHERE id = $1
	`
	result, err := r.db.Exec(ctx, query, id, submittedAt)
	if err != nil {
		return fmt.Errorf("failed to mark checklist submitted: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("checklist %s: %w", id, services.ErrNotFound)
	}
	return nil
}

func scanChecklist(row pgx.Row) (*models.Checklist, error) {
	var (
		c       models.Checklist
		entries []byte
	)
	err := row.Scan(
		&c.ID, &c.UserID, &c.UserName, &c.BookingID, &entries, &c.ImportantNotes,
		&c.IsComplete, &c.SubmittedAt, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(entries) > 0 {
		if err := json.Unmarshal(entries, &c.Entries); err != nil {
			return nil, fmt.Errorf("failed to decode checklist entries: %w", err)
		}
	}
	return &c, nil
}
