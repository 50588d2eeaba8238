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

// MaintenanceRepository handles database operations for maintenance requests
type MaintenanceRepository struct {
	db *pgxpool.Pool
}

// NewMaintenanceRepository creates a new maintenance repository
func NewMaintenanceRepository(db *pgxpool.Pool) *MaintenanceRepository {
	return &MaintenanceRepository{db: db}
}

const maintenanceColumns = `
	id, reporter_id, reporter_name, description, location, photo_urls, status,
	assigned_to_id, assigned_to_name, assigned_at,
	resolution_notes, completed_by_id, completed_by_name, completed_at,
	reopen_reason, created_at, updated_at
`

// Create creates a new maintenance request
func (r *MaintenanceRepository) Create(ctx context.Context, request *models.MaintenanceRequest) error {
	query := `
		INSERT INTO maintenance_requests (` + maintenanceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`
	_, err := r.db.Exec(ctx, query,
		request.ID, request.ReporterID, request.ReporterName,
		request.Description, request.Location, request.PhotoURLs, request.Status,
		request.AssignedToID, request.AssignedToName, request.AssignedAt,
		request.ResolutionNotes, request.CompletedByID, request.CompletedByName, request.CompletedAt,
		request.ReopenReason, request.CreatedAt, request.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create maintenance request: %w", err)
	}
	return nil
}

// GetByID retrieves a maintenance request by ID
func (r *MaintenanceRepository) GetByID(ctx context.Context, id string) (*models.MaintenanceRequest, error) {
	query := `
		SELECT ` + maintenanceColumns + `
		FROM maintenance_requests
		WHERE id = $1
	`
	request, err := scanMaintenanceRequest(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("maintenance request %s: %w", id, services.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get maintenance request: %w", err)
	}
	return request, nil
}

// List retrieves maintenance requests, optionally filtered by status,
// newest first
func (r *MaintenanceRepository) List(ctx context.Context, status models.MaintenanceStatus) ([]models.MaintenanceRequest, error) {
	query := `
		SELECT ` + maintenanceColumns + `
		FROM maintenance_requests
	`
	var args []any
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list maintenance requests: %w", err)
	}
	defer rows.Close()

	var requests []models.MaintenanceRequest
	for rows.Next() {
		request, err := scanMaintenanceRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan maintenance request: %w", err)
		}
		requests = append(requests, *request)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read maintenance requests: %w", err)
	}
	return requests, nil
}

// Update rewrites the mutable fields of a maintenance request
func (r *MaintenanceRepository) Update(ctx context.Context, request *models.MaintenanceRequest) error {
	query := `
		UPDATE maintenance_requests
		SET description = $2, location = $3, photo_urls = $4, status = $5,
			assigned_to_id = $6, assigned_to_name = $7, assigned_at = $8,
			resolution_notes = $9, completed_by_id = $10, completed_by_name = $11,
			completed_at = $12, reopen_reason = $13, updated_at = $14
		WHERE id = $1
	`
	result, err := r.db.Exec(ctx, query,
		request.ID, request.Description, request.Location, request.PhotoURLs, request.Status,
		request.AssignedToID, request.AssignedToName, request.AssignedAt,
		request.ResolutionNotes, request.CompletedByID, request.CompletedByName,
		request.CompletedAt, request.ReopenReason, request.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update maintenance request: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("maintenance request %s: %w", request.ID, services.ErrNotFound)
	}
	return nil
}

func scanMaintenanceRequest(row pgx.Row) (*models.MaintenanceRequest, error) {
	var m models.MaintenanceRequest
	err := row.Scan(
		&m.ID, &m.ReporterID, &m.ReporterName,
		&m.Description, &m.Location, &m.PhotoURLs, &m.Status,
		&m.AssignedToID, &m.AssignedToName, &m.AssignedAt,
		&m.ResolutionNotes, &m.CompletedByID, &m.CompletedByName, &m.CompletedAt,
		&m.ReopenReason, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
