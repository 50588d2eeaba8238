package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"shared-house-backend/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	minDescriptionLen = 10
	minLocationLen    = 2
	maxRequestPhotos  = 5
)

// MaintenanceService handles maintenance request business logic.
type MaintenanceService struct {
	requests MaintenanceStore
	users    UserStore
	notifier Notifier
	events   EventSink
	now      func() time.Time
}

// NewMaintenanceService creates a new maintenance service
func NewMaintenanceService(requests MaintenanceStore, users UserStore, notifier Notifier, events EventSink) *MaintenanceService {
	return &MaintenanceService{
		requests: requests,
		users:    users,
		notifier: notifier,
		events:   events,
		now:      time.Now,
	}
}

// Create validates and records a maintenance request, then notifies
// maintenance staff fire-and-forget.
func (s *MaintenanceService) Create(ctx context.Context, reporterID, description, location string, photoURLs []string) (*models.MaintenanceRequest, error) {
	if len(strings.TrimSpace(description)) < minDescriptionLen {
		return nil, fmt.Errorf("description must be at least %d characters long: %w", minDescriptionLen, ErrValidation)
	}
	if len(strings.TrimSpace(location)) < minLocationLen {
		return nil, fmt.Errorf("location must be at least %d characters long: %w", minLocationLen, ErrValidation)
	}
	if len(photoURLs) > maxRequestPhotos {
		return nil, fmt.Errorf("at most %d photos are allowed: %w", maxRequestPhotos, ErrValidation)
	}
	if photoURLs == nil {
		photoURLs = []string{}
	}

	reporter, err := s.users.GetByID(ctx, reporterID)
	if err != nil {
		return nil, fmt.Errorf("failed to validate user: %w", err)
	}

	request := &models.MaintenanceRequest{
		ID:           uuid.New().String(),
		ReporterID:   reporter.ID,
		ReporterName: reporter.Name,
		Description:  strings.TrimSpace(description),
		Location:     strings.TrimSpace(location),
		PhotoURLs:    photoURLs,
		Status:       models.MaintenancePending,
		CreatedAt:    s.now(),
		UpdatedAt:    s.now(),
	}

	if err := s.requests.Create(ctx, request); err != nil {
		return nil, fmt.Errorf("failed to create maintenance request: %w", err)
	}

	log.Info().
		Str("request_id", request.ID).
		Str("reporter_id", reporter.ID).
		Str("location", request.Location).
		Msg("Maintenance request created")

	s.notifyRole(ctx, models.RoleMaintenance, "maintenance_created", map[string]string{
		"request_id": request.ID,
		"message":    fmt.Sprintf("New maintenance request at %s", request.Location),
	})
	s.events.Broadcast("maintenance_created", request)

	return request, nil
}

// Assign moves a pending request to in_progress and records the assignee.
func (s *MaintenanceService) Assign(ctx context.Context, requestID, assigneeID string) (*models.MaintenanceRequest, error) {
	request, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to get maintenance request: %w", err)
	}
	if request.Status != models.MaintenancePending {
		return nil, fmt.Errorf("cannot assign request in status %q: %w", request.Status, ErrInvalidTransition)
	}

	assignee, err := s.users.GetByID(ctx, assigneeID)
	if err != nil {
		return nil, fmt.Errorf("failed to validate assignee: %w", err)
	}

	assignedAt := s.now()
	request.Status = models.MaintenanceInProgress
	request.AssignedToID = &assignee.ID
	request.AssignedToName = &assignee.Name
	request.AssignedAt = &assignedAt
	request.UpdatedAt = assignedAt

	if err := s.requests.Update(ctx, request); err != nil {
		return nil, fmt.Errorf("failed to assign maintenance request: %w", err)
	}

	log.Info().Str("request_id", requestID).Str("assignee_id", assigneeID).Msg("Maintenance request assigned")
	s.events.Broadcast("maintenance_updated", request)

	return request, nil
}

// Complete marks an in-progress request completed with resolution notes
// and notifies the admins watching for completions.
func (s *MaintenanceService) Complete(ctx context.Context, requestID, resolutionNotes, completedByID string) (*models.MaintenanceRequest, error) {
	request, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to get maintenance request: %w", err)
	}
	if request.Status != models.MaintenanceInProgress {
		return nil, fmt.Errorf("cannot complete request in status %q: %w", request.Status, ErrInvalidTransition)
	}

	completedBy, err := s.users.GetByID(ctx, completedByID)
	if err != nil {
		return nil, fmt.Errorf("failed to validate user: %w", err)
	}

	completedAt := s.now()
	request.Status = models.MaintenanceCompleted
	request.ResolutionNotes = &resolutionNotes
	request.CompletedByID = &completedBy.ID
	request.CompletedByName = &completedBy.Name
	request.CompletedAt = &completedAt
	request.UpdatedAt = completedAt

	if err := s.requests.Update(ctx, request); err != nil {
		return nil, fmt.Errorf("failed to complete maintenance request: %w", err)
	}

	log.Info().Str("request_id", requestID).Str("completed_by", completedByID).Msg("Maintenance request completed")

	s.notifyRole(ctx, models.RoleAdmin, "maintenance_completed", map[string]string{
		"request_id": request.ID,
		"message":    fmt.Sprintf("Maintenance at %s completed", request.Location),
	})
	s.events.Broadcast("maintenance_updated", request)

	return request, nil
}

// Reopen moves a completed request back to pending with a reason.
func (s *MaintenanceService) Reopen(ctx context.Context, requestID, reason string) (*models.MaintenanceRequest, error) {
	request, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to get maintenance request: %w", err)
	}
	if request.Status != models.MaintenanceCompleted {
		return nil, fmt.Errorf("cannot reopen request in status %q: %w", request.Status, ErrInvalidTransition)
	}

	request.Status = models.MaintenancePending
	request.ReopenReason = &reason
	request.AssignedToID = nil
	request.AssignedToName = nil
	request.AssignedAt = nil
	request.UpdatedAt = s.now()

	if err := s.requests.Update(ctx, request); err != nil {
		return nil, fmt.Errorf("failed to reopen maintenance request: %w", err)
	}

	log.Info().Str("request_id", requestID).Msg("Maintenance request reopened")
	s.events.Broadcast("maintenance_updated", request)

	return request, nil
}

// GetByID retrieves a maintenance request by ID.
func (s *MaintenanceService) GetByID(ctx context.Context, id string) (*models.MaintenanceRequest, error) {
	return s.requests.GetByID(ctx, id)
}

// List returns maintenance requests, optionally filtered by status.
func (s *MaintenanceService) List(ctx context.Context, status models.MaintenanceStatus) ([]models.MaintenanceRequest, error) {
	return s.requests.List(ctx, status)
}

// PendingCount returns the number of pending requests.
func (s *MaintenanceService) PendingCount(ctx context.Context) (int, error) {
	pending, err := s.requests.List(ctx, models.MaintenancePending)
	if err != nil {
		return 0, fmt.Errorf("failed to list maintenance requests: %w", err)
	}
	return len(pending), nil
}

func (s *MaintenanceService) notifyRole(ctx context.Context, role models.UserRole, event string, data map[string]string) {
	users, err := s.users.ListByRole(ctx, role)
	if err != nil {
		log.Error().Err(err).Str("role", string(role)).Msg("Failed to list notification recipients")
		return
	}
	for i := range users {
		s.notifier.Send(ctx, &users[i], event, data)
	}
}
