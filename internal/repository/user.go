package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"shared-house-backend/internal/models"
	"shared-house-backend/internal/services"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UserRepository handles database operations for users
type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `
	id, email, name, role, external_uid, push_token,
	current_device, device_history, created_at, updated_at
`

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	currentDevice, history, err := marshalDevices(user)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err = r.db.Exec(ctx, query,
		user.ID, user.Email, user.Name, user.Role, user.ExternalUID, user.PushToken,
		currentDevice, history, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE id = $1
	`
	return r.getOne(ctx, query, id)
}

// GetByExternalUID retrieves a user by external auth provider UID
func (r *UserRepository) GetByExternalUID(ctx context.Context, uid string) (*models.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE external_uid = $1
	`
	return r.getOne(ctx, query, uid)
}

func (r *UserRepository) getOne(ctx context.Context, query string, arg any) (*models.User, error) {
	var (
		user          models.User
		currentDevice []byte
		history       []byte
	)
	err := r.db.QueryRow(ctx, query, arg).Scan(
		&user.ID, &user.Email, &user.Name, &user.Role, &user.ExternalUID, &user.PushToken,
		&currentDevice, &history, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user: %w", services.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if len(currentDevice) > 0 {
		user.CurrentDevice = &models.UserDevice{}
		if err := json.Unmarshal(currentDevice, user.CurrentDevice); err != nil {
			return nil, fmt.Errorf("failed to decode current device: %w", err)
		}
	}
	if len(history) > 0 {
		if err := json.Unmarshal(history, &user.DeviceHistory); err != nil {
			return nil, fmt.Errorf("failed to decode device history: %w", err)
		}
	}

	return &user, nil
}

// UpdateDevice stores a new current device and the full device history in
// a single write.
func (r *UserRepository) UpdateDevice(ctx context.Context, userID string, current models.UserDevice, history []models.UserDevice) error {
	currentData, err := json.Marshal(current)
	if err != nil {
		return fmt.Errorf("failed to encode current device: %w", err)
	}
	historyData, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("failed to encode device history: %w", err)
	}

	query := `
		UPDATE users
		SET current_device = $2, device_history = $3, updated_at = now()
		WHERE id = $1
	`
	result, err := r.db.Exec(ctx, query, userID, currentData, historyData)
	if err != nil {
		return fmt.Errorf("failed to update device: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("user %s: %w", userID, services.ErrNotFound)
	}
	return nil
}

// UpdatePushToken updates the push token for a user
func (r *UserRepository) UpdatePushToken(ctx context.Context, userID string, pushToken *string) error {
	query := `UPDATE users SET push_token = $2, updated_at = now() WHERE id = $1`
	result, err := r.db.Exec(ctx, query, userID, pushToken)
	if err != nil {
		return fmt.Errorf("failed to update push token: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("user %s: %w", userID, services.ErrNotFound)
	}
	return nil
}

// ListByRole retrieves all users with the given role
func (r *UserRepository) ListByRole(ctx context.Context, role models.UserRole) ([]models.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE role = $1
		ORDER BY name
	`
	rows, err := r.db.Query(ctx, query, role)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var (
			user          models.User
			currentDevice []byte
			history       []byte
		)
		err := rows.Scan(
			&user.ID, &user.Email, &user.Name, &user.Role, &user.ExternalUID, &user.PushToken,
			&currentDevice, &history, &user.CreatedAt, &user.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		if len(currentDevice) > 0 {
			user.CurrentDevice = &models.UserDevice{}
			if err := json.Unmarshal(currentDevice, user.CurrentDevice); err != nil {
				return nil, fmt.Errorf("failed to decode current device: %w", err)
			}
		}
		if len(history) > 0 {
			if err := json.Unmarshal(history, &user.DeviceHistory); err != nil {
				return nil, fmt.Errorf("failed to decode device history: %w", err)
			}
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read users: %w", err)
	}
	return users, nil
}

func marshalDevices(user *models.User) (currentDevice, history []byte, err error) {
	if user.CurrentDevice != nil {
		currentDevice, err = json.Marshal(user.CurrentDevice)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to encode current device: %w", err)
		}
	}
	deviceHistory := user.DeviceHistory
	if deviceHistory == nil {
		deviceHistory = []models.UserDevice{}
	}
	history, err = json.Marshal(deviceHistory)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode device history: %w", err)
	}
	return currentDevice, history, nil
}
