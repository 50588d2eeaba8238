package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"shared-house-backend/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const sessionExpHours = 24

// IdentityClaims is the identity extracted from a verified provider token.
type IdentityClaims struct {
	UID   string
	Email string
	Name  string
}

// TokenVerifier verifies an external identity-provider token. Keeping it
// an interface keeps the provider a collaborator; tests use a stub.
type TokenVerifier interface {
	Verify(token string) (*IdentityClaims, error)
}

// HMACTokenVerifier verifies provider tokens signed with a shared HMAC
// secret, carrying uid/email/name claims.
type HMACTokenVerifier struct {
	secret string
}

// NewHMACTokenVerifier creates a verifier with the given shared secret.
func NewHMACTokenVerifier(secret string) *HMACTokenVerifier {
	return &HMACTokenVerifier{secret: secret}
}

// Verify parses and validates the provider token.
func (v *HMACTokenVerifier) Verify(tokenString string) (*IdentityClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(v.secret), nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: provider token verification failed", ErrInvalidToken)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected provider token claims", ErrInvalidToken)
	}

	uid, _ := claims["uid"].(string)
	email, _ := claims["email"].(string)
	if uid == "" || email == "" {
		return nil, fmt.Errorf("%w: uid and email claims required", ErrInvalidToken)
	}
	name, _ := claims["name"].(string)
	if name == "" {
		name = strings.SplitN(email, "@", 2)[0]
	}

	return &IdentityClaims{UID: uid, Email: email, Name: name}, nil
}

// AuthService handles login, session tokens and the single-device guard.
type AuthService struct {
	users               UserStore
	verifier            TokenVerifier
	jwtSecret           string
	enforceSingleDevice bool
	now                 func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(users UserStore, verifier TokenVerifier, jwtSecret string, enforceSingleDevice bool) *AuthService {
	return &AuthService{
		users:               users,
		verifier:            verifier,
		jwtSecret:           jwtSecret,
		enforceSingleDevice: enforceSingleDevice,
		now:                 time.Now,
	}
}

// Login verifies the provider token, finds or creates the user, enforces
// the single-device restriction and binds the presented device. Returns
// the user and a session token.
func (s *AuthService) Login(ctx context.Context, providerToken string, device models.UserDevice) (*models.User, string, error) {
	claims, err := s.verifier.Verify(providerToken)
	if err != nil {
		return nil, "", err
	}

	user, err := s.users.GetByExternalUID(ctx, claims.UID)
	if errors.Is(err, ErrNotFound) {
		user, err = s.createUser(ctx, claims)
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to resolve user: %w", err)
	}

	if !s.CanAuthorize(user, device.DeviceID) {
		if s.enforceSingleDevice {
			log.Warn().
				Str("user_id", user.ID).
				Str("current_device", user.CurrentDevice.DeviceID).
				Str("attempted_device", device.DeviceID).
				Msg("Device authorization failed")
			return nil, "", fmt.Errorf("%w: login allowed only from the registered device", ErrDeviceNotAuthorized)
		}
		// Single-device enforcement disabled: log the mismatch and let the
		// login proceed.
		log.Warn().
			Str("user_id", user.ID).
			Str("attempted_device", device.DeviceID).
			Msg("Device mismatch allowed, enforcement disabled")
	}

	if err := s.BindDevice(ctx, user, device); err != nil {
		return nil, "", fmt.Errorf("failed to bind device: %w", err)
	}

	token, err := s.GenerateSessionToken(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create session: %w", err)
	}

	log.Info().
		Str("user_id", user.ID).
		Str("device_id", device.DeviceID).
		Msg("User logged in")

	return user, token, nil
}

// CanAuthorize reports whether a login from the given device would be
// authorized: true for a first login or when the device matches the
// currently bound one.
func (s *AuthService) CanAuthorize(user *models.User, deviceID string) bool {
	return user.CanLoginFromDevice(deviceID)
}

// BindDevice sets the presented device as current, pushing any previous
// current device onto the history. A re-login from a previously seen
// device still records the replaced device as a fresh history entry.
func (s *AuthService) BindDevice(ctx context.Context, user *models.User, device models.UserDevice) error {
	device.LastLogin = s.now()
	device.IsActive = true
	user.SetDevice(device)

	if err := s.users.UpdateDevice(ctx, user.ID, *user.CurrentDevice, user.DeviceHistory); err != nil {
		return fmt.Errorf("failed to update device binding: %w", err)
	}
	return nil
}

func (s *AuthService) createUser(ctx context.Context, claims *IdentityClaims) (*models.User, error) {
	user := &models.User{
		ID:          uuid.New().String(),
		Email:       claims.Email,
		Name:        claims.Name,
		Role:        models.RoleFamilyMember,
		ExternalUID: claims.UID,
		CreatedAt:   s.now(),
		UpdatedAt:   s.now(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	log.Info().Str("user_id", user.ID).Str("email", user.Email).Msg("User created")
	return user, nil
}

// GenerateSessionToken generates a session JWT for a user
func (s *AuthService) GenerateSessionToken(userID string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     s.now().Add(sessionExpHours * time.Hour).Unix(),
		"iat":     s.now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// ValidateSession validates a session JWT and returns the user ID
func (s *AuthService) ValidateSession(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return "", fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil || !token.Valid {
		return "", fmt.Errorf("%w: session verification failed", ErrInvalidToken)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("%w: unexpected session claims", ErrInvalidToken)
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return "", fmt.Errorf("%w: user_id not found in session", ErrInvalidToken)
	}

	return userID, nil
}

// Refresh issues a new session token for an authenticated user.
func (s *AuthService) Refresh(userID string) (string, error) {
	return s.GenerateSessionToken(userID)
}

// Logout invalidates the user's session. Sessions are stateless JWTs, so
// this only records the event; a production deployment would also
// blacklist the token.
func (s *AuthService) Logout(userID string) {
	log.Info().Str("user_id", userID).Msg("Session invalidated")
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(ctx context.Context, userID string) (*models.User, error) {
	return s.users.GetByID(ctx, userID)
}

// UpdatePushToken stores the device push token used for notifications.
func (s *AuthService) UpdatePushToken(ctx context.Context, userID string, pushToken *string) error {
	return s.users.UpdatePushToken(ctx, userID, pushToken)
}
