package services

import (
	"context"
	"testing"
	"time"

	"shared-house-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubVerifier struct {
	claims *IdentityClaims
	err    error
}

func (v *stubVerifier) Verify(string) (*IdentityClaims, error) {
	return v.claims, v.err
}

func newAuthFixture(t *testing.T, enforce bool) (*AuthService, *fakeUserStore) {
	t.Helper()

	users := newFakeUserStore()
	verifier := &stubVerifier{claims: &IdentityClaims{UID: "ext-1", Email: "alice@example.com", Name: "Alice"}}
	svc := NewAuthService(users, verifier, "test-secret", enforce)
	svc.now = fixedClock(time.Date(2026, time.September, 1, 12, 0, 0, 0, time.UTC))
	return svc, users
}

func device(id string) models.UserDevice {
	return models.UserDevice{DeviceID: id, DeviceName: "Phone " + id, Platform: "ios"}
}

func TestLoginFirstDevice(t *testing.T) {
	svc, _ := newAuthFixture(t, true)
	ctx := context.Background()

	user, token, err := svc.Login(ctx, "provider-token", device("d1"))
	require.NoError(t, err)
	require.NotNil(t, user.CurrentDevice)
	assert.Equal(t, "d1", user.CurrentDevice.DeviceID)
	assert.True(t, user.CurrentDevice.IsActive)
	assert.Empty(t, user.DeviceHistory)
	assert.Equal(t, models.RoleFamilyMember, user.Role)

	userID, err := svc.ValidateSession(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)
}

func TestLoginSameDevice(t *testing.T) {
	svc, _ := newAuthFixture(t, true)
	ctx := context.Background()

	first, _, err := svc.Login(ctx, "provider-token", device("d1"))
	require.NoError(t, err)

	again, _, err := svc.Login(ctx, "provider-token", device("d1"))
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, "d1", again.CurrentDevice.DeviceID)
	// Re-binding the same device still records the replaced binding.
	require.Len(t, again.DeviceHistory, 1)
	assert.Equal(t, "d1", again.DeviceHistory[0].DeviceID)
	assert.False(t, again.DeviceHistory[0].IsActive)
}

func TestLoginDifferentDeviceEnforced(t *testing.T) {
	svc, users := newAuthFixture(t, true)
	ctx := context.Background()

	bound, _, err := svc.Login(ctx, "provider-token", device("d1"))
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "provider-token", device("d2"))
	assert.ErrorIs(t, err, ErrDeviceNotAuthorized)

	// The binding must be untouched after a rejected login.
	stored, err := users.GetByID(ctx, bound.ID)
	require.NoError(t, err)
	assert.Equal(t, "d1", stored.CurrentDevice.DeviceID)
}

func TestLoginDifferentDeviceBypass(t *testing.T) {
	svc, _ := newAuthFixture(t, false)
	ctx := context.Background()

	_, _, err := svc.Login(ctx, "provider-token", device("d1"))
	require.NoError(t, err)

	user, _, err := svc.Login(ctx, "provider-token", device("d2"))
	require.NoError(t, err)
	assert.Equal(t, "d2", user.CurrentDevice.DeviceID)
	require.Len(t, user.DeviceHistory, 1)
	assert.Equal(t, "d1", user.DeviceHistory[0].DeviceID)
	assert.False(t, user.DeviceHistory[0].IsActive)
}

func TestDeviceHistoryIsLIFO(t *testing.T) {
	svc, _ := newAuthFixture(t, false)
	ctx := context.Background()

	for _, id := range []string{"d1", "d2", "d3"} {
		_, _, err := svc.Login(ctx, "provider-token", device(id))
		require.NoError(t, err)
	}

	user, _, err := svc.Login(ctx, "provider-token", device("d4"))
	require.NoError(t, err)

	require.Len(t, user.DeviceHistory, 3)
	assert.Equal(t, "d1", user.DeviceHistory[0].DeviceID)
	assert.Equal(t, "d2", user.DeviceHistory[1].DeviceID)
	assert.Equal(t, "d3", user.DeviceHistory[2].DeviceID)
	assert.Equal(t, "d4", user.CurrentDevice.DeviceID)
}

func TestLoginInvalidProviderToken(t *testing.T) {
	users := newFakeUserStore()
	verifier := &stubVerifier{err: ErrInvalidToken}
	svc := NewAuthService(users, verifier, "test-secret", true)

	_, _, err := svc.Login(context.Background(), "garbage", device("d1"))
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateSessionRejectsForeignToken(t *testing.T) {
	svc, _ := newAuthFixture(t, true)
	other := NewAuthService(newFakeUserStore(), &stubVerifier{}, "other-secret", true)

	token, err := other.GenerateSessionToken("u1")
	require.NoError(t, err)

	_, err = svc.ValidateSession(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestHMACTokenVerifier(t *testing.T) {
	verifier := NewHMACTokenVerifier("shared")

	// A session-token generator with the same secret doubles as a token
	// factory carrying the user_id claim only, which must be rejected.
	factory := NewAuthService(newFakeUserStore(), &stubVerifier{}, "shared", true)
	bad, err := factory.GenerateSessionToken("u1")
	require.NoError(t, err)

	_, err = verifier.Verify(bad)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = verifier.Verify("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
