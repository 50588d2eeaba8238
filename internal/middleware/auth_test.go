package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"shared-house-backend/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthService() *services.AuthService {
	// Session validation never touches the user store or the provider
	// verifier, so nil collaborators are fine here.
	return services.NewAuthService(nil, nil, "test-secret", true)
}

func TestAuthMiddleware(t *testing.T) {
	authService := newAuthService()
	token, err := authService.GenerateSessionToken("u1")
	require.NoError(t, err)

	var gotUserID string
	handler := AuthMiddleware(authService)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = GetUserID(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{name: "valid token", header: "Bearer " + token, wantStatus: http.StatusNoContent},
		{name: "missing header", header: "", wantStatus: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic " + token, wantStatus: http.StatusUnauthorized},
		{name: "garbage token", header: "Bearer garbage", wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotUserID = ""
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusNoContent {
				assert.Equal(t, "u1", gotUserID)
			}
		})
	}
}

func TestAuthMiddlewareRejectsForeignSecret(t *testing.T) {
	other := services.NewAuthService(nil, nil, "other-secret", true)
	token, err := other.GenerateSessionToken("u1")
	require.NoError(t, err)

	handler := AuthMiddleware(newAuthService())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestValidateWebSocketToken(t *testing.T) {
	authService := newAuthService()
	token, err := authService.GenerateSessionToken("u1")
	require.NoError(t, err)

	userID, err := ValidateWebSocketToken(token, authService)
	require.NoError(t, err)
	assert.Equal(t, "u1", userID)

	_, err = ValidateWebSocketToken("", authService)
	assert.Error(t, err)
}
