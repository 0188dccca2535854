package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-tutor/internal/api/shared"
	"github.com/phrazzld/scry-tutor/internal/auth"
	"github.com/phrazzld/scry-tutor/internal/mocks"
	"github.com/phrazzld/scry-tutor/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthMiddleware_Authenticate(t *testing.T) {
	t.Parallel()
	userID := uuid.New()

	tests := []struct {
		name           string
		authHeader     string
		validateErr    error
		expectedStatus int
		expectedError  string
	}{
		{name: "valid token", authHeader: "Bearer good", expectedStatus: http.StatusOK},
		{name: "lowercase scheme", authHeader: "bearer good", expectedStatus: http.StatusOK},
		{name: "missing header", expectedStatus: http.StatusUnauthorized, expectedError: "Authorization header required"},
		{name: "no scheme", authHeader: "good", expectedStatus: http.StatusUnauthorized, expectedError: "Invalid authorization format"},
		{name: "basic scheme", authHeader: "Basic Zm9vOmJhcg==", expectedStatus: http.StatusUnauthorized, expectedError: "Invalid authorization format"},
		{name: "empty token", authHeader: "Bearer  ", expectedStatus: http.StatusUnauthorized, expectedError: "Invalid authorization format"},
		{name: "expired", authHeader: "Bearer old", validateErr: auth.ErrExpiredToken, expectedStatus: http.StatusUnauthorized, expectedError: "Token expired"},
		{name: "invalid", authHeader: "Bearer bad", validateErr: auth.ErrInvalidToken, expectedStatus: http.StatusUnauthorized, expectedError: "Invalid token"},
		{name: "not yet valid", authHeader: "Bearer early", validateErr: auth.ErrTokenNotYetValid, expectedStatus: http.StatusUnauthorized, expectedError: "Invalid token"},
		{name: "unexpected failure", authHeader: "Bearer x", validateErr: errors.New("keystore offline"), expectedStatus: http.StatusInternalServerError, expectedError: "Authentication error"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			jwtSvc := &mocks.MockJWTService{ValidateErr: tc.validateErr}
			if tc.validateErr == nil {
				jwtSvc.Claims = &auth.Claims{UserID: userID}
			}

			var seen uuid.UUID
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen, _ = shared.GetUserID(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/api/sessions/x", nil)
			if tc.authHeader != "" {
				req.Header.Set("Authorization", tc.authHeader)
			}
			w := httptest.NewRecorder()
			NewAuthMiddleware(jwtSvc).Authenticate(next).ServeHTTP(w, req)

			assert.Equal(t, tc.expectedStatus, w.Code)
			if tc.expectedStatus == http.StatusOK {
				assert.Equal(t, userID, seen)
				return
			}
			var body shared.ErrorResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
			assert.Equal(t, tc.expectedError, body.Error)
			assert.Equal(t, uuid.Nil, seen)
		})
	}
}

func TestNewAuthMiddleware_PanicsOnNil(t *testing.T) {
	t.Parallel()
	assert.Panics(t, func() { NewAuthMiddleware(nil) })
}

func TestTraceMiddleware(t *testing.T) {
	t.Parallel()
	log, buf := logger.NewTestLogger(t)

	var traceID string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID = shared.GetTraceID(r.Context())
		logger.FromContext(r.Context()).Info("inside handler")
	})
	h := NewTraceMiddleware(log)(next)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Len(t, traceID, 32)
	assert.Equal(t, traceID, w.Header().Get(shared.TraceIDHeader))

	for _, entry := range buf.Entries(t) {
		assert.Equal(t, traceID, entry["trace_id"])
	}

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(shared.TraceIDHeader, "upstream-42")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, "upstream-42", traceID)
	assert.Equal(t, "upstream-42", w.Header().Get(shared.TraceIDHeader))
}
