package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testTokenValidator is a test implementation of TokenValidator for unit tests.
type testTokenValidator struct {
	validTokens map[string]*Principal
}

func newTestTokenValidator() *testTokenValidator {
	return &testTokenValidator{validTokens: make(map[string]*Principal)}
}

func (v *testTokenValidator) ValidateToken(_ context.Context, token string) (*Principal, error) {
	p, ok := v.validTokens[token]
	if !ok {
		return nil, fmt.Errorf("invalid token")
	}
	return p, nil
}

func protected(t *testing.T, validator TokenValidator) (http.Handler, *Principal) {
	t.Helper()
	seen := &Principal{}
	handler := AuthMiddleware(validator)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, err := GetPrincipal(r)
		require.NoError(t, err)
		*seen = *p
		w.WriteHeader(http.StatusOK)
	}))
	return handler, seen
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	validator := newTestTokenValidator()
	validator.validTokens["valid-test-token-123"] = &Principal{Subject: "user-1", Email: "jane@example.com"}
	handler, seen := protected(t, validator)

	for _, prefix := range []string{"Bearer", "bearer", "BEARER"} {
		t.Run(prefix, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
			req.Header.Set("Authorization", prefix+" valid-test-token-123")
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "user-1", seen.Subject)
			assert.Equal(t, "jane@example.com", seen.Email)
		})
	}
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	validator := newTestTokenValidator()
	validator.validTokens["no-subject"] = &Principal{}
	handler, _ := protected(t, validator)

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"no scheme", "valid-test-token-123"},
		{"wrong scheme", "Basic dXNlcjpwYXNz"},
		{"empty token", "Bearer "},
		{"extra parts", "Bearer a b"},
		{"unknown token", "Bearer nope"},
		{"empty subject", "Bearer no-subject"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.JSONEq(t, `{"error":"Unauthorized"}`, rec.Body.String())
		})
	}
}

func TestGetPrincipal_Missing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err := GetPrincipal(req)
	assert.ErrorIs(t, err, ErrNoPrincipal)
}

func TestWithPrincipal(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithPrincipal(req.Context(), &Principal{Subject: "abc"}))

	p, err := GetPrincipal(req)
	require.NoError(t, err)
	assert.Equal(t, "abc", p.Subject)
}
