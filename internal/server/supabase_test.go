package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-builder/internal/config"
)

const testSecret = "super-secret-jwt-token-with-at-least-32-characters"

func signToken(t *testing.T, secret string, claims jwt.Claims, method jwt.SigningMethod) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func validClaims() *supabaseClaims {
	now := time.Now()
	return &supabaseClaims{
		Email: "jane@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "8d0f7a52-6a7e-4a57-9a4e-1f1f3b1b0c11",
			Audience:  jwt.ClaimStrings{"authenticated"},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}
}

func TestJWTValidator_Valid(t *testing.T) {
	v := NewJWTValidator(testSecret)
	token := signToken(t, testSecret, validClaims(), jwt.SigningMethodHS256)

	p, err := v.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "8d0f7a52-6a7e-4a57-9a4e-1f1f3b1b0c11", p.Subject)
	assert.Equal(t, "jane@example.com", p.Email)
}

func TestJWTValidator_Rejects(t *testing.T) {
	v := NewJWTValidator(testSecret)

	expired := validClaims()
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))

	wrongAudience := validClaims()
	wrongAudience.Audience = jwt.ClaimStrings{"anon"}

	noExpiry := validClaims()
	noExpiry.ExpiresAt = nil

	noSubject := validClaims()
	noSubject.Subject = ""

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not.a.jwt"},
		{"wrong secret", signToken(t, "another-secret-another-secret-12345", validClaims(), jwt.SigningMethodHS256)},
		{"expired", signToken(t, testSecret, expired, jwt.SigningMethodHS256)},
		{"wrong audience", signToken(t, testSecret, wrongAudience, jwt.SigningMethodHS256)},
		{"no expiry", signToken(t, testSecret, noExpiry, jwt.SigningMethodHS256)},
		{"no subject", signToken(t, testSecret, noSubject, jwt.SigningMethodHS256)},
		{"HS512", signToken(t, testSecret, validClaims(), jwt.SigningMethodHS512)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.ValidateToken(context.Background(), tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestRemoteValidator(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/user", r.URL.Path)
		assert.Equal(t, "anon-key", r.Header.Get("apikey"))
		switch r.Header.Get("Authorization") {
		case "Bearer good":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":"user-42","email":"jane@example.com","aud":"authenticated"}`))
		case "Bearer no-id":
			_, _ = w.Write([]byte(`{"email":"jane@example.com"}`))
		default:
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"msg":"invalid JWT"}`))
		}
	}))
	defer srv.Close()

	v := NewRemoteValidator(srv.URL+"/", "anon-key")

	p, err := v.ValidateToken(context.Background(), "good")
	require.NoError(t, err)
	assert.Equal(t, "user-42", p.Subject)
	assert.Equal(t, "jane@example.com", p.Email)

	_, err = v.ValidateToken(context.Background(), "bad")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = v.ValidateToken(context.Background(), "no-id")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = v.ValidateToken(context.Background(), "")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewTokenValidator(t *testing.T) {
	assert.IsType(t, &JWTValidator{}, NewTokenValidator(config.SupabaseConfig{JWTSecret: testSecret, URL: "https://x.supabase.co"}))
	assert.IsType(t, &RemoteValidator{}, NewTokenValidator(config.SupabaseConfig{URL: "https://x.supabase.co", Key: "k"}))
}
