package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/tidwall/gjson"

	"github.com/jonathan/resume-builder/internal/config"
	"github.com/jonathan/resume-builder/internal/server/middleware"
)

// supabaseAudience is the audience Supabase puts on user access tokens.
const supabaseAudience = "authenticated"

// ErrInvalidToken is returned when an access token cannot be verified.
var ErrInvalidToken = errors.New("invalid access token")

// NewTokenValidator returns a local validator when a JWT secret is configured,
// otherwise one that asks Supabase about every token.
func NewTokenValidator(cfg config.SupabaseConfig) middleware.TokenValidator {
	if cfg.JWTSecret != "" {
		return NewJWTValidator(cfg.JWTSecret)
	}
	return NewRemoteValidator(cfg.URL, cfg.Key)
}

// supabaseClaims are the claims read from a Supabase access token.
type supabaseClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// JWTValidator verifies Supabase HS256 access tokens with the project secret.
type JWTValidator struct {
	secret []byte
}

// NewJWTValidator creates a validator for tokens signed with secret.
func NewJWTValidator(secret string) *JWTValidator {
	return &JWTValidator{secret: []byte(secret)}
}

// ValidateToken checks signature, expiry and audience.
func (v *JWTValidator) ValidateToken(_ context.Context, tokenString string) (*middleware.Principal, error) {
	if tokenString == "" {
		return nil, fmt.Errorf("%w: token string is empty", ErrInvalidToken)
	}

	claims := &supabaseClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	},
		jwt.WithAudience(supabaseAudience),
		jwt.WithExpirationRequired(),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, fmt.Errorf("%w: token expired: %w", ErrInvalidToken, err)
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, fmt.Errorf("%w: invalid token signature: %w", ErrInvalidToken, err)
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, fmt.Errorf("%w: malformed token: %w", ErrInvalidToken, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !token.Valid || claims.Subject == "" {
		return nil, fmt.Errorf("%w: token is not valid", ErrInvalidToken)
	}

	return &middleware.Principal{Subject: claims.Subject, Email: claims.Email}, nil
}

// RemoteValidator asks the Supabase auth API who a token belongs to.
type RemoteValidator struct {
	client *resty.Client
}

// NewRemoteValidator creates a validator for the project at baseURL. apiKey
// is sent as the apikey header.
func NewRemoteValidator(baseURL, apiKey string) *RemoteValidator {
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(10*time.Second).
		SetHeader("apikey", apiKey).
		SetHeader("Accept", "application/json")
	return &RemoteValidator{client: client}
}

// ValidateToken calls GET /auth/v1/user with the token.
func (v *RemoteValidator) ValidateToken(ctx context.Context, tokenString string) (*middleware.Principal, error) {
	if tokenString == "" {
		return nil, fmt.Errorf("%w: token string is empty", ErrInvalidToken)
	}

	resp, err := v.client.R().
		SetContext(ctx).
		SetAuthToken(tokenString).
		Get("/auth/v1/user")
	if err != nil {
		return nil, fmt.Errorf("failed to reach supabase: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("%w: supabase returned %d", ErrInvalidToken, resp.StatusCode())
	}

	body := resp.Body()
	id := gjson.GetBytes(body, "id").String()
	if id == "" {
		return nil, fmt.Errorf("%w: supabase user has no id", ErrInvalidToken)
	}
	return &middleware.Principal{
		Subject: id,
		Email:   gjson.GetBytes(body, "email").String(),
	}, nil
}
