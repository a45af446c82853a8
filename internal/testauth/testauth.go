// Package testauth provides authentication utilities for testing and development.
// This package should NEVER be used in production code.
//
// It mints HS256 bearer tokens accepted by the jwt auth provider, so tests and
// local tooling can act as a given user without a Firebase project.
package testauth

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/RafexStrike/eventment-server/internal/auth"
)

// AuthMode determines how to authenticate requests.
type AuthMode string

const (
	// AuthModeJWT generates JWT tokens using dev secrets
	AuthModeJWT AuthMode = "jwt"
	// AuthModeNone sends no credentials (for testing 401 paths)
	AuthModeNone AuthMode = "none"
)

// DevJWTSecret matches the JWT_SECRET default in .env.example.
const DevJWTSecret = "dev_jwt_secret_change_me_in_production"

// DevJWTIssuer matches the JWT_ISSUER default.
const DevJWTIssuer = "eventment-dev"

// TestAuthenticator adds a bearer token for one user to outgoing requests.
type TestAuthenticator struct {
	mode    AuthMode
	token   string
	manager *auth.JWTManager
}

// Config configures the test authenticator.
type Config struct {
	// Mode determines the authentication method
	Mode AuthMode

	// JWTSecret defaults to DEV_JWT_SECRET or DevJWTSecret
	JWTSecret string

	// JWTIssuer defaults to DevJWTIssuer
	JWTIssuer string

	// Email is the identity the token asserts
	Email string

	// UID defaults to "test-user"
	UID string

	// TTL defaults to 24h
	TTL time.Duration
}

// NewTestAuthenticator creates a new test authenticator with the given config.
func NewTestAuthenticator(cfg Config) (*TestAuthenticator, error) {
	// Apply defaults
	if cfg.Mode == "" {
		cfg.Mode = AuthModeJWT
	}

	switch cfg.Mode {
	case AuthModeJWT:
		secret := cfg.JWTSecret
		if secret == "" {
			secret = os.Getenv("DEV_JWT_SECRET")
		}
		if secret == "" {
			secret = DevJWTSecret
		}

		issuer := cfg.JWTIssuer
		if issuer == "" {
			issuer = DevJWTIssuer
		}

		uid := cfg.UID
		if uid == "" {
			uid = "test-user"
		}

		ttl := cfg.TTL
		if ttl <= 0 {
			ttl = 24 * time.Hour
		}

		manager := auth.NewJWTManager(secret, issuer)
		token, err := manager.Generate(uid, cfg.Email, ttl)
		if err != nil {
			return nil, fmt.Errorf("failed to generate JWT: %w", err)
		}

		return &TestAuthenticator{mode: cfg.Mode, token: token, manager: manager}, nil

	case AuthModeNone:
		return &TestAuthenticator{mode: cfg.Mode}, nil

	default:
		return nil, fmt.Errorf("unknown auth mode: %s", cfg.Mode)
	}
}

// AddAuth adds authentication headers to an HTTP request.
func (ta *TestAuthenticator) AddAuth(req *http.Request) {
	if req == nil {
		return
	}
	if header := ta.GetAuthHeader(); header != "" {
		req.Header.Set("Authorization", header)
	}
}

// GetAuthHeader returns the Authorization header value without modifying the request.
func (ta *TestAuthenticator) GetAuthHeader() string {
	if ta.mode != AuthModeJWT {
		return ""
	}
	return "Bearer " + ta.token
}

// Verifier returns a verifier that accepts the tokens this authenticator mints.
// It is nil in AuthModeNone.
func (ta *TestAuthenticator) Verifier() auth.Verifier {
	if ta.manager == nil {
		return nil
	}
	return ta.manager
}

// NewDevAuthenticator creates a test authenticator for email using dev defaults.
func NewDevAuthenticator(email string) (*TestAuthenticator, error) {
	return NewTestAuthenticator(Config{Mode: AuthModeJWT, Email: email})
}
