package testauth

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTestAuthenticator_JWT(t *testing.T) {
	ta, err := NewTestAuthenticator(Config{
		Mode:  AuthModeJWT,
		Email: "a@example.com",
		UID:   "uid-1",
	})
	require.NoError(t, err)

	header := ta.GetAuthHeader()
	require.True(t, strings.HasPrefix(header, "Bearer "))

	identity, err := ta.Verifier().Verify(context.Background(), strings.TrimPrefix(header, "Bearer "))
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", identity.Email)
	assert.Equal(t, "uid-1", identity.UID)
}

func TestNewTestAuthenticator_UsesEnvSecret(t *testing.T) {
	t.Setenv("DEV_JWT_SECRET", "another_dev_secret_that_is_long_enough")

	ta, err := NewDevAuthenticator("a@example.com")
	require.NoError(t, err)

	other, err := NewTestAuthenticator(Config{JWTSecret: DevJWTSecret, Email: "a@example.com"})
	require.NoError(t, err)

	_, err = other.Verifier().Verify(context.Background(), strings.TrimPrefix(ta.GetAuthHeader(), "Bearer "))
	assert.Error(t, err, "tokens signed with a different secret are rejected")
}

func TestAddAuth(t *testing.T) {
	ta, err := NewDevAuthenticator("a@example.com")
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodGet, "http://localhost/events", nil)
	require.NoError(t, err)
	ta.AddAuth(req)
	assert.Equal(t, ta.GetAuthHeader(), req.Header.Get("Authorization"))

	ta.AddAuth(nil)
}

func TestAuthModeNone(t *testing.T) {
	ta, err := NewTestAuthenticator(Config{Mode: AuthModeNone})
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodGet, "http://localhost/events", nil)
	require.NoError(t, err)
	ta.AddAuth(req)

	assert.Empty(t, req.Header.Get("Authorization"))
	assert.Nil(t, ta.Verifier())
}

func TestUnknownMode(t *testing.T) {
	_, err := NewTestAuthenticator(Config{Mode: "apikey"})
	assert.Error(t, err)
}
