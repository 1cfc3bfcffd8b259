package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaker_GenerateAndParseRole(t *testing.T) {
	maker := NewMaker("test_secret_key_1234567890")

	tests := []struct {
		name string
		role string
	}{
		{name: "admin role", role: "admin"},
		{name: "user role", role: "user"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := maker.Generate(tt.role, 15*time.Minute)
			require.NoError(t, err)
			assert.NotEmpty(t, token)

			role, err := maker.ParseRole(token)
			require.NoError(t, err)
			assert.Equal(t, tt.role, role)
		})
	}
}

func TestMaker_Generate_UnknownRole(t *testing.T) {
	maker := NewMaker("test_secret_key_1234567890")

	_, err := maker.Generate("superuser", 15*time.Minute)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestMaker_ParseRole_InvalidTokens(t *testing.T) {
	maker := NewMaker("test_secret_key_1234567890")

	validToken, err := maker.Generate("user", 15*time.Minute)
	require.NoError(t, err)

	expiredMaker := NewMaker("test_secret_key_1234567890")
	expiredToken, err := expiredMaker.Generate("user", -time.Hour)
	require.NoError(t, err)

	wrongSecret, err := NewMaker("wrong_secret_key").Generate("admin", 15*time.Minute)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty token", token: ""},
		{name: "garbage string", token: "garbage-string"},
		{name: "malformed token", token: "invalid.token.here"},
		{name: "expired token", token: expiredToken},
		{name: "wrong secret key", token: wrongSecret},
		{name: "tampered token", token: validToken + "tampered"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			role, err := maker.ParseRole(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
			assert.Empty(t, role)
		})
	}
}

func TestMaker_UserTokenNeverVerifiesAsAdmin(t *testing.T) {
	maker := NewMaker("test_secret_key_1234567890")

	token, err := maker.Generate("user", 15*time.Minute)
	require.NoError(t, err)

	role, err := maker.ParseRole(token)
	require.NoError(t, err)
	assert.NotEqual(t, "admin", role)
}
