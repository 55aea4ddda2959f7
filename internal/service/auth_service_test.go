package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionTokenRoundTrip(t *testing.T) {
	auth := NewAuthService("test-secret")

	token, err := auth.GenerateSessionToken("p1")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := auth.ValidateSessionToken(token)
	require.NoError(t, err)
	assert.Equal(t, "p1", claims.PlayerID)
}

func TestValidateRejectsGarbage(t *testing.T) {
	auth := NewAuthService("test-secret")
	_, err := auth.ValidateSessionToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	token, err := NewAuthService("secret-a").GenerateSessionToken("p1")
	require.NoError(t, err)

	_, err = NewAuthService("secret-b").ValidateSessionToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
