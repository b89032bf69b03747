package jwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	secret := "test-secret"

	token, err := GenerateAccessToken(7, 2, "admin", "ADMIN", secret, 60)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateAccessToken(token, secret)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, uint(2), claims.ClientID)
	assert.Equal(t, "admin", claims.Username)
	assert.Equal(t, "ADMIN", claims.Role)
}

func TestValidateAccessToken_WrongSecret(t *testing.T) {
	token, err := GenerateAccessToken(7, 2, "admin", "ADMIN", "right-secret", 60)
	require.NoError(t, err)

	_, err = ValidateAccessToken(token, "wrong-secret")
	assert.Error(t, err)
}

func TestValidateAccessToken_Expired(t *testing.T) {
	token, err := GenerateAccessToken(7, 2, "admin", "ADMIN", "test-secret", -1)
	require.NoError(t, err)

	_, err = ValidateAccessToken(token, "test-secret")
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestValidateAccessToken_Garbage(t *testing.T) {
	_, err := ValidateAccessToken("not.a.token", "test-secret")
	assert.Error(t, err)
}
