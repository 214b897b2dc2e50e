package jwthelper

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParseToken(t *testing.T) {
	key := []byte("test-signing-key")

	token, err := GenerateToken(key, 42, "host", "test-agent/1.0")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ParseToken(key, token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "host", claims.Role)
	assert.Equal(t, "test-agent/1.0", claims.UserAgent)
}

func TestParseToken(t *testing.T) {
	key := []byte("test-signing-key")

	t.Run("wrong key", func(t *testing.T) {
		token, err := GenerateToken([]byte("another-key"), 1, "user", "agent")
		require.NoError(t, err)

		_, err = ParseToken(key, token)

		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := ParseToken(key, "not.a.token")

		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong signing method", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: 1})
		signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = ParseToken(key, signed)

		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
