package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthService(t *testing.T) {
	t.Run("Issued token parses back to its subject", func(t *testing.T) {
		// Given: an auth service
		auth, err := NewAuthService("secret", time.Hour)
		require.NoError(t, err)

		// When: a token is issued and parsed
		token, err := auth.GenerateToken("operator-1")
		require.NoError(t, err)

		subject, err := auth.ParseToken(token)

		// Then: the subject survives
		require.NoError(t, err)
		assert.Equal(t, "operator-1", subject)
	})

	t.Run("Token signed with another key is refused", func(t *testing.T) {
		issuer, err := NewAuthService("one", time.Hour)
		require.NoError(t, err)
		checker, err := NewAuthService("two", time.Hour)
		require.NoError(t, err)

		token, err := issuer.GenerateToken("operator-1")
		require.NoError(t, err)

		_, err = checker.ParseToken(token)

		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Expired token is refused", func(t *testing.T) {
		auth, err := NewAuthService("secret", -time.Minute)
		require.NoError(t, err)

		token, err := auth.GenerateToken("operator-1")
		require.NoError(t, err)

		_, err = auth.ParseToken(token)

		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Token without the operator role is refused", func(t *testing.T) {
		auth, err := NewAuthService("secret", time.Hour)
		require.NoError(t, err)

		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub": "someone",
			"exp": time.Now().Add(time.Hour).Unix(),
		}).SignedString([]byte("secret"))
		require.NoError(t, err)

		_, err = auth.ParseToken(token)

		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Garbage is refused", func(t *testing.T) {
		auth, err := NewAuthService("secret", time.Hour)
		require.NoError(t, err)

		_, err = auth.ParseToken("not-a-token")

		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Empty secret", func(t *testing.T) {
		_, err := NewAuthService("", time.Hour)

		require.ErrorIs(t, err, ErrEmptySecret)
	})
}
