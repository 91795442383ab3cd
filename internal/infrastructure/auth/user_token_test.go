package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orderboard/backend/internal/infrastructure/config"
)

func testUserTokenService() *UserTokenService {
	return NewUserTokenService(config.AuthConfig{
		Secret:          "user-token-secret-for-tests-only!!",
		TokenExpiration: time.Hour,
		Issuer:          "orderboard",
	})
}

func TestUserTokenService_GenerateAndValidate(t *testing.T) {
	svc := testUserTokenService()

	t.Run("round trips a user token", func(t *testing.T) {
		token, expiresAt, err := svc.Generate("42", "ada")
		require.NoError(t, err)
		assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

		claims, err := svc.Validate(token)
		require.NoError(t, err)
		assert.Equal(t, "42", claims.UserID)
		assert.Equal(t, "ada", claims.Username)
		assert.Equal(t, "orderboard", claims.Issuer)
	})

	t.Run("rejects a token signed with another secret", func(t *testing.T) {
		other := NewUserTokenService(config.AuthConfig{
			Secret:          "completely-different-secret-value",
			TokenExpiration: time.Hour,
			Issuer:          "orderboard",
		})

		token, _, err := other.Generate("42", "ada")
		require.NoError(t, err)

		_, err = svc.Validate(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("rejects an expired token", func(t *testing.T) {
		expired := NewUserTokenService(config.AuthConfig{
			Secret:          "user-token-secret-for-tests-only!!",
			TokenExpiration: -time.Minute,
			Issuer:          "orderboard",
		})

		token, _, err := expired.Generate("42", "ada")
		require.NoError(t, err)

		_, err = svc.Validate(token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("rejects a token without a user id", func(t *testing.T) {
		now := time.Now()
		claims := &UserClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    "orderboard",
				ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
				IssuedAt:  jwt.NewNumericDate(now),
			},
		}
		raw := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
		token, err := raw.SignedString([]byte("user-token-secret-for-tests-only!!"))
		require.NoError(t, err)

		_, err = svc.Validate(token)
		assert.ErrorIs(t, err, ErrMissingUserID)
	})
}
