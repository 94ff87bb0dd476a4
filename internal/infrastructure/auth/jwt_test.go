package auth

import (
	"testing"
	"time"

	"github.com/estudio/backend/internal/infrastructure/config"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(expiration time.Duration) *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:                "test-secret-key-for-jwt-signing-32ch",
		AccessTokenExpiration: expiration,
		Issuer:                "estudio-backend",
	})
}

func TestJWTService(t *testing.T) {
	t.Run("generates and validates a token", func(t *testing.T) {
		svc := newTestService(time.Hour)
		userID := uuid.New()

		token, expiresAt, err := svc.GenerateToken(userID, "mariana")
		require.NoError(t, err)
		require.NotEmpty(t, token)
		assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

		claims, err := svc.ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, userID.String(), claims.UserID)
		assert.Equal(t, "mariana", claims.Username)
		assert.Equal(t, "estudio-backend", claims.Issuer)

		parsed, err := claims.GetUserUUID()
		require.NoError(t, err)
		assert.Equal(t, userID, parsed)
	})

	t.Run("rejects an expired token", func(t *testing.T) {
		svc := newTestService(-time.Minute)

		token, _, err := svc.GenerateToken(uuid.New(), "mariana")
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("rejects a token signed with a different secret", func(t *testing.T) {
		svc := newTestService(time.Hour)
		other := NewJWTService(config.JWTConfig{
			Secret:                "another-secret-key-entirely-32chars!",
			AccessTokenExpiration: time.Hour,
			Issuer:                "estudio-backend",
		})

		token, _, err := other.GenerateToken(uuid.New(), "mariana")
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("rejects garbage input", func(t *testing.T) {
		svc := newTestService(time.Hour)

		_, err := svc.ValidateToken("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
