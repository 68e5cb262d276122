package auth_test

import (
	"testing"
	"time"

	auth "github.com/ASANIYAN/fin-flow-backend"
	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenServiceGenerate(t *testing.T) {
	signingKey := []byte("test-signing-key")
	issuer := "fin-flow"
	audience := jwt.ClaimStrings{}

	service := auth.NewTokenService(signingKey, 1, issuer, audience, testLogger{})

	identity := testIdentity{id: "user-123", email: "ada@example.com", role: string(auth.RoleBorrower)}

	tokenString, err := service.Generate(identity)
	require.NoError(t, err)
	require.NotEmpty(t, tokenString)

	token, err := jwt.ParseWithClaims(tokenString, &auth.JWTClaims{}, func(token *jwt.Token) (any, error) {
		return signingKey, nil
	})
	require.NoError(t, err)
	require.True(t, token.Valid)

	claims, ok := token.Claims.(*auth.JWTClaims)
	require.True(t, ok)
	assert.Equal(t, "user-123", claims.Subject())
	assert.Equal(t, "user-123", claims.UID)
	assert.Equal(t, string(auth.RoleBorrower), claims.UserRole)
	assert.Equal(t, issuer, claims.Issuer)
	assert.NotEmpty(t, claims.ID)

	expiry := claims.ExpiresAt.Time
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiry, time.Minute)
}

func TestTokenServiceValidate(t *testing.T) {
	signingKey := []byte("test-signing-key")
	issuer := "fin-flow"

	service := auth.NewTokenService(signingKey, 1, issuer, jwt.ClaimStrings{}, testLogger{})

	t.Run("round trips a generated token", func(t *testing.T) {
		identity := testIdentity{id: "user-123", role: string(auth.RoleLender)}

		tokenString, err := service.Generate(identity)
		require.NoError(t, err)

		claims, err := service.Validate(tokenString)
		require.NoError(t, err)
		assert.Equal(t, "user-123", claims.UserID())
		assert.Equal(t, string(auth.RoleLender), claims.Role())
	})

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := service.Validate("not-a-jwt")
		require.Error(t, err)

		var richErr *goerrors.Error
		require.True(t, goerrors.As(err, &richErr))
		assert.Equal(t, auth.ErrTokenMalformed.TextCode, richErr.TextCode)
	})

	t.Run("rejects a token signed with a different key", func(t *testing.T) {
		other := auth.NewTokenService([]byte("different-key"), 1, issuer, jwt.ClaimStrings{}, testLogger{})

		tokenString, err := other.Generate(testIdentity{id: "user-123"})
		require.NoError(t, err)

		_, err = service.Validate(tokenString)
		require.Error(t, err)
	})

	t.Run("rejects an expired token", func(t *testing.T) {
		now := time.Now()
		claims := &auth.JWTClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    issuer,
				Subject:   "user-123",
				IssuedAt:  jwt.NewNumericDate(now.Add(-2 * time.Hour)),
				ExpiresAt: jwt.NewNumericDate(now.Add(-time.Hour)),
			},
			UID: "user-123",
		}

		tokenString, err := service.SignClaims(claims)
		require.NoError(t, err)

		_, err = service.Validate(tokenString)
		require.Error(t, err)
		assert.True(t, auth.IsTokenExpiredError(err))
	})

	t.Run("rejects a wrong issuer", func(t *testing.T) {
		other := auth.NewTokenService(signingKey, 1, "someone-else", jwt.ClaimStrings{}, testLogger{})

		tokenString, err := other.Generate(testIdentity{id: "user-123"})
		require.NoError(t, err)

		_, err = service.Validate(tokenString)
		require.Error(t, err)
	})
}
