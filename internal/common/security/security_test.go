package security

import (
	"context"
	"testing"
	"time"

	"labelquest/internal/platform/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordHashRoundtrip(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse battery staple", hash)

	assert.True(t, CheckPasswordHash("correct horse battery staple", hash))
	assert.False(t, CheckPasswordHash("wrong password", hash))
}

func TestTokenClaimsRoundtrip(t *testing.T) {
	config.AppConfig = &config.Config{
		JWTKey: []byte("test-secret"),
		JWTExp: time.Hour,
	}
	InitJWT()

	tokenString, err := GenerateToken("user-123", "admin")
	require.NoError(t, err)
	require.NotEmpty(t, tokenString)

	token, err := TokenAuth.Decode(tokenString)
	require.NoError(t, err)
	claims, err := token.AsMap(context.Background())
	require.NoError(t, err)

	userID, err := GetUserIDFromClaims(jwt.MapClaims(claims))
	require.NoError(t, err)
	assert.Equal(t, "user-123", userID)

	role, err := GetUserRoleFromClaims(jwt.MapClaims(claims))
	require.NoError(t, err)
	assert.Equal(t, "admin", role)
}

func TestClaimsHelpersRejectMissingClaims(t *testing.T) {
	_, err := GetUserIDFromClaims(jwt.MapClaims{})
	assert.Error(t, err)

	_, err = GetUserRoleFromClaims(jwt.MapClaims{"role": 42})
	assert.Error(t, err)
}
