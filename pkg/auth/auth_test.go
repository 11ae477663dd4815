package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate(t *testing.T) {
	cfg := JWTConfig{SecretKey: "test-secret", Issuer: "socialhub", Audience: []string{"socialhub-api"}}

	gen, err := NewJWTGenerator(cfg, time.Hour)
	require.NoError(t, err)
	val, err := NewJWTValidator(cfg)
	require.NoError(t, err)

	token, err := gen.GenerateToken("user-1", "alice", []string{"member"})
	require.NoError(t, err)

	claims, err := val.ValidateToken("Bearer " + token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "alice", claims.Username)
}

func TestValidateRejects(t *testing.T) {
	val, err := NewJWTValidator(JWTConfig{SecretKey: "right"})
	require.NoError(t, err)

	other, err := NewJWTGenerator(JWTConfig{SecretKey: "wrong"}, time.Hour)
	require.NoError(t, err)
	forged, err := other.GenerateToken("user-1", "", nil)
	require.NoError(t, err)

	_, err = val.ValidateToken(forged)
	assert.ErrorIs(t, err, ErrInvalidSignature)

	expiredGen, err := NewJWTGenerator(JWTConfig{SecretKey: "right"}, -time.Minute)
	require.NoError(t, err)
	expired, err := expiredGen.GenerateToken("user-1", "", nil)
	require.NoError(t, err)

	_, err = val.ValidateToken(expired)
	assert.ErrorIs(t, err, ErrExpiredToken)

	_, err = val.ValidateToken("")
	assert.ErrorIs(t, err, ErrMissingToken)
}

func TestSlidingWindowLimiter(t *testing.T) {
	ctx := context.Background()
	limiter := NewUserRateLimiter(NewSlidingWindowLimiter(2, time.Minute))

	for i := 0; i < 2; i++ {
		ok, err := limiter.Allow(ctx, "u1")
		require.NoError(t, err)
		assert.True(t, ok)
	}

	ok, err := limiter.Allow(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = limiter.Allow(ctx, "u2")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestUserContextRoundTrip(t *testing.T) {
	_, err := GetUserFromContext(context.Background())
	assert.Error(t, err)

	ctx := SetUserInContext(context.Background(), &UserContext{UserID: "u1"})
	user, err := GetUserFromContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, "u1", user.UserID)
}
