package helpers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(accessTTL, refreshTTL time.Duration) *JWTManager {
	return NewJWTManager("access-secret", "refresh-secret", accessTTL, refreshTTL)
}

func TestJWTManager_AccessTokenRoundTrip(t *testing.T) {
	m := newTestManager(time.Minute, time.Hour)

	token, exp, err := m.GenerateAccessToken("user-1", "a@b.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Minute), exp, 5*time.Second)

	claims, err := m.ParseAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "a@b.com", claims.Email)
}

func TestJWTManager_RefreshTokenCarriesVersion(t *testing.T) {
	m := newTestManager(time.Minute, time.Hour)

	token, _, err := m.GenerateRefreshToken("user-1", 3)
	require.NoError(t, err)

	claims, err := m.ParseRefreshToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, 3, claims.TokenVersion)
	assert.Empty(t, claims.Email)
}

func TestJWTManager_SecretsAreIndependent(t *testing.T) {
	m := newTestManager(time.Minute, time.Hour)

	access, _, err := m.GenerateAccessToken("user-1", "a@b.com")
	require.NoError(t, err)
	refresh, _, err := m.GenerateRefreshToken("user-1", 0)
	require.NoError(t, err)

	_, err = m.ParseRefreshToken(access)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = m.ParseAccessToken(refresh)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestJWTManager_ExpiredIsDistinctFromInvalid(t *testing.T) {
	m := newTestManager(-time.Minute, time.Hour)

	token, _, err := m.GenerateAccessToken("user-1", "a@b.com")
	require.NoError(t, err)

	_, err = m.ParseAccessToken(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
	assert.NotErrorIs(t, err, ErrTokenInvalid)
}

func TestJWTManager_TamperedTokenIsInvalid(t *testing.T) {
	m := newTestManager(time.Minute, time.Hour)

	token, _, err := m.GenerateAccessToken("user-1", "a@b.com")
	require.NoError(t, err)

	tampered := token[:len(token)-2] + "xx"
	_, err = m.ParseAccessToken(tampered)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = m.ParseAccessToken("not-a-token")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
