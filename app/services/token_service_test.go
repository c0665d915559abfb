package services

import (
	"testing"
	"time"

	"github.com/Thien222/ManageCustomerInBank-BE/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecretKey = "test-secret-key-that-is-long-enough-123456"

func newTestTokenService(t *testing.T) TokenService {
	t.Helper()
	svc, err := NewTokenService(time.Hour, 24*time.Hour, "test-issuer", "test-audience", false, "", "", testSecretKey)
	require.NoError(t, err)
	return svc
}

func TestNewTokenServiceRequiresSecret(t *testing.T) {
	_, err := NewTokenService(time.Hour, 24*time.Hour, "iss", "aud", false, "", "", "")
	assert.Error(t, err)
}

func TestGenerateAndValidateTokens(t *testing.T) {
	svc := newTestTokenService(t)

	role := models.RoleCreditAdmin
	accessToken, refreshToken, err := svc.GenerateTokens(42, "qttd_01", &role)
	require.NoError(t, err)
	require.NotEmpty(t, accessToken)
	require.NotEmpty(t, refreshToken)
	assert.NotEqual(t, accessToken, refreshToken)

	claims, err := svc.ValidateToken(accessToken)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.AccountID)
	assert.Equal(t, "qttd_01", claims.Username)
	assert.Equal(t, models.RoleCreditAdmin, claims.Role)
	assert.Equal(t, "access", claims.TokenType)
	assert.NotEmpty(t, claims.TokenID)

	refreshClaims, err := svc.ValidateToken(refreshToken)
	require.NoError(t, err)
	assert.Equal(t, "refresh", refreshClaims.TokenType)
	assert.NotEqual(t, claims.TokenID, refreshClaims.TokenID)
}

func TestGenerateTokensWithoutRole(t *testing.T) {
	svc := newTestTokenService(t)

	accessToken, _, err := svc.GenerateTokens(7, "pending_user", nil)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(accessToken)
	require.NoError(t, err)
	assert.Equal(t, models.Role(""), claims.Role)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	svc := newTestTokenService(t)

	_, err := svc.ValidateToken("not-a-jwt")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestValidateTokenRejectsWrongKey(t *testing.T) {
	svc := newTestTokenService(t)
	other, err := NewTokenService(time.Hour, 24*time.Hour, "test-issuer", "test-audience", false, "", "", "another-secret-key-that-is-long-enough")
	require.NoError(t, err)

	accessToken, _, err := other.GenerateTokens(1, "intruder", nil)
	require.NoError(t, err)

	_, err = svc.ValidateToken(accessToken)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestValidateTokenExpired(t *testing.T) {
	svc, err := NewTokenService(-time.Minute, 24*time.Hour, "test-issuer", "test-audience", false, "", "", testSecretKey)
	require.NoError(t, err)

	accessToken, _, err := svc.GenerateTokens(1, "late_user", nil)
	require.NoError(t, err)

	_, err = svc.ValidateToken(accessToken)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestRefreshToken(t *testing.T) {
	svc := newTestTokenService(t)

	role := models.RoleBoardDirector
	accessToken, refreshToken, err := svc.GenerateTokens(9, "gd_01", &role)
	require.NoError(t, err)

	newAccess, newRefresh, err := svc.RefreshToken(refreshToken)
	require.NoError(t, err)
	require.NotEmpty(t, newAccess)
	require.NotEmpty(t, newRefresh)

	claims, err := svc.ValidateToken(newAccess)
	require.NoError(t, err)
	assert.Equal(t, uint(9), claims.AccountID)
	assert.Equal(t, "gd_01", claims.Username)
	assert.Equal(t, models.RoleBoardDirector, claims.Role)

	// Access tokens must not refresh
	_, _, err = svc.RefreshToken(accessToken)
	assert.Error(t, err)
}

func TestRevokeToken(t *testing.T) {
	svc := newTestTokenService(t)

	accessToken, _, err := svc.GenerateTokens(3, "leaver", nil)
	require.NoError(t, err)

	assert.False(t, svc.IsTokenRevoked(accessToken))

	require.NoError(t, svc.RevokeToken(accessToken))
	assert.True(t, svc.IsTokenRevoked(accessToken))

	_, err = svc.ValidateToken(accessToken)
	assert.ErrorIs(t, err, ErrTokenRevoked)

	// Revocation is per token, other tokens stay valid
	otherToken, _, err := svc.GenerateTokens(3, "leaver", nil)
	require.NoError(t, err)
	_, err = svc.ValidateToken(otherToken)
	assert.NoError(t, err)
}

func TestIsTokenRevokedUnparseable(t *testing.T) {
	svc := newTestTokenService(t)
	assert.True(t, svc.IsTokenRevoked("garbage"))
}
