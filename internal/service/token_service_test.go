package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/faculty-realloc-api/internal/models"
	appErrors "github.com/noah-isme/faculty-realloc-api/pkg/errors"
)

func TestTokenServiceRoundTrip(t *testing.T) {
	svc := NewTokenService(TokenConfig{Secret: "secret", Issuer: "realloc", Expiry: time.Minute}, nil)

	token, expiresAt, err := svc.IssueToken("user-1", models.RoleHOD)
	require.NoError(t, err)
	assert.True(t, expiresAt.After(time.Now()))

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, models.RoleHOD, claims.Role)
}

func TestTokenServiceRejectsExpiredAndForeignTokens(t *testing.T) {
	svc := NewTokenService(TokenConfig{Secret: "secret", Issuer: "realloc", Expiry: time.Minute}, nil)
	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, _, err := svc.IssueToken("user-1", models.RoleAdmin)
	require.NoError(t, err)
	svc.now = time.Now

	_, err = svc.ValidateToken(expired)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrUnauthorized))

	other := NewTokenService(TokenConfig{Secret: "other", Issuer: "realloc"}, nil)
	foreign, _, err := other.IssueToken("user-1", models.RoleAdmin)
	require.NoError(t, err)
	_, err = svc.ValidateToken(foreign)
	assert.Error(t, err)
}

func TestTokenServiceRejectsUnknownRoleAndAlgorithm(t *testing.T) {
	svc := NewTokenService(TokenConfig{Secret: "secret"}, nil)

	raw := jwt.NewWithClaims(jwt.SigningMethodHS256, &models.JWTClaims{
		UserID: "u", Role: "STUDENT",
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute))},
	})
	signed, err := raw.SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = svc.ValidateToken(signed)
	assert.Error(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, &models.JWTClaims{UserID: "u", Role: models.RoleAdmin})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = svc.ValidateToken(unsigned)
	assert.Error(t, err)

	_, _, err = svc.IssueToken("", models.RoleAdmin)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}
