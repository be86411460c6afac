package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager_RoundTrip(t *testing.T) {
	m := NewTokenManager("0123456789abcdef0123456789abcdef", time.Hour)
	userID := uuid.New()

	token, err := m.GenerateAccess(userID, RoleAdmin)
	require.NoError(t, err)

	gotID, role, err := m.ParseAccess(token)
	require.NoError(t, err)
	assert.Equal(t, userID, gotID)
	assert.Equal(t, RoleAdmin, role)
}

func TestTokenManager_RejectsForeignSecret(t *testing.T) {
	issuer := NewTokenManager("issuer-secret-issuer-secret-issuer", time.Hour)
	verifier := NewTokenManager("verifier-secret-verifier-secret-xx", time.Hour)

	token, err := issuer.GenerateAccess(uuid.New(), "")
	require.NoError(t, err)

	_, _, err = verifier.ParseAccess(token)
	assert.Error(t, err)
}

func TestTokenManager_RejectsExpired(t *testing.T) {
	m := NewTokenManager("0123456789abcdef0123456789abcdef", -time.Minute)

	token, err := m.GenerateAccess(uuid.New(), "")
	require.NoError(t, err)

	_, _, err = m.ParseAccess(token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestTokenManager_RejectsMissingSubject(t *testing.T) {
	secret := "0123456789abcdef0123456789abcdef"
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"role": "admin",
		"exp":  time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(secret))
	require.NoError(t, err)

	_, _, err = NewTokenManager(secret, time.Hour).ParseAccess(token)
	assert.ErrorIs(t, err, jwt.ErrTokenInvalidClaims)
}
