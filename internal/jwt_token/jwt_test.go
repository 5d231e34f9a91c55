package jwttoken

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "sbos/pkg/domain-errors"
)

var jwtService = NewJWTService("test-signing-key", "sbos")

func Test_GenerateToken(t *testing.T) {
	token, err := jwtService.GenerateToken("operator", RoleAdmin, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := jwtService.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "operator", claims.Subject)
	assert.Equal(t, RoleAdmin, claims.Role)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func Test_ValidateToken_InvalidToken(t *testing.T) {
	_, err := jwtService.ValidateToken("invalid-token-string")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	assert.Equal(t, "invalid token", dErrors.MessageOf(err))
}

func Test_ValidateToken_ExpiredToken(t *testing.T) {
	token, err := jwtService.GenerateToken("operator", RoleAdmin, -time.Hour)
	require.NoError(t, err)

	_, err = jwtService.ValidateToken(token)
	require.Error(t, err)
	assert.Equal(t, "token has expired", dErrors.MessageOf(err))
}

func Test_ValidateToken_WrongKeyOrIssuer(t *testing.T) {
	other, err := NewJWTService("another-key", "sbos").GenerateToken("operator", RoleAdmin, time.Hour)
	require.NoError(t, err)
	_, err = jwtService.ValidateToken(other)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))

	foreign, err := NewJWTService("test-signing-key", "elsewhere").GenerateToken("operator", RoleAdmin, time.Hour)
	require.NoError(t, err)
	_, err = jwtService.ValidateToken(foreign)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func Test_ValidateAdmin(t *testing.T) {
	admin, err := jwtService.GenerateToken("operator", RoleAdmin, time.Hour)
	require.NoError(t, err)
	subject, err := jwtService.ValidateAdmin(admin)
	require.NoError(t, err)
	assert.Equal(t, "operator", subject)

	viewer, err := jwtService.GenerateToken("intern", "viewer", time.Hour)
	require.NoError(t, err)
	_, err = jwtService.ValidateAdmin(viewer)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))
}
