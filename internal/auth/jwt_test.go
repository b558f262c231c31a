package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateToken(t *testing.T) {
	mgr := NewJWTManager("test-secret", "disputeq", "disputeq-ui", time.Hour)

	token, err := mgr.GenerateToken(42, "jdoe", "reviewer")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := mgr.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, 42, claims.UserID)
	assert.Equal(t, "jdoe", claims.UserName)
	assert.Equal(t, "reviewer", claims.Role)
	assert.Equal(t, "disputeq", claims.Issuer)
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	mgr := NewJWTManager("secret-a", "disputeq", "disputeq-ui", time.Hour)
	other := NewJWTManager("secret-b", "disputeq", "disputeq-ui", time.Hour)

	token, err := mgr.GenerateToken(1, "x", "reviewer")
	require.NoError(t, err)

	_, err = other.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	mgr := NewJWTManager("test-secret", "disputeq", "disputeq-ui", -time.Minute)

	token, err := mgr.GenerateToken(1, "x", "reviewer")
	require.NoError(t, err)

	_, err = mgr.ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	mgr := NewJWTManager("test-secret", "disputeq", "disputeq-ui", time.Hour)
	_, err := mgr.ValidateToken("not-a-token")
	assert.Error(t, err)
}
