package jwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateAndVerifyToken(t *testing.T) {
	manager := NewManager("test-secret", 15, 1440)

	token, err := manager.GenerateToken("user-1", "alice")
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := manager.VerifyToken(token)
	assert.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "alice", claims.Username)
}

func TestVerifyToken_WrongSecret(t *testing.T) {
	manager := NewManager("test-secret", 15, 1440)
	other := NewManager("other-secret", 15, 1440)

	token, err := manager.GenerateToken("user-1", "alice")
	assert.NoError(t, err)

	_, err = other.VerifyToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyToken_Expired(t *testing.T) {
	manager := NewManager("test-secret", -1, 1440)

	token, err := manager.GenerateToken("user-1", "alice")
	assert.NoError(t, err)

	_, err = manager.VerifyToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestVerifyToken_Garbage(t *testing.T) {
	manager := NewManager("test-secret", 15, 1440)

	_, err := manager.VerifyToken("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
