package utils

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndExtractUserID(t *testing.T) {
	svc := NewJWTService("test-secret")
	userID := uuid.New().String()

	token, err := svc.GenerateToken(userID)
	require.NoError(t, err)

	extracted, err := svc.ExtractUserID(token)
	require.NoError(t, err)
	assert.Equal(t, userID, extracted)
}

func TestExtractRejectsWrongSecret(t *testing.T) {
	token, err := NewJWTService("secret-one").GenerateToken(uuid.New().String())
	require.NoError(t, err)

	_, err = NewJWTService("secret-two").ExtractUserID(token)
	assert.Error(t, err)
}
