package utils

import (
	"testing"
	"time"

	"agency-crm/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	user := models.User{ID: 3, TeamID: 7, Username: "agent.smith", Role: "user"}

	token, err := GenerateAccessToken(user, "test-secret", time.Hour)
	require.NoError(t, err)

	claims, err := ValidateToken(token, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, 3, claims.UserID)
	assert.Equal(t, 7, claims.TeamID)
	assert.Equal(t, "agent.smith", claims.Username)
	assert.Equal(t, "user", claims.Role)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	user := models.User{ID: 3, Username: "agent.smith"}

	token, err := GenerateAccessToken(user, "test-secret", time.Hour)
	require.NoError(t, err)

	_, err = ValidateToken(token, "other-secret")
	assert.Error(t, err)
}

func TestValidateExpiredToken(t *testing.T) {
	user := models.User{ID: 3, Username: "agent.smith"}

	token, err := GenerateAccessToken(user, "test-secret", -time.Minute)
	require.NoError(t, err)

	_, err = ValidateToken(token, "test-secret")
	assert.Error(t, err)
}
