package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestTokenRoundTrip(t *testing.T) {
	customerID := uuid.New()

	token, err := GenerateToken(customerID, "ana@test.com", testSecret, time.Hour)
	require.NoError(t, err)

	claims, err := ValidateToken(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, customerID, claims.CustomerID)
	assert.Equal(t, "ana@test.com", claims.Email)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	token, err := GenerateToken(uuid.New(), "ana@test.com", testSecret, time.Hour)
	require.NoError(t, err)

	_, err = ValidateToken(token, "another-secret")
	require.Error(t, err)
}

func TestValidateToken_Expired(t *testing.T) {
	token, err := GenerateToken(uuid.New(), "ana@test.com", testSecret, -time.Minute)
	require.NoError(t, err)

	_, err = ValidateToken(token, testSecret)
	require.Error(t, err)
}

func TestValidateToken_Garbage(t *testing.T) {
	_, err := ValidateToken("not.a.token", testSecret)
	require.Error(t, err)
}
