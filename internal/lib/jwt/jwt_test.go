package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestAdminTokenRoundTrip(t *testing.T) {
	token, err := NewAdminToken("operator", testSecret, time.Hour)
	require.NoError(t, err)

	username, err := VerifyAdminToken(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "operator", username)
}

func TestAdminTokenWrongSecret(t *testing.T) {
	token, err := NewAdminToken("operator", testSecret, time.Hour)
	require.NoError(t, err)

	_, err = VerifyAdminToken(token, "other-secret")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAdminTokenExpired(t *testing.T) {
	token, err := NewAdminToken("operator", testSecret, -time.Minute)
	require.NoError(t, err)

	_, err = VerifyAdminToken(token, testSecret)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAdminTokenGarbage(t *testing.T) {
	_, err := VerifyAdminToken("not-a-jwt", testSecret)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
