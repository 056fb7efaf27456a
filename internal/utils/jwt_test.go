package utils

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	payload := SessionPayload{
		UserID:  uuid.New(),
		Phone:   "+970599123456",
		IsAdmin: true,
	}

	token, err := GenerateToken("secret-a", payload, time.Hour)
	require.NoError(t, err)

	parsed, err := ParseToken("secret-a", token)
	require.NoError(t, err)
	assert.Equal(t, payload, parsed)
}

func TestTokenRejectsForeignSecret(t *testing.T) {
	payload := SessionPayload{UserID: uuid.New(), Phone: "+970599123456"}

	token, err := GenerateToken("secret-a", payload, time.Hour)
	require.NoError(t, err)

	_, err = ParseToken("secret-b", token)
	assert.Error(t, err)
}

func TestTokenRejectsExpired(t *testing.T) {
	payload := SessionPayload{UserID: uuid.New(), Phone: "+970599123456"}

	token, err := GenerateToken("secret-a", payload, -time.Minute)
	require.NoError(t, err)

	_, err = ParseToken("secret-a", token)
	assert.Error(t, err)
}

func TestTokenRejectsMalformed(t *testing.T) {
	for _, tokenString := range []string{"", "garbage", "a.b.c"} {
		_, err := ParseToken("secret-a", tokenString)
		assert.Error(t, err, "token %q must not validate", tokenString)
	}
}
