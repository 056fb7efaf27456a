package utils

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func encodedTrust(t *testing.T, device trustedDevice) string {
	t.Helper()
	value := encodeTrustedDevice(device)
	assert.NotEmpty(t, value)
	return value
}

func TestTrustedPhoneMatches(t *testing.T) {
	value := encodedTrust(t, trustedDevice{
		Version:  trustSchemaVersion,
		Phone:    "+970599123456",
		Verified: true,
		IssuedAt: time.Now(),
	})

	assert.True(t, TrustedPhoneMatches(value, "+970599123456"))
	assert.False(t, TrustedPhoneMatches(value, "+970599654321"))
	assert.False(t, TrustedPhoneMatches(value, ""))
}

func TestTrustedPhoneMatches_FailsClosed(t *testing.T) {
	cases := map[string]string{
		"missing cookie":    "",
		"legacy boolean":    "true",
		"bare phone":        "+970599123456",
		"not base64":        "%%%%",
		"not json":          base64.RawURLEncoding.EncodeToString([]byte("hello")),
		"empty json object": base64.RawURLEncoding.EncodeToString([]byte("{}")),
	}

	for name, value := range cases {
		assert.False(t, TrustedPhoneMatches(value, "+970599123456"), name)
	}
}

func TestTrustedPhoneMatches_RejectsUnverifiedPayload(t *testing.T) {
	value := encodedTrust(t, trustedDevice{
		Version:  trustSchemaVersion,
		Phone:    "+970599123456",
		Verified: false,
		IssuedAt: time.Now(),
	})

	assert.False(t, TrustedPhoneMatches(value, "+970599123456"))
}

func TestTrustedPhoneMatches_RejectsUnknownSchemaVersion(t *testing.T) {
	value := encodedTrust(t, trustedDevice{
		Version:  trustSchemaVersion + 1,
		Phone:    "+970599123456",
		Verified: true,
		IssuedAt: time.Now(),
	})

	assert.False(t, TrustedPhoneMatches(value, "+970599123456"))
}
