package utils

import (
	"encoding/base64"
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"
)

// TrustCookieName is the device-trust marker cookie. Its value binds the
// browser to one specific phone number; a bare sentinel like "true" must
// never be honored (an earlier format of this cookie had exactly that hole).
const TrustCookieName = "auth-verified"

const trustSchemaVersion = 1

// trustedDevice is the versioned cookie payload. The version field lets a
// future format change migrate old cookies instead of shape-sniffing them.
type trustedDevice struct {
	Version  int       `json:"v"`
	Phone    string    `json:"phone"`
	Verified bool      `json:"verified"`
	IssuedAt time.Time `json:"issued_at"`
}

// DeviceTrust sets and checks the device-trust cookie.
type DeviceTrust struct {
	TTL    time.Duration
	Secure bool
}

// Mark records that this browser completed code verification for phone.
// Overwrites any prior marker, revoking trust for the previous phone.
func (d DeviceTrust) Mark(c *fiber.Ctx, phone string) {
	value := encodeTrustedDevice(trustedDevice{
		Version:  trustSchemaVersion,
		Phone:    phone,
		Verified: true,
		IssuedAt: time.Now(),
	})

	c.Cookie(&fiber.Cookie{
		Name:     TrustCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   int(d.TTL / time.Second),
		Secure:   d.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// IsTrusted reports whether this browser already verified the given phone.
// Missing cookie, undecodable value, wrong schema version, or a different
// phone all resolve to false.
func (d DeviceTrust) IsTrusted(c *fiber.Ctx, phone string) bool {
	return TrustedPhoneMatches(c.Cookies(TrustCookieName), phone)
}

// Clear expires the trust cookie.
func (d DeviceTrust) Clear(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     TrustCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		Secure:   d.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// TrustedPhoneMatches decodes a raw cookie value and checks it against the
// phone attempting to log in. Fails closed on every malformed input.
func TrustedPhoneMatches(cookieValue, phone string) bool {
	if cookieValue == "" || phone == "" {
		return false
	}

	device, err := decodeTrustedDevice(cookieValue)
	if err != nil {
		return false
	}

	if device.Version != trustSchemaVersion || !device.Verified {
		return false
	}

	return device.Phone == phone
}

func encodeTrustedDevice(device trustedDevice) string {
	raw, err := json.Marshal(device)
	if err != nil {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(raw)
}

func decodeTrustedDevice(value string) (trustedDevice, error) {
	raw, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return trustedDevice{}, err
	}

	var device trustedDevice
	if err := json.Unmarshal(raw, &device); err != nil {
		return trustedDevice{}, err
	}

	return device, nil
}
