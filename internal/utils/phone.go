package utils

import (
	"strings"
)

// NormalizePhone reduces user-entered phone numbers to a +-prefixed digit
// string. Formatting characters are stripped, "00" international prefixes
// become "+", and numbers written with a local leading zero get the default
// country code. Anything left without a prefix is assumed to already carry
// its country code.
func NormalizePhone(raw, defaultCountryCode string) string {
	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}

	number := digits.String()
	if number == "" {
		return ""
	}

	switch {
	case strings.HasPrefix(strings.TrimSpace(raw), "+"):
		return "+" + number
	case strings.HasPrefix(number, "00"):
		return "+" + strings.TrimPrefix(number, "00")
	case strings.HasPrefix(number, "0"):
		return defaultCountryCode + strings.TrimPrefix(number, "0")
	default:
		return "+" + number
	}
}
