package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePhone(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want string
	}{
		{"already normalized", "+970599123456", "+970599123456"},
		{"formatting noise", "+970 (599) 123-456", "+970599123456"},
		{"international prefix", "00970599123456", "+970599123456"},
		{"local leading zero", "0599123456", "+970599123456"},
		{"local with spaces", "0599 123 456", "+970599123456"},
		{"bare country code digits", "970599123456", "+970599123456"},
		{"empty", "", ""},
		{"no digits", "abc", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NormalizePhone(tc.raw, "+970"))
		})
	}
}

func TestNormalizePhone_CountryCodeInjected(t *testing.T) {
	assert.Equal(t, "+4915112345678", NormalizePhone("015112345678", "+49"))
}
