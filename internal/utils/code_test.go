package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateVerificationCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code, err := GenerateVerificationCode()
		require.NoError(t, err)
		require.Len(t, code, 4)
		for _, r := range code {
			require.True(t, r >= '0' && r <= '9', "code %q must be numeric", code)
		}
		seen[code] = true
	}

	// 100 draws from 10k values should not all collapse to one code.
	require.Greater(t, len(seen), 1)
}
