package detect

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsValidTokenAddress(t *testing.T) {
	cases := []struct {
		name    string
		address string
		valid   bool
	}{
		{"wrapped sol", "So11111111111111111111111111111111111111112", true},
		{"usdc mint", "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v", true},
		{"empty", "", false},
		{"too short", "abc123", false},
		{"invalid base58 chars", "0OIl0OIl0OIl0OIl0OIl0OIl0OIl0OIl0OIl0OIl0OI", false},
		{"too long", "So111111111111111111111111111111111111111121111111", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.valid, IsValidTokenAddress(tc.address))
		})
	}
}

func TestMustPublicKeyRoundTrip(t *testing.T) {
	address := "So11111111111111111111111111111111111111112"
	require.Equal(t, address, MustPublicKey(address).String())
}
