package pkce_test

import (
	"crypto/sha256"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yamato758/mikupost/pkce"
)

func TestGenerateVerifier(t *testing.T) {
	verifier, err := pkce.GenerateVerifier()
	require.NoError(t, err)
	require.Len(t, verifier, 43) // 32 bytes base64url encoded, no padding

	decoded, err := base64.RawURLEncoding.DecodeString(verifier)
	require.NoError(t, err)
	require.Len(t, decoded, 32)
}

func TestGenerateVerifier_Unique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		verifier, err := pkce.GenerateVerifier()
		require.NoError(t, err)
		require.False(t, seen[verifier], "verifier repeated")
		seen[verifier] = true
	}
}

func TestChallenge(t *testing.T) {
	t.Run("matches RFC 7636 appendix B vector", func(t *testing.T) {
		challenge := pkce.Challenge("dBjftJeZ4CVP-mB92K27uhbUJU1p1r_wW1gFWFOEjXk")
		require.Equal(t, "E9Melhoa2OwvFrEMTJguCHaoeK1t8URWbuGJSstw-cM", challenge)
	})

	t.Run("deterministic and matches independent computation", func(t *testing.T) {
		verifier, err := pkce.GenerateVerifier()
		require.NoError(t, err)

		hash := sha256.Sum256([]byte(verifier))
		expected := base64.RawURLEncoding.EncodeToString(hash[:])

		require.Equal(t, expected, pkce.Challenge(verifier))
		require.Equal(t, pkce.Challenge(verifier), pkce.Challenge(verifier))
	})
}

func TestGeneratePair(t *testing.T) {
	pair, err := pkce.GeneratePair()
	require.NoError(t, err)
	require.NotEmpty(t, pair.Verifier)
	require.Equal(t, pkce.Challenge(pair.Verifier), pair.Challenge)
}
