// Package pkce implements the Proof Key for Code Exchange pieces of the
// OAuth 2.0 authorization code flow (RFC 7636, S256 method only).
package pkce

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

// verifierLength is the number of random bytes in a code verifier. The
// base64url encoding of 32 bytes is 43 characters, the minimum the RFC
// allows.
const verifierLength = 32

// GenerateVerifier creates a cryptographically random code verifier,
// base64url encoded without padding.
func GenerateVerifier() (string, error) {
	b := make([]byte, verifierLength)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("[GenerateVerifier] rand.Read: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// Challenge derives the S256 code challenge from a verifier:
// base64url(sha256(verifier)) without padding. Deterministic.
func Challenge(verifier string) string {
	hash := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(hash[:])
}

// Pair holds a generated verifier and its derived challenge.
type Pair struct {
	Verifier  string
	Challenge string
}

// GeneratePair generates a fresh verifier/challenge pair for one
// authorization attempt.
func GeneratePair() (*Pair, error) {
	verifier, err := GenerateVerifier()
	if err != nil {
		return nil, err
	}
	return &Pair{Verifier: verifier, Challenge: Challenge(verifier)}, nil
}
