package tokenstore

import "time"

// TokenSet is the credential bundle obtained from the token exchange.
// The application supports exactly one connected account, so a single
// set is stored under a fixed key and overwritten on re-authorization.
type TokenSet struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresAt    int64  `json:"expires_at,omitempty"` // epoch seconds
	TokenType    string `json:"token_type,omitempty"`
}

// Valid reports whether the token set is still usable at the given time.
// A missing expiry means the provider advertised no lifetime; presence of
// an access token is then enough. Performs no network I/O: liveness
// against the provider is a separate, best-effort concern for callers.
func (ts *TokenSet) Valid(now time.Time) bool {
	if ts == nil || ts.AccessToken == "" {
		return false
	}
	if ts.ExpiresAt != 0 {
		return now.Unix() < ts.ExpiresAt
	}
	return true
}
