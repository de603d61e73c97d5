// Package session persists the short-lived mapping from an authorization
// session id to its PKCE code verifier. The remote KV service is the
// primary channel; callers layer a cookie fallback on top when a write
// fails. Sessions are single-use and expire on their own after the TTL.
package session

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	apperrors "github.com/yamato758/mikupost/internal/errors"
	"github.com/yamato758/mikupost/kvstore"
)

const (
	keyPrefix = "session:"

	// TTLSeconds bounds how long an unredeemed authorization attempt
	// stays redeemable. Also used for the cookie fallback lifetime.
	TTLSeconds = 600

	// StateNamespace tags the OAuth state parameter so the callback can
	// recognise values this application minted.
	StateNamespace = "mikupost-auth-state"
)

type Store struct {
	kv *kvstore.Client
}

func NewStore(kv *kvstore.Client) *Store {
	return &Store{kv: kv}
}

// CreateSessionID returns a globally unique session identifier.
func CreateSessionID() string {
	return uuid.NewString()
}

// Save writes the verifier under the session key with the standard TTL.
// An unconfigured or unreachable KV service returns ErrStoreUnavailable
// rather than silently succeeding, so the caller knows to rely on the
// cookie fallback.
func (s *Store) Save(ctx context.Context, sessionID, verifier string) error {
	if !s.kv.Enabled() {
		return apperrors.ErrStoreUnavailable
	}
	if err := s.kv.Set(ctx, keyPrefix+sessionID, verifier, TTLSeconds); err != nil {
		log.Warn().Err(err).Msg("session save failed")
		return fmt.Errorf("%w: %s", apperrors.ErrStoreUnavailable, err)
	}
	return nil
}

// Load returns the verifier for a session. Absence, expiry and transport
// failure are indistinguishable to the caller: a missing verifier is
// handled the same way regardless of cause.
func (s *Store) Load(ctx context.Context, sessionID string) (string, bool) {
	if !s.kv.Enabled() {
		return "", false
	}
	verifier, found, err := s.kv.Get(ctx, keyPrefix+sessionID)
	if err != nil {
		log.Warn().Err(err).Msg("session load failed")
		return "", false
	}
	return verifier, found
}

// Delete removes a session. Best-effort: a session that outlives its
// redemption expires via its TTL, so failure here is only a hygiene issue.
func (s *Store) Delete(ctx context.Context, sessionID string) {
	if !s.kv.Enabled() {
		return
	}
	if err := s.kv.Del(ctx, keyPrefix+sessionID); err != nil {
		log.Warn().Err(err).Msg("session delete failed")
	}
}

// FormatState builds the OAuth state parameter carrying the session id.
func FormatState(sessionID string) string {
	return StateNamespace + ":" + sessionID
}

// ParseState extracts the session id from a state parameter. Anything not
// matching "<namespace>:<id>" exactly is rejected.
func ParseState(state string) (string, bool) {
	namespace, sessionID, found := strings.Cut(state, ":")
	if !found || namespace != StateNamespace || sessionID == "" {
		return "", false
	}
	return sessionID, true
}
