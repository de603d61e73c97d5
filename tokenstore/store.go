// Package tokenstore persists the OAuth token set for the single
// connected account. Persistence strategies are an ordered list: the
// remote KV service when configured, then the local filesystem. Reads
// stop at the first backend that yields a value; writes attempt every
// backend and only fail when all of them do.
package tokenstore

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/yamato758/mikupost/internal/config"
	apperrors "github.com/yamato758/mikupost/internal/errors"
	"github.com/yamato758/mikupost/kvstore"
)

type Store struct {
	backends []backend
}

// NewStore builds the backend chain from configuration.
func NewStore(kv *kvstore.Client, cfg config.EnvConfig) *Store {
	var backends []backend
	if kv.Enabled() {
		backends = append(backends, &kvBackend{kv: kv})
	}
	backends = append(backends, &fileBackend{dataFolder: cfg.GetDataFolder()})
	return &Store{backends: backends}
}

// Load returns the stored token set, or nil when no backend has one.
// Backend failures are soft on the read path: a token that cannot be
// read behaves like a token that is not there.
func (s *Store) Load(ctx context.Context) *TokenSet {
	for _, b := range s.backends {
		tokens, err := b.Load(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("token load failed, trying next backend")
			continue
		}
		if tokens != nil {
			return tokens
		}
	}
	return nil
}

// Save writes the token set to every backend, overwriting any prior
// value. Only when every backend rejects the write does it fail, with
// ErrPersistenceFailure: callers must treat that as fatal to the
// authorization flow, since the exchanged code cannot be replayed.
func (s *Store) Save(ctx context.Context, tokens *TokenSet) error {
	saved := false
	for _, b := range s.backends {
		if err := b.Save(ctx, tokens); err != nil {
			log.Error().Err(err).Msg("token save failed")
			continue
		}
		saved = true
	}
	if !saved {
		return apperrors.ErrPersistenceFailure
	}
	return nil
}

// Delete removes the token set from every backend. Best-effort:
// disconnect is a destructive idempotent action, and deleting something
// already gone is a success from the user's perspective.
func (s *Store) Delete(ctx context.Context) {
	for _, b := range s.backends {
		if err := b.Delete(ctx); err != nil {
			log.Warn().Err(err).Msg("token delete failed")
		}
	}
}
