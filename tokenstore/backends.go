package tokenstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/yamato758/mikupost/kvstore"
)

// tokenKey is the single fixed slot the connected account lives under.
const tokenKey = "twitter_tokens"

const tokensFileName = "tokens.json"

// backend is one persistence strategy for the token slot. Backends are
// tried in order: reads stop at the first hit, writes go to every
// backend for redundancy.
type backend interface {
	Load(ctx context.Context) (*TokenSet, error)
	Save(ctx context.Context, tokens *TokenSet) error
	Delete(ctx context.Context) error
}

// kvBackend stores the serialized token set in the remote KV service.
type kvBackend struct {
	kv *kvstore.Client
}

func (b *kvBackend) Load(ctx context.Context) (*TokenSet, error) {
	raw, found, err := b.kv.Get(ctx, tokenKey)
	if err != nil {
		return nil, fmt.Errorf("kv token load: %w", err)
	}
	if !found {
		return nil, nil
	}
	var tokens TokenSet
	if err := json.Unmarshal([]byte(raw), &tokens); err != nil {
		return nil, fmt.Errorf("kv token decode: %w", err)
	}
	return &tokens, nil
}

func (b *kvBackend) Save(ctx context.Context, tokens *TokenSet) error {
	raw, err := json.Marshal(tokens)
	if err != nil {
		return fmt.Errorf("kv token encode: %w", err)
	}
	// The token slot is never auto-expired; it lives until disconnect.
	if err := b.kv.Set(ctx, tokenKey, string(raw), 0); err != nil {
		return fmt.Errorf("kv token save: %w", err)
	}
	return nil
}

func (b *kvBackend) Delete(ctx context.Context) error {
	if err := b.kv.Del(ctx, tokenKey); err != nil {
		return fmt.Errorf("kv token delete: %w", err)
	}
	return nil
}

// fileBackend stores tokens on the local filesystem. Developer and
// single-instance use only: a horizontally scaled deployment has no
// shared filesystem.
type fileBackend struct {
	dataFolder string
}

func (b *fileBackend) path() string {
	return filepath.Join(b.dataFolder, tokensFileName)
}

func (b *fileBackend) Load(_ context.Context) (*TokenSet, error) {
	raw, err := os.ReadFile(b.path())
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("file token load: %w", err)
	}
	var tokens TokenSet
	if err := json.Unmarshal(raw, &tokens); err != nil {
		return nil, fmt.Errorf("file token decode: %w", err)
	}
	return &tokens, nil
}

func (b *fileBackend) Save(_ context.Context, tokens *TokenSet) error {
	if err := os.MkdirAll(b.dataFolder, 0o700); err != nil {
		return fmt.Errorf("file token save: %w", err)
	}
	raw, err := json.MarshalIndent(tokens, "", "  ")
	if err != nil {
		return fmt.Errorf("file token encode: %w", err)
	}
	if err := os.WriteFile(b.path(), raw, 0o600); err != nil {
		return fmt.Errorf("file token save: %w", err)
	}
	return nil
}

func (b *fileBackend) Delete(_ context.Context) error {
	err := os.Remove(b.path())
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("file token delete: %w", err)
	}
	return nil
}
