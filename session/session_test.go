package session_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	apperrors "github.com/yamato758/mikupost/internal/errors"
	"github.com/yamato758/mikupost/kvstore"
	"github.com/yamato758/mikupost/session"
)

// stubKV is an in-memory Upstash-protocol server for session tests.
type stubKV struct {
	mu     sync.Mutex
	values map[string]string
	fail   bool
}

func (s *stubKV) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()

		if s.fail {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/"), "/")
		var result *string
		switch parts[0] {
		case "set":
			s.values[parts[1]] = parts[2]
			ok := "OK"
			result = &ok
		case "get":
			if v, ok := s.values[parts[1]]; ok {
				result = &v
			}
		case "del":
			delete(s.values, parts[1])
			one := "1"
			result = &one
		}
		_ = json.NewEncoder(w).Encode(map[string]*string{"result": result})
	})
}

func newTestStore(t *testing.T) (*session.Store, *stubKV) {
	t.Helper()
	kv := &stubKV{values: map[string]string{}}
	srv := httptest.NewServer(kv.handler())
	t.Cleanup(srv.Close)
	return session.NewStore(kvstore.NewWithEndpoint(srv.URL, "token")), kv
}

func TestCreateSessionID(t *testing.T) {
	id := session.CreateSessionID()
	_, err := uuid.Parse(id)
	require.NoError(t, err)
	require.NotEqual(t, id, session.CreateSessionID())
}

func TestStore_SaveLoadDelete(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	id := session.CreateSessionID()

	require.NoError(t, store.Save(ctx, id, "verifier-1"))

	verifier, found := store.Load(ctx, id)
	require.True(t, found)
	require.Equal(t, "verifier-1", verifier)

	// At-most-once redemption: delete after load, second load misses.
	store.Delete(ctx, id)
	_, found = store.Load(ctx, id)
	require.False(t, found)
}

func TestStore_SaveUnconfigured(t *testing.T) {
	store := session.NewStore(kvstore.NewWithEndpoint("", ""))
	err := store.Save(context.Background(), "id", "verifier")
	require.ErrorIs(t, err, apperrors.ErrStoreUnavailable)
}

func TestStore_SaveTransportFailure(t *testing.T) {
	store, kv := newTestStore(t)
	kv.fail = true
	err := store.Save(context.Background(), "id", "verifier")
	require.ErrorIs(t, err, apperrors.ErrStoreUnavailable)
}

func TestStore_LoadSwallowsTransportFailure(t *testing.T) {
	store, kv := newTestStore(t)
	require.NoError(t, store.Save(context.Background(), "id", "verifier"))

	kv.fail = true
	_, found := store.Load(context.Background(), "id")
	require.False(t, found)
}

func TestFormatState(t *testing.T) {
	require.Equal(t, "mikupost-auth-state:abc", session.FormatState("abc"))
}

func TestParseState(t *testing.T) {
	tests := []struct {
		name  string
		state string
		id    string
		ok    bool
	}{
		{"valid", "mikupost-auth-state:abc-123", "abc-123", true},
		{"id containing colons", "mikupost-auth-state:a:b", "a:b", true},
		{"wrong namespace", "other-namespace:abc", "", false},
		{"missing separator", "mikupost-auth-state", "", false},
		{"empty id", "mikupost-auth-state:", "", false},
		{"empty", "", "", false},
		{"namespace as suffix", "x-mikupost-auth-state:abc", "", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			id, ok := session.ParseState(tc.state)
			require.Equal(t, tc.ok, ok)
			require.Equal(t, tc.id, id)
		})
	}
}
