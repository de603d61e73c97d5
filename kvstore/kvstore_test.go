package kvstore_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yamato758/mikupost/kvstore"
)

// fakeKV implements just enough of the Upstash REST protocol for the
// client: GET /get/{key}, /set/{key}/{value}[/ex/{ttl}], /del/{key}.
type fakeKV struct {
	mu       sync.Mutex
	values   map[string]string
	requests []string
	token    string
}

func newFakeKV(token string) *fakeKV {
	return &fakeKV{values: map[string]string{}, token: token}
}

func (f *fakeKV) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if r.Header.Get("Authorization") != "Bearer "+f.token {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	f.requests = append(f.requests, r.URL.Path)

	var result *string
	switch {
	case r.URL.Path == "/get/miku":
		if v, ok := f.values["miku"]; ok {
			result = &v
		}
	case r.URL.Path == "/set/miku/negi/ex/600":
		f.values["miku"] = "negi"
		ok := "OK"
		result = &ok
	case r.URL.Path == "/del/miku":
		delete(f.values, "miku")
		one := "1"
		result = &one
	default:
		w.WriteHeader(http.StatusNotFound)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]*string{"result": result})
}

func TestClient_SetGetDel(t *testing.T) {
	kv := newFakeKV("secret")
	srv := httptest.NewServer(kv)
	defer srv.Close()

	client := kvstore.NewWithEndpoint(srv.URL, "secret")
	ctx := context.Background()

	_, found, err := client.Get(ctx, "miku")
	require.NoError(t, err)
	require.False(t, found)

	require.NoError(t, client.Set(ctx, "miku", "negi", 600))

	value, found, err := client.Get(ctx, "miku")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "negi", value)

	require.NoError(t, client.Del(ctx, "miku"))

	_, found, err = client.Get(ctx, "miku")
	require.NoError(t, err)
	require.False(t, found)
}

func TestClient_BearerAuth(t *testing.T) {
	kv := newFakeKV("secret")
	srv := httptest.NewServer(kv)
	defer srv.Close()

	client := kvstore.NewWithEndpoint(srv.URL, "wrong-token")
	_, _, err := client.Get(context.Background(), "miku")
	require.Error(t, err)
}

func TestClient_Unconfigured(t *testing.T) {
	client := kvstore.NewWithEndpoint("", "")
	require.False(t, client.Enabled())

	_, _, err := client.Get(context.Background(), "miku")
	require.Error(t, err)
	require.Error(t, client.Set(context.Background(), "miku", "negi", 600))
}

func TestClient_EscapesKeysAndValues(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		_ = json.NewEncoder(w).Encode(map[string]string{"result": "OK"})
	}))
	defer srv.Close()

	client := kvstore.NewWithEndpoint(srv.URL, "secret")
	require.NoError(t, client.Set(context.Background(), "session:abc", "a/b c", 0))
	require.Equal(t, "/set/session:abc/a%2Fb%20c", gotPath)
}
