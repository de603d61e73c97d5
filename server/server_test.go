package server_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/yamato758/mikupost/internal/config"
)

// testConfig satisfies config.Config with explicit values so handler
// tests can point the flow at stub endpoints.
type testConfig struct {
	clientID     string
	clientSecret string
	redirectURI  string
	authBase     string
	apiBase      string
	kvURL        string
	kvToken      string
	imageKey     string
	imageURL     string
	baseURL      string
	dataFolder   string
	env          string
}

var _ config.Config = testConfig{}

func (c testConfig) GetPort() string                 { return ":8080" }
func (c testConfig) GetAppName() string              { return "mikupost" }
func (c testConfig) GetDataFolder() string           { return c.dataFolder }
func (c testConfig) GetBaseURL() string              { return c.baseURL }
func (c testConfig) GetEnv() string                  { return c.env }
func (c testConfig) GetTwitterClientID() string      { return c.clientID }
func (c testConfig) GetTwitterClientSecret() string  { return c.clientSecret }
func (c testConfig) GetTwitterRedirectURI() string   { return c.redirectURI }
func (c testConfig) GetTwitterAuthBase() string      { return c.authBase }
func (c testConfig) GetTwitterAPIBase() string       { return c.apiBase }
func (c testConfig) GetKVRestAPIURL() string         { return c.kvURL }
func (c testConfig) GetKVRestAPIToken() string       { return c.kvToken }
func (c testConfig) GetImageAPIKey() string          { return c.imageKey }
func (c testConfig) GetImageAPIURL() string          { return c.imageURL }

func (c testConfig) GetTwitterScopes() []string {
	return []string{"tweet.read", "tweet.write", "users.read", "offline.access", "media.write"}
}

// stubKV serves the Upstash REST protocol over an in-memory map.
type stubKV struct {
	mu     sync.Mutex
	values map[string]string
	fail   bool
}

func newStubKV() *stubKV {
	return &stubKV{values: map[string]string{}}
}

func (s *stubKV) get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok
}

func (s *stubKV) setFail(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail = fail
}

func (s *stubKV) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()

		if s.fail {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		parts := strings.SplitN(strings.TrimPrefix(r.URL.Path, "/"), "/", 3)
		var result *string
		switch parts[0] {
		case "set":
			value := parts[2]
			if idx := strings.LastIndex(value, "/ex/"); idx >= 0 {
				value = value[:idx]
			}
			s.values[parts[1]] = value
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

func newStubKVServer(t interface{ Cleanup(func()) }) (*stubKV, string) {
	kv := newStubKV()
	srv := httptest.NewServer(kv.handler())
	t.Cleanup(srv.Close)
	return kv, srv.URL
}
