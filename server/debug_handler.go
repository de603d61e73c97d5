package server

import (
	"net/http"

	"github.com/yamato758/mikupost/kvstore"
)

type debugResponse struct {
	Env            string          `json:"env"`
	Config         map[string]bool `json:"config"`
	KVConfigured   bool            `json:"kvConfigured"`
	KVReachable    bool            `json:"kvReachable"`
	TokenStored    bool            `json:"tokenStored"`
	TokenValid     bool            `json:"tokenValid"`
	TokenHasExpiry bool            `json:"tokenHasExpiry"`
}

// DebugHandler reports configuration presence (never values) and store
// reachability. Registered outside production only.
func (s *Server) DebugHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kv := kvstore.New(s.config)

		resp := debugResponse{
			Env: s.env,
			Config: map[string]bool{
				"TWITTER_CLIENT_ID":     s.config.GetTwitterClientID() != "",
				"TWITTER_CLIENT_SECRET": s.config.GetTwitterClientSecret() != "",
				"TWITTER_REDIRECT_URI":  s.config.GetTwitterRedirectURI() != "",
				"KV_REST_API_URL":       s.config.GetKVRestAPIURL() != "",
				"KV_REST_API_TOKEN":     s.config.GetKVRestAPIToken() != "",
				"IMAGE_API_KEY":         s.config.GetImageAPIKey() != "",
				"BASE_URL":              s.config.GetBaseURL() != "",
			},
			KVConfigured: kv.Enabled(),
		}

		if kv.Enabled() {
			// A read of an arbitrary key doubles as a ping.
			_, _, err := kv.Get(r.Context(), "debug:ping")
			resp.KVReachable = err == nil
		}

		if tokens := s.tokens.Load(r.Context()); tokens != nil {
			resp.TokenStored = true
			resp.TokenValid = tokens.Valid(s.nowTime())
			resp.TokenHasExpiry = tokens.ExpiresAt != 0
		}

		writeJSON(w, http.StatusOK, resp)
	}
}
