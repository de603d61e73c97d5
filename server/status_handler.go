package server

import (
	"net/http"

	"github.com/rs/zerolog/log"
)

type statusResponse struct {
	Connected bool   `json:"connected"`
	Username  string `json:"username,omitempty"`
}

// StatusHandler reports whether an account is connected. The stored
// token decides the answer; the live users/me probe only enriches it
// with a username. A probe failure is expected under provider rate
// limiting and must not deauthorize a structurally valid token.
func (s *Server) StatusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tokens := s.tokens.Load(r.Context())
		if !tokens.Valid(s.nowTime()) {
			writeJSON(w, http.StatusOK, statusResponse{Connected: false})
			return
		}

		username, err := s.twitter.Me(r.Context())
		if err != nil {
			log.Warn().Err(err).Msg("liveness probe failed, reporting connected from stored token")
		}
		writeJSON(w, http.StatusOK, statusResponse{Connected: true, Username: username})
	}
}
