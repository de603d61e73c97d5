package server

import (
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/yamato758/mikupost/pkce"
	"github.com/yamato758/mikupost/session"
	"golang.org/x/oauth2"
)

// AuthorizeHandler starts the OAuth 2.0 authorization code flow with
// PKCE. The verifier is persisted on two independent channels, the
// remote session store and an HTTP-only cookie, so the callback has two
// chances to recover it regardless of which instance serves it.
func (s *Server) AuthorizeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Fail fast on incomplete configuration rather than redirecting
		// the user into a flow that cannot complete.
		if s.config.GetTwitterClientID() == "" || s.config.GetTwitterRedirectURI() == "" {
			writeError(w, http.StatusInternalServerError, ErrorTypeAuth, msgConfigIncomplete)
			return
		}

		pair, err := pkce.GeneratePair()
		if err != nil {
			log.Error().Err(err).Msg("pkce generation failed")
			writeError(w, http.StatusInternalServerError, ErrorTypeAuth, msgAuthFailed)
			return
		}

		sessionID := session.CreateSessionID()

		// Primary channel: remote session store. A failure here is
		// tolerable as long as the cookie channel still carries the
		// verifier.
		saveErr := s.sessions.Save(r.Context(), sessionID, pair.Verifier)
		if saveErr != nil {
			log.Warn().Err(saveErr).Msg("session store save failed, relying on cookie fallback")
		}

		// Secondary channel: fallback cookie, always written so both
		// channels are populated whenever possible.
		s.SetVerifierCookie(w, pair.Verifier)

		authURL := s.oauthConfig().AuthCodeURL(
			session.FormatState(sessionID),
			oauth2.SetAuthURLParam("code_challenge", pair.Challenge),
			oauth2.SetAuthURLParam("code_challenge_method", "S256"),
		)
		http.Redirect(w, r, authURL, http.StatusFound)
	}
}
