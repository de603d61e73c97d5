package server

import (
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/yamato758/mikupost/session"
	"github.com/yamato758/mikupost/tokenstore"
	"golang.org/x/oauth2"
)

// CallbackHandler receives the provider's redirect, recovers the PKCE
// verifier, exchanges the authorization code for tokens and persists
// them. Every terminal path redirects home with a success or error
// message; the browser never sees a raw error page mid-flow.
func (s *Server) CallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()

		// Check for authorization errors
		if errParam := query.Get("error"); errParam != "" {
			log.Warn().Str("error", errParam).Str("description", query.Get("error_description")).Msg("provider returned authorization error")
			s.redirectHomeError(w, r, msgAuthFailed)
			return
		}

		code := query.Get("code")
		if code == "" {
			s.redirectHomeError(w, r, msgAuthCodeMissing)
			return
		}

		if s.config.GetTwitterClientID() == "" || s.config.GetTwitterClientSecret() == "" || s.config.GetTwitterRedirectURI() == "" {
			s.redirectHomeError(w, r, msgConfigIncomplete)
			return
		}

		verifier, found := s.recoverVerifier(w, r, query.Get("state"))
		if !found {
			s.redirectHomeError(w, r, msgSessionInvalid)
			return
		}

		token, err := s.oauthConfig().Exchange(
			r.Context(),
			code,
			oauth2.SetAuthURLParam("code_verifier", verifier),
		)
		if err != nil {
			log.Error().Err(err).Msg("token exchange failed")
			s.redirectHomeError(w, r, msgExchangeFailed)
			return
		}

		tokens := &tokenstore.TokenSet{
			AccessToken:  token.AccessToken,
			RefreshToken: token.RefreshToken,
			TokenType:    token.TokenType,
		}
		if tokens.TokenType == "" {
			tokens.TokenType = "bearer"
		}
		// Expiry is only recorded when the provider advertised a lifetime.
		if !token.Expiry.IsZero() {
			tokens.ExpiresAt = token.Expiry.Unix()
		}

		if err := s.tokens.Save(r.Context(), tokens); err != nil {
			// The code was already redeemed at the provider, so this
			// cannot be retried with the same callback URL.
			log.Error().Err(err).Msg("token persistence failed after exchange")
			s.redirectHomeError(w, r, msgProcessingError)
			return
		}

		s.redirectHomeSuccess(w, r, msgConnected)
	}
}

// recoverVerifier tries the two verifier channels in order: the session
// store keyed by the state parameter, then the fallback cookie. Each
// channel is single-use; whichever one answers is consumed.
func (s *Server) recoverVerifier(w http.ResponseWriter, r *http.Request, state string) (string, bool) {
	if sessionID, ok := session.ParseState(state); ok {
		if verifier, found := s.sessions.Load(r.Context(), sessionID); found {
			// Redeemed sessions are deleted before the flow proceeds so a
			// replayed callback URL cannot reuse the verifier.
			s.sessions.Delete(r.Context(), sessionID)
			return verifier, true
		}
	} else if state != "" {
		log.Warn().Str("state", state).Msg("state parameter not in expected format")
	}

	if verifier, found := ReadVerifierCookie(r); found {
		s.ClearVerifierCookie(w)
		return verifier, true
	}
	return "", false
}
