package server

import (
	"net/http"
	"net/url"

	"github.com/yamato758/mikupost/session"
	"golang.org/x/oauth2"
)

const (
	// verifierCookieName duplicates the PKCE verifier into the browser as
	// the fallback channel for callback recovery.
	verifierCookieName = "oauth_code_verifier"
)

// User-facing messages carried home on the success/error query parameter.
const (
	msgAuthFailed        = "Authentication failed"
	msgAuthCodeMissing   = "Authorization code could not be obtained"
	msgConfigIncomplete  = "Twitter API configuration is incomplete"
	msgSessionInvalid    = "Authorization session is invalid or has expired, please reconnect"
	msgExchangeFailed    = "Failed to obtain the access token"
	msgProcessingError   = "An error occurred while completing authentication"
	msgConnected         = "Account connected"
	msgDisconnected      = "Account disconnected"
	msgAuthStartRejected = "Could not start authorization, session storage is unavailable"
)

// oauthConfig builds the OAuth2 client configuration for the X endpoints.
// AuthStyleInHeader sends client credentials as HTTP Basic auth on the
// token exchange, which the provider requires for confidential clients.
func (s *Server) oauthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     s.config.GetTwitterClientID(),
		ClientSecret: s.config.GetTwitterClientSecret(),
		RedirectURL:  s.config.GetTwitterRedirectURI(),
		Scopes:       s.config.GetTwitterScopes(),
		Endpoint: oauth2.Endpoint{
			AuthURL:   s.config.GetTwitterAuthBase() + "/authorize",
			TokenURL:  s.config.GetTwitterAPIBase() + "/oauth2/token",
			AuthStyle: oauth2.AuthStyleInHeader,
		},
	}
}

// SetVerifierCookie writes the fallback verifier cookie. The provider
// redirects back cross-site, so production (HTTPS) needs SameSite=None;
// plain HTTP development falls back to Lax since None requires Secure.
func (s *Server) SetVerifierCookie(w http.ResponseWriter, verifier string) {
	isProd := s.env == "PRODUCTION"
	sameSite := http.SameSiteLaxMode
	if isProd {
		sameSite = http.SameSiteNoneMode
	}
	http.SetCookie(w, &http.Cookie{
		Name:     verifierCookieName,
		Value:    verifier,
		Path:     "/",
		HttpOnly: true,
		Secure:   isProd,
		SameSite: sameSite,
		MaxAge:   session.TTLSeconds,
	})
}

// ReadVerifierCookie returns the fallback verifier, if present.
func ReadVerifierCookie(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(verifierCookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}

// ClearVerifierCookie expires the fallback cookie after redemption.
func (s *Server) ClearVerifierCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     verifierCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}

// redirectHomeSuccess sends the browser to the application root with a
// success message for the UI to display.
func (s *Server) redirectHomeSuccess(w http.ResponseWriter, r *http.Request, message string) {
	s.redirectHome(w, r, "success", message)
}

// redirectHomeError sends the browser to the application root with an
// error message. No terminal path in the OAuth dance surfaces a raw 500.
func (s *Server) redirectHomeError(w http.ResponseWriter, r *http.Request, message string) {
	s.redirectHome(w, r, "error", message)
}

func (s *Server) redirectHome(w http.ResponseWriter, r *http.Request, param, message string) {
	target := s.externalBaseURL(r) + "/?" + param + "=" + url.QueryEscape(message)
	http.Redirect(w, r, target, http.StatusFound)
}
