package config

// X (Twitter) OAuth 2.0 client settings. The auth and API bases are
// overridable so tests can point the flow at a stub provider.

type Twitter struct{}

var _ TwitterConfig = Twitter{}

func (Twitter) GetTwitterClientID() string {
	return GetEnv("TWITTER_CLIENT_ID", "")
}

func (Twitter) GetTwitterClientSecret() string {
	return GetEnv("TWITTER_CLIENT_SECRET", "")
}

func (Twitter) GetTwitterRedirectURI() string {
	return GetEnv("TWITTER_REDIRECT_URI", "")
}

// GetTwitterScopes returns the scopes requested during authorization.
// media.write is required for the v2 media upload endpoint.
func (Twitter) GetTwitterScopes() []string {
	return []string{
		"tweet.read",
		"tweet.write",
		"users.read",
		"offline.access",
		"media.write",
	}
}

func (Twitter) GetTwitterAuthBase() string {
	return GetEnv("TWITTER_AUTH_BASE", "https://twitter.com/i/oauth2")
}

func (Twitter) GetTwitterAPIBase() string {
	return GetEnv("TWITTER_API_BASE", "https://api.twitter.com/2")
}
