package config

type Config interface {
	EnvConfig
	TwitterConfig
	KVConfig
	ImageConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetDataFolder() string
	GetBaseURL() string
	GetEnv() string
}

type TwitterConfig interface {
	GetTwitterClientID() string
	GetTwitterClientSecret() string
	GetTwitterRedirectURI() string
	GetTwitterScopes() []string
	GetTwitterAuthBase() string
	GetTwitterAPIBase() string
}

type KVConfig interface {
	GetKVRestAPIURL() string
	GetKVRestAPIToken() string
}

type ImageConfig interface {
	GetImageAPIKey() string
	GetImageAPIURL() string
}

type mainConfig struct {
	EnvVars
	Twitter
	KV
	Image
}

func New() Config {
	return mainConfig{}
}
