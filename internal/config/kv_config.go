package config

import "os"

// Remote KV (Upstash-style REST) settings. Both the Vercel KV and the
// Upstash variable names are honoured, Vercel's taking precedence.

type KV struct{}

var _ KVConfig = KV{}

func (KV) GetKVRestAPIURL() string {
	if url := os.Getenv("KV_REST_API_URL"); url != "" {
		return url
	}
	return os.Getenv("UPSTASH_KV_REST_API_URL")
}

func (KV) GetKVRestAPIToken() string {
	if token := os.Getenv("KV_REST_API_TOKEN"); token != "" {
		return token
	}
	return os.Getenv("UPSTASH_KV_REST_API_TOKEN")
}
