package config

import (
	"strings"
	"time"
)

// HHConfig contains configuration for the external recruitment API client.
type HHConfig struct {
	// BaseURL is the API root.
	BaseURL string `env:"BASE_URL" envDefault:"https://api.hh.ru"`

	// UserAgent is sent on every request; the API rejects anonymous clients.
	UserAgent string `env:"USER_AGENT" envDefault:"autoapply/1.0"`

	Timeout time.Duration `env:"TIMEOUT" envDefault:"30s"`

	// RateLimitCooldown is how long to wait after a 429 before retrying.
	RateLimitCooldown time.Duration `env:"RATE_LIMIT_COOLDOWN" envDefault:"60s"`

	// RateLimitRetries bounds how many 429 retries a single call gets.
	RateLimitRetries int `env:"RATE_LIMIT_RETRIES" envDefault:"5"`

	// OAuth application credentials.
	OAuthClientID     string `env:"OAUTH_CLIENT_ID"`
	OAuthClientSecret string `env:"OAUTH_CLIENT_SECRET"`
	OAuthRedirectURL  string `env:"OAUTH_REDIRECT_URL"`
	OAuthAuthURL      string `env:"OAUTH_AUTH_URL"  envDefault:"https://hh.ru/oauth/authorize"`
	OAuthTokenURL     string `env:"OAUTH_TOKEN_URL" envDefault:"https://hh.ru/oauth/token"`
}

// Sanitize applies guardrails to API client configuration values.
func (h *HHConfig) Sanitize() {
	h.BaseURL = strings.TrimRight(strings.TrimSpace(h.BaseURL), "/")
	if h.Timeout <= 0 {
		h.Timeout = 30 * time.Second
	}
	if h.RateLimitCooldown <= 0 {
		h.RateLimitCooldown = 60 * time.Second
	}
	if h.RateLimitRetries < 0 {
		h.RateLimitRetries = 0
	}
}

// OAuthConfigured reports whether the OAuth application credentials are set.
func (h *HHConfig) OAuthConfigured() bool {
	return h.OAuthClientID != "" && h.OAuthClientSecret != ""
}
