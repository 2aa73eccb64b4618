package hh

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// OAuthConfig holds the OAuth2 application settings for the recruitment API.
type OAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	AuthURL      string
	TokenURL     string
}

// OAuthClient wraps the authorization-code exchange and token refresh for the
// recruitment API's OAuth2 flow. The poller never calls this; it belongs to
// the credential-supply surface.
type OAuthClient struct {
	cfg oauth2.Config
}

// NewOAuthClient creates an OAuthClient. AuthURL and TokenURL default to the
// hh.ru endpoints.
func NewOAuthClient(cfg OAuthConfig) (*OAuthClient, error) {
	if strings.TrimSpace(cfg.ClientID) == "" || strings.TrimSpace(cfg.ClientSecret) == "" {
		return nil, errors.New("oauth client id and secret are required")
	}
	authURL := cfg.AuthURL
	if authURL == "" {
		authURL = "https://hh.ru/oauth/authorize"
	}
	tokenURL := cfg.TokenURL
	if tokenURL == "" {
		tokenURL = "https://hh.ru/oauth/token"
	}

	return &OAuthClient{
		cfg: oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint: oauth2.Endpoint{
				AuthURL:  authURL,
				TokenURL: tokenURL,
			},
		},
	}, nil
}

// AuthCodeURL builds the URL the user visits to grant access. The state
// nonce must be validated on callback.
func (c *OAuthClient) AuthCodeURL(state string) string {
	return c.cfg.AuthCodeURL(state)
}

// Token is the subset of the OAuth2 token the credential store persists.
type Token struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    *time.Time
}

func fromOAuth2Token(tok *oauth2.Token) *Token {
	out := &Token{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
	}
	if !tok.Expiry.IsZero() {
		expiry := tok.Expiry
		out.ExpiresAt = &expiry
	}
	return out
}

// Exchange swaps an authorization code for tokens.
func (c *OAuthClient) Exchange(ctx context.Context, code string) (*Token, error) {
	tok, err := c.cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}
	return fromOAuth2Token(tok), nil
}

// Refresh obtains a fresh access token from a refresh token.
func (c *OAuthClient) Refresh(ctx context.Context, refreshToken string) (*Token, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return nil, errors.New("refresh token is required")
	}
	src := c.cfg.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	tok, err := src.Token()
	if err != nil {
		return nil, fmt.Errorf("refresh token: %w", err)
	}
	return fromOAuth2Token(tok), nil
}
