// Package auth handles OAuth credentials for the remote task service:
// the browser login flow, the stored token, and the token source used to
// authorize requests.
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/natefinch/atomic"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"tasksync/internal/config"
)

// ErrNoClient is returned when oauth_client.json is missing.
var ErrNoClient = errors.New("oauth_client.json not found")

// validateTimeout bounds the refresh made by TokenValid.
const validateTimeout = 10 * time.Second

// LoadOAuthConfig reads the OAuth client credentials from the config dir.
// Both the "installed" and "web" client formats are accepted.
func LoadOAuthConfig(cfg *config.Config) (*oauth2.Config, error) {
	clientJSON, err := os.ReadFile(cfg.OAuthClientPath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoClient
		}
		return nil, fmt.Errorf("failed to read oauth_client.json: %w", err)
	}

	oauthConfig, err := google.ConfigFromJSON(clientJSON, cfg.Auth.Scopes...)
	if err != nil {
		return nil, fmt.Errorf("invalid oauth_client.json: %w", err)
	}
	return oauthConfig, nil
}

// LoadToken reads a stored token.
func LoadToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read token.json: %w", err)
	}
	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("invalid token.json: %w", err)
	}
	return &token, nil
}

// SaveToken writes a token atomically. The file is only readable by the
// current user.
func SaveToken(path string, token *oauth2.Token) error {
	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return err
	}
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return err
	}
	return os.Chmod(path, 0600)
}

// TokenSource returns the source used to authorize remote calls.
//
// A static api.token wins. Otherwise the token stored by login is used and
// refreshed through the OAuth client as needed. When neither is available
// the returned source is nil and requests are sent without credentials.
func TokenSource(ctx context.Context, cfg *config.Config) (oauth2.TokenSource, error) {
	if cfg.API.Token != "" {
		return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.API.Token, TokenType: "Bearer"}), nil
	}
	if !cfg.HasToken() {
		return nil, nil
	}

	token, err := LoadToken(cfg.TokenPath())
	if err != nil {
		return nil, err
	}
	if !cfg.HasOAuthClient() {
		return oauth2.StaticTokenSource(token), nil
	}

	oauthConfig, err := LoadOAuthConfig(cfg)
	if err != nil {
		return nil, err
	}
	return oauthConfig.TokenSource(ctx, token), nil
}

// TokenValid reports whether the stored token can still be used.
// Valid means: parseable, contains a refresh token, and refreshes (or is
// still fresh) against the OAuth client's token endpoint.
func TokenValid(ctx context.Context, cfg *config.Config) bool {
	token, err := LoadToken(cfg.TokenPath())
	if err != nil || token.RefreshToken == "" {
		return false
	}

	oauthConfig, err := LoadOAuthConfig(cfg)
	if err != nil {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, validateTimeout)
	defer cancel()

	_, err = oauthConfig.TokenSource(ctx, token).Token()
	return err == nil
}
