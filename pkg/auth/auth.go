// Package auth provides authentication support for content API requests.
//
//go:generate mockgen -destination=./mocks/auth.go . Authenticator
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

// ErrNoCredentials is returned by NewAuthenticator when neither a token nor
// an API key is available.
var ErrNoCredentials = errors.New("no credentials configured")

// Authenticator defines the interface for applying authentication to HTTP requests.
type Authenticator interface {
	Apply(req *http.Request) error
	Type() Type
}

// BearerAuth sends a fixed API key as a Bearer token.
type BearerAuth struct {
	Token string
}

// TokenSourceAuth takes the token from an oauth2 token source on every
// request, refreshing it when the source supports that.
type TokenSourceAuth struct {
	Source oauth2.TokenSource
}

// Type represents the type of authentication.
type Type string

// Authentication types.
const (
	// BearerAuthType represents a static Bearer token (API key).
	BearerAuthType Type = "bearer"
	// OAuthType represents an OAuth2 access token.
	OAuthType Type = "oauth2"
)

// Apply adds a Bearer token to the Authorization header of the HTTP request.
func (b BearerAuth) Apply(req *http.Request) error {
	req.Header.Set("Authorization", "Bearer "+b.Token)
	return nil
}

// Type returns the authentication type (BearerAuthType).
func (b BearerAuth) Type() Type { return BearerAuthType }

// Apply sets the Authorization header from the current token.
func (t TokenSourceAuth) Apply(req *http.Request) error {
	if t.Source == nil {
		return ErrNoCredentials
	}
	tok, err := t.Source.Token()
	if err != nil {
		return fmt.Errorf("failed to obtain access token: %w", err)
	}
	tok.SetAuthHeader(req)
	return nil
}

// Type returns the authentication type (OAuthType).
func (t TokenSourceAuth) Type() Type { return OAuthType }

// Options are the credential fields an authenticator is built from.
type Options struct {
	APIKey       string
	AccessToken  string
	RefreshToken string
	Expiry       time.Time

	// ClientID and TokenURL enable refreshing an expired access token.
	ClientID string
	TokenURL string
}

// NewAuthenticator prefers an OAuth access token over an API key. The token
// is refreshable only when a refresh token and a token URL are both set.
func NewAuthenticator(ctx context.Context, opts Options) (Authenticator, error) {
	if opts.AccessToken != "" {
		tok := &oauth2.Token{
			AccessToken:  opts.AccessToken,
			RefreshToken: opts.RefreshToken,
			TokenType:    "Bearer",
			Expiry:       opts.Expiry,
		}
		if opts.RefreshToken != "" && opts.TokenURL != "" {
			cfg := &oauth2.Config{
				ClientID: opts.ClientID,
				Endpoint: oauth2.Endpoint{TokenURL: opts.TokenURL},
			}
			return TokenSourceAuth{Source: cfg.TokenSource(ctx, tok)}, nil
		}
		return TokenSourceAuth{Source: oauth2.StaticTokenSource(tok)}, nil
	}
	if opts.APIKey != "" {
		return BearerAuth{Token: opts.APIKey}, nil
	}
	return nil, ErrNoCredentials
}
