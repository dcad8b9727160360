package auth_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/cperrin88/cavern/pkg/auth"
)

func TestBearerAuth(t *testing.T) {
	tests := []struct {
		name   string
		token  string
		expect string
	}{
		{
			name:   "valid token",
			token:  "test-token-123",
			expect: "Bearer test-token-123",
		},
		{
			name:   "empty token",
			token:  "",
			expect: "Bearer ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest("GET", "http://example.com", nil)
			bearerAuth := auth.BearerAuth{
				Token: tt.token,
			}

			err := bearerAuth.Apply(req)
			require.NoError(t, err)
			assert.Equal(t, tt.expect, req.Header.Get("Authorization"))
			assert.Equal(t, auth.BearerAuthType, bearerAuth.Type())
		})
	}
}

type failingSource struct{}

func (failingSource) Token() (*oauth2.Token, error) { return nil, errors.New("revoked") }

func TestTokenSourceAuth(t *testing.T) {
	req, _ := http.NewRequest("GET", "http://example.com", nil)
	a := auth.TokenSourceAuth{Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "abc", TokenType: "Bearer"})}

	require.NoError(t, a.Apply(req))
	assert.Equal(t, "Bearer abc", req.Header.Get("Authorization"))
	assert.Equal(t, auth.OAuthType, a.Type())

	err := auth.TokenSourceAuth{Source: failingSource{}}.Apply(req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "revoked")

	assert.ErrorIs(t, auth.TokenSourceAuth{}.Apply(req), auth.ErrNoCredentials)
}

func TestNewAuthenticator(t *testing.T) {
	ctx := context.Background()

	a, err := auth.NewAuthenticator(ctx, auth.Options{APIKey: "key"})
	require.NoError(t, err)
	assert.Equal(t, auth.BearerAuthType, a.Type())

	a, err = auth.NewAuthenticator(ctx, auth.Options{APIKey: "key", AccessToken: "tok"})
	require.NoError(t, err)
	assert.Equal(t, auth.OAuthType, a.Type())

	_, err = auth.NewAuthenticator(ctx, auth.Options{})
	assert.ErrorIs(t, err, auth.ErrNoCredentials)
}

func TestNewAuthenticator_Refresh(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.Form.Get("grant_type"))
		assert.Equal(t, "r1", r.Form.Get("refresh_token"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"fresh","token_type":"Bearer","expires_in":3600}`))
	}))
	defer srv.Close()

	a, err := auth.NewAuthenticator(context.Background(), auth.Options{
		AccessToken:  "stale",
		RefreshToken: "r1",
		Expiry:       time.Now().Add(-time.Hour),
		ClientID:     "cavern",
		TokenURL:     srv.URL,
	})
	require.NoError(t, err)

	req, _ := http.NewRequest("GET", "http://example.com", nil)
	require.NoError(t, a.Apply(req))
	assert.Equal(t, "Bearer fresh", req.Header.Get("Authorization"))
}
