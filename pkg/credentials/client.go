package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/cperrin88/cavern/pkg/auth"
	"github.com/cperrin88/cavern/pkg/model"
)

const (
	// DefaultBaseURL is the content API root.
	DefaultBaseURL = "https://api.itch.io"
	// DefaultUserAgent is sent when none is configured.
	DefaultUserAgent = "cavern/1.0"

	maxResponseBody = 8 << 20
)

// ClientConfig configures the HTTP session.
type ClientConfig struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
	// RateLimit is the number of requests per second; zero disables limiting.
	RateLimit float64
	Burst     int
	// HTTPClient overrides the transport, mainly for tests.
	HTTPClient *http.Client
}

// OAuthConfig enables token refresh for OAuth logins.
type OAuthConfig struct {
	ClientID string
	TokenURL string
}

// Client is the HTTP implementation of Session.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	auth      auth.Authenticator
	limiter   *rate.Limiter
	userAgent string
}

var _ Session = (*Client)(nil)

// NewClient creates a session that authenticates every request with a.
func NewClient(cfg ClientConfig, a auth.Authenticator) (*Client, error) {
	if a == nil {
		return nil, ErrUnauthenticated
	}
	base := cfg.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	u, err := url.Parse(base)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid API base URL %q", base)
	}

	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}
	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}

	return &Client{
		baseURL:   u,
		http:      hc,
		auth:      a,
		limiter:   rate.NewLimiter(limit, burst),
		userAgent: ua,
	}, nil
}

// ClientFactory returns a SessionFactory that builds a Client from stored
// credentials.
func ClientFactory(cfg ClientConfig, oauth OAuthConfig) SessionFactory {
	return func(ctx context.Context, creds Credentials) (Session, error) {
		a, err := auth.NewAuthenticator(ctx, auth.Options{
			APIKey:       creds.APIKey,
			AccessToken:  creds.AccessToken,
			RefreshToken: creds.RefreshToken,
			Expiry:       creds.Expiry,
			ClientID:     oauth.ClientID,
			TokenURL:     oauth.TokenURL,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
		}
		return NewClient(cfg, a)
	}
}

// DownloadUpload returns the URL an upload can be fetched from.
func (c *Client) DownloadUpload(ctx context.Context, uploadID int64) (DownloadURL, error) {
	var out DownloadURL
	err := c.get(ctx, apiPath("uploads", uploadID, "download"), &out)
	return out, err
}

// DownloadUploadWithKey is DownloadUpload for content accessed through a
// download key.
func (c *Client) DownloadUploadWithKey(ctx context.Context, keyID, uploadID int64) (DownloadURL, error) {
	var out DownloadURL
	err := c.get(ctx, apiPath("download-key", keyID, "download", uploadID), &out)
	return out, err
}

type uploadsResponse struct {
	Uploads []*model.Upload `json:"uploads"`
}

// ListUploads lists the uploads of a game.
func (c *Client) ListUploads(ctx context.Context, gameID int64) ([]*model.Upload, error) {
	var out uploadsResponse
	if err := c.get(ctx, apiPath("games", gameID, "uploads"), &out); err != nil {
		return nil, err
	}
	return fillGameID(out.Uploads, gameID), nil
}

// ListUploadsWithKey lists the uploads visible through a download key.
func (c *Client) ListUploadsWithKey(ctx context.Context, keyID, gameID int64) ([]*model.Upload, error) {
	var out uploadsResponse
	if err := c.get(ctx, apiPath("download-key", keyID, "uploads"), &out); err != nil {
		return nil, err
	}
	return fillGameID(out.Uploads, gameID), nil
}

// Me returns the account the credentials belong to.
func (c *Client) Me(ctx context.Context) (User, error) {
	var out struct {
		User User `json:"user"`
	}
	err := c.get(ctx, "me", &out)
	return out.User, err
}

type errorEnvelope struct {
	Errors []string `json:"errors"`
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	endpoint := c.baseURL.JoinPath(path)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	if err := c.auth.Apply(req); err != nil {
		return fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", endpoint.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	var env errorEnvelope
	_ = json.Unmarshal(body, &env)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp.StatusCode, endpoint.Path, env.Errors)
	}
	if len(env.Errors) > 0 {
		return fmt.Errorf("%w: %s: %s", ErrAPI, endpoint.Path, strings.Join(env.Errors, "; "))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", endpoint.Path, err)
	}
	return nil
}

func statusError(code int, path string, msgs []string) error {
	var kind error
	switch code {
	case http.StatusUnauthorized, http.StatusForbidden:
		kind = ErrUnauthenticated
	case http.StatusNotFound:
		kind = ErrNotFound
	default:
		kind = ErrAPI
	}
	detail := http.StatusText(code)
	if len(msgs) > 0 {
		detail = strings.Join(msgs, "; ")
	}
	return fmt.Errorf("%w: %s: HTTP %d: %s", kind, path, code, detail)
}

func apiPath(parts ...any) string {
	segs := make([]string, 0, len(parts))
	for _, p := range parts {
		switch v := p.(type) {
		case int64:
			segs = append(segs, strconv.FormatInt(v, 10))
		case string:
			segs = append(segs, v)
		}
	}
	return strings.Join(segs, "/")
}

func fillGameID(uploads []*model.Upload, gameID int64) []*model.Upload {
	out := make([]*model.Upload, 0, len(uploads))
	for _, u := range uploads {
		if u == nil {
			continue
		}
		if u.GameID == 0 {
			u.GameID = gameID
		}
		out = append(out, u)
	}
	return out
}

// IsUnauthenticated reports whether err means the caller has to log in.
func IsUnauthenticated(err error) bool {
	return errors.Is(err, ErrUnauthenticated)
}
