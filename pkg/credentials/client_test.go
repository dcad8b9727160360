package credentials_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/cperrin88/cavern/pkg/auth"
	authmocks "github.com/cperrin88/cavern/pkg/auth/mocks"
	"github.com/cperrin88/cavern/pkg/credentials"
)

func newAPI(t *testing.T, routes map[string]http.HandlerFunc) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	for pattern, h := range routes {
		mux.HandleFunc(pattern, h)
	}
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newClient(t *testing.T, baseURL string) *credentials.Client {
	t.Helper()
	c, err := credentials.NewClient(credentials.ClientConfig{BaseURL: baseURL}, auth.BearerAuth{Token: "key"})
	require.NoError(t, err)
	return c
}

func TestClient_DownloadUpload(t *testing.T) {
	srv := newAPI(t, map[string]http.HandlerFunc{
		"GET /uploads/7/download": func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))
			assert.Equal(t, credentials.DefaultUserAgent, r.Header.Get("User-Agent"))
			_, _ = w.Write([]byte(`{"url":"https://cdn.example.com/7.zip?sig=abc"}`))
		},
		"GET /download-key/99/download/7": func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"url":"https://cdn.example.com/keyed/7.zip"}`))
		},
	})
	c := newClient(t, srv.URL)

	u, err := c.DownloadUpload(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/7.zip?sig=abc", u.URL)

	u, err = c.DownloadUploadWithKey(context.Background(), 99, 7)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/keyed/7.zip", u.URL)
}

func TestClient_ListUploads(t *testing.T) {
	srv := newAPI(t, map[string]http.HandlerFunc{
		"GET /games/3/uploads": func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"uploads":[{"id":7,"filename":"game.zip","platforms":["linux"]},null]}`))
		},
		"GET /download-key/99/uploads": func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"uploads":[{"id":8,"game_id":3,"filename":"paid.zip"}]}`))
		},
	})
	c := newClient(t, srv.URL)

	uploads, err := c.ListUploads(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, uploads, 1)
	assert.Equal(t, int64(7), uploads[0].ID)
	assert.Equal(t, int64(3), uploads[0].GameID)
	assert.Equal(t, []string{"linux"}, uploads[0].Platforms)

	uploads, err = c.ListUploadsWithKey(context.Background(), 99, 3)
	require.NoError(t, err)
	require.Len(t, uploads, 1)
	assert.Equal(t, "paid.zip", uploads[0].Filename)
}

func TestClient_Me(t *testing.T) {
	srv := newAPI(t, map[string]http.HandlerFunc{
		"GET /me": func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"user":{"id":12,"username":"amos"}}`))
		},
	})
	me, err := newClient(t, srv.URL).Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, credentials.User{ID: 12, Username: "amos"}, me)
}

func TestClient_StatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
		detail string
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{"errors":["invalid key"]}`, want: credentials.ErrUnauthenticated, detail: "invalid key"},
		{name: "forbidden", status: http.StatusForbidden, want: credentials.ErrUnauthenticated},
		{name: "not found", status: http.StatusNotFound, want: credentials.ErrNotFound},
		{name: "server error", status: http.StatusBadGateway, want: credentials.ErrAPI, detail: "Bad Gateway"},
		{name: "errors on success", status: http.StatusOK, body: `{"errors":["upload is not downloadable"]}`, want: credentials.ErrAPI, detail: "not downloadable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newAPI(t, map[string]http.HandlerFunc{
				"/": func(w http.ResponseWriter, _ *http.Request) {
					w.WriteHeader(tt.status)
					_, _ = w.Write([]byte(tt.body))
				},
			})
			_, err := newClient(t, srv.URL).DownloadUpload(context.Background(), 1)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.Contains(t, err.Error(), tt.detail)
		})
	}
}

func TestClient_AuthFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	a := authmocks.NewMockAuthenticator(ctrl)
	a.EXPECT().Apply(gomock.Any()).Return(errors.New("token expired"))

	srv := newAPI(t, map[string]http.HandlerFunc{
		"/": func(http.ResponseWriter, *http.Request) { t.Error("request must not be sent") },
	})
	c, err := credentials.NewClient(credentials.ClientConfig{BaseURL: srv.URL}, a)
	require.NoError(t, err)

	_, err = c.Me(context.Background())
	assert.ErrorIs(t, err, credentials.ErrUnauthenticated)
	assert.True(t, credentials.IsUnauthenticated(err))
}

func TestClient_RateLimitHonoursContext(t *testing.T) {
	srv := newAPI(t, map[string]http.HandlerFunc{
		"GET /me": func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"user":{"id":1}}`))
		},
	})
	c, err := credentials.NewClient(credentials.ClientConfig{BaseURL: srv.URL, RateLimit: 0.001, Burst: 1}, auth.BearerAuth{Token: "k"})
	require.NoError(t, err)

	_, err = c.Me(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.Me(ctx)
	assert.Error(t, err)
}

func TestNewClient_Errors(t *testing.T) {
	_, err := credentials.NewClient(credentials.ClientConfig{}, nil)
	assert.ErrorIs(t, err, credentials.ErrUnauthenticated)

	_, err = credentials.NewClient(credentials.ClientConfig{BaseURL: "not a url"}, auth.BearerAuth{})
	assert.Error(t, err)
}

func TestClientFactory(t *testing.T) {
	factory := credentials.ClientFactory(credentials.ClientConfig{BaseURL: "https://api.example.com"}, credentials.OAuthConfig{})

	sess, err := factory(context.Background(), credentials.Credentials{APIKey: "k"})
	require.NoError(t, err)
	assert.NotNil(t, sess)

	_, err = factory(context.Background(), credentials.Credentials{})
	assert.ErrorIs(t, err, credentials.ErrUnauthenticated)
}
