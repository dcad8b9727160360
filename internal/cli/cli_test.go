package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cperrin88/cavern/internal/logger"
	"github.com/cperrin88/cavern/pkg/config"
	"github.com/cperrin88/cavern/pkg/model"
)

type testEnv struct {
	dir        string
	configPath string
	archives   string
}

func newTestEnv(t *testing.T, apiURL string) *testEnv {
	t.Helper()
	t.Setenv(config.EnvAPIKey, "")
	logger.SetTestOutput(&bytes.Buffer{})
	t.Cleanup(logger.UnsetTestOutput)

	dir := t.TempDir()
	env := &testEnv{
		dir:        dir,
		configPath: filepath.Join(dir, "config.yaml"),
		archives:   filepath.Join(dir, "archives"),
	}

	cfg := config.DefaultConfig()
	cfg.Settings.StateDir = filepath.Join(dir, "state")
	cfg.Settings.ArchivesDir = env.archives
	cfg.Settings.StoreBackend = "json"
	cfg.Settings.TransferAttempts = 1
	cfg.Settings.Platform.OS = "linux"
	cfg.Settings.Platform.Arch = "amd64"
	if apiURL != "" {
		cfg.API.BaseURL = apiURL
	}
	require.NoError(t, cfg.SaveConfig(env.configPath))
	return env
}

func (e *testEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append([]string{"--config", e.configPath, "--quiet"}, args...))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := cmd.ExecuteContext(ctx)
	return out.String(), err
}

func TestVersionCmd(t *testing.T) {
	env := newTestEnv(t, "")
	out, err := env.run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "cavern version "+Version)
}

func TestConfigCmds(t *testing.T) {
	env := newTestEnv(t, "")

	out, err := env.run(t, "config", "path")
	require.NoError(t, err)
	assert.Equal(t, env.configPath, strings.TrimSpace(out))

	_, err = env.run(t, "config", "set", "settings.max_resumes", "7")
	require.NoError(t, err)

	out, err = env.run(t, "config", "get", "settings.max_resumes")
	require.NoError(t, err)
	assert.Equal(t, "7", strings.TrimSpace(out))

	_, err = env.run(t, "config", "set", "settings.log_level", "loud")
	assert.Error(t, err)

	out, err = env.run(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "settings.store_backend")

	_, err = env.run(t, "config", "init")
	assert.Error(t, err, "existing file is not overwritten without --force")
	_, err = env.run(t, "config", "init", "--force")
	require.NoError(t, err)
}

func TestCaveCmds(t *testing.T) {
	env := newTestEnv(t, "")

	out, err := env.run(t, "cave", "add", "3", "--id", "c1", "--title", "Game")
	require.NoError(t, err)
	assert.Equal(t, "c1", strings.TrimSpace(out))

	_, err = env.run(t, "cave", "add", "nope")
	assert.Error(t, err)

	out, err = env.run(t, "cave", "list", "-o", "json")
	require.NoError(t, err)
	var caves []*model.Cave
	require.NoError(t, json.Unmarshal([]byte(out), &caves))
	require.Len(t, caves, 1)
	assert.Equal(t, int64(3), caves[0].GameID)
	assert.Nil(t, caves[0].Uploads)

	out, err = env.run(t, "cave", "show", "c1")
	require.NoError(t, err)
	assert.Contains(t, out, "Uploads:  not fetched")

	_, err = env.run(t, "cave", "inspect", "c1")
	assert.Error(t, err, "nothing selected yet")

	_, err = env.run(t, "cave", "rm", "c1")
	require.NoError(t, err)
	_, err = env.run(t, "cave", "show", "c1")
	assert.Error(t, err)
}

func TestTasksCmd(t *testing.T) {
	env := newTestEnv(t, "")
	out, err := env.run(t, "tasks")
	require.NoError(t, err)
	assert.Contains(t, out, "download")
	assert.Contains(t, out, "find-upload")
	assert.Contains(t, out, "login")
}

func newAPI(t *testing.T) *httptest.Server {
	t.Helper()
	payload := []byte("not really a zip")
	var srv *httptest.Server
	mux := http.NewServeMux()
	authed := func(h http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer k3y" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			h(w, r)
		}
	}
	mux.HandleFunc("GET /me", authed(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"user":{"id":9,"username":"amos"}}`))
	}))
	mux.HandleFunc("GET /games/3/uploads", authed(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"uploads":[{"id":7,"filename":"game.zip"}]}`))
	}))
	mux.HandleFunc("GET /uploads/7/download", authed(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"url":"` + srv.URL + `/files/7"}`))
	}))
	mux.HandleFunc("GET /files/7", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(payload)
	})
	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestDownloadCmd(t *testing.T) {
	srv := newAPI(t)
	env := newTestEnv(t, srv.URL)
	t.Setenv(config.EnvAPIKey, "k3y")

	_, err := env.run(t, "cave", "add", "3", "--id", "c1")
	require.NoError(t, err)

	out, err := env.run(t, "download", "c1", "-o", "json")
	require.NoError(t, err)

	var res struct {
		Task        string `json:"task"`
		Value       string `json:"value"`
		Transitions []struct {
			To     string `json:"to"`
			Reason string `json:"reason"`
		} `json:"transitions"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "download", res.Task)
	assert.Equal(t, filepath.Join(env.archives, "7.zip"), res.Value)
	require.Len(t, res.Transitions, 3)
	assert.Equal(t, "login", res.Transitions[1].To)

	data, err := os.ReadFile(res.Value)
	require.NoError(t, err)
	assert.Equal(t, "not really a zip", string(data))

	out, err = env.run(t, "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "amos")

	_, err = env.run(t, "logout")
	require.NoError(t, err)
	_, err = env.run(t, "whoami")
	assert.Error(t, err)
}

func TestRunCmd_UnknownTask(t *testing.T) {
	env := newTestEnv(t, "")
	_, err := env.run(t, "run", "install", "c1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown task "install"`)
}
