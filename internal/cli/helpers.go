package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"

	"github.com/cperrin88/cavern/internal/logger"
	"github.com/cperrin88/cavern/pkg/cave"
	"github.com/cperrin88/cavern/pkg/config"
	"github.com/cperrin88/cavern/pkg/credentials"
	"github.com/cperrin88/cavern/pkg/task"
	"github.com/cperrin88/cavern/pkg/tasks"
	"github.com/cperrin88/cavern/pkg/transfer"
)

// These variables will be set by the root command.
var (
	ConfigPath   *string
	Verbose      *bool
	Quiet        *bool
	OutputFormat *string
)

// loadConfig loads the configuration, applies CLI overrides and sets up
// logging accordingly.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(getConfigPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if OutputFormat != nil && *OutputFormat != "" {
		cfg.Settings.OutputFormat = *OutputFormat
	}
	if Verbose != nil && *Verbose {
		cfg.Settings.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger.InitLogger(cfg.Settings.LogLevel, logger.OutputFormat(cfg.Settings.OutputFormat))
	return cfg, nil
}

func getConfigPath() string {
	if ConfigPath != nil && *ConfigPath != "" {
		return *ConfigPath
	}

	defaultPath, err := config.GetDefaultConfigPath()
	if err != nil {
		// An empty path makes LoadConfig and SaveConfig report the problem.
		logger.Warn("Failed to get default config path", logger.Fields{"error": err})
		return ""
	}
	return defaultPath
}

func jsonOutput(cfg *config.Config) bool {
	return cfg.Settings.OutputFormat == string(logger.FormatJSON)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// app bundles the stores and engine a command needs.
type app struct {
	cfg    *config.Config
	caves  cave.Store
	creds  *credentials.Store
	engine *task.Engine
	driver *task.Driver
}

func openCaves(cfg *config.Config) (cave.Store, error) {
	stateDir, err := filepath.Abs(cfg.Settings.StateDir)
	if err != nil {
		return nil, fmt.Errorf("invalid state dir: %w", err)
	}
	archivesDir, err := filepath.Abs(cfg.Settings.ArchivesDir)
	if err != nil {
		return nil, fmt.Errorf("invalid archives dir: %w", err)
	}
	backend := cfg.Settings.StoreBackend
	return cave.Open(backend, cave.DefaultFile(stateDir, backend), archivesDir)
}

func newCredentialStore(cfg *config.Config) *credentials.Store {
	factory := credentials.ClientFactory(
		credentials.ClientConfig{
			BaseURL:   cfg.API.BaseURL,
			Timeout:   cfg.API.Timeout,
			UserAgent: cfg.Settings.UserAgent,
			RateLimit: cfg.API.RateLimit,
			Burst:     cfg.API.Burst,
		},
		credentials.OAuthConfig{
			ClientID: cfg.API.OAuth.ClientID,
			TokenURL: cfg.API.OAuth.TokenURL,
		},
	)
	return credentials.NewStore(filepath.Join(cfg.Settings.StateDir, credentials.FileName), factory)
}

// openApp wires the record store, credential store, transfer client and
// task engine from cfg.
func openApp(ctx context.Context, cfg *config.Config) (*app, error) {
	caves, err := openCaves(cfg)
	if err != nil {
		return nil, err
	}

	creds := newCredentialStore(cfg)
	if err := creds.Load(ctx); err != nil {
		// A broken session is repaired by the login task.
		logger.Warn("Stored credentials unusable", logger.Fields{"error": err})
	}

	xfer := transfer.NewClient(transfer.Config{
		Timeout:     cfg.Settings.HTTPTimeout,
		UserAgent:   cfg.Settings.UserAgent,
		MaxAttempts: cfg.Settings.TransferAttempts,
		Backoff:     cfg.Settings.TransferBackoff,
	})

	reg := task.NewRegistry()
	err = tasks.Register(reg, tasks.Deps{
		Caves:       caves,
		Credentials: creds,
		Transfer:    xfer,
		APIKey:      cfg.API.APIKey,
		Platform:    cfg.TargetPlatform(),
	})
	if err != nil {
		_ = caves.Close()
		return nil, err
	}

	engine, err := task.NewEngine(reg,
		task.WithLogger(logger.GetLogger()),
		task.WithMaxTransitions(cfg.Settings.MaxTransitions))
	if err != nil {
		_ = caves.Close()
		return nil, err
	}

	return &app{
		cfg:    cfg,
		caves:  caves,
		creds:  creds,
		engine: engine,
		driver: task.NewDriver(engine, cfg.Settings.MaxResumes),
	}, nil
}

func (a *app) Close() error {
	return a.caves.Close()
}
