// Package config provides configuration management for cavern.
// It handles loading, validating and saving the YAML settings file and
// exposes dotted keys for the config command.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cperrin88/cavern/pkg/errors"
	"github.com/cperrin88/cavern/pkg/fsutil"
	"github.com/cperrin88/cavern/pkg/platform"
)

// EnvAPIKey overrides api.api_key when set.
const EnvAPIKey = "CAVERN_API_KEY"

// Config represents the application configuration.
type Config struct {
	API      APIConfig `yaml:"api"`
	Settings Settings  `yaml:"settings"`

	// fileAPIKey keeps the on-disk key while an environment override is active.
	fileAPIKey  string
	envOverride bool
}

// APIConfig configures the content API session.
type APIConfig struct {
	BaseURL string        `yaml:"base_url" validate:"required,url"`
	Timeout time.Duration `yaml:"timeout" validate:"gte=0"`
	APIKey  string        `yaml:"api_key,omitempty"`
	OAuth   OAuthConfig   `yaml:"oauth,omitempty"`

	// RateLimit is the number of API requests per second; zero disables limiting.
	RateLimit float64 `yaml:"rate_limit" validate:"gte=0"`
	Burst     int     `yaml:"burst" validate:"gte=0"`
}

// OAuthConfig enables token refresh for OAuth logins.
type OAuthConfig struct {
	ClientID string `yaml:"client_id,omitempty"`
	TokenURL string `yaml:"token_url,omitempty" validate:"omitempty,url"`
}

// PlatformConfig represents platform-specific configuration.
type PlatformConfig struct {
	// OS overrides the target operating system (e.g., "windows", "linux", "macos").
	OS string `yaml:"os,omitempty" validate:"omitempty,platform_os"`
	// Arch overrides the target architecture (e.g., "amd64", "arm64", "386").
	Arch string `yaml:"arch,omitempty" validate:"omitempty,platform_arch"`
}

// Settings represents general application settings.
type Settings struct {
	// State settings
	StateDir     string `yaml:"state_dir,omitempty"`
	ArchivesDir  string `yaml:"archives_dir,omitempty"`
	StoreBackend string `yaml:"store_backend" validate:"oneof=bolt json sqlite"`

	// Output settings
	LogLevel     string `yaml:"log_level" validate:"oneof=debug info warn error"`
	OutputFormat string `yaml:"output_format" validate:"oneof=text json"`

	// Network settings
	UserAgent        string        `yaml:"user_agent,omitempty"`
	HTTPTimeout      time.Duration `yaml:"http_timeout" validate:"gte=0"`
	TransferAttempts int           `yaml:"transfer_attempts" validate:"min=1"`
	TransferBackoff  time.Duration `yaml:"transfer_backoff" validate:"gte=0"`

	// Engine settings
	MaxResumes     int `yaml:"max_resumes" validate:"gte=0"`
	MaxTransitions int `yaml:"max_transitions" validate:"gte=0"`

	// Platform settings
	Platform PlatformConfig `yaml:"platform,omitempty"`
}

// Default configuration values.
const (
	// DefaultAPIBaseURL is the content API root.
	DefaultAPIBaseURL = "https://api.itch.io"

	// DefaultHTTPTimeout is the default timeout for API requests.
	DefaultHTTPTimeout = 30 * time.Second

	// DefaultTransferTimeout bounds a single archive transfer.
	DefaultTransferTimeout = 30 * time.Minute

	// DefaultTransferAttempts is the number of tries per transfer.
	DefaultTransferAttempts = 3

	// DefaultTransferBackoff is the base wait between transfer attempts.
	DefaultTransferBackoff = 2 * time.Second

	// DefaultMaxResumes bounds how often a task is re-run after a redirect.
	DefaultMaxResumes = 3

	// DefaultRateLimit is the default number of API requests per second.
	DefaultRateLimit = 10

	// DefaultBurst is the default API request burst.
	DefaultBurst = 5

	// YAMLIndent is the number of spaces to use for YAML indentation.
	YAMLIndent = 2
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	stateDir, err := fsutil.GetDataDir()
	if err != nil {
		stateDir = filepath.Join(os.TempDir(), fsutil.AppName)
	}
	archivesDir, err := fsutil.GetArchivesDir()
	if err != nil {
		archivesDir = filepath.Join(stateDir, "archives")
	}
	current := platform.CurrentPlatform()

	return &Config{
		API: APIConfig{
			BaseURL:   DefaultAPIBaseURL,
			Timeout:   DefaultHTTPTimeout,
			RateLimit: DefaultRateLimit,
			Burst:     DefaultBurst,
		},
		Settings: Settings{
			StateDir:         stateDir,
			ArchivesDir:      archivesDir,
			StoreBackend:     "bolt",
			LogLevel:         "info",
			OutputFormat:     "text",
			HTTPTimeout:      DefaultTransferTimeout,
			TransferAttempts: DefaultTransferAttempts,
			TransferBackoff:  DefaultTransferBackoff,
			MaxResumes:       DefaultMaxResumes,
			Platform: PlatformConfig{
				OS:   current.OS,
				Arch: current.Arch,
			},
		},
	}
}

// LoadConfig loads configuration from a file. A missing file yields the
// defaults. CAVERN_API_KEY is applied on top of either.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, errors.ErrEmptyConfigPath
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrInvalidConfigPath, err)
	}

	file, err := os.Open(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := DefaultConfig()
			cfg.applyEnv()
			return cfg, nil
		}
		return nil, errors.Wrapf(err, "failed to open config file: %s", path)
	}
	defer func() { _ = file.Close() }()

	cfg, err := LoadConfigFromReader(file)
	if err != nil {
		return nil, err
	}
	cfg.applyEnv()
	return cfg, nil
}

// LoadConfigFromReader loads configuration from an io.Reader.
func LoadConfigFromReader(reader io.Reader) (*Config, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config data")
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrConfigParse, err)
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrConfigValidation, err)
	}
	return config, nil
}

// SaveConfig saves configuration to a file. An API key taken from the
// environment is not written.
func (c *Config) SaveConfig(path string) error {
	if path == "" {
		return errors.ErrEmptyConfigPath
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("%w: %w", errors.ErrInvalidConfigPath, err)
	}

	if err := os.MkdirAll(filepath.Dir(absPath), fsutil.DirModeDefault); err != nil {
		return fmt.Errorf("%w: %w", errors.ErrConfigDirectory, err)
	}

	out := *c
	if c.envOverride {
		out.API.APIKey = c.fileAPIKey
	}
	mode := os.FileMode(fsutil.FileModeDefault)
	if out.API.APIKey != "" {
		mode = fsutil.FileModePrivate
	}

	tempPath := absPath + ".tmp"
	file, err := os.OpenFile(tempPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return fmt.Errorf("%w: %w", errors.ErrConfigFileCreate, err)
	}

	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(YAMLIndent)
	if err := encoder.Encode(&out); err != nil {
		_ = file.Close()
		_ = os.Remove(tempPath)
		return fmt.Errorf("%w: %w", errors.ErrConfigEncode, err)
	}
	_ = encoder.Close()
	_ = file.Close()

	if err := os.Rename(tempPath, absPath); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("%w: %w", errors.ErrConfigFileRename, err)
	}
	if err := os.Chmod(absPath, mode); err != nil {
		return fmt.Errorf("%w: %w", errors.ErrConfigFileChmod, err)
	}
	return nil
}

// ToYAML converts the config to YAML bytes.
func (c *Config) ToYAML() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrConfigMarshal, err)
	}
	return data, nil
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(configDir, fsutil.AppName, "config.yaml"), nil
}

// TargetPlatform returns the platform uploads are selected for.
func (c *Config) TargetPlatform() platform.Platform {
	return platform.Platform{
		OS:   platform.NormalizeOS(c.Settings.Platform.OS),
		Arch: platform.NormalizeArch(c.Settings.Platform.Arch),
	}
}

// APIKeyFromEnv reports whether api.api_key came from CAVERN_API_KEY.
func (c *Config) APIKeyFromEnv() bool {
	return c.envOverride
}

func (c *Config) applyEnv() {
	key := os.Getenv(EnvAPIKey)
	if key == "" {
		return
	}
	if !c.envOverride {
		c.fileAPIKey = c.API.APIKey
	}
	c.API.APIKey = key
	c.envOverride = true
}

// applyDefaults fills in values that were explicitly left empty.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()

	if c.API.BaseURL == "" {
		c.API.BaseURL = defaults.API.BaseURL
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = defaults.API.Timeout
	}
	if c.Settings.StateDir == "" {
		c.Settings.StateDir = defaults.Settings.StateDir
	}
	if c.Settings.ArchivesDir == "" {
		c.Settings.ArchivesDir = defaults.Settings.ArchivesDir
	}
	if c.Settings.StoreBackend == "" {
		c.Settings.StoreBackend = defaults.Settings.StoreBackend
	}
	if c.Settings.LogLevel == "" {
		c.Settings.LogLevel = defaults.Settings.LogLevel
	}
	if c.Settings.OutputFormat == "" {
		c.Settings.OutputFormat = defaults.Settings.OutputFormat
	}
	if c.Settings.HTTPTimeout == 0 {
		c.Settings.HTTPTimeout = defaults.Settings.HTTPTimeout
	}
	if c.Settings.TransferAttempts == 0 {
		c.Settings.TransferAttempts = defaults.Settings.TransferAttempts
	}
	if c.Settings.Platform.OS == "" {
		c.Settings.Platform.OS = defaults.Settings.Platform.OS
	}
	if c.Settings.Platform.Arch == "" {
		c.Settings.Platform.Arch = defaults.Settings.Platform.Arch
	}
}
