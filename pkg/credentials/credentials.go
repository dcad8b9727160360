package credentials

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cperrin88/cavern/pkg/fsutil"
)

// FileName is the name of the credentials file inside the state directory.
const FileName = "credentials.yaml"

// Credentials is what a successful login persists.
type Credentials struct {
	APIKey       string    `yaml:"api_key,omitempty"`
	AccessToken  string    `yaml:"access_token,omitempty"`
	RefreshToken string    `yaml:"refresh_token,omitempty"`
	Expiry       time.Time `yaml:"expiry,omitempty"`
	UserID       int64     `yaml:"user_id,omitempty"`
	Username     string    `yaml:"username,omitempty"`
}

// Empty reports whether no secret is present.
func (c Credentials) Empty() bool {
	return c.APIKey == "" && c.AccessToken == ""
}

// LoadFile reads credentials from path. A missing file yields empty
// credentials and no error.
func LoadFile(path string) (Credentials, error) {
	var creds Credentials
	data, err := os.ReadFile(filepath.Clean(path))
	if os.IsNotExist(err) {
		return creds, nil
	}
	if err != nil {
		return creds, fmt.Errorf("failed to read credentials: %w", err)
	}
	if err := yaml.Unmarshal(data, &creds); err != nil {
		return creds, fmt.Errorf("failed to parse credentials: %w", err)
	}
	return creds, nil
}

// SaveFile writes credentials to path with owner-only permissions.
func SaveFile(path string, creds Credentials) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, fsutil.DirModePrivate); err != nil {
		return fmt.Errorf("failed to create credentials directory: %w", err)
	}

	data, err := yaml.Marshal(creds)
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".credentials-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write credentials: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temporary file: %w", err)
	}
	if err := os.Chmod(tmpPath, fsutil.FileModePrivate); err != nil {
		return fmt.Errorf("failed to set credentials permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to move credentials into place: %w", err)
	}
	return nil
}
