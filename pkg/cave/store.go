// Package cave persists content records ("caves") and derives where a
// downloaded upload is stored on disk.
package cave

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/cperrin88/cavern/pkg/model"
)

// Backend names accepted by Open.
const (
	BackendBolt   = "bolt"
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// ErrCaveNotFound is returned when no record exists for an id.
var ErrCaveNotFound = errors.New("cave not found")

// ErrInvalidCave is returned when saving a record without an id.
var ErrInvalidCave = errors.New("invalid cave")

// ErrUnknownBackend is returned by Open for unsupported backend names.
var ErrUnknownBackend = errors.New("unknown store backend")

// Store is the content record store.
type Store interface {
	// Find returns a copy of the record with the given id.
	Find(ctx context.Context, id string) (*model.Cave, error)
	// Save inserts or replaces a record.
	Save(ctx context.Context, c *model.Cave) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*model.Cave, error)
	// ArchivePath returns the on-disk destination of an upload's archive.
	ArchivePath(upload *model.Upload) string
	Close() error
}

// Error records the store, the failed call and the record involved.
type Error struct {
	Store string
	Op    string
	ID    string
	Err   error
}

func (e *Error) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("cave %s %s: %v", e.Store, e.Op, e.Err)
	}
	return fmt.Sprintf("cave %s %s %s: %v", e.Store, e.Op, e.ID, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Open creates the store selected by backend. path is the database file and
// archivesDir the directory archives are written to.
func Open(backend, path, archivesDir string) (Store, error) {
	if path == "" || archivesDir == "" {
		return nil, fmt.Errorf("store path and archives dir are required")
	}
	cleanPath := filepath.Clean(path)
	if !filepath.IsAbs(cleanPath) {
		return nil, fmt.Errorf("store path must be absolute: %s", path)
	}

	switch backend {
	case BackendBolt, "":
		return NewBoltStore(cleanPath, archivesDir)
	case BackendJSON:
		return NewJSONStore(cleanPath, archivesDir)
	case BackendSQLite:
		return NewSQLiteStore(cleanPath, archivesDir)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, backend)
	}
}

// DefaultFile returns the database file name used for backend inside stateDir.
func DefaultFile(stateDir, backend string) string {
	switch backend {
	case BackendJSON:
		return filepath.Join(stateDir, "caves.json")
	case BackendSQLite:
		return filepath.Join(stateDir, "caves.sqlite")
	}
	return filepath.Join(stateDir, "caves.db")
}

func sortCaves(caves []*model.Cave) {
	sort.Slice(caves, func(i, j int) bool {
		if !caves[i].CreatedAt.Equal(caves[j].CreatedAt) {
			return caves[i].CreatedAt.Before(caves[j].CreatedAt)
		}
		return caves[i].ID < caves[j].ID
	})
}
