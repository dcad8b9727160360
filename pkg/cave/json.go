package cave

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cperrin88/cavern/pkg/fsutil"
	"github.com/cperrin88/cavern/pkg/model"
)

const jsonFormatVersion = "1"

type jsonDocument struct {
	FormatVersion string                 `json:"format_version"`
	LastUpdate    time.Time              `json:"last_update"`
	Caves         map[string]*model.Cave `json:"caves"`
}

// JSONStore keeps every cave in a single JSON document. Each write replaces
// the file atomically.
type JSONStore struct {
	path        string
	archivesDir string

	rwMutex sync.RWMutex
	doc     jsonDocument
}

var _ Store = (*JSONStore)(nil)

// NewJSONStore loads the document at path. A missing file is an empty store.
func NewJSONStore(path, archivesDir string) (*JSONStore, error) {
	s := &JSONStore{
		path:        filepath.Clean(path),
		archivesDir: archivesDir,
		doc: jsonDocument{
			FormatVersion: jsonFormatVersion,
			Caves:         make(map[string]*model.Cave),
		},
	}
	if err := s.load(); err != nil {
		return nil, &Error{Store: BackendJSON, Op: "open", Err: err}
	}
	return s, nil
}

func (s *JSONStore) load() error {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read database file: %w", err)
	}

	var doc jsonDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse database file: %w", err)
	}
	if doc.Caves == nil {
		doc.Caves = make(map[string]*model.Cave)
	}
	s.doc = doc
	return nil
}

// flush writes the document through a temporary file and a rename. Callers
// hold the write lock.
func (s *JSONStore) flush() (err error) {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, fsutil.DirModeSecure); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}

	tmpFile, err := os.CreateTemp(dir, "cavern-db-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file in %s: %w", dir, err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpPath)
		}
	}()

	s.doc.LastUpdate = time.Now().UTC()
	data, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		_ = tmpFile.Close()
		return fmt.Errorf("failed to marshal database to JSON: %w", err)
	}
	if _, err := tmpFile.Write(data); err != nil {
		_ = tmpFile.Close()
		return fmt.Errorf("failed to write to temporary file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		_ = tmpFile.Close()
		return fmt.Errorf("failed to sync temporary file to disk: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temporary file: %w", err)
	}
	if err := os.Chmod(tmpPath, fsutil.FileModePrivate); err != nil {
		return fmt.Errorf("failed to set database permissions: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("failed to rename temporary file to %s: %w", s.path, err)
	}
	return nil
}

// Find implements Store.
func (s *JSONStore) Find(ctx context.Context, id string) (*model.Cave, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.rwMutex.RLock()
	defer s.rwMutex.RUnlock()

	c, ok := s.doc.Caves[id]
	if !ok || c == nil {
		return nil, &Error{Store: BackendJSON, Op: "find", ID: id, Err: ErrCaveNotFound}
	}
	return c.Clone(), nil
}

// Save implements Store.
func (s *JSONStore) Save(ctx context.Context, c *model.Cave) error {
	if c == nil || c.ID == "" {
		return &Error{Store: BackendJSON, Op: "save", Err: ErrInvalidCave}
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.rwMutex.Lock()
	defer s.rwMutex.Unlock()

	rec := c.Clone()
	now := time.Now().UTC()
	rec.UpdatedAt = now
	if prev, ok := s.doc.Caves[c.ID]; ok && prev != nil && !prev.CreatedAt.IsZero() {
		rec.CreatedAt = prev.CreatedAt
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}

	old, existed := s.doc.Caves[c.ID]
	s.doc.Caves[c.ID] = rec
	if err := s.flush(); err != nil {
		if existed {
			s.doc.Caves[c.ID] = old
		} else {
			delete(s.doc.Caves, c.ID)
		}
		return &Error{Store: BackendJSON, Op: "save", ID: c.ID, Err: err}
	}
	return nil
}

// Delete implements Store.
func (s *JSONStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.rwMutex.Lock()
	defer s.rwMutex.Unlock()

	old, ok := s.doc.Caves[id]
	if !ok {
		return &Error{Store: BackendJSON, Op: "delete", ID: id, Err: ErrCaveNotFound}
	}
	delete(s.doc.Caves, id)
	if err := s.flush(); err != nil {
		s.doc.Caves[id] = old
		return &Error{Store: BackendJSON, Op: "delete", ID: id, Err: err}
	}
	return nil
}

// List implements Store.
func (s *JSONStore) List(ctx context.Context) ([]*model.Cave, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.rwMutex.RLock()
	defer s.rwMutex.RUnlock()

	caves := make([]*model.Cave, 0, len(s.doc.Caves))
	for _, c := range s.doc.Caves {
		if c != nil {
			caves = append(caves, c.Clone())
		}
	}
	sortCaves(caves)
	return caves, nil
}

// ArchivePath implements Store.
func (s *JSONStore) ArchivePath(upload *model.Upload) string {
	return ArchivePath(s.archivesDir, upload)
}

// Close is a no-op; every write is already on disk.
func (s *JSONStore) Close() error { return nil }
