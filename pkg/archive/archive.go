// Package archive inspects downloaded upload archives without extracting them.
package archive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/mholt/archives"
)

// ErrUnknownFormat is returned when the file is not a recognized archive.
var ErrUnknownFormat = errors.New("unrecognized archive format")

// Entry describes a single member of an archive.
type Entry struct {
	Path    string      `json:"path"`
	Size    int64       `json:"size"`
	Mode    fs.FileMode `json:"mode"`
	ModTime time.Time   `json:"mod_time"`
	IsDir   bool        `json:"is_dir"`
}

// Summary is the result of Inspect.
type Summary struct {
	Format  string  `json:"format"`
	Files   int     `json:"files"`
	Dirs    int     `json:"dirs"`
	Size    int64   `json:"size"`
	Entries []Entry `json:"entries"`
}

// Identify returns the format of the archive at path, e.g. "zip" or "tar.gz".
func Identify(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open archive: %w", err)
	}
	defer func() { _ = f.Close() }()

	format, _, err := archives.Identify(ctx, filepath.Base(path), f)
	if errors.Is(err, archives.NoMatch) {
		return "", fmt.Errorf("%w: %s", ErrUnknownFormat, filepath.Base(path))
	}
	if err != nil {
		return "", fmt.Errorf("failed to identify %s: %w", filepath.Base(path), err)
	}
	return strings.TrimPrefix(format.Extension(), "."), nil
}

// List walks the archive at path and returns its entries sorted by path.
func List(ctx context.Context, path string) ([]Entry, error) {
	if _, err := Identify(ctx, path); err != nil {
		return nil, err
	}
	fsys, err := archives.FileSystem(ctx, path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive file: %w", err)
	}
	if closer, ok := fsys.(io.Closer); ok {
		defer func() { _ = closer.Close() }()
	}

	var entries []Entry
	err = fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if p == "." {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return fmt.Errorf("failed to get file info for %s: %w", p, err)
		}
		entries = append(entries, Entry{
			Path:    p,
			Size:    info.Size(),
			Mode:    info.Mode(),
			ModTime: info.ModTime(),
			IsDir:   d.IsDir(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk archive: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
	return entries, nil
}

// Inspect identifies and lists the archive at path.
func Inspect(ctx context.Context, path string) (*Summary, error) {
	format, err := Identify(ctx, path)
	if err != nil {
		return nil, err
	}
	entries, err := List(ctx, path)
	if err != nil {
		return nil, err
	}

	s := &Summary{Format: format, Entries: entries}
	for _, e := range entries {
		if e.IsDir {
			s.Dirs++
			continue
		}
		s.Files++
		s.Size += e.Size
	}
	return s, nil
}
