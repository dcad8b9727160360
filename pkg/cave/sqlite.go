package cave

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/cperrin88/cavern/pkg/fsutil"
	"github.com/cperrin88/cavern/pkg/model"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS caves (
	id         TEXT PRIMARY KEY,
	game_id    INTEGER NOT NULL,
	data       TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
)`

// SQLiteStore keeps caves in a single SQLite table, the record itself
// encoded as JSON next to a few indexed columns.
type SQLiteStore struct {
	db          *sql.DB
	archivesDir string
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens (or creates) the database at path.
func NewSQLiteStore(path, archivesDir string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), fsutil.DirModeSecure); err != nil {
		return nil, &Error{Store: BackendSQLite, Op: "open", Err: err}
	}
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=1000")
	if err != nil {
		return nil, &Error{Store: BackendSQLite, Op: "open", Err: err}
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, &Error{Store: BackendSQLite, Op: "open", Err: err}
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, &Error{Store: BackendSQLite, Op: "open", Err: fmt.Errorf("init schema: %w", err)}
	}
	_ = os.Chmod(path, fsutil.FileModePrivate)
	return &SQLiteStore{db: db, archivesDir: archivesDir}, nil
}

// Find implements Store.
func (s *SQLiteStore) Find(ctx context.Context, id string) (*model.Cave, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM caves WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &Error{Store: BackendSQLite, Op: "find", ID: id, Err: ErrCaveNotFound}
	}
	if err != nil {
		return nil, &Error{Store: BackendSQLite, Op: "find", ID: id, Err: err}
	}

	c := &model.Cave{}
	if err := json.Unmarshal([]byte(data), c); err != nil {
		return nil, &Error{Store: BackendSQLite, Op: "find", ID: id, Err: fmt.Errorf("decode: %w", err)}
	}
	return c, nil
}

// Save implements Store. CreatedAt is kept from an existing record.
func (s *SQLiteStore) Save(ctx context.Context, c *model.Cave) error {
	if c == nil || c.ID == "" {
		return &Error{Store: BackendSQLite, Op: "save", Err: ErrInvalidCave}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &Error{Store: BackendSQLite, Op: "save", ID: c.ID, Err: err}
	}
	defer func() { _ = tx.Rollback() }()

	rec := c.Clone()
	now := time.Now().UTC()
	rec.UpdatedAt = now

	var created time.Time
	err = tx.QueryRowContext(ctx, `SELECT created_at FROM caves WHERE id = ?`, c.ID).Scan(&created)
	switch {
	case err == nil:
		rec.CreatedAt = created.UTC()
	case !errors.Is(err, sql.ErrNoRows):
		return &Error{Store: BackendSQLite, Op: "save", ID: c.ID, Err: err}
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}

	p, err := json.Marshal(rec)
	if err != nil {
		return &Error{Store: BackendSQLite, Op: "save", ID: c.ID, Err: fmt.Errorf("encode: %w", err)}
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO caves (id, game_id, data, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			game_id = excluded.game_id,
			data = excluded.data,
			updated_at = excluded.updated_at`,
		rec.ID, rec.GameID, string(p), rec.CreatedAt, rec.UpdatedAt); err != nil {
		return &Error{Store: BackendSQLite, Op: "save", ID: c.ID, Err: err}
	}
	if err := tx.Commit(); err != nil {
		return &Error{Store: BackendSQLite, Op: "save", ID: c.ID, Err: err}
	}
	return nil
}

// Delete implements Store.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM caves WHERE id = ?`, id)
	if err != nil {
		return &Error{Store: BackendSQLite, Op: "delete", ID: id, Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return &Error{Store: BackendSQLite, Op: "delete", ID: id, Err: err}
	}
	if n == 0 {
		return &Error{Store: BackendSQLite, Op: "delete", ID: id, Err: ErrCaveNotFound}
	}
	return nil
}

// List implements Store.
func (s *SQLiteStore) List(ctx context.Context) ([]*model.Cave, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, data FROM caves`)
	if err != nil {
		return nil, &Error{Store: BackendSQLite, Op: "list", Err: err}
	}
	defer func() { _ = rows.Close() }()

	caves := make([]*model.Cave, 0)
	for rows.Next() {
		var id, data string
		if err := rows.Scan(&id, &data); err != nil {
			return nil, &Error{Store: BackendSQLite, Op: "list", Err: err}
		}
		c := &model.Cave{}
		if err := json.Unmarshal([]byte(data), c); err != nil {
			return nil, &Error{Store: BackendSQLite, Op: "list", Err: fmt.Errorf("decode %s: %w", id, err)}
		}
		caves = append(caves, c)
	}
	if err := rows.Err(); err != nil {
		return nil, &Error{Store: BackendSQLite, Op: "list", Err: err}
	}
	sortCaves(caves)
	return caves, nil
}

// ArchivePath implements Store.
func (s *SQLiteStore) ArchivePath(upload *model.Upload) string {
	return ArchivePath(s.archivesDir, upload)
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
