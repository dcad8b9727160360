package cave

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/cperrin88/cavern/pkg/fsutil"
	"github.com/cperrin88/cavern/pkg/model"
)

const boltCavesBucket = "caves"

// BoltStore keeps one JSON document per cave in a bbolt bucket.
type BoltStore struct {
	db          *bolt.DB
	archivesDir string
}

var _ Store = (*BoltStore)(nil)

// NewBoltStore opens (or creates) the database at path.
func NewBoltStore(path, archivesDir string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), fsutil.DirModeSecure); err != nil {
		return nil, &Error{Store: BackendBolt, Op: "open", Err: err}
	}
	db, err := bolt.Open(path, fsutil.FileModePrivate, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, &Error{Store: BackendBolt, Op: "open", Err: err}
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, berr := tx.CreateBucketIfNotExists([]byte(boltCavesBucket))
		return berr
	}); err != nil {
		_ = db.Close()
		return nil, &Error{Store: BackendBolt, Op: "open", Err: fmt.Errorf("init bucket: %w", err)}
	}
	return &BoltStore{db: db, archivesDir: archivesDir}, nil
}

// Find implements Store.
func (s *BoltStore) Find(ctx context.Context, id string) (*model.Cave, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var c *model.Cave
	err := s.db.View(func(tx *bolt.Tx) error {
		value := tx.Bucket([]byte(boltCavesBucket)).Get([]byte(id))
		if value == nil {
			return ErrCaveNotFound
		}
		c = &model.Cave{}
		if err := json.Unmarshal(value, c); err != nil {
			return fmt.Errorf("decode: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, &Error{Store: BackendBolt, Op: "find", ID: id, Err: err}
	}
	return c, nil
}

// Save implements Store. CreatedAt is kept from an existing record.
func (s *BoltStore) Save(ctx context.Context, c *model.Cave) error {
	if c == nil || c.ID == "" {
		return &Error{Store: BackendBolt, Op: "save", Err: ErrInvalidCave}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(boltCavesBucket))
		rec := c.Clone()
		now := time.Now().UTC()
		rec.UpdatedAt = now
		if prev := bucket.Get([]byte(c.ID)); prev != nil {
			var old model.Cave
			if err := json.Unmarshal(prev, &old); err == nil && !old.CreatedAt.IsZero() {
				rec.CreatedAt = old.CreatedAt
			}
		}
		if rec.CreatedAt.IsZero() {
			rec.CreatedAt = now
		}
		p, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("encode: %w", err)
		}
		return bucket.Put([]byte(c.ID), p)
	})
	if err != nil {
		return &Error{Store: BackendBolt, Op: "save", ID: c.ID, Err: err}
	}
	return nil
}

// Delete implements Store.
func (s *BoltStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(boltCavesBucket))
		if bucket.Get([]byte(id)) == nil {
			return ErrCaveNotFound
		}
		return bucket.Delete([]byte(id))
	})
	if err != nil {
		return &Error{Store: BackendBolt, Op: "delete", ID: id, Err: err}
	}
	return nil
}

// List implements Store.
func (s *BoltStore) List(ctx context.Context) ([]*model.Cave, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	caves := make([]*model.Cave, 0)
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(boltCavesBucket)).ForEach(func(k, v []byte) error {
			c := &model.Cave{}
			if err := json.Unmarshal(v, c); err != nil {
				return fmt.Errorf("decode %s: %w", k, err)
			}
			caves = append(caves, c)
			return nil
		})
	})
	if err != nil {
		return nil, &Error{Store: BackendBolt, Op: "list", Err: err}
	}
	sortCaves(caves)
	return caves, nil
}

// ArchivePath implements Store.
func (s *BoltStore) ArchivePath(upload *model.Upload) string {
	return ArchivePath(s.archivesDir, upload)
}

// Close releases the database file lock.
func (s *BoltStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
