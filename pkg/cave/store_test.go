package cave

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cperrin88/cavern/pkg/model"
)

func openStores(t *testing.T) map[string]Store {
	t.Helper()
	dir := t.TempDir()
	archives := filepath.Join(dir, "archives")

	stores := make(map[string]Store)
	for _, backend := range []string{BackendBolt, BackendJSON, BackendSQLite} {
		s, err := Open(backend, DefaultFile(filepath.Join(dir, backend), backend), archives)
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Close() })
		stores[backend] = s
	}
	return stores
}

func TestStore_SaveFind(t *testing.T) {
	ctx := context.Background()
	for backend, s := range openStores(t) {
		t.Run(backend, func(t *testing.T) {
			c := &model.Cave{
				ID:       "c1",
				GameID:   3,
				UploadID: 7,
				Uploads:  map[int64]*model.Upload{7: {ID: 7, Filename: "game.zip"}},
				Key:      &model.DownloadKey{ID: 99},
			}
			require.NoError(t, s.Save(ctx, c))

			got, err := s.Find(ctx, "c1")
			require.NoError(t, err)
			assert.Equal(t, int64(7), got.UploadID)
			assert.Equal(t, "game.zip", got.Uploads[7].Filename)
			assert.Equal(t, int64(99), got.Key.ID)
			assert.False(t, got.CreatedAt.IsZero())

			created := got.CreatedAt
			got.UploadID = 8
			require.NoError(t, s.Save(ctx, got))
			again, err := s.Find(ctx, "c1")
			require.NoError(t, err)
			assert.Equal(t, int64(8), again.UploadID)
			assert.True(t, created.Equal(again.CreatedAt))
		})
	}
}

func TestStore_PreservesAbsentUploads(t *testing.T) {
	ctx := context.Background()
	for backend, s := range openStores(t) {
		t.Run(backend, func(t *testing.T) {
			require.NoError(t, s.Save(ctx, &model.Cave{ID: "absent", UploadID: 7}))
			require.NoError(t, s.Save(ctx, &model.Cave{ID: "empty", UploadID: 7, Uploads: map[int64]*model.Upload{}}))

			absent, err := s.Find(ctx, "absent")
			require.NoError(t, err)
			assert.Nil(t, absent.Uploads)

			empty, err := s.Find(ctx, "empty")
			require.NoError(t, err)
			assert.NotNil(t, empty.Uploads)
			assert.Empty(t, empty.Uploads)
		})
	}
}

func TestStore_NotFound(t *testing.T) {
	ctx := context.Background()
	for backend, s := range openStores(t) {
		t.Run(backend, func(t *testing.T) {
			_, err := s.Find(ctx, "missing")
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrCaveNotFound)

			var storeErr *Error
			require.True(t, errors.As(err, &storeErr))
			assert.Equal(t, backend, storeErr.Store)
			assert.Equal(t, "find", storeErr.Op)
			assert.Equal(t, "missing", storeErr.ID)

			assert.ErrorIs(t, s.Delete(ctx, "missing"), ErrCaveNotFound)
		})
	}
}

func TestStore_ListDelete(t *testing.T) {
	ctx := context.Background()
	for backend, s := range openStores(t) {
		t.Run(backend, func(t *testing.T) {
			for _, id := range []string{"a", "b", "c"} {
				require.NoError(t, s.Save(ctx, &model.Cave{ID: id}))
			}
			caves, err := s.List(ctx)
			require.NoError(t, err)
			require.Len(t, caves, 3)
			assert.Equal(t, "a", caves[0].ID)

			require.NoError(t, s.Delete(ctx, "b"))
			caves, err = s.List(ctx)
			require.NoError(t, err)
			assert.Len(t, caves, 2)
		})
	}
}

func TestStore_SaveInvalid(t *testing.T) {
	for backend, s := range openStores(t) {
		t.Run(backend, func(t *testing.T) {
			assert.ErrorIs(t, s.Save(context.Background(), &model.Cave{}), ErrInvalidCave)
		})
	}
}

func TestStore_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for backend, s := range openStores(t) {
		t.Run(backend, func(t *testing.T) {
			_, err := s.Find(ctx, "c1")
			assert.ErrorIs(t, err, context.Canceled)
		})
	}
}

func TestJSONStore_Reopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "caves.json")

	s, err := NewJSONStore(path, t.TempDir())
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, &model.Cave{ID: "c1", GameID: 5}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	reopened, err := NewJSONStore(path, t.TempDir())
	require.NoError(t, err)
	c, err := reopened.Find(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, int64(5), c.GameID)
}

func TestJSONStore_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "caves.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := NewJSONStore(path, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse database file")
}

func TestOpen_Errors(t *testing.T) {
	_, err := Open("sqlite", filepath.Join(t.TempDir(), "x.db"), t.TempDir())
	assert.ErrorIs(t, err, ErrUnknownBackend)

	_, err = Open(BackendJSON, "relative/caves.json", t.TempDir())
	assert.Error(t, err)

	_, err = Open(BackendJSON, "", t.TempDir())
	assert.Error(t, err)
}

func TestSQLiteStore_KeepsCreatedAt(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "caves.sqlite")

	s, err := NewSQLiteStore(path, t.TempDir())
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, &model.Cave{ID: "c1", GameID: 3}))
	first, err := s.Find(ctx, "c1")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = NewSQLiteStore(path, t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.Save(ctx, &model.Cave{ID: "c1", GameID: 3, UploadID: 7}))
	second, err := s.Find(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, int64(7), second.UploadID)
	assert.True(t, first.CreatedAt.Equal(second.CreatedAt))
	assert.False(t, second.UpdatedAt.Before(first.UpdatedAt))
}
