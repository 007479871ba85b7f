package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreGet(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	s.Set("i:1", `["cars","pets"]`)

	v, err := s.Get(ctx, "i:1")
	require.NoError(t, err)
	assert.Equal(t, `["cars","pets"]`, v)

	_, err = s.Get(ctx, "i:2")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreGetCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewMemoryStore().Get(ctx, "i:1")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMemoryStoreCacheTTL(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s := NewMemoryStore()
	s.now = func() time.Time { return now }

	s.CacheSet(ctx, "uid:1", "3.5", time.Hour)
	v, ok := s.CacheGet(ctx, "uid:1")
	assert.True(t, ok)
	assert.Equal(t, "3.5", v)

	now = now.Add(time.Hour)
	_, ok = s.CacheGet(ctx, "uid:1")
	assert.False(t, ok, "entry expires after ttl")

	s.CacheSet(ctx, "uid:2", "1", 0)
	now = now.Add(100 * time.Hour)
	_, ok = s.CacheGet(ctx, "uid:2")
	assert.True(t, ok, "zero ttl never expires")
}

func TestMemoryStoreCacheIsSeparateFromData(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	s.CacheSet(ctx, "k", "cached", time.Minute)

	_, err := s.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoadSeed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"i:1": ["cars", "pets"],
		"i:2": [],
		"greeting": "hello"
	}`), 0o644))

	s := NewMemoryStore()
	require.NoError(t, s.LoadSeed(path))

	ctx := context.Background()
	v, err := s.Get(ctx, "i:1")
	require.NoError(t, err)
	assert.Equal(t, `["cars","pets"]`, v)

	v, err = s.Get(ctx, "greeting")
	require.NoError(t, err)
	assert.Equal(t, "hello", v)
}

func TestLoadSeedMissingOrEmptyFile(t *testing.T) {
	dir := t.TempDir()
	s := NewMemoryStore()
	assert.NoError(t, s.LoadSeed(filepath.Join(dir, "absent.json")))

	empty := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(empty, []byte("  \n"), 0o644))
	assert.NoError(t, s.LoadSeed(empty))
}

func TestLoadSeedInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`["not", "an", "object"]`), 0o644))

	assert.Error(t, NewMemoryStore().LoadSeed(path))
}
