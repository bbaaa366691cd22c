package localstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	r, err := Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func TestSetAndGet(t *testing.T) {
	r := setupRepo(t)
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "uid", "ann@example.com"))

	v, ok, err := r.Get(ctx, "uid")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "ann@example.com", v)
}

func TestGet_Absent(t *testing.T) {
	r := setupRepo(t)

	v, ok, err := r.Get(context.Background(), "absent")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, v)
}

func TestSet_Upsert(t *testing.T) {
	r := setupRepo(t)
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "k", "old"))
	require.NoError(t, r.Set(ctx, "k", "new"))

	v, _, err := r.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "new", v)
}

func TestSetMany_ThenDelete(t *testing.T) {
	r := setupRepo(t)
	ctx := context.Background()

	require.NoError(t, r.SetMany(ctx, map[string]string{"a": "1", "b": "2", "c": "3"}))
	require.NoError(t, r.Delete(ctx, "a", "c", "missing"))

	for k, want := range map[string]bool{"a": false, "b": true, "c": false} {
		_, ok, err := r.Get(ctx, k)
		require.NoError(t, err)
		assert.Equal(t, want, ok, k)
	}
}

func TestOpen_FileSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.db")

	r, err := Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, r.Set(ctx, "client", "c-1"))
	require.NoError(t, r.Close())

	r, err = Open(ctx, path)
	require.NoError(t, err)
	defer r.Close()

	v, ok, err := r.Get(ctx, "client")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "c-1", v)
}

func TestClosedDB_ReturnsErrors(t *testing.T) {
	r := setupRepo(t)
	require.NoError(t, r.Close())
	ctx := context.Background()

	_, _, err := r.Get(ctx, "k")
	assert.Error(t, err)
	assert.Error(t, r.Set(ctx, "k", "v"))
	assert.Error(t, r.Delete(ctx, "k"))
}
