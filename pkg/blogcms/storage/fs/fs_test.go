package fs

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blogcms/blogcms/pkg/blogcms"
)

func newTestStore(t *testing.T) *Store {
	store, err := New(Config{BaseDir: t.TempDir()})
	require.NoError(t, err)
	return store
}

func TestNew(t *testing.T) {
	t.Run("missing base dir rejected", func(t *testing.T) {
		_, err := New(Config{})
		assert.Error(t, err)
	})

	t.Run("creates base dir", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "nested", "uploads")
		_, err := New(Config{BaseDir: dir})
		require.NoError(t, err)

		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	t.Run("prefix normalized", func(t *testing.T) {
		store, err := New(Config{BaseDir: t.TempDir(), URLPrefix: "files/"})
		require.NoError(t, err)

		ref, err := store.Save(context.Background(), "a.png", strings.NewReader("x"))
		require.NoError(t, err)
		assert.Equal(t, "/files/a.png", ref)
	})
}

func TestSaveOpenDelete(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	ref, err := store.Save(ctx, "blog-1-abc.png", strings.NewReader("image-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "/uploads/blog-1-abc.png", ref)

	exists, err := store.Exists(ctx, ref)
	require.NoError(t, err)
	assert.True(t, exists)

	rc, err := store.Open(ctx, ref)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "image-bytes", string(data))

	require.NoError(t, store.Delete(ctx, ref))

	exists, err = store.Exists(ctx, ref)
	require.NoError(t, err)
	assert.False(t, exists)

	assert.ErrorIs(t, store.Delete(ctx, ref), blogcms.ErrAssetNotFound)

	_, err = store.Open(ctx, ref)
	assert.ErrorIs(t, err, blogcms.ErrAssetNotFound)
}

func TestHostileKeysRejected(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	for _, key := range []string{"", ".", "..", "../etc/passwd", `..\..\x`, "a/b.png"} {
		_, err := store.Save(ctx, key, strings.NewReader("x"))
		assert.Error(t, err, "key %q must be rejected", key)
	}

	// References outside the prefix never resolve to a path.
	err := store.Delete(ctx, "/etc/passwd")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, blogcms.ErrAssetNotFound)
}
