package fileutil_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lantern-wallet/lantern/internal/fileutil"
)

func TestWriteAtomic(t *testing.T) {
	t.Parallel()

	t.Run("writes new file with permissions", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "meta.json")

		err := fileutil.WriteAtomic(path, []byte(`{"a":1}`), 0o600)
		require.NoError(t, err)

		data, err := os.ReadFile(path) //nolint:gosec // test-controlled path
		require.NoError(t, err)
		assert.Equal(t, `{"a":1}`, string(data))

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	})

	t.Run("replaces existing file", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "meta.json")

		require.NoError(t, fileutil.WriteAtomic(path, []byte("old"), 0o600))
		require.NoError(t, fileutil.WriteAtomic(path, []byte("new"), 0o600))

		data, err := os.ReadFile(path) //nolint:gosec // test-controlled path
		require.NoError(t, err)
		assert.Equal(t, "new", string(data))
	})

	t.Run("leaves no temp files behind", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		path := filepath.Join(dir, "meta.json")

		require.NoError(t, fileutil.WriteAtomic(path, []byte("x"), 0o600))

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})

	t.Run("rejects empty path", func(t *testing.T) {
		t.Parallel()
		err := fileutil.WriteAtomic("", []byte("x"), 0o600)
		assert.ErrorIs(t, err, fileutil.ErrEmptyPath)
	})
}
