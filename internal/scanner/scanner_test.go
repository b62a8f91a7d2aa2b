package scanner

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func TestScan(t *testing.T) {
	t.Run("should collect sorted .rs files and skip excluded and hidden directories", func(t *testing.T) {
		root := t.TempDir()
		writeTree(t, root, map[string]string{
			"src/main.rs":          "fn main() {}",
			"src/routes/users.rs":  "",
			"src/routes/README.md": "",
			"build.rs":             "",
			"target/debug/gen.rs":  "",
			".git/hooks/x.rs":      "",
			"vendor/dep/lib.rs":    "",
		})

		res, err := Scan(context.Background(), root, Options{Exclude: []string{"target", "vendor"}})
		require.NoError(t, err)
		assert.Equal(t, []string{
			filepath.Join(root, "build.rs"),
			filepath.Join(root, "src", "main.rs"),
			filepath.Join(root, "src", "routes", "users.rs"),
		}, res.Files)
		assert.Empty(t, res.Warnings)
	})

	t.Run("should return an empty result for a project without sources", func(t *testing.T) {
		res, err := Scan(context.Background(), t.TempDir(), Options{})
		require.NoError(t, err)
		assert.Empty(t, res.Files)
	})

	t.Run("should fail for a missing root", func(t *testing.T) {
		_, err := Scan(context.Background(), filepath.Join(t.TempDir(), "nope"), Options{})
		require.Error(t, err)
	})

	t.Run("should fail when root is a file", func(t *testing.T) {
		root := t.TempDir()
		writeTree(t, root, map[string]string{"main.rs": ""})
		_, err := Scan(context.Background(), filepath.Join(root, "main.rs"), Options{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not a directory")
	})

	t.Run("should stop when the context is cancelled", func(t *testing.T) {
		root := t.TempDir()
		writeTree(t, root, map[string]string{"a.rs": ""})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := Scan(ctx, root, Options{})
		require.ErrorIs(t, err, context.Canceled)
	})
}
