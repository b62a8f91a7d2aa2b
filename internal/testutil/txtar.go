// Package testutil holds helpers shared by tests that need a project on disk.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/tools/txtar"
)

// Materialize writes the files of the txtar archive at path into a fresh
// temporary directory and returns the directory.
func Materialize(t testing.TB, path string) string {
	t.Helper()
	ar, err := txtar.ParseFile(path)
	require.NoError(t, err)
	return Write(t, ar)
}

// Write writes the files of ar into a fresh temporary directory and returns
// the directory.
func Write(t testing.TB, ar *txtar.Archive) string {
	t.Helper()
	dir := t.TempDir()
	for _, f := range ar.Files {
		dst := filepath.Join(dir, filepath.FromSlash(f.Name))
		require.NoError(t, os.MkdirAll(filepath.Dir(dst), 0o755))
		require.NoError(t, os.WriteFile(dst, f.Data, 0o644))
	}
	return dir
}
