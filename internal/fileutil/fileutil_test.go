package fileutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirLock_Exclusive(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")

	first, err := NewDirLock(dir)
	require.NoError(t, err)
	ok, err := first.TryLock()
	require.NoError(t, err)
	require.True(t, ok)

	second, err := NewDirLock(dir)
	require.NoError(t, err)
	ok, err = second.TryLock()
	require.NoError(t, err)
	assert.False(t, ok, "second lock must be refused while the first is held")

	require.NoError(t, first.Unlock())
	ok, err = second.TryLock()
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, second.Unlock())

	assert.Equal(t, filepath.Join(dir, LockFileName), first.Path())
}

func TestAtomicWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "results.json")

	require.NoError(t, AtomicWrite(path, []byte("one")))
	require.NoError(t, AtomicWrite(path, []byte("two")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "two", string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0644), info.Mode().Perm())
}

func TestAtomicWrite_TargetIsDirectory(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "taken")
	require.NoError(t, os.MkdirAll(filepath.Join(target, "child"), 0755))

	err := AtomicWrite(target, []byte("x"))

	assert.Error(t, err)
	entries, _ := os.ReadDir(dir)
	assert.Len(t, entries, 1)
}
