package vfs

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMem() FS {
	return New(afero.NewMemMapFs())
}

func TestReadFileMissingReturnsNilNil(t *testing.T) {
	f := newMem()
	data, err := f.ReadFile("/home/user/.config/missing.json")
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestWriteThenReadFile(t *testing.T) {
	f := newMem()
	require.NoError(t, f.Mkdir("/home/user/.config", true, 0o755))
	require.NoError(t, f.WriteFile("/home/user/.config/a.json", []byte("{}"), 0o644))

	data, err := f.ReadFile("/home/user/.config/a.json")
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))
}

func TestStatMissingReturnsNilNil(t *testing.T) {
	f := newMem()
	info, err := f.Stat("/nope")
	require.NoError(t, err)
	assert.Nil(t, info)
}

func TestStatExisting(t *testing.T) {
	f := newMem()
	require.NoError(t, f.Mkdir("/d", true, 0o755))
	require.NoError(t, f.WriteFile("/d/a.txt", []byte("x"), 0o644))

	info, err := f.Stat("/d/a.txt")
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.False(t, info.IsDir())
}

func TestUnlinkMissingIsNoop(t *testing.T) {
	f := newMem()
	require.NoError(t, f.Unlink("/nope"))
}

func TestUnlinkExisting(t *testing.T) {
	f := newMem()
	require.NoError(t, f.Mkdir("/d", true, 0o755))
	require.NoError(t, f.WriteFile("/d/a.txt", []byte("x"), 0o644))
	require.NoError(t, f.Unlink("/d/a.txt"))

	data, err := f.ReadFile("/d/a.txt")
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestRemoveNonEmptyDirectoryWithoutForceFails(t *testing.T) {
	f := newMem()
	require.NoError(t, f.Mkdir("/d", true, 0o755))
	require.NoError(t, f.WriteFile("/d/a.txt", []byte("x"), 0o644))

	err := f.Remove("/d", false, false)
	assert.Error(t, err)
}

func TestRemoveRecursive(t *testing.T) {
	f := newMem()
	require.NoError(t, f.Mkdir("/d", true, 0o755))
	require.NoError(t, f.WriteFile("/d/a.txt", []byte("x"), 0o644))

	require.NoError(t, f.Remove("/d", true, false))

	exists, err := Exists(f, "/d")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRemoveForceSuppressesNotFound(t *testing.T) {
	f := newMem()
	assert.NoError(t, f.Remove("/nope", false, true))
}

func TestReaddirMissingReturnsNilNil(t *testing.T) {
	f := newMem()
	names, err := f.Readdir("/nope")
	require.NoError(t, err)
	assert.Nil(t, names)
}

func TestReaddirListsChildren(t *testing.T) {
	f := newMem()
	require.NoError(t, f.Mkdir("/d", true, 0o755))
	require.NoError(t, f.WriteFile("/d/a.txt", []byte("x"), 0o644))
	require.NoError(t, f.WriteFile("/d/b.txt", []byte("y"), 0o644))

	names, err := f.Readdir("/d")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a.txt", "b.txt"}, names)
}

func TestIsDirEmpty(t *testing.T) {
	f := newMem()
	require.NoError(t, f.Mkdir("/empty", true, 0o755))
	require.NoError(t, f.Mkdir("/full", true, 0o755))
	require.NoError(t, f.WriteFile("/full/a", []byte("x"), 0o644))

	empty, err := IsDirEmpty(f, "/empty")
	require.NoError(t, err)
	assert.True(t, empty)

	empty, err = IsDirEmpty(f, "/full")
	require.NoError(t, err)
	assert.False(t, empty)
}

func TestChmodMissingIsNoop(t *testing.T) {
	f := newMem()
	assert.NoError(t, f.Chmod("/nope", 0o600))
}

func TestTimestampSuffixHasNoColonsOrDots(t *testing.T) {
	s := TimestampSuffix()
	assert.NotContains(t, s, ":")
	assert.NotContains(t, s, ".")
}
