package rotate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poe-code/poe-code/internal/xerrors"
)

func TestFile_Write(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.log")

	rf, err := New(path, WithMaxSize(100), WithMaxBackups(2))
	require.NoError(t, err)
	defer rf.Close()

	data := []byte("hello world\n")
	n, err := rf.Write(data)
	require.NoError(t, err)
	assert.Equal(t, len(data), n)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, data, content)
}

func TestFile_Rotate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.log")

	rf, err := New(path, WithMaxSize(50), WithMaxBackups(2))
	require.NoError(t, err)
	defer rf.Close()

	data := make([]byte, 30)
	for i := range data {
		data[i] = 'a'
	}

	_, err = rf.Write(data)
	require.NoError(t, err)

	_, err = rf.Write(data)
	require.NoError(t, err)

	_, err = os.Stat(path + ".1")
	require.NoError(t, err, "backup file should exist")

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, data, content)

	backup, err := os.ReadFile(path + ".1")
	require.NoError(t, err)
	assert.Equal(t, data, backup)
}

func TestFile_MaxBackups(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.log")

	rf, err := New(path, WithMaxSize(20), WithMaxBackups(2))
	require.NoError(t, err)
	defer rf.Close()

	data := make([]byte, 15)

	for i := range 4 {
		for j := range data {
			data[j] = byte('a' + i)
		}
		_, err = rf.Write(data)
		require.NoError(t, err)
	}

	_, err = os.Stat(path)
	require.NoError(t, err, "current file should exist")

	_, err = os.Stat(path + ".1")
	require.NoError(t, err, "backup .1 should exist")

	_, err = os.Stat(path + ".2")
	require.NoError(t, err, "backup .2 should exist")

	_, err = os.Stat(path + ".3")
	require.True(t, os.IsNotExist(err), "backup .3 should not exist")
}

func TestFile_AppendsToExisting(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.log")

	err := os.WriteFile(path, []byte("existing\n"), 0o600)
	require.NoError(t, err)

	rf, err := New(path, WithMaxSize(1000), WithMaxBackups(2))
	require.NoError(t, err)
	defer rf.Close()

	_, err = rf.Write([]byte("new\n"))
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "existing\nnew\n", string(content))
}

func TestFile_OpenFailureIsLogSinkError(t *testing.T) {
	dir := t.TempDir()
	// A log path nested under a regular file can never have its parent
	// directory created.
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))
	path := filepath.Join(blocker, "test.log")

	_, err := New(path)
	require.Error(t, err)
	var sinkErr *xerrors.LogSinkError
	require.ErrorAs(t, err, &sinkErr)
	assert.Equal(t, path, sinkErr.Path)
}

func TestFile_CreatesDirectory(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "subdir", "nested", "test.log")

	rf, err := New(path)
	require.NoError(t, err)
	defer rf.Close()

	_, err = rf.Write([]byte("test"))
	require.NoError(t, err)

	_, err = os.Stat(path)
	require.NoError(t, err)
}
