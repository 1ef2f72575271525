// Package vfs is the virtual filesystem used by the mutation engine (§4.B).
// It wraps an afero.Fs so production code runs against the real disk
// (afero.NewOsFs) and tests run against an in-memory tree
// (afero.NewMemMapFs) without any behavioral difference, and it normalizes
// "not found" the way the engine expects: ReadFile returns (nil, nil) and
// Stat returns (nil, nil) instead of an ENOENT error, so callers never have
// to special-case os.IsNotExist themselves.
package vfs

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/natefinch/atomic"
	"github.com/spf13/afero"
)

// FS is the minimal filesystem surface the mutation engine depends on.
type FS interface {
	// ReadFile returns the file's content, or (nil, nil) if it does not
	// exist.
	ReadFile(path string) ([]byte, error)
	// WriteFile writes data atomically, replacing any existing file. The
	// parent directory must already exist.
	WriteFile(path string, data []byte, mode fs.FileMode) error
	// Mkdir creates path. If recursive, missing parents are created too
	// (MkdirAll); mirrors mkdir({recursive}).
	Mkdir(path string, recursive bool, mode fs.FileMode) error
	// Unlink removes a single file. ENOENT is not an error.
	Unlink(path string) error
	// Remove removes path. If recursive, a non-empty directory is removed
	// along with its contents; otherwise a non-empty directory errors.
	// force suppresses the "not found" error.
	Remove(path string, recursive, force bool) error
	// Stat returns the file's info, or (nil, nil) if it does not exist.
	Stat(path string) (fs.FileInfo, error)
	// Readdir lists the names of path's direct children.
	Readdir(path string) ([]string, error)
	// Chmod changes path's mode bits.
	Chmod(path string, mode fs.FileMode) error
}

// aferoFS adapts an afero.Fs to FS, applying ENOENT normalization and
// routing writes through an atomic rename so a crash mid-write never
// leaves a half-written config file on disk.
type aferoFS struct {
	fs afero.Fs
}

// New wraps base as an FS. Pass afero.NewOsFs() in production and
// afero.NewMemMapFs() in tests.
func New(base afero.Fs) FS {
	return &aferoFS{fs: base}
}

// NewOS returns an FS backed by the real filesystem.
func NewOS() FS {
	return New(afero.NewOsFs())
}

func isNotExist(err error) bool {
	return err != nil && (errors.Is(err, fs.ErrNotExist) || os.IsNotExist(err))
}

func (a *aferoFS) ReadFile(path string) ([]byte, error) {
	data, err := afero.ReadFile(a.fs, path)
	if isNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (a *aferoFS) WriteFile(path string, data []byte, mode fs.FileMode) error {
	// natefinch/atomic works against the real OS filesystem only (it
	// renames a sibling temp file into place); an in-memory afero.Fs used
	// in tests gets a plain write, which is already atomic from the
	// caller's point of view since nothing else observes the half-written
	// state.
	if _, isOS := a.fs.(*afero.OsFs); isOS {
		if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
			return err
		}
		return a.fs.Chmod(path, mode)
	}

	if err := afero.WriteFile(a.fs, path, data, mode); err != nil {
		return err
	}
	return a.fs.Chmod(path, mode)
}

func (a *aferoFS) Mkdir(path string, recursive bool, mode fs.FileMode) error {
	if recursive {
		return a.fs.MkdirAll(path, mode)
	}
	return a.fs.Mkdir(path, mode)
}

func (a *aferoFS) Unlink(path string) error {
	err := a.fs.Remove(path)
	if isNotExist(err) {
		return nil
	}
	return err
}

func (a *aferoFS) Remove(path string, recursive, force bool) error {
	var err error
	if recursive {
		err = a.fs.RemoveAll(path)
	} else {
		err = a.fs.Remove(path)
	}
	if force && isNotExist(err) {
		return nil
	}
	return err
}

func (a *aferoFS) Stat(path string) (fs.FileInfo, error) {
	info, err := a.fs.Stat(path)
	if isNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return info, nil
}

func (a *aferoFS) Readdir(path string) ([]string, error) {
	entries, err := afero.ReadDir(a.fs, path)
	if isNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name()
	}
	return names, nil
}

func (a *aferoFS) Chmod(path string, mode fs.FileMode) error {
	err := a.fs.Chmod(path, mode)
	if isNotExist(err) {
		return nil
	}
	return err
}

// Exists is a convenience wrapper used by mutation kinds that only need a
// presence check (§4.E ensureDirectory/removeDirectory).
func Exists(f FS, path string) (bool, error) {
	info, err := f.Stat(path)
	if err != nil {
		return false, err
	}
	return info != nil, nil
}

// IsDirEmpty reports whether path is an empty directory.
func IsDirEmpty(f FS, path string) (bool, error) {
	names, err := f.Readdir(path)
	if err != nil {
		return false, err
	}
	return len(names) == 0, nil
}

// now is overridable in tests so backup/quarantine filenames are
// deterministic.
var now = time.Now

// TimestampSuffix formats the current time the way backup and quarantine
// filenames embed it: an ISO-8601 timestamp with colons and dots replaced
// by dashes so it is a legal filename on every platform.
func TimestampSuffix() string {
	return isoToFilenameSafe(now().UTC())
}

func isoToFilenameSafe(t time.Time) string {
	iso := t.Format("2006-01-02T15:04:05.000Z")
	iso = strings.ReplaceAll(iso, ":", "-")
	iso = strings.ReplaceAll(iso, ".", "-")
	return iso
}
