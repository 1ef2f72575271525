// Package rotate provides a size-rotating io.WriteCloser used as the sink
// for debug-mode structured logging, so a long-lived configure/unconfigure
// session never grows an unbounded log file.
package rotate

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/poe-code/poe-code/internal/xerrors"
)

const (
	DefaultMaxSize    = 10 * 1024 * 1024 // 10MB
	DefaultMaxBackups = 3
)

// File is an io.WriteCloser that rotates log files when they exceed a size limit.
type File struct {
	path       string
	maxSize    int64
	maxBackups int

	mu   sync.Mutex
	file *os.File
	size int64
}

type Option func(*File)

func WithMaxSize(size int64) Option {
	return func(r *File) {
		r.maxSize = size
	}
}

func WithMaxBackups(count int) Option {
	return func(r *File) {
		r.maxBackups = count
	}
}

// New creates a new rotating file writer, creating its parent directory if needed.
func New(path string, opts ...Option) (*File, error) {
	r := &File{
		path:       path,
		maxSize:    DefaultMaxSize,
		maxBackups: DefaultMaxBackups,
	}

	for _, opt := range opts {
		opt(r)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, &xerrors.LogSinkError{Path: path, Err: err}
	}

	if err := r.openFile(); err != nil {
		return nil, err
	}

	return r, nil
}

func (r *File) openFile() error {
	file, err := os.OpenFile(r.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return &xerrors.LogSinkError{Path: r.path, Err: err}
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return &xerrors.LogSinkError{Path: r.path, Err: err}
	}

	r.file = file
	r.size = info.Size()
	return nil
}

func (r *File) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.size+int64(len(p)) > r.maxSize {
		if err := r.rotate(); err != nil {
			return 0, err
		}
	}

	n, err := r.file.Write(p)
	r.size += int64(n)
	return n, err
}

func (r *File) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.file != nil {
		return r.file.Close()
	}
	return nil
}

func (r *File) rotate() error {
	if err := r.file.Close(); err != nil {
		return &xerrors.LogSinkError{Path: r.path, Err: err}
	}

	oldest := fmt.Sprintf("%s.%d", r.path, r.maxBackups)
	_ = os.Remove(oldest)

	for i := r.maxBackups - 1; i >= 1; i-- {
		oldPath := fmt.Sprintf("%s.%d", r.path, i)
		newPath := fmt.Sprintf("%s.%d", r.path, i+1)
		_ = os.Rename(oldPath, newPath)
	}

	if err := os.Rename(r.path, r.path+".1"); err != nil && !os.IsNotExist(err) {
		return &xerrors.LogSinkError{Path: r.path, Err: err}
	}

	r.size = 0
	return r.openFile()
}
