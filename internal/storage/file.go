package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/and161185/perpus/internal/errs"
)

// FileStore keeps one file per key under a private directory.
type FileStore struct {
	dir string
}

// NewFileStore creates dir (0700) if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(key string) string { return filepath.Join(s.dir, key+".json") }

// Get reads the entry file.
func (s *FileStore) Get(_ context.Context, key string) ([]byte, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	b, err := os.ReadFile(s.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, errs.ErrNotFound
	}
	return b, err
}

// Put writes the entry through a temp file and rename so readers never see a partial value.
func (s *FileStore) Put(_ context.Context, key string, value []byte) error {
	if err := checkKey(key); err != nil {
		return err
	}
	f, err := os.CreateTemp(s.dir, "."+key+"-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer os.Remove(tmp)

	if _, err := f.Write(value); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Chmod(0o600); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, s.path(key))
}

// Delete removes the entry file.
func (s *FileStore) Delete(_ context.Context, key string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	err := os.Remove(s.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

func (s *FileStore) Close() error { return nil }
