package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// LocalStore writes files into one directory and remembers their content types.
type LocalStore struct {
	dir string

	mu    sync.RWMutex
	types map[string]string
}

func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("media: create %s: %w", dir, err)
	}
	return &LocalStore{dir: dir, types: map[string]string{}}, nil
}

func (s *LocalStore) Save(_ context.Context, name, contentType string, r io.Reader) error {
	if !ValidName(name) {
		return ErrInvalidName
	}
	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return fmt.Errorf("media: temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return fmt.Errorf("media: write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("media: close %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, name)); err != nil {
		return fmt.Errorf("media: rename %s: %w", name, err)
	}

	s.mu.Lock()
	s.types[name] = contentType
	s.mu.Unlock()
	return nil
}

// Open returns the file and its content type. Files written before a restart
// come back without a type and the caller sniffs it.
func (s *LocalStore) Open(_ context.Context, name string) (io.ReadCloser, string, error) {
	if !ValidName(name) {
		return nil, "", ErrNotFound
	}
	f, err := os.Open(filepath.Join(s.dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, "", ErrNotFound
	}
	if err != nil {
		return nil, "", fmt.Errorf("media: open %s: %w", name, err)
	}
	s.mu.RLock()
	ct := s.types[name]
	s.mu.RUnlock()
	return f, ct, nil
}
