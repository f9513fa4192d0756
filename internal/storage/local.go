package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// LocalStorage writes uploaded media below a directory and hands out
// references under a URL prefix that the HTTP server maps back to it.
type LocalStorage struct {
	dir    string
	prefix string
}

// NewLocalStorage creates dir when needed.
func NewLocalStorage(dir, urlPrefix string) (*LocalStorage, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("local storage: directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("local storage: create %s: %w", dir, err)
	}
	return &LocalStorage{dir: dir, prefix: strings.TrimSuffix(urlPrefix, "/")}, nil
}

// Dir returns the directory files are written to.
func (s *LocalStorage) Dir() string {
	return s.dir
}

// Save copies r to name below the storage directory.
func (s *LocalStorage) Save(ctx context.Context, name string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	key := path.Clean("/" + strings.TrimSpace(name))
	if key == "/" {
		return "", errors.New("local storage: empty key")
	}
	key = strings.TrimPrefix(key, "/")

	target := filepath.Join(s.dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("local storage: create dir for %s: %w", key, err)
	}

	f, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("local storage: create %s: %w", key, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(target)
		return "", fmt.Errorf("local storage: write %s: %w", key, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("local storage: close %s: %w", key, err)
	}

	return s.prefix + "/" + key, nil
}
