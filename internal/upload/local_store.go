package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

var ErrOutsideUploadDir = errors.New("path outside upload directory")

// LocalImageStore keeps images on the local filesystem. Files are served
// back by the static route rooted at the same directory.
type LocalImageStore struct {
	dir string
}

// NewLocalImageStore creates the upload directory if needed.
func NewLocalImageStore(dir string) (*LocalImageStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir all: %w", err)
	}
	return &LocalImageStore{dir: dir}, nil
}

// Save writes the image to <dir>/<name> and returns that relative path.
func (s *LocalImageStore) Save(_ context.Context, name, _ string, r io.Reader) (stored string, err error) {
	filename := filepath.Join(s.dir, filepath.Base(name))

	// O_EXCL: generated names are unique, a collision is a bug not an overwrite
	file, err := os.OpenFile(filename, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("open: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close: %w", cerr)
		}
		if err != nil {
			_ = os.Remove(filename)
		}
	}()

	if _, err := io.Copy(file, r); err != nil {
		return "", fmt.Errorf("write: %w", err)
	}
	if err := file.Sync(); err != nil {
		return "", fmt.Errorf("sync: %w", err)
	}

	return filepath.ToSlash(filename), nil
}

// Remove deletes a file previously written by Save.
func (s *LocalImageStore) Remove(_ context.Context, storedPath string) error {
	filename := filepath.Clean(filepath.FromSlash(storedPath))
	root := filepath.Clean(s.dir) + string(filepath.Separator)
	if !strings.HasPrefix(filename, root) {
		return fmt.Errorf("%w: %s", ErrOutsideUploadDir, storedPath)
	}
	if err := os.Remove(filename); err != nil {
		return fmt.Errorf("remove: %w", err)
	}
	return nil
}
