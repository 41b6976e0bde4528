// Package fsblob is the filesystem blob store used outside of cloud
// deployments: objects land in one directory and are served back under a
// configured base URL.
package fsblob

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/dkoren/drivenet/internal/blob"
)

// Store writes blobs under Dir and returns URLs under BaseURL.
type Store struct {
	Dir     string
	BaseURL string
}

var _ blob.Store = (*Store)(nil)

// New ensures the directory exists and returns the store.
func New(dir, baseURL string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create blob dir: %w", err)
	}
	return &Store{Dir: dir, BaseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Put stores the blob under a uuid object name, keeping the hint's
// extension, and returns the stable URL.
func (s *Store) Put(_ context.Context, name string, r io.Reader) (string, error) {
	object := uuid.NewString()
	if ext := filepath.Ext(name); ext != "" && len(ext) <= 8 {
		object += ext
	}

	f, err := os.CreateTemp(s.Dir, "upload-*")
	if err != nil {
		return "", fmt.Errorf("stage blob: %w", err)
	}
	tmp := f.Name()

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(tmp)
		return "", fmt.Errorf("write blob: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("close blob: %w", err)
	}

	final := filepath.Join(s.Dir, object)
	if err := os.Rename(tmp, final); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("publish blob: %w", err)
	}

	return s.BaseURL + "/" + object, nil
}
