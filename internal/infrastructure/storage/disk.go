// Package storage implements the submission document store on the
// local filesystem. Keys are opaque handles minted at save time; the
// progress ledger persists the key, never the path.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/collab-hub/collab-portal/internal/domain/document"
)

// DiskStore is a document.Store backed by a single directory. Each
// saved file gets a fresh uuid-prefixed name so concurrent uploads for
// the same entry never collide; the winner is decided by the database
// submission slot, not by the filesystem.
type DiskStore struct {
	root string
}

// NewDiskStore creates the root directory if needed and returns a store.
func NewDiskStore(root string) (*DiskStore, error) {
	if root == "" {
		return nil, errors.New("storage: root directory is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("storage: failed to create root %s: %w", root, err)
	}
	return &DiskStore{root: root}, nil
}

var _ document.Store = (*DiskStore)(nil)

// Save streams the content to a new file and returns its key.
func (s *DiskStore) Save(ctx context.Context, filename string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	key := uuid.NewString() + sanitizeExt(filename)
	path := filepath.Join(s.root, key)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("storage: failed to create %s: %w", key, err)
	}

	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", fmt.Errorf("storage: failed to write %s: %w", key, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("storage: failed to close %s: %w", key, err)
	}
	return key, nil
}

// Open returns the content for a previously saved key.
func (s *DiskStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, err := s.resolve(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("storage: key %s not found", key)
		}
		return nil, fmt.Errorf("storage: failed to open %s: %w", key, err)
	}
	return f, nil
}

// Delete removes the file for a key. Unknown keys are a no-op so the
// upload compensation path can delete unconditionally.
func (s *DiskStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage: failed to delete %s: %w", key, err)
	}
	return nil
}

// resolve rejects keys that would escape the root directory.
func (s *DiskStore) resolve(key string) (string, error) {
	if key == "" || key == "." || key == ".." || key != filepath.Base(key) {
		return "", fmt.Errorf("storage: invalid key %q", key)
	}
	return filepath.Join(s.root, key), nil
}

// sanitizeExt keeps the original extension on the stored file so
// downloads round-trip with a usable name, while dropping anything
// that is not a plain suffix.
func sanitizeExt(filename string) string {
	ext := filepath.Ext(filepath.Base(filename))
	if ext == "." || strings.ContainsAny(ext, "/\\") {
		return ""
	}
	return strings.ToLower(ext)
}
