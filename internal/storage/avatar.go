// Package storage persists uploaded avatar files on the local filesystem,
// under a single flat directory served back at /storage/.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// AvatarStore writes avatar files into a directory on disk. Filenames are
// generated by the caller; the store only refuses anything that could
// escape its directory.
type AvatarStore struct {
	dir string
}

// NewAvatarStore creates the storage directory if needed and returns a
// store rooted there.
func NewAvatarStore(dir string) (*AvatarStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: creating avatar directory %s: %w", dir, err)
	}
	return &AvatarStore{dir: dir}, nil
}

// Dir returns the root directory, for wiring the /storage/ file server.
func (s *AvatarStore) Dir() string {
	return s.dir
}

// Save writes data under name. The name must be a bare filename — path
// separators or traversal would let an upload land outside the store.
func (s *AvatarStore) Save(name string, data []byte) error {
	if err := validName(name); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return fmt.Errorf("storage: writing avatar %s: %w", name, err)
	}
	return nil
}

// Remove deletes a stored avatar. A missing file is not an error — the
// record and the disk can disagree after a crash, and remove is only ever
// cleanup of a replaced avatar.
func (s *AvatarStore) Remove(name string) error {
	if err := validName(name); err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage: removing avatar %s: %w", name, err)
	}
	return nil
}

func validName(name string) error {
	if name == "" || name != filepath.Base(name) || strings.Contains(name, "..") {
		return fmt.Errorf("storage: invalid avatar filename %q", name)
	}
	return nil
}
