// Package artifact stores the files produced by export jobs behind the
// casdoor object-storage interface, so local disk in development and a
// cloud bucket in production look the same to the job engine.
package artifact

import (
	"io"
	"os"
	"path"

	"github.com/casdoor/oss"

	"github.com/skubi6/kpi/errors"
)

// Storage wraps an oss backend with the path layout export jobs use.
type Storage struct {
	backend oss.StorageInterface
}

// NewStorage creates a Storage over the given backend.
func NewStorage(backend oss.StorageInterface) *Storage {
	return &Storage{backend: backend}
}

// ExportPath returns the storage path of an export artifact for owner.
func ExportPath(owner, filename string) string {
	return path.Join(owner, "exports", filename)
}

// Put stores the reader's contents at p and returns the artifact URL.
func (s *Storage) Put(p string, r io.Reader) (string, error) {
	if _, err := s.backend.Put(p, r); err != nil {
		return "", errors.Wrapf(err, "storing artifact %s", p)
	}
	u, err := s.backend.GetURL(p)
	if err != nil {
		return "", errors.Wrapf(err, "resolving artifact URL for %s", p)
	}
	return u, nil
}

// Get opens the artifact at p for reading.
func (s *Storage) Get(p string) (io.ReadCloser, error) {
	rc, err := s.backend.GetStream(p)
	if err != nil {
		return nil, errors.Wrapf(err, "opening artifact %s", p)
	}
	return rc, nil
}

// Exists reports whether an artifact is stored at p.
func (s *Storage) Exists(p string) bool {
	rc, err := s.backend.GetStream(p)
	if err != nil {
		return false
	}
	rc.Close()
	return true
}

// Delete removes the artifact at p. A missing artifact is not an error:
// retention has to make progress even when the file is already gone.
func (s *Storage) Delete(p string) error {
	err := s.backend.Delete(p)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return errors.Wrapf(err, "deleting artifact %s", p)
	}
	return nil
}
