package artifact

import (
	"io"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/casdoor/oss"

	"github.com/skubi6/kpi/errors"
)

// LocalFileSystem is an oss.StorageInterface backed by a directory on disk.
type LocalFileSystem struct {
	Folder string
}

// NewLocalFileSystem creates a local backend rooted at folder, creating
// the folder if needed.
func NewLocalFileSystem(folder string) (*LocalFileSystem, error) {
	abs, err := filepath.Abs(folder)
	if err != nil {
		return nil, errors.Wrapf(err, "resolving storage folder %s", folder)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, errors.Wrapf(err, "creating storage folder %s", abs)
	}
	return &LocalFileSystem{Folder: abs}, nil
}

// GetFullPath returns the on-disk path for a storage path.
func (fs *LocalFileSystem) GetFullPath(p string) string {
	fp := p
	if !strings.HasPrefix(p, fs.Folder) {
		fp, _ = filepath.Abs(filepath.Join(fs.Folder, p))
	}
	return fp
}

// Get opens the file at p.
func (fs *LocalFileSystem) Get(p string) (*os.File, error) {
	return os.Open(fs.GetFullPath(p))
}

// GetStream opens the file at p as a stream.
func (fs *LocalFileSystem) GetStream(p string) (io.ReadCloser, error) {
	return os.Open(fs.GetFullPath(p))
}

// Put stores the reader's contents at p.
func (fs *LocalFileSystem) Put(p string, r io.Reader) (*oss.Object, error) {
	fp := fs.GetFullPath(p)
	if err := os.MkdirAll(filepath.Dir(fp), 0o755); err != nil {
		return nil, errors.Wrapf(err, "creating directories for %s", p)
	}

	dst, err := os.Create(fp)
	if err != nil {
		return nil, errors.Wrapf(err, "creating %s", p)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, r); err != nil {
		return nil, errors.Wrapf(err, "writing %s", p)
	}
	return &oss.Object{Path: p, Name: filepath.Base(p), StorageInterface: fs}, nil
}

// Delete removes the file at p.
func (fs *LocalFileSystem) Delete(p string) error {
	return os.Remove(fs.GetFullPath(p))
}

// List returns the objects stored under p.
func (fs *LocalFileSystem) List(p string) ([]*oss.Object, error) {
	var objects []*oss.Object
	root := fs.GetFullPath(p)

	err := filepath.Walk(root, func(fp string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(fs.Folder, fp)
		if err != nil {
			return err
		}
		mod := info.ModTime()
		objects = append(objects, &oss.Object{
			Path:             filepath.ToSlash(rel),
			Name:             info.Name(),
			LastModified:     &mod,
			StorageInterface: fs,
		})
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "listing %s", p)
	}

	sort.Slice(objects, func(i, j int) bool { return objects[i].Path < objects[j].Path })
	return objects, nil
}

// GetEndpoint returns the backend's endpoint.
func (fs *LocalFileSystem) GetEndpoint() string {
	return "/"
}

// GetURL returns a file URL for the object at p.
func (fs *LocalFileSystem) GetURL(p string) (string, error) {
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(fs.GetFullPath(p))}
	return u.String(), nil
}
