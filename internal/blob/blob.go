// Package blob stores uploaded media on local disk.
package blob

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterbourgon/diskv/v3"

	"github.com/tripnest/backend/internal/domain"
)

const sep = "/"

// Store keeps blobs under a base directory. A key "videos/<user>/<id>"
// maps to the file <base>/videos/<user>/<id>.
type Store struct {
	d    *diskv.Diskv
	base string
}

// New opens a store rooted at basePath. Blobs are streamed and never cached
// in memory.
func New(basePath string) *Store {
	return &Store{
		d: diskv.New(diskv.Options{
			BasePath:          basePath,
			AdvancedTransform: keyToPath,
			InverseTransform:  pathToKey,
			CacheSizeMax:      0,
		}),
		base: basePath,
	}
}

// Key joins parts into a store key. Parts must be non-empty and must not
// contain path separators or dot segments.
func Key(parts ...string) (string, error) {
	if len(parts) == 0 {
		return "", fmt.Errorf("%w: empty blob key", domain.ErrValidation)
	}
	for _, p := range parts {
		if p == "" || p == "." || p == ".." || strings.ContainsAny(p, `/\`) {
			return "", fmt.Errorf("%w: invalid blob key segment %q", domain.ErrValidation, p)
		}
	}
	return strings.Join(parts, sep), nil
}

// Put writes r under key, replacing any previous content, and returns the
// number of bytes stored.
func (s *Store) Put(key string, r io.Reader) (int64, error) {
	cr := &countingReader{r: r}
	if err := s.d.WriteStream(key, cr, true); err != nil {
		return cr.n, fmt.Errorf("blob.Store.Put: %w", err)
	}
	return cr.n, nil
}

// Open returns the stored file for key. The file is seekable, so callers can
// serve byte ranges. The caller closes it.
//
// diskv's ReadStream wraps the file in a reader that neither seeks nor
// closes it, so Open resolves the path itself.
func (s *Store) Open(key string) (io.ReadSeekCloser, error) {
	pk := keyToPath(key)
	path := filepath.Join(append(append([]string{s.base}, pk.Path...), pk.FileName)...)
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("blob.Store.Open: %w", err)
	}
	return f, nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *Store) Delete(key string) error {
	if err := s.d.Erase(key); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("blob.Store.Delete: %w", err)
	}
	return nil
}

func (s *Store) Has(key string) bool {
	return s.d.Has(key)
}

func keyToPath(key string) *diskv.PathKey {
	parts := strings.Split(key, sep)
	return &diskv.PathKey{
		Path:     parts[:len(parts)-1],
		FileName: parts[len(parts)-1],
	}
}

func pathToKey(pk *diskv.PathKey) string {
	if len(pk.Path) == 0 {
		return pk.FileName
	}
	return strings.Join(pk.Path, sep) + sep + pk.FileName
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
