// Package thumbcache manages the on-disk thumbnail cache. Thumbnails live
// in one subdirectory per size level, named <imgid>.<ext>.
package thumbcache

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/mesh-intelligence/styles/pkg/types"
)

// Cache implements types.ThumbnailCache over a directory tree.
type Cache struct {
	dir string
}

var _ types.ThumbnailCache = (*Cache)(nil)

// New returns a cache rooted at dir. The directory need not exist.
func New(dir string) *Cache {
	return &Cache{dir: dir}
}

// Dir returns the cache root.
func (c *Cache) Dir() string { return c.dir }

// Invalidate removes every cached thumbnail of imgid at every size level.
func (c *Cache) Invalidate(imgid int64) error {
	matches, err := c.files(imgid)
	if err != nil {
		return err
	}
	var errs []error
	for _, m := range matches {
		if err := os.Remove(m); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Put stores a thumbnail for imgid at the given level.
func (c *Cache) Put(level int, imgid int64, ext string, data []byte) error {
	dir := filepath.Join(c.dir, strconv.Itoa(level))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating cache level: %w", err)
	}
	name := strconv.FormatInt(imgid, 10) + "." + ext
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		return fmt.Errorf("writing thumbnail: %w", err)
	}
	return nil
}

// Has reports whether any thumbnail of imgid is cached.
func (c *Cache) Has(imgid int64) (bool, error) {
	matches, err := c.files(imgid)
	return len(matches) > 0, err
}

func (c *Cache) files(imgid int64) ([]string, error) {
	pattern := filepath.Join(glob(c.dir), "*", strconv.FormatInt(imgid, 10)+".*")
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("listing thumbnails: %w", err)
	}
	return matches, nil
}

// glob escapes the pattern metacharacters in a literal path.
func glob(path string) string {
	out := make([]byte, 0, len(path))
	for i := 0; i < len(path); i++ {
		switch path[i] {
		case '*', '?', '[', '\\':
			if filepath.Separator != '\\' || path[i] != '\\' {
				out = append(out, '\\')
			}
		}
		out = append(out, path[i])
	}
	return string(out)
}
