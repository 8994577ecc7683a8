package local

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/dev-tams/sweepkit/internal/storage/object"
)

// Store maps a directory tree onto the ObjectStore contract. Keys are
// slash-separated paths relative to the base directory. Mainly useful for
// development and tests; a sweep against it behaves like a sweep against a
// real bucket.
type Store struct {
	base string
}

func New(basePath string) *Store {
	return &Store{base: basePath}
}

func (s *Store) Name() string { return "local" }

// List walks the whole tree and keeps keys with the given prefix. Object
// stores match prefixes against raw key strings, not path components, so a
// prefix of "im" matches "img/a.png".
func (s *Store) List(_ context.Context, prefix string) ([]object.Info, error) {
	var out []object.Info

	err := filepath.WalkDir(s.base, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(s.base, p)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if prefix != "" && !strings.HasPrefix(key, prefix) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		out = append(out, object.Info{
			Key:     key,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", s.base, err)
	}
	return out, nil
}

func (s *Store) Delete(_ context.Context, key string) error {
	p := filepath.Join(s.base, filepath.FromSlash(key))
	if err := os.Remove(p); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}
