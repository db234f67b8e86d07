// Package images stores trip photos on disk and serves reads through a
// byte-bounded LRU cache. Incoming JPEGs are normalized (orientation baked
// in, oversized pixels downsampled) before they hit the disk.
package images

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/mkowalczyk/triplog/internal/cache"
	"github.com/mkowalczyk/triplog/internal/domain"
)

// MaxDimension is the largest stored width or height in pixels. Uploads
// larger than this are downsampled by powers of two.
const MaxDimension = 2048

// Store persists image files under a single directory.
type Store struct {
	dir   string
	cache *cache.LRU
}

// NewStore creates the image directory if needed and returns a Store whose
// read path is backed by a cache of cacheBytes.
func NewStore(dir string, cacheBytes int64) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("images.NewStore: %w", err)
	}
	c, err := cache.NewLRU(cacheBytes)
	if err != nil {
		return nil, fmt.Errorf("images.NewStore: %w", err)
	}
	return &Store{dir: dir, cache: c}, nil
}

// Save normalizes and writes data to a new file, returning the generated
// file name to persist alongside the trip.
func (s *Store) Save(data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("images.Store.Save: empty image: %w", domain.ErrValidation)
	}
	data = Normalize(data, MaxDimension)

	name := uuid.NewString() + ".jpg"
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("images.Store.Save: %w", err)
	}
	s.cache.Add(name, data)
	return name, nil
}

// Read returns the bytes of a stored image, consulting the cache first.
func (s *Store) Read(name string) ([]byte, error) {
	if err := validName(name); err != nil {
		return nil, err
	}
	if data, ok := s.cache.Get(name); ok {
		return data, nil
	}

	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("images.Store.Read: %q: %w", name, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("images.Store.Read: %w", err)
	}
	s.cache.Add(name, data)
	return data, nil
}

// Remove deletes a stored image file and evicts it from the cache.
// A missing file is not an error; the database row is the source of truth.
func (s *Store) Remove(name string) error {
	if err := validName(name); err != nil {
		return err
	}
	s.cache.Remove(name)
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("images.Store.Remove: %w", err)
	}
	return nil
}

// validName rejects anything that could escape the image directory.
func validName(name string) error {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return fmt.Errorf("images: invalid file name %q: %w", name, domain.ErrValidation)
	}
	return nil
}
