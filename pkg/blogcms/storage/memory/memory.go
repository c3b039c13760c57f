package memory

import (
	"bytes"
	"context"
	"io"
	"path"
	"sync"

	"github.com/blogcms/blogcms/pkg/blogcms"
)

const defaultURLPrefix = "/uploads"

// Store is an in-memory implementation of the blogcms.AssetStore interface,
// used for tests and development.
type Store struct {
	mu        sync.RWMutex
	urlPrefix string
	assets    map[string][]byte
}

// New creates a new in-memory asset store.
func New() *Store {
	return &Store{
		urlPrefix: defaultURLPrefix,
		assets:    make(map[string][]byte),
	}
}

// Save stores the reader's content under key and returns its public
// reference.
func (s *Store) Save(ctx context.Context, key string, reader io.Reader) (string, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}

	ref := path.Join(s.urlPrefix, key)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.assets[ref] = data

	return ref, nil
}

// Delete removes the asset for ref.
func (s *Store) Delete(ctx context.Context, ref string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.assets[ref]; !exists {
		return blogcms.ErrAssetNotFound
	}

	delete(s.assets, ref)
	return nil
}

// Exists reports whether an asset exists for ref.
func (s *Store) Exists(ctx context.Context, ref string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, exists := s.assets[ref]
	return exists, nil
}

// Open returns the asset content for ref.
func (s *Store) Open(ctx context.Context, ref string) (io.ReadCloser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, exists := s.assets[ref]
	if !exists {
		return nil, blogcms.ErrAssetNotFound
	}

	return io.NopCloser(bytes.NewReader(data)), nil
}

// Len reports the number of stored assets.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.assets)
}
