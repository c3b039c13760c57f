// Package fs stores uploaded assets as files under a base directory, served
// publicly under a URL prefix (by default /uploads, matching the static
// route the server mounts).
package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/blogcms/blogcms/pkg/blogcms"
)

// Config options for the filesystem asset store
type Config struct {
	BaseDir   string // Base directory for storing files
	URLPrefix string // Public path prefix assets are served under
}

// Store is a filesystem implementation of the blogcms.AssetStore interface
type Store struct {
	baseDir   string
	urlPrefix string
}

// New creates a new filesystem asset store, creating the base directory if
// needed.
func New(config Config) (*Store, error) {
	if config.BaseDir == "" {
		return nil, errors.New("base directory is required")
	}
	if config.URLPrefix == "" {
		config.URLPrefix = "/uploads"
	}
	if !strings.HasPrefix(config.URLPrefix, "/") {
		config.URLPrefix = "/" + config.URLPrefix
	}

	if err := os.MkdirAll(config.BaseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	return &Store{
		baseDir:   config.BaseDir,
		urlPrefix: strings.TrimSuffix(config.URLPrefix, "/"),
	}, nil
}

// BaseDir returns the directory assets are written to, for static serving.
func (s *Store) BaseDir() string {
	return s.baseDir
}

// Save writes the reader's content to a file named after key and returns the
// public reference.
func (s *Store) Save(ctx context.Context, key string, reader io.Reader) (string, error) {
	name, err := s.fileName(key)
	if err != nil {
		return "", err
	}

	file, err := os.Create(filepath.Join(s.baseDir, name))
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, reader); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return path.Join(s.urlPrefix, name), nil
}

// Delete removes the file for ref.
func (s *Store) Delete(ctx context.Context, ref string) error {
	filePath, err := s.filePath(ref)
	if err != nil {
		return err
	}

	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return blogcms.ErrAssetNotFound
	}

	if err := os.Remove(filePath); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}

	return nil
}

// Exists reports whether a file exists for ref.
func (s *Store) Exists(ctx context.Context, ref string) (bool, error) {
	filePath, err := s.filePath(ref)
	if err != nil {
		return false, err
	}

	if _, err := os.Stat(filePath); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat file: %w", err)
	}

	return true, nil
}

// Open returns the file content for ref.
func (s *Store) Open(ctx context.Context, ref string) (io.ReadCloser, error) {
	filePath, err := s.filePath(ref)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, blogcms.ErrAssetNotFound
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	return file, nil
}

// filePath resolves a public reference back to a path under baseDir.
func (s *Store) filePath(ref string) (string, error) {
	name := strings.TrimPrefix(ref, s.urlPrefix+"/")
	if name == ref {
		return "", fmt.Errorf("reference %q is outside prefix %s", ref, s.urlPrefix)
	}
	name, err := s.fileName(name)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.baseDir, name), nil
}

// fileName rejects keys that would escape the base directory. Generated
// keys are flat, so any separator or dot-dot is hostile input.
func (s *Store) fileName(key string) (string, error) {
	if key == "" || key == "." || key == ".." ||
		strings.ContainsAny(key, `/\`) {
		return "", fmt.Errorf("invalid asset key %q", key)
	}
	return key, nil
}
