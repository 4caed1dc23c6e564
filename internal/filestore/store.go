// Package filestore writes synthesized audio into a local directory.
package filestore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const (
	dirPermissions  = 0o750
	filePermissions = 0o600
)

var (
	// ErrEmptyDir is returned when the store has no target directory.
	ErrEmptyDir = errors.New("output directory cannot be empty")
	// ErrInvalidName is returned for names that would escape the output directory.
	ErrInvalidName = errors.New("audio file name must be a plain file name")
)

// Store saves audio files under one directory, replacing existing files.
type Store struct {
	dir string
}

// New returns a store rooted at dir. The directory is created on first save.
func New(dir string) (*Store, error) {
	if dir == "" {
		return nil, ErrEmptyDir
	}

	return &Store{dir: dir}, nil
}

// Dir returns the output directory.
func (s *Store) Dir() string {
	return s.dir
}

// Save writes audio to <dir>/<name> and returns the written path.
func (s *Store) Save(ctx context.Context, name string, audio []byte) (string, error) {
	err := ctx.Err()
	if err != nil {
		return "", fmt.Errorf("save %s: %w", name, err)
	}

	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	err = os.MkdirAll(s.dir, dirPermissions)
	if err != nil {
		return "", fmt.Errorf("failed to create output directory %s: %w", s.dir, err)
	}

	path := filepath.Join(s.dir, name)

	err = os.WriteFile(path, audio, filePermissions)
	if err != nil {
		return "", fmt.Errorf("failed to write audio file %s: %w", path, err)
	}

	return path, nil
}
