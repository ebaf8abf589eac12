// Package store is the root-relative file store backing the update cache.
package store

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644

	// DefaultRoot is the store directory under the user's home.
	DefaultRoot = ".pkgupdate"
)

type Store interface {
	// Root returns the store root directory.
	Root() string
	// Path returns the absolute filesystem path for the given segments
	// joined under the store root. Does not create or verify the path.
	Path(segments ...string) string
	// Exists reports whether the path at the given segments exists.
	Exists(segments ...string) (bool, error)
	// EnsureDir creates the directory at segments (starting at store root),
	// including parents.
	EnsureDir(segments ...string) error
	// Remove deletes the entire tree at segments. Missing paths are not an
	// error.
	Remove(segments ...string) error
	// WriteFile atomically replaces the file at segments with data,
	// creating parent directories as needed.
	WriteFile(data []byte, segments ...string) error
	// ReadFile reads the file at segments.
	ReadFile(segments ...string) ([]byte, error)
}

func New(root string) Store {
	return &store{root: root}
}

// Default returns the store rooted at ~/.pkgupdate.
func Default() (Store, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("determining home directory: %w", err)
	}
	return &store{root: filepath.Join(home, DefaultRoot)}, nil
}

type store struct {
	root string
}

var _ Store = &store{}

func (s *store) Root() string { return s.root }

func (s *store) Path(segments ...string) string {
	return filepath.Join(append([]string{s.root}, segments...)...)
}

func (s *store) Exists(segments ...string) (bool, error) {
	_, err := os.Stat(s.Path(segments...))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

func (s *store) EnsureDir(segments ...string) error {
	if err := os.MkdirAll(s.Path(segments...), dirPerm); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}
	return nil
}

func (s *store) Remove(segments ...string) error {
	if err := os.RemoveAll(s.Path(segments...)); err != nil {
		return fmt.Errorf("removing %s: %w", s.Path(segments...), err)
	}
	return nil
}

func (s *store) WriteFile(data []byte, segments ...string) error {
	target := s.Path(segments...)
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(target)+".*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", target, err)
	}
	if err := tmp.Chmod(filePerm); err != nil {
		tmp.Close()
		return fmt.Errorf("setting permissions on %s: %w", target, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", target, err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return fmt.Errorf("replacing %s: %w", target, err)
	}
	return nil
}

func (s *store) ReadFile(segments ...string) ([]byte, error) {
	return os.ReadFile(s.Path(segments...))
}
