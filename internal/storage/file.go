package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// File implements Provider backed by one file on the local file system.
type File struct {
	path string // absolute
}

// NewFile creates a File provider for path. The file itself does not need
// to exist yet; its parent directory is created on first write.
func NewFile(path string) (*File, error) {
	if path == "" {
		return nil, fmt.Errorf("storage: empty file path")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve path: %w", err)
	}
	if info, err := os.Stat(abs); err == nil && info.IsDir() {
		return nil, fmt.Errorf("storage: path is a directory: %s", abs)
	}
	return &File{path: abs}, nil
}

// Path returns the absolute path of the file.
func (f *File) Path() string {
	return f.path
}

// Read returns the file contents.
func (f *File) Read() ([]byte, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", f.path, err)
	}
	return data, nil
}

// Write atomically replaces the file contents.
func (f *File) Write(content []byte) error {
	return WriteFile(f.path, content)
}

// WriteFile atomically writes content to path: tmp file → fsync → rename.
// Missing parent directories are created and the file gets mode 0644.
// An existing file at path is replaced.
func WriteFile(path string, content []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("storage: mkdir: %w", err)
	}
	return writeAtomic(path, content, 0o644)
}

// ReplaceFile atomically writes content to path like a plain overwrite
// would: the parent directory must already exist, and an existing file
// keeps its permission bits. New files get mode 0644.
func ReplaceFile(path string, content []byte) error {
	mode := os.FileMode(0o644)
	info, err := os.Stat(path)
	switch {
	case err == nil && info.IsDir():
		return fmt.Errorf("storage: %s is a directory", path)
	case err == nil:
		mode = info.Mode().Perm()
	case !errors.Is(err, os.ErrNotExist):
		return fmt.Errorf("storage: stat: %w", err)
	}
	return writeAtomic(path, content, mode)
}

func writeAtomic(path string, content []byte, mode os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".simplenotes-tmp-*")
	if err != nil {
		return fmt.Errorf("storage: create temp: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("storage: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("storage: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close temp: %w", err)
	}
	if err := os.Chmod(tmpName, mode); err != nil {
		return fmt.Errorf("storage: chmod: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("storage: rename: %w", err)
	}
	success = true
	return nil
}
