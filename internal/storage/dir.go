package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/starford/simplenotes/internal/apperr"
)

// Dir is a directory that confines relative paths to itself. Exports
// requested by remote shells resolve their destination through it.
type Dir struct {
	root string // absolute
}

// NewDir creates a Dir rooted at root, creating the directory if needed.
func NewDir(root string) (*Dir, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: root is not a directory: %s", abs)
	}
	return &Dir{root: abs}, nil
}

// Root returns the absolute root directory.
func (d *Dir) Root() string {
	return d.root
}

// Resolve joins rel onto the root and rejects any result that escapes it.
func (d *Dir) Resolve(rel string) (string, error) {
	if rel == "" {
		return "", fmt.Errorf("storage: empty path: %w", apperr.ErrInvalidPath)
	}
	cleaned := filepath.Clean(rel)
	if filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("storage: absolute paths not allowed: %s: %w", rel, apperr.ErrInvalidPath)
	}
	abs, err := filepath.Abs(filepath.Join(d.root, cleaned))
	if err != nil {
		return "", fmt.Errorf("storage: resolve path: %w", err)
	}
	inside, err := filepath.Rel(d.root, abs)
	if err != nil || inside == "." || inside == ".." || strings.HasPrefix(inside, ".."+string(os.PathSeparator)) {
		return "", fmt.Errorf("storage: path escapes root: %s: %w", rel, apperr.ErrInvalidPath)
	}
	return abs, nil
}
