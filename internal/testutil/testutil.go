// Package testutil provides shared test helpers for setting up note stores.
package testutil

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/simplenotes/internal/notestore"
	"github.com/starford/simplenotes/internal/storage"
)

// Logger returns a logger that discards its output.
func Logger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

// TestFile creates a storage.File inside a temporary directory. The file
// itself is not created.
func TestFile(t *testing.T) *storage.File {
	t.Helper()
	f, err := storage.NewFile(filepath.Join(t.TempDir(), "simplenotes.json"))
	if err != nil {
		t.Fatal(err)
	}
	return f
}

// TestStore loads an empty store backed by a temporary file.
func TestStore(t *testing.T) (*notestore.Store, *storage.File) {
	t.Helper()
	f := TestFile(t)
	return notestore.Load(f, notestore.WithLogger(Logger())), f
}

// ErrWriteFailed is returned by FailingFile writes.
var ErrWriteFailed = errors.New("disk full")

// FailingFile is a storage.Provider whose writes always fail and whose
// reads return Data (or os.ErrNotExist semantics when Data is nil).
type FailingFile struct {
	Data   []byte
	Writes int
}

// Path implements storage.Provider.
func (f *FailingFile) Path() string { return "/nonexistent/simplenotes.json" }

// Read implements storage.Provider.
func (f *FailingFile) Read() ([]byte, error) {
	if f.Data == nil {
		return nil, fmt.Errorf("read %s: %w", f.Path(), os.ErrNotExist)
	}
	return f.Data, nil
}

// Write implements storage.Provider.
func (f *FailingFile) Write([]byte) error {
	f.Writes++
	return ErrWriteFailed
}
