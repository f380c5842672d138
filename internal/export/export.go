// Package export writes the editor's current body text to a user-chosen file.
package export

import (
	"fmt"
	"log/slog"

	"github.com/starford/simplenotes/internal/session"
	"github.com/starford/simplenotes/internal/storage"
)

// Chooser asks for a destination path, offering suggested as the default
// file name. ok is false when the user cancels.
type Chooser func(suggested string) (path string, ok bool)

// Exporter performs one-shot plain-text exports.
type Exporter struct {
	logger *slog.Logger
}

// New creates an Exporter that reports write failures to logger.
func New(logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{logger: logger}
}

// SuggestedName is the default export file name for a note title.
func SuggestedName(title string) string {
	return title + ".txt"
}

// Export writes content to the path returned by choose. Nothing happens
// when there is no current note or when choose is cancelled; in both cases
// the returned path is empty. An existing file at the destination is
// overwritten and keeps its permissions; a missing destination directory
// is a write failure. Write failures are logged and returned.
func (e *Exporter) Export(currentTitle string, hasCurrent bool, content string, choose Chooser) (string, error) {
	if !hasCurrent {
		return "", nil
	}
	path, ok := choose(SuggestedName(currentTitle))
	if !ok || path == "" {
		return "", nil
	}
	if err := storage.ReplaceFile(path, []byte(content)); err != nil {
		e.logger.Error("failed to export note",
			slog.String("title", currentTitle),
			slog.String("path", path),
			slog.String("error", err.Error()))
		return "", fmt.Errorf("export: %w", err)
	}
	e.logger.Info("note exported", slog.String("title", currentTitle), slog.String("path", path))
	return path, nil
}

// Session exports the live content field of sess, whether or not it has
// been saved.
func (e *Exporter) Session(sess *session.Session, choose Chooser) (string, error) {
	current, ok := sess.Current()
	_, content := sess.Fields()
	return e.Export(current, ok, content, choose)
}

// InDir returns a Chooser that places rel inside dir. An empty rel cancels
// the export. Paths escaping dir are rejected up front.
func InDir(dir *storage.Dir, rel string) (Chooser, error) {
	if rel == "" {
		return func(string) (string, bool) { return "", false }, nil
	}
	path, err := dir.Resolve(rel)
	if err != nil {
		return nil, err
	}
	return func(string) (string, bool) { return path, true }, nil
}
