// Package notestore holds the authoritative title → content mapping and keeps
// it synchronized with the JSON persistence file.
package notestore

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/starford/simplenotes/internal/checksum"
	"github.com/starford/simplenotes/internal/models"
	"github.com/starford/simplenotes/internal/storage"
)

// Store event kinds passed to EventCallback.
const (
	EventLoaded        = "loaded"
	EventSaved         = "saved"
	EventDeleted       = "deleted"
	EventChangedOnDisk = "changed_on_disk"
)

// EventCallback is called after the store changes. For EventLoaded and
// EventChangedOnDisk, title is the path of the notes file.
type EventCallback func(kind, title string)

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the diagnostic logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithCallback registers cb to be called after every mutation.
func WithCallback(cb EventCallback) Option {
	return func(s *Store) {
		s.callbacks = append(s.callbacks, cb)
	}
}

// Store is an insertion-ordered mapping of note titles to content, persisted
// to a single JSON file after every mutation.
type Store struct {
	mu        sync.RWMutex
	notes     *orderedmap.OrderedMap[string, string]
	file      storage.Provider
	logger    *slog.Logger
	lastSum   string // checksum of the bytes last read from or written to file
	callbacks []EventCallback
}

// Load reads the persistence file and returns a populated store. It never
// fails: a missing file yields an empty store, and an unreadable or
// malformed file yields an empty store plus a logged diagnostic.
func Load(file storage.Provider, opts ...Option) *Store {
	s := &Store{
		notes: orderedmap.New[string, string](),
		file:  file,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	data, err := file.Read()
	switch {
	case errors.Is(err, os.ErrNotExist):
		s.logger.Debug("notes file not found, starting empty", slog.String("path", file.Path()))
		return s
	case err != nil:
		s.logger.Error("failed to load notes", slog.String("path", file.Path()), slog.String("error", err.Error()))
		return s
	}

	notes, err := decode(data)
	if err != nil {
		s.logger.Error("failed to load notes",
			slog.String("path", file.Path()),
			slog.String("error", err.Error()))
		return s
	}
	for pair := notes.Oldest(); pair != nil; pair = pair.Next() {
		if !validTitle(pair.Key) {
			s.logger.Warn("skipping note with invalid title", slog.String("title", pair.Key))
			continue
		}
		s.notes.Set(pair.Key, pair.Value)
	}
	s.lastSum = checksum.Sum(data)

	s.logger.Info("notes loaded",
		slog.String("path", file.Path()),
		slog.Int("count", s.notes.Len()))
	s.emit(EventLoaded, file.Path())
	return s
}

// Save inserts or overwrites the note for title and persists the store.
// A title that is empty after trimming is silently ignored. The returned
// error is the persist failure, if any; the in-memory store keeps the new
// content either way.
func (s *Store) Save(title, content string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil
	}

	s.mu.Lock()
	s.notes.Set(title, content)
	err := s.persistLocked()
	s.mu.Unlock()

	s.emit(EventSaved, title)
	return err
}

// Delete removes the note for title and persists the store. Deleting a
// title that is not present is a no-op.
func (s *Store) Delete(title string) error {
	s.mu.Lock()
	if _, ok := s.notes.Delete(title); !ok {
		s.mu.Unlock()
		return nil
	}
	err := s.persistLocked()
	s.mu.Unlock()

	s.emit(EventDeleted, title)
	return err
}

// Persist writes the full mapping to the file, overwriting it. Failures are
// logged and returned; the in-memory store is left unchanged.
func (s *Store) Persist() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persistLocked()
}

func (s *Store) persistLocked() error {
	data := encode(s.notes)
	if err := s.file.Write(data); err != nil {
		s.logger.Error("failed to save notes",
			slog.String("path", s.file.Path()),
			slog.String("error", err.Error()))
		return fmt.Errorf("notestore: persist: %w", err)
	}
	s.lastSum = checksum.Sum(data)
	s.logger.Debug("notes persisted",
		slog.String("path", s.file.Path()),
		slog.Int("count", s.notes.Len()))
	return nil
}

// Titles returns the note titles in insertion order.
func (s *Store) Titles() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, s.notes.Len())
	for pair := s.notes.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Key)
	}
	return out
}

// Get returns the content for title and whether it exists.
func (s *Store) Get(title string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.notes.Get(title)
}

// Notes returns a snapshot of every note in insertion order.
func (s *Store) Notes() []models.Note {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Note, 0, s.notes.Len())
	for pair := s.notes.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, models.Note{Title: pair.Key, Content: pair.Value})
	}
	return out
}

// Len returns the number of notes.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.notes.Len()
}

// Path returns the path of the persistence file.
func (s *Store) Path() string {
	return s.file.Path()
}

// LastChecksum returns the checksum of the file contents this store last
// read or wrote, or "" if it has done neither.
func (s *Store) LastChecksum() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSum
}

func (s *Store) emit(kind, title string) {
	for _, cb := range s.callbacks {
		cb(kind, title)
	}
}

func validTitle(title string) bool {
	return title != "" && strings.TrimSpace(title) == title
}

func decode(data []byte) (*orderedmap.OrderedMap[string, string], error) {
	notes := orderedmap.New[string, string]()
	if err := json.Unmarshal(data, notes); err != nil {
		return nil, fmt.Errorf("notestore: decode: %w", err)
	}
	return notes, nil
}

// encode renders notes as a JSON object with four-space indentation and
// no escaping beyond what JSON requires, keys in insertion order. Invalid
// UTF-8 is written as U+FFFD.
func encode(notes *orderedmap.OrderedMap[string, string]) []byte {
	if notes.Len() == 0 {
		return []byte("{}")
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	for pair := notes.Oldest(); pair != nil; pair = pair.Next() {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		buf.WriteString("\n    ")
		writeString(&buf, pair.Key)
		buf.WriteString(": ")
		writeString(&buf, pair.Value)
	}
	buf.WriteString("\n}")
	return buf.Bytes()
}

func writeString(buf *bytes.Buffer, s string) {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s) // strings always encode
	buf.Write(unescapeLineSeparators(bytes.TrimSuffix(tmp.Bytes(), []byte("\n"))))
}

// unescapeLineSeparators turns the \u2028 and \u2029 escapes that
// encoding/json always emits back into raw characters. Escapes are walked
// pairwise so an escaped backslash followed by "u2028" is left alone.
func unescapeLineSeparators(b []byte) []byte {
	if !bytes.Contains(b, []byte(`\u202`)) {
		return b
	}
	out := make([]byte, 0, len(b))
	for i := 0; i < len(b); i++ {
		if b[i] != '\\' || i+1 >= len(b) {
			out = append(out, b[i])
			continue
		}
		if b[i+1] == 'u' && i+6 <= len(b) {
			switch string(b[i+2 : i+6]) {
			case "2028":
				out = append(out, "\u2028"...)
				i += 5
				continue
			case "2029":
				out = append(out, "\u2029"...)
				i += 5
				continue
			}
		}
		out = append(out, b[i], b[i+1])
		i++
	}
	return out
}
