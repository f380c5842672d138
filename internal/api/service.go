package api

import (
	"fmt"
	"sync"

	"github.com/starford/simplenotes/internal/apperr"
	"github.com/starford/simplenotes/internal/export"
	"github.com/starford/simplenotes/internal/models"
	"github.com/starford/simplenotes/internal/session"
	"github.com/starford/simplenotes/internal/sidebar"
	"github.com/starford/simplenotes/internal/storage"
)

// Service runs editor commands against one shared session. HTTP requests
// arrive concurrently, so every command holds mu for its whole duration.
type Service struct {
	mu       sync.Mutex
	sess     *session.Session
	exporter *export.Exporter
	exports  *storage.Dir
}

// NewService creates a Service. Export destinations are resolved inside
// exports.
func NewService(sess *session.Session, exporter *export.Exporter, exports *storage.Dir) *Service {
	return &Service{sess: sess, exporter: exporter, exports: exports}
}

// Sidebar lists the notes in insertion order, marking the current one.
func (s *Service) Sidebar() []NoteListItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := sidebar.Entries(s.sess)
	out := make([]NoteListItem, 0, len(entries))
	for _, e := range entries {
		out = append(out, NoteListItem{Title: e.Title, Current: e.Current})
	}
	return out
}

// GetNote returns the stored note for title.
func (s *Service) GetNote(title string) (models.Note, error) {
	content, ok := s.sess.Store().Get(title)
	if !ok {
		return models.Note{}, fmt.Errorf("note %q: %w", title, apperr.ErrNotFound)
	}
	return models.Note{Title: title, Content: content}, nil
}

// State returns a snapshot of the editor session.
func (s *Service) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

// Save saves the given field values. saved is false when the title is blank.
func (s *Service) Save(title, content string) (SessionState, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sess.SetFields(title, content)
	saved, err := s.sess.SaveCurrent(title, content)
	return s.stateLocked(), saved, err
}

// New resets the editor.
func (s *Service) New() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sess.StartNew()
	return s.stateLocked()
}

// Open loads title into the editor.
func (s *Service) Open(title string) SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sess.Open(title)
	return s.stateLocked()
}

// Delete removes title, resetting the editor if it was current.
func (s *Service) Delete(title string) (SessionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.sess.DeleteByTitle(title)
	return s.stateLocked(), err
}

// Export writes content (or the live content field when content is nil) to
// rel inside the export directory. An empty rel cancels. The returned path
// is empty when nothing was written.
func (s *Service) Export(content *string, rel string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	choose, err := export.InDir(s.exports, rel)
	if err != nil {
		return "", err
	}
	current, ok := s.sess.Current()
	body := ""
	if content != nil {
		body = *content
	} else {
		_, body = s.sess.Fields()
	}
	return s.exporter.Export(current, ok, body, choose)
}

func (s *Service) stateLocked() SessionState {
	title, content := s.sess.Fields()
	st := SessionState{Title: title, Content: content}
	if current, ok := s.sess.Current(); ok {
		st.CurrentTitle = &current
	}
	return st
}
