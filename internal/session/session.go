// Package session tracks the note open in the editor and mediates between
// raw editor field values and the note store.
package session

import (
	"strings"

	"github.com/starford/simplenotes/internal/notestore"
)

// Session is the transient editor state. It is never persisted.
//
// The editor is in exactly one of two states: no note loaded, or the note
// titled Current loaded. StartNew, Open and SaveCurrent move between them.
type Session struct {
	store *notestore.Store

	current    string
	hasCurrent bool

	title   string
	content string

	onChange []func()
}

// New returns an empty session over store.
func New(store *notestore.Store) *Session {
	return &Session{store: store}
}

// OnChange registers fn to be called whenever the store's key set may have
// changed through this session (after a save or delete).
func (s *Session) OnChange(fn func()) {
	s.onChange = append(s.onChange, fn)
}

// Store returns the underlying note store.
func (s *Session) Store() *notestore.Store {
	return s.store
}

// Current returns the title of the loaded note, if any. The title may be
// stale when the note was deleted through another session.
func (s *Session) Current() (string, bool) {
	return s.current, s.hasCurrent
}

// Fields returns the live title and content field values.
func (s *Session) Fields() (title, content string) {
	return s.title, s.content
}

// SetFields records the live field values without saving them.
func (s *Session) SetFields(title, content string) {
	s.title = title
	s.content = content
}

// SaveCurrent saves the given field values as a note. A title that is empty
// after trimming is ignored and reports false. Otherwise the trimmed title
// becomes the current note and true is returned together with any persist
// error from the store.
func (s *Session) SaveCurrent(titleField, contentField string) (bool, error) {
	title := strings.TrimSpace(titleField)
	if title == "" {
		return false, nil
	}
	err := s.store.Save(title, contentField)
	s.current, s.hasCurrent = title, true
	s.title, s.content = title, contentField
	s.notify()
	return true, err
}

// StartNew clears the current note and both fields.
func (s *Session) StartNew() {
	s.current, s.hasCurrent = "", false
	s.title, s.content = "", ""
}

// Open loads title into the editor. A title missing from the store opens
// with empty content.
func (s *Session) Open(title string) {
	content, _ := s.store.Get(title)
	s.current, s.hasCurrent = title, true
	s.title, s.content = title, content
}

// DeleteByTitle deletes title from the store. If it is the current note the
// editor is reset, so a deleted note's content is never left on screen.
func (s *Session) DeleteByTitle(title string) error {
	err := s.store.Delete(title)
	if s.hasCurrent && s.current == title {
		s.StartNew()
	}
	s.notify()
	return err
}

func (s *Session) notify() {
	for _, fn := range s.onChange {
		fn()
	}
}
