// Package sidebar projects the note store into selectable, deletable rows.
package sidebar

import "github.com/starford/simplenotes/internal/session"

// Entry is one sidebar row. Each row carries its own title, so the actions
// never depend on the loop that built them.
type Entry struct {
	Title    string
	Current  bool
	OnSelect func()
	OnDelete func() error
}

// Entries derives the rows for sess's store in insertion order. Call it on
// every render; it keeps no state of its own.
func Entries(sess *session.Session) []Entry {
	titles := sess.Store().Titles()
	current, hasCurrent := sess.Current()

	out := make([]Entry, 0, len(titles))
	for _, title := range titles {
		out = append(out, newEntry(sess, title, hasCurrent && title == current))
	}
	return out
}

func newEntry(sess *session.Session, title string, current bool) Entry {
	return Entry{
		Title:    title,
		Current:  current,
		OnSelect: func() { sess.Open(title) },
		OnDelete: func() error { return sess.DeleteByTitle(title) },
	}
}

// Titles returns just the row titles.
func Titles(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Title
	}
	return out
}
