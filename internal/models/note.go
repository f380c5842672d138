// Package models defines the domain types for simplenotes.
package models

// Note is a single titled plain-text note. The title is its identity.
type Note struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}
