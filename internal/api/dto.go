package api

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const maxDestinationLen = 1024

// NoteListItem is one sidebar row.
type NoteListItem struct {
	Title   string `json:"title" example:"Groceries" validate:"required"`
	Current bool   `json:"current" example:"false"`
}

// NoteListResponse wraps the sidebar listing.
type NoteListResponse struct {
	Notes []NoteListItem `json:"notes" validate:"required"`
}

// SessionState describes the editor. CurrentTitle is omitted when no note
// is loaded.
type SessionState struct {
	CurrentTitle *string `json:"current_title,omitempty" example:"Groceries"`
	Title        string  `json:"title" example:"Groceries"`
	Content      string  `json:"content" example:"milk, eggs"`
}

// SaveResponse is returned by the save command.
type SaveResponse struct {
	Saved   bool         `json:"saved"`
	Session SessionState `json:"session"`
}

// ExportResponse is returned by the export command. Path is empty when the
// export was cancelled or there was no current note.
type ExportResponse struct {
	Exported bool   `json:"exported"`
	Path     string `json:"path,omitempty"`
}

// SaveRequest carries the raw editor fields. A blank title is not an
// error; the save is simply ignored.
type SaveRequest struct {
	Title   string `json:"title" example:"Groceries"`
	Content string `json:"content" example:"milk, eggs"`
}

// OpenRequest names the note to load.
type OpenRequest struct {
	Title string `json:"title" example:"Groceries" validate:"required"`
}

// Validate validates the open request.
func (r *OpenRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Title, validation.Required),
	)
}

// ExportRequest names the destination relative to the export directory.
// An empty destination cancels. A nil Content exports the live content
// field of the session.
type ExportRequest struct {
	Content     *string `json:"content,omitempty" example:"milk, eggs"`
	Destination string  `json:"destination" example:"Groceries.txt"`
}

// Validate validates the export request.
func (r *ExportRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Destination, validation.Length(0, maxDestinationLen)),
	)
}
