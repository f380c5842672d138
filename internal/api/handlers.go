package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/simplenotes/internal/apperr"
)

const maxBodyBytes = 10 << 20

// Handler holds API route handlers.
type Handler struct {
	svc *Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

const notesPrefix = "/notes/"

// noteTitle extracts the note title from the URL (everything after
// /api/notes/). Titles are free text and may contain "/" or "%", so the
// escaped path is decoded exactly once. chi's wildcard is unusable here: it
// is already decoded whenever the escaped form is Go's default encoding.
func noteTitle(r *http.Request) string {
	escaped := r.URL.EscapedPath()
	i := strings.Index(escaped, notesPrefix)
	if i < 0 {
		return ""
	}
	raw := escaped[i+len(notesPrefix):]
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return ""
	}
	return decoded
}

// decodeBody decodes a JSON request body into v and validates it when v
// implements validation.Validatable. It writes the 400 response itself and
// reports whether the handler should continue.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return false
	}
	if vv, ok := v.(validation.Validatable); ok {
		if err := vv.Validate(); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
			return false
		}
	}
	return true
}

// ListNotes handles GET /api/notes.
//
//	@Summary		List note titles in insertion order
//	@Tags			notes
//	@Produce		json
//	@Success		200		{object}	NoteListResponse
//	@Security		BearerAuth
//	@Router			/notes [get]
func (h *Handler) ListNotes(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, NoteListResponse{Notes: h.svc.Sidebar()})
}

// GetNote handles GET /api/notes/*.
//
//	@Summary		Get a single note by title
//	@Tags			notes
//	@Produce		json
//	@Param			title	path		string	true	"Note title"
//	@Success		200		{object}	models.Note
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{title} [get]
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	title := noteTitle(r)
	if title == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("title is required"))
		return
	}
	note, err := h.svc.GetNote(title)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("get note failed", slog.String("title", title), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// DeleteNote handles DELETE /api/notes/*. Deleting a missing title
// succeeds.
//
//	@Summary		Delete a note
//	@Tags			notes
//	@Param			title	path	string	true	"Note title"
//	@Success		200		{object}	SessionState
//	@Failure		500		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{title} [delete]
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	title := noteTitle(r)
	if title == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("title is required"))
		return
	}
	state, err := h.svc.Delete(title)
	if err != nil {
		slog.Error("delete note failed", slog.String("title", title), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("failed to persist notes"))
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// GetSession handles GET /api/session.
//
//	@Summary		Get the editor state
//	@Tags			session
//	@Produce		json
//	@Success		200	{object}	SessionState
//	@Security		BearerAuth
//	@Router			/session [get]
func (h *Handler) GetSession(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.State())
}

// SaveSession handles POST /api/session/save.
//
//	@Summary		Save the editor fields as a note
//	@Tags			session
//	@Accept			json
//	@Produce		json
//	@Param			body	body		SaveRequest	true	"Editor fields"
//	@Success		200		{object}	SaveResponse
//	@Failure		400		{object}	errResponse
//	@Failure		500		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/session/save [post]
func (h *Handler) SaveSession(w http.ResponseWriter, r *http.Request) {
	var req SaveRequest
	if !decodeBody(w, r, &req) {
		return
	}
	state, saved, err := h.svc.Save(req.Title, req.Content)
	if err != nil {
		slog.Error("save note failed", slog.String("title", req.Title), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("failed to persist notes"))
		return
	}
	writeJSON(w, http.StatusOK, SaveResponse{Saved: saved, Session: state})
}

// NewSession handles POST /api/session/new.
//
//	@Summary		Clear the editor
//	@Tags			session
//	@Produce		json
//	@Success		200	{object}	SessionState
//	@Security		BearerAuth
//	@Router			/session/new [post]
func (h *Handler) NewSession(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.New())
}

// OpenSession handles POST /api/session/open.
//
//	@Summary		Load a note into the editor
//	@Tags			session
//	@Accept			json
//	@Produce		json
//	@Param			body	body		OpenRequest	true	"Note to open"
//	@Success		200		{object}	SessionState
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/session/open [post]
func (h *Handler) OpenSession(w http.ResponseWriter, r *http.Request) {
	var req OpenRequest
	if !decodeBody(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, h.svc.Open(req.Title))
}

// ExportSession handles POST /api/session/export.
//
//	@Summary		Export the editor body to a text file
//	@Tags			session
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ExportRequest	true	"Export destination"
//	@Success		200		{object}	ExportResponse
//	@Failure		400		{object}	errResponse
//	@Failure		500		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/session/export [post]
func (h *Handler) ExportSession(w http.ResponseWriter, r *http.Request) {
	var req ExportRequest
	if !decodeBody(w, r, &req) {
		return
	}
	path, err := h.svc.Export(req.Content, req.Destination)
	if err != nil {
		if errors.Is(err, apperr.ErrInvalidPath) {
			writeJSON(w, http.StatusBadRequest, errorBody("invalid destination"))
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorBody("export failed"))
		return
	}
	writeJSON(w, http.StatusOK, ExportResponse{Exported: path != "", Path: path})
}
