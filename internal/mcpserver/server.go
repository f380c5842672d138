// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the note store to LLM clients via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/simplenotes/internal/apperr"
	"github.com/starford/simplenotes/internal/export"
	"github.com/starford/simplenotes/internal/notestore"
	"github.com/starford/simplenotes/internal/storage"
)

const formatURI = "simplenotes://format"

// Server wraps the MCP server with note tools.
type Server struct {
	mcp      *server.MCPServer
	store    *notestore.Store
	exporter *export.Exporter
	exports  *storage.Dir
}

// New creates a new MCP server with all note tools registered. Exports
// are written inside exports.
func New(store *notestore.Store, exporter *export.Exporter, exports *storage.Dir, version string) *Server {
	s := &Server{store: store, exporter: exporter, exports: exports}

	s.mcp = server.NewMCPServer(
		"SimpleNotes",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_notes",
		mcp.WithDescription("List all note titles in the order they were created."),
	), s.listNotes)

	s.mcp.AddTool(mcp.NewTool("read_note",
		mcp.WithDescription("Read the full body of a note."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Exact note title")),
	), s.readNote)

	s.mcp.AddTool(mcp.NewTool("save_note",
		mcp.WithDescription("Create a note, or overwrite the body of an existing note with the same title. "+
			"Surrounding whitespace is trimmed from the title. See the "+formatURI+" resource for how notes are stored."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Note title; must not be blank")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Plain-text note body")),
	), s.saveNote)

	s.mcp.AddTool(mcp.NewTool("delete_note",
		mcp.WithDescription("Delete a note. Deleting a title that does not exist succeeds."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Exact note title")),
	), s.deleteNote)

	s.mcp.AddTool(mcp.NewTool("export_note",
		mcp.WithDescription("Write a note body to a plain-text file in the export directory, overwriting any existing file."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Exact note title")),
		mcp.WithString("destination", mcp.Description("File path relative to the export directory (default: {title}.txt)")),
	), s.exportNote)

	s.mcp.AddResource(
		mcp.NewResource(formatURI, "Notes File Format",
			mcp.WithResourceDescription("How notes are stored in the JSON persistence file."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) listNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	titles := s.store.Titles()
	if len(titles) == 0 {
		return mcp.NewToolResultText("no notes"), nil
	}
	return mcp.NewToolResultText(strings.Join(titles, "\n")), nil
}

func (s *Server) readNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, ok := s.store.Get(title)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", title)), nil
	}
	return mcp.NewToolResultText(content), nil
}

func (s *Server) saveNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return mcp.NewToolResultError("title must not be blank"), nil
	}
	if err := s.store.Save(title, content); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("saved: %s", title)), nil
}

func (s *Server) deleteNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.store.Delete(title); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("deleted: %s", title)), nil
}

func (s *Server) exportNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, ok := s.store.Get(title)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", title)), nil
	}
	dest := export.SuggestedName(title)
	if d, err := req.RequireString("destination"); err == nil && d != "" {
		dest = d
	}

	choose, err := export.InDir(s.exports, dest)
	if err != nil {
		if errors.Is(err, apperr.ErrInvalidPath) {
			return mcp.NewToolResultError(fmt.Sprintf("invalid destination: %s", dest)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	path, err := s.exporter.Export(title, true, content, choose)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.Marshal(map[string]string{"title": title, "path": path})
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      formatURI,
			MIMEType: "text/markdown",
			Text:     FileFormat,
		},
	}, nil
}
