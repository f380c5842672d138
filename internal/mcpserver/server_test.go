package mcpserver

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/simplenotes/internal/export"
	"github.com/starford/simplenotes/internal/notestore"
	"github.com/starford/simplenotes/internal/storage"
	"github.com/starford/simplenotes/internal/testutil"
)

func testServer(t *testing.T) (*Server, *notestore.Store, string) {
	t.Helper()

	store, _ := testutil.TestStore(t)
	exportDir := t.TempDir()
	dir, err := storage.NewDir(exportDir)
	if err != nil {
		t.Fatal(err)
	}
	return New(store, export.New(testutil.Logger()), dir, "test"), store, exportDir
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	var result *mcp.CallToolResult
	var err error

	switch name {
	case "list_notes":
		result, err = srv.listNotes(ctx, req)
	case "read_note":
		result, err = srv.readNote(ctx, req)
	case "save_note":
		result, err = srv.saveNote(ctx, req)
	case "delete_note":
		result, err = srv.deleteNote(ctx, req)
	case "export_note":
		result, err = srv.exportNote(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestSaveAndReadNote(t *testing.T) {
	srv, _, _ := testServer(t)

	r := callTool(t, srv, "save_note", map[string]interface{}{
		"title":   " Groceries ",
		"content": "milk, eggs",
	})
	if text := resultText(r); text != "saved: Groceries" {
		t.Errorf("save result = %q", text)
	}

	r = callTool(t, srv, "read_note", map[string]interface{}{"title": "Groceries"})
	if text := resultText(r); text != "milk, eggs" {
		t.Errorf("read result = %q", text)
	}
}

func TestSaveBlankTitle(t *testing.T) {
	srv, store, _ := testServer(t)

	r := callTool(t, srv, "save_note", map[string]interface{}{"title": "  ", "content": "x"})
	if !r.IsError {
		t.Error("expected error for blank title")
	}
	if store.Len() != 0 {
		t.Errorf("store len = %d", store.Len())
	}
}

func TestListNotesInsertionOrder(t *testing.T) {
	srv, store, _ := testServer(t)

	if text := resultText(callTool(t, srv, "list_notes", nil)); text != "no notes" {
		t.Errorf("empty list = %q", text)
	}

	for _, title := range []string{"b", "a", "c"} {
		if err := store.Save(title, ""); err != nil {
			t.Fatal(err)
		}
	}
	if text := resultText(callTool(t, srv, "list_notes", nil)); text != "b\na\nc" {
		t.Errorf("list = %q", text)
	}
}

func TestReadNoteMissing(t *testing.T) {
	srv, _, _ := testServer(t)
	r := callTool(t, srv, "read_note", map[string]interface{}{"title": "nope"})
	if !r.IsError {
		t.Error("expected error for missing note")
	}
}

func TestDeleteNote(t *testing.T) {
	srv, store, _ := testServer(t)
	if err := store.Save("x", "1"); err != nil {
		t.Fatal(err)
	}

	r := callTool(t, srv, "delete_note", map[string]interface{}{"title": "x"})
	if r.IsError {
		t.Fatalf("delete failed: %s", resultText(r))
	}
	if _, ok := store.Get("x"); ok {
		t.Error("note still present")
	}

	r = callTool(t, srv, "delete_note", map[string]interface{}{"title": "x"})
	if r.IsError {
		t.Error("deleting a missing note should succeed")
	}
}

func TestExportNoteDefaultName(t *testing.T) {
	srv, store, exportDir := testServer(t)
	if err := store.Save("Groceries", "milk, eggs"); err != nil {
		t.Fatal(err)
	}

	r := callTool(t, srv, "export_note", map[string]interface{}{"title": "Groceries"})
	if r.IsError {
		t.Fatalf("export failed: %s", resultText(r))
	}
	var out map[string]string
	if err := json.Unmarshal([]byte(resultText(r)), &out); err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(exportDir, "Groceries.txt")
	if out["path"] != want {
		t.Errorf("path = %q, want %q", out["path"], want)
	}
	data, err := os.ReadFile(want)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "milk, eggs" {
		t.Errorf("exported %q", data)
	}
}

func TestExportNoteTraversalBlocked(t *testing.T) {
	srv, store, _ := testServer(t)
	if err := store.Save("x", "1"); err != nil {
		t.Fatal(err)
	}

	r := callTool(t, srv, "export_note", map[string]interface{}{"title": "x", "destination": "../x.txt"})
	if !r.IsError || !strings.Contains(resultText(r), "invalid destination") {
		t.Errorf("traversal result = %q", resultText(r))
	}
}

func TestExportNoteMissing(t *testing.T) {
	srv, _, _ := testServer(t)
	r := callTool(t, srv, "export_note", map[string]interface{}{"title": "ghost"})
	if !r.IsError {
		t.Error("expected error for missing note")
	}
}

func TestFormatResource(t *testing.T) {
	srv, _, _ := testServer(t)
	contents, err := srv.readFormatResource(context.Background(), mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatal(err)
	}
	if len(contents) != 1 {
		t.Fatalf("contents = %d", len(contents))
	}
	tc, ok := contents[0].(mcp.TextResourceContents)
	if !ok || tc.URI != formatURI || !strings.Contains(tc.Text, "insertion order") {
		t.Errorf("unexpected resource %+v", contents[0])
	}
}
