package tui

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/starford/simplenotes/internal/export"
	"github.com/starford/simplenotes/internal/notestore"
	"github.com/starford/simplenotes/internal/session"
	"github.com/starford/simplenotes/internal/testutil"
)

func testModel(t *testing.T) (Model, *notestore.Store, string) {
	t.Helper()
	store, _ := testutil.TestStore(t)
	dir := t.TempDir()
	m := New(session.New(store), export.New(testutil.Logger()), dir)
	return m, store, dir
}

func send(t *testing.T, m Model, msgs ...tea.Msg) Model {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		var ok bool
		if m, ok = next.(Model); !ok {
			t.Fatalf("Update returned %T", next)
		}
	}
	return m
}

func ctrl(k tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: k} }

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

var (
	keySave   = ctrl(tea.KeyCtrlS)
	keyNew    = ctrl(tea.KeyCtrlN)
	keyExport = ctrl(tea.KeyCtrlE)
	keyTab    = ctrl(tea.KeyTab)
	keyEnter  = ctrl(tea.KeyEnter)
	keyEsc    = ctrl(tea.KeyEsc)
)

func fill(m Model, title, body string) Model {
	m.title.SetValue(title)
	m.body.SetValue(body)
	return m
}

func TestSaveStoresNoteAndSelectsIt(t *testing.T) {
	m, store, _ := testModel(t)

	m = send(t, fill(m, " Groceries ", "milk"), keySave)

	if got, ok := store.Get("Groceries"); !ok || got != "milk" {
		t.Fatalf("store = %q %v", got, ok)
	}
	if current, ok := m.sess.Current(); !ok || current != "Groceries" {
		t.Errorf("current = %q %v", current, ok)
	}
	if m.title.Value() != "Groceries" {
		t.Errorf("title field = %q, want trimmed", m.title.Value())
	}
	if m.statusErr || !strings.Contains(m.status, "saved") {
		t.Errorf("status = %q", m.status)
	}
}

func TestSaveBlankTitleIsSilent(t *testing.T) {
	m, store, _ := testModel(t)

	m = send(t, fill(m, "   ", "body"), keySave)

	if store.Len() != 0 {
		t.Errorf("store len = %d", store.Len())
	}
	if m.status != "" {
		t.Errorf("status = %q, want unchanged", m.status)
	}
	if m.body.Value() != "body" {
		t.Errorf("body cleared: %q", m.body.Value())
	}
}

func TestTypingUpdatesSessionFields(t *testing.T) {
	m, _, _ := testModel(t)

	m = send(t, m, runes("a"), runes("b"))
	if title, _ := m.sess.Fields(); title != "ab" {
		t.Errorf("session title = %q", title)
	}
}

func TestNewClearsEditor(t *testing.T) {
	m, _, _ := testModel(t)
	m = send(t, fill(m, "x", "1"), keySave, keyNew)

	if _, ok := m.sess.Current(); ok {
		t.Error("current should be cleared")
	}
	if m.title.Value() != "" || m.body.Value() != "" {
		t.Errorf("fields = %q %q", m.title.Value(), m.body.Value())
	}
	if m.focus != focusTitle {
		t.Errorf("focus = %d, want title", m.focus)
	}
}

func TestSidebarOpenAndDelete(t *testing.T) {
	m, store, _ := testModel(t)
	for _, n := range [][2]string{{"a", "alpha"}, {"b", "beta"}} {
		if err := store.Save(n[0], n[1]); err != nil {
			t.Fatal(err)
		}
	}

	// title -> body -> sidebar
	m = send(t, m, keyTab, keyTab)
	if m.focus != focusSidebar {
		t.Fatalf("focus = %d, want sidebar", m.focus)
	}
	m = send(t, m, runes("j"), keyEnter)
	if current, _ := m.sess.Current(); current != "b" {
		t.Fatalf("opened %q, want b", current)
	}
	if m.body.Value() != "beta" {
		t.Errorf("body = %q", m.body.Value())
	}

	// body -> sidebar
	m = send(t, m, keyTab)
	if m.focus != focusSidebar {
		t.Fatalf("focus = %d, want sidebar", m.focus)
	}
	m = send(t, m, runes("x"))
	if _, ok := store.Get("b"); ok {
		t.Error("b not deleted")
	}
	if _, ok := m.sess.Current(); ok {
		t.Error("deleting the current note should reset the editor")
	}
	if m.body.Value() != "" {
		t.Errorf("body = %q, want cleared", m.body.Value())
	}
	if m.cursor != 0 {
		t.Errorf("cursor = %d, want clamped to 0", m.cursor)
	}
}

func TestExportWithoutCurrentIsRejected(t *testing.T) {
	m, _, _ := testModel(t)

	m = send(t, m, keyExport)
	if m.exporting {
		t.Error("export prompt should not open without a current note")
	}
	if !m.statusErr {
		t.Errorf("status = %q", m.status)
	}
}

func TestExportWritesLiveBody(t *testing.T) {
	m, store, dir := testModel(t)
	m = send(t, fill(m, "x", "saved"), keySave)
	m.body.SetValue("edited")

	m = send(t, m, keyExport)
	if !m.exporting {
		t.Fatal("export prompt not shown")
	}
	want := filepath.Join(dir, "x.txt")
	if m.exportInput.Value() != want {
		t.Errorf("prefill = %q, want %q", m.exportInput.Value(), want)
	}

	m = send(t, m, keyEnter)
	if m.exporting {
		t.Error("prompt still open")
	}
	data, err := os.ReadFile(want)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "edited" {
		t.Errorf("exported %q", data)
	}
	if got, _ := store.Get("x"); got != "saved" {
		t.Errorf("store = %q, export must not save", got)
	}
}

func TestExportCancel(t *testing.T) {
	m, _, dir := testModel(t)
	m = send(t, fill(m, "x", "1"), keySave, keyExport, keyEsc)

	if m.exporting {
		t.Error("prompt still open")
	}
	if m.status != "export cancelled" {
		t.Errorf("status = %q", m.status)
	}
	if _, err := os.Stat(filepath.Join(dir, "x.txt")); !os.IsNotExist(err) {
		t.Errorf("file should not exist, stat err = %v", err)
	}
}

func TestChangedOnDiskShowsWarning(t *testing.T) {
	m, _, _ := testModel(t)
	m = send(t, m, ChangedOnDiskMsg{Path: "/tmp/simplenotes.json"})
	if !m.statusErr || !strings.Contains(m.status, "/tmp/simplenotes.json") {
		t.Errorf("status = %q", m.status)
	}
}

func TestViewListsNotes(t *testing.T) {
	m, store, _ := testModel(t)
	if err := store.Save("Groceries", "milk"); err != nil {
		t.Fatal(err)
	}
	m = send(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})

	if v := m.View(); !strings.Contains(v, "Groceries") {
		t.Errorf("view missing title:\n%s", v)
	}
}

func TestQuit(t *testing.T) {
	m, _, _ := testModel(t)
	_, cmd := m.Update(ctrl(tea.KeyCtrlC))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestOpenThenSaveKeepsExactText(t *testing.T) {
	m, store, _ := testModel(t)
	title := "Tab\tTitle"
	body := "col1\tcol2\r\nnext\r\n" + strings.Repeat("row\n", 10050)
	if err := store.Save(title, body); err != nil {
		t.Fatal(err)
	}

	m.sess.Open(title)
	m.pullFields()
	m = send(t, m, keySave)

	if got, _ := store.Get(title); got != body {
		t.Errorf("content changed by open+save: len %d -> %d", len(body), len(got))
	}
	if titles := store.Titles(); len(titles) != 1 || titles[0] != title {
		t.Errorf("titles = %q, want [%q]", titles, title)
	}
}

func TestEditedBodyIsSaved(t *testing.T) {
	m, store, _ := testModel(t)
	if err := store.Save("a", "x\ty"); err != nil {
		t.Fatal(err)
	}
	m.sess.Open("a")
	m.pullFields()

	m.setFocus(focusBody)
	m = send(t, m, runes("!"), keySave)

	got, _ := store.Get("a")
	if got == "x\ty" || !strings.HasSuffix(got, "!") {
		t.Errorf("content = %q, want the edited widget text", got)
	}
}
