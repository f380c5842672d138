// Package tui is the terminal shell: a sidebar of note titles next to a
// title field and a body editor.
package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/starford/simplenotes/internal/export"
	"github.com/starford/simplenotes/internal/session"
	"github.com/starford/simplenotes/internal/sidebar"
)

type focusPane int

const (
	focusSidebar focusPane = iota
	focusTitle
	focusBody
)

// ChangedOnDiskMsg reports that the notes file was rewritten by another
// process.
type ChangedOnDiskMsg struct {
	Path string
}

// Model is the bubbletea model for the editor window.
type Model struct {
	sess      *session.Session
	exporter  *export.Exporter
	exportDir string

	width, height int
	focus         focusPane
	cursor        int

	title     textinput.Model
	body      textarea.Model
	titleSync fieldSync
	bodySync  fieldSync

	exporting   bool
	exportInput textinput.Model

	help      help.Model
	status    string
	statusErr bool
}

// New creates the model. Export destinations are prefilled inside
// exportDir but may be edited to any path.
func New(sess *session.Session, exporter *export.Exporter, exportDir string) Model {
	title := textinput.New()
	title.Placeholder = "Title"
	title.Prompt = ""
	title.Focus()

	body := textarea.New()
	body.Placeholder = "Write your note here"
	body.ShowLineNumbers = false
	body.CharLimit = 0
	body.MaxHeight = 0

	exportInput := textinput.New()
	exportInput.Prompt = "Export to: "

	m := Model{
		sess:        sess,
		exporter:    exporter,
		exportDir:   exportDir,
		focus:       focusTitle,
		title:       title,
		body:        body,
		exportInput: exportInput,
		help:        help.New(),
	}
	m.pullFields()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, tea.SetWindowTitle("SimpleNotes"))
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil

	case ChangedOnDiskMsg:
		m.setError(fmt.Sprintf("%s was changed by another program; saving will overwrite it", msg.Path))
		return m, nil

	case tea.KeyMsg:
		if m.exporting {
			return m.updateExport(msg)
		}
		return m.updateKey(msg)
	}

	return m.forward(msg)
}

func (m Model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, keys.Save):
		m.save()
		return m, nil

	case key.Matches(msg, keys.New):
		m.sess.StartNew()
		m.pullFields()
		m.setStatus("new note")
		return m, m.setFocus(focusTitle)

	case key.Matches(msg, keys.Export):
		return m, m.startExport()

	case key.Matches(msg, keys.Focus):
		return m, m.setFocus((m.focus + 1) % 3)
	}

	if m.focus == focusSidebar {
		return m.updateSidebar(msg)
	}
	return m.forward(msg)
}

func (m Model) updateSidebar(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	entries := sidebar.Entries(m.sess)
	switch {
	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, keys.Down):
		if m.cursor < len(entries)-1 {
			m.cursor++
		}
	case key.Matches(msg, keys.Open):
		if m.cursor < len(entries) {
			entries[m.cursor].OnSelect()
			m.pullFields()
			m.setStatus("opened " + entries[m.cursor].Title)
			return m, m.setFocus(focusBody)
		}
	case key.Matches(msg, keys.Delete):
		if m.cursor < len(entries) {
			m.pushFields()
			e := entries[m.cursor]
			if err := e.OnDelete(); err != nil {
				m.setError("delete failed: " + err.Error())
			} else {
				m.setStatus("deleted " + e.Title)
			}
			m.pullFields()
			m.clampCursor()
		}
	case key.Matches(msg, keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

func (m Model) updateExport(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Cancel):
		m.finishExport("", false)
		return m, nil
	case key.Matches(msg, keys.Open):
		dest := strings.TrimSpace(m.exportInput.Value())
		m.finishExport(dest, dest != "")
		return m, nil
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit
	}
	var cmd tea.Cmd
	m.exportInput, cmd = m.exportInput.Update(msg)
	return m, cmd
}

// forward passes msg to the focused editor widget.
func (m Model) forward(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.focus {
	case focusTitle:
		m.title, cmd = m.title.Update(msg)
	case focusBody:
		m.body, cmd = m.body.Update(msg)
	}
	m.pushFields()
	return m, cmd
}

func (m *Model) save() {
	m.pushFields()
	title, content := m.sess.Fields()
	saved, err := m.sess.SaveCurrent(title, content)
	if !saved {
		return
	}
	m.pullFields()
	m.selectCurrent()
	if err != nil {
		m.setError("saved in memory but not on disk: " + err.Error())
		return
	}
	current, _ := m.sess.Current()
	m.setStatus("saved " + current)
}

func (m *Model) startExport() tea.Cmd {
	current, ok := m.sess.Current()
	if !ok {
		m.setError("open or save a note before exporting")
		return nil
	}
	m.pushFields()
	m.exporting = true
	m.exportInput.SetValue(filepath.Join(m.exportDir, export.SuggestedName(current)))
	m.exportInput.CursorEnd()
	return m.exportInput.Focus()
}

func (m *Model) finishExport(dest string, ok bool) {
	m.exporting = false
	m.exportInput.Blur()

	path, err := m.exporter.Session(m.sess, func(string) (string, bool) { return dest, ok })
	switch {
	case err != nil:
		m.setError(err.Error())
	case path == "":
		m.setStatus("export cancelled")
	default:
		m.setStatus("exported to " + path)
	}
}

func (m *Model) setFocus(f focusPane) tea.Cmd {
	m.focus = f
	m.title.Blur()
	m.body.Blur()
	switch f {
	case focusTitle:
		return m.title.Focus()
	case focusBody:
		return m.body.Focus()
	}
	return nil
}

// pushFields copies the widget values into the session. The widgets
// normalize what they display (tabs, CRLF, line limits), so a field the
// user has not edited keeps the exact text it was loaded with.
func (m *Model) pushFields() {
	m.sess.SetFields(m.titleSync.value(m.title.Value()), m.bodySync.value(m.body.Value()))
}

// pullFields copies the session's fields into the widgets.
func (m *Model) pullFields() {
	title, content := m.sess.Fields()
	m.title.SetValue(title)
	m.body.SetValue(content)
	m.titleSync = fieldSync{source: title, shown: m.title.Value()}
	m.bodySync = fieldSync{source: content, shown: m.body.Value()}
}

// fieldSync remembers what a widget was loaded with and what it displayed
// as a result.
type fieldSync struct {
	source string
	shown  string
}

func (f fieldSync) value(current string) string {
	if current == f.shown {
		return f.source
	}
	return current
}

func (m *Model) selectCurrent() {
	current, ok := m.sess.Current()
	if !ok {
		return
	}
	for i, title := range m.sess.Store().Titles() {
		if title == current {
			m.cursor = i
			return
		}
	}
}

func (m *Model) clampCursor() {
	n := m.sess.Store().Len()
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) setStatus(s string) {
	m.status, m.statusErr = s, false
}

func (m *Model) setError(s string) {
	m.status, m.statusErr = s, true
}

func (m *Model) resize() {
	editorWidth := m.width - sidebarWidth - 8
	if editorWidth < 10 {
		editorWidth = 10
	}
	bodyHeight := m.height - 9
	if bodyHeight < 3 {
		bodyHeight = 3
	}
	m.title.Width = editorWidth
	m.body.SetWidth(editorWidth)
	m.body.SetHeight(bodyHeight)
	m.exportInput.Width = editorWidth
	m.help.Width = m.width
}

// View implements tea.Model.
func (m Model) View() string {
	panes := lipgloss.JoinHorizontal(lipgloss.Top, m.sidebarView(), m.editorView())

	status := statusStyle.Render(m.status)
	if m.statusErr {
		status = errorStyle.Render(m.status)
	}

	parts := []string{panes}
	if m.exporting {
		parts = append(parts, promptStyle.Render(m.exportInput.View()))
	}
	parts = append(parts, status, m.help.View(keys))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) sidebarView() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Notes"))
	b.WriteString("\n")

	entries := sidebar.Entries(m.sess)
	if len(entries) == 0 {
		b.WriteString(dimStyle.Render("no notes yet"))
	}
	for i, e := range entries {
		label := truncate(e.Title, sidebarWidth-4)
		switch {
		case m.focus == focusSidebar && i == m.cursor:
			label = cursorStyle.Render(label)
		case e.Current:
			label = currentStyle.Render(label)
		}
		b.WriteString(label)
		b.WriteString("\n")
	}

	style := paneStyle
	if m.focus == focusSidebar {
		style = focusedPaneStyle
	}
	return style.Width(sidebarWidth).Render(strings.TrimRight(b.String(), "\n"))
}

func (m Model) editorView() string {
	titleStyle, bodyStyle := paneStyle, paneStyle
	switch m.focus {
	case focusTitle:
		titleStyle = focusedPaneStyle
	case focusBody:
		bodyStyle = focusedPaneStyle
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(m.title.View()),
		bodyStyle.Render(m.body.View()),
	)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n || n < 2 {
		return s
	}
	return string(r[:n-1]) + "…"
}
