package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"mdcal/internal/autosave"
	"mdcal/internal/model"
	"mdcal/internal/store"
)

type editorFocus int

const (
	focusTitle editorFocus = iota
	focusBody
)

// editorState holds one open document's inputs and its save pipeline.
type editorState struct {
	session *autosave.Session
	title   textinput.Model
	body    textarea.Model
	focus   editorFocus
	preview bool

	docID     string
	status    model.Status
	startDate int64
	endDate   int64

	saving      bool
	dirtySince  bool
	lastSaveErr string
}

func newEditorState() *editorState {
	ed := &editorState{}
	ed.title = textinput.New()
	ed.title.Placeholder = "Untitled"
	ed.title.CharLimit = 200
	ed.title.Prompt = ""
	ed.body = textarea.New()
	ed.body.Placeholder = "Write…"
	ed.body.CharLimit = 0
	ed.body.ShowLineNumbers = false
	ed.focus = focusBody
	ed.body.Focus()
	return ed
}

// openNewEditor starts an editing session with no backing document yet;
// the session creates one on the first non-empty content edit.
func openNewEditor(st store.Store, notify sessionNotify) *editorState {
	ed := newEditorState()
	ed.focus = focusTitle
	ed.body.Blur()
	ed.title.Focus()
	ed.session = autosave.NewSession(st, autosave.DefaultQuietPeriod, autosave.Hooks{
		OnSaveStarted:   notify.onStarted,
		OnSaveSucceeded: notify.onSucceeded,
		OnSaveFailed:    notify.onFailed,
	}, notify.onCreated)
	return ed
}

// openEditorFor starts an editing session on an existing document.
func openEditorFor(st store.Store, doc model.Document, notify sessionNotify) *editorState {
	ed := newEditorState()
	ed.docID = doc.ID
	ed.status = doc.Status
	ed.startDate = doc.StartDate
	ed.endDate = doc.EndDate
	ed.title.SetValue(doc.Title)
	ed.body.SetValue(doc.Content)
	ed.session = autosave.NewSessionFor(st, doc.ID, autosave.DefaultQuietPeriod, autosave.Hooks{
		OnSaveStarted:   notify.onStarted,
		OnSaveSucceeded: notify.onSucceeded,
		OnSaveFailed:    notify.onFailed,
	})
	return ed
}

func (ed *editorState) setSize(width, height int) {
	w := width - 4
	if w < 20 {
		w = 20
	}
	ed.title.Width = w
	ed.body.SetWidth(w)
	h := height - 7
	if h < 3 {
		h = 3
	}
	ed.body.SetHeight(h)
}

func (ed *editorState) toggleFocus() {
	if ed.focus == focusTitle {
		ed.focus = focusBody
		ed.title.Blur()
		ed.body.Focus()
	} else {
		ed.focus = focusTitle
		ed.body.Blur()
		ed.title.Focus()
	}
}

// cycleStatus advances the workflow status and schedules the change.
func (ed *editorState) cycleStatus() {
	next := model.NextStatus(ed.status)
	ed.status = next
	ed.edit(model.DocumentPatch{Status: &next})
}

// handleKey forwards a key to the focused input and turns any resulting
// value change into an autosave edit.
func (ed *editorState) handleKey(msg tea.KeyMsg) tea.Cmd {
	var cmd tea.Cmd
	if ed.focus == focusTitle {
		before := ed.title.Value()
		ed.title, cmd = ed.title.Update(msg)
		if after := ed.title.Value(); after != before {
			ed.edit(model.DocumentPatch{Title: &after})
		}
		return cmd
	}
	before := ed.body.Value()
	ed.body, cmd = ed.body.Update(msg)
	if after := ed.body.Value(); after != before {
		ed.edit(model.DocumentPatch{Content: &after})
	}
	return cmd
}

func (ed *editorState) edit(patch model.DocumentPatch) {
	ed.dirtySince = true
	ed.lastSaveErr = ""
	ed.session.Edit(patch)
}

func (ed *editorState) flush() { ed.session.Flush() }

func (ed *editorState) close() { ed.session.Close() }

// saveIndicator is the user-visible save status for the footer.
func (ed *editorState) saveIndicator() string {
	switch {
	case ed.lastSaveErr != "":
		return "Save failed: " + ed.lastSaveErr
	case ed.saving:
		return "Saving…"
	case ed.dirtySince:
		return "Unsaved"
	case ed.docID != "":
		return "Saved"
	default:
		return ""
	}
}

func (ed *editorState) view(width int) string {
	titleStyle := lipgloss.NewStyle().Bold(true)
	var b strings.Builder

	b.WriteString(titleStyle.Render(ed.title.View()))
	b.WriteString("\n")

	meta := statusGlyph(ed.status) + " " + statusLabel(ed.status)
	if ed.status == model.StatusNone {
		meta = "no status"
	}
	if ed.startDate != 0 {
		meta += "  " + fmtDateRange(ed.startDate, ed.endDate)
	}
	b.WriteString(styleMuted().Render(meta))
	b.WriteString("\n\n")

	if ed.preview {
		b.WriteString(renderMarkdown(ed.body.Value(), min(width-4, 96)))
	} else {
		b.WriteString(ed.body.View())
	}
	return b.String()
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
