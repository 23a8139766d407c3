package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"mdcal/internal/model"
)

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.seenWindowSize = true
		m.docList.SetSize(msg.Width-2, msg.Height-4)
		if m.ed != nil {
			m.ed.setSize(msg.Width, msg.Height)
		}
		return m, nil

	case saveEventMsg:
		return m.handleSaveEvent(saveEvent(msg))

	case storeChangedMsg:
		if msg.closed {
			return m, nil
		}
		// Another process touched the documents folder; refresh whatever
		// the user is looking at (never the editor, which owns its state).
		cmds := []tea.Cmd{listenChanges(m.changes)}
		switch m.view {
		case viewList:
			cmds = append(cmds, loadDocs(m.st))
		case viewCalendar:
			cmds = append(cmds, loadMonth(m.st, m.calYear, m.calMonth))
		}
		return m, tea.Batch(cmds...)

	case errMsg:
		m.errText = msg.err.Error()
		m.log.Error().Err(msg.err).Msg("tui operation failed")
		return m, nil

	case docsLoadedMsg:
		items := make([]list.Item, len(msg))
		for i, sum := range msg {
			items[i] = docItem{doc: sum}
		}
		m.docList.SetItems(items)
		return m, nil

	case monthDocsLoadedMsg:
		if msg.year == m.calYear && msg.month == m.calMonth {
			m.monthDocs = msg.docs
		}
		return m, nil

	case docLoadedMsg:
		m.ed = openEditorFor(m.st, model.Document(msg), m.sessionHooks())
		m.ed.setSize(m.width, m.height)
		m.returnView = m.view
		m.view = viewEditor
		return m, nil

	case docDeletedMsg:
		m.confirmDeleteID = ""
		return m, loadDocs(m.st)

	case tea.KeyMsg:
		switch m.view {
		case viewEditor:
			return m.updateEditor(msg)
		case viewCalendar:
			return m.updateCalendar(msg)
		default:
			return m.updateList(msg)
		}
	}
	return m, nil
}

func (m appModel) handleSaveEvent(ev saveEvent) (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{listenSaves(m.saveEvents)}
	if m.ed != nil {
		switch ev.kind {
		case saveStarted:
			m.ed.saving = true
		case saveSucceeded:
			m.ed.saving = false
			m.ed.dirtySince = false
			m.ed.lastSaveErr = ""
			m.log.Debug().Str("doc", ev.doc.ID).Msg("autosave succeeded")
		case saveFailed:
			m.ed.saving = false
			m.ed.lastSaveErr = ev.err.Error()
			m.log.Warn().Err(ev.err).Msg("autosave failed")
		case saveCreated:
			m.ed.docID = ev.doc.ID
			m.ed.status = ev.doc.Status
			m.ed.startDate = ev.doc.StartDate
			m.ed.endDate = ev.doc.EndDate
			m.ed.dirtySince = false
			m.log.Debug().Str("doc", ev.doc.ID).Msg("document created")
		}
	}
	return m, tea.Batch(cmds...)
}

func (m appModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// While the list filter input is active, every key belongs to it.
	if m.docList.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.docList, cmd = m.docList.Update(msg)
		return m, cmd
	}

	key := msg.String()
	if m.confirmDeleteID != "" && key != "d" {
		m.confirmDeleteID = ""
	}

	switch key {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "n":
		m.ed = openNewEditor(m.st, m.sessionHooks())
		m.ed.setSize(m.width, m.height)
		m.returnView = viewList
		m.view = viewEditor
		return m, nil
	case "enter":
		if it, ok := m.docList.SelectedItem().(docItem); ok {
			return m, loadDoc(m.st, it.doc.ID)
		}
		return m, nil
	case "d":
		it, ok := m.docList.SelectedItem().(docItem)
		if !ok {
			return m, nil
		}
		if m.confirmDeleteID == it.doc.ID {
			m.confirmDeleteID = ""
			return m, deleteDoc(m.st, it.doc.ID)
		}
		m.confirmDeleteID = it.doc.ID
		return m, nil
	case "c":
		m.view = viewCalendar
		return m, loadMonth(m.st, m.calYear, m.calMonth)
	case "r":
		return m, loadDocs(m.st)
	}

	var cmd tea.Cmd
	m.docList, cmd = m.docList.Update(msg)
	return m, cmd
}

func (m appModel) updateCalendar(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc", "c":
		m.view = viewList
		return m, loadDocs(m.st)
	case "left", "h":
		m.calYear, m.calMonth = prevMonth(m.calYear, m.calMonth)
		return m, loadMonth(m.st, m.calYear, m.calMonth)
	case "right", "l":
		m.calYear, m.calMonth = nextMonth(m.calYear, m.calMonth)
		return m, loadMonth(m.st, m.calYear, m.calMonth)
	case "t":
		now := time.Now()
		m.calYear, m.calMonth = now.Year(), now.Month()
		return m, loadMonth(m.st, m.calYear, m.calMonth)
	case "r":
		return m, loadMonth(m.st, m.calYear, m.calMonth)
	}
	return m, nil
}

func (m appModel) updateEditor(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ed := m.ed
	switch msg.String() {
	case "ctrl+c":
		ed.flush()
		return m, tea.Quit
	case "esc":
		ed.flush()
		ed.close()
		m.ed = nil
		m.view = m.returnView
		if m.view == viewCalendar {
			return m, loadMonth(m.st, m.calYear, m.calMonth)
		}
		return m, loadDocs(m.st)
	case "tab":
		ed.toggleFocus()
		return m, nil
	case "ctrl+p":
		ed.preview = !ed.preview
		return m, nil
	case "ctrl+t":
		ed.cycleStatus()
		return m, nil
	case "ctrl+s":
		ed.flush()
		return m, nil
	}
	return m, ed.handleKey(msg)
}

func prevMonth(year int, month time.Month) (int, time.Month) {
	if month == time.January {
		return year - 1, time.December
	}
	return year, month - 1
}

func nextMonth(year int, month time.Month) (int, time.Month) {
	if month == time.December {
		return year + 1, time.January
	}
	return year, month + 1
}

func (m appModel) View() string {
	if !m.seenWindowSize {
		return ""
	}

	var content, help string
	switch m.view {
	case viewEditor:
		content = m.ed.view(m.width)
		help = "tab focus " + glyphBullet() + " ctrl+p preview " + glyphBullet() + " ctrl+t status " + glyphBullet() + " ctrl+s save " + glyphBullet() + " esc back"
	case viewCalendar:
		content = m.calendarView()
		help = "h/l months " + glyphBullet() + " t today " + glyphBullet() + " esc back " + glyphBullet() + " q quit"
	default:
		content = m.docList.View()
		help = "n new " + glyphBullet() + " enter open " + glyphBullet() + " d delete " + glyphBullet() + " c calendar " + glyphBullet() + " / filter " + glyphBullet() + " q quit"
	}

	footer := styleMuted().Render(help)
	if m.view == viewEditor {
		if ind := m.ed.saveIndicator(); ind != "" {
			st := styleMuted()
			if m.ed.lastSaveErr != "" {
				st = styleError()
			} else if ind == "Saved" {
				st = lipgloss.NewStyle().Foreground(colorOK)
			}
			footer = st.Render(ind) + "  " + footer
		}
	}
	if m.confirmDeleteID != "" {
		footer = styleError().Render("press d again to delete") + "  " + footer
	}
	if m.errText != "" {
		footer = styleError().Render(m.errText) + "  " + footer
	}

	body := lipgloss.NewStyle().Padding(1, 1).Render(content)
	return body + "\n" + lipgloss.NewStyle().Padding(0, 1).Render(footer)
}
