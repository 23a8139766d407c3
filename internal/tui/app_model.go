package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"mdcal/internal/model"
	"mdcal/internal/store"
)

type view int

const (
	viewList view = iota
	viewCalendar
	viewEditor
)

type appModel struct {
	st  store.Store
	log zerolog.Logger

	width  int
	height int
	// The very first WindowSizeMsg is initial sizing, not a user resize.
	seenWindowSize bool

	view       view
	returnView view

	docList list.Model

	calYear   int
	calMonth  time.Month
	monthDocs []model.Document

	ed *editorState
	// saveEvents carries autosave notifications from the scheduler's
	// goroutine into the bubbletea update loop.
	saveEvents chan saveEvent
	// changes signals external edits to the documents folder (files
	// backend only; nil otherwise).
	changes <-chan struct{}

	// confirmDeleteID is set after the first "d" on a document; a second
	// "d" deletes, anything else clears it.
	confirmDeleteID string

	errText string
}

func newAppModel(st store.Store, log zerolog.Logger) appModel {
	applyGlyphPreference()

	now := time.Now()
	m := appModel{
		st:         st,
		log:        log,
		view:       viewList,
		returnView: viewList,
		calYear:    now.Year(),
		calMonth:   now.Month(),
		saveEvents: make(chan saveEvent, 32),
	}

	m.docList = list.New([]list.Item{}, newDocDelegate(), 0, 0)
	m.docList.Title = "Documents"
	m.docList.SetFilteringEnabled(true)
	m.docList.SetShowFilter(true)
	m.docList.SetShowStatusBar(false)
	return m
}

func (m appModel) Init() tea.Cmd {
	cmds := []tea.Cmd{loadDocs(m.st), listenSaves(m.saveEvents)}
	if m.changes != nil {
		cmds = append(cmds, listenChanges(m.changes))
	}
	return tea.Batch(cmds...)
}

// Messages.

type docsLoadedMsg []model.DocumentSummary

type monthDocsLoadedMsg struct {
	year  int
	month time.Month
	docs  []model.Document
}

type docLoadedMsg model.Document

type docDeletedMsg string

type errMsg struct{ err error }

type saveEventKind int

const (
	saveStarted saveEventKind = iota
	saveSucceeded
	saveFailed
	saveCreated
)

type saveEvent struct {
	kind saveEventKind
	doc  model.Document
	err  error
}

type saveEventMsg saveEvent

// Commands.

func loadDocs(st store.Store) tea.Cmd {
	return func() tea.Msg {
		sums, err := st.Summaries(context.Background())
		if err != nil {
			return errMsg{err}
		}
		return docsLoadedMsg(sums)
	}
}

func loadMonth(st store.Store, year int, month time.Month) tea.Cmd {
	return func() tea.Msg {
		docs, err := store.DocumentsForMonth(context.Background(), st, year, month)
		if err != nil {
			return errMsg{err}
		}
		return monthDocsLoadedMsg{year: year, month: month, docs: docs}
	}
}

func loadDoc(st store.Store, id string) tea.Cmd {
	return func() tea.Msg {
		doc, ok, err := st.Get(context.Background(), id)
		if err != nil {
			return errMsg{err}
		}
		if !ok {
			return errMsg{store.ErrNotFound}
		}
		return docLoadedMsg(doc)
	}
}

func deleteDoc(st store.Store, id string) tea.Cmd {
	return func() tea.Msg {
		if err := st.Delete(context.Background(), id); err != nil {
			return errMsg{err}
		}
		return docDeletedMsg(id)
	}
}

func listenSaves(ch <-chan saveEvent) tea.Cmd {
	return func() tea.Msg {
		return saveEventMsg(<-ch)
	}
}

type storeChangedMsg struct{ closed bool }

func listenChanges(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		_, ok := <-ch
		return storeChangedMsg{closed: !ok}
	}
}

// sessionHooks bridges scheduler callbacks onto the event channel.
func (m *appModel) sessionHooks() (hooks sessionNotify) {
	ch := m.saveEvents
	return sessionNotify{
		onStarted:   func() { ch <- saveEvent{kind: saveStarted} },
		onSucceeded: func(doc model.Document) { ch <- saveEvent{kind: saveSucceeded, doc: doc} },
		onFailed:    func(err error) { ch <- saveEvent{kind: saveFailed, err: err} },
		onCreated:   func(doc model.Document) { ch <- saveEvent{kind: saveCreated, doc: doc} },
	}
}

type sessionNotify struct {
	onStarted   func()
	onSucceeded func(doc model.Document)
	onFailed    func(err error)
	onCreated   func(doc model.Document)
}
