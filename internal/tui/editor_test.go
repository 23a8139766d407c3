package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"mdcal/internal/model"
	"mdcal/internal/store"
)

func typeRunes(ed *editorState, s string) {
	ed.handleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

func TestEditorCreatesDocumentOnFirstBodyInput(t *testing.T) {
	st := store.OpenFiles(t.TempDir())
	ed := openNewEditor(st, sessionNotify{})
	defer ed.close()

	// A new editor focuses the title; typing there persists nothing.
	typeRunes(ed, "Meeting notes")
	if id := ed.session.DocumentID(); id != "" {
		t.Fatalf("title-only input created document %q", id)
	}

	ed.toggleFocus()
	if ed.focus != focusBody {
		t.Fatalf("focus = %v, want body", ed.focus)
	}
	typeRunes(ed, "agenda")

	id := ed.session.DocumentID()
	if id == "" {
		t.Fatal("body input did not create the document")
	}
	doc, ok, err := st.Get(context.Background(), id)
	if err != nil || !ok {
		t.Fatalf("stored document missing: ok=%v err=%v", ok, err)
	}
	if doc.Title != "Meeting notes" || doc.Content != "agenda" {
		t.Fatalf("stored {%q, %q}, want buffered title and typed body", doc.Title, doc.Content)
	}
}

func TestEditorOpenExistingPrefillsInputs(t *testing.T) {
	st := store.OpenFiles(t.TempDir())
	doc, err := st.Create(context.Background(), model.DocumentInput{Title: "Trip", Content: "pack bags", Status: model.StatusReady})
	if err != nil {
		t.Fatal(err)
	}

	ed := openEditorFor(st, doc, sessionNotify{})
	defer ed.close()

	if ed.title.Value() != "Trip" || ed.body.Value() != "pack bags" {
		t.Fatalf("inputs = {%q, %q}", ed.title.Value(), ed.body.Value())
	}
	if ed.docID != doc.ID || ed.status != model.StatusReady {
		t.Fatalf("editor state id=%q status=%v", ed.docID, ed.status)
	}
}

func TestEditorCycleStatus(t *testing.T) {
	st := store.OpenFiles(t.TempDir())
	doc, err := st.Create(context.Background(), model.DocumentInput{Content: "x"})
	if err != nil {
		t.Fatal(err)
	}

	ed := openEditorFor(st, doc, sessionNotify{})
	defer ed.close()

	ed.cycleStatus()
	if ed.status != model.StatusReady {
		t.Fatalf("status = %v, want ready", ed.status)
	}
	ed.flush()

	got, _, err := st.Get(context.Background(), doc.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != model.StatusReady {
		t.Fatalf("persisted status = %v, want ready", got.Status)
	}
}

func TestSaveIndicator(t *testing.T) {
	ed := newEditorState()
	if got := ed.saveIndicator(); got != "" {
		t.Errorf("fresh editor indicator = %q, want empty", got)
	}

	ed.dirtySince = true
	if got := ed.saveIndicator(); got != "Unsaved" {
		t.Errorf("dirty indicator = %q", got)
	}

	ed.saving = true
	if got := ed.saveIndicator(); got != "Saving…" {
		t.Errorf("saving indicator = %q", got)
	}

	ed.saving = false
	ed.dirtySince = false
	ed.docID = "doc-abcd1234"
	if got := ed.saveIndicator(); got != "Saved" {
		t.Errorf("clean indicator = %q", got)
	}

	ed.lastSaveErr = "disk full"
	if got := ed.saveIndicator(); got != "Save failed: disk full" {
		t.Errorf("failure indicator = %q", got)
	}
}
