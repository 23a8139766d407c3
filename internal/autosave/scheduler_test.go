package autosave

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"mdcal/internal/model"
)

// fakeStore records calls and lets tests inject latency and failures.
type fakeStore struct {
	mu          sync.Mutex
	creates     []model.DocumentInput
	updates     []recordedUpdate
	updateDelay time.Duration
	failUpdates int
	failCreates int
	doc         model.Document
}

type recordedUpdate struct {
	id      string
	patch   model.DocumentPatch
	started time.Time
	ended   time.Time
}

func newFakeStore() *fakeStore {
	return &fakeStore{doc: model.Document{ID: "doc-test0001", CreatedAt: 1, UpdatedAt: 1}}
}

func (f *fakeStore) Create(_ context.Context, input model.DocumentInput) (model.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCreates > 0 {
		f.failCreates--
		return model.Document{}, errors.New("create failed")
	}
	f.creates = append(f.creates, input)
	doc := f.doc
	doc.Title = input.Title
	doc.Content = input.Content
	return doc, nil
}

func (f *fakeStore) Update(_ context.Context, id string, patch model.DocumentPatch) (model.Document, error) {
	f.mu.Lock()
	delay := f.updateDelay
	fail := f.failUpdates > 0
	if fail {
		f.failUpdates--
	}
	started := time.Now()
	f.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if fail {
		return model.Document{}, errors.New("disk full")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if patch.Title != nil {
		f.doc.Title = *patch.Title
	}
	if patch.Content != nil {
		f.doc.Content = *patch.Content
	}
	f.updates = append(f.updates, recordedUpdate{id: id, patch: patch, started: started, ended: time.Now()})
	return f.doc, nil
}

func (f *fakeStore) Get(context.Context, string) (model.Document, bool, error) {
	return model.Document{}, false, nil
}
func (f *fakeStore) Delete(context.Context, string) error { return nil }
func (f *fakeStore) ListAll(context.Context) ([]model.Document, error) {
	return nil, nil
}
func (f *fakeStore) Summaries(context.Context) ([]model.DocumentSummary, error) {
	return nil, nil
}
func (f *fakeStore) ListByDateRange(context.Context, int64, int64) ([]model.Document, error) {
	return nil, nil
}
func (f *fakeStore) Search(context.Context, string) ([]model.Document, error) {
	return nil, nil
}

func (f *fakeStore) updateCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.updates)
}

func (f *fakeStore) lastUpdate(t *testing.T) recordedUpdate {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.updates) == 0 {
		t.Fatal("no updates recorded")
	}
	return f.updates[len(f.updates)-1]
}

func strPtr(s string) *string { return &s }

func TestSchedulerCoalescesBurstIntoOneWrite(t *testing.T) {
	st := newFakeStore()
	const quiet = 200 * time.Millisecond
	s := NewScheduler(st, "doc-test0001", quiet, Hooks{})

	// Edits at t=0, t=50ms, t=100ms: one write, after 100ms+quiet,
	// carrying the last payload.
	start := time.Now()
	s.Schedule(model.DocumentPatch{Content: strPtr("a")})
	time.Sleep(50 * time.Millisecond)
	s.Schedule(model.DocumentPatch{Content: strPtr("ab")})
	time.Sleep(50 * time.Millisecond)
	s.Schedule(model.DocumentPatch{Content: strPtr("abc")})

	time.Sleep(2 * quiet)

	if got := st.updateCount(); got != 1 {
		t.Fatalf("expected exactly 1 update, got %d", got)
	}
	up := st.lastUpdate(t)
	if up.patch.Content == nil || *up.patch.Content != "abc" {
		t.Fatalf("expected final payload %q, got %+v", "abc", up.patch)
	}
	if elapsed := up.started.Sub(start); elapsed < 100*time.Millisecond+quiet-20*time.Millisecond {
		t.Fatalf("write fired before the quiet period elapsed: %v", elapsed)
	}
	if s.State() != StateClean {
		t.Fatalf("expected clean after save, got %v", s.State())
	}
}

func TestSchedulerMergesFieldsAcrossEdits(t *testing.T) {
	st := newFakeStore()
	s := NewScheduler(st, "doc-test0001", 80*time.Millisecond, Hooks{})

	s.Schedule(model.DocumentPatch{Title: strPtr("T")})
	s.Schedule(model.DocumentPatch{Content: strPtr("body")})
	time.Sleep(250 * time.Millisecond)

	if got := st.updateCount(); got != 1 {
		t.Fatalf("expected 1 update, got %d", got)
	}
	up := st.lastUpdate(t)
	if up.patch.Title == nil || *up.patch.Title != "T" || up.patch.Content == nil || *up.patch.Content != "body" {
		t.Fatalf("expected merged payload, got %+v", up.patch)
	}
}

func TestSchedulerCancelStopsPendingWrite(t *testing.T) {
	st := newFakeStore()
	s := NewScheduler(st, "doc-test0001", 80*time.Millisecond, Hooks{})

	s.Schedule(model.DocumentPatch{Content: strPtr("x")})
	s.Cancel()
	s.Cancel() // repeated cancel is a no-op
	time.Sleep(250 * time.Millisecond)

	if got := st.updateCount(); got != 0 {
		t.Fatalf("expected no updates after cancel, got %d", got)
	}
	s.Cancel() // cancel after the timer would have fired is also a no-op
}

func TestSchedulerFailureKeepsPayloadAndReportsError(t *testing.T) {
	st := newFakeStore()
	st.failUpdates = 1

	var mu sync.Mutex
	var failures []error
	s := NewScheduler(st, "doc-test0001", 60*time.Millisecond, Hooks{
		OnSaveFailed: func(err error) {
			mu.Lock()
			failures = append(failures, err)
			mu.Unlock()
		},
	})

	s.Schedule(model.DocumentPatch{Content: strPtr("keep me")})
	time.Sleep(200 * time.Millisecond)

	mu.Lock()
	nFail := len(failures)
	mu.Unlock()
	if nFail != 1 {
		t.Fatalf("expected 1 save failure notification, got %d", nFail)
	}
	if got := s.State(); got != StateDirty {
		t.Fatalf("expected dirty after failed save, got %v", got)
	}
	if got := st.updateCount(); got != 0 {
		t.Fatalf("expected no successful updates yet, got %d", got)
	}

	// Explicit retry flushes the retained payload.
	s.Flush()
	if got := st.updateCount(); got != 1 {
		t.Fatalf("expected retry to write, got %d updates", got)
	}
	up := st.lastUpdate(t)
	if up.patch.Content == nil || *up.patch.Content != "keep me" {
		t.Fatalf("retry lost the payload: %+v", up.patch)
	}
	if got := s.State(); got != StateClean {
		t.Fatalf("expected clean after retry, got %v", got)
	}
}

func TestSchedulerNeverOverlapsWrites(t *testing.T) {
	st := newFakeStore()
	st.updateDelay = 150 * time.Millisecond
	s := NewScheduler(st, "doc-test0001", 40*time.Millisecond, Hooks{})

	s.Schedule(model.DocumentPatch{Content: strPtr("first")})
	time.Sleep(60 * time.Millisecond) // first write now in flight
	s.Schedule(model.DocumentPatch{Content: strPtr("second")})
	time.Sleep(500 * time.Millisecond)

	st.mu.Lock()
	defer st.mu.Unlock()
	if len(st.updates) != 2 {
		t.Fatalf("expected 2 sequential updates, got %d", len(st.updates))
	}
	if st.updates[1].started.Before(st.updates[0].ended) {
		t.Fatal("second write started before the first completed")
	}
	if *st.updates[1].patch.Content != "second" {
		t.Fatalf("expected second payload, got %+v", st.updates[1].patch)
	}
}

func TestSchedulerSaveHooksFireInOrder(t *testing.T) {
	st := newFakeStore()
	var mu sync.Mutex
	var events []string
	s := NewScheduler(st, "doc-test0001", 50*time.Millisecond, Hooks{
		OnSaveStarted: func() {
			mu.Lock()
			events = append(events, "started")
			mu.Unlock()
		},
		OnSaveSucceeded: func(doc model.Document) {
			mu.Lock()
			events = append(events, "succeeded:"+doc.ID)
			mu.Unlock()
		},
	})

	s.Schedule(model.DocumentPatch{Content: strPtr("x")})
	time.Sleep(200 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if len(events) != 2 || events[0] != "started" || events[1] != "succeeded:doc-test0001" {
		t.Fatalf("unexpected hook sequence: %v", events)
	}
}

func TestSessionCreatesOnceOnFirstNonEmptyContent(t *testing.T) {
	st := newFakeStore()
	var createdID string
	s := NewSession(st, 50*time.Millisecond, Hooks{}, func(doc model.Document) {
		createdID = doc.ID
	})

	// Title-only and whitespace-only edits persist nothing.
	s.Edit(model.DocumentPatch{Title: strPtr("My note")})
	s.Edit(model.DocumentPatch{Content: strPtr("   ")})
	if len(st.creates) != 0 {
		t.Fatalf("expected no creates yet, got %d", len(st.creates))
	}
	if got := s.DocumentID(); got != "" {
		t.Fatalf("expected no id before create, got %q", got)
	}

	// First non-empty content triggers exactly one direct create,
	// carrying the buffered title.
	s.Edit(model.DocumentPatch{Content: strPtr("hello")})
	if len(st.creates) != 1 {
		t.Fatalf("expected 1 create, got %d", len(st.creates))
	}
	if st.creates[0].Title != "My note" || st.creates[0].Content != "hello" {
		t.Fatalf("create payload lost buffered fields: %+v", st.creates[0])
	}
	if createdID != "doc-test0001" {
		t.Fatalf("expected onCreated with assigned id, got %q", createdID)
	}
	if got := s.DocumentID(); got != "doc-test0001" {
		t.Fatalf("expected session id after create, got %q", got)
	}

	// Subsequent edits go through the debounced update path, never a
	// second create.
	s.Edit(model.DocumentPatch{Content: strPtr("hello world")})
	time.Sleep(200 * time.Millisecond)
	if len(st.creates) != 1 {
		t.Fatalf("expected still 1 create, got %d", len(st.creates))
	}
	if got := st.updateCount(); got != 1 {
		t.Fatalf("expected 1 update after handoff, got %d", got)
	}
	if up := st.lastUpdate(t); *up.patch.Content != "hello world" {
		t.Fatalf("expected update payload, got %+v", up.patch)
	}
}

func TestSessionCreateFailureRetriesOnNextEdit(t *testing.T) {
	st := newFakeStore()
	st.failCreates = 1

	var mu sync.Mutex
	failed := 0
	s := NewSession(st, 50*time.Millisecond, Hooks{
		OnSaveFailed: func(error) {
			mu.Lock()
			failed++
			mu.Unlock()
		},
	}, nil)

	s.Edit(model.DocumentPatch{Content: strPtr("draft")})
	mu.Lock()
	nFail := failed
	mu.Unlock()
	if nFail != 1 {
		t.Fatalf("expected create failure notification, got %d", nFail)
	}
	if len(st.creates) != 0 {
		t.Fatalf("expected failed create to record nothing, got %d", len(st.creates))
	}

	s.Edit(model.DocumentPatch{Content: strPtr("draft v2")})
	if len(st.creates) != 1 {
		t.Fatalf("expected retry create, got %d", len(st.creates))
	}
	if st.creates[0].Content != "draft v2" {
		t.Fatalf("expected latest draft content, got %q", st.creates[0].Content)
	}
}

func TestSessionCloseCancelsPendingSave(t *testing.T) {
	st := newFakeStore()
	s := NewSessionFor(st, "doc-test0001", 60*time.Millisecond, Hooks{})

	s.Edit(model.DocumentPatch{Content: strPtr("unsaved")})
	s.Close()
	time.Sleep(200 * time.Millisecond)

	if got := st.updateCount(); got != 0 {
		t.Fatalf("expected no write after close, got %d", got)
	}
}

func TestSessionFlushWritesImmediately(t *testing.T) {
	st := newFakeStore()
	s := NewSessionFor(st, "doc-test0001", time.Hour, Hooks{})

	s.Edit(model.DocumentPatch{Content: strPtr("save now")})
	s.Flush()

	if got := st.updateCount(); got != 1 {
		t.Fatalf("expected immediate write on flush, got %d", got)
	}
	if up := st.lastUpdate(t); *up.patch.Content != "save now" {
		t.Fatalf("unexpected flush payload: %+v", up.patch)
	}
}
