package autosave

import (
	"context"
	"strings"
	"sync"
	"time"

	"mdcal/internal/model"
	"mdcal/internal/store"
)

// Session is one open editor's save pipeline. Until the document exists,
// edits accumulate in a draft and nothing touches the store; the first
// edit that yields non-empty content triggers exactly one direct Create
// (never debounced). From then on edits flow through the Scheduler.
//
// Opening an editor therefore never persists an empty document, and a
// single editing burst never creates two documents.
type Session struct {
	st        store.Store
	quiet     time.Duration
	hooks     Hooks
	onCreated func(doc model.Document)

	mu       sync.Mutex
	sched    *Scheduler
	draft    model.DocumentPatch
	creating bool
	// buffered holds edits that arrive while the Create call is running;
	// they are replayed through the scheduler once the id exists.
	buffered model.DocumentPatch
	hasBuf   bool
}

// NewSession starts a session for a not-yet-created document.
func NewSession(st store.Store, quiet time.Duration, hooks Hooks, onCreated func(model.Document)) *Session {
	if quiet <= 0 {
		quiet = DefaultQuietPeriod
	}
	return &Session{st: st, quiet: quiet, hooks: hooks, onCreated: onCreated}
}

// NewSessionFor starts a session for an existing document id.
func NewSessionFor(st store.Store, id string, quiet time.Duration, hooks Hooks) *Session {
	if quiet <= 0 {
		quiet = DefaultQuietPeriod
	}
	return &Session{st: st, quiet: quiet, hooks: hooks, sched: NewScheduler(st, id, quiet, hooks)}
}

// DocumentID returns the assigned id, or "" while nothing is persisted.
func (s *Session) DocumentID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sched == nil {
		return ""
	}
	return s.sched.DocumentID()
}

func (s *Session) State() State {
	s.mu.Lock()
	sched := s.sched
	s.mu.Unlock()
	if sched == nil {
		return StateClean
	}
	return sched.State()
}

// Edit routes one edit into the pipeline. Blocking only happens on the
// create path (the single direct Create call).
func (s *Session) Edit(patch model.DocumentPatch) {
	s.mu.Lock()
	if s.sched != nil {
		sched := s.sched
		s.mu.Unlock()
		sched.Schedule(patch)
		return
	}
	if s.creating {
		s.buffered = s.buffered.Merge(patch)
		s.hasBuf = true
		s.mu.Unlock()
		return
	}

	s.draft = s.draft.Merge(patch)
	if !draftReady(s.draft) {
		s.mu.Unlock()
		return
	}
	s.creating = true
	draft := s.draft
	s.mu.Unlock()

	doc, err := s.st.Create(context.Background(), inputFromDraft(draft))

	s.mu.Lock()
	s.creating = false
	if err != nil {
		// Keep the draft; the next edit retries the create.
		s.draft = s.draft.Merge(s.buffered)
		s.buffered = model.DocumentPatch{}
		s.hasBuf = false
		s.mu.Unlock()
		if h := s.hooks.OnSaveFailed; h != nil {
			h(err)
		}
		return
	}
	s.sched = NewScheduler(s.st, doc.ID, s.quiet, s.hooks)
	replay := s.buffered
	hasReplay := s.hasBuf
	s.buffered = model.DocumentPatch{}
	s.hasBuf = false
	s.draft = model.DocumentPatch{}
	s.mu.Unlock()

	if s.onCreated != nil {
		s.onCreated(doc)
	}
	if hasReplay {
		s.sched.Schedule(replay)
	}
}

// Flush saves any pending payload immediately.
func (s *Session) Flush() {
	s.mu.Lock()
	sched := s.sched
	s.mu.Unlock()
	if sched != nil {
		sched.Flush()
	}
}

// Close cancels the pending timer so no write fires after the editor
// stopped observing this session. An in-flight write may still complete.
func (s *Session) Close() {
	s.mu.Lock()
	sched := s.sched
	s.mu.Unlock()
	if sched != nil {
		sched.Cancel()
	}
}

// draftReady reports whether the accumulated draft warrants a Create:
// only once there is non-empty content.
func draftReady(draft model.DocumentPatch) bool {
	return draft.Content != nil && strings.TrimSpace(*draft.Content) != ""
}

func inputFromDraft(draft model.DocumentPatch) model.DocumentInput {
	input := model.DocumentInput{}
	if draft.Title != nil {
		input.Title = *draft.Title
	}
	if draft.Content != nil {
		input.Content = *draft.Content
	}
	if draft.StartDate != nil {
		input.StartDate = *draft.StartDate
	}
	if draft.EndDate != nil {
		input.EndDate = *draft.EndDate
	}
	if draft.Status != nil {
		input.Status = *draft.Status
	}
	return input
}
