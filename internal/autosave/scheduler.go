// Package autosave turns bursty editor input into a bounded rate of
// durable writes. A Scheduler owns the debounce timer for one document;
// a Session adds the create-on-first-keystroke handoff for documents
// that do not have an id yet.
package autosave

import (
	"context"
	"sync"
	"time"

	"mdcal/internal/model"
	"mdcal/internal/store"
)

// DefaultQuietPeriod is the debounce interval after the last edit before
// a save is attempted.
const DefaultQuietPeriod = 2 * time.Second

// State is the per-document save pipeline state.
type State int

const (
	StateClean State = iota
	StateDirty
	StateSaving
)

func (s State) String() string {
	switch s {
	case StateDirty:
		return "dirty"
	case StateSaving:
		return "saving"
	default:
		return "clean"
	}
}

// Hooks are optional notifications for user-visible save feedback. They
// are called from the scheduler's own goroutine, never under its lock.
type Hooks struct {
	OnSaveStarted   func()
	OnSaveSucceeded func(doc model.Document)
	OnSaveFailed    func(err error)
}

// Scheduler coalesces edits for one document id into a single pending
// payload and writes it after a quiet period. There is never more than
// one in-flight write per scheduler; a later payload is only dispatched
// after the prior write completed.
type Scheduler struct {
	st    store.Store
	id    string
	quiet time.Duration
	hooks Hooks

	mu         sync.Mutex
	pending    model.DocumentPatch
	hasPending bool
	timer      *time.Timer
	lastEdit   time.Time
	inFlight   bool
	fireAgain  bool
}

func NewScheduler(st store.Store, id string, quiet time.Duration, hooks Hooks) *Scheduler {
	if quiet <= 0 {
		quiet = DefaultQuietPeriod
	}
	return &Scheduler{st: st, id: id, quiet: quiet, hooks: hooks}
}

func (s *Scheduler) DocumentID() string { return s.id }

// Schedule records patch as (part of) the pending payload and restarts
// the quiet-period timer. Edits arriving while a save is in flight are
// coalesced the same way and written by the next save.
func (s *Scheduler) Schedule(patch model.DocumentPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pending = s.pending.Merge(patch)
	s.hasPending = true
	s.lastEdit = time.Now()
	if s.timer == nil {
		s.timer = time.AfterFunc(s.quiet, s.fire)
	} else {
		s.timer.Reset(s.quiet)
	}
}

// Flush saves the pending payload now, skipping the quiet period. It is
// synchronous unless a write is already in flight, in which case the
// payload rides along right after that write completes.
func (s *Scheduler) Flush() {
	s.mu.Lock()
	s.stopTimerLocked()
	if s.inFlight {
		s.fireAgain = true
		s.mu.Unlock()
		return
	}
	if !s.hasPending {
		s.mu.Unlock()
		return
	}
	patch := s.takePendingLocked()
	s.mu.Unlock()
	s.save(patch)
}

// Cancel stops the pending timer so no new write fires. Safe to call
// repeatedly and after the timer already fired; a write that is already
// in flight completes (its result is for the caller to discard).
func (s *Scheduler) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopTimerLocked()
	s.fireAgain = false
}

func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.inFlight:
		return StateSaving
	case s.hasPending:
		return StateDirty
	default:
		return StateClean
	}
}

func (s *Scheduler) stopTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Scheduler) takePendingLocked() model.DocumentPatch {
	patch := s.pending
	s.pending = model.DocumentPatch{}
	s.hasPending = false
	s.inFlight = true
	return patch
}

// fire runs on the timer goroutine when the quiet period elapses.
func (s *Scheduler) fire() {
	s.mu.Lock()
	// A Schedule may have reset the timer between expiry and this lock;
	// honor the remaining quiet time instead of saving early.
	if remaining := s.quiet - time.Since(s.lastEdit); remaining > time.Millisecond && s.timer != nil {
		s.timer.Reset(remaining)
		s.mu.Unlock()
		return
	}
	s.timer = nil
	if s.inFlight {
		// Writes are strictly sequential per document; rerun after the
		// current one completes.
		s.fireAgain = true
		s.mu.Unlock()
		return
	}
	if !s.hasPending {
		s.mu.Unlock()
		return
	}
	patch := s.takePendingLocked()
	s.mu.Unlock()
	s.save(patch)
}

func (s *Scheduler) save(patch model.DocumentPatch) {
	if h := s.hooks.OnSaveStarted; h != nil {
		h()
	}

	doc, err := s.st.Update(context.Background(), s.id, patch)

	s.mu.Lock()
	s.inFlight = false
	if err != nil {
		// Keep the failed payload so the next save flushes it, but let
		// edits made meanwhile win per field.
		s.pending = patch.Merge(s.pending)
		s.hasPending = true
		s.fireAgain = false
		s.mu.Unlock()
		if h := s.hooks.OnSaveFailed; h != nil {
			h(err)
		}
		return
	}
	rerun := s.fireAgain && s.hasPending
	s.fireAgain = false
	var next model.DocumentPatch
	if rerun {
		next = s.takePendingLocked()
	}
	s.mu.Unlock()

	if h := s.hooks.OnSaveSucceeded; h != nil {
		h(doc)
	}
	if rerun {
		s.save(next)
	}
}
