package store

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"mdcal/internal/model"
)

// ErrNotFound is returned by Update when the id does not exist.
// Get reports absence via its ok result instead; Delete treats an
// unknown id as a no-op.
var ErrNotFound = errors.New("document not found")

// Store is the document CRUD + query surface. Both backends (SQLite and
// plain files) satisfy it; callers never depend on which one is wired in.
//
// Every mutating call is durable before it returns: a Get or List issued
// afterwards from the same process observes the new state. Update applies
// the patch as one read-modify-write unit against the latest stored record.
type Store interface {
	Create(ctx context.Context, input model.DocumentInput) (model.Document, error)
	Get(ctx context.Context, id string) (model.Document, bool, error)
	Update(ctx context.Context, id string, patch model.DocumentPatch) (model.Document, error)
	Delete(ctx context.Context, id string) error

	// ListAll returns every document sorted by UpdatedAt descending.
	ListAll(ctx context.Context) ([]model.Document, error)
	// Summaries is ListAll without bodies, for list/calendar rendering.
	Summaries(ctx context.Context) ([]model.DocumentSummary, error)
	// ListByDateRange returns documents whose [StartDate, EndDate] range
	// intersects [from, to], inclusive on both bounds.
	ListByDateRange(ctx context.Context, from, to int64) ([]model.Document, error)
	// Search is a case-insensitive substring match over title and content.
	// An empty query behaves like ListAll.
	Search(ctx context.Context, query string) ([]model.Document, error)
}

// Closer is implemented by backends that hold a process-wide handle.
// Normal operation never closes the store; tests do.
type Closer interface {
	Close() error
}

// DocumentsForMonth is the calendar's month-window query: everything
// overlapping [first day 00:00, last day 23:59:59.999] in local time.
func DocumentsForMonth(ctx context.Context, s Store, year int, month time.Month) ([]model.Document, error) {
	from := time.Date(year, month, 1, 0, 0, 0, 0, time.Local)
	to := time.Date(year, month+1, 1, 0, 0, 0, 0, time.Local).Add(-time.Millisecond)
	return s.ListByDateRange(ctx, from.UnixMilli(), to.UnixMilli())
}

func nowUnixMilli() int64 { return time.Now().UnixMilli() }

// newDocumentFromInput stamps defaults and timestamps for a create.
// The id is assigned by the backend (it knows which ids are taken).
func newDocumentFromInput(input model.DocumentInput, now int64) model.Document {
	doc := model.Document{
		Title:     input.Title,
		Content:   input.Content,
		StartDate: input.StartDate,
		EndDate:   input.EndDate,
		Status:    model.NormalizeStatus(input.Status),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if doc.StartDate == 0 {
		doc.StartDate = now
	}
	if doc.EndDate == 0 {
		doc.EndDate = doc.StartDate
	}
	// Only an explicit end paired with a defaulted start lets the end win;
	// otherwise an inverted pair snaps the end up to the start.
	clampDates(&doc, !(input.StartDate == 0 && input.EndDate != 0))
	return doc
}

// applyPatch merges the provided fields onto doc and restamps UpdatedAt.
// ID and CreatedAt never change.
//
// Date policy: the edited bound wins. If the patch moves StartDate past
// EndDate, EndDate advances to match; if it moves EndDate before
// StartDate, StartDate retreats to match. If both are provided and
// inverted, EndDate snaps up to StartDate. The stored invariant
// EndDate >= StartDate always holds on return.
func applyPatch(doc *model.Document, patch model.DocumentPatch, now int64) {
	if patch.Title != nil {
		doc.Title = *patch.Title
	}
	if patch.Content != nil {
		doc.Content = *patch.Content
	}
	if patch.StartDate != nil {
		doc.StartDate = *patch.StartDate
	}
	if patch.EndDate != nil {
		doc.EndDate = *patch.EndDate
	}
	if patch.Status != nil {
		doc.Status = model.NormalizeStatus(*patch.Status)
	}
	startEdited := patch.StartDate != nil
	clampDates(doc, startEdited)
	doc.UpdatedAt = now
}

func clampDates(doc *model.Document, startWins bool) {
	if doc.EndDate >= doc.StartDate {
		return
	}
	if startWins {
		doc.EndDate = doc.StartDate
	} else {
		doc.StartDate = doc.EndDate
	}
}

// migrateLegacyDate maps the single "date" field written by older
// versions onto the start/end pair.
func migrateLegacyDate(doc *model.Document) {
	if doc.LegacyDate != 0 {
		if doc.StartDate == 0 {
			doc.StartDate = doc.LegacyDate
		}
		if doc.EndDate == 0 {
			doc.EndDate = doc.LegacyDate
		}
		doc.LegacyDate = 0
	}
	if doc.EndDate < doc.StartDate {
		doc.EndDate = doc.StartDate
	}
	doc.Status = model.NormalizeStatus(doc.Status)
}

func sortByUpdatedDesc(docs []model.Document) {
	sort.SliceStable(docs, func(i, j int) bool { return docs[i].UpdatedAt > docs[j].UpdatedAt })
}

func rangesOverlap(startA, endA, startB, endB int64) bool {
	return startA <= endB && endA >= startB
}

func matchesQuery(doc model.Document, query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(doc.Title), q) ||
		strings.Contains(strings.ToLower(doc.Content), q)
}
