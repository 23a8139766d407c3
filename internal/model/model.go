package model

import (
	"fmt"
	"strings"
)

// Status is the workflow state of a document. The set is closed; anything
// else coming off disk is normalized to StatusNone.
type Status string

const (
	StatusNone       Status = "none"
	StatusReady      Status = "ready"
	StatusInProgress Status = "in_progress"
	StatusPaused     Status = "paused"
	StatusCompleted  Status = "completed"
)

func ParseStatus(s string) (Status, error) {
	switch Status(strings.ToLower(strings.TrimSpace(s))) {
	case StatusNone, "":
		return StatusNone, nil
	case StatusReady:
		return StatusReady, nil
	case StatusInProgress:
		return StatusInProgress, nil
	case StatusPaused:
		return StatusPaused, nil
	case StatusCompleted:
		return StatusCompleted, nil
	default:
		return "", fmt.Errorf("invalid status: %q (expected none|ready|in_progress|paused|completed)", s)
	}
}

// NormalizeStatus maps unknown or empty values to StatusNone. Used on load
// so that records written by older versions never surface an invalid status.
func NormalizeStatus(s Status) Status {
	st, err := ParseStatus(string(s))
	if err != nil {
		return StatusNone
	}
	return st
}

// NextStatus cycles ready -> in_progress -> paused -> completed -> ready.
// From none the cycle starts at ready.
func NextStatus(s Status) Status {
	switch s {
	case StatusReady:
		return StatusInProgress
	case StatusInProgress:
		return StatusPaused
	case StatusPaused:
		return StatusCompleted
	case StatusCompleted:
		return StatusReady
	default:
		return StatusReady
	}
}

// Document is the persisted unit: a markdown body plus calendar metadata.
// All timestamps are unix milliseconds. EndDate >= StartDate always holds
// for stored records.
type Document struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`

	StartDate int64  `json:"startDate"`
	EndDate   int64  `json:"endDate"`
	Status    Status `json:"status"`

	CreatedAt int64 `json:"createdAt"`
	UpdatedAt int64 `json:"updatedAt"`

	// LegacyDate carries the single "date" field written by older versions.
	// Loaders map it to StartDate = EndDate = LegacyDate and clear it.
	LegacyDate int64 `json:"date,omitempty"`
}

// DocumentSummary is Document without the body, for list/calendar queries
// where transferring full markdown text is wasted work.
type DocumentSummary struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	StartDate int64  `json:"startDate"`
	EndDate   int64  `json:"endDate"`
	Status    Status `json:"status"`
	CreatedAt int64  `json:"createdAt"`
	UpdatedAt int64  `json:"updatedAt"`
}

func (d Document) Summary() DocumentSummary {
	return DocumentSummary{
		ID:        d.ID,
		Title:     d.Title,
		StartDate: d.StartDate,
		EndDate:   d.EndDate,
		Status:    d.Status,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

// DocumentInput is the create payload. Zero fields are defaulted by the
// store: empty title/content stay empty, zero dates become "now", empty
// status becomes StatusNone.
type DocumentInput struct {
	Title     string `json:"title,omitempty"`
	Content   string `json:"content,omitempty"`
	StartDate int64  `json:"startDate,omitempty"`
	EndDate   int64  `json:"endDate,omitempty"`
	Status    Status `json:"status,omitempty"`
}

// DocumentPatch is the partial-update payload: only non-nil fields change.
// ID and CreatedAt are immutable and therefore not representable here.
type DocumentPatch struct {
	Title     *string `json:"title,omitempty"`
	Content   *string `json:"content,omitempty"`
	StartDate *int64  `json:"startDate,omitempty"`
	EndDate   *int64  `json:"endDate,omitempty"`
	Status    *Status `json:"status,omitempty"`
}

func (p DocumentPatch) IsZero() bool {
	return p.Title == nil && p.Content == nil && p.StartDate == nil && p.EndDate == nil && p.Status == nil
}

// Merge overlays src on top of p, newest writer wins per field.
func (p DocumentPatch) Merge(src DocumentPatch) DocumentPatch {
	out := p
	if src.Title != nil {
		out.Title = src.Title
	}
	if src.Content != nil {
		out.Content = src.Content
	}
	if src.StartDate != nil {
		out.StartDate = src.StartDate
	}
	if src.EndDate != nil {
		out.EndDate = src.EndDate
	}
	if src.Status != nil {
		out.Status = src.Status
	}
	return out
}

// DisplayTitle is the presentation fallback for empty titles. The stored
// title itself may be empty; "Untitled" is never persisted.
func DisplayTitle(title string) string {
	if strings.TrimSpace(title) == "" {
		return "Untitled"
	}
	return title
}
