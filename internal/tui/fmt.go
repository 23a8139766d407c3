package tui

import (
	"time"

	"mdcal/internal/model"
)

func fmtDay(ms int64) string {
	return time.UnixMilli(ms).Local().Format("Jan 2, 2006")
}

// fmtDateRange renders a document's span compactly: single days as one
// date, ranges with an arrow.
func fmtDateRange(startMs, endMs int64) string {
	start := time.UnixMilli(startMs).Local()
	end := time.UnixMilli(endMs).Local()
	if start.Year() == end.Year() && start.YearDay() == end.YearDay() {
		return start.Format("Jan 2, 2006")
	}
	if start.Year() == end.Year() {
		return start.Format("Jan 2") + " " + glyphArrow() + " " + end.Format("Jan 2, 2006")
	}
	return start.Format("Jan 2, 2006") + " " + glyphArrow() + " " + end.Format("Jan 2, 2006")
}

func statusLabel(s model.Status) string {
	switch s {
	case model.StatusReady:
		return "Ready"
	case model.StatusInProgress:
		return "In progress"
	case model.StatusPaused:
		return "Paused"
	case model.StatusCompleted:
		return "Completed"
	default:
		return ""
	}
}
