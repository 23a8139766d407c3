package calendar

import (
	"sort"

	"mdcal/internal/model"
)

// Segment is the slice of one document's date range that falls inside
// a single week, rendered as one horizontal bar.
type Segment struct {
	Doc model.Document
	// StartCol is the 1-based day column within the week (1=Sunday).
	StartCol int
	// Span is the number of columns the bar covers, at least 1.
	Span int
	// IsStart is true only in the week containing the range's start.
	IsStart bool
	// IsEnd is true only in the week containing the range's end.
	IsEnd bool
	// Lane is the vertical slot: one per segment, in sort order.
	Lane int
}

// WeekPlan holds the planned segments for one week row, parallel to
// MonthGrid.Weeks.
type WeekPlan struct {
	Segments []Segment
}

// LaneCount is the number of vertical slots the week needs.
func (p WeekPlan) LaneCount() int { return len(p.Segments) }

// PlanSegments lays out docs onto the grid, one plan per week row. A
// document spanning several weeks yields exactly one segment per week
// it touches, clipped to that week's columns.
func PlanSegments(grid MonthGrid, docs []model.Document) []WeekPlan {
	plans := make([]WeekPlan, len(grid.Weeks))
	for i, week := range grid.Weeks {
		plans[i] = planWeek(week, docs)
	}
	return plans
}

func planWeek(week Week, docs []model.Document) WeekPlan {
	weekFirst := week.FirstKey()
	weekLast := week.LastKey()

	var segs []Segment
	for _, doc := range docs {
		startKey := DateKey(doc.StartDate)
		endKey := DateKey(doc.EndDate)
		if startKey > weekLast || endKey < weekFirst {
			continue
		}

		startCol, endCol := 0, 0
		for col, cell := range week {
			if cell.Key < startKey || cell.Key > endKey {
				continue
			}
			if startCol == 0 {
				startCol = col + 1
			}
			endCol = col + 1
		}
		span := endCol - startCol + 1
		if startCol == 0 || span <= 0 {
			continue
		}

		segs = append(segs, Segment{
			Doc:      doc,
			StartCol: startCol,
			Span:     span,
			IsStart:  startKey >= weekFirst && startKey <= weekLast,
			IsEnd:    endKey >= weekFirst && endKey <= weekLast,
		})
	}

	// Stable keeps input document order on equal start columns.
	sort.SliceStable(segs, func(a, b int) bool {
		return segs[a].StartCol < segs[b].StartCol
	})
	for i := range segs {
		segs[i].Lane = i
	}
	return WeekPlan{Segments: segs}
}

// WeekHeight reserves one lane slot per segment in the week.
func WeekHeight(laneCount, barHeight, barGap, padding int) int {
	return laneCount*(barHeight+barGap) + padding
}
