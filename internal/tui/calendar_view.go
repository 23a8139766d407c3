package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"

	"mdcal/internal/calendar"
	"mdcal/internal/model"
)

// maxVisibleLanes caps how many bar rows a week renders before
// collapsing the remainder into a "+N more" line.
const maxVisibleLanes = 3

var weekdayNames = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

func (m appModel) calendarView() string {
	grid := calendar.BuildMonthGrid(m.calYear, m.calMonth)
	plans := calendar.PlanSegments(grid, m.monthDocs)
	todayKey := calendar.DateKey(time.Now().UnixMilli())

	colW := (m.width - 2) / 7
	if colW < 6 {
		colW = 6
	}

	var b strings.Builder
	title := lipgloss.NewStyle().Bold(true).
		Render(time.Date(m.calYear, m.calMonth, 1, 0, 0, 0, 0, time.Local).Format("January 2006"))
	b.WriteString(title)
	b.WriteString("\n")

	for _, name := range weekdayNames {
		b.WriteString(styleMuted().Render(padCell(name, colW)))
	}
	b.WriteString("\n")

	for i, week := range grid.Weeks {
		b.WriteString(renderDayRow(week, todayKey, colW))
		b.WriteString("\n")
		b.WriteString(renderLaneRows(plans[i], colW))
	}
	return b.String()
}

func renderDayRow(week calendar.Week, todayKey string, colW int) string {
	var b strings.Builder
	for _, cell := range week {
		st := lipgloss.NewStyle()
		if cell.IsOtherMonth {
			st = st.Foreground(colorOtherMonthFg)
		}
		if cell.Key == todayKey {
			st = st.Background(colorTodayBg).Bold(true)
		}
		b.WriteString(st.Render(padCell(fmt.Sprintf("%2d", cell.Day), colW)))
	}
	return b.String()
}

// renderLaneRows draws one row per lane, bars spanning their columns,
// plus an overflow line when the week has more lanes than fit.
func renderLaneRows(plan calendar.WeekPlan, colW int) string {
	var b strings.Builder
	lanes := plan.Segments
	visible := lanes
	if len(visible) > maxVisibleLanes {
		visible = visible[:maxVisibleLanes]
	}

	barStyle := lipgloss.NewStyle().Background(colorBarBg).Foreground(colorBarFg)
	for _, seg := range visible {
		col := 1
		for col <= 7 {
			if col == seg.StartCol {
				barW := seg.Span * colW
				b.WriteString(barStyle.Render(padCell(barLabel(seg, barW-1), barW)))
				col += seg.Span
				continue
			}
			b.WriteString(strings.Repeat(" ", colW))
			col++
		}
		b.WriteString("\n")
	}

	if hidden := len(lanes) - maxVisibleLanes; hidden > 0 {
		b.WriteString(styleMuted().Render(fmt.Sprintf(" +%d more", hidden)))
		b.WriteString("\n")
	}
	return b.String()
}

// barLabel builds the text inside a segment bar: status marker, then
// the title, with a continuation arrow when the bar carries over from
// the previous week.
func barLabel(seg calendar.Segment, width int) string {
	label := statusGlyph(seg.Doc.Status) + " " + model.DisplayTitle(seg.Doc.Title)
	if !seg.IsStart {
		label = glyphArrow() + " " + model.DisplayTitle(seg.Doc.Title)
	}
	label = " " + label
	if xansi.StringWidth(label) > width {
		label = xansi.Cut(label, 0, width)
	}
	return label
}

func padCell(s string, width int) string {
	if w := xansi.StringWidth(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return xansi.Cut(s, 0, width)
}
