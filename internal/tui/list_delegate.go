package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"

	"mdcal/internal/model"
)

// docItem adapts a document summary for the bubbles list.
type docItem struct {
	doc model.DocumentSummary
}

func (i docItem) Title() string       { return model.DisplayTitle(i.doc.Title) }
func (i docItem) FilterValue() string { return i.doc.Title }

type docDelegate struct {
	normal   lipgloss.Style
	selected lipgloss.Style
	meta     lipgloss.Style
}

func newDocDelegate() docDelegate {
	return docDelegate{
		normal: lipgloss.NewStyle(),
		selected: lipgloss.NewStyle().
			Foreground(colorSelectedFg).
			Background(colorSelectedBg).
			Bold(true),
		meta: styleMuted(),
	}
}

func (d docDelegate) Height() int                             { return 1 }
func (d docDelegate) Spacing() int                            { return 0 }
func (d docDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d docDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	contentW := m.Width()
	if contentW < 4 {
		fmt.Fprint(w, "")
		return
	}

	it, ok := item.(docItem)
	if !ok {
		fmt.Fprint(w, fmt.Sprint(item))
		return
	}

	style := d.normal
	if index == m.Index() {
		style = d.selected
	}

	dates := fmtDateRange(it.doc.StartDate, it.doc.EndDate)
	left := statusGlyph(it.doc.Status) + " " + it.Title()

	// Right-align the date range when there is room, otherwise cut the title.
	leftW := xansi.StringWidth(left)
	dateW := xansi.StringWidth(dates)
	line := left
	if leftW+dateW+2 <= contentW {
		line = left + strings.Repeat(" ", contentW-leftW-dateW) + dates
	} else {
		line = xansi.Cut(left, 0, contentW)
		if lw := xansi.StringWidth(line); lw < contentW {
			line += strings.Repeat(" ", contentW-lw)
		}
	}

	fmt.Fprint(w, style.Render(line))
}
