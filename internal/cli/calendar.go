package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"mdcal/internal/calendar"
	"mdcal/internal/model"
	"mdcal/internal/store"
)

// calendarSegment is the JSON shape of one planned bar.
type calendarSegment struct {
	DocumentID string `json:"documentId"`
	Title      string `json:"title"`
	StartCol   int    `json:"startCol"`
	Span       int    `json:"span"`
	IsStart    bool   `json:"isStart"`
	IsEnd      bool   `json:"isEnd"`
	Lane       int    `json:"lane"`
}

type calendarWeek struct {
	Days     []calendarDay     `json:"days"`
	Segments []calendarSegment `json:"segments"`
}

type calendarDay struct {
	Key          string `json:"key"`
	Day          int    `json:"day"`
	IsOtherMonth bool   `json:"isOtherMonth"`
}

func newCalendarCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "calendar [YYYY-MM]",
		Short: "Print the month grid with planned document bars",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, month := time.Now().Year(), time.Now().Month()
			if len(args) == 1 {
				t, err := time.ParseInLocation("2006-01", args[0], time.Local)
				if err != nil {
					return writeErr(cmd, fmt.Errorf("invalid month %q: want YYYY-MM", args[0]))
				}
				year, month = t.Year(), t.Month()
			}

			st, err := openStore(app)
			if err != nil {
				return err
			}
			defer closeStore(st)

			docs, err := store.DocumentsForMonth(cmd.Context(), st, year, month)
			if err != nil {
				return writeErr(cmd, err)
			}

			grid := calendar.BuildMonthGrid(year, month)
			plans := calendar.PlanSegments(grid, docs)

			weeks := make([]calendarWeek, len(grid.Weeks))
			for i, week := range grid.Weeks {
				days := make([]calendarDay, 7)
				for col, cell := range week {
					days[col] = calendarDay{Key: cell.Key, Day: cell.Day, IsOtherMonth: cell.IsOtherMonth}
				}
				segs := make([]calendarSegment, 0, len(plans[i].Segments))
				for _, seg := range plans[i].Segments {
					segs = append(segs, calendarSegment{
						DocumentID: seg.Doc.ID,
						Title:      model.DisplayTitle(seg.Doc.Title),
						StartCol:   seg.StartCol,
						Span:       seg.Span,
						IsStart:    seg.IsStart,
						IsEnd:      seg.IsEnd,
						Lane:       seg.Lane,
					})
				}
				weeks[i] = calendarWeek{Days: days, Segments: segs}
			}

			return writeOut(cmd, app, map[string]any{
				"year":  year,
				"month": int(month),
				"weeks": weeks,
			})
		},
	}
}
