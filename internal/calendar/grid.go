package calendar

import "time"

// DayCell is one cell of the month grid.
type DayCell struct {
	Year         int
	Month        time.Month
	Day          int
	Key          string
	IsOtherMonth bool
}

// Week is one Sunday-first row of seven cells.
type Week [7]DayCell

// FirstKey returns the date key of the week's Sunday.
func (w Week) FirstKey() string { return w[0].Key }

// LastKey returns the date key of the week's Saturday.
func (w Week) LastKey() string { return w[6].Key }

// MonthGrid is the fully expanded display grid for one month: every
// day of the target month exactly once, padded with adjacent-month
// days so each row holds seven cells.
type MonthGrid struct {
	Year  int
	Month time.Month
	Weeks []Week
}

// BuildMonthGrid expands (year, month) into its display grid. The
// output depends only on the inputs; "today" highlighting is the
// renderer's concern.
func BuildMonthGrid(year int, month time.Month) MonthGrid {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.Local)
	lead := int(first.Weekday())
	days := DaysInMonth(year, month)

	total := lead + days
	if rem := total % 7; rem != 0 {
		total += 7 - rem
	}

	grid := MonthGrid{Year: year, Month: month}
	for i := 0; i < total; i += 7 {
		var week Week
		for col := 0; col < 7; col++ {
			d := first.AddDate(0, 0, i+col-lead)
			week[col] = DayCell{
				Year:         d.Year(),
				Month:        d.Month(),
				Day:          d.Day(),
				Key:          d.Format(dateKeyLayout),
				IsOtherMonth: d.Month() != month || d.Year() != year,
			}
		}
		grid.Weeks = append(grid.Weeks, week)
	}
	return grid
}
