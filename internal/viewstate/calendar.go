package viewstate

import (
	"fmt"
	"time"

	"github.com/evanschultz/agenda/internal/domain"
)

const (
	// InlineAppointments is the number of appointments a day cell lists.
	InlineAppointments = 2
	// InlineTasks is the number of tasks a day cell lists.
	InlineTasks = 1
	// inlineSlots is the cell capacity used by the "+N more" indicator.
	inlineSlots = InlineAppointments + InlineTasks
)

// MonthCursor is the (year, month) a calendar view is showing.
type MonthCursor struct {
	Year  int
	Month time.Month
}

// CursorFor returns the cursor of the month containing t.
func CursorFor(t time.Time) MonthCursor {
	return MonthCursor{Year: t.Year(), Month: t.Month()}
}

// Prev returns the previous month, wrapping January to December.
func (c MonthCursor) Prev() MonthCursor {
	if c.Month <= time.January {
		return MonthCursor{Year: c.Year - 1, Month: time.December}
	}
	return MonthCursor{Year: c.Year, Month: c.Month - 1}
}

// Next returns the following month, wrapping December to January.
func (c MonthCursor) Next() MonthCursor {
	if c.Month >= time.December {
		return MonthCursor{Year: c.Year + 1, Month: time.January}
	}
	return MonthCursor{Year: c.Year, Month: c.Month + 1}
}

// First returns day one of the month in UTC.
func (c MonthCursor) First() time.Time {
	return time.Date(c.Year, c.Month, 1, 0, 0, 0, 0, time.UTC)
}

// DayCell is one numbered day of a month grid.
type DayCell struct {
	Day                int
	Date               string
	Bucket             domain.CalendarDay
	Today              bool
	HasEvents          bool
	InlineAppointments []domain.Appointment
	InlineTasks        []domain.Task
	// More is the indicator count: total events minus three inline slots.
	More int
}

// Hidden returns how many events are not listed inline.
func (c DayCell) Hidden() int {
	return c.Bucket.Total() - len(c.InlineAppointments) - len(c.InlineTasks)
}

// MoreLabel renders the overflow indicator, or "" when nothing overflows.
func (c DayCell) MoreLabel() string {
	if c.More <= 0 {
		return ""
	}
	return fmt.Sprintf("+%d more", c.More)
}

// MonthGrid is a Sunday-first month layout.
type MonthGrid struct {
	Cursor         MonthCursor
	LeadingBlanks  int
	DaysInMonth    int
	TrailingBlanks int
	Days           []DayCell
}

// BuildMonthGrid lays out cursor's month with buckets; now marks today.
func BuildMonthGrid(cursor MonthCursor, buckets domain.CalendarMonth, now time.Time) MonthGrid {
	first := cursor.First()
	grid := MonthGrid{
		Cursor:        cursor,
		LeadingBlanks: int(first.Weekday()),
		DaysInMonth:   domain.DaysIn(cursor.Year, cursor.Month),
	}
	if rem := (grid.LeadingBlanks + grid.DaysInMonth) % 7; rem != 0 {
		grid.TrailingBlanks = 7 - rem
	}

	today := domain.FormatDate(now)
	viewingNow := now.Year() == cursor.Year && now.Month() == cursor.Month
	grid.Days = make([]DayCell, 0, grid.DaysInMonth)
	for day := 1; day <= grid.DaysInMonth; day++ {
		date := domain.FormatDate(time.Date(cursor.Year, cursor.Month, day, 0, 0, 0, 0, time.UTC))
		bucket := buckets[date]
		cell := DayCell{
			Day:       day,
			Date:      date,
			Bucket:    bucket,
			Today:     viewingNow && date == today,
			HasEvents: len(bucket.Appointments) > 0 || len(bucket.Tasks) > 0,
		}
		cell.InlineAppointments = bucket.Appointments[:min(InlineAppointments, len(bucket.Appointments))]
		cell.InlineTasks = bucket.Tasks[:min(InlineTasks, len(bucket.Tasks))]
		if total := bucket.Total(); total > inlineSlots {
			cell.More = total - inlineSlots
		}
		grid.Days = append(grid.Days, cell)
	}
	return grid
}

// Weeks splits the grid into rows of seven; blank positions are nil.
func (g MonthGrid) Weeks() [][]*DayCell {
	cells := make([]*DayCell, 0, g.LeadingBlanks+len(g.Days)+g.TrailingBlanks)
	for range g.LeadingBlanks {
		cells = append(cells, nil)
	}
	for i := range g.Days {
		cells = append(cells, &g.Days[i])
	}
	for range g.TrailingBlanks {
		cells = append(cells, nil)
	}
	weeks := make([][]*DayCell, 0, len(cells)/7)
	for start := 0; start < len(cells); start += 7 {
		weeks = append(weeks, cells[start:min(start+7, len(cells))])
	}
	return weeks
}

// Day returns the cell for a 1-based day number.
func (g MonthGrid) Day(day int) (DayCell, bool) {
	if day < 1 || day > len(g.Days) {
		return DayCell{}, false
	}
	return g.Days[day-1], true
}
