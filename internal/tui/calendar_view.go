package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/evanschultz/agenda/internal/domain"
	"github.com/evanschultz/agenda/internal/viewstate"
)

// calendar layout: a title row and the weekday row precede the weeks.
const (
	calHeaderRows = 2
	calCellRows   = 4
	calWeekRows   = calCellRows + 1
	calSeparator  = " │ "
	calSepWidth   = 3
)

// loadCalendar fetches the month under the cursor; older responses are dropped.
func (m *Model) loadCalendar() tea.Cmd {
	m.calGen++
	m.calLoading = true
	svc, gen, cursor := m.svc, m.calGen, m.calCursor
	return func() tea.Msg {
		month, err := svc.CalendarMonth(context.Background(), cursor.Year, cursor.Month)
		return calendarLoadedMsg{generation: gen, cursor: cursor, month: month, err: err}
	}
}

func (m Model) applyCalendar(msg calendarLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.generation != m.calGen {
		return m, nil
	}
	m.calLoading = false
	if msg.err != nil {
		m.calErr = msg.err
		m.status = msg.err.Error()
		return m, m.notify(viewstate.NoticeError, msgCalendarLoadFailed)
	}
	m.calErr = nil
	m.calLoaded = true
	m.calCursor = msg.cursor
	m.calMonth = msg.month
	return m, nil
}

func (m Model) calendarGrid() viewstate.MonthGrid {
	return viewstate.BuildMonthGrid(m.calCursor, m.calMonth, m.now())
}

// moveCalendarDay shifts the selected day, crossing into a neighboring month when needed.
func (m *Model) moveCalendarDay(delta int) tea.Cmd {
	selected := time.Date(m.calCursor.Year, m.calCursor.Month, m.calDay, 0, 0, 0, 0, time.UTC).AddDate(0, 0, delta)
	m.calDay = selected.Day()
	if cursor := viewstate.CursorFor(selected); cursor != m.calCursor {
		return m.gotoMonth(cursor)
	}
	return nil
}

// gotoMonth moves the cursor and reloads; the selected day is clamped to the month.
func (m *Model) gotoMonth(cursor viewstate.MonthCursor) tea.Cmd {
	m.calCursor = cursor
	m.calDay = clamp(m.calDay, 1, domain.DaysIn(cursor.Year, cursor.Month))
	m.calMonth = nil
	m.calLoaded = false
	return m.loadCalendar()
}

func (m Model) selectedDay() (viewstate.DayCell, bool) {
	return m.calendarGrid().Day(m.calDay)
}

func (m *Model) openDay(day viewstate.DayCell) {
	m.detail = &detailState{day: &day}
	m.mode = modeDetail
}

func (m Model) handleCalendarKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch {
	case key.Matches(msg, m.keys.moveLeft):
		cmd = m.moveCalendarDay(-1)
	case key.Matches(msg, m.keys.moveRight):
		cmd = m.moveCalendarDay(1)
	case key.Matches(msg, m.keys.moveUp):
		cmd = m.moveCalendarDay(-7)
	case key.Matches(msg, m.keys.moveDown):
		cmd = m.moveCalendarDay(7)
	case key.Matches(msg, m.keys.prevMonth):
		cmd = m.gotoMonth(m.calCursor.Prev())
	case key.Matches(msg, m.keys.nextMonth):
		cmd = m.gotoMonth(m.calCursor.Next())
	case key.Matches(msg, m.keys.today):
		now := m.now()
		m.calDay = now.Day()
		cmd = m.gotoMonth(viewstate.CursorFor(now))
	case key.Matches(msg, m.keys.openDetail):
		if day, ok := m.selectedDay(); ok {
			m.openDay(day)
		}
	case key.Matches(msg, m.keys.newItem):
		date := domain.FormatDate(time.Date(m.calCursor.Year, m.calCursor.Month, m.calDay, 0, 0, 0, 0, time.UTC))
		cmd = m.openForm(formAppointment, "Novo compromisso", "", appointmentFormFields, map[string]string{
			"data": m.dates.display(date),
		})
	}
	return m, cmd
}

func (m Model) calCellWidth() int {
	return clamp((m.width-6*calSepWidth)/7, 8, 26)
}

func (m Model) calGridTop() int {
	return bodyTop + calHeaderRows
}

// calendarDayAt maps a screen cell to the day cell under it.
func (m Model) calendarDayAt(x, y int) (viewstate.DayCell, bool) {
	top := m.calGridTop()
	if y < top || x < 0 {
		return viewstate.DayCell{}, false
	}
	week := (y - top) / calWeekRows
	if (y-top)%calWeekRows == calCellRows {
		return viewstate.DayCell{}, false
	}
	col := x / (m.calCellWidth() + calSepWidth)
	weeks := m.calendarGrid().Weeks()
	if week >= len(weeks) || col >= len(weeks[week]) || weeks[week][col] == nil {
		return viewstate.DayCell{}, false
	}
	return *weeks[week][col], true
}

func (m Model) handleCalendarClick(msg tea.MouseClickMsg) (tea.Model, tea.Cmd) {
	if !m.calLoaded {
		return m, nil
	}
	day, ok := m.calendarDayAt(msg.X, msg.Y)
	if !ok {
		return m, nil
	}
	m.calDay = day.Day
	m.openDay(day)
	return m, nil
}

func (m Model) renderCalendar() string {
	title := accentStyle.Render(fmt.Sprintf("%s %d", m.dates.monthName(m.calCursor.Month), m.calCursor.Year))
	if m.calLoading {
		title += mutedStyle.Render("  carregando...")
	}
	if m.calErr != nil && !m.calLoaded {
		return title + "\n" + errorStyle.Render(msgCalendarLoadFailed) + mutedStyle.Render("  (r para tentar de novo)")
	}

	width := m.calCellWidth()
	headers := make([]string, 0, 7)
	for _, name := range m.dates.weekdays() {
		headers = append(headers, padRight(name, width))
	}
	lines := []string{title, mutedStyle.Render(strings.Join(headers, calSeparator))}

	separator := dimStyle.Render(strings.Repeat("─", 7*width+6*calSepWidth))
	for _, week := range m.calendarGrid().Weeks() {
		rows := make([][]string, calCellRows)
		for _, cell := range week {
			block := m.renderDayCell(cell, width)
			for i := range rows {
				rows[i] = append(rows[i], block[i])
			}
		}
		for _, row := range rows {
			lines = append(lines, strings.Join(row, dimStyle.Render(calSeparator)))
		}
		lines = append(lines, separator)
	}
	return strings.Join(lines, "\n")
}

// renderDayCell returns the fixed-height block of one grid position.
func (m Model) renderDayCell(cell *viewstate.DayCell, width int) []string {
	block := make([]string, calCellRows)
	for i := range block {
		block[i] = strings.Repeat(" ", width)
	}
	if cell == nil {
		return block
	}

	number := strconv.Itoa(cell.Day)
	if more := cell.MoreLabel(); more != "" {
		number += " " + more
	}
	style := mutedStyle
	switch {
	case cell.Day == m.calDay:
		style = lipgloss.NewStyle().Bold(true).Foreground(selectedColor)
	case cell.Today:
		style = lipgloss.NewStyle().Bold(true).Foreground(todayColor)
	case cell.HasEvents:
		style = titleStyle
	}
	prefix := " "
	if cell.Today {
		prefix = "•"
	}
	block[0] = style.Render(padRight(prefix+number, width))

	row := 1
	for _, appt := range cell.InlineAppointments {
		if row >= calCellRows {
			break
		}
		block[row] = accentStyle.Render(padRight(" "+appt.StartTime+" "+appt.Title, width))
		row++
	}
	for _, task := range cell.InlineTasks {
		if row >= calCellRows {
			break
		}
		block[row] = priorityStyle(task.Priority).Render(padRight(" ☐ "+task.Title, width))
		row++
	}
	return block
}

// renderDayDetail lists every appointment and task bucketed on one day.
func (m Model) renderDayDetail(day viewstate.DayCell, width int) string {
	lines := []string{accentStyle.Render(m.dates.display(day.Date)), ""}
	if !day.HasEvents {
		lines = append(lines, mutedStyle.Render("Nada agendado para este dia."))
	}
	if len(day.Bucket.Appointments) > 0 {
		lines = append(lines, mutedStyle.Render(fmt.Sprintf("Compromissos (%d)", len(day.Bucket.Appointments))))
		for _, appt := range day.Bucket.Appointments {
			line := appt.StartTime + "-" + appt.EndTime + "  " + appt.Title
			if appt.Location != "" {
				line += dimStyle.Render("  @ " + appt.Location)
			}
			lines = append(lines, "  "+truncate(line, width-2))
		}
	}
	if len(day.Bucket.Tasks) > 0 {
		if len(day.Bucket.Appointments) > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, mutedStyle.Render(fmt.Sprintf("Tarefas com prazo (%d)", len(day.Bucket.Tasks))))
		for _, task := range day.Bucket.Tasks {
			label := priorityStyle(task.Priority).Render(task.Priority.Label())
			lines = append(lines, "  "+truncate(task.Title, width-16)+"  "+label+dimStyle.Render(" • "+domain.NormalizeStatus(task.Status).Label()))
		}
	}
	lines = append(lines, "", dimStyle.Render("esc fechar"))
	return strings.Join(lines, "\n")
}
