package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/evanschultz/agenda/internal/domain"
	"github.com/evanschultz/agenda/internal/viewstate"
)

// lane layout: rounded border (2) + horizontal padding (2) + right margin (1).
const (
	laneChrome     = 5
	laneHeaderRows = 2
	cardRows       = 2
)

// loadBoard fetches every task in one call unless a load is already running.
func (m Model) loadBoard() tea.Cmd {
	token, ok := m.boardGuard.Begin()
	if !ok {
		return nil
	}
	svc, limit := m.svc, m.kanbanCap
	return func() tea.Msg {
		page, err := svc.ListTasks(context.Background(), domain.TaskFilter{}, domain.PageRequest{Page: 1, PerPage: limit})
		return boardLoadedMsg{token: token, tasks: page.Items, err: err}
	}
}

// reloadBoardAfterMove loads the board, or queues a reload behind a load that
// started before the move landed.
func (m Model) reloadBoardAfterMove() (Model, tea.Cmd) {
	if m.boardGuard.InFlight() {
		m.boardStale = true
		return m, nil
	}
	return m, m.loadBoard()
}

func (m Model) applyBoard(msg boardLoadedMsg) (tea.Model, tea.Cmd) {
	if !m.boardGuard.End(msg.token) {
		return m, nil
	}
	if m.boardStale {
		m.boardStale = false
		return m, m.loadBoard()
	}
	if msg.err != nil {
		m.boardErr = msg.err
		m.status = msg.err.Error()
		return m, m.notify(viewstate.NoticeError, msgBoardLoadFailed)
	}
	m.boardErr = nil
	m.boardLoaded = true
	m.board = viewstate.BuildBoard(msg.tasks)
	m.boardDropped = m.board.Dropped
	if m.focusTaskID != "" {
		if lane, row, ok := m.board.Find(m.focusTaskID); ok {
			m.boardLane, m.boardRow = lane, row
		}
		m.focusTaskID = ""
	}
	m.clampBoardSelection()
	if m.drag.Lifted() {
		if _, _, ok := m.board.Find(m.drag.TaskID()); !ok {
			m.drag.Cancel()
		}
	}
	if m.board.Dropped > 0 {
		m.status = fmt.Sprintf("%d tarefas com status desconhecido fora do quadro", m.board.Dropped)
	}
	return m, nil
}

func (m *Model) clampBoardSelection() {
	m.boardLane = clamp(m.boardLane, 0, len(m.board.Lanes)-1)
	if len(m.board.Lanes) == 0 {
		m.boardRow = 0
		return
	}
	m.boardRow = clamp(m.boardRow, 0, len(m.board.Lanes[m.boardLane].Tasks)-1)
}

func (m Model) selectedCard() (domain.Task, bool) {
	return m.board.TaskAt(m.boardLane, m.boardRow)
}

func (m Model) handleBoardKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	lanes := len(m.board.Lanes)
	if m.drag.Lifted() {
		switch {
		case key.Matches(msg, m.keys.cancel):
			m.drag.Cancel()
			m.status = "movimento cancelado"
		case key.Matches(msg, m.keys.moveLeft):
			m.drag.Hover(clamp(m.drag.Target()-1, 0, lanes-1))
		case key.Matches(msg, m.keys.moveRight):
			m.drag.Hover(clamp(m.drag.Target()+1, 0, lanes-1))
		case key.Matches(msg, m.keys.grab, m.keys.drop):
			return m.dropCard()
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.moveLeft):
		m.boardLane = clamp(m.boardLane-1, 0, lanes-1)
		m.clampBoardSelection()
	case key.Matches(msg, m.keys.moveRight):
		m.boardLane = clamp(m.boardLane+1, 0, lanes-1)
		m.clampBoardSelection()
	case key.Matches(msg, m.keys.moveUp):
		m.boardRow--
		m.clampBoardSelection()
	case key.Matches(msg, m.keys.moveDown):
		m.boardRow++
		m.clampBoardSelection()
	case key.Matches(msg, m.keys.grab):
		if task, ok := m.selectedCard(); ok && m.drag.Lift(task.ID, m.boardLane) {
			m.status = "movendo " + truncate(task.Title, 40) + " • h/l escolher coluna • space/enter soltar • esc cancelar"
		}
	case key.Matches(msg, m.keys.openDetail):
		if task, ok := m.selectedCard(); ok {
			m.detail = &detailState{task: &task}
			m.mode = modeDetail
		}
	case key.Matches(msg, m.keys.newItem):
		status := domain.StatusPending
		if m.boardLane < lanes {
			status = m.board.Lanes[m.boardLane].Status
		}
		cmd := m.openForm(formTask, "Nova tarefa", "", taskFormFields, map[string]string{
			"prioridade": string(domain.PriorityMedium),
			"status":     string(status),
		})
		return m, cmd
	case key.Matches(msg, m.keys.editItem):
		if task, ok := m.selectedCard(); ok {
			cmd := m.openForm(formTask, "Editar tarefa", task.ID, taskFormFields, taskValues(task, m.dates))
			return m, cmd
		}
	case key.Matches(msg, m.keys.deleteItem):
		if task, ok := m.selectedCard(); ok {
			m.askDelete(false, task.ID, task.Title)
		}
	}
	return m, nil
}

// dropCard resolves the drag; a drop outside every lane changes nothing.
func (m Model) dropCard() (tea.Model, tea.Cmd) {
	tr, err := m.drag.Drop(m.board)
	if errors.Is(err, viewstate.ErrNoDropTarget) {
		m.status = "movimento cancelado"
		return m, nil
	}
	if err != nil {
		m.status = err.Error()
		return m, nil
	}
	m.status = "movendo para " + tr.To.Label() + "..."
	svc := m.svc
	return m, func() tea.Msg {
		task, err := viewstate.CommitTransition(context.Background(), svc, tr)
		return transitionMsg{tr: tr, task: task, err: err}
	}
}

func (m Model) handleBoardClick(msg tea.MouseClickMsg) (tea.Model, tea.Cmd) {
	lane := m.laneAt(msg.X, msg.Y)
	if lane < 0 {
		return m, nil
	}
	m.boardLane = lane
	row := m.cardAt(lane, msg.Y)
	if row < 0 {
		m.clampBoardSelection()
		return m, nil
	}
	m.boardRow = row
	if task, ok := m.selectedCard(); ok && m.drag.Lift(task.ID, lane) {
		m.mouseDrag = true
		m.mouseMoved = false
	}
	return m, nil
}

func (m Model) handleBoardMotion(msg tea.MouseMotionMsg) (tea.Model, tea.Cmd) {
	if !m.drag.Lifted() || !m.mouseDrag {
		return m, nil
	}
	target := m.laneAt(msg.X, msg.Y)
	if target != m.drag.Target() {
		m.mouseMoved = true
	}
	m.drag.Hover(target)
	return m, nil
}

// handleBoardRelease drops a mouse-carried card. A press and release without
// leaving the lane is a plain selection, not a move.
func (m Model) handleBoardRelease(msg tea.MouseReleaseMsg) (tea.Model, tea.Cmd) {
	if !m.drag.Lifted() || !m.mouseDrag {
		return m, nil
	}
	m.mouseDrag = false
	if !m.mouseMoved {
		m.drag.Cancel()
		return m, nil
	}
	m.drag.Hover(m.laneAt(msg.X, msg.Y))
	return m.dropCard()
}

func (m Model) laneWidth() int {
	lanes := max(1, len(domain.Statuses()))
	return clamp((m.width-lanes*laneChrome)/lanes, 16, 40)
}

// laneHeight is the outer height of one lane, borders included.
func (m Model) laneHeight() int {
	return max(8, m.bodyHeight())
}

func (m Model) visibleCards() int {
	return max(1, (m.laneHeight()-2-laneHeaderRows)/cardRows)
}

func (m Model) laneScroll(lane int) int {
	if lane != m.boardLane {
		return 0
	}
	visible := m.visibleCards()
	if m.boardRow < visible {
		return 0
	}
	return m.boardRow - visible + 1
}

// laneAt maps a screen cell to a lane index, or -1 outside every lane.
func (m Model) laneAt(x, y int) int {
	if y < bodyTop || y >= bodyTop+m.laneHeight() || x < 0 {
		return -1
	}
	idx := x / (m.laneWidth() + laneChrome)
	if idx >= len(m.board.Lanes) {
		return -1
	}
	return idx
}

// cardAt maps a screen row inside lane to a card row, or -1.
func (m Model) cardAt(lane, y int) int {
	first := bodyTop + 1 + laneHeaderRows
	if y < first || lane < 0 || lane >= len(m.board.Lanes) {
		return -1
	}
	row := m.laneScroll(lane) + (y-first)/cardRows
	if row >= len(m.board.Lanes[lane].Tasks) {
		return -1
	}
	return row
}

func (m Model) renderBoard() string {
	if !m.boardLoaded {
		if m.boardErr != nil {
			return errorStyle.Render(msgBoardLoadFailed) + mutedStyle.Render("  (r para tentar de novo)")
		}
		return mutedStyle.Render("carregando quadro...")
	}
	width := m.laneWidth()
	inner := m.laneHeight() - 2
	views := make([]string, 0, len(m.board.Lanes))
	for li, lane := range m.board.Lanes {
		border := dimColor
		switch {
		case m.drag.Lifted() && li == m.drag.Target():
			border = selectedColor
		case !m.drag.Lifted() && li == m.boardLane:
			border = accentColor
		}
		heading := fmt.Sprintf("%s (%d)", lane.Status.Label(), len(lane.Tasks))
		if m.drag.Lifted() && li == m.drag.Target() {
			heading = "→ " + heading
		}
		lines := []string{padRight(accentStyle.Render(truncate(heading, width)), width), ""}
		if len(lane.Tasks) == 0 {
			lines = append(lines, padRight(dimStyle.Render("Nenhuma tarefa"), width))
		}
		start := m.laneScroll(li)
		end := min(len(lane.Tasks), start+m.visibleCards())
		for row := start; row < end; row++ {
			lines = append(lines, m.renderCard(lane.Tasks[row], li, row, width)...)
		}
		content := fitLines(strings.Join(lines, "\n"), inner)
		views = append(views, lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(border).
			Padding(0, 1).
			MarginRight(1).
			Render(padBlock(content, width)))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, views...)
}

// renderCard returns the two lines of one card.
func (m Model) renderCard(task domain.Task, lane, row, width int) []string {
	selected := lane == m.boardLane && row == m.boardRow
	carried := m.drag.Lifted() && m.drag.TaskID() == task.ID
	prefix := "  "
	switch {
	case carried:
		prefix = "✥ "
	case selected:
		prefix = "│ "
	}
	title := truncate(prefix+task.Title, width)
	switch {
	case carried:
		title = lipgloss.NewStyle().Foreground(selectedColor).Italic(true).Render(title)
	case selected:
		title = selectedStyle.Render(title)
	}
	meta := "  " + priorityStyle(task.Priority).Render(task.Priority.Label())
	if task.DueDate != "" {
		meta += dimStyle.Render(" • ") + dueLabel(task, m.dates, m.now())
	}
	return []string{padRight(title, width), padRight(meta, width)}
}

// padBlock pads every line of content to w cells.
func padBlock(content string, w int) string {
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = padRight(line, w)
	}
	return strings.Join(lines, "\n")
}
