package tui

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/evanschultz/agenda/internal/domain"
	"github.com/evanschultz/agenda/internal/viewstate"
)

// listTop is the screen row of the first list item: filter summary, then column headings.
func (m Model) listTop() int {
	return bodyTop + 2
}

func (m Model) fetchTasks(req viewstate.FetchRequest[domain.TaskFilter]) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		page, err := svc.ListTasks(context.Background(), req.Filter, req.PageRequest())
		return tasksLoadedMsg{req: req, page: page, err: err}
	}
}

func (m Model) selectedTask() (domain.Task, bool) {
	items := m.tasks.Items()
	if m.tasks.Status() != viewstate.RenderReady || m.taskCursor < 0 || m.taskCursor >= len(items) {
		return domain.Task{}, false
	}
	return items[m.taskCursor], true
}

func (m Model) handleTasksKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.moveUp):
		m.taskCursor = clamp(m.taskCursor-1, 0, len(m.tasks.Items())-1)
	case key.Matches(msg, m.keys.moveDown):
		m.taskCursor = clamp(m.taskCursor+1, 0, len(m.tasks.Items())-1)
	case key.Matches(msg, m.keys.prevPage, m.keys.moveLeft):
		if req, ok := m.tasks.PrevPage(); ok {
			m.taskCursor = 0
			return m, m.fetchTasks(req)
		}
	case key.Matches(msg, m.keys.nextPage, m.keys.moveRight):
		if req, ok := m.tasks.NextPage(); ok {
			m.taskCursor = 0
			return m, m.fetchTasks(req)
		}
	case key.Matches(msg, m.keys.newItem):
		cmd := m.openForm(formTask, "Nova tarefa", "", taskFormFields, map[string]string{
			"prioridade": string(domain.PriorityMedium),
			"status":     string(domain.StatusPending),
		})
		return m, cmd
	case key.Matches(msg, m.keys.editItem):
		if task, ok := m.selectedTask(); ok {
			cmd := m.openForm(formTask, "Editar tarefa", task.ID, taskFormFields, taskValues(task, m.dates))
			return m, cmd
		}
	case key.Matches(msg, m.keys.deleteItem):
		if task, ok := m.selectedTask(); ok {
			m.askDelete(false, task.ID, task.Title)
		}
	case key.Matches(msg, m.keys.openDetail):
		if task, ok := m.selectedTask(); ok {
			m.detail = &detailState{task: &task}
			m.mode = modeDetail
		}
	case key.Matches(msg, m.keys.cycleStatus):
		if task, ok := m.selectedTask(); ok {
			return m, m.advanceStatus(task)
		}
	case key.Matches(msg, m.keys.filter):
		cmd := m.openForm(formTaskFilter, "Filtrar tarefas", "", taskFilterFields, taskFilterValues(m.tasks.Filter()))
		return m, cmd
	case key.Matches(msg, m.keys.clearFilters):
		m.taskCursor = 0
		return m, m.fetchTasks(m.tasks.ClearFilters())
	case key.Matches(msg, m.keys.copyItem):
		if task, ok := m.selectedTask(); ok {
			return m, m.copy(taskSummary(task, m.dates))
		}
	}
	return m, nil
}

// nextStatus cycles through the lane order.
func nextStatus(s domain.Status) domain.Status {
	statuses := domain.Statuses()
	idx := slices.Index(statuses, domain.NormalizeStatus(s))
	return statuses[(idx+1)%len(statuses)]
}

// advanceStatus patches only the status of task.
func (m Model) advanceStatus(task domain.Task) tea.Cmd {
	svc := m.svc
	next := nextStatus(task.Status)
	return func() tea.Msg {
		if _, err := svc.UpdateTaskStatus(context.Background(), task.ID, next); err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{notice: msgStatusUpdated, reload: true}
	}
}

func taskFilterSummary(f domain.TaskFilter) string {
	var parts []string
	if f.Status != "" {
		parts = append(parts, "status: "+f.Status.Label())
	}
	if f.Priority != "" {
		parts = append(parts, "prioridade: "+f.Priority.Label())
	}
	if f.Category != "" {
		parts = append(parts, "categoria: "+f.Category)
	}
	if f.Keyword != "" {
		parts = append(parts, "palavra-chave: "+f.Keyword)
	}
	if len(parts) == 0 {
		return "sem filtros"
	}
	return strings.Join(parts, " • ")
}

func priorityStyle(p domain.Priority) lipgloss.Style {
	switch p {
	case domain.PriorityUrgent:
		return lipgloss.NewStyle().Foreground(errorColor).Bold(true)
	case domain.PriorityHigh:
		return lipgloss.NewStyle().Foreground(warningColor)
	case domain.PriorityLow:
		return dimStyle
	default:
		return mutedStyle
	}
}

// padRight pads s with spaces to w display cells, truncating when longer.
func padRight(s string, w int) string {
	s = truncate(s, w)
	return s + strings.Repeat(" ", max(0, w-lipgloss.Width(s)))
}

// listPlaceholder renders the loading, empty, or error line of a list.
func listPlaceholder(status viewstate.RenderStatus, empty string) (string, bool) {
	switch status {
	case viewstate.RenderLoading:
		return mutedStyle.Render("carregando..."), true
	case viewstate.RenderEmpty:
		return mutedStyle.Render(empty), true
	case viewstate.RenderError:
		return errorStyle.Render(msgLoadFailed) + mutedStyle.Render("  (r para tentar de novo)"), true
	}
	return "", false
}

func pageFooter(meta domain.PageMeta, noun string, loading bool) string {
	out := fmt.Sprintf("Página %d de %d • %d %s", meta.Page, max(1, meta.TotalPages), meta.Total, noun)
	if loading {
		out += " • carregando..."
	}
	return dimStyle.Render(out)
}

func (m Model) renderTasks() string {
	lines := []string{mutedStyle.Render("Filtros: " + taskFilterSummary(m.tasks.Filter()))}
	titleW := max(16, m.width-70)
	lines = append(lines, dimStyle.Render("  "+padRight("Prioridade", 11)+padRight("Título", titleW)+padRight("Categoria", 16)+padRight("Status", 14)+"Data limite"))

	if placeholder, ok := listPlaceholder(m.tasks.Status(), "Nenhuma tarefa encontrada."); ok {
		lines = append(lines, "  "+placeholder)
		return strings.Join(lines, "\n")
	}
	for i, task := range m.tasks.Items() {
		prefix := "  "
		if i == m.taskCursor {
			prefix = selectedStyle.Render("│ ")
		}
		title := padRight(task.Title, titleW)
		if i == m.taskCursor {
			title = selectedStyle.Render(title)
		}
		row := prefix +
			priorityStyle(task.Priority).Render(padRight(task.Priority.Label(), 11)) +
			title +
			padRight(task.Category, 16) +
			padRight(domain.NormalizeStatus(task.Status).Label(), 14) +
			dueLabel(task, m.dates, m.now())
		lines = append(lines, row)
	}
	lines = append(lines, "", pageFooter(m.tasks.Meta(), "tarefas", m.tasks.Loading()))
	return strings.Join(lines, "\n")
}

// dueLabel shows the due date, flagged when overdue and still open.
func dueLabel(task domain.Task, dates dateFormat, now time.Time) string {
	if task.DueDate == "" {
		return dimStyle.Render("-")
	}
	label := dates.display(task.DueDate)
	if task.Status != domain.StatusDone && task.DueDate < now.Format(domain.DateLayout) {
		return errorStyle.Render(label + " atrasada")
	}
	return label
}

func (m Model) renderTaskDetail(task domain.Task, width int) string {
	lines := []string{
		accentStyle.Render(truncate(task.Title, width)),
		"",
		detailRow("Categoria", task.Category, width),
		detailRow("Palavra-chave", task.Keyword, width),
		detailRow("Prioridade", task.Priority.Label(), width),
		detailRow("Status", domain.NormalizeStatus(task.Status).Label(), width),
		detailRow("Data limite", m.dates.display(task.DueDate), width),
		detailRow("Responsáveis", task.Owners, width),
	}
	for _, section := range []struct{ label, body string }{
		{"Descrição", task.Description},
		{"Observações", task.Notes},
		{"Checklist", task.Checklist},
	} {
		if strings.TrimSpace(section.body) == "" {
			continue
		}
		lines = append(lines, "", mutedStyle.Render(section.label), m.markdown.render(section.body, width))
	}
	lines = append(lines, "", dimStyle.Render("esc fechar • y copiar"))
	return strings.Join(lines, "\n")
}

// taskSummary is the plain-text form copied to the clipboard.
func taskSummary(task domain.Task, dates dateFormat) string {
	parts := []string{task.Title, task.Category, task.Priority.Label(), domain.NormalizeStatus(task.Status).Label()}
	if task.DueDate != "" {
		parts = append(parts, dates.display(task.DueDate))
	}
	out := strings.Join(parts, " | ")
	if task.Description != "" {
		out += "\n" + task.Description
	}
	return out
}
