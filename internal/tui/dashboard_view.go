package tui

import (
	"fmt"
	"slices"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/evanschultz/agenda/internal/domain"
)

var statBoxStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(dimColor).
	Padding(0, 1).
	MarginRight(1)

// statBox renders one labeled count.
func statBox(label string, value int, width int) string {
	return statBoxStyle.Render(padBlock(mutedStyle.Render(label)+"\n"+titleStyle.Render(fmt.Sprint(value)), width))
}

func (m Model) renderDashboard() string {
	if !m.dashboardLoaded {
		if m.dashboardErr != nil {
			return errorStyle.Render(msgLoadFailed) + mutedStyle.Render("  (r para tentar de novo)")
		}
		return mutedStyle.Render("carregando painel...")
	}

	boxW := clamp((m.width-6*5)/6, 10, 22)
	tasks := m.stats.Tasks
	boxes := []string{statBox("Tarefas", tasks.Total, boxW)}
	for _, status := range domain.Statuses() {
		boxes = append(boxes, statBox(status.Label(), tasks.ByStatus[status], boxW))
	}
	boxes = append(boxes, statBox("Compromissos hoje", m.stats.Appointments.Today, boxW))
	lines := []string{
		lipgloss.JoinHorizontal(lipgloss.Top, boxes...),
		mutedStyle.Render(fmt.Sprintf("Compromissos: %d no total • %d nos próximos 7 dias", m.stats.Appointments.Total, m.stats.Appointments.Upcoming)),
		mutedStyle.Render("Prioridades: " + priorityBreakdown(tasks.ByPriority)),
	}
	if categories := categoryBreakdown(tasks.ByCategory); categories != "" {
		lines = append(lines, mutedStyle.Render("Categorias: "+categories))
	}

	half := max(30, (m.width-4)/2)
	urgent := []string{accentStyle.Render("Tarefas urgentes")}
	if len(m.urgent.Tasks) == 0 {
		urgent = append(urgent, dimStyle.Render("Nenhuma tarefa urgente."))
	}
	for _, task := range m.urgent.Tasks {
		urgent = append(urgent, padRight(priorityStyle(task.Priority).Render("● ")+task.Title, half-24)+" "+dueLabel(task, m.dates, m.now()))
	}
	upcoming := []string{accentStyle.Render("Próximos compromissos")}
	if len(m.urgent.Appointments) == 0 {
		upcoming = append(upcoming, dimStyle.Render("Nenhum compromisso próximo."))
	}
	for _, appt := range m.urgent.Appointments {
		upcoming = append(upcoming, m.dates.display(appt.Date)+" "+appt.StartTime+"  "+truncate(appt.Title, half-20))
	}
	lines = append(lines, "", lipgloss.JoinHorizontal(lipgloss.Top,
		padBlock(strings.Join(urgent, "\n"), half),
		"  ",
		padBlock(strings.Join(upcoming, "\n"), half),
	))
	return strings.Join(lines, "\n")
}

func priorityBreakdown(counts map[domain.Priority]int) string {
	parts := make([]string, 0, len(counts))
	for _, p := range domain.Priorities() {
		parts = append(parts, fmt.Sprintf("%s %d", p.Label(), counts[p]))
	}
	return strings.Join(parts, " • ")
}

// categoryBreakdown lists categories by count, then name.
func categoryBreakdown(counts map[string]int) string {
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	slices.SortFunc(names, func(a, b string) int {
		if counts[a] != counts[b] {
			return counts[b] - counts[a]
		}
		return strings.Compare(a, b)
	})
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s %d", name, counts[name]))
	}
	return strings.Join(parts, " • ")
}
