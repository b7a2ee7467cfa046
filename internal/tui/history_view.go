package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"github.com/evanschultz/agenda/internal/domain"
	"github.com/evanschultz/agenda/internal/viewstate"
)

// loadHistory fetches every completed task; filtering happens locally.
func (m Model) loadHistory() tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		tasks, err := svc.ListCompletedTasks(context.Background())
		return historyLoadedMsg{tasks: tasks, err: err}
	}
}

func (m *Model) refilterHistory() {
	m.historyRows = viewstate.FilterHistory(m.historyAll, m.historyFilter, m.now())
	m.historyCursor = clamp(m.historyCursor, 0, len(m.historyRows)-1)
}

// historyFilterFromValues parses the history filter form.
func historyFilterFromValues(v map[string]string) (viewstate.HistoryFilter, error) {
	f := viewstate.HistoryFilter{
		Category: strings.TrimSpace(v["categoria"]),
		Keyword:  strings.TrimSpace(v["palavra_chave"]),
	}
	if raw := strings.TrimSpace(v["periodo"]); raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil || days < 0 {
			return viewstate.HistoryFilter{}, fmt.Errorf("período inválido %q: use um número de dias (0 = tudo)", raw)
		}
		f.PeriodDays = days
	}
	return f, nil
}

func (m Model) handleHistoryKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch {
	case key.Matches(msg, m.keys.moveUp):
		m.historyCursor = clamp(m.historyCursor-1, 0, len(m.historyRows)-1)
	case key.Matches(msg, m.keys.moveDown):
		m.historyCursor = clamp(m.historyCursor+1, 0, len(m.historyRows)-1)
	case key.Matches(msg, m.keys.filter):
		cmd = m.openForm(formHistoryFilter, "Filtrar histórico", "", historyFilterFields,
			historyFilterValues(m.historyFilter.PeriodDays, m.historyFilter.Category, m.historyFilter.Keyword))
	case key.Matches(msg, m.keys.clearFilters):
		m.historyFilter = m.historyDefault
		m.historyCursor = 0
		cmd = m.loadHistory()
	case key.Matches(msg, m.keys.export):
		if len(m.historyRows) == 0 {
			cmd = m.notify(viewstate.NoticeWarning, msgNothingToExport)
			break
		}
		cmd = m.exportHistory(m.historyRows)
	case key.Matches(msg, m.keys.openDetail):
		if m.historyCursor >= 0 && m.historyCursor < len(m.historyRows) {
			task := m.historyRows[m.historyCursor]
			m.detail = &detailState{task: &task}
			m.mode = modeDetail
		}
	case key.Matches(msg, m.keys.copyItem):
		if m.historyCursor >= 0 && m.historyCursor < len(m.historyRows) {
			cmd = m.copy(taskSummary(m.historyRows[m.historyCursor], m.dates))
		}
	}
	return m, cmd
}

// exportHistory writes the CSV under the export directory and copies it to the clipboard.
// A clipboard failure does not fail the export.
func (m Model) exportHistory(rows []domain.Task) tea.Cmd {
	dir, now, write := m.exportDir, m.now(), m.copyText
	rows = append([]domain.Task(nil), rows...)
	return func() tea.Msg {
		data, err := viewstate.HistoryCSV(rows)
		if err != nil {
			return exportedMsg{err: err}
		}
		if dir == "" {
			dir = "."
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return exportedMsg{err: fmt.Errorf("create export dir: %w", err)}
		}
		path := filepath.Join(dir, viewstate.HistoryFileName(now))
		if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
			return exportedMsg{err: fmt.Errorf("write history export: %w", err)}
		}
		copied := write != nil && write(data) == nil
		return exportedMsg{path: path, copied: copied}
	}
}

func historyFilterSummary(f viewstate.HistoryFilter) string {
	parts := []string{"todo o período"}
	if f.PeriodDays > 0 {
		parts[0] = fmt.Sprintf("últimos %d dias", f.PeriodDays)
	}
	if f.Category != "" {
		parts = append(parts, "categoria: "+f.Category)
	}
	if f.Keyword != "" {
		parts = append(parts, "palavra-chave: "+f.Keyword)
	}
	return strings.Join(parts, " • ")
}

func (m Model) renderHistory() string {
	lines := []string{mutedStyle.Render("Filtros: " + historyFilterSummary(m.historyFilter))}
	titleW := max(16, m.width-58)
	lines = append(lines, dimStyle.Render("  "+padRight("Título", titleW)+padRight("Categoria", 16)+padRight("Prioridade", 12)+"Data limite"))

	switch {
	case m.historyErr != nil && !m.historyLoaded:
		lines = append(lines, "  "+errorStyle.Render(msgLoadFailed)+mutedStyle.Render("  (r para tentar de novo)"))
		return strings.Join(lines, "\n")
	case !m.historyLoaded:
		lines = append(lines, "  "+mutedStyle.Render("carregando..."))
		return strings.Join(lines, "\n")
	case len(m.historyRows) == 0:
		lines = append(lines, "  "+mutedStyle.Render("Nenhuma tarefa concluída no período selecionado."))
		return strings.Join(lines, "\n")
	}

	visible := max(1, m.bodyHeight()-4)
	start := max(0, m.historyCursor-visible+1)
	end := min(len(m.historyRows), start+visible)
	for i := start; i < end; i++ {
		task := m.historyRows[i]
		prefix := "  "
		title := padRight(task.Title, titleW)
		if i == m.historyCursor {
			prefix = selectedStyle.Render("│ ")
			title = selectedStyle.Render(title)
		}
		lines = append(lines, prefix+title+
			padRight(task.Category, 16)+
			priorityStyle(task.Priority).Render(padRight(task.Priority.Label(), 12))+
			orDash(m.dates.display(task.DueDate)))
	}
	lines = append(lines, "", dimStyle.Render(fmt.Sprintf("%d de %d concluídas • x exportar CSV", len(m.historyRows), len(m.historyAll))))
	return strings.Join(lines, "\n")
}
