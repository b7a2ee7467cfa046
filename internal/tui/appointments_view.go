package tui

import (
	"context"
	"strings"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"github.com/evanschultz/agenda/internal/domain"
	"github.com/evanschultz/agenda/internal/viewstate"
)

func (m Model) fetchAppointments(req viewstate.FetchRequest[domain.AppointmentFilter]) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		page, err := svc.ListAppointments(context.Background(), req.Filter, req.PageRequest())
		return appointmentsLoadedMsg{req: req, page: page, err: err}
	}
}

func (m Model) selectedAppointment() (domain.Appointment, bool) {
	items := m.appts.Items()
	if m.appts.Status() != viewstate.RenderReady || m.apptCursor < 0 || m.apptCursor >= len(items) {
		return domain.Appointment{}, false
	}
	return items[m.apptCursor], true
}

func (m Model) handleAppointmentsKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.moveUp):
		m.apptCursor = clamp(m.apptCursor-1, 0, len(m.appts.Items())-1)
	case key.Matches(msg, m.keys.moveDown):
		m.apptCursor = clamp(m.apptCursor+1, 0, len(m.appts.Items())-1)
	case key.Matches(msg, m.keys.prevPage, m.keys.moveLeft):
		if req, ok := m.appts.PrevPage(); ok {
			m.apptCursor = 0
			return m, m.fetchAppointments(req)
		}
	case key.Matches(msg, m.keys.nextPage, m.keys.moveRight):
		if req, ok := m.appts.NextPage(); ok {
			m.apptCursor = 0
			return m, m.fetchAppointments(req)
		}
	case key.Matches(msg, m.keys.newItem):
		cmd := m.openForm(formAppointment, "Novo compromisso", "", appointmentFormFields, map[string]string{
			"data": m.dates.display(domain.FormatDate(m.now())),
		})
		return m, cmd
	case key.Matches(msg, m.keys.editItem):
		if appt, ok := m.selectedAppointment(); ok {
			cmd := m.openForm(formAppointment, "Editar compromisso", appt.ID, appointmentFormFields, appointmentValues(appt, m.dates))
			return m, cmd
		}
	case key.Matches(msg, m.keys.deleteItem):
		if appt, ok := m.selectedAppointment(); ok {
			m.askDelete(true, appt.ID, appt.Title)
		}
	case key.Matches(msg, m.keys.openDetail):
		if appt, ok := m.selectedAppointment(); ok {
			m.detail = &detailState{appointment: &appt}
			m.mode = modeDetail
		}
	case key.Matches(msg, m.keys.nextSteps):
		if appt, ok := m.selectedAppointment(); ok {
			return m, m.generateNextSteps(appt)
		}
	case key.Matches(msg, m.keys.filter):
		cmd := m.openForm(formAppointmentFilter, "Filtrar compromissos", "", appointmentFilterFields, appointmentFilterValues(m.appts.Filter(), m.dates))
		return m, cmd
	case key.Matches(msg, m.keys.clearFilters):
		m.apptCursor = 0
		return m, m.fetchAppointments(m.appts.ClearFilters())
	case key.Matches(msg, m.keys.copyItem):
		if appt, ok := m.selectedAppointment(); ok {
			return m, m.copy(appointmentSummary(appt, m.dates))
		}
	}
	return m, nil
}

// generateNextSteps sends the meeting notes to the backend generator.
func (m Model) generateNextSteps(appt domain.Appointment) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		steps, err := svc.GenerateNextSteps(context.Background(), appt.ID, appt.MeetingNotes)
		return nextStepsMsg{appointmentID: appt.ID, steps: steps, err: err}
	}
}

func appointmentFilterSummary(f domain.AppointmentFilter, dates dateFormat) string {
	var parts []string
	if f.From != "" {
		parts = append(parts, "de "+dates.display(f.From))
	}
	if f.To != "" {
		parts = append(parts, "até "+dates.display(f.To))
	}
	if f.Keyword != "" {
		parts = append(parts, "palavra-chave: "+f.Keyword)
	}
	if len(parts) == 0 {
		return "sem filtros"
	}
	return strings.Join(parts, " • ")
}

func (m Model) renderAppointments() string {
	lines := []string{mutedStyle.Render("Filtros: " + appointmentFilterSummary(m.appts.Filter(), m.dates))}
	titleW := max(16, m.width-62)
	lines = append(lines, dimStyle.Render("  "+padRight("Data", 12)+padRight("Horário", 14)+padRight("Título", titleW)+"Local"))

	if placeholder, ok := listPlaceholder(m.appts.Status(), "Nenhum compromisso agendado."); ok {
		lines = append(lines, "  "+placeholder)
		return strings.Join(lines, "\n")
	}
	today := domain.FormatDate(m.now())
	for i, appt := range m.appts.Items() {
		prefix := "  "
		title := padRight(appt.Title, titleW)
		if i == m.apptCursor {
			prefix = selectedStyle.Render("│ ")
			title = selectedStyle.Render(title)
		}
		date := padRight(m.dates.display(appt.Date), 12)
		if appt.Date == today {
			date = accentStyle.Render(date)
		}
		row := prefix + date + padRight(appt.StartTime+" - "+appt.EndTime, 14) + title + truncate(appt.Location, 28)
		lines = append(lines, row)
	}
	lines = append(lines, "", pageFooter(m.appts.Meta(), "compromissos", m.appts.Loading()))
	return strings.Join(lines, "\n")
}

func (m Model) renderAppointmentDetail(appt domain.Appointment, width int) string {
	lines := []string{
		accentStyle.Render(truncate(appt.Title, width)),
		"",
		detailRow("Data", m.dates.display(appt.Date), width),
		detailRow("Horário", appt.StartTime+" - "+appt.EndTime, width),
		detailRow("Participantes", appt.Participants, width),
		detailRow("Assunto", appt.Subject, width),
		detailRow("Palavra-chave", appt.Keyword, width),
		detailRow("Local/link", appt.Location, width),
		detailRow("Objetivo", appt.Objective, width),
		detailRow("Lembretes", appt.Reminders, width),
	}
	if strings.TrimSpace(appt.MeetingNotes) != "" {
		lines = append(lines, "", mutedStyle.Render("Notas da reunião"), m.markdown.render(appt.MeetingNotes, width))
	}
	if strings.TrimSpace(appt.NextSteps) != "" {
		lines = append(lines, "", mutedStyle.Render("Próximos passos"), m.markdown.render(appt.NextSteps, width))
	}
	lines = append(lines, "", dimStyle.Render("esc fechar • g gerar próximos passos • y copiar"))
	return strings.Join(lines, "\n")
}

func appointmentSummary(appt domain.Appointment, dates dateFormat) string {
	out := strings.Join([]string{appt.Title, dates.display(appt.Date), appt.StartTime + "-" + appt.EndTime, appt.Location}, " | ")
	if appt.NextSteps != "" {
		out += "\n" + appt.NextSteps
	}
	return out
}
