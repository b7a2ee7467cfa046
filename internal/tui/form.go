package tui

import (
	"strconv"
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"github.com/evanschultz/agenda/internal/domain"
)

// formKind selects what a submitted form produces.
type formKind int

const (
	formTask formKind = iota
	formAppointment
	formTaskFilter
	formAppointmentFilter
	formHistoryFilter
)

// formField describes one labeled input.
type formField struct {
	key         string
	label       string
	placeholder string
	required    bool
	limit       int
}

// formState is the open modal form.
type formState struct {
	kind      formKind
	title     string
	editingID string
	fields    []formField
	inputs    []textinput.Model
	focus     int
}

var (
	taskFormFields = []formField{
		{key: "titulo", label: "Título", placeholder: "o que precisa ser feito", required: true, limit: 200},
		{key: "descricao", label: "Descrição", placeholder: "detalhes", limit: 2000},
		{key: "categoria", label: "Categoria", placeholder: "ex.: Financeiro", required: true, limit: 80},
		{key: "palavra_chave", label: "Palavra-chave", limit: 80},
		{key: "prioridade", label: "Prioridade", placeholder: "urgente | alta | media | baixa", limit: 16},
		{key: "status", label: "Status", placeholder: "pendente | em_andamento | concluida | adiada", limit: 16},
		{key: "data_limite", label: "Data limite", limit: 10},
		{key: "responsaveis", label: "Responsáveis", limit: 200},
		{key: "observacoes", label: "Observações", limit: 2000},
		{key: "checklist", label: "Checklist", limit: 2000},
	}
	appointmentFormFields = []formField{
		{key: "titulo", label: "Título", required: true, limit: 200},
		{key: "participantes", label: "Participantes", limit: 300},
		{key: "assunto_principal", label: "Assunto principal", limit: 300},
		{key: "palavra_chave", label: "Palavra-chave", limit: 80},
		{key: "local_link", label: "Local/link", limit: 300},
		{key: "data", label: "Data", required: true, limit: 10},
		{key: "horario_inicio", label: "Início", placeholder: "HH:MM", required: true, limit: 5},
		{key: "horario_fim", label: "Fim", placeholder: "HH:MM", required: true, limit: 5},
		{key: "objetivo", label: "Objetivo", limit: 1000},
		{key: "lembretes", label: "Lembretes", limit: 1000},
		{key: "notas_reuniao", label: "Notas da reunião", limit: 4000},
		{key: "proximos_passos", label: "Próximos passos", limit: 4000},
	}
	taskFilterFields = []formField{
		{key: "status", label: "Status", placeholder: "todos", limit: 16},
		{key: "prioridade", label: "Prioridade", placeholder: "todas", limit: 16},
		{key: "categoria", label: "Categoria", limit: 80},
		{key: "palavra_chave", label: "Palavra-chave", limit: 80},
	}
	appointmentFilterFields = []formField{
		{key: "data_inicio", label: "De", limit: 10},
		{key: "data_fim", label: "Até", limit: 10},
		{key: "palavra_chave", label: "Palavra-chave", limit: 80},
	}
	historyFilterFields = []formField{
		{key: "periodo", label: "Período (dias)", placeholder: "0 = tudo", limit: 5},
		{key: "categoria", label: "Categoria", limit: 80},
		{key: "palavra_chave", label: "Palavra-chave", limit: 80},
	}
)

// newModalInput builds one form input.
func newModalInput(prompt, placeholder, value string, limit int) textinput.Model {
	in := textinput.New()
	in.Prompt = prompt
	in.Placeholder = placeholder
	in.CharLimit = limit
	if value != "" {
		in.SetValue(value)
	}
	return in
}

// newForm builds a form with values keyed by field key and focuses the first input.
func newForm(kind formKind, title, editingID string, fields []formField, values map[string]string, dates dateFormat) (*formState, tea.Cmd) {
	f := &formState{kind: kind, title: title, editingID: editingID, fields: fields}
	f.inputs = make([]textinput.Model, len(fields))
	for i, field := range fields {
		placeholder := field.placeholder
		if placeholder == "" && isDateField(field.key) {
			placeholder = dates.Hint
		}
		f.inputs[i] = newModalInput("", placeholder, values[field.key], field.limit)
		f.inputs[i].SetWidth(48)
	}
	return f, f.inputs[0].Focus()
}

func isDateField(key string) bool {
	switch key {
	case "data_limite", "data", "data_inicio", "data_fim":
		return true
	}
	return false
}

// move shifts focus by delta, wrapping around.
func (f *formState) move(delta int) tea.Cmd {
	f.inputs[f.focus].Blur()
	f.focus = (f.focus + delta + len(f.inputs)) % len(f.inputs)
	return f.inputs[f.focus].Focus()
}

// update routes one message to the focused input.
func (f *formState) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd
}

func (f *formState) onLastField() bool {
	return f.focus == len(f.inputs)-1
}

// values returns trimmed input values keyed by field key.
func (f *formState) values() map[string]string {
	out := make(map[string]string, len(f.fields))
	for i, field := range f.fields {
		out[field.key] = strings.TrimSpace(f.inputs[i].Value())
	}
	return out
}

// view renders the form as modal content.
func (f *formState) view(width int) string {
	labelWidth := 0
	for _, field := range f.fields {
		labelWidth = max(labelWidth, len([]rune(field.label))+1)
	}
	lines := []string{accentStyle.Render(f.title), ""}
	for i, field := range f.fields {
		label := field.label
		if field.required {
			label += "*"
		}
		label = label + strings.Repeat(" ", max(0, labelWidth-len([]rune(label))))
		if i == f.focus {
			label = selectedStyle.Render(label)
		} else {
			label = mutedStyle.Render(label)
		}
		lines = append(lines, label+" "+truncate(f.inputs[i].View(), max(10, width-labelWidth-2)))
	}
	lines = append(lines, "", dimStyle.Render("* obrigatório • tab próximo campo • ctrl+s salvar • esc cancelar"))
	return strings.Join(lines, "\n")
}

// taskValues flattens a task into form values.
func taskValues(t domain.Task, dates dateFormat) map[string]string {
	return map[string]string{
		"titulo":        t.Title,
		"descricao":     t.Description,
		"categoria":     t.Category,
		"palavra_chave": t.Keyword,
		"prioridade":    string(t.Priority),
		"status":        string(t.Status),
		"data_limite":   dates.display(t.DueDate),
		"responsaveis":  t.Owners,
		"observacoes":   t.Notes,
		"checklist":     t.Checklist,
	}
}

// taskInputFromValues builds task input; the date is converted to ISO.
func taskInputFromValues(v map[string]string, dates dateFormat) (domain.TaskInput, error) {
	due, err := dates.parse(v["data_limite"])
	if err != nil {
		return domain.TaskInput{}, err
	}
	return domain.TaskInput{
		Title:       v["titulo"],
		Description: v["descricao"],
		Category:    v["categoria"],
		Keyword:     v["palavra_chave"],
		Priority:    domain.Priority(strings.ToLower(v["prioridade"])),
		Status:      domain.Status(strings.ToLower(v["status"])),
		DueDate:     due,
		Owners:      v["responsaveis"],
		Notes:       v["observacoes"],
		Checklist:   v["checklist"],
	}, nil
}

func appointmentValues(a domain.Appointment, dates dateFormat) map[string]string {
	return map[string]string{
		"titulo":            a.Title,
		"participantes":     a.Participants,
		"assunto_principal": a.Subject,
		"palavra_chave":     a.Keyword,
		"local_link":        a.Location,
		"data":              dates.display(a.Date),
		"horario_inicio":    a.StartTime,
		"horario_fim":       a.EndTime,
		"objetivo":          a.Objective,
		"lembretes":         a.Reminders,
		"notas_reuniao":     a.MeetingNotes,
		"proximos_passos":   a.NextSteps,
	}
}

func appointmentInputFromValues(v map[string]string, dates dateFormat) (domain.AppointmentInput, error) {
	date, err := dates.parse(v["data"])
	if err != nil {
		return domain.AppointmentInput{}, err
	}
	return domain.AppointmentInput{
		Title:        v["titulo"],
		Participants: v["participantes"],
		Subject:      v["assunto_principal"],
		Keyword:      v["palavra_chave"],
		Location:     v["local_link"],
		Date:         date,
		StartTime:    v["horario_inicio"],
		EndTime:      v["horario_fim"],
		Objective:    v["objetivo"],
		Reminders:    v["lembretes"],
		MeetingNotes: v["notas_reuniao"],
		NextSteps:    v["proximos_passos"],
	}, nil
}

func taskFilterValues(f domain.TaskFilter) map[string]string {
	return map[string]string{
		"status":        string(f.Status),
		"prioridade":    string(f.Priority),
		"categoria":     f.Category,
		"palavra_chave": f.Keyword,
	}
}

// taskFilterFromValues parses filter input; blank status or priority means any.
func taskFilterFromValues(v map[string]string) (domain.TaskFilter, error) {
	f := domain.TaskFilter{Category: v["categoria"], Keyword: v["palavra_chave"]}
	if raw := v["status"]; raw != "" {
		status, err := domain.ParseStatus(raw)
		if err != nil {
			return domain.TaskFilter{}, err
		}
		f.Status = status
	}
	if raw := v["prioridade"]; raw != "" {
		priority, err := domain.ParsePriority(raw)
		if err != nil {
			return domain.TaskFilter{}, err
		}
		f.Priority = priority
	}
	return f.Normalize(), nil
}

func appointmentFilterValues(f domain.AppointmentFilter, dates dateFormat) map[string]string {
	return map[string]string{
		"data_inicio":   dates.display(f.From),
		"data_fim":      dates.display(f.To),
		"palavra_chave": f.Keyword,
	}
}

func appointmentFilterFromValues(v map[string]string, dates dateFormat) (domain.AppointmentFilter, error) {
	from, err := dates.parse(v["data_inicio"])
	if err != nil {
		return domain.AppointmentFilter{}, err
	}
	to, err := dates.parse(v["data_fim"])
	if err != nil {
		return domain.AppointmentFilter{}, err
	}
	return domain.AppointmentFilter{From: from, To: to, Keyword: v["palavra_chave"]}.Normalize(), nil
}

func historyFilterValues(days int, category, keyword string) map[string]string {
	return map[string]string{
		"periodo":       strconv.Itoa(days),
		"categoria":     category,
		"palavra_chave": keyword,
	}
}
