package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/atotto/clipboard"
	"github.com/evanschultz/agenda/internal/adapters/restclient"
	"github.com/evanschultz/agenda/internal/app"
	"github.com/evanschultz/agenda/internal/domain"
	"github.com/evanschultz/agenda/internal/viewstate"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
)

// viewID is one top-level tab.
type viewID int

const (
	viewDashboard viewID = iota
	viewTasks
	viewAppointments
	viewKanban
	viewCalendar
	viewHistory
)

var viewOrder = []viewID{viewDashboard, viewTasks, viewAppointments, viewKanban, viewCalendar, viewHistory}

func (v viewID) title() string {
	switch v {
	case viewTasks:
		return "Tarefas"
	case viewAppointments:
		return "Compromissos"
	case viewKanban:
		return "Quadro"
	case viewCalendar:
		return "Calendário"
	case viewHistory:
		return "Histórico"
	default:
		return "Painel"
	}
}

// inputMode is the modal layer above the active view.
type inputMode int

const (
	modeNone inputMode = iota
	modeForm
	modeConfirm
	modeDetail
)

// bodyTop is the first screen row of view content: header, then a spacer.
const bodyTop = 2

// footerRows covers the notice line and the bordered help line.
const footerRows = 3

// user-facing messages.
const (
	msgLoadFailed         = "Erro ao carregar dados."
	msgBoardLoadFailed    = "Erro ao carregar quadro de tarefas."
	msgCalendarLoadFailed = "Erro ao carregar calendário."
	msgSaved              = "Salvo com sucesso!"
	msgUpdated            = "Atualizado com sucesso!"
	msgDeleted            = "Item excluído com sucesso!"
	msgStatusUpdated      = "Status da tarefa atualizado!"
	msgStatusFailed       = "Erro ao atualizar tarefa."
	msgNextSteps          = "Passos gerados com sucesso!"
	msgExported           = "Histórico exportado com sucesso!"
	msgNothingToExport    = "Não há tarefas concluídas para exportar."
	msgCopied             = "Copiado para a área de transferência."
)

// confirmState is a pending delete.
type confirmState struct {
	appointment bool
	id          string
	label       string
}

// detailState is the open details overlay.
type detailState struct {
	task        *domain.Task
	appointment *domain.Appointment
	day         *viewstate.DayCell
}

type Model struct {
	svc Service

	ready  bool
	width  int
	height int
	status string

	help help.Model
	keys keyMap

	active  viewID
	mode    inputMode
	form    *formState
	confirm *confirmState
	detail  *detailState

	perPage       int
	kanbanCap     int
	historyPeriod int
	noticeTTL     time.Duration
	locale        language.Tag
	dates         dateFormat
	exportDir     string

	now      func() time.Time
	tick     func(time.Duration) tea.Cmd
	copyText func(string) error
	markdown *markdownRenderer
	notices  *viewstate.Notifier

	stats           app.DashboardStats
	urgent          app.UrgentItems
	dashboardLoaded bool
	dashboardErr    error

	tasks      *viewstate.ListState[domain.Task, domain.TaskFilter]
	taskCursor int

	appts      *viewstate.ListState[domain.Appointment, domain.AppointmentFilter]
	apptCursor int

	boardGuard   *viewstate.LoadGuard
	board        viewstate.Board
	boardLoaded  bool
	boardStale   bool
	boardErr     error
	boardLane    int
	boardRow     int
	drag         viewstate.Drag
	mouseDrag    bool
	mouseMoved   bool
	focusTaskID  string
	boardDropped int

	calCursor  viewstate.MonthCursor
	calMonth   domain.CalendarMonth
	calGen     uint64
	calLoaded  bool
	calLoading bool
	calErr     error
	calDay     int

	historyDefault viewstate.HistoryFilter
	historyFilter  viewstate.HistoryFilter
	historyAll     []domain.Task
	historyRows    []domain.Task
	historyLoaded  bool
	historyErr     error
	historyCursor  int
}

type dashboardLoadedMsg struct {
	stats  app.DashboardStats
	urgent app.UrgentItems
	err    error
}

type tasksLoadedMsg struct {
	req  viewstate.FetchRequest[domain.TaskFilter]
	page domain.Page[domain.Task]
	err  error
}

type appointmentsLoadedMsg struct {
	req  viewstate.FetchRequest[domain.AppointmentFilter]
	page domain.Page[domain.Appointment]
	err  error
}

type boardLoadedMsg struct {
	token uint64
	tasks []domain.Task
	err   error
}

type transitionMsg struct {
	tr   viewstate.Transition
	task domain.Task
	err  error
}

type calendarLoadedMsg struct {
	generation uint64
	cursor     viewstate.MonthCursor
	month      domain.CalendarMonth
	err        error
}

type historyLoadedMsg struct {
	tasks []domain.Task
	err   error
}

type nextStepsMsg struct {
	appointmentID string
	steps         string
	err           error
}

type exportedMsg struct {
	path   string
	copied bool
	err    error
}

// actionMsg reports a finished mutation.
type actionMsg struct {
	err    error
	notice string
	reload bool
}

type noticeExpiredMsg struct{}

func NewModel(svc Service, opts ...Option) Model {
	h := help.New()
	h.ShowAll = false
	m := Model{
		svc:           svc,
		status:        "carregando...",
		help:          h,
		keys:          newKeyMap(),
		active:        viewDashboard,
		perPage:       domain.DefaultPerPage,
		kanbanCap:     viewstate.KanbanFetchCap,
		historyPeriod: viewstate.DefaultHistoryPeriodDays,
		noticeTTL:     viewstate.DefaultNoticeTTL,
		locale:        detectLocaleTag(),
		now:           time.Now,
		copyText:      clipboard.WriteAll,
		markdown:      &markdownRenderer{},
		boardGuard:    &viewstate.LoadGuard{},
	}
	m.tick = func(d time.Duration) tea.Cmd {
		return tea.Tick(d, func(time.Time) tea.Msg { return noticeExpiredMsg{} })
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&m)
		}
	}
	m.dates = dateFormatFor(m.locale)
	m.notices = viewstate.NewNotifier(m.noticeTTL)
	m.tasks = viewstate.NewListState[domain.Task](domain.TaskFilter{}, m.perPage)
	m.appts = viewstate.NewListState[domain.Appointment](domain.AppointmentFilter{}, m.perPage)
	m.historyDefault = viewstate.HistoryFilter{PeriodDays: m.historyPeriod}
	m.historyFilter = m.historyDefault
	today := m.now()
	m.calCursor = viewstate.CursorFor(today)
	m.calDay = today.Day()
	return m
}

func (m Model) Init() tea.Cmd {
	return m.loadDashboard()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		m.width = msg.Width
		m.height = msg.Height
		m.help.SetWidth(max(0, m.width-2))
		return m, nil

	case noticeExpiredMsg:
		m.notices.Expire(m.now())
		return m, nil

	case dashboardLoadedMsg:
		if msg.err != nil {
			m.dashboardErr = msg.err
			m.status = msg.err.Error()
			return m, m.notify(viewstate.NoticeError, msgLoadFailed)
		}
		m.dashboardErr = nil
		m.dashboardLoaded = true
		m.stats = msg.stats
		m.urgent = msg.urgent
		m.status = "pronto"
		return m, nil

	case tasksLoadedMsg:
		if !m.tasks.Resolve(msg.req, msg.page, msg.err) {
			return m, nil
		}
		if msg.err != nil {
			m.status = msg.err.Error()
			return m, m.notify(viewstate.NoticeError, msgLoadFailed)
		}
		m.taskCursor = clamp(m.taskCursor, 0, len(m.tasks.Items())-1)
		return m, nil

	case appointmentsLoadedMsg:
		if !m.appts.Resolve(msg.req, msg.page, msg.err) {
			return m, nil
		}
		if msg.err != nil {
			m.status = msg.err.Error()
			return m, m.notify(viewstate.NoticeError, msgLoadFailed)
		}
		m.apptCursor = clamp(m.apptCursor, 0, len(m.appts.Items())-1)
		return m, nil

	case boardLoadedMsg:
		return m.applyBoard(msg)

	case transitionMsg:
		if msg.err != nil {
			m.status = msg.err.Error()
			return m, m.notify(viewstate.NoticeError, msgStatusFailed)
		}
		m.focusTaskID = msg.task.ID
		m.status = fmt.Sprintf("%s → %s", msg.tr.From.Label(), msg.tr.To.Label())
		next, reload := m.reloadBoardAfterMove()
		return next, tea.Batch(next.notify(viewstate.NoticeSuccess, msgStatusUpdated), reload)

	case calendarLoadedMsg:
		return m.applyCalendar(msg)

	case historyLoadedMsg:
		if msg.err != nil {
			m.historyErr = msg.err
			m.status = msg.err.Error()
			return m, m.notify(viewstate.NoticeError, msgLoadFailed)
		}
		m.historyErr = nil
		m.historyLoaded = true
		m.historyAll = msg.tasks
		m.refilterHistory()
		return m, nil

	case nextStepsMsg:
		if msg.err != nil {
			m.status = msg.err.Error()
			return m, m.notify(viewstate.NoticeError, msg.err.Error())
		}
		if m.detail != nil && m.detail.appointment != nil && m.detail.appointment.ID == msg.appointmentID {
			updated := *m.detail.appointment
			updated.NextSteps = msg.steps
			m.detail.appointment = &updated
		}
		reload := m.reloadActive()
		return m, tea.Batch(m.notify(viewstate.NoticeSuccess, msgNextSteps), reload)

	case exportedMsg:
		if msg.err != nil {
			m.status = msg.err.Error()
			return m, m.notify(viewstate.NoticeError, msg.err.Error())
		}
		m.status = "exportado para " + msg.path
		if msg.copied {
			m.status += " (copiado)"
		}
		return m, m.notify(viewstate.NoticeSuccess, msgExported)

	case actionMsg:
		if msg.err != nil {
			m.status = msg.err.Error()
			return m, m.notify(viewstate.NoticeError, actionErrorMessage(msg.err))
		}
		var cmds []tea.Cmd
		if msg.notice != "" {
			cmds = append(cmds, m.notify(viewstate.NoticeSuccess, msg.notice))
		}
		if msg.reload {
			cmds = append(cmds, m.reloadActive())
		}
		return m, tea.Batch(cmds...)

	case tea.KeyPressMsg:
		return m.handleKey(msg)

	case tea.MouseClickMsg:
		return m.handleMouseClick(msg)

	case tea.MouseMotionMsg:
		if m.active == viewKanban && m.mode == modeNone {
			return m.handleBoardMotion(msg)
		}
		return m, nil

	case tea.MouseReleaseMsg:
		if m.active == viewKanban && m.mode == modeNone {
			return m.handleBoardRelease(msg)
		}
		return m, nil

	case tea.MouseWheelMsg:
		return m.handleMouseWheel(msg)

	default:
		return m, nil
	}
}

// notify raises a transient notice and schedules its expiry.
func (m *Model) notify(level viewstate.NoticeLevel, message string) tea.Cmd {
	m.notices.Push(level, message, m.now())
	if m.tick == nil {
		return nil
	}
	return m.tick(m.notices.TTL())
}

// actionErrorMessage prefers the backend or validation message over transport detail.
func actionErrorMessage(err error) string {
	var apiErr *restclient.APIError
	if errors.As(err, &apiErr) {
		if strings.TrimSpace(apiErr.Message) != "" {
			return apiErr.Message
		}
		if len(apiErr.Errors) > 0 {
			return strings.Join(apiErr.Errors, "; ")
		}
	}
	return err.Error()
}

func (m *Model) switchView(v viewID) tea.Cmd {
	if m.drag.Lifted() {
		m.drag.Cancel()
	}
	m.active = v
	m.help.ShowAll = false
	return m.reloadActive()
}

// reloadActive issues the fetch for the active view.
func (m *Model) reloadActive() tea.Cmd {
	switch m.active {
	case viewTasks:
		return m.fetchTasks(m.tasks.Reload())
	case viewAppointments:
		return m.fetchAppointments(m.appts.Reload())
	case viewKanban:
		return m.loadBoard()
	case viewCalendar:
		return m.loadCalendar()
	case viewHistory:
		return m.loadHistory()
	default:
		return m.loadDashboard()
	}
}

func (m Model) loadDashboard() tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		var (
			stats  app.DashboardStats
			urgent app.UrgentItems
		)
		g, ctx := errgroup.WithContext(context.Background())
		g.Go(func() error {
			var err error
			stats, err = svc.DashboardStats(ctx)
			return err
		})
		g.Go(func() error {
			var err error
			urgent, err = svc.UrgentItems(ctx)
			return err
		})
		if err := g.Wait(); err != nil {
			return dashboardLoadedMsg{err: err}
		}
		return dashboardLoadedMsg{stats: stats, urgent: urgent}
	}
}

func (m Model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case modeForm:
		return m.handleFormKey(msg)
	case modeConfirm:
		return m.handleConfirmKey(msg)
	case modeDetail:
		return m.handleDetailKey(msg)
	}
	if m.help.ShowAll {
		if key.Matches(msg, m.keys.toggleHelp, m.keys.cancel) {
			m.help.ShowAll = false
		}
		if key.Matches(msg, m.keys.quit) {
			return m, tea.Quit
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.toggleHelp):
		m.help.ShowAll = true
		return m, nil
	case key.Matches(msg, m.keys.nextView):
		cmd := m.switchView(viewOrder[(int(m.active)+1)%len(viewOrder)])
		return m, cmd
	case key.Matches(msg, m.keys.prevView):
		cmd := m.switchView(viewOrder[(int(m.active)+len(viewOrder)-1)%len(viewOrder)])
		return m, cmd
	case key.Matches(msg, m.keys.jumpView):
		idx := int(msg.String()[0] - '1')
		cmd := m.switchView(viewOrder[clamp(idx, 0, len(viewOrder)-1)])
		return m, cmd
	case key.Matches(msg, m.keys.reload):
		m.status = "recarregando..."
		cmd := m.reloadActive()
		return m, cmd
	}

	switch m.active {
	case viewTasks:
		return m.handleTasksKey(msg)
	case viewAppointments:
		return m.handleAppointmentsKey(msg)
	case viewKanban:
		return m.handleBoardKey(msg)
	case viewCalendar:
		return m.handleCalendarKey(msg)
	case viewHistory:
		return m.handleHistoryKey(msg)
	default:
		return m, nil
	}
}

// openForm shows a modal form.
func (m *Model) openForm(kind formKind, title, editingID string, fields []formField, values map[string]string) tea.Cmd {
	form, cmd := newForm(kind, title, editingID, fields, values, m.dates)
	m.form = form
	m.mode = modeForm
	return cmd
}

func (m *Model) closeModal() {
	m.mode = modeNone
	m.form = nil
	m.confirm = nil
	m.detail = nil
}

func (m Model) handleFormKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.cancel):
		m.closeModal()
		return m, nil
	case key.Matches(msg, m.keys.submit):
		return m.submitForm()
	case msg.String() == "enter":
		if m.form.onLastField() {
			return m.submitForm()
		}
		return m, m.form.move(1)
	case key.Matches(msg, m.keys.nextField):
		return m, m.form.move(1)
	case key.Matches(msg, m.keys.prevField):
		return m, m.form.move(-1)
	}
	return m, m.form.update(msg)
}

// submitForm validates locally and only then calls the backend.
func (m Model) submitForm() (tea.Model, tea.Cmd) {
	form := m.form
	values := form.values()
	switch form.kind {
	case formTask:
		in, err := taskInputFromValues(values, m.dates)
		if err != nil {
			return m, m.notify(viewstate.NoticeError, err.Error())
		}
		if err := viewstate.ValidateTaskForm(in); err != nil {
			return m, m.notify(viewstate.NoticeWarning, err.Error())
		}
		m.closeModal()
		return m, m.saveTask(form.editingID, in)

	case formAppointment:
		in, err := appointmentInputFromValues(values, m.dates)
		if err != nil {
			return m, m.notify(viewstate.NoticeError, err.Error())
		}
		if err := viewstate.ValidateAppointmentForm(in); err != nil {
			return m, m.notify(viewstate.NoticeWarning, err.Error())
		}
		m.closeModal()
		return m, m.saveAppointment(form.editingID, in)

	case formTaskFilter:
		filter, err := taskFilterFromValues(values)
		if err != nil {
			return m, m.notify(viewstate.NoticeError, err.Error())
		}
		m.closeModal()
		m.taskCursor = 0
		return m, m.fetchTasks(m.tasks.ApplyFilters(filter))

	case formAppointmentFilter:
		filter, err := appointmentFilterFromValues(values, m.dates)
		if err != nil {
			return m, m.notify(viewstate.NoticeError, err.Error())
		}
		m.closeModal()
		m.apptCursor = 0
		return m, m.fetchAppointments(m.appts.ApplyFilters(filter))

	case formHistoryFilter:
		filter, err := historyFilterFromValues(values)
		if err != nil {
			return m, m.notify(viewstate.NoticeError, err.Error())
		}
		m.closeModal()
		m.historyFilter = filter
		m.historyCursor = 0
		return m, m.loadHistory()
	}
	return m, nil
}

func (m Model) handleConfirmKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.confirmYes):
		pending := *m.confirm
		m.closeModal()
		svc := m.svc
		return m, func() tea.Msg {
			var err error
			if pending.appointment {
				err = svc.DeleteAppointment(context.Background(), pending.id)
			} else {
				err = svc.DeleteTask(context.Background(), pending.id)
			}
			if err != nil {
				return actionMsg{err: err}
			}
			return actionMsg{notice: msgDeleted, reload: true}
		}
	case key.Matches(msg, m.keys.confirmNo):
		m.closeModal()
	}
	return m, nil
}

func (m Model) handleDetailKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.cancel, m.keys.openDetail):
		m.closeModal()
	case key.Matches(msg, m.keys.copyItem):
		if m.detail.task != nil {
			return m, m.copy(taskSummary(*m.detail.task, m.dates))
		}
		if m.detail.appointment != nil {
			return m, m.copy(appointmentSummary(*m.detail.appointment, m.dates))
		}
	case key.Matches(msg, m.keys.nextSteps):
		if m.detail.appointment != nil {
			return m, m.generateNextSteps(*m.detail.appointment)
		}
	}
	return m, nil
}

// askDelete opens the delete confirmation.
func (m *Model) askDelete(appointment bool, id, label string) {
	m.confirm = &confirmState{appointment: appointment, id: id, label: label}
	m.mode = modeConfirm
}

func (m Model) copy(text string) tea.Cmd {
	write := m.copyText
	return func() tea.Msg {
		if write == nil {
			return actionMsg{err: errors.New("clipboard unavailable")}
		}
		if err := write(text); err != nil {
			return actionMsg{err: fmt.Errorf("copy to clipboard: %w", err)}
		}
		return actionMsg{notice: msgCopied}
	}
}

func (m Model) saveTask(id string, in domain.TaskInput) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		if id == "" {
			if _, err := svc.CreateTask(context.Background(), in); err != nil {
				return actionMsg{err: err}
			}
			return actionMsg{notice: msgSaved, reload: true}
		}
		if _, err := svc.UpdateTask(context.Background(), id, in); err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{notice: msgUpdated, reload: true}
	}
}

func (m Model) saveAppointment(id string, in domain.AppointmentInput) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		if id == "" {
			if _, err := svc.CreateAppointment(context.Background(), in); err != nil {
				return actionMsg{err: err}
			}
			return actionMsg{notice: msgSaved, reload: true}
		}
		if _, err := svc.UpdateAppointment(context.Background(), id, in); err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{notice: msgUpdated, reload: true}
	}
}

func (m Model) handleMouseClick(msg tea.MouseClickMsg) (tea.Model, tea.Cmd) {
	if m.mode != modeNone || m.help.ShowAll || msg.Button != tea.MouseLeft {
		return m, nil
	}
	if msg.Y == 0 {
		if v, ok := m.tabAt(msg.X); ok {
			cmd := m.switchView(v)
			return m, cmd
		}
		return m, nil
	}
	switch m.active {
	case viewTasks:
		if row := msg.Y - m.listTop(); row >= 0 && row < len(m.tasks.Items()) {
			m.taskCursor = row
		}
	case viewAppointments:
		if row := msg.Y - m.listTop(); row >= 0 && row < len(m.appts.Items()) {
			m.apptCursor = row
		}
	case viewKanban:
		return m.handleBoardClick(msg)
	case viewCalendar:
		return m.handleCalendarClick(msg)
	}
	return m, nil
}

func (m Model) handleMouseWheel(msg tea.MouseWheelMsg) (tea.Model, tea.Cmd) {
	if m.mode != modeNone || m.help.ShowAll {
		return m, nil
	}
	delta := 0
	switch msg.Button {
	case tea.MouseWheelUp:
		delta = -1
	case tea.MouseWheelDown:
		delta = 1
	}
	switch m.active {
	case viewTasks:
		m.taskCursor = clamp(m.taskCursor+delta, 0, len(m.tasks.Items())-1)
	case viewAppointments:
		m.apptCursor = clamp(m.apptCursor+delta, 0, len(m.appts.Items())-1)
	case viewKanban:
		if lane := m.board.Lanes; m.boardLane < len(lane) {
			m.boardRow = clamp(m.boardRow+delta, 0, len(lane[m.boardLane].Tasks)-1)
		}
	case viewHistory:
		m.historyCursor = clamp(m.historyCursor+delta, 0, len(m.historyRows)-1)
	}
	return m, nil
}

// tabLabels renders each tab label, selected or not.
func (m Model) tabLabels() []string {
	labels := make([]string, 0, len(viewOrder))
	for i, v := range viewOrder {
		label := fmt.Sprintf(" %d %s ", i+1, v.title())
		if v == m.active {
			labels = append(labels, lipgloss.NewStyle().Bold(true).Foreground(titleColor).Background(accentColor).Render(label))
		} else {
			labels = append(labels, mutedStyle.Render(label))
		}
	}
	return labels
}

// headerPrefix precedes the tabs on the header row.
const headerPrefix = "agenda  "

// tabAt maps a header column to a tab.
func (m Model) tabAt(x int) (viewID, bool) {
	start := lipgloss.Width(headerPrefix)
	for i, label := range m.tabLabels() {
		w := lipgloss.Width(label)
		if x >= start && x < start+w {
			return viewOrder[i], true
		}
		start += w
	}
	return viewDashboard, false
}

// bodyHeight is the number of rows available to the active view.
func (m Model) bodyHeight() int {
	return max(8, m.height-bodyTop-footerRows)
}

func (m Model) View() tea.View {
	if !m.ready {
		v := tea.NewView("carregando...")
		v.MouseMode = tea.MouseModeCellMotion
		v.AltScreen = true
		return v
	}

	header := titleStyle.Render(strings.TrimSpace(headerPrefix)) + "  " + strings.Join(m.tabLabels(), "")

	var body string
	switch m.active {
	case viewTasks:
		body = m.renderTasks()
	case viewAppointments:
		body = m.renderAppointments()
	case viewKanban:
		body = m.renderBoard()
	case viewCalendar:
		body = m.renderCalendar()
	case viewHistory:
		body = m.renderHistory()
	default:
		body = m.renderDashboard()
	}
	content := header + "\n\n" + fitLines(body, m.bodyHeight())

	helpBubble := m.help
	helpBubble.ShowAll = false
	helpLine := lipgloss.NewStyle().
		Foreground(mutedColor).
		BorderTop(true).
		BorderForeground(dimColor).
		Padding(0, 1).
		Width(max(0, m.width)).
		Render(helpBubble.View(viewHelp{keys: m.keys, view: m.active, mode: m.mode}))

	fullContent := content + "\n" + m.renderNoticeLine() + "\n" + helpLine
	if overlay := m.renderOverlay(); overlay != "" {
		fullContent = overlayOnContent(fullContent, overlay, max(1, m.width), max(1, m.height))
	}

	v := tea.NewView(fullContent)
	v.MouseMode = tea.MouseModeCellMotion
	v.AltScreen = true
	return v
}

// renderNoticeLine shows the newest live notice, else the status text.
func (m Model) renderNoticeLine() string {
	if notice, ok := m.notices.Latest(m.now()); ok {
		switch notice.Level {
		case viewstate.NoticeSuccess:
			return lipgloss.NewStyle().Foreground(successColor).Render("✓ " + notice.Message)
		case viewstate.NoticeWarning:
			return lipgloss.NewStyle().Foreground(warningColor).Render("! " + notice.Message)
		case viewstate.NoticeError:
			return errorStyle.Render("✗ " + notice.Message)
		default:
			return mutedStyle.Render(notice.Message)
		}
	}
	return dimStyle.Render(truncate(m.status, max(1, m.width)))
}

func (m Model) renderOverlay() string {
	width := max(40, min(m.width-8, 90))
	switch {
	case m.help.ShowAll:
		full := m.help
		full.ShowAll = true
		full.SetWidth(width)
		return modalStyle.Render(accentStyle.Render("Atalhos") + "\n\n" + full.View(viewHelp{keys: m.keys, view: m.active}))
	case m.mode == modeForm && m.form != nil:
		return modalStyle.Render(m.form.view(width))
	case m.mode == modeConfirm && m.confirm != nil:
		what := "tarefa"
		if m.confirm.appointment {
			what = "compromisso"
		}
		return modalStyle.Render(fmt.Sprintf("Excluir %s %q?\n\n%s", what, truncate(m.confirm.label, width-20), dimStyle.Render("y confirmar • n cancelar")))
	case m.mode == modeDetail && m.detail != nil:
		return modalStyle.Render(fitLines(m.renderDetail(width), max(6, m.height-6)))
	}
	return ""
}

func (m Model) renderDetail(width int) string {
	switch {
	case m.detail.task != nil:
		return m.renderTaskDetail(*m.detail.task, width)
	case m.detail.appointment != nil:
		return m.renderAppointmentDetail(*m.detail.appointment, width)
	case m.detail.day != nil:
		return m.renderDayDetail(*m.detail.day, width)
	}
	return ""
}

// detailRow renders one "label: value" line.
func detailRow(label, value string, width int) string {
	return mutedStyle.Render(label+": ") + truncate(orDash(value), max(10, width-len([]rune(label))-2))
}
