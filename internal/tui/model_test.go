package tui

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/evanschultz/agenda/internal/adapters/restclient"
	"github.com/evanschultz/agenda/internal/app"
	"github.com/evanschultz/agenda/internal/domain"
	"github.com/evanschultz/agenda/internal/viewstate"
)

var testNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

var errBoom = errors.New("boom")

type calendarCall struct {
	year  int
	month time.Month
}

type statusCall struct {
	id     string
	status domain.Status
}

type fakeService struct {
	mu sync.Mutex

	tasks    []domain.Task
	appts    []domain.Appointment
	calendar domain.CalendarMonth
	stats    app.DashboardStats
	urgent   app.UrgentItems
	steps    string
	err      error

	taskRequests  []domain.PageRequest
	taskFilters   []domain.TaskFilter
	calendarCalls []calendarCall
	createdTasks  []domain.TaskInput
	createdAppts  []domain.AppointmentInput
	updates       []domain.TaskInput
	statusCalls   []statusCall
	deletedTasks  []string
	deletedAppts  []string
	completedHits int
}

func newFakeService(tasks []domain.Task, appts []domain.Appointment) *fakeService {
	return &fakeService{
		tasks: tasks,
		appts: appts,
		stats: app.DashboardStats{Tasks: app.TaskStats{
			Total:    len(tasks),
			ByStatus: map[domain.Status]int{},
		}},
		calendar: domain.CalendarMonth{},
	}
}

func (f *fakeService) ListTasks(_ context.Context, filter domain.TaskFilter, req domain.PageRequest) (domain.Page[domain.Task], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.taskRequests = append(f.taskRequests, req)
	f.taskFilters = append(f.taskFilters, filter)
	if f.err != nil {
		return domain.Page[domain.Task]{}, f.err
	}
	var matched []domain.Task
	for _, task := range f.tasks {
		if filter.Status != "" && task.Status != filter.Status {
			continue
		}
		if filter.Priority != "" && task.Priority != filter.Priority {
			continue
		}
		if filter.Category != "" && task.Category != filter.Category {
			continue
		}
		if filter.Keyword != "" && !strings.Contains(strings.ToLower(task.Title), strings.ToLower(filter.Keyword)) {
			continue
		}
		matched = append(matched, task)
	}
	return paginate(matched, req), nil
}

func paginate[T any](items []T, req domain.PageRequest) domain.Page[T] {
	meta := domain.NewPageMeta(req, len(items))
	start := min(len(items), req.Normalize().Offset())
	end := min(len(items), start+meta.PerPage)
	return domain.Page[T]{Items: slices.Clone(items[start:end]), Meta: meta}
}

func (f *fakeService) ListCompletedTasks(context.Context) ([]domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.completedHits++
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.Task
	for _, task := range f.tasks {
		if task.Status == domain.StatusDone {
			out = append(out, task)
		}
	}
	return out, nil
}

func (f *fakeService) GetTask(_ context.Context, id string) (domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, task := range f.tasks {
		if task.ID == id {
			return task, nil
		}
	}
	return domain.Task{}, app.ErrNotFound
}

func (f *fakeService) CreateTask(_ context.Context, in domain.TaskInput) (domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return domain.Task{}, f.err
	}
	f.createdTasks = append(f.createdTasks, in)
	task := domain.Task{ID: "new-task", Title: in.Title, Category: in.Category, Status: domain.StatusPending, Priority: domain.PriorityMedium}
	f.tasks = append(f.tasks, task)
	return task, nil
}

func (f *fakeService) UpdateTask(_ context.Context, id string, in domain.TaskInput) (domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, in)
	if f.err != nil {
		return domain.Task{}, f.err
	}
	for i, task := range f.tasks {
		if task.ID == id {
			f.tasks[i].Status = in.Status
			f.tasks[i].Title = in.Title
			return f.tasks[i], nil
		}
	}
	return domain.Task{}, app.ErrNotFound
}

func (f *fakeService) UpdateTaskStatus(_ context.Context, id string, status domain.Status) (domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statusCalls = append(f.statusCalls, statusCall{id: id, status: status})
	for i, task := range f.tasks {
		if task.ID == id {
			f.tasks[i].Status = status
			return f.tasks[i], nil
		}
	}
	return domain.Task{}, app.ErrNotFound
}

func (f *fakeService) DeleteTask(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletedTasks = append(f.deletedTasks, id)
	f.tasks = slices.DeleteFunc(f.tasks, func(t domain.Task) bool { return t.ID == id })
	return nil
}

func (f *fakeService) ListAppointments(_ context.Context, filter domain.AppointmentFilter, req domain.PageRequest) (domain.Page[domain.Appointment], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return domain.Page[domain.Appointment]{}, f.err
	}
	var matched []domain.Appointment
	for _, appt := range f.appts {
		if filter.From != "" && appt.Date < filter.From {
			continue
		}
		if filter.To != "" && appt.Date > filter.To {
			continue
		}
		matched = append(matched, appt)
	}
	return paginate(matched, req), nil
}

func (f *fakeService) GetAppointment(_ context.Context, id string) (domain.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, appt := range f.appts {
		if appt.ID == id {
			return appt, nil
		}
	}
	return domain.Appointment{}, app.ErrNotFound
}

func (f *fakeService) CreateAppointment(_ context.Context, in domain.AppointmentInput) (domain.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createdAppts = append(f.createdAppts, in)
	return domain.Appointment{ID: "new-appt", Title: in.Title, Date: in.Date}, nil
}

func (f *fakeService) UpdateAppointment(_ context.Context, id string, in domain.AppointmentInput) (domain.Appointment, error) {
	return domain.Appointment{ID: id, Title: in.Title, Date: in.Date}, nil
}

func (f *fakeService) DeleteAppointment(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletedAppts = append(f.deletedAppts, id)
	return nil
}

func (f *fakeService) GenerateNextSteps(_ context.Context, id, notes string) (string, error) {
	if strings.TrimSpace(notes) == "" {
		return "", errors.New("notas da reunião vazias")
	}
	return f.steps, nil
}

func (f *fakeService) DashboardStats(context.Context) (app.DashboardStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return app.DashboardStats{}, f.err
	}
	return f.stats, nil
}

func (f *fakeService) UrgentItems(context.Context) (app.UrgentItems, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return app.UrgentItems{}, f.err
	}
	return f.urgent, nil
}

func (f *fakeService) CalendarMonth(_ context.Context, year int, month time.Month) (domain.CalendarMonth, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calendarCalls = append(f.calendarCalls, calendarCall{year: year, month: month})
	if f.err != nil {
		return nil, f.err
	}
	return f.calendar, nil
}

func sampleTasks(n int) []domain.Task {
	tasks := make([]domain.Task, 0, n)
	for i := range n {
		tasks = append(tasks, domain.Task{
			ID:       "t" + string(rune('a'+i)),
			Title:    "Tarefa " + string(rune('A'+i)),
			Category: "Financeiro",
			Priority: domain.PriorityMedium,
			Status:   domain.StatusPending,
		})
	}
	return tasks
}

func TestModelLoadsDashboard(t *testing.T) {
	svc := newFakeService(sampleTasks(2), nil)
	svc.stats.Tasks.ByStatus[domain.StatusPending] = 2
	svc.stats.Appointments = app.AppointmentStats{Total: 3, Today: 1, Upcoming: 2}
	svc.urgent.Tasks = []domain.Task{{ID: "u1", Title: "Pagar boleto", Priority: domain.PriorityUrgent, Status: domain.StatusPending, DueDate: "2026-03-08"}}
	m := newTestModel(t, svc)

	if !m.dashboardLoaded {
		t.Fatalf("expected dashboard to load, status %q", m.status)
	}
	out := m.renderDashboard()
	for _, want := range []string{"Tarefas urgentes", "Pagar boleto", "atrasada", "Próximos compromissos", "Nenhum compromisso próximo."} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected dashboard to contain %q, got\n%s", want, out)
		}
	}
}

func TestModelDashboardErrorNotifies(t *testing.T) {
	svc := newFakeService(nil, nil)
	svc.err = errors.New("connection refused")
	m := newTestModel(t, svc)

	if m.dashboardLoaded {
		t.Fatal("expected dashboard to stay unloaded")
	}
	notice, ok := m.notices.Latest(m.now())
	if !ok || notice.Level != viewstate.NoticeError || notice.Message != msgLoadFailed {
		t.Fatalf("unexpected notice %#v ok=%v", notice, ok)
	}
	if !strings.Contains(m.renderDashboard(), msgLoadFailed) {
		t.Fatal("expected error state in dashboard")
	}
}

func TestModelViewNavigation(t *testing.T) {
	svc := newFakeService(sampleTasks(3), nil)
	m := newTestModel(t, svc)

	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyTab})
	if m.active != viewTasks {
		t.Fatalf("expected tasks view, got %v", m.active)
	}
	if len(m.tasks.Items()) != 3 {
		t.Fatalf("expected 3 tasks loaded, got %d", len(m.tasks.Items()))
	}
	m = applyMsg(t, m, keyRune('4'))
	if m.active != viewKanban {
		t.Fatalf("expected kanban view, got %v", m.active)
	}
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyTab, Mod: tea.ModShift})
	if m.active != viewAppointments {
		t.Fatalf("expected appointments view, got %v", m.active)
	}
	m = applyMsg(t, m, keyRune('1'))
	if m.active != viewDashboard {
		t.Fatalf("expected dashboard view, got %v", m.active)
	}
}

func TestModelTabClickSwitchesView(t *testing.T) {
	m := newTestModel(t, newFakeService(sampleTasks(1), nil))
	x := len([]rune(headerPrefix))
	for _, label := range m.tabLabels()[:2] {
		x += len([]rune(ansi.Strip(label)))
	}
	m = applyMsg(t, m, tea.MouseClickMsg{X: x + 1, Y: 0, Button: tea.MouseLeft})
	if m.active != viewAppointments {
		t.Fatalf("expected click on third tab to open appointments, got %v", m.active)
	}
}

func TestTaskListPagingAndFilters(t *testing.T) {
	tasks := sampleTasks(12)
	tasks[3].Status = domain.StatusDone
	svc := newFakeService(tasks, nil)
	m := newTestModel(t, svc, WithPerPage(5))
	m = applyMsg(t, m, keyRune('2'))

	if got := m.tasks.Meta(); got.Total != 12 || got.TotalPages != 3 {
		t.Fatalf("unexpected meta %#v", got)
	}
	m = applyMsg(t, m, keyRune(']'))
	if m.tasks.Page() != 2 || m.tasks.Items()[0].ID != tasks[5].ID {
		t.Fatalf("expected page 2 starting at %s, got page %d %#v", tasks[5].ID, m.tasks.Page(), m.tasks.Items())
	}
	last := svc.taskRequests[len(svc.taskRequests)-1]
	if last != (domain.PageRequest{Page: 2, PerPage: 5}) {
		t.Fatalf("unexpected page request %#v", last)
	}

	m = sendKey(t, m, keyRune('f'))
	if m.mode != modeForm || m.form.kind != formTaskFilter {
		t.Fatalf("expected filter form, mode %v", m.mode)
	}
	setField(t, m, "status", "Concluida")
	m = applyMsg(t, m, tea.KeyPressMsg{Code: 's', Mod: tea.ModCtrl})
	if m.mode != modeNone {
		t.Fatalf("expected form closed, mode %v", m.mode)
	}
	if m.tasks.Page() != 1 || len(m.tasks.Items()) != 1 || m.tasks.Items()[0].ID != tasks[3].ID {
		t.Fatalf("expected one filtered task on page 1, got page %d %#v", m.tasks.Page(), m.tasks.Items())
	}
	if !strings.Contains(m.renderTasks(), "status: Concluída") {
		t.Fatalf("expected filter summary, got\n%s", m.renderTasks())
	}

	m = applyMsg(t, m, keyRune('c'))
	if !m.tasks.Filter().IsZero() || len(m.tasks.Items()) != 5 {
		t.Fatalf("expected cleared filters, got %#v with %d items", m.tasks.Filter(), len(m.tasks.Items()))
	}
}

func TestTaskFilterFormRejectsUnknownStatus(t *testing.T) {
	svc := newFakeService(sampleTasks(2), nil)
	m := newTestModel(t, svc)
	m = applyMsg(t, m, keyRune('2'))
	calls := len(svc.taskRequests)

	m = sendKey(t, m, keyRune('f'))
	setField(t, m, "status", "arquivada")
	m = applyMsg(t, m, tea.KeyPressMsg{Code: 's', Mod: tea.ModCtrl})
	if m.mode != modeForm {
		t.Fatal("expected form to stay open")
	}
	if len(svc.taskRequests) != calls {
		t.Fatal("expected no fetch for an invalid filter")
	}
}

func TestTaskListDropsStaleResponses(t *testing.T) {
	svc := newFakeService(sampleTasks(2), nil)
	m := newTestModel(t, svc)
	m = applyMsg(t, m, keyRune('2'))

	older := m.tasks.Reload()
	newer := m.tasks.Reload()
	stale := domain.Page[domain.Task]{Items: []domain.Task{{ID: "stale", Title: "Antiga"}}, Meta: domain.PageMeta{Page: 1, PerPage: 10, Total: 1, TotalPages: 1}}
	m = applyMsg(t, m, tasksLoadedMsg{req: older, page: stale})
	if !m.tasks.Loading() {
		t.Fatal("expected newer request to remain in flight")
	}
	fresh := domain.Page[domain.Task]{Items: []domain.Task{{ID: "fresh", Title: "Nova"}}, Meta: domain.PageMeta{Page: 1, PerPage: 10, Total: 1, TotalPages: 1}}
	m = applyMsg(t, m, tasksLoadedMsg{req: newer, page: fresh})
	if items := m.tasks.Items(); len(items) != 1 || items[0].ID != "fresh" {
		t.Fatalf("expected fresh items, got %#v", items)
	}
}

func TestTaskListEmptyAndErrorStates(t *testing.T) {
	svc := newFakeService(nil, nil)
	m := newTestModel(t, svc)
	m = applyMsg(t, m, keyRune('2'))
	if !strings.Contains(m.renderTasks(), "Nenhuma tarefa encontrada.") {
		t.Fatalf("expected empty state, got\n%s", m.renderTasks())
	}

	svc.err = errors.New("boom")
	m = applyMsg(t, m, keyRune('r'))
	if !strings.Contains(m.renderTasks(), msgLoadFailed) {
		t.Fatalf("expected error state, got\n%s", m.renderTasks())
	}
}

func TestTaskFormValidationSkipsBackend(t *testing.T) {
	svc := newFakeService(nil, nil)
	m := newTestModel(t, svc)
	m = applyMsg(t, m, keyRune('2'))

	m = sendKey(t, m, keyRune('n'))
	if m.mode != modeForm || m.form.kind != formTask {
		t.Fatalf("expected task form, mode %v", m.mode)
	}
	setField(t, m, "titulo", "Revisar contrato")
	m = applyMsg(t, m, tea.KeyPressMsg{Code: 's', Mod: tea.ModCtrl})
	if m.mode != modeForm {
		t.Fatal("expected form to stay open without a category")
	}
	if len(svc.createdTasks) != 0 {
		t.Fatalf("expected no create call, got %d", len(svc.createdTasks))
	}
	notice, ok := m.notices.Latest(m.now())
	if !ok || notice.Level != viewstate.NoticeWarning || notice.Message != "Preencha os campos obrigatórios." {
		t.Fatalf("unexpected notice %#v", notice)
	}

	setField(t, m, "categoria", "Jurídico")
	setField(t, m, "data_limite", "31/03/2026")
	m = applyMsg(t, m, tea.KeyPressMsg{Code: 's', Mod: tea.ModCtrl})
	if m.mode != modeNone {
		t.Fatalf("expected form closed, mode %v", m.mode)
	}
	if len(svc.createdTasks) != 1 || svc.createdTasks[0].DueDate != "2026-03-31" {
		t.Fatalf("unexpected create calls %#v", svc.createdTasks)
	}
	notice, _ = m.notices.Latest(m.now())
	if notice.Message != msgSaved {
		t.Fatalf("expected saved notice, got %#v", notice)
	}
	if len(m.tasks.Items()) != 1 {
		t.Fatalf("expected list reload after save, got %d items", len(m.tasks.Items()))
	}
}

func TestTaskFormRejectsBadDate(t *testing.T) {
	svc := newFakeService(nil, nil)
	m := newTestModel(t, svc)
	m = applyMsg(t, m, keyRune('2'))
	m = sendKey(t, m, keyRune('n'))
	setField(t, m, "titulo", "Revisar contrato")
	setField(t, m, "categoria", "Jurídico")
	setField(t, m, "data_limite", "amanhã")
	m = applyMsg(t, m, tea.KeyPressMsg{Code: 's', Mod: tea.ModCtrl})
	if m.mode != modeForm || len(svc.createdTasks) != 0 {
		t.Fatalf("expected bad date to block save, mode %v creates %d", m.mode, len(svc.createdTasks))
	}
}

func TestFormEnterAdvancesThenSubmits(t *testing.T) {
	svc := newFakeService(nil, nil)
	m := newTestModel(t, svc)
	m = applyMsg(t, m, keyRune('2'))
	m = sendKey(t, m, keyRune('f'))
	for range len(m.form.fields) - 1 {
		m = sendKey(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})
	}
	if !m.form.onLastField() {
		t.Fatalf("expected focus on last field, got %d", m.form.focus)
	}
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})
	if m.mode != modeNone {
		t.Fatalf("expected enter on last field to submit, mode %v", m.mode)
	}
}

func TestAppointmentFormRejectsInvertedTimes(t *testing.T) {
	svc := newFakeService(nil, nil)
	m := newTestModel(t, svc)
	m = applyMsg(t, m, keyRune('3'))

	m = sendKey(t, m, keyRune('n'))
	if got := m.form.values()["data"]; got != "10/03/2026" {
		t.Fatalf("expected today's date prefilled, got %q", got)
	}
	setField(t, m, "titulo", "Reunião de alinhamento")
	setField(t, m, "horario_inicio", "15:00")
	setField(t, m, "horario_fim", "14:00")
	m = applyMsg(t, m, tea.KeyPressMsg{Code: 's', Mod: tea.ModCtrl})
	if m.mode != modeForm || len(svc.createdAppts) != 0 {
		t.Fatalf("expected inverted range to block save, mode %v creates %d", m.mode, len(svc.createdAppts))
	}
	notice, _ := m.notices.Latest(m.now())
	if notice.Message != "O horário de término deve ser posterior ao horário de início." {
		t.Fatalf("unexpected notice %#v", notice)
	}

	setField(t, m, "horario_fim", "16:00")
	m = applyMsg(t, m, tea.KeyPressMsg{Code: 's', Mod: tea.ModCtrl})
	if len(svc.createdAppts) != 1 || svc.createdAppts[0].Date != "2026-03-10" {
		t.Fatalf("unexpected appointment creates %#v", svc.createdAppts)
	}
}

func TestAppointmentNextStepsUpdatesDetail(t *testing.T) {
	appt := domain.Appointment{ID: "a1", Title: "Kickoff", Date: "2026-03-11", StartTime: "10:00", EndTime: "11:00", MeetingNotes: "- definir escopo"}
	svc := newFakeService(nil, []domain.Appointment{appt})
	svc.steps = "• Enviar proposta"
	m := newTestModel(t, svc)
	m = applyMsg(t, m, keyRune('3'))

	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})
	if m.mode != modeDetail || m.detail.appointment == nil {
		t.Fatalf("expected appointment detail, mode %v", m.mode)
	}
	m = applyMsg(t, m, keyRune('g'))
	if m.detail == nil || m.detail.appointment.NextSteps != "• Enviar proposta" {
		t.Fatalf("expected next steps in detail, got %#v", m.detail)
	}
	notice, _ := m.notices.Latest(m.now())
	if notice.Message != msgNextSteps {
		t.Fatalf("unexpected notice %#v", notice)
	}
}

func TestDeleteNeedsConfirmation(t *testing.T) {
	svc := newFakeService(sampleTasks(2), nil)
	m := newTestModel(t, svc)
	m = applyMsg(t, m, keyRune('2'))

	m = applyMsg(t, m, keyRune('d'))
	if m.mode != modeConfirm {
		t.Fatalf("expected confirm mode, got %v", m.mode)
	}
	m = applyMsg(t, m, keyRune('n'))
	if m.mode != modeNone || len(svc.deletedTasks) != 0 {
		t.Fatalf("expected cancel without delete, mode %v deletes %v", m.mode, svc.deletedTasks)
	}

	m = applyMsg(t, m, keyRune('d'))
	m = applyMsg(t, m, keyRune('y'))
	if len(svc.deletedTasks) != 1 || svc.deletedTasks[0] != "ta" {
		t.Fatalf("unexpected deletes %v", svc.deletedTasks)
	}
	if len(m.tasks.Items()) != 1 {
		t.Fatalf("expected reload after delete, got %d items", len(m.tasks.Items()))
	}
}

func TestCycleStatusPatchesOnlyStatus(t *testing.T) {
	svc := newFakeService(sampleTasks(1), nil)
	m := newTestModel(t, svc)
	m = applyMsg(t, m, keyRune('2'))

	m = applyMsg(t, m, keyRune('s'))
	if len(svc.statusCalls) != 1 || svc.statusCalls[0] != (statusCall{id: "ta", status: domain.StatusInProgress}) {
		t.Fatalf("unexpected status calls %#v", svc.statusCalls)
	}
	if len(svc.updates) != 0 {
		t.Fatal("expected no full update")
	}
	if got := m.tasks.Items()[0].Status; got != domain.StatusInProgress {
		t.Fatalf("expected reloaded status, got %q", got)
	}
}

func TestNextStatusWraps(t *testing.T) {
	cases := map[domain.Status]domain.Status{
		domain.StatusPending:    domain.StatusInProgress,
		domain.StatusInProgress: domain.StatusDone,
		domain.StatusDone:       domain.StatusPostponed,
		domain.StatusPostponed:  domain.StatusPending,
		"desconhecido":          domain.StatusInProgress,
	}
	for in, want := range cases {
		if got := nextStatus(in); got != want {
			t.Fatalf("nextStatus(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestActionErrorMessage(t *testing.T) {
	cases := map[string]struct {
		err  error
		want string
	}{
		"api message": {err: &restclient.APIError{Status: 400, Message: "Título é obrigatório"}, want: "Título é obrigatório"},
		"api errors":  {err: &restclient.APIError{Status: 422, Errors: []string{"a", "b"}}, want: "a; b"},
		"plain":       {err: errors.New("dial tcp: refused"), want: "dial tcp: refused"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			if got := actionErrorMessage(tc.err); got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestNoticesExpire(t *testing.T) {
	clock := testNow
	m := newTestModel(t, newFakeService(nil, nil), WithClock(func() time.Time { return clock }), WithNoticeTTL(2*time.Second))

	m.notify(viewstate.NoticeSuccess, msgSaved)
	if !strings.Contains(m.renderNoticeLine(), msgSaved) {
		t.Fatalf("expected notice line, got %q", m.renderNoticeLine())
	}
	clock = clock.Add(3 * time.Second)
	m = applyMsg(t, m, noticeExpiredMsg{})
	if _, ok := m.notices.Latest(clock); ok {
		t.Fatal("expected notice to expire")
	}
	if strings.Contains(m.renderNoticeLine(), msgSaved) {
		t.Fatal("expected status line after expiry")
	}
}

func TestCopyUsesClipboard(t *testing.T) {
	var copied string
	svc := newFakeService(sampleTasks(1), nil)
	m := newTestModel(t, svc, WithClipboard(func(text string) error {
		copied = text
		return nil
	}))
	m = applyMsg(t, m, keyRune('2'))
	m = applyMsg(t, m, keyRune('y'))
	if !strings.HasPrefix(copied, "Tarefa A | Financeiro") {
		t.Fatalf("unexpected clipboard text %q", copied)
	}
	notice, _ := m.notices.Latest(m.now())
	if notice.Message != msgCopied {
		t.Fatalf("unexpected notice %#v", notice)
	}
}

func TestHelpOverlayAndQuit(t *testing.T) {
	m := newTestModel(t, newFakeService(nil, nil))
	m = applyMsg(t, m, keyRune('?'))
	if !m.help.ShowAll {
		t.Fatal("expected full help")
	}
	if !strings.Contains(ansi.Strip(m.renderOverlay()), "Atalhos") {
		t.Fatal("expected help overlay")
	}
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEscape})
	if m.help.ShowAll {
		t.Fatal("expected help closed")
	}

	_, cmd := m.Update(keyRune('q'))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("expected tea.QuitMsg")
	}
}

func TestViewRendersChrome(t *testing.T) {
	m := newTestModel(t, newFakeService(sampleTasks(1), nil))
	out := ansi.Strip(fmt.Sprint(m.View().Content))
	for _, want := range []string{"agenda", "1 Painel", "4 Quadro", "6 Histórico"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected view to contain %q, got\n%s", want, out)
		}
	}
}

// newTestModel builds a sized model with a fixed clock and no notice timers.
func newTestModel(t *testing.T, svc Service, opts ...Option) Model {
	t.Helper()
	base := []Option{
		WithClock(func() time.Time { return testNow }),
		WithLocale("pt-BR"),
		WithExportDir(t.TempDir()),
		WithClipboard(func(string) error { return nil }),
	}
	m := NewModel(svc, append(base, opts...)...)
	m.tick = nil
	return loadReadyModel(t, m)
}

func loadReadyModel(t *testing.T, m Model) Model {
	t.Helper()
	return applyMsg(t, applyCmd(t, m, m.Init()), tea.WindowSizeMsg{Width: 120, Height: 40})
}

// sendKey updates without running the returned command.
func sendKey(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	updated, _ := m.Update(msg)
	out, ok := updated.(Model)
	if !ok {
		t.Fatalf("expected Model, got %T", updated)
	}
	return out
}

func applyMsg(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	updated, cmd := m.Update(msg)
	out, ok := updated.(Model)
	if !ok {
		t.Fatalf("expected Model, got %T", updated)
	}
	return applyCmd(t, out, cmd)
}

// applyCmd drains cmd, expanding batches, and feeds every message back into the model.
func applyCmd(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	out := m
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0 && steps < 32; steps++ {
		current := queue[0]
		queue = queue[1:]
		if current == nil {
			continue
		}
		msg := current()
		if batch, ok := msg.(tea.BatchMsg); ok {
			queue = append(queue, batch...)
			continue
		}
		if _, ok := msg.(tea.QuitMsg); ok {
			continue
		}
		updated, next := out.Update(msg)
		casted, ok := updated.(Model)
		if !ok {
			t.Fatalf("expected Model, got %T", updated)
		}
		out = casted
		queue = append(queue, next)
	}
	return out
}

func keyRune(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

// setField writes one value into the open form.
func setField(t *testing.T, m Model, key, value string) {
	t.Helper()
	if m.form == nil {
		t.Fatal("expected an open form")
	}
	for i, field := range m.form.fields {
		if field.key == key {
			m.form.inputs[i].SetValue(value)
			return
		}
	}
	t.Fatalf("form has no field %q", key)
}
