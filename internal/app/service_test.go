package app

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/evanschultz/agenda/internal/domain"
)

type fakeRepo struct {
	mu           sync.Mutex
	tasks        map[string]domain.Task
	appointments map[string]domain.Appointment
	listErr      error
	updates      int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		tasks:        map[string]domain.Task{},
		appointments: map[string]domain.Appointment{},
	}
}

func (f *fakeRepo) CreateTask(_ context.Context, t domain.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks[t.ID] = t
	return nil
}

func (f *fakeRepo) UpdateTask(_ context.Context, t domain.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tasks[t.ID]; !ok {
		return ErrNotFound
	}
	f.updates++
	f.tasks[t.ID] = t
	return nil
}

func (f *fakeRepo) GetTask(_ context.Context, id string) (domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tasks[id]
	if !ok {
		return domain.Task{}, ErrNotFound
	}
	return t, nil
}

func (f *fakeRepo) DeleteTask(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tasks[id]; !ok {
		return ErrNotFound
	}
	delete(f.tasks, id)
	return nil
}

func (f *fakeRepo) ListTasks(_ context.Context, filter domain.TaskFilter, page domain.PageRequest) ([]domain.Task, int, error) {
	all, err := f.ListAllTasks(context.Background())
	if err != nil {
		return nil, 0, err
	}
	matched := make([]domain.Task, 0, len(all))
	for _, t := range all {
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		if filter.Priority != "" && t.Priority != filter.Priority {
			continue
		}
		if filter.Category != "" && !strings.Contains(strings.ToLower(t.Category), strings.ToLower(filter.Category)) {
			continue
		}
		matched = append(matched, t)
	}
	start := min(page.Offset(), len(matched))
	end := min(start+page.PerPage, len(matched))
	return matched[start:end], len(matched), nil
}

func (f *fakeRepo) ListAllTasks(_ context.Context) ([]domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]domain.Task, 0, len(f.tasks))
	for _, t := range f.tasks {
		out = append(out, t)
	}
	slices.SortFunc(out, func(a, b domain.Task) int { return strings.Compare(a.ID, b.ID) })
	return out, nil
}

func (f *fakeRepo) ListTasksDueBetween(ctx context.Context, from, to string) ([]domain.Task, error) {
	all, err := f.ListAllTasks(ctx)
	if err != nil {
		return nil, err
	}
	out := []domain.Task{}
	for _, t := range all {
		if t.DueDate != "" && t.DueDate >= from && t.DueDate <= to {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeRepo) CreateAppointment(_ context.Context, a domain.Appointment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.appointments[a.ID] = a
	return nil
}

func (f *fakeRepo) UpdateAppointment(_ context.Context, a domain.Appointment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.appointments[a.ID]; !ok {
		return ErrNotFound
	}
	f.appointments[a.ID] = a
	return nil
}

func (f *fakeRepo) GetAppointment(_ context.Context, id string) (domain.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.appointments[id]
	if !ok {
		return domain.Appointment{}, ErrNotFound
	}
	return a, nil
}

func (f *fakeRepo) DeleteAppointment(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.appointments[id]; !ok {
		return ErrNotFound
	}
	delete(f.appointments, id)
	return nil
}

func (f *fakeRepo) ListAppointments(ctx context.Context, filter domain.AppointmentFilter, page domain.PageRequest) ([]domain.Appointment, int, error) {
	all, err := f.ListAllAppointments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	start := min(page.Offset(), len(all))
	end := min(start+page.PerPage, len(all))
	return all[start:end], len(all), nil
}

func (f *fakeRepo) ListAllAppointments(_ context.Context, filter domain.AppointmentFilter) ([]domain.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := []domain.Appointment{}
	for _, a := range f.appointments {
		if filter.From != "" && a.Date < filter.From {
			continue
		}
		if filter.To != "" && a.Date > filter.To {
			continue
		}
		out = append(out, a)
	}
	slices.SortFunc(out, func(a, b domain.Appointment) int {
		return strings.Compare(a.Date+a.StartTime, b.Date+b.StartTime)
	})
	return out, nil
}

// newTestService builds a service with sequential ids and a fixed clock.
func newTestService(repo *fakeRepo, now time.Time) *Service {
	n := 0
	return NewService(repo, func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}, func() time.Time { return now }, ServiceConfig{})
}

func TestServiceTaskLifecycle(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	repo := newFakeRepo()
	svc := newTestService(repo, now)

	task, err := svc.CreateTask(ctx, domain.TaskInput{Title: "Escrever relatório", Category: "Trabalho", Priority: domain.PriorityHigh})
	if err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}
	if task.ID != "id-1" || task.Status != domain.StatusPending {
		t.Fatalf("unexpected created task %#v", task)
	}

	updated, err := svc.UpdateTaskStatus(ctx, task.ID, domain.StatusInProgress)
	if err != nil {
		t.Fatalf("UpdateTaskStatus() error = %v", err)
	}
	if updated.Status != domain.StatusInProgress || updated.Title != task.Title {
		t.Fatalf("unexpected status update %#v", updated)
	}

	in := updated.Input()
	in.Notes = "revisado"
	edited, err := svc.UpdateTask(ctx, task.ID, in)
	if err != nil {
		t.Fatalf("UpdateTask() error = %v", err)
	}
	if edited.Notes != "revisado" || edited.Status != domain.StatusInProgress {
		t.Fatalf("unexpected edit %#v", edited)
	}

	if err := svc.DeleteTask(ctx, task.ID); err != nil {
		t.Fatalf("DeleteTask() error = %v", err)
	}
	if _, err := svc.GetTask(ctx, task.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestServiceCreateTaskRejectsInvalidInput(t *testing.T) {
	svc := newTestService(newFakeRepo(), time.Now())
	_, err := svc.CreateTask(context.Background(), domain.TaskInput{Title: "sem categoria"})
	if !errors.Is(err, domain.ErrInvalidCategory) {
		t.Fatalf("expected ErrInvalidCategory, got %v", err)
	}
}

func TestServiceUpdateTaskStatusRejectsUnknownStatus(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	svc := newTestService(repo, time.Now())
	task, err := svc.CreateTask(ctx, domain.TaskInput{Title: "a", Category: "b"})
	if err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}
	if _, err := svc.UpdateTaskStatus(ctx, task.ID, "arquivada"); !errors.Is(err, domain.ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
	if repo.updates != 0 {
		t.Fatalf("expected no repository update, got %d", repo.updates)
	}
}

func TestServiceListTasksPaginates(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newFakeRepo(), time.Now())
	for i := 0; i < 12; i++ {
		if _, err := svc.CreateTask(ctx, domain.TaskInput{Title: fmt.Sprintf("t%d", i), Category: "c"}); err != nil {
			t.Fatalf("CreateTask() error = %v", err)
		}
	}
	page, err := svc.ListTasks(ctx, domain.TaskFilter{}, domain.PageRequest{Page: 2, PerPage: 5})
	if err != nil {
		t.Fatalf("ListTasks() error = %v", err)
	}
	if len(page.Items) != 5 || page.Meta.Total != 12 || page.Meta.TotalPages != 3 || page.Meta.Page != 2 {
		t.Fatalf("unexpected page %#v", page.Meta)
	}
	if _, err := svc.ListTasks(ctx, domain.TaskFilter{Status: "feito"}, domain.PageRequest{}); !errors.Is(err, domain.ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus for bad filter, got %v", err)
	}
}

func TestServiceListCompletedTasksNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	repo.tasks["a"] = domain.Task{ID: "a", Status: domain.StatusDone, UpdatedAt: base}
	repo.tasks["b"] = domain.Task{ID: "b", Status: domain.StatusDone, UpdatedAt: base.Add(48 * time.Hour)}
	repo.tasks["c"] = domain.Task{ID: "c", Status: domain.StatusPending, UpdatedAt: base.Add(72 * time.Hour)}
	svc := newTestService(repo, base)

	done, err := svc.ListCompletedTasks(ctx)
	if err != nil {
		t.Fatalf("ListCompletedTasks() error = %v", err)
	}
	if len(done) != 2 || done[0].ID != "b" || done[1].ID != "a" {
		t.Fatalf("unexpected completed order %#v", done)
	}
}

func TestServiceAppointmentsAndNextSteps(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	svc := newTestService(repo, time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC))

	appt, err := svc.CreateAppointment(ctx, domain.AppointmentInput{
		Title:     "Planejamento",
		Date:      "2026-03-11",
		StartTime: "14:00",
		EndTime:   "15:00",
	})
	if err != nil {
		t.Fatalf("CreateAppointment() error = %v", err)
	}
	if _, err := svc.UpdateAppointment(ctx, appt.ID, domain.AppointmentInput{
		Title:     "Planejamento",
		Date:      "2026-03-11",
		StartTime: "15:00",
		EndTime:   "14:00",
	}); !errors.Is(err, domain.ErrInvalidTimeRange) {
		t.Fatalf("expected ErrInvalidTimeRange, got %v", err)
	}

	steps, err := svc.GenerateNextSteps(ctx, appt.ID, "Precisamos REVISAR o prazo e enviar a proposta")
	if err != nil {
		t.Fatalf("GenerateNextSteps() error = %v", err)
	}
	want := "• Adicionar ao calendário\n• Agendar revisão\n• Enviar material/email"
	if steps != want {
		t.Fatalf("unexpected steps %q, want %q", steps, want)
	}
	stored, err := svc.GetAppointment(ctx, appt.ID)
	if err != nil {
		t.Fatalf("GetAppointment() error = %v", err)
	}
	if stored.NextSteps != want {
		t.Fatalf("expected steps persisted, got %q", stored.NextSteps)
	}

	if _, err := svc.GenerateNextSteps(ctx, "missing", "x"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := svc.ListAppointments(ctx, domain.AppointmentFilter{From: "11/03/2026"}, domain.PageRequest{}); !errors.Is(err, domain.ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
}

func TestNextStepsFromNotes(t *testing.T) {
	cases := []struct {
		notes string
		want  string
	}{
		{"", ""},
		{"Nada de especial", "• Revisar notas da reunião\n• Definir próximas ações"},
		{"DECISÃO tomada; próxima ação com o time", "• Documentar decisão tomada\n• Definir responsável e prazo"},
		{"aprovar orçamento e agendar retorno", "• Solicitar aprovação\n• Agendar nova reunião"},
	}
	for _, tc := range cases {
		if got := NextStepsFromNotes(tc.notes); got != tc.want {
			t.Fatalf("NextStepsFromNotes(%q) = %q, want %q", tc.notes, got, tc.want)
		}
	}
}
