package app

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/evanschultz/agenda/internal/domain"
	"golang.org/x/sync/errgroup"
)

// uncategorized labels tasks with an empty category in stats.
const uncategorized = "Sem categoria"

// DashboardStats summarizes every task and appointment.
type DashboardStats struct {
	Tasks        TaskStats        `json:"tarefas"`
	Appointments AppointmentStats `json:"compromissos"`
}

// TaskStats counts tasks by status, priority and category.
type TaskStats struct {
	Total      int                     `json:"total"`
	ByStatus   map[domain.Status]int   `json:"por_status"`
	ByPriority map[domain.Priority]int `json:"por_prioridade"`
	ByCategory map[string]int          `json:"por_categoria"`
}

// AppointmentStats counts appointments overall, today and in the upcoming window.
type AppointmentStats struct {
	Total    int `json:"total"`
	Today    int `json:"hoje"`
	Upcoming int `json:"proximos_7_dias"`
}

// UrgentItems lists open tasks needing attention and imminent appointments.
type UrgentItems struct {
	Tasks        []domain.Task        `json:"tarefas_urgentes"`
	Appointments []domain.Appointment `json:"compromissos_proximos"`
}

// DashboardStats aggregates counts over all tasks and appointments.
func (s *Service) DashboardStats(ctx context.Context) (DashboardStats, error) {
	tasks, appts, err := s.loadEverything(ctx)
	if err != nil {
		return DashboardStats{}, err
	}

	stats := DashboardStats{
		Tasks: TaskStats{
			Total:      len(tasks),
			ByStatus:   map[domain.Status]int{},
			ByPriority: map[domain.Priority]int{},
			ByCategory: map[string]int{},
		},
	}
	for _, status := range domain.Statuses() {
		stats.Tasks.ByStatus[status] = 0
	}
	for _, priority := range domain.Priorities() {
		stats.Tasks.ByPriority[priority] = 0
	}
	for _, task := range tasks {
		if task.Status.Valid() {
			stats.Tasks.ByStatus[task.Status]++
		}
		if task.Priority.Valid() {
			stats.Tasks.ByPriority[task.Priority]++
		}
		category := strings.TrimSpace(task.Category)
		if category == "" {
			category = uncategorized
		}
		stats.Tasks.ByCategory[category]++
	}

	now := s.clock()
	today := domain.FormatDate(now)
	horizon := domain.FormatDate(now.AddDate(0, 0, s.cfg.UpcomingDays))
	stats.Appointments.Total = len(appts)
	for _, appt := range appts {
		if appt.Date == today {
			stats.Appointments.Today++
		}
		if appt.Date >= today && appt.Date <= horizon {
			stats.Appointments.Upcoming++
		}
	}
	return stats, nil
}

// UrgentItems returns open tasks that are urgent or due soon, and appointments for today and tomorrow.
func (s *Service) UrgentItems(ctx context.Context) (UrgentItems, error) {
	tasks, appts, err := s.loadEverything(ctx)
	if err != nil {
		return UrgentItems{}, err
	}

	now := s.clock()
	today := domain.FormatDate(now)
	tomorrow := domain.FormatDate(now.AddDate(0, 0, 1))
	window := time.Duration(s.cfg.UrgentWithinDays+1) * 24 * time.Hour

	out := UrgentItems{
		Tasks:        []domain.Task{},
		Appointments: []domain.Appointment{},
	}
	for _, task := range tasks {
		if task.Status == domain.StatusDone {
			continue
		}
		dueSoon := false
		if due, ok := task.Due(); ok {
			deadline := time.Date(due.Year(), due.Month(), due.Day(), 0, 0, 0, 0, now.Location())
			dueSoon = deadline.Sub(now) < window
		}
		if task.Priority == domain.PriorityUrgent || dueSoon {
			out.Tasks = append(out.Tasks, task)
		}
	}
	for _, appt := range appts {
		if appt.Date == today || appt.Date == tomorrow {
			out.Appointments = append(out.Appointments, appt)
		}
	}
	return out, nil
}

// CalendarMonth buckets the month's appointments and due tasks by date.
func (s *Service) CalendarMonth(ctx context.Context, year int, month time.Month) (domain.CalendarMonth, error) {
	if month < time.January || month > time.December {
		return nil, fmt.Errorf("%w: %d", ErrInvalidMonth, month)
	}
	if year < 1 || year > 9999 {
		return nil, fmt.Errorf("%w: year %d", ErrInvalidMonth, year)
	}
	first, last := domain.MonthBounds(year, month)

	var (
		appts []domain.Appointment
		tasks []domain.Task
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		appts, err = s.repo.ListAllAppointments(gctx, domain.AppointmentFilter{From: first, To: last})
		if err != nil {
			return fmt.Errorf("list month appointments: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		tasks, err = s.repo.ListTasksDueBetween(gctx, first, last)
		if err != nil {
			return fmt.Errorf("list month tasks: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := domain.CalendarMonth{}
	for _, appt := range appts {
		day := out[appt.Date]
		day.Appointments = append(day.Appointments, appt)
		out[appt.Date] = day
	}
	for _, task := range tasks {
		due, ok := task.Due()
		if !ok {
			continue
		}
		key := domain.FormatDate(due)
		day := out[key]
		day.Tasks = append(day.Tasks, task)
		out[key] = day
	}
	for key, day := range out {
		if day.Appointments == nil {
			day.Appointments = []domain.Appointment{}
		}
		if day.Tasks == nil {
			day.Tasks = []domain.Task{}
		}
		slices.SortStableFunc(day.Appointments, func(a, b domain.Appointment) int {
			return strings.Compare(a.StartTime, b.StartTime)
		})
		out[key] = day
	}
	return out, nil
}

// loadEverything loads all tasks and appointments concurrently.
func (s *Service) loadEverything(ctx context.Context) ([]domain.Task, []domain.Appointment, error) {
	var (
		tasks []domain.Task
		appts []domain.Appointment
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		tasks, err = s.repo.ListAllTasks(gctx)
		if err != nil {
			return fmt.Errorf("list tasks: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		appts, err = s.repo.ListAllAppointments(gctx, domain.AppointmentFilter{})
		if err != nil {
			return fmt.Errorf("list appointments: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return tasks, appts, nil
}
