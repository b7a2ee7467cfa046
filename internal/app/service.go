package app

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/evanschultz/agenda/internal/domain"
)

// ServiceConfig holds configuration for service.
type ServiceConfig struct {
	// UrgentWithinDays flags open tasks whose due midnight is fewer than this many whole days away.
	UrgentWithinDays int
	// UpcomingDays is the appointment look-ahead used by dashboard stats.
	UpcomingDays int
}

// IDGenerator returns unique identifiers for new entities.
type IDGenerator func() string

// Clock returns the current time.
type Clock func() time.Time

// Service coordinates task and appointment use cases over one repository.
type Service struct {
	repo  Repository
	idGen IDGenerator
	clock Clock
	cfg   ServiceConfig
}

// NewService constructs a new value for this package.
func NewService(repo Repository, idGen IDGenerator, clock Clock, cfg ServiceConfig) *Service {
	if idGen == nil {
		idGen = func() string { return "" }
	}
	if clock == nil {
		clock = time.Now
	}
	if cfg.UrgentWithinDays <= 0 {
		cfg.UrgentWithinDays = 3
	}
	if cfg.UpcomingDays <= 0 {
		cfg.UpcomingDays = 7
	}
	return &Service{
		repo:  repo,
		idGen: idGen,
		clock: clock,
		cfg:   cfg,
	}
}

// CreateTask validates input and persists a new task.
func (s *Service) CreateTask(ctx context.Context, in domain.TaskInput) (domain.Task, error) {
	task, err := domain.NewTask(s.idGen(), in, s.clock())
	if err != nil {
		return domain.Task{}, err
	}
	if err := s.repo.CreateTask(ctx, task); err != nil {
		return domain.Task{}, fmt.Errorf("create task: %w", err)
	}
	return task, nil
}

// GetTask loads one task.
func (s *Service) GetTask(ctx context.Context, id string) (domain.Task, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Task{}, domain.ErrInvalidID
	}
	return s.repo.GetTask(ctx, id)
}

// UpdateTask replaces the editable fields of one task.
func (s *Service) UpdateTask(ctx context.Context, id string, in domain.TaskInput) (domain.Task, error) {
	task, err := s.GetTask(ctx, id)
	if err != nil {
		return domain.Task{}, err
	}
	if err := task.Update(in, s.clock()); err != nil {
		return domain.Task{}, err
	}
	if err := s.repo.UpdateTask(ctx, task); err != nil {
		return domain.Task{}, fmt.Errorf("update task: %w", err)
	}
	return task, nil
}

// UpdateTaskStatus changes only the status of one task.
func (s *Service) UpdateTaskStatus(ctx context.Context, id string, status domain.Status) (domain.Task, error) {
	task, err := s.GetTask(ctx, id)
	if err != nil {
		return domain.Task{}, err
	}
	if err := task.SetStatus(status, s.clock()); err != nil {
		return domain.Task{}, err
	}
	if err := s.repo.UpdateTask(ctx, task); err != nil {
		return domain.Task{}, fmt.Errorf("update task status: %w", err)
	}
	return task, nil
}

// DeleteTask removes one task.
func (s *Service) DeleteTask(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.ErrInvalidID
	}
	return s.repo.DeleteTask(ctx, id)
}

// ListTasks returns one filtered page of tasks ordered by priority then due date.
func (s *Service) ListTasks(ctx context.Context, filter domain.TaskFilter, page domain.PageRequest) (domain.Page[domain.Task], error) {
	filter = filter.Normalize()
	if filter.Status != "" && !filter.Status.Valid() {
		return domain.Page[domain.Task]{}, fmt.Errorf("%w: %q", domain.ErrInvalidStatus, filter.Status)
	}
	if filter.Priority != "" && !filter.Priority.Valid() {
		return domain.Page[domain.Task]{}, fmt.Errorf("%w: %q", domain.ErrInvalidPriority, filter.Priority)
	}
	page = page.Normalize()
	items, total, err := s.repo.ListTasks(ctx, filter, page)
	if err != nil {
		return domain.Page[domain.Task]{}, fmt.Errorf("list tasks: %w", err)
	}
	return domain.Page[domain.Task]{Items: items, Meta: domain.NewPageMeta(page, total)}, nil
}

// ListCompletedTasks returns every concluded task, most recently updated first.
func (s *Service) ListCompletedTasks(ctx context.Context) ([]domain.Task, error) {
	tasks, err := s.repo.ListAllTasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list completed tasks: %w", err)
	}
	out := make([]domain.Task, 0, len(tasks))
	for _, task := range tasks {
		if task.Status == domain.StatusDone {
			out = append(out, task)
		}
	}
	slices.SortStableFunc(out, func(a, b domain.Task) int {
		return b.UpdatedAt.Compare(a.UpdatedAt)
	})
	return out, nil
}

// CreateAppointment validates input and persists a new appointment.
func (s *Service) CreateAppointment(ctx context.Context, in domain.AppointmentInput) (domain.Appointment, error) {
	appt, err := domain.NewAppointment(s.idGen(), in, s.clock())
	if err != nil {
		return domain.Appointment{}, err
	}
	if err := s.repo.CreateAppointment(ctx, appt); err != nil {
		return domain.Appointment{}, fmt.Errorf("create appointment: %w", err)
	}
	return appt, nil
}

// GetAppointment loads one appointment.
func (s *Service) GetAppointment(ctx context.Context, id string) (domain.Appointment, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Appointment{}, domain.ErrInvalidID
	}
	return s.repo.GetAppointment(ctx, id)
}

// UpdateAppointment replaces the editable fields of one appointment.
func (s *Service) UpdateAppointment(ctx context.Context, id string, in domain.AppointmentInput) (domain.Appointment, error) {
	appt, err := s.GetAppointment(ctx, id)
	if err != nil {
		return domain.Appointment{}, err
	}
	if err := appt.Update(in, s.clock()); err != nil {
		return domain.Appointment{}, err
	}
	if err := s.repo.UpdateAppointment(ctx, appt); err != nil {
		return domain.Appointment{}, fmt.Errorf("update appointment: %w", err)
	}
	return appt, nil
}

// DeleteAppointment removes one appointment.
func (s *Service) DeleteAppointment(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.ErrInvalidID
	}
	return s.repo.DeleteAppointment(ctx, id)
}

// ListAppointments returns one filtered page of appointments ordered by date and start time.
func (s *Service) ListAppointments(ctx context.Context, filter domain.AppointmentFilter, page domain.PageRequest) (domain.Page[domain.Appointment], error) {
	filter = filter.Normalize()
	for _, raw := range []string{filter.From, filter.To} {
		if raw == "" {
			continue
		}
		if _, err := domain.ParseDate(raw); err != nil {
			return domain.Page[domain.Appointment]{}, err
		}
	}
	page = page.Normalize()
	items, total, err := s.repo.ListAppointments(ctx, filter, page)
	if err != nil {
		return domain.Page[domain.Appointment]{}, fmt.Errorf("list appointments: %w", err)
	}
	return domain.Page[domain.Appointment]{Items: items, Meta: domain.NewPageMeta(page, total)}, nil
}

// GenerateNextSteps derives follow-up actions from meeting notes and stores them on the appointment.
func (s *Service) GenerateNextSteps(ctx context.Context, id, notes string) (string, error) {
	appt, err := s.GetAppointment(ctx, id)
	if err != nil {
		return "", err
	}
	steps := NextStepsFromNotes(notes)
	if steps == "" {
		return "", nil
	}
	appt.SetNextSteps(steps, s.clock())
	if err := s.repo.UpdateAppointment(ctx, appt); err != nil {
		return "", fmt.Errorf("store next steps: %w", err)
	}
	return steps, nil
}
