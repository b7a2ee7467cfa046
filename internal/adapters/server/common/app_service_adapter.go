package common

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/evanschultz/agenda/internal/app"
	"github.com/evanschultz/agenda/internal/domain"
)

// Error tags one failed operation with the transport sentinel it maps to.
type Error struct {
	Op   string
	Kind error
	Err  error
}

// Error returns the operation-prefixed cause.
func (e *Error) Error() string {
	return e.Op + ": " + e.Err.Error()
}

// Unwrap exposes both the sentinel and the cause to errors.Is.
func (e *Error) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// Messages returns one human-readable line per underlying problem.
func (e *Error) Messages() []string {
	return domain.ValidationMessages(e.Err)
}

// AppServiceAdapter maps transport contracts onto app.Service.
type AppServiceAdapter struct {
	service *app.Service
}

// NewAppServiceAdapter builds one common adapter over an app.Service instance.
func NewAppServiceAdapter(service *app.Service) *AppServiceAdapter {
	return &AppServiceAdapter{service: service}
}

// ListTasks lists one filtered page of tasks.
func (a *AppServiceAdapter) ListTasks(ctx context.Context, in ListTasksRequest) (TaskPage, error) {
	if err := a.ready(); err != nil {
		return TaskPage{}, err
	}
	page, err := a.service.ListTasks(ctx, domain.TaskFilter{
		Status:   domain.Status(in.Status),
		Priority: domain.Priority(in.Priority),
		Category: in.Category,
		Keyword:  in.Keyword,
	}, domain.PageRequest{Page: in.Page, PerPage: in.PerPage})
	if err != nil {
		return TaskPage{}, mapAppError("list tasks", err)
	}
	return TaskPage{Items: page.Items, Meta: page.Meta}, nil
}

// ListCompletedTasks lists every concluded task.
func (a *AppServiceAdapter) ListCompletedTasks(ctx context.Context) ([]domain.Task, error) {
	if err := a.ready(); err != nil {
		return nil, err
	}
	tasks, err := a.service.ListCompletedTasks(ctx)
	if err != nil {
		return nil, mapAppError("list completed tasks", err)
	}
	return tasks, nil
}

// GetTask loads one task.
func (a *AppServiceAdapter) GetTask(ctx context.Context, id string) (domain.Task, error) {
	if err := a.ready(); err != nil {
		return domain.Task{}, err
	}
	task, err := a.service.GetTask(ctx, id)
	if err != nil {
		return domain.Task{}, mapAppError("get task", err)
	}
	return task, nil
}

// CreateTask creates one task.
func (a *AppServiceAdapter) CreateTask(ctx context.Context, in domain.TaskInput) (domain.Task, error) {
	if err := a.ready(); err != nil {
		return domain.Task{}, err
	}
	task, err := a.service.CreateTask(ctx, in)
	if err != nil {
		return domain.Task{}, mapAppError("create task", err)
	}
	return task, nil
}

// UpdateTask replaces one task's editable fields.
func (a *AppServiceAdapter) UpdateTask(ctx context.Context, id string, in domain.TaskInput) (domain.Task, error) {
	if err := a.ready(); err != nil {
		return domain.Task{}, err
	}
	task, err := a.service.UpdateTask(ctx, id, in)
	if err != nil {
		return domain.Task{}, mapAppError("update task", err)
	}
	return task, nil
}

// UpdateTaskStatus changes one task's status.
func (a *AppServiceAdapter) UpdateTaskStatus(ctx context.Context, id, status string) (domain.Task, error) {
	if err := a.ready(); err != nil {
		return domain.Task{}, err
	}
	parsed, err := domain.ParseStatus(status)
	if err != nil {
		return domain.Task{}, mapAppError("update task status", err)
	}
	task, err := a.service.UpdateTaskStatus(ctx, id, parsed)
	if err != nil {
		return domain.Task{}, mapAppError("update task status", err)
	}
	return task, nil
}

// DeleteTask removes one task.
func (a *AppServiceAdapter) DeleteTask(ctx context.Context, id string) error {
	if err := a.ready(); err != nil {
		return err
	}
	return mapAppError("delete task", a.service.DeleteTask(ctx, id))
}

// ListAppointments lists one filtered page of appointments.
func (a *AppServiceAdapter) ListAppointments(ctx context.Context, in ListAppointmentsRequest) (AppointmentPage, error) {
	if err := a.ready(); err != nil {
		return AppointmentPage{}, err
	}
	page, err := a.service.ListAppointments(ctx, domain.AppointmentFilter{
		From:    in.From,
		To:      in.To,
		Keyword: in.Keyword,
	}, domain.PageRequest{Page: in.Page, PerPage: in.PerPage})
	if err != nil {
		return AppointmentPage{}, mapAppError("list appointments", err)
	}
	return AppointmentPage{Items: page.Items, Meta: page.Meta}, nil
}

// GetAppointment loads one appointment.
func (a *AppServiceAdapter) GetAppointment(ctx context.Context, id string) (domain.Appointment, error) {
	if err := a.ready(); err != nil {
		return domain.Appointment{}, err
	}
	appt, err := a.service.GetAppointment(ctx, id)
	if err != nil {
		return domain.Appointment{}, mapAppError("get appointment", err)
	}
	return appt, nil
}

// CreateAppointment creates one appointment.
func (a *AppServiceAdapter) CreateAppointment(ctx context.Context, in domain.AppointmentInput) (domain.Appointment, error) {
	if err := a.ready(); err != nil {
		return domain.Appointment{}, err
	}
	appt, err := a.service.CreateAppointment(ctx, in)
	if err != nil {
		return domain.Appointment{}, mapAppError("create appointment", err)
	}
	return appt, nil
}

// UpdateAppointment replaces one appointment's editable fields.
func (a *AppServiceAdapter) UpdateAppointment(ctx context.Context, id string, in domain.AppointmentInput) (domain.Appointment, error) {
	if err := a.ready(); err != nil {
		return domain.Appointment{}, err
	}
	appt, err := a.service.UpdateAppointment(ctx, id, in)
	if err != nil {
		return domain.Appointment{}, mapAppError("update appointment", err)
	}
	return appt, nil
}

// DeleteAppointment removes one appointment.
func (a *AppServiceAdapter) DeleteAppointment(ctx context.Context, id string) error {
	if err := a.ready(); err != nil {
		return err
	}
	return mapAppError("delete appointment", a.service.DeleteAppointment(ctx, id))
}

// GenerateNextSteps derives and stores follow-up actions for one appointment.
// Missing notes are rejected before the appointment is looked up.
func (a *AppServiceAdapter) GenerateNextSteps(ctx context.Context, id, notes string) (NextStepsResult, error) {
	if err := a.ready(); err != nil {
		return NextStepsResult{}, err
	}
	if strings.TrimSpace(notes) == "" {
		return NextStepsResult{}, &Error{
			Op:   "generate next steps",
			Kind: ErrInvalidRequest,
			Err:  errors.New("notas_reuniao is required"),
		}
	}
	steps, err := a.service.GenerateNextSteps(ctx, id, notes)
	if err != nil {
		return NextStepsResult{}, mapAppError("generate next steps", err)
	}
	return NextStepsResult{NextSteps: steps}, nil
}

// DashboardStats returns aggregate counts.
func (a *AppServiceAdapter) DashboardStats(ctx context.Context) (app.DashboardStats, error) {
	if err := a.ready(); err != nil {
		return app.DashboardStats{}, err
	}
	stats, err := a.service.DashboardStats(ctx)
	if err != nil {
		return app.DashboardStats{}, mapAppError("dashboard stats", err)
	}
	return stats, nil
}

// UrgentItems returns urgent tasks and imminent appointments.
func (a *AppServiceAdapter) UrgentItems(ctx context.Context) (app.UrgentItems, error) {
	if err := a.ready(); err != nil {
		return app.UrgentItems{}, err
	}
	items, err := a.service.UrgentItems(ctx)
	if err != nil {
		return app.UrgentItems{}, mapAppError("urgent items", err)
	}
	return items, nil
}

// CalendarMonth returns the date-keyed buckets for one month.
func (a *AppServiceAdapter) CalendarMonth(ctx context.Context, in CalendarRequest) (domain.CalendarMonth, error) {
	if err := a.ready(); err != nil {
		return nil, err
	}
	month, err := a.service.CalendarMonth(ctx, in.Year, time.Month(in.Month))
	if err != nil {
		return nil, mapAppError("calendar month", err)
	}
	return month, nil
}

// ready reports whether the adapter has a backing service.
func (a *AppServiceAdapter) ready() error {
	if a == nil || a.service == nil {
		return fmt.Errorf("app service adapter is not configured: %w", ErrServiceUnavailable)
	}
	return nil
}

// mapAppError maps app/domain errors into transport-layer error sentinels.
func mapAppError(operation string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, app.ErrNotFound):
		return &Error{Op: operation, Kind: ErrNotFound, Err: err}
	case domain.IsValidationError(err), errors.Is(err, app.ErrInvalidMonth):
		return &Error{Op: operation, Kind: ErrInvalidRequest, Err: err}
	default:
		return fmt.Errorf("%s: %w", operation, err)
	}
}
