// Package common provides transport-agnostic server contracts used by HTTP and MCP adapters.
package common

import (
	"context"
	"errors"

	"github.com/evanschultz/agenda/internal/app"
	"github.com/evanschultz/agenda/internal/domain"
)

// ErrInvalidRequest reports malformed or rejected transport input.
var ErrInvalidRequest = errors.New("invalid request")

// ErrNotFound reports missing transport-visible resources.
var ErrNotFound = errors.New("not found")

// ErrServiceUnavailable reports a transport wired without its backing service.
var ErrServiceUnavailable = errors.New("service unavailable")

// ListTasksRequest captures one paginated task listing request.
type ListTasksRequest struct {
	Page     int
	PerPage  int
	Status   string
	Priority string
	Category string
	Keyword  string
}

// ListAppointmentsRequest captures one paginated appointment listing request.
type ListAppointmentsRequest struct {
	Page    int
	PerPage int
	From    string
	To      string
	Keyword string
}

// CalendarRequest selects one calendar month.
type CalendarRequest struct {
	Year  int
	Month int
}

// TaskPage is one page of tasks with its pagination metadata.
type TaskPage struct {
	Items []domain.Task
	Meta  domain.PageMeta
}

// AppointmentPage is one page of appointments with its pagination metadata.
type AppointmentPage struct {
	Items []domain.Appointment
	Meta  domain.PageMeta
}

// NextStepsResult carries generated follow-up actions.
type NextStepsResult struct {
	NextSteps string `json:"proximos_passos"`
}

// TaskService exposes task operations to transport adapters.
type TaskService interface {
	ListTasks(context.Context, ListTasksRequest) (TaskPage, error)
	ListCompletedTasks(context.Context) ([]domain.Task, error)
	GetTask(context.Context, string) (domain.Task, error)
	CreateTask(context.Context, domain.TaskInput) (domain.Task, error)
	UpdateTask(context.Context, string, domain.TaskInput) (domain.Task, error)
	UpdateTaskStatus(context.Context, string, string) (domain.Task, error)
	DeleteTask(context.Context, string) error
}

// AppointmentService exposes appointment operations to transport adapters.
type AppointmentService interface {
	ListAppointments(context.Context, ListAppointmentsRequest) (AppointmentPage, error)
	GetAppointment(context.Context, string) (domain.Appointment, error)
	CreateAppointment(context.Context, domain.AppointmentInput) (domain.Appointment, error)
	UpdateAppointment(context.Context, string, domain.AppointmentInput) (domain.Appointment, error)
	DeleteAppointment(context.Context, string) error
	GenerateNextSteps(context.Context, string, string) (NextStepsResult, error)
}

// DashboardService exposes dashboard aggregates to transport adapters.
type DashboardService interface {
	DashboardStats(context.Context) (app.DashboardStats, error)
	UrgentItems(context.Context) (app.UrgentItems, error)
	CalendarMonth(context.Context, CalendarRequest) (domain.CalendarMonth, error)
}

// AgendaService is the full surface served over HTTP and MCP.
type AgendaService interface {
	TaskService
	AppointmentService
	DashboardService
}
