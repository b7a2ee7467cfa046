package tui

import (
	"context"
	"time"

	"github.com/evanschultz/agenda/internal/app"
	"github.com/evanschultz/agenda/internal/domain"
)

// Service is the backend surface the terminal UI consumes. The REST client satisfies it.
type Service interface {
	ListTasks(context.Context, domain.TaskFilter, domain.PageRequest) (domain.Page[domain.Task], error)
	ListCompletedTasks(context.Context) ([]domain.Task, error)
	GetTask(context.Context, string) (domain.Task, error)
	CreateTask(context.Context, domain.TaskInput) (domain.Task, error)
	UpdateTask(context.Context, string, domain.TaskInput) (domain.Task, error)
	UpdateTaskStatus(context.Context, string, domain.Status) (domain.Task, error)
	DeleteTask(context.Context, string) error

	ListAppointments(context.Context, domain.AppointmentFilter, domain.PageRequest) (domain.Page[domain.Appointment], error)
	GetAppointment(context.Context, string) (domain.Appointment, error)
	CreateAppointment(context.Context, domain.AppointmentInput) (domain.Appointment, error)
	UpdateAppointment(context.Context, string, domain.AppointmentInput) (domain.Appointment, error)
	DeleteAppointment(context.Context, string) error
	GenerateNextSteps(context.Context, string, string) (string, error)

	DashboardStats(context.Context) (app.DashboardStats, error)
	UrgentItems(context.Context) (app.UrgentItems, error)
	CalendarMonth(context.Context, int, time.Month) (domain.CalendarMonth, error)
}
