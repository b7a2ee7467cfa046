package app

import (
	"context"

	"github.com/evanschultz/agenda/internal/domain"
)

// TaskRepository persists tasks.
type TaskRepository interface {
	CreateTask(context.Context, domain.Task) error
	UpdateTask(context.Context, domain.Task) error
	GetTask(context.Context, string) (domain.Task, error)
	DeleteTask(context.Context, string) error
	ListTasks(context.Context, domain.TaskFilter, domain.PageRequest) ([]domain.Task, int, error)
	ListAllTasks(context.Context) ([]domain.Task, error)
	ListTasksDueBetween(context.Context, string, string) ([]domain.Task, error)
}

// AppointmentRepository persists appointments.
type AppointmentRepository interface {
	CreateAppointment(context.Context, domain.Appointment) error
	UpdateAppointment(context.Context, domain.Appointment) error
	GetAppointment(context.Context, string) (domain.Appointment, error)
	DeleteAppointment(context.Context, string) error
	ListAppointments(context.Context, domain.AppointmentFilter, domain.PageRequest) ([]domain.Appointment, int, error)
	ListAllAppointments(context.Context, domain.AppointmentFilter) ([]domain.Appointment, error)
}

// Repository combines every persistence port the service needs.
type Repository interface {
	TaskRepository
	AppointmentRepository
}
