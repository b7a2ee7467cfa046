package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/evanschultz/agenda/internal/domain"
)

// errAlreadySeeded reports a non-empty database when seeding without force.
var errAlreadySeeded = errors.New("database already has tasks; pass --force to seed anyway")

// seedTarget is the write surface seeding needs.
type seedTarget interface {
	ListTasks(context.Context, domain.TaskFilter, domain.PageRequest) (domain.Page[domain.Task], error)
	CreateTask(context.Context, domain.TaskInput) (domain.Task, error)
	CreateAppointment(context.Context, domain.AppointmentInput) (domain.Appointment, error)
}

// seed inserts the sample data with dates relative to at.
func seed(ctx context.Context, svc seedTarget, at time.Time, force bool) (int, int, error) {
	if !force {
		existing, err := svc.ListTasks(ctx, domain.TaskFilter{}, domain.PageRequest{Page: 1, PerPage: 1})
		if err != nil {
			return 0, 0, fmt.Errorf("check existing tasks: %w", err)
		}
		if existing.Meta.Total > 0 || len(existing.Items) > 0 {
			return 0, 0, errAlreadySeeded
		}
	}

	day := func(offset int) string {
		return domain.FormatDate(at.AddDate(0, 0, offset))
	}
	tasks := []domain.TaskInput{
		{
			Title:       "Enviar proposta comercial",
			Description: "Revisar valores e enviar a proposta final ao cliente.",
			Category:    "Vendas",
			Keyword:     "proposta",
			Priority:    domain.PriorityUrgent,
			Status:      domain.StatusPending,
			DueDate:     day(1),
			Owners:      "Ana",
			Checklist:   "• Revisar valores\n• Anexar contrato",
		},
		{
			Title:       "Atualizar planilha de custos",
			Description: "Incluir despesas do último trimestre.",
			Category:    "Financeiro",
			Keyword:     "custos",
			Priority:    domain.PriorityHigh,
			Status:      domain.StatusInProgress,
			DueDate:     day(3),
			Owners:      "Bruno",
		},
		{
			Title:       "Preparar apresentação trimestral",
			Description: "Slides com os resultados do trimestre.",
			Category:    "Gestão",
			Keyword:     "apresentação",
			Priority:    domain.PriorityMedium,
			Status:      domain.StatusPending,
			DueDate:     day(7),
		},
		{
			Title:    "Renovar domínio do site",
			Category: "TI",
			Keyword:  "domínio",
			Priority: domain.PriorityLow,
			Status:   domain.StatusPostponed,
			DueDate:  day(20),
		},
		{
			Title:       "Contratar fornecedor de café",
			Description: "Comparar três orçamentos.",
			Category:    "Administrativo",
			Priority:    domain.PriorityMedium,
			Status:      domain.StatusDone,
			DueDate:     day(-2),
		},
		{
			Title:       "Fechar relatório mensal",
			Description: "Relatório de indicadores enviado à diretoria.",
			Category:    "Gestão",
			Keyword:     "relatório",
			Priority:    domain.PriorityHigh,
			Status:      domain.StatusDone,
			DueDate:     day(-5),
		},
	}
	appts := []domain.AppointmentInput{
		{
			Title:        "Reunião de alinhamento",
			Participants: "Ana, Bruno, Carla",
			Subject:      "Planejamento da semana",
			Keyword:      "alinhamento",
			Location:     "Sala 2",
			Date:         day(0),
			StartTime:    "09:30",
			EndTime:      "10:30",
			Objective:    "Definir prioridades da semana.",
		},
		{
			Title:        "Call com cliente",
			Participants: "Ana",
			Subject:      "Proposta comercial",
			Keyword:      "proposta",
			Location:     "https://meet.example.com/cliente",
			Date:         day(1),
			StartTime:    "14:00",
			EndTime:      "15:00",
			Reminders:    "Levar números atualizados",
		},
		{
			Title:        "Revisão de orçamento",
			Participants: "Bruno, Diretoria",
			Subject:      "Custos do trimestre",
			Date:         day(-1),
			StartTime:    "16:00",
			EndTime:      "17:00",
			MeetingNotes: "Decisão: cortar 10% de viagens. Enviar planilha revisada até sexta.",
		},
	}

	for _, in := range tasks {
		if _, err := svc.CreateTask(ctx, in); err != nil {
			return 0, 0, fmt.Errorf("create task %q: %w", in.Title, err)
		}
	}
	for _, in := range appts {
		if _, err := svc.CreateAppointment(ctx, in); err != nil {
			return len(tasks), 0, fmt.Errorf("create appointment %q: %w", in.Title, err)
		}
	}
	return len(tasks), len(appts), nil
}
