package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/evanschultz/agenda/internal/domain"
)

// SnapshotVersion identifies the backup format.
const SnapshotVersion = "agenda.snapshot.v1"

// Snapshot is a full backup of tasks and appointments.
type Snapshot struct {
	Version      string               `json:"version"`
	ExportedAt   time.Time            `json:"exported_at"`
	Tasks        []domain.Task        `json:"tarefas"`
	Appointments []domain.Appointment `json:"compromissos"`
}

// ExportSnapshot captures every task and appointment.
func (s *Service) ExportSnapshot(ctx context.Context) (Snapshot, error) {
	tasks, err := s.repo.ListAllTasks(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("list tasks: %w", err)
	}
	appts, err := s.repo.ListAllAppointments(ctx, domain.AppointmentFilter{})
	if err != nil {
		return Snapshot{}, fmt.Errorf("list appointments: %w", err)
	}
	snap := Snapshot{
		Version:      SnapshotVersion,
		ExportedAt:   s.clock().UTC(),
		Tasks:        append(make([]domain.Task, 0, len(tasks)), tasks...),
		Appointments: append(make([]domain.Appointment, 0, len(appts)), appts...),
	}
	snap.sort()
	return snap, nil
}

// ImportSnapshot upserts every record by id. Records not in the snapshot are kept.
func (s *Service) ImportSnapshot(ctx context.Context, snap Snapshot) error {
	if err := snap.Validate(); err != nil {
		return err
	}
	snap.sort()

	for _, task := range snap.Tasks {
		if _, err := s.repo.GetTask(ctx, task.ID); err == nil {
			if err := s.repo.UpdateTask(ctx, task); err != nil {
				return fmt.Errorf("update task %s: %w", task.ID, err)
			}
			continue
		} else if !errors.Is(err, ErrNotFound) {
			return err
		}
		if err := s.repo.CreateTask(ctx, task); err != nil {
			return fmt.Errorf("create task %s: %w", task.ID, err)
		}
	}
	for _, appt := range snap.Appointments {
		if _, err := s.repo.GetAppointment(ctx, appt.ID); err == nil {
			if err := s.repo.UpdateAppointment(ctx, appt); err != nil {
				return fmt.Errorf("update appointment %s: %w", appt.ID, err)
			}
			continue
		} else if !errors.Is(err, ErrNotFound) {
			return err
		}
		if err := s.repo.CreateAppointment(ctx, appt); err != nil {
			return fmt.Errorf("create appointment %s: %w", appt.ID, err)
		}
	}
	return nil
}

// Validate checks the version, ids and every record's editable fields.
func (s *Snapshot) Validate() error {
	if s.Version != "" && s.Version != SnapshotVersion {
		return fmt.Errorf("unsupported snapshot version: %q", s.Version)
	}

	taskIDs := map[string]struct{}{}
	for i, task := range s.Tasks {
		if strings.TrimSpace(task.ID) == "" {
			return fmt.Errorf("tarefas[%d].id is required: %w", i, domain.ErrInvalidID)
		}
		if _, exists := taskIDs[task.ID]; exists {
			return fmt.Errorf("duplicate task id: %q", task.ID)
		}
		taskIDs[task.ID] = struct{}{}
		if err := task.Input().Normalize().Validate(); err != nil {
			return fmt.Errorf("tarefas[%d]: %w", i, err)
		}
		if task.CreatedAt.IsZero() {
			return fmt.Errorf("tarefas[%d].criado_em is required", i)
		}
	}

	apptIDs := map[string]struct{}{}
	for i, appt := range s.Appointments {
		if strings.TrimSpace(appt.ID) == "" {
			return fmt.Errorf("compromissos[%d].id is required: %w", i, domain.ErrInvalidID)
		}
		if _, exists := apptIDs[appt.ID]; exists {
			return fmt.Errorf("duplicate appointment id: %q", appt.ID)
		}
		apptIDs[appt.ID] = struct{}{}
		if err := appt.Input().Normalize().Validate(); err != nil {
			return fmt.Errorf("compromissos[%d]: %w", i, err)
		}
		if appt.CreatedAt.IsZero() {
			return fmt.Errorf("compromissos[%d].criado_em is required", i)
		}
	}
	return nil
}

// sort orders tasks by id and appointments chronologically.
func (s *Snapshot) sort() {
	sort.Slice(s.Tasks, func(i, j int) bool {
		return s.Tasks[i].ID < s.Tasks[j].ID
	})
	sort.Slice(s.Appointments, func(i, j int) bool {
		a := s.Appointments[i]
		b := s.Appointments[j]
		if a.Date == b.Date {
			if a.StartTime == b.StartTime {
				return a.ID < b.ID
			}
			return a.StartTime < b.StartTime
		}
		return a.Date < b.Date
	})
}
