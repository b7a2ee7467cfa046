package domain

import (
	"fmt"
	"slices"
	"strings"
)

// Status is the lifecycle state of a task. Each value doubles as a kanban lane.
type Status string

const (
	StatusPending    Status = "pendente"
	StatusInProgress Status = "em_andamento"
	StatusDone       Status = "concluida"
	StatusPostponed  Status = "adiada"
)

var validStatuses = []Status{StatusPending, StatusInProgress, StatusDone, StatusPostponed}

// Statuses returns the known statuses in lane order.
func Statuses() []Status {
	return slices.Clone(validStatuses)
}

// Valid reports whether s is one of the four known statuses.
func (s Status) Valid() bool {
	return slices.Contains(validStatuses, s)
}

// Label returns the display label for the status.
func (s Status) Label() string {
	switch s {
	case StatusPending:
		return "Pendente"
	case StatusInProgress:
		return "Em Andamento"
	case StatusDone:
		return "Concluída"
	case StatusPostponed:
		return "Adiada"
	default:
		return string(s)
	}
}

// ParseStatus parses a case-insensitive status value.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", fmt.Errorf("%w: %q (use %s)", ErrInvalidStatus, raw, joinStatuses())
	}
	return s, nil
}

// NormalizeStatus maps unknown values to pendente.
func NormalizeStatus(s Status) Status {
	parsed, err := ParseStatus(string(s))
	if err != nil {
		return StatusPending
	}
	return parsed
}

func joinStatuses() string {
	parts := make([]string, 0, len(validStatuses))
	for _, s := range validStatuses {
		parts = append(parts, string(s))
	}
	return strings.Join(parts, ", ")
}

// Priority ranks how pressing a task is.
type Priority string

const (
	PriorityUrgent Priority = "urgente"
	PriorityHigh   Priority = "alta"
	PriorityMedium Priority = "media"
	PriorityLow    Priority = "baixa"
)

var validPriorities = []Priority{PriorityUrgent, PriorityHigh, PriorityMedium, PriorityLow}

// Priorities returns the known priorities from most to least pressing.
func Priorities() []Priority {
	return slices.Clone(validPriorities)
}

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	return slices.Contains(validPriorities, p)
}

// Rank orders priorities for listing; unknown values sort last.
func (p Priority) Rank() int {
	idx := slices.Index(validPriorities, p)
	if idx < 0 {
		return len(validPriorities)
	}
	return idx
}

// Label returns the display label for the priority.
func (p Priority) Label() string {
	switch p {
	case PriorityUrgent:
		return "Urgente"
	case PriorityHigh:
		return "Alta"
	case PriorityMedium:
		return "Média"
	case PriorityLow:
		return "Baixa"
	default:
		return string(p)
	}
}

// ParsePriority parses a case-insensitive priority value.
func ParsePriority(raw string) (Priority, error) {
	p := Priority(strings.ToLower(strings.TrimSpace(raw)))
	if !p.Valid() {
		parts := make([]string, 0, len(validPriorities))
		for _, v := range validPriorities {
			parts = append(parts, string(v))
		}
		return "", fmt.Errorf("%w: %q (use %s)", ErrInvalidPriority, raw, strings.Join(parts, ", "))
	}
	return p, nil
}
