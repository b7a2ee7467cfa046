package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Task is one tracked unit of work.
type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"titulo"`
	Description string    `json:"descricao"`
	Category    string    `json:"categoria"`
	Keyword     string    `json:"palavra_chave"`
	Priority    Priority  `json:"prioridade"`
	Status      Status    `json:"status"`
	DueDate     string    `json:"data_limite"`
	Owners      string    `json:"responsaveis"`
	Notes       string    `json:"observacoes"`
	Checklist   string    `json:"checklist"`
	CreatedAt   time.Time `json:"criado_em"`
	UpdatedAt   time.Time `json:"atualizado_em"`
}

// TaskInput holds the user-editable task fields.
type TaskInput struct {
	Title       string   `json:"titulo"`
	Description string   `json:"descricao"`
	Category    string   `json:"categoria"`
	Keyword     string   `json:"palavra_chave"`
	Priority    Priority `json:"prioridade"`
	Status      Status   `json:"status"`
	DueDate     string   `json:"data_limite"`
	Owners      string   `json:"responsaveis"`
	Notes       string   `json:"observacoes"`
	Checklist   string   `json:"checklist"`
}

// Normalize sanitizes text fields and applies the medium/pending defaults.
func (in TaskInput) Normalize() TaskInput {
	in.Title = SanitizeText(in.Title)
	in.Description = SanitizeText(in.Description)
	in.Category = SanitizeText(in.Category)
	in.Keyword = SanitizeText(in.Keyword)
	in.Owners = SanitizeText(in.Owners)
	in.Notes = SanitizeText(in.Notes)
	in.Checklist = SanitizeText(in.Checklist)
	in.DueDate = strings.TrimSpace(in.DueDate)
	in.Priority = Priority(strings.ToLower(strings.TrimSpace(string(in.Priority))))
	in.Status = Status(strings.ToLower(strings.TrimSpace(string(in.Status))))
	if in.Priority == "" {
		in.Priority = PriorityMedium
	}
	if in.Status == "" {
		in.Status = StatusPending
	}
	return in
}

// Validate reports every problem with the input joined into one error.
func (in TaskInput) Validate() error {
	var errs []error
	if in.Title == "" {
		errs = append(errs, fmt.Errorf("%w: titulo is required", ErrInvalidTitle))
	}
	if in.Category == "" {
		errs = append(errs, fmt.Errorf("%w: categoria is required", ErrInvalidCategory))
	}
	if _, err := ParsePriority(string(in.Priority)); err != nil {
		errs = append(errs, err)
	}
	if _, err := ParseStatus(string(in.Status)); err != nil {
		errs = append(errs, err)
	}
	if in.DueDate != "" {
		if _, err := ParseDate(in.DueDate); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NewTask validates input and builds a task stamped with now.
func NewTask(id string, in TaskInput, now time.Time) (Task, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Task{}, ErrInvalidID
	}
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return Task{}, err
	}
	t := Task{ID: id, CreatedAt: now.UTC()}
	t.apply(in, now)
	return t, nil
}

// Update replaces every editable field with the validated input.
func (t *Task) Update(in TaskInput, now time.Time) error {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return err
	}
	t.apply(in, now)
	return nil
}

// SetStatus changes only the status.
func (t *Task) SetStatus(status Status, now time.Time) error {
	parsed, err := ParseStatus(string(status))
	if err != nil {
		return err
	}
	t.Status = parsed
	t.UpdatedAt = now.UTC()
	return nil
}

// Input returns the editable fields of the task.
func (t Task) Input() TaskInput {
	return TaskInput{
		Title:       t.Title,
		Description: t.Description,
		Category:    t.Category,
		Keyword:     t.Keyword,
		Priority:    t.Priority,
		Status:      t.Status,
		DueDate:     t.DueDate,
		Owners:      t.Owners,
		Notes:       t.Notes,
		Checklist:   t.Checklist,
	}
}

// Due returns the parsed due date when one is set.
func (t Task) Due() (time.Time, bool) {
	if strings.TrimSpace(t.DueDate) == "" {
		return time.Time{}, false
	}
	d, err := ParseDate(t.DueDate)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

func (t *Task) apply(in TaskInput, now time.Time) {
	t.Title = in.Title
	t.Description = in.Description
	t.Category = in.Category
	t.Keyword = in.Keyword
	t.Priority = in.Priority
	t.Status = in.Status
	t.DueDate = in.DueDate
	t.Owners = in.Owners
	t.Notes = in.Notes
	t.Checklist = in.Checklist
	t.UpdatedAt = now.UTC()
}
