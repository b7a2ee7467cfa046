package domain

import "strings"

const (
	// DefaultPerPage is the list page size when a request omits one.
	DefaultPerPage = 10
	// MaxPerPage bounds one page; it matches the unpaginated board fetch cap.
	MaxPerPage = 1000
)

// TaskFilter narrows task listings. Empty fields do not filter.
type TaskFilter struct {
	Status   Status   `json:"status,omitempty"`
	Priority Priority `json:"prioridade,omitempty"`
	Category string   `json:"categoria,omitempty"`
	Keyword  string   `json:"palavra_chave,omitempty"`
}

// Normalize trims every field and lowercases the enumerated ones.
func (f TaskFilter) Normalize() TaskFilter {
	f.Status = Status(strings.ToLower(strings.TrimSpace(string(f.Status))))
	f.Priority = Priority(strings.ToLower(strings.TrimSpace(string(f.Priority))))
	f.Category = strings.TrimSpace(f.Category)
	f.Keyword = strings.TrimSpace(f.Keyword)
	return f
}

// IsZero reports whether no filter field is set.
func (f TaskFilter) IsZero() bool {
	return f == TaskFilter{}
}

// AppointmentFilter narrows appointment listings by date range and keyword.
type AppointmentFilter struct {
	From    string `json:"data_inicio,omitempty"`
	To      string `json:"data_fim,omitempty"`
	Keyword string `json:"palavra_chave,omitempty"`
}

// Normalize trims every field.
func (f AppointmentFilter) Normalize() AppointmentFilter {
	f.From = strings.TrimSpace(f.From)
	f.To = strings.TrimSpace(f.To)
	f.Keyword = strings.TrimSpace(f.Keyword)
	return f
}

// IsZero reports whether no filter field is set.
func (f AppointmentFilter) IsZero() bool {
	return f == AppointmentFilter{}
}

// PageRequest selects one 1-based page.
type PageRequest struct {
	Page    int
	PerPage int
}

// Normalize applies the default page size and clamps to valid bounds.
func (p PageRequest) Normalize() PageRequest {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PerPage <= 0 {
		p.PerPage = DefaultPerPage
	}
	if p.PerPage > MaxPerPage {
		p.PerPage = MaxPerPage
	}
	return p
}

// Offset returns the number of rows to skip.
func (p PageRequest) Offset() int {
	p = p.Normalize()
	return (p.Page - 1) * p.PerPage
}

// PageMeta is the server-reported pagination metadata for one list response.
type PageMeta struct {
	Page       int `json:"page"`
	PerPage    int `json:"perPage"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// NewPageMeta computes metadata for a page over total rows.
func NewPageMeta(req PageRequest, total int) PageMeta {
	req = req.Normalize()
	if total < 0 {
		total = 0
	}
	return PageMeta{
		Page:       req.Page,
		PerPage:    req.PerPage,
		Total:      total,
		TotalPages: (total + req.PerPage - 1) / req.PerPage,
	}
}

// Page is one page of items with its metadata.
type Page[T any] struct {
	Items []T
	Meta  PageMeta
}

// CalendarDay buckets the appointments and due tasks of one date.
type CalendarDay struct {
	Appointments []Appointment `json:"compromissos"`
	Tasks        []Task        `json:"tarefas"`
}

// Total returns the number of events in the bucket.
func (d CalendarDay) Total() int {
	return len(d.Appointments) + len(d.Tasks)
}

// CalendarMonth maps YYYY-MM-DD dates to their buckets.
type CalendarMonth map[string]CalendarDay
