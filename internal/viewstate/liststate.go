// Package viewstate holds the terminal-independent state of every agenda view.
package viewstate

import "github.com/evanschultz/agenda/internal/domain"

// RenderStatus selects which placeholder a list view renders.
type RenderStatus int

const (
	RenderLoading RenderStatus = iota
	RenderReady
	RenderEmpty
	RenderError
)

// String returns a stable lowercase name for logs and tests.
func (s RenderStatus) String() string {
	switch s {
	case RenderLoading:
		return "loading"
	case RenderReady:
		return "ready"
	case RenderEmpty:
		return "empty"
	case RenderError:
		return "error"
	default:
		return "unknown"
	}
}

// FetchRequest describes one page load issued by a list state.
type FetchRequest[F comparable] struct {
	Generation uint64
	Page       int
	PerPage    int
	Filter     F
}

// PageRequest returns the pagination part of the request.
func (r FetchRequest[F]) PageRequest() domain.PageRequest {
	return domain.PageRequest{Page: r.Page, PerPage: r.PerPage}
}

// ListState tracks filter, pagination, and the last loaded page of one list view.
type ListState[T any, F comparable] struct {
	defaults F
	filter   F
	page     int
	perPage  int
	meta     domain.PageMeta

	items    []T
	err      error
	loaded   bool
	inFlight bool

	issued uint64
}

// NewListState constructs list state with default filter and page size.
func NewListState[T any, F comparable](defaults F, perPage int) *ListState[T, F] {
	if perPage <= 0 {
		perPage = domain.DefaultPerPage
	}
	return &ListState[T, F]{
		defaults: defaults,
		filter:   defaults,
		page:     1,
		perPage:  perPage,
	}
}

// Filter returns the applied filter.
func (s *ListState[T, F]) Filter() F {
	return s.filter
}

// Page returns the current 1-based page.
func (s *ListState[T, F]) Page() int {
	return s.page
}

// PerPage returns the page size.
func (s *ListState[T, F]) PerPage() int {
	return s.perPage
}

// Meta returns the last server-reported pagination metadata.
func (s *ListState[T, F]) Meta() domain.PageMeta {
	return s.meta
}

// Items returns the last successfully loaded items.
func (s *ListState[T, F]) Items() []T {
	return s.items
}

// Err returns the last load failure, if the most recent load failed.
func (s *ListState[T, F]) Err() error {
	return s.err
}

// Generation returns the token of the latest issued request.
func (s *ListState[T, F]) Generation() uint64 {
	return s.issued
}

// Status reports which placeholder the view renders.
func (s *ListState[T, F]) Status() RenderStatus {
	switch {
	case s.err != nil:
		return RenderError
	case !s.loaded:
		return RenderLoading
	case len(s.items) == 0:
		return RenderEmpty
	default:
		return RenderReady
	}
}

// Loading reports whether the latest issued request has not resolved yet.
func (s *ListState[T, F]) Loading() bool {
	return s.inFlight
}

// ApplyFilters replaces the filter, resets to page one, and issues a fetch.
func (s *ListState[T, F]) ApplyFilters(filter F) FetchRequest[F] {
	s.filter = filter
	s.page = 1
	return s.issue()
}

// ClearFilters restores the default filter and re-applies it.
func (s *ListState[T, F]) ClearFilters() FetchRequest[F] {
	return s.ApplyFilters(s.defaults)
}

// ChangePage moves to page n and issues a fetch; out-of-range pages change nothing.
func (s *ListState[T, F]) ChangePage(n int) (FetchRequest[F], bool) {
	if n < 1 || n > s.meta.TotalPages {
		return FetchRequest[F]{}, false
	}
	s.page = n
	return s.issue(), true
}

// NextPage is ChangePage(Page()+1).
func (s *ListState[T, F]) NextPage() (FetchRequest[F], bool) {
	return s.ChangePage(s.page + 1)
}

// PrevPage is ChangePage(Page()-1).
func (s *ListState[T, F]) PrevPage() (FetchRequest[F], bool) {
	return s.ChangePage(s.page - 1)
}

// Reload re-issues a fetch for the current filter and page.
func (s *ListState[T, F]) Reload() FetchRequest[F] {
	return s.issue()
}

// Resolve applies one fetch outcome and reports whether it was current.
// Responses older than the latest issued request are discarded.
func (s *ListState[T, F]) Resolve(req FetchRequest[F], page domain.Page[T], err error) bool {
	if req.Generation != s.issued {
		return false
	}
	s.inFlight = false
	if err != nil {
		s.err = err
		return true
	}
	s.err = nil
	s.loaded = true
	s.items = page.Items
	s.meta = page.Meta
	if page.Meta.Page > 0 {
		s.page = page.Meta.Page
	}
	if page.Meta.PerPage > 0 {
		s.perPage = page.Meta.PerPage
	}
	return true
}

// issue clamps the page to the known page range and stamps a new generation.
func (s *ListState[T, F]) issue() FetchRequest[F] {
	if s.meta.TotalPages > 0 && s.page > s.meta.TotalPages {
		s.page = s.meta.TotalPages
	}
	if s.page < 1 {
		s.page = 1
	}
	s.issued++
	s.inFlight = true
	return FetchRequest[F]{
		Generation: s.issued,
		Page:       s.page,
		PerPage:    s.perPage,
		Filter:     s.filter,
	}
}
