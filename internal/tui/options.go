package tui

import (
	"time"

	"golang.org/x/text/language"
)

type Option func(*Model)

// WithPerPage sets the page size of the task and appointment lists.
func WithPerPage(n int) Option {
	return func(m *Model) {
		if n > 0 {
			m.perPage = n
		}
	}
}

// WithKanbanFetchCap bounds the single board fetch.
func WithKanbanFetchCap(n int) Option {
	return func(m *Model) {
		if n > 0 {
			m.kanbanCap = n
		}
	}
}

// WithHistoryPeriodDays sets the default history lookback; 0 keeps every date.
func WithHistoryPeriodDays(days int) Option {
	return func(m *Model) {
		if days >= 0 {
			m.historyPeriod = days
		}
	}
}

func WithNoticeTTL(ttl time.Duration) Option {
	return func(m *Model) {
		if ttl > 0 {
			m.noticeTTL = ttl
		}
	}
}

// WithLocale selects date display and month names. An empty or unknown locale
// falls back to the environment.
func WithLocale(raw string) Option {
	return func(m *Model) {
		if tag, err := language.Parse(normalizeLocale(raw)); err == nil && raw != "" {
			m.locale = tag
		}
	}
}

// WithExportDir sets where history CSV files are written.
func WithExportDir(dir string) Option {
	return func(m *Model) {
		m.exportDir = dir
	}
}

func WithClock(now func() time.Time) Option {
	return func(m *Model) {
		if now != nil {
			m.now = now
		}
	}
}

// WithClipboard replaces the system clipboard writer.
func WithClipboard(write func(string) error) Option {
	return func(m *Model) {
		if write != nil {
			m.copyText = write
		}
	}
}
