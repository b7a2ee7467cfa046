package viewstate

import (
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/evanschultz/agenda/internal/domain"
	"golang.org/x/text/cases"
)

// DefaultHistoryPeriodDays is the lookback window of a fresh history view.
const DefaultHistoryPeriodDays = 30

// historyHeader is the first row of every history export.
var historyHeader = []string{"Título", "Categoria", "Prioridade", "Data Limite", "Descrição"}

// HistoryFilter narrows completed tasks. PeriodDays 0 keeps every date.
type HistoryFilter struct {
	PeriodDays int
	Category   string
	Keyword    string
}

// DefaultHistoryFilter returns the 30-day filter with no text criteria.
func DefaultHistoryFilter() HistoryFilter {
	return HistoryFilter{PeriodDays: DefaultHistoryPeriodDays}
}

// FilterHistory keeps completed tasks matching f, newest first.
func FilterHistory(tasks []domain.Task, f HistoryFilter, now time.Time) []domain.Task {
	fold := cases.Fold()
	category := fold.String(strings.TrimSpace(f.Category))
	keyword := fold.String(strings.TrimSpace(f.Keyword))
	cutoff := ""
	if f.PeriodDays > 0 {
		cutoff = domain.FormatDate(now.AddDate(0, 0, -f.PeriodDays))
	}

	out := make([]domain.Task, 0, len(tasks))
	for _, task := range tasks {
		if task.Status != domain.StatusDone {
			continue
		}
		if cutoff != "" {
			ref, ok := historyReferenceDate(task, now.Location())
			if !ok || ref < cutoff {
				continue
			}
		}
		if category != "" && !strings.Contains(fold.String(task.Category), category) {
			continue
		}
		if keyword != "" {
			text := fold.String(task.Title + " " + task.Description + " " + task.Keyword)
			if !strings.Contains(text, keyword) {
				continue
			}
		}
		out = append(out, task)
	}
	slices.SortStableFunc(out, func(a, b domain.Task) int {
		ta, okA := historySortTime(a)
		tb, okB := historySortTime(b)
		switch {
		case !okA && !okB:
			return 0
		case !okA:
			return 1
		case !okB:
			return -1
		}
		return tb.Compare(ta)
	})
	return out
}

// historyReferenceDate picks the due date, else updated, else created day.
func historyReferenceDate(task domain.Task, loc *time.Location) (string, bool) {
	if task.DueDate != "" {
		if _, err := domain.ParseDate(task.DueDate); err == nil {
			return task.DueDate, true
		}
	}
	if !task.UpdatedAt.IsZero() {
		return domain.FormatDate(task.UpdatedAt.In(loc)), true
	}
	if !task.CreatedAt.IsZero() {
		return domain.FormatDate(task.CreatedAt.In(loc)), true
	}
	return "", false
}

// historySortTime picks updated, else created, else due time.
func historySortTime(task domain.Task) (time.Time, bool) {
	if !task.UpdatedAt.IsZero() {
		return task.UpdatedAt, true
	}
	if !task.CreatedAt.IsZero() {
		return task.CreatedAt, true
	}
	if due, ok := task.Due(); ok {
		return due, true
	}
	return time.Time{}, false
}

// WriteHistoryCSV writes tasks as the history export table.
func WriteHistoryCSV(w io.Writer, tasks []domain.Task) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(historyHeader); err != nil {
		return fmt.Errorf("write history header: %w", err)
	}
	for _, task := range tasks {
		row := []string{task.Title, task.Category, string(task.Priority), task.DueDate, task.Description}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write history row %s: %w", task.ID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush history csv: %w", err)
	}
	return nil
}

// HistoryCSV renders the export table as a string.
func HistoryCSV(tasks []domain.Task) (string, error) {
	var b strings.Builder
	if err := WriteHistoryCSV(&b, tasks); err != nil {
		return "", err
	}
	return b.String(), nil
}

// HistoryFileName returns the export file name for now's date.
func HistoryFileName(now time.Time) string {
	return fmt.Sprintf("tarefas_concluidas_%s.csv", domain.FormatDate(now))
}
