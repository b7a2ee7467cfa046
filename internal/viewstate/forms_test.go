package viewstate

import (
	"errors"
	"fmt"
	"slices"
	"testing"
	"time"

	"github.com/evanschultz/agenda/internal/domain"
)

func TestValidateTaskForm(t *testing.T) {
	err := ValidateTaskForm(domain.TaskInput{Title: "  "})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if !slices.Equal(verr.Fields, []string{"titulo", "categoria"}) || verr.Error() != requiredFieldsMessage {
		t.Fatalf("unexpected validation error %#v", verr)
	}
	if err := ValidateTaskForm(domain.TaskInput{Title: "Deploy", Category: "Dev"}); err != nil {
		t.Fatalf("ValidateTaskForm() error = %v", err)
	}
}

func TestValidateAppointmentForm(t *testing.T) {
	valid := domain.AppointmentInput{Title: "Daily", Date: "2026-03-10", StartTime: "08:00", EndTime: "09:00"}
	if err := ValidateAppointmentForm(valid); err != nil {
		t.Fatalf("ValidateAppointmentForm() error = %v", err)
	}

	missing := ValidateAppointmentForm(domain.AppointmentInput{Title: "Daily"})
	var verr *ValidationError
	if !errors.As(missing, &verr) || !slices.Equal(verr.Fields, []string{"data", "horario_inicio", "horario_fim"}) {
		t.Fatalf("unexpected missing-field error %#v", missing)
	}

	backwards := valid
	backwards.StartTime, backwards.EndTime = "09:00", "08:59"
	err := ValidateAppointmentForm(backwards)
	if !IsValidationError(err) || err.Error() != invalidRangeMessage {
		t.Fatalf("expected range error, got %v", err)
	}

	equal := valid
	equal.EndTime = equal.StartTime
	if err := ValidateAppointmentForm(equal); !IsValidationError(err) {
		t.Fatalf("expected equal times to fail, got %v", err)
	}

	wrapped := fmt.Errorf("save: %w", err)
	if !IsValidationError(wrapped) || IsValidationError(errors.New("http 500")) {
		t.Fatal("unexpected IsValidationError results")
	}
}

func TestTimeRangeCases(t *testing.T) {
	cases := []struct {
		start, end string
		want       bool
	}{
		{"09:00", "08:59", false},
		{"08:00", "09:00", true},
		{"08:00", "08:00", false},
		{"23:00", "00:30", false},
		{"8:00", "8:01", true},
		{"", "09:00", false},
	}
	for _, tc := range cases {
		if got := domain.IsValidTimeRange(tc.start, tc.end); got != tc.want {
			t.Fatalf("IsValidTimeRange(%q, %q) = %v, want %v", tc.start, tc.end, got, tc.want)
		}
	}
}

func TestNotifierExpiry(t *testing.T) {
	start := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	n := NewNotifier(0)
	if n.TTL() != DefaultNoticeTTL {
		t.Fatalf("expected default ttl, got %s", n.TTL())
	}
	first := n.Push(NoticeSuccess, "Salvo com sucesso!", start)
	second := n.Push(NoticeError, "Erro ao carregar dados.", start.Add(time.Second))
	if first.ID == second.ID {
		t.Fatal("expected distinct notice ids")
	}

	if active := n.Active(start.Add(2 * time.Second)); len(active) != 2 {
		t.Fatalf("expected 2 active notices, got %d", len(active))
	}
	latest, ok := n.Latest(start.Add(2 * time.Second))
	if !ok || latest.ID != second.ID || latest.Level.String() != "error" {
		t.Fatalf("Latest() = %#v, %v", latest, ok)
	}

	if removed := n.Expire(start.Add(DefaultNoticeTTL)); removed != 1 {
		t.Fatalf("expected one expired notice, got %d", removed)
	}
	n.Dismiss(second.ID)
	if _, ok := n.Latest(start); ok {
		t.Fatal("expected no notices after dismiss")
	}
}
