package viewstate

import (
	"errors"
	"strings"

	"github.com/evanschultz/agenda/internal/domain"
)

// requiredFieldsMessage is the notice shown when a form misses required fields.
const requiredFieldsMessage = "Preencha os campos obrigatórios."

// invalidRangeMessage is the notice shown when an appointment ends before it starts.
const invalidRangeMessage = "O horário de término deve ser posterior ao horário de início."

// ValidationError is a local form failure raised before any backend call.
type ValidationError struct {
	Message string
	Fields  []string
}

// Error returns the user-facing message.
func (e *ValidationError) Error() string {
	return e.Message
}

// IsValidationError reports whether err is a local form failure.
func IsValidationError(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// ValidateTaskForm requires a title and a category.
func ValidateTaskForm(in domain.TaskInput) error {
	var missing []string
	if strings.TrimSpace(in.Title) == "" {
		missing = append(missing, "titulo")
	}
	if strings.TrimSpace(in.Category) == "" {
		missing = append(missing, "categoria")
	}
	if len(missing) > 0 {
		return &ValidationError{Message: requiredFieldsMessage, Fields: missing}
	}
	return nil
}

// ValidateAppointmentForm requires title, date, start, and end, with end after start.
func ValidateAppointmentForm(in domain.AppointmentInput) error {
	var missing []string
	if strings.TrimSpace(in.Title) == "" {
		missing = append(missing, "titulo")
	}
	if strings.TrimSpace(in.Date) == "" {
		missing = append(missing, "data")
	}
	if strings.TrimSpace(in.StartTime) == "" {
		missing = append(missing, "horario_inicio")
	}
	if strings.TrimSpace(in.EndTime) == "" {
		missing = append(missing, "horario_fim")
	}
	if len(missing) > 0 {
		return &ValidationError{Message: requiredFieldsMessage, Fields: missing}
	}
	if !domain.IsValidTimeRange(in.StartTime, in.EndTime) {
		return &ValidationError{Message: invalidRangeMessage, Fields: []string{"horario_inicio", "horario_fim"}}
	}
	return nil
}
