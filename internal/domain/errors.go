package domain

import "errors"

var (
	ErrInvalidID        = errors.New("invalid id")
	ErrInvalidTitle     = errors.New("invalid title")
	ErrInvalidCategory  = errors.New("invalid category")
	ErrInvalidPriority  = errors.New("invalid priority")
	ErrInvalidStatus    = errors.New("invalid status")
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidTime      = errors.New("invalid time")
	ErrInvalidTimeRange = errors.New("invalid time range")
)

// validationErrors lists every sentinel reported for rejected user input.
var validationErrors = []error{
	ErrInvalidID,
	ErrInvalidTitle,
	ErrInvalidCategory,
	ErrInvalidPriority,
	ErrInvalidStatus,
	ErrInvalidDate,
	ErrInvalidTime,
	ErrInvalidTimeRange,
}

// IsValidationError reports whether err wraps one of the input validation sentinels.
func IsValidationError(err error) bool {
	if err == nil {
		return false
	}
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// ValidationMessages flattens a joined validation error into one message per problem.
func ValidationMessages(err error) []string {
	if err == nil {
		return nil
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		out := make([]string, 0, len(joined.Unwrap()))
		for _, inner := range joined.Unwrap() {
			out = append(out, ValidationMessages(inner)...)
		}
		return out
	}
	return []string{err.Error()}
}
