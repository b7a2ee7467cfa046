package app

import "errors"

// ErrNotFound and related errors describe lookup and request failures.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidMonth = errors.New("invalid month")
)
