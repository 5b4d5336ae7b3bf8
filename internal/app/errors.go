package app

import "errors"

// ErrNotFound and related errors describe validation and runtime failures.
var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidSearch = errors.New("invalid search")
	ErrInvalidDays   = errors.New("invalid day count")
)
