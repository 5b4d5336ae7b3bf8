package domain

import "errors"

var (
	ErrInvalidID        = errors.New("invalid id")
	ErrInvalidName      = errors.New("invalid name")
	ErrInvalidDocType   = errors.New("invalid document type")
	ErrInvalidStateType = errors.New("invalid state type")
	ErrInvalidState     = errors.New("invalid state")
	ErrInvalidEventType = errors.New("invalid event type")
	ErrInvalidRole      = errors.New("invalid role")
)
