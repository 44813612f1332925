package service

import "errors"

// Failure taxonomy surfaced to the gateway. Callers match with errors.Is;
// every wrapped message carries the ids and values that explain the
// rejection without exposing other users' data.
var (
	ErrNotFound          = errors.New("not found")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrConflict          = errors.New("conflict")
	ErrUnavailable       = errors.New("unavailable")
)
