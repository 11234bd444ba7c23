package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrForbidden       = errors.New("forbidden")
	ErrBadRequest      = errors.New("bad request")
	ErrTooManyRequests = errors.New("too many requests")
)

// Game protocol violations. Both wrap ErrBadRequest.
var (
	ErrAlreadyResponded = fmt.Errorf("you have already responded to this game: %w", ErrBadRequest)
	ErrSessionCompleted = fmt.Errorf("game session already completed: %w", ErrBadRequest)
)
