package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"session-service/internal/model"
)

var (
	ErrValidation             = errors.New("validation failed")
	ErrSessionNotFound        = errors.New("session not found")
	ErrAlreadyReserved        = errors.New("session is already booked")
	ErrConcurrentModification = errors.New("session was modified concurrently")
	ErrSchedulingConflict     = errors.New("session overlaps an existing session")
	ErrForbidden              = errors.New("forbidden")
	ErrProfileNotFound        = errors.New("user profile not found")
)

// ValidationError maps offending fields to a human readable reason.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return fmt.Sprintf("%s: %s", ErrValidation, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func invalidField(field, reason string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: reason}}
}

// SchedulingConflictError carries the existing session the candidate collides with.
type SchedulingConflictError struct {
	Conflicting *model.Session
}

func (e *SchedulingConflictError) Error() string {
	return fmt.Sprintf("%s: %s at %s", ErrSchedulingConflict, e.Conflicting.DateKey(), e.Conflicting.Time)
}

func (e *SchedulingConflictError) Unwrap() error { return ErrSchedulingConflict }
