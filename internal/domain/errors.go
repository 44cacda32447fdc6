package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidInput = errors.New("invalid input")
	ErrUserNotFound = errors.New("user not found")

	// ErrSelfInvite is returned when an event owner tries to invite themselves.
	ErrSelfInvite = errors.New("You can not invite yourself")

	// ErrDuplicateInvite is returned when the invitee already has an
	// invitation on the event.
	ErrDuplicateInvite = errors.New("has already been invited")

	// ErrLookupFailed wraps failures resolving an invitee against the
	// external network.
	ErrLookupFailed = errors.New("invitee lookup failed")
)

// ValidationError carries per-field validation messages.
type ValidationError struct {
	Fields map[string][]string `json:"fields"`
}

func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string][]string)}
}

func (e *ValidationError) Add(field, message string) {
	e.Fields[field] = append(e.Fields[field], message)
}

func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	var parts []string
	for _, f := range fields {
		for _, msg := range e.Fields[f] {
			parts = append(parts, fmt.Sprintf("%s: %s", f, msg))
		}
	}
	return strings.Join(parts, "; ")
}
