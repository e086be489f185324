package service

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyTopic rejects a generation request before any outbound call.
	ErrEmptyTopic = &ValidationError{Field: "topic"}
	// ErrWorkflowBusy is returned when a workflow is submitted to while a
	// previous submission is still generating or validating.
	ErrWorkflowBusy = errors.New("generation already in progress")

	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrEmailAlreadyRegistered = errors.New("email already registered")
	ErrForbidden              = errors.New("not allowed to modify this resource")

	// ErrSlugTaken is returned when a requested blog slug is already in use.
	ErrSlugTaken = errors.New("slug already in use")
)

// TransportError means the call to the generation provider failed at the
// network or remote-service level.
type TransportError struct {
	Provider string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("generation failed (%s): %v", e.Provider, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ParseError means the model output was not well-formed JSON of the expected shape.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("model output is not a valid document: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ValidationError names the first required field that is missing or empty.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required field %q", e.Field)
}

type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// StoreError means the persistence layer was unreachable or rejected the write.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// ErrorKind classifies a generation failure for reporting on a job.
func ErrorKind(err error) string {
	var (
		transportErr  *TransportError
		parseErr      *ParseError
		validationErr *ValidationError
		storeErr      *StoreError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &transportErr):
		return "transport"
	case errors.As(err, &parseErr):
		return "parse"
	case errors.As(err, &validationErr):
		return "validation"
	case errors.As(err, &storeErr):
		return "store"
	default:
		return "internal"
	}
}
