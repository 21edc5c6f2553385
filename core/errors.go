package core

import (
	"errors"
	"fmt"
)

var (
	// ErrProvider indicates the embedding or completion backend was
	// unreachable or rejected the request.
	ErrProvider = errors.New("provider request failed")
	// ErrAllowlist indicates a tool target outside the configured scope.
	ErrAllowlist = errors.New("blocked by allowlist")
	// ErrValidation indicates a missing or malformed request field.
	ErrValidation = errors.New("invalid request")
	// ErrToolNotFound indicates an unknown tool name.
	ErrToolNotFound = errors.New("tool not found")
	// ErrMissingCredential indicates the backing provider credential is
	// absent, making any provider call meaningless.
	ErrMissingCredential = errors.New("missing API credential")
)

// OpError annotates an error with the operation that produced it.
type OpError struct {
	Op  string
	Err error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *OpError) Unwrap() error {
	return e.Err
}

func NewOpError(op string, err error) *OpError {
	return &OpError{Op: op, Err: err}
}
