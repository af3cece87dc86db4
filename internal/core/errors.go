package core

import (
	"errors"
	"fmt"
)

// ErrKind classifies every failure the service can return to a caller.
type ErrKind string

const (
	// ErrValidation marks a malformed request, caught before any downstream call.
	ErrValidation ErrKind = "validation"
	// ErrNotFound marks an unknown job/batch id or an absent PR/repository.
	ErrNotFound ErrKind = "not_found"
	// ErrUnauthorized marks an authentication or permission failure upstream.
	ErrUnauthorized ErrKind = "unauthorized"
	// ErrRateLimited marks an upstream rate-limit rejection.
	ErrRateLimited ErrKind = "rate_limited"
	// ErrUpstreamFailure marks an engine-side error not otherwise classified.
	ErrUpstreamFailure ErrKind = "upstream_failure"
	// ErrTimeout marks an analysis call that exceeded its deadline.
	ErrTimeout ErrKind = "timeout"
	// ErrInvalidTarget marks a target the engine could not interpret.
	ErrInvalidTarget ErrKind = "invalid_target"
	// ErrSchedulingFailure marks a job that could not be handed to a worker.
	ErrSchedulingFailure ErrKind = "scheduling_failure"
	// ErrInvalidTransition marks a job state update that violates the
	// Queued->Running->terminal order. It indicates a caller bug and is
	// never expected in normal operation.
	ErrInvalidTransition ErrKind = "invalid_transition"
)

// Error is the typed error returned across the dispatch and job layers.
type Error struct {
	Kind    ErrKind `json:"kind"`
	Message string  `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Errf builds a typed Error with a formatted message.
func Errf(kind ErrKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// AsError unwraps err into a *core.Error. Errors produced outside this
// module (raw transport failures, context cancellation) are folded into
// an UpstreamFailure so callers always see a classified kind.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var ce *Error
	if errors.As(err, &ce) {
		return ce
	}
	return &Error{Kind: ErrUpstreamFailure, Message: err.Error()}
}

// IsKind reports whether err is a *core.Error of the given kind.
func IsKind(err error, kind ErrKind) bool {
	var ce *Error
	return errors.As(err, &ce) && ce.Kind == kind
}
