// Package apperr defines the machine-readable error taxonomy shared by
// services and handlers. Every failure a caller can observe carries a
// Kind plus a human-readable message; handlers map kinds to HTTP status
// codes in one place.
package apperr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	// KindValidation is malformed caller input. Never retried.
	KindValidation Kind = "validation"
	// KindNotFound is a missing organization/member/claim.
	KindNotFound Kind = "not_found"
	// KindConflict is a duplicate organization/member/claim.
	KindConflict Kind = "conflict"
	// KindExternal is an unreachable or timed-out external service.
	// Retryable by the caller with backoff.
	KindExternal Kind = "external_service"
	// KindOnChainRejection is a transaction confirmed as failed. Not
	// retryable without changing inputs.
	KindOnChainRejection Kind = "onchain_rejection"
	// KindClaimExpired means the commit-reveal window ceiling passed;
	// the caller must start a new claim.
	KindClaimExpired Kind = "claim_expired"
	KindInternal     Kind = "internal"
)

type Error struct {
	Kind    Kind
	Message string
	// Step annotates where in a multi-step flow the failure occurred
	// (e.g. the claim state or payroll step). Optional.
	Step string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Step != "" {
		msg = fmt.Sprintf("%s [%s]", msg, e.Step)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is match on another *Error with the same kind.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return t.Kind == e.Kind
	}
	return false
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// At returns a copy annotated with the step at which the error occurred.
func (e *Error) At(step string) *Error {
	cp := *e
	cp.Step = step
	return &cp
}

// KindOf extracts the Kind from any error chain, defaulting to internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// Retryable reports whether the caller may retry the operation as-is.
// Only external-service failures (timeouts, unreachable services) are;
// a confirmed on-chain rejection needs changed inputs, and everything
// else is the caller's fault or terminal.
func Retryable(err error) bool {
	return KindOf(err) == KindExternal
}
