package oddstypes

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failure per the error-handling design: each kind
// carries its own propagation policy (fatal to the cycle, fatal to one
// sport, soft-fail, etc.) enforced by the caller, not by this type.
type ErrorKind string

const (
	KindInvalidInput     ErrorKind = "INVALID_INPUT"
	KindAuthError        ErrorKind = "AUTH_ERROR"
	KindRateLimited      ErrorKind = "RATE_LIMITED"
	KindUpstreamError    ErrorKind = "UPSTREAM_ERROR"
	KindCreditExhausted  ErrorKind = "CREDIT_EXHAUSTED"
	KindPersistenceError ErrorKind = "PERSISTENCE_ERROR"
	KindBudgetViolation  ErrorKind = "BUDGET_VIOLATION"
	KindNotImplemented   ErrorKind = "NOT_IMPLEMENTED"
)

// DomainError is the typed error carried across component boundaries.
type DomainError struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Cause
}

func newErr(kind ErrorKind, msg string, cause error) *DomainError {
	return &DomainError{Kind: kind, Message: msg, Cause: cause}
}

func NewInvalidInput(msg string) *DomainError { return newErr(KindInvalidInput, msg, nil) }
func NewAuthError(msg string, cause error) *DomainError {
	return newErr(KindAuthError, msg, cause)
}
func NewRateLimited(msg string, cause error) *DomainError {
	return newErr(KindRateLimited, msg, cause)
}
func NewUpstreamError(msg string, cause error) *DomainError {
	return newErr(KindUpstreamError, msg, cause)
}
func NewCreditExhausted(msg string) *DomainError {
	return newErr(KindCreditExhausted, msg, nil)
}
func NewPersistenceError(msg string, cause error) *DomainError {
	return newErr(KindPersistenceError, msg, cause)
}
func NewBudgetViolation(msg string) *DomainError {
	return newErr(KindBudgetViolation, msg, nil)
}
func NewNotImplemented(msg string) *DomainError {
	return newErr(KindNotImplemented, msg, nil)
}

// IsKind reports whether err (or something it wraps) is a DomainError of
// the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var de *DomainError
	if !errors.As(err, &de) {
		return false
	}
	return de.Kind == kind
}
