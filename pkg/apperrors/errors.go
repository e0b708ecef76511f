// Package apperrors defines the error taxonomy for entrestate-engine.
//
// Validation errors are caller-input faults and are never retried.
// Entitlement errors mean the spec is structurally valid but not
// permitted for the caller's tier, so UIs can offer an upgrade path
// instead of "fix your query". Unavailable errors are transient
// upstream faults; retry policy belongs to the caller.
package apperrors

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound             = errors.New("not found")
	ErrUnknownGoldenPath    = errors.New("unknown golden path")
	ErrEmptyCompileInput    = errors.New("compile input requires an intent or a golden path")
	ErrEntitlementViolation = errors.New("entitlement_violation")
)

// Validation error codes surfaced verbatim to callers.
const (
	CodeEmptySignalSet     = "empty_signal_set"
	CodeSignalNotAllowed   = "signal_not_allowed"
	CodeFieldNotAllowed    = "field_not_allowed"
	CodeOperatorNotAllowed = "operator_not_allowed"
	CodeInvalidRowGrain    = "invalid_row_grain"
)

// ValidationError carries the collected error strings from a failed
// TableSpec validation.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return "invalid table spec: " + strings.Join(e.Errors, "; ")
}

// NewValidationError creates a ValidationError from collected codes.
func NewValidationError(errs []string) *ValidationError {
	return &ValidationError{Errors: errs}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// EntitlementError means enforcement would leave the spec unusable for
// the caller's tier.
type EntitlementError struct {
	Tier   string
	Reason string
}

func (e *EntitlementError) Error() string {
	return fmt.Sprintf("entitlement_violation: tier=%s %s", e.Tier, e.Reason)
}

func (e *EntitlementError) Unwrap() error {
	return ErrEntitlementViolation
}

// IsEntitlement reports whether err is (or wraps) an EntitlementError.
func IsEntitlement(err error) bool {
	var ee *EntitlementError
	return errors.As(err, &ee) || errors.Is(err, ErrEntitlementViolation)
}

// UnavailableError is a transient upstream fault (inventory datasource
// timeout or unreachable). The core does not retry; callers surface a
// retryable "service unavailable".
type UnavailableError struct {
	Upstream string
	Cause    error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("%s unavailable: %v", e.Upstream, e.Cause)
}

func (e *UnavailableError) Unwrap() error {
	return e.Cause
}

// Unavailable wraps a transient upstream error.
func Unavailable(upstream string, cause error) *UnavailableError {
	return &UnavailableError{Upstream: upstream, Cause: cause}
}

// IsUnavailable reports whether err is (or wraps) an UnavailableError.
func IsUnavailable(err error) bool {
	var ue *UnavailableError
	return errors.As(err, &ue)
}
