// Package apperr defines the error kinds raised by the request-lifecycle core.
//
// All of them are policy violations, never transient failures: callers map them
// to a rejected request with a message and do not retry.
package apperr

import (
	"errors"
	"fmt"
)

// InvalidTransitionError means the requested status change is not legal from the current status.
type InvalidTransitionError struct {
	From string
	To   string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("%s is not a valid status to change to from %s", e.To, e.From)
}

// PermissionError means the actor lacks the capability the operation requires.
type PermissionError struct {
	Message string
}

func (e *PermissionError) Error() string { return e.Message }

// RequestStatusError means a mutation was attempted while the request is in the wrong status.
type RequestStatusError struct {
	Message string
}

func (e *RequestStatusError) Error() string { return e.Message }

// AlreadyVoidedError means a modifier was voided before.
type AlreadyVoidedError struct {
	ModifierID string
}

func (e *AlreadyVoidedError) Error() string {
	return fmt.Sprintf("modifier %s is already void", e.ModifierID)
}

// NotFoundError means an id did not resolve to anything.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// ValidationError means the input itself is malformed.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// InvalidFilterKeyError means a field name is unknown, or not usable for the requested purpose.
type InvalidFilterKeyError struct {
	Key    string
	Reason string
}

func (e *InvalidFilterKeyError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("'%s' is not a valid filter attribute: %s", e.Key, e.Reason)
	}
	return fmt.Sprintf("'%s' is not a valid filter attribute", e.Key)
}

// InvalidFilterValueError means a value cannot be used for a field.
type InvalidFilterValueError struct {
	Key   string
	Value any
}

func (e *InvalidFilterValueError) Error() string {
	return fmt.Sprintf("value '%v' is not valid for attribute '%s'", e.Value, e.Key)
}

// InvalidFilterPredicateError means a predicate cannot be used for a field.
type InvalidFilterPredicateError struct {
	Key       string
	Predicate string
}

func (e *InvalidFilterPredicateError) Error() string {
	return fmt.Sprintf("predicate '%s' is not valid for attribute '%s'", e.Predicate, e.Key)
}

// ErrPermission creates a PermissionError with a formatted message.
func ErrPermission(format string, args ...any) *PermissionError {
	return &PermissionError{Message: fmt.Sprintf(format, args...)}
}

// ErrRequestStatus creates a RequestStatusError with a formatted message.
func ErrRequestStatus(format string, args ...any) *RequestStatusError {
	return &RequestStatusError{Message: fmt.Sprintf(format, args...)}
}

// ErrNotFound creates a NotFoundError with a formatted message.
func ErrNotFound(format string, args ...any) *NotFoundError {
	return &NotFoundError{Message: fmt.Sprintf(format, args...)}
}

// ErrValidation creates a ValidationError with a formatted message.
func ErrValidation(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// Is lets errors.Is match any error of the same kind, e.g. errors.Is(err, &NotFoundError{}).
func (e *InvalidTransitionError) Is(target error) bool {
	_, ok := target.(*InvalidTransitionError)
	return ok
}

func (e *PermissionError) Is(target error) bool {
	_, ok := target.(*PermissionError)
	return ok
}

func (e *RequestStatusError) Is(target error) bool {
	_, ok := target.(*RequestStatusError)
	return ok
}

func (e *AlreadyVoidedError) Is(target error) bool {
	_, ok := target.(*AlreadyVoidedError)
	return ok
}

func (e *NotFoundError) Is(target error) bool {
	_, ok := target.(*NotFoundError)
	return ok
}

func (e *ValidationError) Is(target error) bool {
	_, ok := target.(*ValidationError)
	return ok
}

// Kind classifies err for metrics labels and transport mapping.
// It returns "" for errors outside the taxonomy.
func Kind(err error) string {
	var (
		transition *InvalidTransitionError
		permission *PermissionError
		status     *RequestStatusError
		voided     *AlreadyVoidedError
		notFound   *NotFoundError
		validation *ValidationError
		key        *InvalidFilterKeyError
		value      *InvalidFilterValueError
		predicate  *InvalidFilterPredicateError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &transition):
		return "invalid_transition"
	case errors.As(err, &permission):
		return "permission"
	case errors.As(err, &status):
		return "request_status"
	case errors.As(err, &voided):
		return "already_voided"
	case errors.As(err, &notFound):
		return "not_found"
	case errors.As(err, &validation):
		return "validation"
	case errors.As(err, &key), errors.As(err, &value), errors.As(err, &predicate):
		return "invalid_filter"
	}
	return ""
}
