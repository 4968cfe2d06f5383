// Package domain contains the catalog entities, their content rules and errors.
//
// Errors here describe catalog failures in catalog terms. Adapters decide
// how each one is rendered: an HTTP status and error code, or a CLI exit.
package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Sentinels matched with errors.Is. Every typed error below unwraps to one.
var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrValidation  = errors.New("validation failed")
	ErrForbidden   = errors.New("forbidden")
	ErrUnavailable = errors.New("unavailable")

	// ErrEmptyCollection: a random pick or daily selection found nothing to pick from.
	ErrEmptyCollection = errors.New("empty collection")

	// ErrInvalidReference: a write named an author or topic that does not exist.
	ErrInvalidReference = errors.New("invalid reference")

	// ErrInvalidSortKey: the requested ordering is not one the engine knows.
	ErrInvalidSortKey = errors.New("invalid sort key")
)

// NotFoundError names the missing entity and, when known, its id.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return e.Entity + " not found"
	}

	return fmt.Sprintf("%s with id %q not found", e.Entity, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// NewNotFoundError reports that entity id does not exist.
func NewNotFoundError(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// ConflictError is a write that clashes with current state, such as a
// duplicate name or a restore into a non-empty store.
type ConflictError struct {
	Entity  string
	Reason  string
	Details string
}

func (e *ConflictError) Error() string {
	msg := e.Entity + " conflict: " + e.Reason
	if e.Details != "" {
		msg += " (" + e.Details + ")"
	}

	return msg
}

func (e *ConflictError) Unwrap() error { return ErrConflict }

// NewConflictError reports a conflict on entity.
func NewConflictError(entity, reason string) error {
	return &ConflictError{Entity: entity, Reason: reason}
}

// NewConflictErrorWithDetails adds details, typically the clashing record.
func NewConflictErrorWithDetails(entity, reason, details string) error {
	return &ConflictError{Entity: entity, Reason: reason, Details: details}
}

// ValidationError is a content rule a field broke. Value, when set, is the
// rejected input.
type ValidationError struct {
	Field   string
	Message string
	Value   any
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Message
	}

	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError reports that field broke a rule.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NewValidationErrorWithValue also records the rejected value.
func NewValidationErrorWithValue(field, message string, value any) error {
	return &ValidationError{Field: field, Message: message, Value: value}
}

// ForbiddenError is an operation the caller may not perform.
type ForbiddenError struct {
	Operation string
	Reason    string
}

func (e *ForbiddenError) Error() string {
	msg := fmt.Sprintf("operation %q forbidden", e.Operation)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}

	return msg
}

func (e *ForbiddenError) Unwrap() error { return ErrForbidden }

// NewForbiddenError reports that operation was refused.
func NewForbiddenError(operation, reason string) error {
	return &ForbiddenError{Operation: operation, Reason: reason}
}

// UnavailableError is a dependency, the store or the share webhook, that
// could not serve the call.
type UnavailableError struct {
	Service string
	Reason  string
}

func (e *UnavailableError) Error() string {
	msg := fmt.Sprintf("service %q unavailable", e.Service)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}

	return msg
}

func (e *UnavailableError) Unwrap() error { return ErrUnavailable }

// NewUnavailableError reports that service is unavailable.
func NewUnavailableError(service, reason string) error {
	return &UnavailableError{Service: service, Reason: reason}
}

// EmptyCollectionError names the collection that had nothing to pick.
type EmptyCollectionError struct {
	Entity string
}

func (e *EmptyCollectionError) Error() string { return "no " + e.Entity + " available" }

func (e *EmptyCollectionError) Unwrap() error { return ErrEmptyCollection }

// NewEmptyCollectionError reports that entity has no members.
func NewEmptyCollectionError(entity string) error {
	return &EmptyCollectionError{Entity: entity}
}

// InvalidReferenceError is a quote whose Field points at a missing Entity.
type InvalidReferenceError struct {
	Field  string
	Entity string
	ID     string
}

func (e *InvalidReferenceError) Error() string {
	return fmt.Sprintf("%s references unknown %s %q", e.Field, e.Entity, e.ID)
}

func (e *InvalidReferenceError) Unwrap() error { return ErrInvalidReference }

// NewInvalidReferenceError reports that field names entity id, which does not exist.
func NewInvalidReferenceError(field, entity, id string) error {
	return &InvalidReferenceError{Field: field, Entity: entity, ID: id}
}

// InvalidSortKeyError carries the rejected key and the keys accepted instead.
type InvalidSortKeyError struct {
	Key     string
	Allowed []string
}

func (e *InvalidSortKeyError) Error() string {
	msg := fmt.Sprintf("invalid sort key %q", e.Key)
	if len(e.Allowed) > 0 {
		msg += ": must be one of " + strings.Join(e.Allowed, ", ")
	}

	return msg
}

func (e *InvalidSortKeyError) Unwrap() error { return ErrInvalidSortKey }

// NewInvalidSortKeyError reports key as unknown, listing allowed.
func NewInvalidSortKeyError(key string, allowed ...string) error {
	return &InvalidSortKeyError{Key: key, Allowed: allowed}
}

// Shorthands for errors.Is against each sentinel.
func IsNotFound(err error) bool         { return errors.Is(err, ErrNotFound) }
func IsConflict(err error) bool         { return errors.Is(err, ErrConflict) }
func IsValidation(err error) bool       { return errors.Is(err, ErrValidation) }
func IsForbidden(err error) bool        { return errors.Is(err, ErrForbidden) }
func IsUnavailable(err error) bool      { return errors.Is(err, ErrUnavailable) }
func IsEmptyCollection(err error) bool  { return errors.Is(err, ErrEmptyCollection) }
func IsInvalidReference(err error) bool { return errors.Is(err, ErrInvalidReference) }
func IsInvalidSortKey(err error) bool   { return errors.Is(err, ErrInvalidSortKey) }

// FormatID renders a numeric id the way error context carries it.
func FormatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
