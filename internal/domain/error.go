package domain

import (
	"errors"
	"fmt"
	"strings"

	"network-registry/internal/pkg/apperrors"
)

// ValidationError reports a single field that violates a Network invariant.
type ValidationError struct {
	Field  string
	Reason string
}

// NewValidationError creates a ValidationError for the given field.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Reason
}

func (e *ValidationError) Unwrap() error {
	return apperrors.ErrInvalidInput
}

// ValidationErrors collects every failing field of a candidate field set.
type ValidationErrors []*ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, ve := range e {
		msgs[i] = ve.Error()
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func (e ValidationErrors) Unwrap() []error {
	errs := make([]error, len(e))
	for i, ve := range e {
		errs[i] = ve
	}
	return errs
}

// OrNil returns nil for an empty set so callers can return it directly as an error.
func (e ValidationErrors) OrNil() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// NotFoundError means the requested network does not exist.
type NotFoundError struct {
	Resource string
	ID       string
}

// NewNotFoundError creates a NotFoundError for a network id.
func NewNotFoundError(id string) *NotFoundError {
	return &NotFoundError{Resource: "network", ID: id}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with id '%s' not found", e.Resource, e.ID)
}

func (e *NotFoundError) Unwrap() error {
	return apperrors.ErrNotFound
}

// ConflictError means the request collides with existing state, e.g. a duplicate chain id.
type ConflictError struct {
	Reason string
}

// NewConflictError creates a ConflictError.
func NewConflictError(reason string) *ConflictError {
	return &ConflictError{Reason: reason}
}

// NewChainIDConflictError creates the ConflictError reported for a duplicate chain id.
func NewChainIDConflictError(chainID int64) *ConflictError {
	return NewConflictError(fmt.Sprintf("chain_id %d already exists", chainID))
}

func (e *ConflictError) Error() string {
	return "conflict: " + e.Reason
}

func (e *ConflictError) Unwrap() error {
	return apperrors.ErrConflict
}

// StorageError wraps a lower-layer fault. Callers outside the process only ever see its kind.
type StorageError struct {
	Op  string
	Err error
}

// NewStorageError wraps err as a StorageError raised during op.
func NewStorageError(op string, err error) *StorageError {
	return &StorageError{Op: op, Err: err}
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() []error {
	return []error{apperrors.ErrStorage, e.Err}
}

// NewUnauthorizedError reports a rejected credential.
func NewUnauthorizedError(reason string) error {
	return fmt.Errorf("%w: %s", apperrors.ErrUnauthorized, reason)
}

// IsNotFound reports whether err is a not-found error of any layer.
func IsNotFound(err error) bool {
	return errors.Is(err, apperrors.ErrNotFound)
}
