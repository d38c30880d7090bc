package chatql

import (
	"errors"
	"fmt"
)

// Standard sentinel errors for common operations.
var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("chatql: entity not found")

	// ErrInvalidArgument is returned when a caller-supplied argument is
	// rejected before any I/O is performed.
	ErrInvalidArgument = errors.New("chatql: invalid argument")

	// ErrScopeClosed is returned when a load is attempted against a scope
	// that has already been torn down.
	ErrScopeClosed = errors.New("chatql: scope closed")

	// ErrNoScope is returned when a scoped operation is attempted on a
	// context that has no scope attached.
	ErrNoScope = errors.New("chatql: no scope attached to context")
)

// NotFoundError represents an error when an entity is not found.
type NotFoundError struct {
	label string
	id    any // Optional: the ID that was searched for
}

// Error returns the error string.
func (e *NotFoundError) Error() string {
	if e.id != nil {
		return fmt.Sprintf("chatql: %s not found (id=%v)", e.label, e.id)
	}
	return fmt.Sprintf("chatql: %s not found", e.label)
}

// Is reports whether the target error matches NotFoundError.
// This allows errors.Is(notFoundErr, ErrNotFound) to return true.
func (e *NotFoundError) Is(err error) bool {
	return err == ErrNotFound
}

// Label returns the entity label.
func (e *NotFoundError) Label() string {
	return e.label
}

// ID returns the ID that was searched for, if available.
func (e *NotFoundError) ID() any {
	return e.id
}

// NewNotFoundError returns a new NotFoundError for the given entity type.
func NewNotFoundError(label string) *NotFoundError {
	return &NotFoundError{label: label}
}

// NewNotFoundErrorWithID returns a new NotFoundError with the ID that was searched for.
func NewNotFoundErrorWithID(label string, id any) *NotFoundError {
	return &NotFoundError{label: label, id: id}
}

// IsNotFound returns true if the error is a NotFoundError.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	var e *NotFoundError
	return errors.As(err, &e) || errors.Is(err, ErrNotFound)
}

// EncodingError represents a failure to derive a cache key from a request,
// usually because one of its parameters is not serializable.
type EncodingError struct {
	Reason string // Description of the offending input
	Err    error  // Underlying serialization error, if any
}

// Error returns the error string.
func (e *EncodingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("chatql: encoding key: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("chatql: encoding key: %s", e.Reason)
}

// Unwrap returns the underlying error.
func (e *EncodingError) Unwrap() error {
	return e.Err
}

// NewEncodingError returns a new EncodingError with the given reason.
func NewEncodingError(reason string, err error) *EncodingError {
	return &EncodingError{Reason: reason, Err: err}
}

// IsEncodingError returns true if the error is an EncodingError.
func IsEncodingError(err error) bool {
	if err == nil {
		return false
	}
	var e *EncodingError
	return errors.As(err, &e)
}

// FetchError wraps an underlying store failure. Within one scope, every
// caller waiting on the failed key receives the same FetchError; the load
// path never retries on its own.
type FetchError struct {
	Kind string // Loader kind or statement family that failed
	Err  error  // Underlying store error
}

// Error returns the error string.
func (e *FetchError) Error() string {
	if e.Kind != "" {
		return fmt.Sprintf("chatql: fetching %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("chatql: fetch: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// NewFetchError returns a new FetchError.
func NewFetchError(kind string, err error) *FetchError {
	return &FetchError{Kind: kind, Err: err}
}

// IsFetchError returns true if the error is a FetchError.
func IsFetchError(err error) bool {
	if err == nil {
		return false
	}
	var e *FetchError
	return errors.As(err, &e)
}

// InvalidArgumentError reports a caller-supplied argument that was rejected
// before any I/O was performed.
type InvalidArgumentError struct {
	Name   string // Argument name
	Reason string // Why it was rejected
}

// Error returns the error string.
func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("chatql: invalid argument %q: %s", e.Name, e.Reason)
}

// Is reports whether the target error matches InvalidArgumentError.
func (e *InvalidArgumentError) Is(err error) bool {
	return err == ErrInvalidArgument
}

// NewInvalidArgumentError returns a new InvalidArgumentError.
func NewInvalidArgumentError(name, reason string) *InvalidArgumentError {
	return &InvalidArgumentError{Name: name, Reason: reason}
}

// IsInvalidArgument returns true if the error is an InvalidArgumentError.
func IsInvalidArgument(err error) bool {
	if err == nil {
		return false
	}
	var e *InvalidArgumentError
	return errors.As(err, &e) || errors.Is(err, ErrInvalidArgument)
}
