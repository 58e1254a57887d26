package core

import (
	"fmt"

	"github.com/pkg/errors"
)

// FieldError attaches a message to one struct field of a failed request.
type FieldError struct {
	Field string
	Error string
}

// ValidationError carries request validation failures to the transport layer,
// either as a bare message or broken down per field.
type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

// notFound backs the per-package ErrNotFound sentinels (user, child, therapy
// session, assessment, document) so handlers can map them all to a 404
// without enumerating every domain.
type notFound struct {
	resource string
}

func NotFoundError(resource string) error {
	return &notFound{resource: resource}
}

func (e notFound) Error() string {
	return fmt.Sprintf("%s not found", e.resource)
}

func IsNotFound(err error) bool {
	_, ok := errors.Cause(err).(*notFound)
	return ok
}

// permissionDenied is the sentinel shape behind ownership-gated mutations.
// A record owned by someone else and a record whose owner could not be
// resolved both surface this error; callers cannot tell them apart.
type permissionDenied struct{}

func PermissionDeniedError() error {
	return &permissionDenied{}
}

func (permissionDenied) Error() string {
	return "permission denied"
}

func IsPermissionDenied(err error) bool {
	_, ok := errors.Cause(err).(*permissionDenied)
	return ok
}

type shutdown struct {
	message string
}

// NewShutdownError flags an error as unrecoverable; the HTTP error handler
// reacts by triggering a graceful shutdown.
func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
