// Package apperr defines the error taxonomy shared by the API server, the API
// client, and the resource views, together with its HTTP status mapping.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrTransport       = errors.New("transport failure")
	ErrUnauthenticated = errors.New("authentication required")
	ErrValidation      = errors.New("validation failed")
	ErrConflict        = errors.New("duplicate entry")
	ErrForbidden       = errors.New("access denied")
	ErrNotFound        = errors.New("not found")
	ErrBadRequest      = errors.New("bad request")
)

// DuplicateMarker prefixes the detail of a unique-key violation. Clients look
// for it in 500 responses to tell a conflict from a generic server failure.
const DuplicateMarker = "Duplicate entry"

// DuplicateError is a unique-key violation on a single field.
type DuplicateError struct {
	Field string
	Value string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("%s '%s' for key '%s'", DuplicateMarker, e.Value, e.Field)
}

// Is makes errors.Is(err, ErrConflict) hold for duplicate errors.
func (e *DuplicateError) Is(target error) bool {
	return target == ErrConflict
}

// DetailError attaches a user-facing detail to a sentinel kind.
type DetailError struct {
	Kind   error
	Detail string
}

func (e *DetailError) Error() string { return e.Detail }

func (e *DetailError) Unwrap() error { return e.Kind }

// WithDetail wraps kind with a detail that servers send verbatim.
func WithDetail(kind error, detail string) error {
	return &DetailError{Kind: kind, Detail: detail}
}

// StatusError carries the server detail of a failed HTTP call.
type StatusError struct {
	Code   int
	Detail string
	kind   error
}

func (e *StatusError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("http %d: %s", e.Code, e.kind)
	}
	return fmt.Sprintf("http %d: %s", e.Code, e.Detail)
}

func (e *StatusError) Unwrap() error { return e.kind }

// Status returns the HTTP status a server responds with for err.
// Conflicts map to 500 to keep the wire contract of the original API.
func Status(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// FromStatus converts a failed HTTP response into the taxonomy.
func FromStatus(code int, detail string) error {
	var kind error
	switch code {
	case http.StatusUnauthorized:
		kind = ErrUnauthenticated
	case http.StatusForbidden:
		kind = ErrForbidden
	case http.StatusNotFound:
		kind = ErrNotFound
	case http.StatusUnprocessableEntity:
		kind = ErrValidation
	case http.StatusBadRequest:
		kind = ErrBadRequest
	case http.StatusConflict:
		kind = ErrConflict
	case http.StatusInternalServerError:
		kind = errors.New("server error")
		if strings.Contains(detail, DuplicateMarker) {
			kind = ErrConflict
		}
	default:
		kind = fmt.Errorf("unexpected status %d", code)
	}
	return &StatusError{Code: code, Detail: detail, kind: kind}
}

// Detail returns the detail carried by err: the server-provided detail of a
// failed call, the text of a DetailError or DuplicateError, or "".
func Detail(err error) string {
	var (
		se  *StatusError
		de  *DetailError
		dup *DuplicateError
	)
	switch {
	case errors.As(err, &se):
		return se.Detail
	case errors.As(err, &de):
		return de.Detail
	case errors.As(err, &dup):
		return dup.Error()
	}
	return ""
}
