package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is a domain error carrying an HTTP-equivalent status and a stable machine code.
// Context optionally tags which operation produced it (e.g. "persist", "accept").
type Error struct {
	Status  int
	Code    string
	Context string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

// Unprocessable builds a 422-class error for well-formed input the domain cannot represent
func Unprocessable(code string, err error) *Error {
	return &Error{Status: http.StatusUnprocessableEntity, Code: code, Err: err}
}

// Conflict builds a 409-class error tagged with the operation context
func Conflict(code, context string, err error) *Error {
	return &Error{Status: http.StatusConflict, Code: code, Context: context, Err: err}
}

// BadRequest builds a 400-class error
func BadRequest(code string, err error) *Error {
	return &Error{Status: http.StatusBadRequest, Code: code, Err: err}
}

// NotFound builds a 404-class error
func NotFound(code string, err error) *Error {
	return &Error{Status: http.StatusNotFound, Code: code, Err: err}
}

// As extracts an *Error from err's chain
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) && e != nil {
		return e, true
	}
	return nil, false
}

// IsConflict reports whether err carries a conflict-class status
func IsConflict(err error) bool {
	e, ok := As(err)
	return ok && e.Status == http.StatusConflict
}
