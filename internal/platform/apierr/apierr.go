// Package apierr lets engine code pin the HTTP rendering of a failure at
// the point where the status is actually known. Handlers unwrap with
// errors.As and respond with Status and Code verbatim; anything else falls
// through to the sentinel taxonomy mapping.
package apierr

import "fmt"

// Error carries an HTTP status, a stable machine-readable code and the
// underlying cause.
type Error struct {
	Status int
	Code   string
	Err    error
}

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

func (e *Error) Error() string {
	switch {
	case e == nil:
		return ""
	case e.Err != nil:
		return e.Err.Error()
	case e.Code != "":
		return e.Code
	case e.Status != 0:
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }
