package apierr

import (
	"fmt"
	"net/http"
)

// Error codes follow the platform taxonomy: validation and not-found errors
// are terminal for the caller, upstream errors are retryable.
const (
	CodeValidation    = "invalid_input"
	CodeMissingParams = "missing_parameters"
	CodeNotFound      = "not_found"
	CodeIngestFailure = "ingest_failure"
	CodeUpstream      = "upstream_unavailable"
	CodeInternal      = "internal_error"
)

type Error struct {
	Status int
	Code   string
	Err    error
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

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

func Validation(err error) *Error {
	return New(http.StatusBadRequest, CodeValidation, err)
}

func NotFound(err error) *Error {
	return New(http.StatusNotFound, CodeNotFound, err)
}

func Upstream(err error) *Error {
	return New(http.StatusBadGateway, CodeUpstream, err)
}
