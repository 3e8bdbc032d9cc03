package server

import (
	"errors"
	"net/http"
)

// HTTPError is an error that knows its HTTP status.
type HTTPError interface {
	error
	StatusCode() int
}

// StatusError pairs an error with the status it should be reported as.
type StatusError struct {
	Code int
	Err  error
}

func (e StatusError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return http.StatusText(e.Code)
}

func (e StatusError) Unwrap() error { return e.Err }

func (e StatusError) StatusCode() int {
	if e.Code <= 0 {
		return http.StatusInternalServerError
	}
	return e.Code
}

var (
	errSessionNotFound = StatusError{Code: http.StatusNotFound, Err: errors.New("session not found")}
	errRateLimited     = StatusError{Code: http.StatusTooManyRequests, Err: errors.New("too many submissions")}
	errUnknownOp       = StatusError{Code: http.StatusBadRequest, Err: errors.New("unknown operation")}
)

// writeError reports err with its status. Only the status text is sent so
// internal causes never reach the page.
func writeError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	var httpErr HTTPError
	if errors.As(err, &httpErr) && httpErr != nil {
		code = httpErr.StatusCode()
	}
	http.Error(w, http.StatusText(code), code)
}
