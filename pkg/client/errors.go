package client

import "errors"

// ErrUnexpectedStatus is returned for non-OK responses that do not carry a
// service error message.
var ErrUnexpectedStatus = errors.New("client: unexpected status")

// ErrMisconfigured is returned when the client cannot build request URLs.
var ErrMisconfigured = errors.New("client: misconfigured")
