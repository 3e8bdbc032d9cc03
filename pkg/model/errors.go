package model

import "errors"

var (
	// ErrMalformedResponse reports a payload that is neither an error nor a
	// success response.
	ErrMalformedResponse = errors.New("model: malformed transform response")
)
