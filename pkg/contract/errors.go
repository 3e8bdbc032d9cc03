package contract

import "errors"

// ErrViolation is returned when a payload does not match the service contract.
var ErrViolation = errors.New("contract: payload violates service contract")

// ErrUnknownOperation is returned when an operation is not part of the
// contract's operation enum.
var ErrUnknownOperation = errors.New("contract: unknown operation")
