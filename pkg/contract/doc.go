// Package contract loads the OpenAPI description of the remote cipher service
// and validates the payloads exchanged with it. It also publishes the
// operation vocabulary the form's submit controls are built from.
package contract
