// Package orchestrator owns the interactive session: the form state, the
// result area and the request flow around the remote cipher service. Submit
// validates the form, shows a loading indicator, calls the service and hands
// the outcome to the presenter or to the error surface.
package orchestrator
