package orchestrator

import (
	"context"

	"github.com/goliatone/go-cipherview/pkg/present"
)

// OutcomeKind classifies how a submission ended.
type OutcomeKind string

const (
	OutcomeInvalid        OutcomeKind = "invalid"
	OutcomeServiceError   OutcomeKind = "service_error"
	OutcomeTransportError OutcomeKind = "transport_error"
	OutcomePresented      OutcomeKind = "presented"
	// OutcomeSuperseded means a newer submission or error took over the area
	// before this one could render.
	OutcomeSuperseded OutcomeKind = "superseded"
)

// Outcome reports the result of Submit.
type Outcome struct {
	Kind       OutcomeKind
	Generation uint64
	// Message is what the error surface shows for invalid, service and
	// transport outcomes.
	Message string
	// Err is the logged cause of a transport outcome.
	Err error
	// Reveal is set for presented outcomes.
	Reveal *present.Run
}

// Wait blocks until the reveal finishes. Outcomes without a reveal return
// immediately.
func (o Outcome) Wait(ctx context.Context) error {
	if o.Reveal == nil {
		return nil
	}
	return o.Reveal.Wait(ctx)
}
