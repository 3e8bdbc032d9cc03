package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// wireResponse mirrors the JSON shape on the wire. Pointers distinguish absent
// fields from empty ones.
type wireResponse struct {
	Error        *string       `json:"error"`
	Steps        *[]string     `json:"steps"`
	Result       *string       `json:"result"`
	CharDetails  []CharDetail  `json:"char_details"`
	TableHeaders *TableHeaders `json:"table_headers"`
}

// DecodeTransformResponse parses a processing endpoint payload. A non-empty
// "error" field selects the ErrorResponse variant regardless of any other
// fields; otherwise "steps" must be present as an array.
func DecodeTransformResponse(data []byte) (TransformResponse, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return TransformResponse{}, fmt.Errorf("%w: empty body", ErrMalformedResponse)
	}

	var wire wireResponse
	if err := json.Unmarshal(trimmed, &wire); err != nil {
		return TransformResponse{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	if wire.Error != nil && *wire.Error != "" {
		return TransformResponse{Error: &ErrorResponse{Error: *wire.Error}}, nil
	}

	if wire.Steps == nil {
		return TransformResponse{}, fmt.Errorf("%w: steps missing", ErrMalformedResponse)
	}

	success := &SuccessResponse{Steps: append([]string(nil), (*wire.Steps)...)}
	if wire.Result != nil {
		success.Result = *wire.Result
	}
	success.Table = NewCharTable(wire.TableHeaders, wire.CharDetails)

	return TransformResponse{Success: success}, nil
}

// NewCharTable returns nil unless headers are present and details is non-empty.
// The details slice is copied in full; presentation limits are applied later.
func NewCharTable(headers *TableHeaders, details []CharDetail) *CharTable {
	if headers == nil || len(details) == 0 {
		return nil
	}
	return &CharTable{
		Headers: *headers,
		Details: append([]CharDetail(nil), details...),
	}
}

// MarshalJSON renders the response back into its wire shape.
func (r TransformResponse) MarshalJSON() ([]byte, error) {
	if r.Error != nil {
		return json.Marshal(r.Error)
	}
	if r.Success == nil {
		return nil, fmt.Errorf("%w: empty response", ErrMalformedResponse)
	}
	wire := struct {
		Steps        []string      `json:"steps"`
		Result       string        `json:"result"`
		CharDetails  []CharDetail  `json:"char_details,omitempty"`
		TableHeaders *TableHeaders `json:"table_headers,omitempty"`
	}{
		Steps:  r.Success.Steps,
		Result: r.Success.Result,
	}
	if wire.Steps == nil {
		wire.Steps = []string{}
	}
	if table := r.Success.Table; table != nil {
		headers := table.Headers
		wire.CharDetails = table.Details
		wire.TableHeaders = &headers
	}
	return json.Marshal(wire)
}

// UnmarshalJSON delegates to DecodeTransformResponse.
func (r *TransformResponse) UnmarshalJSON(data []byte) error {
	decoded, err := DecodeTransformResponse(data)
	if err != nil {
		return err
	}
	*r = decoded
	return nil
}
