package model

// TransformRequest is the body POSTed to the processing endpoint. It is built
// fresh for every submission.
type TransformRequest struct {
	Text      string `json:"text"`
	Seed      string `json:"seed"`
	Operation string `json:"operation"`
}

// ByteView renders one byte as a fixed-width hex string plus a printable (or
// placeholder) character.
type ByteView struct {
	Hex  string `json:"hex"`
	Char string `json:"char"`
}

// CharDetail describes one position of the processed text.
type CharDetail struct {
	Char          string   `json:"char"`
	OriginalByte  ByteView `json:"original_byte"`
	KeystreamByte ByteView `json:"keystream_byte"`
	ResultByte    ByteView `json:"result_byte"`
}

// TableHeaders carries the display labels for the character table. The service
// supplies them so the table follows the operation's terminology.
type TableHeaders struct {
	Char          string `json:"char"`
	OriginalByte  string `json:"original_byte"`
	KeystreamByte string `json:"keystream_byte"`
	ResultByte    string `json:"result_byte"`
}

// CharTable pairs the headers with their rows. Details is never empty on a
// decoded table.
type CharTable struct {
	Headers TableHeaders
	Details []CharDetail
}

// ErrorResponse is the service-reported failure variant.
type ErrorResponse struct {
	Error string `json:"error"`
}

// SuccessResponse is the narrated transformation result.
type SuccessResponse struct {
	Steps  []string
	Result string
	// Table is nil when the service did not send both char_details (non-empty)
	// and table_headers.
	Table *CharTable
}

// TransformResponse holds exactly one of Error or Success.
type TransformResponse struct {
	Error   *ErrorResponse
	Success *SuccessResponse
}

// IsError reports whether the service rejected the request.
func (r TransformResponse) IsError() bool {
	return r.Error != nil
}

// SeedResponse is the payload of the seed-generation endpoint.
type SeedResponse struct {
	Seed string `json:"seed,omitempty"`
}
