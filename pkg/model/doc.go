// Package model defines the payloads exchanged with the remote transformation
// service: the TransformRequest built from form state and the TransformResponse
// union returned by the processing endpoint. The optional per-character table
// is modelled as a single composite (CharTable) so headers and rows always
// travel together; DecodeTransformResponse is the only supported way to turn a
// raw payload into a TransformResponse.
package model
