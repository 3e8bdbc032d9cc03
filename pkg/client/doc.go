// Package client talks to the remote cipher service: it fetches seeds and
// submits transformation requests, checking both directions against the
// service contract.
package client
