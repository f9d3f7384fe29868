// Package rpc owns the wire contract for the line-delimited JSON-RPC
// protocol.
//
// Ownership boundary:
// - request/response envelope types
// - the three wire error codes
// - line codec primitives (one JSON document per line, flushed)
package rpc
