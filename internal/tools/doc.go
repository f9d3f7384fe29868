// Package tools owns the direct method surface of the hub: every method a
// dispatch engine can route to by name, plus the registry that resolves
// them. The protocol-handshake shim in the engine maps tools/call payloads
// onto this same namespace.
package tools
