// Package engine owns the request dispatch loop: parse, route, execute,
// respond, one input line at a time. The engine itself holds no mutable
// state across requests; all shared state lives behind the store.
package engine
