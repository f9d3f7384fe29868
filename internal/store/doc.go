// Package store owns durable document IO under one runtime root.
//
// Ownership boundary:
// - atomic JSON document replace (temp + fsync + rename)
// - cross-process exclusive locking per logical resource
// - append-only line logs
// - settings merge with backup-and-reset on corruption
package store
