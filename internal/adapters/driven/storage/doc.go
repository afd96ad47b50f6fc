// Package storage selects and guards the credential store backend.
//
// A Selector picks one backend (redis, sqlite or memory) on first use and
// keeps it for the life of the process. Every operation runs under a
// bounded timeout, and backend failures surface as
// domain.ErrBackendUnavailable.
//
// # Policy
//
// In strict mode a durable backend must be configured and reachable.
// In permissive mode a missing or unreachable backend falls back to the
// in-memory store, with a warning in the log.
package storage
