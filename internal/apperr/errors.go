package apperr

import "errors"

// ErrInvalid is returned when the input fails domain validation
// (bad coordinates, unknown cluster/offer/driver id). Never retried.
var ErrInvalid = errors.New("invalid input")

// ErrConflict indicates a stale-state transition: accepting an already-terminal
// offer, or losing a double-assignment race (HTTP 409).
var ErrConflict = errors.New("conflict")

// ErrNotFound indicates that the requested resource does not exist.
var ErrNotFound = errors.New("not found")

// ErrNoCandidate means the matcher found no eligible driver this cycle.
// Not an error to auto-assign callers; the sweeper retries the cluster.
var ErrNoCandidate = errors.New("no candidate")

// ErrRetriesExhausted marks a cluster that spent its retry budget.
// The cluster becomes failed and is handed back to the order workflow.
var ErrRetriesExhausted = errors.New("retries exhausted")
