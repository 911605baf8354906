// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package coro

// Interest is a bitmask of readiness conditions, mirroring the host
// readiness primitive's flag set (poll(2)'s POLLIN/POLLOUT/POLLERR/POLLHUP).
type Interest uint32

const (
	// Readable indicates the descriptor is ready for reading.
	Readable Interest = 1 << iota
	// Writable indicates the descriptor is ready for writing.
	Writable
	// ErrorCond indicates an error condition on the descriptor.
	ErrorCond
	// Hangup indicates the peer closed its end. Per the resolved Open
	// Question in DESIGN.md, this is surfaced to the waiting coroutine as
	// a bit in the returned Interest rather than used by the runtime to
	// kill the coroutine.
	Hangup
)

// pollEntry is one element of the array rebuilt every scheduling round.
type pollEntry struct {
	fd      int
	request Interest
}

// gate is the readiness primitive: block until at least one of the given
// descriptors satisfies its requested interest, reporting which did. The
// array is rebuilt from scratch on every call (§4.2 step 1 of
// SPEC_FULL.md), which is exactly what poll(2) is for; see gate_unix.go.
type gate interface {
	// poll blocks indefinitely until at least one entry is ready, and
	// reports the observed Interest per entry (parallel to entries).
	poll(entries []pollEntry) ([]Interest, error)
	// close releases any resources held by the gate.
	close() error
}

func newGate() (gate, error) {
	return newPlatformGate()
}
