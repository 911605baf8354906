// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package coro

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by construction and registration paths.
var (
	ErrInvalidStackSize = errors.New("coro: stack size must be greater than zero")
	ErrMachineClosed    = errors.New("coro: machine is closed")
	ErrNoFreeID         = errors.New("coro: no free coroutine id available")
	ErrFDOutOfRange     = errors.New("coro: file descriptor out of range")
	ErrGateClosed       = errors.New("coro: readiness gate is closed")
)

// MisuseError indicates an API call made outside of its required context,
// e.g. Yield called from a goroutine that isn't the currently-running
// coroutine's body. These are programmer errors: the runtime panics with
// a MisuseError rather than silently corrupting scheduler state.
type MisuseError struct {
	Op      string
	Message string
}

func (e *MisuseError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("coro: misuse: %s", e.Op)
	}
	return fmt.Sprintf("coro: misuse: %s: %s", e.Op, e.Message)
}

// GateError wraps a failure from the underlying readiness primitive
// (poll(2), eventfd, or the self-pipe equivalent), preserving the
// offending syscall name for diagnostics.
type GateError struct {
	Syscall string
	Cause   error
}

func (e *GateError) Error() string {
	return fmt.Sprintf("coro: %s: %v", e.Syscall, e.Cause)
}

// Unwrap returns the underlying cause for use with [errors.Is] and [errors.As].
func (e *GateError) Unwrap() error {
	return e.Cause
}

func newGateError(syscall string, cause error) error {
	if cause == nil {
		return nil
	}
	return &GateError{Syscall: syscall, Cause: cause}
}
