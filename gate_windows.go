//go:build windows

package coro

import "errors"

// newPlatformGate documents, rather than fakes, a missing capability: this
// runtime relies on poll(2)-style readiness over arbitrary descriptors,
// which Windows has no direct equivalent for (IOCP is a fundamentally
// different, completion-based model). Present for cross-compilation
// symmetry with gate_unix.go.
func newPlatformGate() (gate, error) {
	return nil, errors.New("coro: windows is not a supported host (no poll(2)-equivalent readiness gate wired up)")
}
