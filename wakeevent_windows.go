//go:build windows

package coro

import "errors"

// newPlatformWakeEvent documents, rather than fakes, a missing capability:
// the readiness gate this package relies on (poll(2) over arbitrary
// descriptors) has no Windows equivalent without an IOCP rewrite of the
// whole gate, which is out of scope here. Present for cross-compilation
// symmetry with wakeevent_linux.go / wakeevent_darwin.go.
func newPlatformWakeEvent() (wakeEvent, error) {
	return nil, errors.New("coro: windows is not a supported host (no poll(2)-equivalent readiness gate wired up)")
}
