//go:build linux || darwin

package coro

import (
	"golang.org/x/sys/unix"
)

// unixGate implements gate atop poll(2). unix.Poll is provided identically
// by golang.org/x/sys/unix for linux and the BSD family (including
// darwin), so this single file serves both of this runtime's supported
// hosts, unlike the teacher's epoll/kqueue split (see DESIGN.md).
type unixGate struct {
	fds    []unix.PollFd
	closed bool
}

func newPlatformGate() (gate, error) {
	return &unixGate{}, nil
}

func interestToPoll(i Interest) int16 {
	var events int16
	if i&Readable != 0 {
		events |= unix.POLLIN
	}
	if i&Writable != 0 {
		events |= unix.POLLOUT
	}
	return events
}

func pollToInterest(revents int16) Interest {
	var i Interest
	if revents&unix.POLLIN != 0 {
		i |= Readable
	}
	if revents&unix.POLLOUT != 0 {
		i |= Writable
	}
	if revents&unix.POLLERR != 0 {
		i |= ErrorCond
	}
	if revents&unix.POLLHUP != 0 {
		i |= Hangup
	}
	return i
}

func (g *unixGate) poll(entries []pollEntry) ([]Interest, error) {
	if g.closed {
		return nil, ErrGateClosed
	}
	if cap(g.fds) < len(entries) {
		g.fds = make([]unix.PollFd, len(entries))
	}
	g.fds = g.fds[:len(entries)]
	for i, e := range entries {
		if e.fd < 0 || e.fd > 0x7fffffff {
			return nil, ErrFDOutOfRange
		}
		g.fds[i] = unix.PollFd{
			Fd:     int32(e.fd),
			Events: interestToPoll(e.request),
		}
	}

	for {
		_, err := unix.Poll(g.fds, -1)
		if err == nil {
			break
		}
		if err == unix.EINTR {
			continue
		}
		return nil, newGateError("poll", err)
	}

	out := make([]Interest, len(entries))
	for i := range g.fds {
		out[i] = pollToInterest(g.fds[i].Revents)
	}
	return out, nil
}

func (g *unixGate) close() error {
	g.closed = true
	g.fds = nil
	return nil
}
