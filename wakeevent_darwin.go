//go:build darwin

package coro

import (
	"golang.org/x/sys/unix"
)

// selfPipeWake implements wakeEvent using a non-blocking self-pipe, the
// same mechanism the teacher's event loop uses on Darwin where eventfd is
// unavailable.
type selfPipeWake struct {
	readFD  int
	writeFD int
}

func newPlatformWakeEvent() (wakeEvent, error) {
	var fds [2]int
	if err := unix.Pipe(fds[:]); err != nil {
		return nil, newGateError("pipe", err)
	}
	for _, fd := range fds {
		if err := unix.SetNonblock(fd, true); err != nil {
			_ = unix.Close(fds[0])
			_ = unix.Close(fds[1])
			return nil, newGateError("setnonblock", err)
		}
	}
	return &selfPipeWake{readFD: fds[0], writeFD: fds[1]}, nil
}

func (w *selfPipeWake) FD() int { return w.readFD }

func (w *selfPipeWake) Fire() error {
	_, err := unix.Write(w.writeFD, []byte{1})
	if err != nil && err != unix.EAGAIN {
		return newGateError("pipe write", err)
	}
	return nil
}

func (w *selfPipeWake) Clear() error {
	var buf [64]byte
	for {
		_, err := unix.Read(w.readFD, buf[:])
		if err != nil {
			if err == unix.EAGAIN {
				return nil
			}
			return newGateError("pipe read", err)
		}
	}
}

func (w *selfPipeWake) Close() error {
	if w.readFD >= 0 {
		_ = unix.Close(w.readFD)
	}
	if w.writeFD >= 0 {
		_ = unix.Close(w.writeFD)
	}
	w.readFD, w.writeFD = -1, -1
	return nil
}
