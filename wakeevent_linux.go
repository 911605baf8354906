//go:build linux

package coro

import (
	"encoding/binary"

	"golang.org/x/sys/unix"
)

// eventfdWake implements wakeEvent using Linux eventfd(2), the same
// mechanism the teacher's event loop uses for its own wakeup pipe.
type eventfdWake struct {
	fd int
}

func newPlatformWakeEvent() (wakeEvent, error) {
	fd, err := unix.Eventfd(0, unix.EFD_CLOEXEC|unix.EFD_NONBLOCK)
	if err != nil {
		return nil, newGateError("eventfd", err)
	}
	return &eventfdWake{fd: fd}, nil
}

func (w *eventfdWake) FD() int { return w.fd }

func (w *eventfdWake) Fire() error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], 1)
	_, err := unix.Write(w.fd, buf[:])
	if err != nil && err != unix.EAGAIN {
		return newGateError("eventfd write", err)
	}
	return nil
}

func (w *eventfdWake) Clear() error {
	var buf [8]byte
	for {
		_, err := unix.Read(w.fd, buf[:])
		if err != nil {
			if err == unix.EAGAIN {
				return nil
			}
			return newGateError("eventfd read", err)
		}
	}
}

func (w *eventfdWake) Close() error {
	if w.fd < 0 {
		return nil
	}
	err := unix.Close(w.fd)
	w.fd = -1
	return err
}
