//go:build linux || darwin

// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package httpdemo

import (
	"fmt"
	"net"

	"golang.org/x/sys/unix"
)

// listenTCP opens a non-blocking, listening IPv4 TCP socket bound to port
// on every interface, the raw-fd analog of the spec's INADDR_ANY:80
// listener (here the default is an unprivileged 8080, see SPEC_FULL.md).
func listenTCP(port int) (int, error) {
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM, 0)
	if err != nil {
		return -1, fmt.Errorf("httpdemo: socket: %w", err)
	}
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		_ = unix.Close(fd)
		return -1, fmt.Errorf("httpdemo: setsockopt: %w", err)
	}
	if err := unix.Bind(fd, &unix.SockaddrInet4{Port: port}); err != nil {
		_ = unix.Close(fd)
		return -1, fmt.Errorf("httpdemo: bind: %w", err)
	}
	if err := unix.Listen(fd, 128); err != nil {
		_ = unix.Close(fd)
		return -1, fmt.Errorf("httpdemo: listen: %w", err)
	}
	if err := unix.SetNonblock(fd, true); err != nil {
		_ = unix.Close(fd)
		return -1, fmt.Errorf("httpdemo: setnonblock: %w", err)
	}
	return fd, nil
}

// dialTCP resolves host to its first IPv4 address (the only DNS lookup in
// this package; everything past that point goes through raw fds and the
// coroutine machine's readiness gate) and begins a non-blocking connect.
// A non-blocking connect reports completion as the fd becoming writable;
// the caller must still inspect SO_ERROR once it does.
func dialTCP(host string, port int) (int, error) {
	addr, err := resolveIPv4(host)
	if err != nil {
		return -1, err
	}

	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM, 0)
	if err != nil {
		return -1, fmt.Errorf("httpdemo: socket: %w", err)
	}
	if err := unix.SetNonblock(fd, true); err != nil {
		_ = unix.Close(fd)
		return -1, fmt.Errorf("httpdemo: setnonblock: %w", err)
	}

	err = unix.Connect(fd, &unix.SockaddrInet4{Port: port, Addr: addr})
	if err != nil && err != unix.EINPROGRESS {
		_ = unix.Close(fd)
		return -1, fmt.Errorf("httpdemo: connect: %w", err)
	}
	return fd, nil
}

func resolveIPv4(host string) ([4]byte, error) {
	var out [4]byte
	ips, err := net.LookupIP(host)
	if err != nil {
		return out, fmt.Errorf("httpdemo: lookup %q: %w", host, err)
	}
	for _, ip := range ips {
		if v4 := ip.To4(); v4 != nil {
			copy(out[:], v4)
			return out, nil
		}
	}
	return out, fmt.Errorf("httpdemo: %q has no A record", host)
}

// connectError reports the pending error (if any) on fd after a
// non-blocking connect's writable event, per the standard SO_ERROR idiom.
func connectError(fd int) error {
	errno, err := unix.GetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_ERROR)
	if err != nil {
		return fmt.Errorf("httpdemo: getsockopt(SO_ERROR): %w", err)
	}
	if errno != 0 {
		return fmt.Errorf("httpdemo: connect failed: %w", unix.Errno(errno))
	}
	return nil
}
