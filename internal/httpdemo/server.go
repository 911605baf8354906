//go:build linux || darwin

// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package httpdemo

import (
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/sys/unix"

	coro "github.com/joeycumines/go-coro"
)

// ServerConfig configures RunServer.
type ServerConfig struct {
	// Port is the TCP port to listen on, all interfaces. The original C
	// demo bound INADDR_ANY:80; that requires elevated privileges in a
	// typical deployment and isn't load-bearing to the wire protocol, so
	// this port is caller-supplied with DefaultPort as a sane default.
	Port int
}

// DefaultPort is used when ServerConfig.Port is zero.
const DefaultPort = 8080

// RunServer starts a listening socket and an accept-loop coroutine bound
// to m, returning once the coroutine is registered (not once it has
// accepted anything). The caller still owns calling m.Run.
func RunServer(m *coro.Machine, cfg ServerConfig) (*coro.Coroutine, error) {
	port := cfg.Port
	if port == 0 {
		port = DefaultPort
	}

	listenFD, err := listenTCP(port)
	if err != nil {
		return nil, err
	}

	acceptor, err := coro.NewCoroutine(m, acceptBody(listenFD), coro.WithName("http-accept"))
	if err != nil {
		_ = unix.Close(listenFD)
		return nil, err
	}
	acceptor.Start()
	return acceptor, nil
}

// acceptBody is the accept-loop coroutine: it waits on the listening
// socket's readable interest, then drains every pending connection with
// non-blocking accept(2) calls before waiting again, starting one
// dedicated coroutine per accepted connection (SPEC_FULL.md §6: "Each
// connection runs in a dedicated coroutine, started from an accept-loop
// coroutine that Waits on the listening socket's readable interest").
func acceptBody(listenFD int) func(*coro.Coroutine) {
	return func(c *coro.Coroutine) {
		m := c.Machine()
		defer unix.Close(listenFD)
		for {
			interest := c.Wait(listenFD, coro.Readable)
			if interest&coro.ErrorCond != 0 {
				if l := m.Logger(); l != nil {
					l.Err().Log("listening socket reported an error condition")
				}
				return
			}
			for {
				connFD, _, err := unix.Accept(listenFD)
				if err != nil {
					if errors.Is(err, unix.EAGAIN) {
						break
					}
					if l := m.Logger(); l != nil {
						l.Err().Err(err).Log("accept failed")
					}
					break
				}
				if err := unix.SetNonblock(connFD, true); err != nil {
					_ = unix.Close(connFD)
					continue
				}
				conn, err := coro.NewCoroutine(m, connBody(connFD))
				if err != nil {
					_ = unix.Close(connFD)
					continue
				}
				conn.Start()
			}
		}
	}
}

// connBody serves exactly one request on connFD, the server half of
// SPEC_FULL.md §6's wire protocol.
func connBody(connFD int) func(*coro.Coroutine) {
	return func(c *coro.Coroutine) {
		defer unix.Close(connFD)
		r := newLineReader(c, connFD)

		line, err := r.readLine()
		if err != nil {
			return
		}
		req, err := parseRequestLine(line)
		if err != nil {
			return
		}
		if _, err := readHeaders(r); err != nil {
			return
		}

		if req.Method != "GET" {
			_ = writeAll(c, connFD, []byte(req.Protocol+" 400 Invalid request method\r\n\r\n"))
			return
		}
		serveGet(c, connFD, req)
	}
}

// serveGet implements the GET handler described in SPEC_FULL.md §6:
// open the path exactly as received; 404 on stat/open failure, otherwise
// a 200 with Content-type/Content-length headers followed by the file.
func serveGet(c *coro.Coroutine, connFD int, req requestLine) {
	f, err := os.Open(req.Path)
	if err != nil {
		_ = writeAll(c, connFD, []byte(req.Protocol+" 404 Not Found\r\n\r\n"))
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		_ = writeAll(c, connFD, []byte(req.Protocol+" 404 Not Found\r\n\r\n"))
		return
	}

	header := fmt.Sprintf("%s 200 OK\r\nContent-type: text/html\r\nContent-length: %d\r\n\r\n", req.Protocol, info.Size())
	if err := writeAll(c, connFD, []byte(header)); err != nil {
		return
	}

	buf := make([]byte, 32*1024)
	for {
		n, err := f.Read(buf)
		if n > 0 {
			if werr := writeAll(c, connFD, buf[:n]); werr != nil {
				return
			}
		}
		if err == io.EOF {
			return
		}
		if err != nil {
			return
		}
	}
}
