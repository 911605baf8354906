//go:build linux || darwin

// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package httpdemo

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"golang.org/x/sys/unix"

	coro "github.com/joeycumines/go-coro"
)

// ErrConnectionClosed is returned by the line/byte readers when the peer
// closes the connection before the expected data arrives.
var ErrConnectionClosed = errors.New("httpdemo: connection closed")

// writeAll writes the entirety of data to fd, parking the calling
// coroutine on Wait(fd, Writable) whenever the socket buffer is full.
func writeAll(c *coro.Coroutine, fd int, data []byte) error {
	for len(data) > 0 {
		n, err := unix.Write(fd, data)
		switch {
		case err == nil:
			data = data[n:]
		case errors.Is(err, unix.EAGAIN):
			if interest := c.Wait(fd, coro.Writable); interest&coro.ErrorCond != 0 {
				return fmt.Errorf("httpdemo: write: %w", unix.ECONNRESET)
			}
		default:
			return fmt.Errorf("httpdemo: write: %w", err)
		}
	}
	return nil
}

// readSome issues one read(2), parking on Wait(fd, Readable) across
// EAGAIN. It returns io.EOF when the peer has shut the connection down.
func readSome(c *coro.Coroutine, fd int, buf []byte) (int, error) {
	for {
		n, err := unix.Read(fd, buf)
		switch {
		case err == nil && n == 0:
			return 0, io.EOF
		case err == nil:
			return n, nil
		case errors.Is(err, unix.EAGAIN):
			c.Wait(fd, coro.Readable)
		default:
			return 0, fmt.Errorf("httpdemo: read: %w", err)
		}
	}
}

// lineReader buffers bytes read from fd and yields CRLF/LF-terminated
// lines one at a time, the minimal read-ahead a from-scratch HTTP/1.1
// line parser needs (§6 of SPEC_FULL.md mandates hand-rolled line
// parsing rather than net/http or bufio.Scanner's token model).
type lineReader struct {
	c   *coro.Coroutine
	fd  int
	buf bytes.Buffer
	tmp [4096]byte
}

func newLineReader(c *coro.Coroutine, fd int) *lineReader {
	return &lineReader{c: c, fd: fd}
}

// readLine returns the next line, with any trailing CRLF or LF stripped.
func (r *lineReader) readLine() (string, error) {
	for {
		if idx := bytes.IndexByte(r.buf.Bytes(), '\n'); idx >= 0 {
			line := r.buf.Next(idx + 1)
			return trimEOL(line), nil
		}
		n, err := readSome(r.c, r.fd, r.tmp[:])
		if err == io.EOF {
			if r.buf.Len() > 0 {
				line := r.buf.String()
				r.buf.Reset()
				return trimEOL([]byte(line)), nil
			}
			return "", ErrConnectionClosed
		}
		if err != nil {
			return "", err
		}
		r.buf.Write(r.tmp[:n])
	}
}

// readExact drains count bytes already buffered (or reads more as
// needed), used to consume a known-length chunk body or message body.
func (r *lineReader) readExact(count int) ([]byte, error) {
	for r.buf.Len() < count {
		n, err := readSome(r.c, r.fd, r.tmp[:])
		if err == io.EOF {
			return nil, ErrConnectionClosed
		}
		if err != nil {
			return nil, err
		}
		r.buf.Write(r.tmp[:n])
	}
	return r.buf.Next(count), nil
}

// nextChunk returns up to max bytes of whatever is available: buffered
// bytes first, otherwise one more read(2). Unlike readExact, this never
// blocks waiting for a specific count, which is what a read-until-closed
// body (no Content-Length, not chunked) needs.
func (r *lineReader) nextChunk(max int) ([]byte, error) {
	if r.buf.Len() == 0 {
		n, err := readSome(r.c, r.fd, r.tmp[:])
		if err == io.EOF {
			return nil, io.EOF
		}
		if err != nil {
			return nil, err
		}
		r.buf.Write(r.tmp[:n])
	}
	n := r.buf.Len()
	if n > max {
		n = max
	}
	return r.buf.Next(n), nil
}

func trimEOL(line []byte) string {
	line = bytes.TrimSuffix(line, []byte("\n"))
	line = bytes.TrimSuffix(line, []byte("\r"))
	return string(line)
}
