//go:build linux || darwin

// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package httpdemo

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"

	coro "github.com/joeycumines/go-coro"
)

// ClientConfig configures RunClient.
type ClientConfig struct {
	Host string
	Port int
	Path string
	Jobs int
	// Out receives the streamed body of every successful request, in
	// whatever interleaving the scheduler's fairness discipline produces
	// (matching the CLI's "-j N" concurrent-fetch semantics).
	Out io.Writer
}

// RunClient launches cfg.Jobs concurrent coroutines, each independently
// fetching cfg.Path from cfg.Host:cfg.Port and streaming the response
// body to cfg.Out.
func RunClient(m *coro.Machine, cfg ClientConfig) error {
	port := cfg.Port
	if port == 0 {
		port = 80
	}
	jobs := cfg.Jobs
	if jobs <= 0 {
		jobs = 1
	}

	for i := 0; i < jobs; i++ {
		job := i
		co, err := coro.NewCoroutine(m, clientJobBody(cfg.Host, port, cfg.Path, cfg.Out), coro.WithName(fmt.Sprintf("client-%d", job)))
		if err != nil {
			return err
		}
		co.Start()
	}
	return nil
}

func clientJobBody(host string, port int, path string, out io.Writer) func(*coro.Coroutine) {
	return func(c *coro.Coroutine) {
		m := c.Machine()
		fd, err := dialTCP(host, port)
		if err != nil {
			logClientErr(m, err)
			return
		}
		defer unix.Close(fd)

		interest := c.Wait(fd, coro.Writable)
		if interest&coro.ErrorCond != 0 {
			logClientErr(m, fmt.Errorf("httpdemo: connect reported an error condition"))
			return
		}
		if err := connectError(fd); err != nil {
			logClientErr(m, err)
			return
		}

		request := fmt.Sprintf("GET %s HTTP/1.1\r\nHost: %s\r\n\r\n", path, host)
		if err := writeAll(c, fd, []byte(request)); err != nil {
			logClientErr(m, err)
			return
		}

		r := newLineReader(c, fd)
		statusText, err := r.readLine()
		if err != nil {
			logClientErr(m, err)
			return
		}
		if _, err := parseStatusLine(statusText); err != nil {
			logClientErr(m, err)
			return
		}

		headers, err := readHeaders(r)
		if err != nil {
			logClientErr(m, err)
			return
		}

		if err := streamBody(c, r, headers, out); err != nil {
			logClientErr(m, err)
		}
	}
}

// streamBody dispatches on Content-Length vs. Transfer-Encoding: chunked,
// falling back to read-until-EOF, matching SPEC_FULL.md §6's client wire
// semantics.
func streamBody(c *coro.Coroutine, r *lineReader, headers headerSet, out io.Writer) error {
	if cl, ok := headers.get("Content-Length"); ok {
		n, err := strconv.Atoi(strings.TrimSpace(cl))
		if err != nil {
			return fmt.Errorf("httpdemo: malformed content-length %q: %w", cl, err)
		}
		return streamFixed(r, n, out)
	}
	if te, ok := headers.get("Transfer-Encoding"); ok && strings.EqualFold(strings.TrimSpace(te), "chunked") {
		return streamChunked(r, out)
	}
	return streamUntilClosed(r, out)
}

func streamFixed(r *lineReader, n int, out io.Writer) error {
	remaining := n
	for remaining > 0 {
		chunkSize := remaining
		if chunkSize > 32*1024 {
			chunkSize = 32 * 1024
		}
		data, err := r.readExact(chunkSize)
		if err != nil {
			return err
		}
		if _, err := out.Write(data); err != nil {
			return err
		}
		remaining -= chunkSize
	}
	return nil
}

// streamChunked decodes "hex-length CRLF, chunk bytes, CRLF" chunks until
// a zero-length chunk terminates the body.
func streamChunked(r *lineReader, out io.Writer) error {
	for {
		sizeLine, err := r.readLine()
		if err != nil {
			return err
		}
		sizeLine = strings.TrimSpace(strings.SplitN(sizeLine, ";", 2)[0])
		size, err := strconv.ParseInt(sizeLine, 16, 64)
		if err != nil {
			return fmt.Errorf("httpdemo: malformed chunk size %q: %w", sizeLine, err)
		}
		if size == 0 {
			// Trailing CRLF after the zero-length chunk; trailers (if
			// any) are not supported by this minimal demo client.
			_, _ = r.readLine()
			return nil
		}
		data, err := r.readExact(int(size))
		if err != nil {
			return err
		}
		if _, err := out.Write(data); err != nil {
			return err
		}
		if _, err := r.readLine(); err != nil { // trailing CRLF
			return err
		}
	}
}

func streamUntilClosed(r *lineReader, out io.Writer) error {
	for {
		data, err := r.nextChunk(4096)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if len(data) == 0 {
			continue
		}
		if _, werr := out.Write(data); werr != nil {
			return werr
		}
	}
}

func logClientErr(m *coro.Machine, err error) {
	if l := m.Logger(); l != nil {
		l.Err().Err(err).Log("http client job failed")
	}
}
