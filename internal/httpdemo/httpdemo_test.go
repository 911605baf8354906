//go:build linux || darwin

// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package httpdemo

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	coro "github.com/joeycumines/go-coro"
)

// startLoopbackServer binds an ephemeral port directly (bypassing
// RunServer's DefaultPort, which would collide across parallel test runs)
// and starts the accept-loop coroutine on m, returning the bound port.
func startLoopbackServer(t *testing.T, m *coro.Machine) int {
	t.Helper()
	fd, err := listenTCP(0)
	require.NoError(t, err)

	sa, err := unix.Getsockname(fd)
	require.NoError(t, err)
	addr, ok := sa.(*unix.SockaddrInet4)
	require.True(t, ok, "expected an IPv4 socket address, got %T", sa)

	acceptor, err := coro.NewCoroutine(m, acceptBody(fd), coro.WithName("http-accept"))
	require.NoError(t, err)
	acceptor.Start()
	return addr.Port
}

// runServerAsync runs server on its own goroutine; the caller stops it
// (via waitForServerStop) once the client's requests have completed, the
// same Stop-interrupts-blocked-Wait pattern exercised standalone in
// machine_test.go.
func runServerAsync(server *coro.Machine) <-chan error {
	done := make(chan error, 1)
	go func() { done <- server.Run() }()
	return done
}

func waitForServerStop(t *testing.T, server *coro.Machine, done <-chan error) {
	t.Helper()
	server.Stop()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server machine did not stop after Stop()")
	}
}

// TestHTTPGet200 covers SPEC_FULL.md §8 scenario 4: a GET for an existing
// file returns exactly its bytes.
func TestHTTPGet200(t *testing.T) {
	const body = "<h1>hi</h1>"
	path := filepath.Join(t.TempDir(), "x.html")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	server, err := coro.NewMachine()
	require.NoError(t, err)
	defer server.Close()
	port := startLoopbackServer(t, server)
	done := runServerAsync(server)

	client, err := coro.NewMachine()
	require.NoError(t, err)
	defer client.Close()

	var out bytes.Buffer
	require.NoError(t, RunClient(client, ClientConfig{
		Host: "127.0.0.1",
		Port: port,
		Path: path,
		Jobs: 1,
		Out:  &out,
	}))
	require.NoError(t, client.Run())

	waitForServerStop(t, server, done)
	assert.Equal(t, body, out.String())
}

// TestHTTPGet404 covers SPEC_FULL.md §8 scenario 5: a GET for a path that
// does not exist yields an empty body.
func TestHTTPGet404(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.html")

	server, err := coro.NewMachine()
	require.NoError(t, err)
	defer server.Close()
	port := startLoopbackServer(t, server)
	done := runServerAsync(server)

	client, err := coro.NewMachine()
	require.NoError(t, err)
	defer client.Close()

	var out bytes.Buffer
	require.NoError(t, RunClient(client, ClientConfig{
		Host: "127.0.0.1",
		Port: port,
		Path: path,
		Jobs: 1,
		Out:  &out,
	}))
	require.NoError(t, client.Run())

	waitForServerStop(t, server, done)
	assert.Empty(t, out.String())
}

