// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

// Command coro-httpget-server is the HTTP/1.1 GET-only server demo
// described in SPEC_FULL.md §6: a single coroutine machine, one
// accept-loop coroutine, and one coroutine per connection.
package main

import (
	"flag"
	"fmt"
	"os"

	coro "github.com/joeycumines/go-coro"
	"github.com/joeycumines/go-coro/internal/httpdemo"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "coro-httpget-server:", err)
		os.Exit(1)
	}
}

func run() error {
	port := flag.Int("port", httpdemo.DefaultPort, "TCP port to listen on")
	flag.Parse()

	m, err := coro.NewMachine(coro.WithMachineMetrics(true))
	if err != nil {
		return err
	}
	defer m.Close()

	if _, err := httpdemo.RunServer(m, httpdemo.ServerConfig{Port: *port}); err != nil {
		return err
	}

	m.Logger().Info().Int("port", *port).Log("listening")
	return m.Run()
}
