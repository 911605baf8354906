// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

// Command coro-httpget-client is the HTTP/1.1 GET-only client demo
// described in SPEC_FULL.md §6:
//
//	coro-httpget-client -j <N> <host[:port]> <filename>
package main

import (
	"flag"
	"fmt"
	"net"
	"os"
	"regexp"
	"strconv"

	coro "github.com/joeycumines/go-coro"
	"github.com/joeycumines/go-coro/internal/httpdemo"
)

// jobsShorthand matches the spec's "-jN" shorthand (no space between the
// flag and its value), which Go's flag package doesn't parse natively.
var jobsShorthand = regexp.MustCompile(`^-j([0-9]+)$`)

// expandJobsShorthand rewrites any "-jN" argument into "-j" "N" so
// flag.Parse can handle it alongside the spec-mandated "-j N" form.
func expandJobsShorthand(args []string) []string {
	out := make([]string, 0, len(args)+1)
	for _, a := range args {
		if m := jobsShorthand.FindStringSubmatch(a); m != nil {
			out = append(out, "-j", m[1])
			continue
		}
		out = append(out, a)
	}
	return out
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "coro-httpget-client:", err)
		os.Exit(1)
	}
}

func run() error {
	jobs := flag.Int("j", 1, "number of concurrent fetch coroutines")
	if err := flag.CommandLine.Parse(expandJobsShorthand(os.Args[1:])); err != nil {
		return err
	}

	args := flag.Args()
	if len(args) != 2 {
		return fmt.Errorf("usage: coro-httpget-client -j <N> <host[:port]> <filename>")
	}
	host, port, err := splitHostPort(args[0])
	if err != nil {
		return err
	}

	m, err := coro.NewMachine()
	if err != nil {
		return err
	}
	defer m.Close()

	if err := httpdemo.RunClient(m, httpdemo.ClientConfig{
		Host: host,
		Port: port,
		Path: args[1],
		Jobs: *jobs,
		Out:  os.Stdout,
	}); err != nil {
		return err
	}

	return m.Run()
}

func splitHostPort(hostport string) (string, int, error) {
	host, portStr, err := net.SplitHostPort(hostport)
	if err != nil {
		// No port supplied: defaults to 80 per SPEC_FULL.md §6.
		return hostport, 80, nil
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, fmt.Errorf("invalid port in %q: %w", hostport, err)
	}
	return host, port, nil
}
