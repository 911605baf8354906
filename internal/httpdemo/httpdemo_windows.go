//go:build windows

// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package httpdemo

import (
	"errors"
	"io"

	coro "github.com/joeycumines/go-coro"
)

// DefaultPort is used when ServerConfig.Port is zero.
const DefaultPort = 8080

// ServerConfig configures RunServer.
type ServerConfig struct {
	Port int
}

// ClientConfig configures RunClient.
type ClientConfig struct {
	Host string
	Port int
	Path string
	Jobs int
	Out  io.Writer
}

var errUnsupportedHost = errors.New("httpdemo: windows is not a supported host (no poll(2)-equivalent readiness gate wired up)")

// RunServer documents, rather than fakes, the same missing capability
// noted in gate_windows.go/wakeevent_windows.go: this package's demos
// need raw-fd, level-triggered readiness, which has no implementation
// here for Windows.
func RunServer(*coro.Machine, ServerConfig) (*coro.Coroutine, error) {
	return nil, errUnsupportedHost
}

// RunClient is the windows stub counterpart of RunServer.
func RunClient(*coro.Machine, ClientConfig) error {
	return errUnsupportedHost
}
