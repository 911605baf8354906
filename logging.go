// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package coro

import (
	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// Logger is the type-erased logiface logger used throughout the runtime.
// Using logiface.Event rather than a concrete event type lets callers plug
// in any backend (stumpy, or any other logiface implementation) via
// WithMachineLogger, while the default (see newDefaultLogger) is stumpy.
type Logger = *logiface.Logger[logiface.Event]

// builder is the generified logiface builder type returned by Logger's
// level methods (Debug, Err, ...), used as the parameter type for the
// optional field-attaching callbacks passed to logDebug/logError.
type builder = *logiface.Builder[logiface.Event]

// newDefaultLogger builds the package default: a stumpy JSON logger at
// informational level, generified to logiface.Event so it can be stored
// on Machine without making the whole package generic.
func newDefaultLogger() Logger {
	return stumpy.L.New(
		stumpy.L.WithLevel(logiface.LevelInformational),
	).Logger()
}

func logDebug(l Logger, msg string, fields func(b builder) builder) {
	if l == nil {
		return
	}
	b := l.Debug()
	if fields != nil {
		b = fields(b)
	}
	b.Log(msg)
}

func logError(l Logger, msg string, err error, fields func(b builder) builder) {
	if l == nil {
		return
	}
	b := l.Err()
	if err != nil {
		b = b.Err(err)
	}
	if fields != nil {
		b = fields(b)
	}
	b.Log(msg)
}
