// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package coro

// DefaultStackSize is used when a coroutine is constructed without an
// explicit WithStackSize option. It has no effect on the actual Go
// goroutine stack (which grows on demand); it exists for API parity and
// is exposed via Coroutine.StackSizeHint for bodies that size their own
// scratch buffers.
const DefaultStackSize = 8 * 1024

// machineOptions holds configuration resolved by NewMachine.
type machineOptions struct {
	logger         Logger
	metricsEnabled bool
}

// MachineOption configures a Machine at construction.
type MachineOption interface {
	applyMachine(*machineOptions)
}

type machineOptionFunc func(*machineOptions)

func (f machineOptionFunc) applyMachine(o *machineOptions) { f(o) }

// WithMachineLogger overrides the default stumpy-backed logger.
func WithMachineLogger(l Logger) MachineOption {
	return machineOptionFunc(func(o *machineOptions) {
		o.logger = l
	})
}

// WithMachineMetrics enables coarse scheduler metrics collection,
// retrievable via Machine.Metrics.
func WithMachineMetrics(enabled bool) MachineOption {
	return machineOptionFunc(func(o *machineOptions) {
		o.metricsEnabled = enabled
	})
}

func resolveMachineOptions(opts []MachineOption) *machineOptions {
	cfg := &machineOptions{
		logger: newDefaultLogger(),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt.applyMachine(cfg)
	}
	return cfg
}

// coroutineOptions holds configuration resolved by NewCoroutine.
type coroutineOptions struct {
	name      string
	stackSize int
	userData  any
}

// CoroutineOption configures a Coroutine at construction.
type CoroutineOption interface {
	applyCoroutine(*coroutineOptions)
}

type coroutineOptionFunc func(*coroutineOptions)

func (f coroutineOptionFunc) applyCoroutine(o *coroutineOptions) { f(o) }

// WithName overrides the default "co-<id>" coroutine name.
func WithName(name string) CoroutineOption {
	return coroutineOptionFunc(func(o *coroutineOptions) {
		o.name = name
	})
}

// WithStackSize sets the stack-size hint (see DefaultStackSize). A value
// of zero is rejected by NewCoroutine with ErrInvalidStackSize.
func WithStackSize(size int) CoroutineOption {
	return coroutineOptionFunc(func(o *coroutineOptions) {
		o.stackSize = size
	})
}

// WithUserData attaches an opaque value retrievable via Coroutine.UserData.
func WithUserData(v any) CoroutineOption {
	return coroutineOptionFunc(func(o *coroutineOptions) {
		o.userData = v
	})
}

func resolveCoroutineOptions(opts []CoroutineOption) *coroutineOptions {
	cfg := &coroutineOptions{
		stackSize: DefaultStackSize,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt.applyCoroutine(cfg)
	}
	return cfg
}
