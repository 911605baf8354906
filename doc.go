// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

// Package coro implements a single-threaded, non-preemptive coroutine
// runtime: stackful tasks that cooperatively yield to a scheduler, either
// unconditionally or pending readiness of a file descriptor.
//
// A [Machine] owns the scheduling loop and a set of [Coroutine] instances.
// Coroutine bodies run on their own goroutine, but the runtime guarantees
// that at most one body is ever actively executing at a time: control is
// handed back and forth through a rendezvous, the same discipline a
// stackful-coroutine library enforces with a raw stack swap. [Machine.Run]
// polls every blocked coroutine's descriptor (or internal wakeup event) in
// one call, then resumes whichever coroutine has waited longest.
//
// The generator protocol ([Call] and [YieldValue]) lets one coroutine act
// as a producer for another, passing exactly one typed value per
// rendezvous with no buffering.
package coro
