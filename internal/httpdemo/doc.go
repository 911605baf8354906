// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

// Package httpdemo implements the two illustrative applications named in
// SPEC_FULL.md §6: a single-threaded HTTP/1.1 GET-only server and a
// concurrent HTTP/1.1 GET-only client, both built directly on
// github.com/joeycumines/go-coro rather than net/http, so every blocking
// point in the wire protocol is an explicit Coroutine.Wait call driven by
// the runtime's own readiness gate.
package httpdemo
