// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package coro

// Metrics holds coarse scheduler counters, enabled via WithMachineMetrics.
// Unlike the teacher's cache-line-padded, atomic FastPoller counters (that
// package assumes concurrent multi-goroutine submission), this scheduler
// has exactly one goroutine touching these fields at a time, so plain
// uint64s suffice.
type Metrics struct {
	CoroutinesCreated   uint64
	CoroutinesDestroyed uint64
	ContextSwitches     uint64
	Ticks               uint64
}

func newMetrics() *Metrics {
	return &Metrics{}
}

func (m *Metrics) recordCoroutineCreated() {
	if m == nil {
		return
	}
	m.CoroutinesCreated++
}

func (m *Metrics) recordCoroutineDestroyed() {
	if m == nil {
		return
	}
	m.CoroutinesDestroyed++
}

func (m *Metrics) recordContextSwitch() {
	if m == nil {
		return
	}
	m.ContextSwitches++
}

func (m *Metrics) recordTick() {
	if m == nil {
		return
	}
	m.Ticks++
}

// Snapshot returns a copy of the current counters.
func (m *Metrics) Snapshot() Metrics {
	if m == nil {
		return Metrics{}
	}
	return *m
}
