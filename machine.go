// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package coro

import (
	"fmt"
	"io"
	"sort"
	"sync/atomic"
)

// Machine is the scheduler: it owns a set of Coroutine instances, the
// shared readiness gate, and the tick counter used for fair selection.
// At most one Coroutine body is ever actively running at a time; Run
// drives the main loop described in SPEC_FULL.md §4.2 until membership
// drains or Stop is called.
type Machine struct {
	membership []*Coroutine
	byID       map[int]*Coroutine
	idAlloc    idAllocator

	gate      gate
	interrupt wakeEvent

	// running and closed are read from Run's loop (the scheduler
	// goroutine) but written from Stop/Close, which SPEC_FULL.md §5
	// documents as safe to call from another goroutine — the eventfd/pipe
	// fire-poll-read round trip is an OS-level barrier, not one the Go
	// memory model recognizes, so these need their own synchronization.
	running atomic.Bool
	closed  atomic.Bool

	current *Coroutine
	tick    uint64

	logger  Logger
	metrics *Metrics

	entries []pollEntry
	blocked []*Coroutine
}

// NewMachine constructs a Machine with no coroutines, ready for
// NewCoroutine and Run.
func NewMachine(opts ...MachineOption) (*Machine, error) {
	cfg := resolveMachineOptions(opts)

	g, err := newGate()
	if err != nil {
		return nil, err
	}
	interrupt, err := newWakeEvent()
	if err != nil {
		_ = g.close()
		return nil, err
	}

	m := &Machine{
		byID:      make(map[int]*Coroutine),
		gate:      g,
		interrupt: interrupt,
		logger:    cfg.logger,
	}
	if cfg.metricsEnabled {
		m.metrics = newMetrics()
	}
	return m, nil
}

// Logger returns the structured logger this machine (and its coroutines)
// log through.
func (m *Machine) Logger() Logger { return m.logger }

// Metrics returns the machine's counters, or nil if WithMachineMetrics
// was not supplied at construction.
func (m *Machine) Metrics() *Metrics { return m.metrics }

// Current returns the coroutine presently executing, or nil if the
// scheduler itself holds control (between rounds, or before Run starts).
func (m *Machine) Current() *Coroutine { return m.current }

// Len reports the number of coroutines still registered with the machine.
func (m *Machine) Len() int { return len(m.membership) }

// IsAlive reports whether a coroutine with the given id is still
// registered with the machine. Per DESIGN.md's resolution of Open
// Question (a), only the machine is authoritative over liveness.
func (m *Machine) IsAlive(id int) bool {
	_, ok := m.byID[id]
	return ok
}

// allocateID returns the lowest free id and marks it in-use, or
// ErrNoFreeID once the allocator's id space is exhausted.
func (m *Machine) allocateID() (int, error) {
	return m.idAlloc.allocate()
}

// addCoroutine registers c in insertion order.
func (m *Machine) addCoroutine(c *Coroutine) {
	m.membership = append(m.membership, c)
	m.byID[c.id] = c
}

// removeCoroutine drops c from membership, releases its id, and closes
// its event, in the same step per the spec's invariant that a Dead
// coroutine's removal and id release are atomic (there being only one
// goroutine, the scheduler, ever mutating machine state, this needs no
// locking).
func (m *Machine) removeCoroutine(c *Coroutine) {
	for i, other := range m.membership {
		if other == c {
			m.membership = append(m.membership[:i], m.membership[i+1:]...)
			break
		}
	}
	delete(m.byID, c.id)
	m.idAlloc.release(c.id)
	_ = c.event.Close()
	if m.metrics != nil {
		m.metrics.recordCoroutineDestroyed()
	}
}

// Run drives the scheduling loop until membership is empty or Stop is
// invoked. It returns immediately if the machine has no coroutines.
func (m *Machine) Run() error {
	if m.closed.Load() {
		return ErrMachineClosed
	}
	m.running.Store(true)
	for m.running.Load() && len(m.membership) > 0 {
		chosen, observed, err := m.selectRunnable()
		if err != nil {
			return err
		}
		if !m.running.Load() {
			return nil
		}
		if chosen == nil {
			continue
		}
		m.resume(chosen, observed)
	}
	return nil
}

// Stop requests that Run exit at its next opportunity: it clears the
// running flag and fires the interrupt event so a blocked poll wakes
// immediately. Safe to call from any goroutine, including from within a
// running coroutine's body; the coroutine must still reach a suspension
// point for the loop to notice.
func (m *Machine) Stop() {
	m.running.Store(false)
	if err := m.interrupt.Fire(); err != nil {
		logError(m.logger, "failed to fire interrupt event", err, nil)
	}
}

// Close tears down the machine's own resources (interrupt event,
// readiness gate) and releases bookkeeping for any coroutines still
// registered. Coroutine bodies parked on a suspended goroutine are not
// forcibly unwound — Go offers no mechanism to preempt a blocked
// goroutine — so a body left waiting past Close leaks its goroutine; this
// mirrors the spec's silence on destructing a coroutine whose body is
// mid-execution, and is the documented cost of the goroutine-rendezvous
// substitution for a raw stack (see DESIGN.md).
func (m *Machine) Close() error {
	m.closed.Store(true)
	for _, c := range m.membership {
		_ = c.event.Close()
	}
	m.membership = nil
	m.byID = make(map[int]*Coroutine)
	m.idAlloc = idAllocator{}
	if err := m.interrupt.Close(); err != nil {
		return err
	}
	return m.gate.close()
}

// Show writes a diagnostic listing of every registered coroutine to w:
// id, name, state, and the last suspension site.
func (m *Machine) Show(w io.Writer) error {
	for _, c := range m.membership {
		if _, err := fmt.Fprintf(w, "co-%d\t%s\t%s\t%s\n", c.id, c.name, c.state, c.yieldedAt); err != nil {
			return err
		}
	}
	return nil
}

// resume hands control to c: launching its body goroutine on first entry,
// then rendezvousing via resumeSig/suspendSig until c next suspends or
// terminates. observed is stashed on c before resuming so a Waiting
// coroutine's Wait call returns the condition the poll actually saw.
func (m *Machine) resume(c *Coroutine, observed Interest) {
	c.observedInterest = observed
	if !c.started {
		c.started = true
		go c.enter()
	}
	c.state = StateRunning
	m.current = c
	c.resumeSig <- struct{}{}
	<-c.suspendSig
	m.current = nil
	if m.metrics != nil {
		m.metrics.recordContextSwitch()
	}
	if c.state == StateDead {
		logDebug(m.logger, "coroutine dead", func(b builder) builder {
			return b.Str("name", c.name).Int("id", c.id)
		})
		m.removeCoroutine(c)
	}
}

// selectRunnable implements SPEC_FULL.md §4.2's select-runnable: build the
// readiness array, pre-fire Ready coroutines' events, poll, and fairly
// pick one runnable coroutine (nil, 0, nil if none and the loop should
// simply continue — e.g. a round that only woke the interrupt event
// without a stop request).
func (m *Machine) selectRunnable() (*Coroutine, Interest, error) {
	m.entries = m.entries[:0]
	m.blocked = m.blocked[:0]
	m.entries = append(m.entries, pollEntry{fd: m.interrupt.FD(), request: Readable})

	for _, c := range m.membership {
		switch c.state {
		case StateNew, StateRunning, StateDead:
			continue
		case StateWaiting:
			m.entries = append(m.entries, pollEntry{fd: c.waitFD, request: c.waitInterest})
			m.blocked = append(m.blocked, c)
		default: // StateReady, StateYielded
			if c.state == StateReady {
				if err := c.event.Fire(); err != nil {
					return nil, 0, err
				}
			}
			m.entries = append(m.entries, pollEntry{fd: c.event.FD(), request: Readable})
			m.blocked = append(m.blocked, c)
		}
	}

	observed, err := m.gate.poll(m.entries)
	if err != nil {
		return nil, 0, err
	}
	m.tick++
	if m.metrics != nil {
		m.metrics.recordTick()
	}

	if observed[0] != 0 {
		if err := m.interrupt.Clear(); err != nil {
			return nil, 0, err
		}
		if !m.running.Load() {
			return nil, 0, nil
		}
	}

	type candidate struct {
		c        *Coroutine
		interest Interest
	}
	var runnable []candidate
	for i, c := range m.blocked {
		interest := observed[i+1]
		if interest != 0 {
			runnable = append(runnable, candidate{c: c, interest: interest})
		}
	}
	if len(runnable) == 0 {
		return nil, 0, nil
	}

	sort.SliceStable(runnable, func(i, j int) bool {
		di := m.tick - runnable[i].c.lastTick
		dj := m.tick - runnable[j].c.lastTick
		return di > dj
	})

	chosen := runnable[0]
	if chosen.c.state != StateWaiting {
		if err := chosen.c.event.Clear(); err != nil {
			return nil, 0, err
		}
	}
	return chosen.c, chosen.interest, nil
}
