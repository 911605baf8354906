// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package coro

import "fmt"

// State is one of the coroutine lifecycle states.
type State int

const (
	// StateNew is the state immediately after construction.
	StateNew State = iota
	// StateReady means Start has been called; runnable at the next round.
	StateReady
	// StateRunning is held by at most one coroutine at a time, machine-wide.
	StateRunning
	// StateYielded means the coroutine called Yield, YieldValue, or Call.
	StateYielded
	// StateWaiting means the coroutine called Wait and has a pending fd.
	StateWaiting
	// StateDead is terminal; the coroutine has been removed from its machine.
	StateDead
)

func (s State) String() string {
	switch s {
	case StateNew:
		return "New"
	case StateReady:
		return "Ready"
	case StateRunning:
		return "Running"
	case StateYielded:
		return "Yielded"
	case StateWaiting:
		return "Waiting"
	case StateDead:
		return "Dead"
	default:
		return "Unknown"
	}
}

// exitSentinel is the only panic value the runtime recovers, used to
// unwind a coroutine's body from Exit without it returning to its caller.
type exitSentinel struct{}

// Coroutine is a single cooperatively-scheduled task. It executes Body on
// a dedicated goroutine, standing in for the private stack a native
// stackful-coroutine library would allocate; the rendezvous channels
// resumeSig/suspendSig guarantee only one coroutine's body is ever
// actively running at a time (see SPEC_FULL.md §4.3).
type Coroutine struct {
	id      int
	name    string
	machine *Machine
	body    func(*Coroutine)

	state         State
	stackSizeHint int
	userData      any

	started    bool
	resumeSig  chan struct{}
	suspendSig chan struct{}

	waitFD           int
	waitInterest     Interest
	observedInterest Interest

	event wakeEvent

	caller    *Coroutine
	resultSet func(any)

	lastTick  uint64
	yieldedAt string
}

// NewCoroutine constructs a coroutine bound to m, in state StateNew. The
// body runs only once Start and the scheduler have resumed it.
func NewCoroutine(m *Machine, body func(*Coroutine), opts ...CoroutineOption) (*Coroutine, error) {
	if m.closed.Load() {
		return nil, ErrMachineClosed
	}
	cfg := resolveCoroutineOptions(opts)
	if cfg.stackSize <= 0 {
		return nil, ErrInvalidStackSize
	}

	ev, err := newWakeEvent()
	if err != nil {
		return nil, err
	}

	id, err := m.allocateID()
	if err != nil {
		_ = ev.Close()
		return nil, err
	}
	name := cfg.name
	if name == "" {
		name = fmt.Sprintf("co-%d", id)
	}

	c := &Coroutine{
		id:            id,
		name:          name,
		machine:       m,
		body:          body,
		state:         StateNew,
		stackSizeHint: cfg.stackSize,
		userData:      cfg.userData,
		resumeSig:     make(chan struct{}),
		suspendSig:    make(chan struct{}),
		event:         ev,
		waitFD:        -1,
	}

	m.addCoroutine(c)
	if m.metrics != nil {
		m.metrics.recordCoroutineCreated()
	}
	logDebug(m.logger, "coroutine created", func(b builder) builder {
		return b.Str("name", c.name).Int("id", c.id)
	})
	return c, nil
}

// ID returns the coroutine's machine-unique identifier.
func (c *Coroutine) ID() int { return c.id }

// Name returns the coroutine's printable label.
func (c *Coroutine) Name() string { return c.name }

// SetName overrides the coroutine's printable label.
func (c *Coroutine) SetName(name string) { c.name = name }

// UserData returns the opaque value attached via WithUserData, if any.
func (c *Coroutine) UserData() any { return c.userData }

// SetUserData overrides the attached opaque value.
func (c *Coroutine) SetUserData(v any) { c.userData = v }

// StackSizeHint returns the stack-size hint given at construction.
func (c *Coroutine) StackSizeHint() int { return c.stackSizeHint }

// State returns the coroutine's current lifecycle state.
func (c *Coroutine) State() State { return c.state }

// Machine returns the owning scheduler.
func (c *Coroutine) Machine() *Machine { return c.machine }

// Start transitions a StateNew coroutine to StateReady, making it
// runnable at the scheduler's next round. A no-op in any other state.
func (c *Coroutine) Start() {
	if c.state == StateNew {
		c.state = StateReady
	}
}

// IsAlive reports whether other is still registered with c's machine.
// Only the machine is authoritative over liveness (see DESIGN.md, Open
// Question (a)); this is a convenience wrapper over Machine.IsAlive.
func (c *Coroutine) IsAlive(other *Coroutine) bool {
	return c.machine.IsAlive(other.id)
}

func (c *Coroutine) requireCurrent(op string) {
	if c.machine.current != c {
		panic(&MisuseError{Op: op, Message: fmt.Sprintf("coroutine %q is not the currently-running coroutine", c.name)})
	}
}

// suspend hands control back to the scheduler and blocks until resumed.
// It never fires c's own event; callers that need to (Yield) do so
// explicitly beforehand.
func (c *Coroutine) suspend(state State) {
	c.state = state
	c.suspendSig <- struct{}{}
	<-c.resumeSig
	c.state = StateRunning
}

// Yield suspends the calling coroutine, immediately making it runnable
// again: it fires its own event before suspending, so the scheduler may
// pick it up as soon as any other runnable coroutine.
func (c *Coroutine) Yield() {
	c.requireCurrent("Yield")
	c.lastTick = c.machine.tick
	c.yieldedAt = "yield"
	if err := c.event.Fire(); err != nil {
		logError(c.machine.logger, "failed to fire event on yield", err, nil)
	}
	c.suspend(StateYielded)
}

// Wait suspends the calling coroutine until fd satisfies interest (or
// reports an error/hangup condition), returning the condition observed.
func (c *Coroutine) Wait(fd int, interest Interest) Interest {
	c.requireCurrent("Wait")
	if fd < 0 {
		panic(&MisuseError{Op: "Wait", Message: "fd must be non-negative"})
	}
	c.lastTick = c.machine.tick
	c.waitFD = fd
	c.waitInterest = interest
	c.yieldedAt = fmt.Sprintf("wait(fd=%d)", fd)
	c.suspend(StateWaiting)
	result := c.observedInterest
	c.waitFD = -1
	return result
}

// Exit unwinds the calling coroutine's body immediately, transitioning it
// to StateDead without returning control to any remaining code in Body.
func (c *Coroutine) Exit() {
	c.requireCurrent("Exit")
	panic(exitSentinel{})
}

// enter is the coroutine's dedicated goroutine entry point; it blocks for
// the first resume before running Body, mirroring the scheduler's
// uniform resume() handshake for both the first and subsequent resumes.
func (c *Coroutine) enter() {
	defer c.finish()
	<-c.resumeSig
	c.body(c)
}

func (c *Coroutine) finish() {
	if r := recover(); r != nil {
		if _, ok := r.(exitSentinel); !ok {
			panic(r)
		}
	}
	c.state = StateDead
	if c.caller != nil {
		_ = c.caller.event.Fire()
		c.caller = nil
	}
	c.suspendSig <- struct{}{}
}
