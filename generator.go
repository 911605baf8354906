// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package coro

// Call invokes callee as a generator, suspending the calling coroutine c
// until callee either produces a value via YieldValue (written to *dst,
// returns true) or terminates (returns false). Exactly one value is ever
// in flight; there is no buffering (see SPEC_FULL.md §4.5).
//
// dst may be nil if only the liveness signal matters.
func Call[T any](c *Coroutine, callee *Coroutine, dst *T) bool {
	c.requireCurrent("Call")
	if callee.machine != c.machine {
		panic(&MisuseError{Op: "Call", Message: "callee belongs to a different machine"})
	}

	callee.caller = c
	var written bool
	callee.resultSet = func(v any) {
		if dst != nil {
			*dst = v.(T)
		}
		written = true
	}

	if callee.state == StateNew {
		callee.Start()
	} else if err := callee.event.Fire(); err != nil {
		logError(c.machine.logger, "failed to fire callee event on call", err, nil)
	}

	c.lastTick = c.machine.tick
	c.yieldedAt = "call"
	c.suspend(StateYielded)

	callee.caller = nil
	callee.resultSet = nil
	return written
}

// YieldValue delivers v to the coroutine that invoked c via Call, then
// suspends c without firing its own event: c stays parked until the next
// Call targets it. Panics if c was not entered through Call.
func YieldValue[T any](c *Coroutine, v T) {
	c.requireCurrent("YieldValue")
	if c.caller == nil {
		panic(&MisuseError{Op: "YieldValue", Message: "coroutine has no active caller"})
	}

	caller := c.caller
	if c.resultSet != nil {
		c.resultSet(v)
	}
	if err := caller.event.Fire(); err != nil {
		logError(c.machine.logger, "failed to fire caller event on yield_value", err, nil)
	}

	c.lastTick = c.machine.tick
	c.yieldedAt = "yield_value"
	c.suspend(StateYielded)
}
