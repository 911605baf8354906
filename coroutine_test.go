// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package coro

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoroutine_DefaultName(t *testing.T) {
	m, err := NewMachine()
	require.NoError(t, err)
	defer m.Close()

	c, err := NewCoroutine(m, func(*Coroutine) {})
	require.NoError(t, err)
	assert.Equal(t, "co-0", c.Name())
	assert.Equal(t, 0, c.ID())
	assert.Equal(t, StateNew, c.State())
}

func TestCoroutine_ZeroStackSizeRejected(t *testing.T) {
	m, err := NewMachine()
	require.NoError(t, err)
	defer m.Close()

	_, err = NewCoroutine(m, func(*Coroutine) {}, WithStackSize(0))
	assert.ErrorIs(t, err, ErrInvalidStackSize)
}

func TestCoroutine_LifecycleAndIDReuse(t *testing.T) {
	m, err := NewMachine()
	require.NoError(t, err)
	defer m.Close()

	var states []State
	c, err := NewCoroutine(m, func(c *Coroutine) {
		states = append(states, c.State())
		c.Yield()
		states = append(states, c.State())
	})
	require.NoError(t, err)
	firstID := c.ID()
	c.Start()

	require.NoError(t, m.Run())
	assert.Equal(t, []State{StateRunning, StateRunning}, states)
	assert.Equal(t, 0, m.Len())
	assert.False(t, m.IsAlive(firstID))

	// The id must be reused by the next coroutine, per the spec's
	// "after a coroutine dies, its id becomes allocatable again".
	c2, err := NewCoroutine(m, func(*Coroutine) {})
	require.NoError(t, err)
	assert.Equal(t, firstID, c2.ID())
	c2.Start()
	require.NoError(t, m.Run())
}

func TestCoroutine_Exit(t *testing.T) {
	m, err := NewMachine()
	require.NoError(t, err)
	defer m.Close()

	ranAfterExit := false
	c, err := NewCoroutine(m, func(c *Coroutine) {
		c.Exit()
		ranAfterExit = true
	})
	require.NoError(t, err)
	c.Start()

	require.NoError(t, m.Run())
	assert.False(t, ranAfterExit)
	assert.Equal(t, 0, m.Len())
}

func TestCoroutine_YieldOutsideCurrentPanics(t *testing.T) {
	m, err := NewMachine()
	require.NoError(t, err)
	defer m.Close()

	c, err := NewCoroutine(m, func(*Coroutine) {})
	require.NoError(t, err)

	assert.Panics(t, func() { c.Yield() })
}

func TestCoroutine_WaitNegativeFDPanics(t *testing.T) {
	m, err := NewMachine()
	require.NoError(t, err)
	defer m.Close()

	// Wait's misuse panic fires on the coroutine's own dedicated
	// goroutine; recover it from within Body (as a real caller guarding
	// against misuse would) rather than across goroutines, since an
	// unrecovered panic on a non-test goroutine would crash the binary.
	panics := make(chan any, 1)
	c, err := NewCoroutine(m, func(c *Coroutine) {
		defer func() { panics <- recover() }()
		c.Wait(-1, Readable)
	})
	require.NoError(t, err)
	c.Start()
	require.NoError(t, m.Run())

	got := <-panics
	require.NotNil(t, got)
	_, ok := got.(*MisuseError)
	assert.True(t, ok)
}

func TestCoroutine_UserData(t *testing.T) {
	m, err := NewMachine()
	require.NoError(t, err)
	defer m.Close()

	c, err := NewCoroutine(m, func(*Coroutine) {}, WithUserData(42))
	require.NoError(t, err)
	assert.Equal(t, 42, c.UserData())
	c.SetUserData("changed")
	assert.Equal(t, "changed", c.UserData())
}
