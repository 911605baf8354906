// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package coro

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

// TestMachine_ZeroCoroutines covers §8's "Zero coroutines ⇒ run returns
// immediately" boundary.
func TestMachine_ZeroCoroutines(t *testing.T) {
	m, err := NewMachine()
	require.NoError(t, err)
	defer m.Close()

	require.NoError(t, m.Run())
	assert.Equal(t, 0, m.Len())
}

// TestMachine_SingleYieldHundredTimes covers §8 scenario 1.
func TestMachine_SingleYieldHundredTimes(t *testing.T) {
	m, err := NewMachine()
	require.NoError(t, err)
	defer m.Close()

	var yields int
	c, err := NewCoroutine(m, func(c *Coroutine) {
		for i := 0; i < 100; i++ {
			c.Yield()
			yields++
		}
	})
	require.NoError(t, err)
	c.Start()

	require.NoError(t, m.Run())
	assert.Equal(t, 100, yields)
	assert.Equal(t, 0, m.Len())
}

// TestMachine_FairRoundRobin covers §8's fairness law: when every peer is
// perpetually runnable (Yielded), none is skipped more than k-1 rounds.
func TestMachine_FairRoundRobin(t *testing.T) {
	m, err := NewMachine()
	require.NoError(t, err)
	defer m.Close()

	const k = 4
	const rounds = 40
	counts := make([]int, k)
	var order []int

	for i := 0; i < k; i++ {
		i := i
		c, err := NewCoroutine(m, func(c *Coroutine) {
			for n := 0; n < rounds; n++ {
				counts[i]++
				order = append(order, i)
				c.Yield()
			}
		}, WithName(fmt.Sprintf("peer-%d", i)))
		require.NoError(t, err)
		c.Start()
	}

	require.NoError(t, m.Run())

	for i, c := range counts {
		assert.Equal(t, rounds, c, "peer %d ran %d times, want %d", i, c, rounds)
	}

	// No coroutine is skipped more than k-1 consecutive turns while all k
	// are continuously runnable: within any window of k consecutive
	// scheduling decisions, every peer appears at least once.
	for start := 0; start+k <= len(order); start++ {
		seen := make(map[int]bool, k)
		for _, id := range order[start : start+k] {
			seen[id] = true
		}
		assert.Len(t, seen, k, "window %d did not see every peer: %v", start, order[start:start+k])
	}
}

// TestMachine_PipePair covers §8 scenario 3: a writer/reader pair
// rendezvousing over a real pipe, each suspending on Wait between
// operations.
func TestMachine_PipePair(t *testing.T) {
	var fds [2]int
	require.NoError(t, unix.Pipe(fds[:]))
	readFD, writeFD := fds[0], fds[1]
	require.NoError(t, unix.SetNonblock(readFD, true))
	require.NoError(t, unix.SetNonblock(writeFD, true))

	m, err := NewMachine()
	require.NoError(t, err)
	defer m.Close()

	const lines = 20
	writer, err := NewCoroutine(m, func(c *Coroutine) {
		defer unix.Close(writeFD)
		for i := 0; i < lines; i++ {
			msg := []byte(fmt.Sprintf("FOO %d\n", i))
			for len(msg) > 0 {
				c.Wait(writeFD, Writable)
				n, err := unix.Write(writeFD, msg)
				if err != nil {
					if err == unix.EAGAIN {
						continue
					}
					return
				}
				msg = msg[n:]
			}
			c.Yield()
		}
	}, WithName("writer"))
	require.NoError(t, err)

	var output []byte
	reader, err := NewCoroutine(m, func(c *Coroutine) {
		defer unix.Close(readFD)
		buf := make([]byte, 4096)
		for {
			c.Wait(readFD, Readable)
			n, err := unix.Read(readFD, buf)
			if err != nil {
				if err == unix.EAGAIN {
					continue
				}
				return
			}
			if n == 0 {
				output = append(output, []byte("EOF\n")...)
				return
			}
			output = append(output, buf[:n]...)
		}
	}, WithName("reader"))
	require.NoError(t, err)

	writer.Start()
	reader.Start()
	require.NoError(t, m.Run())

	var want []byte
	for i := 0; i < lines; i++ {
		want = append(want, []byte(fmt.Sprintf("FOO %d\n", i))...)
	}
	want = append(want, []byte("EOF\n")...)
	assert.Equal(t, string(want), string(output))
}

// TestMachine_StopInterruptsBlockedWait covers §8 scenario 6: a
// coroutine blocked forever on a descriptor that never fires is left
// behind when Stop breaks the poll.
func TestMachine_StopInterruptsBlockedWait(t *testing.T) {
	var fds [2]int
	require.NoError(t, unix.Pipe(fds[:]))
	readFD, writeFD := fds[0], fds[1]
	defer unix.Close(writeFD)
	require.NoError(t, unix.SetNonblock(readFD, true))

	m, err := NewMachine()
	require.NoError(t, err)

	blocked, err := NewCoroutine(m, func(c *Coroutine) {
		c.Wait(readFD, Readable) // never becomes ready in this test
	}, WithName("blocked"))
	require.NoError(t, err)
	blocked.Start()

	stopper, err := NewCoroutine(m, func(c *Coroutine) {
		c.Yield() // let blocked register its Wait first
		m.Stop()
	}, WithName("stopper"))
	require.NoError(t, err)
	stopper.Start()

	require.NoError(t, m.Run())

	assert.Equal(t, StateWaiting, blocked.State())
	assert.True(t, m.IsAlive(blocked.ID()))
	assert.NoError(t, m.Close())
	unix.Close(readFD)
}

// TestMachine_Show exercises the diagnostic listing described in §4.2.
func TestMachine_Show(t *testing.T) {
	m, err := NewMachine()
	require.NoError(t, err)
	defer m.Close()

	c, err := NewCoroutine(m, func(c *Coroutine) {
		c.Yield()
	}, WithName("diag"))
	require.NoError(t, err)
	c.Start()

	var buf bytes.Buffer
	require.NoError(t, m.Show(&buf))
	assert.Contains(t, buf.String(), "diag")
	assert.Contains(t, buf.String(), "Ready")
}

// TestMachine_Metrics checks the coarse counters increment as coroutines
// are created, switched, and destroyed.
func TestMachine_Metrics(t *testing.T) {
	m, err := NewMachine(WithMachineMetrics(true))
	require.NoError(t, err)
	defer m.Close()

	c, err := NewCoroutine(m, func(c *Coroutine) {
		c.Yield()
	})
	require.NoError(t, err)
	c.Start()

	require.NoError(t, m.Run())

	snap := m.Metrics().Snapshot()
	assert.Equal(t, uint64(1), snap.CoroutinesCreated)
	assert.Equal(t, uint64(1), snap.CoroutinesDestroyed)
	assert.GreaterOrEqual(t, snap.ContextSwitches, uint64(2))
	assert.GreaterOrEqual(t, snap.Ticks, uint64(1))
}
