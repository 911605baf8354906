// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package coro

import "testing"

func TestIDAllocator_LowestFreeSlot(t *testing.T) {
	var a idAllocator

	ids := make([]int, 5)
	for i := range ids {
		id, err := a.allocate()
		if err != nil {
			t.Fatalf("allocate() error = %v", err)
		}
		ids[i] = id
	}
	for i, id := range ids {
		if id != i {
			t.Fatalf("ids[%d] = %d, want %d", i, id, i)
		}
	}

	a.release(ids[2])
	if !a.inUse(ids[0]) || a.inUse(ids[2]) {
		t.Fatalf("release did not clear the expected bit")
	}

	reused, err := a.allocate()
	if err != nil {
		t.Fatalf("allocate() error = %v", err)
	}
	if reused != ids[2] {
		t.Fatalf("allocate() = %d, want reused lowest free id %d", reused, ids[2])
	}
}

func TestIDAllocator_GrowsAcrossWords(t *testing.T) {
	var a idAllocator
	var last int
	for i := 0; i < 130; i++ {
		id, err := a.allocate()
		if err != nil {
			t.Fatalf("allocate() error = %v", err)
		}
		last = id
	}
	if last != 129 {
		t.Fatalf("allocate() after 130 calls = %d, want 129", last)
	}
	if !a.inUse(0) || !a.inUse(129) {
		t.Fatalf("expected both boundary ids in use")
	}

	a.release(64)
	reused, err := a.allocate()
	if err != nil {
		t.Fatalf("allocate() error = %v", err)
	}
	if reused != 64 {
		t.Fatalf("allocate() did not reuse freed id in the second word")
	}
}

func TestIDAllocator_ReleaseUnallocatedIsNoop(t *testing.T) {
	var a idAllocator
	a.release(5) // never allocated, and beyond the (empty) bitset
	if a.inUse(5) {
		t.Fatalf("inUse(5) = true after releasing an id that was never allocated")
	}
}

func TestIDAllocator_ExhaustionReturnsErrNoFreeID(t *testing.T) {
	var a idAllocator
	a.next = maxCoroutineID
	if _, err := a.allocate(); err != ErrNoFreeID {
		t.Fatalf("allocate() error = %v, want ErrNoFreeID", err)
	}
}
