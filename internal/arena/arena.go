// Copyright 2025 dacapoday
// SPDX-License-Identifier: Apache-2.0

// Package arena implements an append-only buffer pool.
//
// Buffers are carved out of large slabs. A slab is never resized, moved or
// reused while the Arena holds it, so every buffer handed out keeps its
// address until Reset.
package arena

// SlabSize is the capacity of a regular slab.
const SlabSize = 64 * 1024

// requests above this size get a slab of their own
const largeThreshold = SlabSize / 4

const align = 8

// Arena is an append-only allocator. The zero value is ready to use.
// It is not safe for concurrent use.
type Arena struct {
	slabs     [][]byte
	current   []byte // len is the used prefix of the last regular slab
	allocated uint64
}

// Allocate returns a zeroed buffer of exactly size bytes.
// The buffer's capacity equals its length, so appending to it never
// spills into a neighbouring allocation.
func (arena *Arena) Allocate(size int) (buffer []byte) {
	if size < 0 {
		panic("arena.Allocate: negative size")
	}
	if size == 0 {
		return []byte{}
	}
	arena.allocated += uint64(size)

	if size > largeThreshold {
		buffer = make([]byte, size)
		arena.slabs = append(arena.slabs, buffer)
		return
	}

	padded := (size + align - 1) &^ (align - 1)
	if cap(arena.current)-len(arena.current) < padded {
		arena.current = make([]byte, 0, SlabSize)
		arena.slabs = append(arena.slabs, arena.current[:SlabSize])
	}
	beg := len(arena.current)
	arena.current = arena.current[:beg+padded]
	return arena.current[beg : beg+size : beg+size]
}

// BytesAllocated returns the number of bytes handed out since the last Reset.
func (arena *Arena) BytesAllocated() uint64 {
	return arena.allocated
}

// Slabs returns the number of slabs currently owned.
func (arena *Arena) Slabs() int {
	return len(arena.slabs)
}

// Reset drops every slab. Buffers handed out earlier remain readable by
// whoever still references them, but the Arena no longer tracks them.
func (arena *Arena) Reset() {
	arena.slabs = nil
	arena.current = nil
	arena.allocated = 0
}
