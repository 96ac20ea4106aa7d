// Copyright 2025 dacapoday
// SPDX-License-Identifier: Apache-2.0

package stream

import (
	"github.com/dacapoday/msf/internal/interval"
)

// cacheMap maps a stream offset to the buffers materialized at that offset.
// A buffer is only added after every existing one at the same offset proved
// too small, so each list grows in size from front to back.
type cacheMap map[uint32][][]byte

func (cache cacheMap) insert(offset uint32, buffer []byte) {
	cache[offset] = append(cache[offset], buffer)
}

// lookup returns a cached slice holding [offset, offset+size), or nil.
//
// A buffer starting exactly at offset is preferred. Otherwise the first
// buffer found whose range contains the request is used; map iteration
// order decides which one, not the tightest fit.
func (cache cacheMap) lookup(offset uint32, size uint32) []byte {
	for _, entry := range cache[offset] {
		if uint32(len(entry)) >= size {
			return entry[:size:size]
		}
	}

	request := interval.Of(offset, int(size))
	for start, entries := range cache {
		if start == offset || uint64(start) >= request.End || len(entries) == 0 {
			continue
		}
		// the last buffer is the largest one at this offset
		entry := entries[len(entries)-1]
		cached := interval.Of(start, len(entry))
		if !interval.Contains(cached, request) {
			continue
		}
		beg := interval.AbsoluteDifference(request.Begin, cached.Begin)
		end := beg + request.Len()
		return entry[beg:end:end]
	}
	return nil
}

// fixup copies data, just written at offset, into the overlapping part of
// every cached buffer. It returns how many buffers were touched.
func (cache cacheMap) fixup(offset uint32, data []byte) (patched int) {
	written := interval.Of(offset, len(data))
	for start, entries := range cache {
		if uint64(start) >= written.End {
			continue
		}
		for _, entry := range entries {
			cached := interval.Of(start, len(entry))
			if !interval.Overlaps(written, cached) {
				continue
			}
			overlap := interval.Intersect(written, cached)
			src := interval.AbsoluteDifference(overlap.Begin, written.Begin)
			dst := interval.AbsoluteDifference(overlap.Begin, cached.Begin)
			copy(entry[dst:dst+overlap.Len()], data[src:src+overlap.Len()])
			patched++
		}
	}
	return
}
