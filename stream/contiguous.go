// Copyright 2025 dacapoday
// SPDX-License-Identifier: Apache-2.0

package stream

import (
	"github.com/dacapoday/msf"
)

// tryReadContiguously answers the read with one reference into the container
// when every block the range touches directly follows the previous one in
// the container. For example, a 10k read with a 4k block size is served
// without copying if three blocks in a row are consecutive.
//
// It never mutates the stream. ok is false when the blocks are not
// consecutive or the container read fails; the caller then falls back to
// the cache.
func (s *MappedBlockStream[C]) tryReadContiguously(offset uint32, size uint32) (buffer []byte, ok bool) {
	if size == 0 {
		return []byte{}, true
	}

	blockNum := offset / s.blockSize
	offsetInBlock := offset % s.blockSize
	bytesFromFirstBlock := min(size, s.blockSize-offsetInBlock)
	span := 1 + msf.BytesToBlocks(size-bytesFromFirstBlock, s.blockSize)

	if !consecutive(s.layout.Blocks, blockNum, span) {
		return
	}

	addr, err := s.blockAddress(blockNum, offsetInBlock)
	if err != nil {
		return
	}
	data, err := s.data.ReadBytes(addr, size)
	if err != nil {
		logger.Debugf("contiguous read [%d, +%d) failed, falling back: %v", offset, size, err)
		return
	}
	if uint32(len(data)) < size {
		return
	}
	return data[:size:size], true
}

// consecutive reports whether blocks[first:first+span] is a run of
// container indices each exactly one greater than the previous.
func consecutive(blocks []uint32, first, span uint32) bool {
	if uint64(first)+uint64(span) > uint64(len(blocks)) {
		return false
	}
	run := blocks[first : first+span]
	for i := 1; i < len(run); i++ {
		if uint64(run[i]) != uint64(run[i-1])+1 {
			return false
		}
	}
	return true
}

// ReadLongestContiguousChunk returns the bytes from offset up to the end of
// the run of consecutive container blocks that contains offset, or up to the
// end of the stream, whichever comes first. No copy is made.
func (s *MappedBlockStream[C]) ReadLongestContiguousChunk(offset uint32) (buffer []byte, err error) {
	length := s.layout.Length
	if offset >= length {
		err = msf.OutOfBounds(offset, 1, length)
		return
	}

	first := offset / s.blockSize
	lastNeeded := (length - 1) / s.blockSize
	last := first
	for last < lastNeeded && int(last+1) < len(s.layout.Blocks) &&
		uint64(s.layout.Blocks[last+1]) == uint64(s.layout.Blocks[last])+1 {
		last++
	}

	offsetInFirstBlock := offset % s.blockSize
	byteSpan := uint64(s.blockSize-offsetInFirstBlock) + uint64(last-first)*uint64(s.blockSize)
	byteSpan = min(byteSpan, uint64(length-offset))

	addr, err := s.blockAddress(first, offsetInFirstBlock)
	if err != nil {
		return
	}
	data, err := s.data.ReadBytes(addr, uint32(byteSpan))
	if err != nil {
		err = msf.WrapIO("read", addr, err)
		return
	}
	if uint64(len(data)) < byteSpan {
		err = msf.WrapIO("read", addr, errShortRead(len(data), byteSpan))
		return
	}
	buffer = data[:byteSpan:byteSpan]
	return
}
