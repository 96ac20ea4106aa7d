// Copyright 2025 dacapoday
// SPDX-License-Identifier: Apache-2.0

package stream

import (
	"github.com/dacapoday/msf"
)

var _ WritableByteStream = (*WritableMappedBlockStream[msf.WritableContainer])(nil)

// WritableMappedBlockStream adds writes to a MappedBlockStream. All reads,
// addressing and caching are delegated to the embedded read-only stream, so
// reads through either facet see one cache and writes keep it coherent.
//
// Buffers served from the cache always observe later writes. References
// served by the contiguous path are only as coherent as the container's
// ReadBytes: views (mem.File within one segment, file.Map) observe later
// writes, while copies (file.Adapter, mem.File across segments) keep the
// bytes they were read with.
type WritableMappedBlockStream[C msf.WritableContainer] struct {
	read MappedBlockStream[C]
}

// NewWritable returns a writable stream over the blocks listed in layout.
func NewWritable[C msf.WritableContainer](blockSize, numBlocks uint32, layout msf.StreamLayout, data C) (*WritableMappedBlockStream[C], error) {
	s := new(WritableMappedBlockStream[C])
	if err := s.read.init(blockSize, numBlocks, layout, data); err != nil {
		return nil, err
	}
	return s, nil
}

// NewWritableIndexed returns the writable stream at index of the container directory.
func NewWritableIndexed[C msf.WritableContainer](layout *msf.Layout, data C, index int) (*WritableMappedBlockStream[C], error) {
	sl, err := layout.Stream(index)
	if err != nil {
		return nil, err
	}
	return NewWritable(layout.SuperBlock.BlockSize, layout.SuperBlock.NumBlocks, sl, data)
}

// NewWritableDirectory returns the writable stream holding the container directory.
func NewWritableDirectory[C msf.WritableContainer](layout *msf.Layout, data C) (*WritableMappedBlockStream[C], error) {
	return NewWritable(layout.SuperBlock.BlockSize, layout.SuperBlock.NumBlocks, layout.Directory(), data)
}

// ReadOnly returns the read facet sharing this stream's layout and cache.
func (s *WritableMappedBlockStream[C]) ReadOnly() *MappedBlockStream[C] {
	return &s.read
}

func (s *WritableMappedBlockStream[C]) BlockSize() uint32 {
	return s.read.BlockSize()
}

func (s *WritableMappedBlockStream[C]) NumBlocks() uint32 {
	return s.read.NumBlocks()
}

func (s *WritableMappedBlockStream[C]) Layout() msf.StreamLayout {
	return s.read.Layout()
}

func (s *WritableMappedBlockStream[C]) Length() uint32 {
	return s.read.Length()
}

func (s *WritableMappedBlockStream[C]) BytesCopied() uint64 {
	return s.read.BytesCopied()
}

func (s *WritableMappedBlockStream[C]) ReadBytes(offset uint32, size uint32) ([]byte, error) {
	return s.read.ReadBytes(offset, size)
}

func (s *WritableMappedBlockStream[C]) ReadInto(offset uint32, dest []byte) error {
	return s.read.ReadInto(offset, dest)
}

func (s *WritableMappedBlockStream[C]) ReadLongestContiguousChunk(offset uint32) ([]byte, error) {
	return s.read.ReadLongestContiguousChunk(offset)
}

func (s *WritableMappedBlockStream[C]) InvalidateCache() {
	s.read.InvalidateCache()
}

// WriteBytes stores data at offset, issuing one container write per block
// segment, then patches every cached buffer the write overlaps.
//
// A failed segment write is returned as is: segments written before it are
// not rolled back, and the cache is left untouched.
func (s *WritableMappedBlockStream[C]) WriteBytes(offset uint32, data []byte) (err error) {
	if err = s.read.checkBounds(offset, len(data)); err != nil {
		return
	}

	blockSize := s.read.blockSize
	blockNum := offset / blockSize
	offsetInBlock := offset % blockSize

	for written := 0; written < len(data); {
		var addr uint32
		if addr, err = s.read.blockAddress(blockNum, offsetInBlock); err != nil {
			return
		}

		chunk := min(len(data)-written, int(blockSize-offsetInBlock))
		if err = s.read.data.WriteBytes(addr, data[written:written+chunk]); err != nil {
			return msf.WrapIO("write", addr, err)
		}
		written += chunk

		blockNum++
		offsetInBlock = 0
	}

	s.read.fixCacheAfterWrite(offset, data)
	return
}

// Commit flushes the container.
func (s *WritableMappedBlockStream[C]) Commit() error {
	if err := s.read.data.Commit(); err != nil {
		return msf.WrapIO("commit", 0, err)
	}
	return nil
}
