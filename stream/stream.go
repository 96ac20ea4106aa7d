// Copyright 2025 dacapoday
// SPDX-License-Identifier: Apache-2.0

// Package stream presents a logical byte stream whose data is scattered over
// the fixed-size blocks of a container.
//
// Every read first tries to answer with a single zero-copy reference into the
// container, which works whenever the requested range lies on consecutive
// container blocks. Otherwise the bytes are assembled into a buffer drawn
// from an append-only arena and remembered in a cache keyed by stream offset.
// Arena buffers are never moved or freed while the stream lives, so a
// reference returned by ReadBytes stays valid; writes through a
// WritableMappedBlockStream patch cached buffers in place so those
// references also stay correct.
//
// A stream is not safe for concurrent use.
package stream

import (
	"iter"
	"math"

	"github.com/dacapoday/msf"
	"github.com/dacapoday/msf/internal/arena"
	"github.com/dacapoday/msf/internal/interval"
	"github.com/dacapoday/msf/internal/logging"
	"github.com/pkg/errors"
)

var logger = logging.GetLogger("stream")

// ByteStream is the read surface shared by read-only and writable streams.
type ByteStream interface {
	Length() uint32
	ReadBytes(offset uint32, size uint32) ([]byte, error)
	ReadInto(offset uint32, dest []byte) error
	ReadLongestContiguousChunk(offset uint32) ([]byte, error)
}

// WritableByteStream is a ByteStream that also accepts writes.
type WritableByteStream interface {
	ByteStream
	WriteBytes(offset uint32, data []byte) error
	Commit() error
}

// AsWritable returns s as a WritableByteStream, or ErrNotWritable.
func AsWritable(s ByteStream) (WritableByteStream, error) {
	if w, ok := s.(WritableByteStream); ok {
		return w, nil
	}
	return nil, errors.WithStack(msf.ErrNotWritable)
}

var _ ByteStream = (*MappedBlockStream[msf.ReadableContainer])(nil)

// MappedBlockStream is a read-only view of one stream of a container.
type MappedBlockStream[C msf.ReadableContainer] struct {
	blockSize uint32
	numBlocks uint32
	layout    msf.StreamLayout
	data      C

	pool  arena.Arena
	cache cacheMap
}

// New returns a stream over the blocks listed in layout.
// The layout is trusted to hold enough blocks for its length.
func New[C msf.ReadableContainer](blockSize, numBlocks uint32, layout msf.StreamLayout, data C) (*MappedBlockStream[C], error) {
	s := new(MappedBlockStream[C])
	if err := s.init(blockSize, numBlocks, layout, data); err != nil {
		return nil, err
	}
	return s, nil
}

// NewIndexed returns the stream at index of the container directory.
func NewIndexed[C msf.ReadableContainer](layout *msf.Layout, data C, index int) (*MappedBlockStream[C], error) {
	sl, err := layout.Stream(index)
	if err != nil {
		return nil, err
	}
	return New(layout.SuperBlock.BlockSize, layout.SuperBlock.NumBlocks, sl, data)
}

// NewDirectory returns the stream holding the container directory.
func NewDirectory[C msf.ReadableContainer](layout *msf.Layout, data C) (*MappedBlockStream[C], error) {
	return New(layout.SuperBlock.BlockSize, layout.SuperBlock.NumBlocks, layout.Directory(), data)
}

func (s *MappedBlockStream[C]) init(blockSize, numBlocks uint32, layout msf.StreamLayout, data C) error {
	if blockSize == 0 {
		return errors.Wrap(msf.ErrInvalidBlockSize, "block size is zero")
	}
	assertLayout("stream.New", blockSize, layout)
	s.blockSize = blockSize
	s.numBlocks = numBlocks
	s.layout = layout
	s.data = data
	s.cache = make(cacheMap)
	return nil
}

func (s *MappedBlockStream[C]) BlockSize() uint32 {
	return s.blockSize
}

func (s *MappedBlockStream[C]) NumBlocks() uint32 {
	return s.numBlocks
}

func (s *MappedBlockStream[C]) Layout() msf.StreamLayout {
	return s.layout
}

// Length returns the stream size in bytes.
func (s *MappedBlockStream[C]) Length() uint32 {
	return s.layout.Length
}

// BytesCopied returns how many bytes have been materialized into the cache
// since the stream was created or the cache was last invalidated.
func (s *MappedBlockStream[C]) BytesCopied() uint64 {
	return s.pool.BytesAllocated()
}

func (s *MappedBlockStream[C]) checkBounds(offset uint32, size int) error {
	if interval.Of(offset, size).End > uint64(s.layout.Length) {
		return msf.OutOfBounds(offset, size, s.layout.Length)
	}
	return nil
}

// ReadBytes returns size bytes starting at offset.
//
// The result is either a direct reference into the container or a cached
// buffer; it must not be modified. It remains valid until InvalidateCache.
func (s *MappedBlockStream[C]) ReadBytes(offset uint32, size uint32) (buffer []byte, err error) {
	if err = s.checkBounds(offset, int(size)); err != nil {
		return
	}

	if buffer, ok := s.tryReadContiguously(offset, size); ok {
		return buffer, nil
	}

	if buffer = s.cache.lookup(offset, size); buffer != nil {
		return
	}

	// Existing arena buffers may be held by callers, so a miss always
	// materializes into a fresh one.
	buffer = s.pool.Allocate(int(size))
	if err = s.ReadInto(offset, buffer); err != nil {
		buffer = nil
		return
	}
	s.cache.insert(offset, buffer)
	logger.Debugf("cache miss: materialized [%d, +%d)", offset, size)
	return
}

// ReadInto copies len(dest) bytes starting at offset into dest, reading one
// container range per spanned block.
func (s *MappedBlockStream[C]) ReadInto(offset uint32, dest []byte) (err error) {
	if err = s.checkBounds(offset, len(dest)); err != nil {
		return
	}

	blockNum := offset / s.blockSize
	offsetInBlock := offset % s.blockSize

	for written := 0; written < len(dest); {
		var addr uint32
		if addr, err = s.blockAddress(blockNum, offsetInBlock); err != nil {
			return
		}

		chunk := min(len(dest)-written, int(s.blockSize-offsetInBlock))
		var data []byte
		if data, err = s.data.ReadBytes(addr, uint32(chunk)); err != nil {
			return msf.WrapIO("read", addr, err)
		}
		if len(data) < chunk {
			return msf.WrapIO("read", addr, errShortRead(len(data), uint64(chunk)))
		}
		written += copy(dest[written:], data[:chunk])

		blockNum++
		offsetInBlock = 0
	}
	return
}

func errShortRead(got int, want uint64) error {
	return errors.Errorf("short read: %d of %d bytes", got, want)
}

// blockAddress returns the container offset of offsetInBlock within the
// stream's blockNum-th block.
func (s *MappedBlockStream[C]) blockAddress(blockNum, offsetInBlock uint32) (uint32, error) {
	if int(blockNum) >= len(s.layout.Blocks) {
		return 0, errors.Wrapf(msf.ErrInvalidFormat, "stream block %d of %d", blockNum, len(s.layout.Blocks))
	}
	base, ok := msf.BlockToOffset(s.layout.Blocks[blockNum], s.blockSize)
	if !ok || uint64(base)+uint64(offsetInBlock) > math.MaxUint32 {
		return 0, errors.Wrapf(msf.ErrInvalidFormat, "block %d outside the address space", s.layout.Blocks[blockNum])
	}
	return base + offsetInBlock, nil
}

// InvalidateCache drops every cached buffer. References handed out earlier
// stay readable but are no longer patched by writes.
func (s *MappedBlockStream[C]) InvalidateCache() {
	logger.Debugf("invalidate cache: %d offsets, %d bytes in %d slabs",
		len(s.cache), s.pool.BytesAllocated(), s.pool.Slabs())
	s.cache = make(cacheMap)
	s.pool.Reset()
}

// fixCacheAfterWrite copies the freshly written data into every cached
// buffer that overlaps it, so outstanding references see the new bytes.
func (s *MappedBlockStream[C]) fixCacheAfterWrite(offset uint32, data []byte) {
	if patched := s.cache.fixup(offset, data); patched > 0 {
		logger.Debugf("write [%d, +%d) patched %d cached buffers", offset, len(data), patched)
	}
}

// Chunks yields the longest contiguous chunks of s from offset to the end.
// Concatenated, they are the stream content starting at offset.
func Chunks(s ByteStream, offset uint32) iter.Seq2[[]byte, error] {
	return func(yield func([]byte, error) bool) {
		for offset < s.Length() {
			chunk, err := s.ReadLongestContiguousChunk(offset)
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(chunk, nil) {
				return
			}
			offset += uint32(len(chunk))
		}
	}
}
