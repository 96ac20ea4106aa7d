// Copyright 2025 dacapoday
// SPDX-License-Identifier: Apache-2.0

// Package msf defines the interfaces and layout types shared by the
// block-mapped stream components of a multi-stream container file.
//
// A container file is a sequence of fixed-size blocks. A logical stream is
// an ordered list of container blocks plus a byte length; the stream package
// turns such a layout into a contiguous byte stream.
package msf

import (
	"io"
	"math"
)

// ReadableContainer is the block-level read capability a stream consumes.
//
// ReadBytes returns size bytes starting at the absolute container offset.
// The returned slice may alias the container's memory; callers treat it as
// read-only and may keep it for as long as the container is open.
type ReadableContainer interface {
	ReadBytes(offset uint32, size uint32) (data []byte, err error)
}

// WritableContainer adds block-level writes and a flush primitive.
type WritableContainer interface {
	ReadableContainer

	// WriteBytes stores data at the absolute container offset.
	WriteBytes(offset uint32, data []byte) error

	// Commit flushes previously written bytes to stable storage.
	Commit() error
}

// File provides access to a storage backend for a container.
// The *os.File type satisfies this interface.
type File interface {
	io.ReaderAt
	io.WriterAt
	io.Closer

	// Sync commits the current contents of the file to stable storage.
	Sync() error
}

// ValidBlockSize reports whether size is a block size the container format allows.
func ValidBlockSize(size uint32) bool {
	switch size {
	case 512, 1024, 2048, 4096, 8192, 16384, 32768:
		return true
	}
	return false
}

// BlockToOffset maps a container block index to its absolute byte offset.
// ok is false when the offset does not fit the 32-bit container address space.
func BlockToOffset(block uint32, blockSize uint32) (offset uint32, ok bool) {
	off := uint64(block) * uint64(blockSize)
	if off > math.MaxUint32 {
		return
	}
	return uint32(off), true
}

// BytesToBlocks returns how many blocks of blockSize are needed to hold n bytes.
func BytesToBlocks(n uint32, blockSize uint32) uint32 {
	return uint32((uint64(n) + uint64(blockSize) - 1) / uint64(blockSize))
}
