// Copyright 2025 dacapoday
// SPDX-License-Identifier: Apache-2.0

package msf

import (
	"strconv"

	"github.com/pkg/errors"
)

// StreamLayout describes how a logical stream maps onto container blocks.
type StreamLayout struct {
	// Blocks lists container block indices in stream order.
	Blocks []uint32
	// Length is the stream size in bytes.
	Length uint32
}

// SuperBlock holds the container-wide constants.
type SuperBlock struct {
	BlockSize         uint32
	NumBlocks         uint32
	NumDirectoryBytes uint32
}

// Layout is the resolved directory of a container: the blocks of the
// directory stream itself plus the block list and size of every stream.
type Layout struct {
	SuperBlock      SuperBlock
	DirectoryBlocks []uint32
	StreamSizes     []uint32
	StreamMap       [][]uint32
}

// NumStreams returns the number of streams in the directory.
func (layout *Layout) NumStreams() int {
	return len(layout.StreamSizes)
}

// Stream returns the layout of the stream at index.
func (layout *Layout) Stream(index int) (sl StreamLayout, err error) {
	if index < 0 || index >= len(layout.StreamSizes) || index >= len(layout.StreamMap) {
		err = errors.Wrapf(ErrNoStream, "stream %d of %d", index, len(layout.StreamSizes))
		return
	}
	sl.Blocks = layout.StreamMap[index]
	sl.Length = layout.StreamSizes[index]
	return
}

// Directory returns the layout of the directory stream.
func (layout *Layout) Directory() StreamLayout {
	return StreamLayout{
		Blocks: layout.DirectoryBlocks,
		Length: layout.SuperBlock.NumDirectoryBytes,
	}
}

// Validate checks that the layout is self-consistent: the block size is
// allowed, every stream has enough blocks for its length and no block index
// reaches past the end of the container.
func (layout *Layout) Validate() (err error) {
	sb := layout.SuperBlock
	if !ValidBlockSize(sb.BlockSize) {
		return errors.Wrapf(ErrInvalidBlockSize, "%d", sb.BlockSize)
	}
	if sb.NumBlocks > 0 {
		if _, ok := BlockToOffset(sb.NumBlocks-1, sb.BlockSize); !ok {
			return errors.Wrapf(ErrInvalidFormat, "%d blocks of %d bytes exceed the address space",
				sb.NumBlocks, sb.BlockSize)
		}
	}
	if len(layout.StreamSizes) != len(layout.StreamMap) {
		return errors.Wrapf(ErrInvalidFormat, "%d stream sizes but %d block lists",
			len(layout.StreamSizes), len(layout.StreamMap))
	}
	if err = sb.check("directory", layout.Directory()); err != nil {
		return
	}
	for i := range layout.StreamMap {
		sl, _ := layout.Stream(i)
		if err = sb.check("stream "+strconv.Itoa(i), sl); err != nil {
			return
		}
	}
	return
}

func (sb SuperBlock) check(name string, sl StreamLayout) error {
	if need := BytesToBlocks(sl.Length, sb.BlockSize); uint32(len(sl.Blocks)) < need {
		return errors.Wrapf(ErrInvalidFormat, "%s: %d bytes need %d blocks, have %d",
			name, sl.Length, need, len(sl.Blocks))
	}
	for _, block := range sl.Blocks {
		if block >= sb.NumBlocks {
			return errors.Wrapf(ErrInvalidFormat, "%s: block %d out of range (%d blocks)",
				name, block, sb.NumBlocks)
		}
	}
	return nil
}
