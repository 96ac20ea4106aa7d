// Copyright 2025 dacapoday
// SPDX-License-Identifier: Apache-2.0

package stream

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/dacapoday/msf"
)

// Reader reads a ByteStream sequentially from a cursor.
type Reader struct {
	stream ByteStream
	offset uint32
}

var (
	_ io.Reader   = (*Reader)(nil)
	_ io.ReaderAt = (*Reader)(nil)
	_ io.WriterTo = (*Reader)(nil)
)

func NewReader(s ByteStream) *Reader {
	return &Reader{stream: s}
}

func (r *Reader) SetOffset(offset uint32) { r.offset = offset }
func (r *Reader) Offset() uint32          { return r.offset }
func (r *Reader) Length() uint32          { return r.stream.Length() }

func (r *Reader) BytesRemaining() uint32 {
	if r.offset >= r.stream.Length() {
		return 0
	}
	return r.stream.Length() - r.offset
}

// ReadBytes returns the next size bytes, without copying when possible.
func (r *Reader) ReadBytes(size uint32) (buffer []byte, err error) {
	if buffer, err = r.stream.ReadBytes(r.offset, size); err != nil {
		return
	}
	r.offset += size
	return
}

// ReadInto fills dest with the next len(dest) bytes.
func (r *Reader) ReadInto(dest []byte) (err error) {
	if err = r.stream.ReadInto(r.offset, dest); err != nil {
		return
	}
	r.offset += uint32(len(dest))
	return
}

// ReadLongestContiguousChunk returns the largest zero-copy chunk at the cursor.
func (r *Reader) ReadLongestContiguousChunk() (buffer []byte, err error) {
	if buffer, err = r.stream.ReadLongestContiguousChunk(r.offset); err != nil {
		return
	}
	r.offset += uint32(len(buffer))
	return
}

func (r *Reader) ReadUint16() (uint16, error) {
	buffer, err := r.ReadBytes(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(buffer), nil
}

func (r *Reader) ReadUint32() (uint32, error) {
	buffer, err := r.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buffer), nil
}

// ReadZeroString reads a NUL-terminated string and moves the cursor past
// the terminator. The terminator is not part of the result.
func (r *Reader) ReadZeroString() (str string, err error) {
	var buf []byte
	offset := r.offset
	for chunk, err := range Chunks(r.stream, offset) {
		if err != nil {
			return "", err
		}
		if i := bytes.IndexByte(chunk, 0); i >= 0 {
			buf = append(buf, chunk[:i]...)
			r.offset = offset + uint32(len(buf)) + 1
			return string(buf), nil
		}
		buf = append(buf, chunk...)
	}
	err = msf.OutOfBounds(offset, len(buf)+1, r.stream.Length())
	return
}

// ReadFixedString reads a string of exactly size bytes.
func (r *Reader) ReadFixedString(size uint32) (string, error) {
	buffer, err := r.ReadBytes(size)
	if err != nil {
		return "", err
	}
	return string(buffer), nil
}

// Skip advances the cursor by n bytes.
func (r *Reader) Skip(n uint32) error {
	if n > r.BytesRemaining() {
		return msf.OutOfBounds(r.offset, int(n), r.stream.Length())
	}
	r.offset += n
	return nil
}

// Read implements io.Reader.
func (r *Reader) Read(p []byte) (n int, err error) {
	remaining := r.BytesRemaining()
	if remaining == 0 {
		if len(p) == 0 {
			return 0, nil
		}
		return 0, io.EOF
	}
	n = int(min(uint64(len(p)), uint64(remaining)))
	if err = r.ReadInto(p[:n]); err != nil {
		n = 0
	}
	return
}

// ReadAt implements io.ReaderAt. It does not move the cursor.
func (r *Reader) ReadAt(p []byte, off int64) (n int, err error) {
	length := int64(r.stream.Length())
	if off < 0 {
		return 0, msf.OutOfBounds(0, len(p), r.stream.Length())
	}
	if off >= length {
		if len(p) == 0 {
			return 0, nil
		}
		return 0, io.EOF
	}
	n = int(min(int64(len(p)), length-off))
	if err = r.stream.ReadInto(uint32(off), p[:n]); err != nil {
		return 0, err
	}
	if n < len(p) {
		err = io.EOF
	}
	return
}

// WriteTo writes the rest of the stream to w, chunk by chunk.
func (r *Reader) WriteTo(w io.Writer) (n int64, err error) {
	for r.BytesRemaining() > 0 {
		var chunk []byte
		if chunk, err = r.stream.ReadLongestContiguousChunk(r.offset); err != nil {
			return
		}
		c, werr := w.Write(chunk)
		n += int64(c)
		r.offset += uint32(c)
		if werr != nil {
			return n, werr
		}
	}
	return
}
