// Copyright 2025 dacapoday
// SPDX-License-Identifier: Apache-2.0

package stream

import (
	"encoding/binary"
	"io"

	"github.com/dacapoday/msf"
)

// Writer writes a WritableByteStream sequentially from a cursor.
// A write that does not fit fails with msf.ErrInsufficientBuffer and leaves
// the cursor where it was.
type Writer struct {
	stream WritableByteStream
	offset uint32
}

var _ io.Writer = (*Writer)(nil)

func NewWriter(s WritableByteStream) *Writer {
	return &Writer{stream: s}
}

func (w *Writer) SetOffset(offset uint32) { w.offset = offset }
func (w *Writer) Offset() uint32          { return w.offset }
func (w *Writer) Length() uint32          { return w.stream.Length() }

func (w *Writer) BytesRemaining() uint32 {
	if w.offset >= w.stream.Length() {
		return 0
	}
	return w.stream.Length() - w.offset
}

func (w *Writer) WriteBytes(data []byte) (err error) {
	if err = w.stream.WriteBytes(w.offset, data); err != nil {
		return
	}
	w.offset += uint32(len(data))
	return
}

// Write implements io.Writer.
func (w *Writer) Write(p []byte) (int, error) {
	if err := w.WriteBytes(p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (w *Writer) WriteUint16(v uint16) error {
	return w.WriteBytes(binary.LittleEndian.AppendUint16(nil, v))
}

func (w *Writer) WriteUint32(v uint32) error {
	return w.WriteBytes(binary.LittleEndian.AppendUint32(nil, v))
}

// WriteZeroString writes str followed by a NUL terminator.
func (w *Writer) WriteZeroString(str string) error {
	buf := make([]byte, len(str)+1)
	copy(buf, str)
	return w.WriteBytes(buf)
}

// WriteFixedString writes the bytes of str without a terminator.
func (w *Writer) WriteFixedString(str string) error {
	return w.WriteBytes([]byte(str))
}

// WriteStream copies all of src.
func (w *Writer) WriteStream(src ByteStream) error {
	return w.WriteStreamRef(src, src.Length())
}

// WriteStreamRef copies the first size bytes of src, one contiguous chunk
// at a time.
func (w *Writer) WriteStreamRef(src ByteStream, size uint32) (err error) {
	if size > src.Length() {
		return msf.OutOfBounds(0, int(size), src.Length())
	}
	if uint64(w.offset)+uint64(size) > uint64(w.stream.Length()) {
		return msf.OutOfBounds(w.offset, int(size), w.stream.Length())
	}

	var copied uint32
	for copied < size {
		var chunk []byte
		if chunk, err = src.ReadLongestContiguousChunk(copied); err != nil {
			return
		}
		chunk = chunk[:min(uint32(len(chunk)), size-copied)]
		if err = w.WriteBytes(chunk); err != nil {
			return
		}
		copied += uint32(len(chunk))
	}
	return
}
