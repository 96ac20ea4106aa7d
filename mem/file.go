// Copyright 2025 dacapoday
// SPDX-License-Identifier: Apache-2.0

// Package mem provides an in-memory container file.
package mem

import (
	"io"
	"sort"
	"sync"
	"unsafe"

	"github.com/dacapoday/msf"
	"github.com/pkg/errors"
)

// File is an in-memory container file made of segments. Growing the file
// appends a segment and never moves bytes already stored, so slices returned
// by ReadBytes stay valid (and observe later writes) for the file's lifetime.
//
// File is safe for concurrent use by multiple goroutines and requires no
// initialization:
//
//	var f File
//	f.WriteAt([]byte("hello"), 0)
type File struct {
	rw       sync.RWMutex
	segments segments
}

var (
	_ msf.File              = (*File)(nil)
	_ msf.WritableContainer = (*File)(nil)
)

// New returns a file holding a copy of data in a single segment.
func New(data []byte) *File {
	f := new(File)
	if len(data) > 0 {
		buf := make([]byte, len(data))
		copy(buf, data)
		f.segments.append(buf)
	}
	return f
}

// Close discards all data. The file may be written again afterwards.
func (file *File) Close() error {
	file.rw.Lock()
	file.segments = nil
	file.rw.Unlock()
	return nil
}

// Size returns the current size of the file in bytes.
func (file *File) Size() int64 {
	file.rw.RLock()
	defer file.rw.RUnlock()
	return file.segments.size()
}

const segmentSize = 32 * 1024

// ReadFrom replaces the file content with everything read from r.
// It implements io.ReaderFrom; io.EOF is not returned as an error.
func (file *File) ReadFrom(r io.Reader) (n int64, err error) {
	file.rw.Lock()
	defer file.rw.Unlock()
	file.segments = nil
	for {
		buf := make([]byte, segmentSize)
		c, err := io.ReadFull(r, buf)
		if c > 0 {
			n += int64(c)
			file.segments.append(buf[:c])
		}
		if err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				err = nil
			}
			return n, err
		}
	}
}

// WriteTo writes the entire file content to w.
// It implements io.WriterTo.
func (file *File) WriteTo(w io.Writer) (n int64, err error) {
	file.rw.RLock()
	defer file.rw.RUnlock()
	for i := range file.segments {
		c, err := w.Write(file.segments.seg(i))
		n += int64(c)
		if err != nil {
			return n, err
		}
	}
	return
}

// WriteAt writes p at off, growing the file with zeros if needed.
// It implements io.WriterAt.
func (file *File) WriteAt(p []byte, off int64) (n int, err error) {
	if off < 0 {
		return 0, errors.Errorf("mem.WriteAt: negative offset %d", off)
	}
	if len(p) == 0 {
		return 0, nil
	}
	file.grow(off + int64(len(p)))

	file.rw.RLock()
	defer file.rw.RUnlock()
	return file.segments.writeAt(p, off), nil
}

func (file *File) grow(size int64) {
	file.rw.RLock()
	bias := size - file.segments.size()
	file.rw.RUnlock()
	if bias <= 0 {
		return
	}

	file.rw.Lock()
	if bias := size - file.segments.size(); bias > 0 {
		file.segments.append(make([]byte, bias))
	}
	file.rw.Unlock()
}

// ReadAt reads len(p) bytes at off. It implements io.ReaderAt.
func (file *File) ReadAt(p []byte, off int64) (n int, err error) {
	if off < 0 {
		return 0, errors.Errorf("mem.ReadAt: negative offset %d", off)
	}
	if len(p) == 0 {
		return 0, nil
	}

	file.rw.RLock()
	defer file.rw.RUnlock()
	return file.segments.readAt(p, off)
}

// ReadBytes returns size bytes at offset. The result aliases the file when
// the range lies inside one segment and is a private copy otherwise.
func (file *File) ReadBytes(offset uint32, size uint32) ([]byte, error) {
	if size == 0 {
		return []byte{}, nil
	}

	file.rw.RLock()
	defer file.rw.RUnlock()

	off, end := int64(offset), int64(offset)+int64(size)
	if end > file.segments.size() {
		return nil, errors.Wrapf(io.ErrUnexpectedEOF, "mem.ReadBytes [%d, %d) beyond size %d",
			off, end, file.segments.size())
	}
	if view := file.segments.view(off, end); view != nil {
		return view, nil
	}

	buf := make([]byte, size)
	if _, err := file.segments.readAt(buf, off); err != nil {
		return nil, err
	}
	return buf, nil
}

// WriteBytes stores data at offset.
func (file *File) WriteBytes(offset uint32, data []byte) error {
	_, err := file.WriteAt(data, int64(offset))
	return err
}

// Commit is a no-op for in-memory files.
func (file *File) Commit() error {
	return file.Sync()
}

// Truncate changes the size of the file, discarding bytes past size or
// zero-extending up to it.
func (file *File) Truncate(size int64) error {
	if size < 0 {
		return errors.Errorf("mem.Truncate: negative size %d", size)
	}
	file.rw.Lock()
	file.segments.truncate(size)
	file.rw.Unlock()
	return nil
}

// Sync is a no-op for in-memory files.
func (file *File) Sync() error {
	return nil
}

type segments []segment

type segment = struct {
	seg unsafe.Pointer // data buffer
	off int64          // end offset of this segment within the file
}

func (s *segments) append(buf []byte) {
	*s = append(*s, segment{
		seg: unsafe.Pointer(unsafe.SliceData(buf)),
		off: s.size() + int64(len(buf)),
	})
}

func (s segments) size() int64 {
	if len(s) == 0 {
		return 0
	}
	return s[len(s)-1].off
}

func (s segments) begin(idx int) int64 {
	if idx == 0 {
		return 0
	}
	return s[idx-1].off
}

// seek returns the index of the segment holding off.
func (s segments) seek(off int64) int {
	return sort.Search(len(s), func(i int) bool {
		return s[i].off > off
	})
}

func (s segments) seg(idx int) []byte {
	return unsafe.Slice((*byte)(s[idx].seg), s[idx].off-s.begin(idx))
}

// segFrom returns the tail of segment idx starting at file offset off.
func (s segments) segFrom(idx int, off int64) []byte {
	return s.seg(idx)[off-s.begin(idx):]
}

// view returns [off, end) without copying if one segment holds all of it.
func (s segments) view(off, end int64) []byte {
	idx := s.seek(off)
	if idx == len(s) || s[idx].off < end {
		return nil
	}
	data := s.segFrom(idx, off)
	n := end - off
	return data[:n:n]
}

func (s *segments) truncate(size int64) {
	bias := size - s.size()
	if bias > 0 {
		s.append(make([]byte, bias))
	} else if bias < 0 {
		idx := s.seek(size)
		if idx == len(*s) {
			return
		}
		if s.begin(idx) == size {
			*s = (*s)[:idx]
			return
		}
		(*s)[idx].off = size
		*s = (*s)[:idx+1]
	}
}

func (s segments) writeAt(p []byte, off int64) (n int) {
	for idx := s.seek(off); n < len(p); idx++ {
		n += copy(s.segFrom(idx, off+int64(n)), p[n:])
	}
	return
}

func (s segments) readAt(p []byte, off int64) (n int, err error) {
	idx := s.seek(off)
	for n < len(p) {
		if idx == len(s) {
			return n, io.EOF
		}
		n += copy(p[n:], s.segFrom(idx, off+int64(n)))
		idx++
	}
	return n, nil
}
