// Copyright 2025 dacapoday
// SPDX-License-Identifier: Apache-2.0

//go:build darwin || linux

package file

import (
	"runtime/debug"

	"github.com/dacapoday/msf"
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// Map is a container file accessed through a shared read-only memory map.
// ReadBytes returns slices of the mapping itself; writes go through pwrite
// and the kernel keeps the mapping current, so earlier references observe
// them. The file size is fixed while it is mapped.
//
// Reads are safe for concurrent use. Writes must be serialized by the caller.
type Map struct {
	fd       int
	data     []byte
	readOnly bool
}

var _ msf.WritableContainer = (*Map)(nil)

// Open maps the file at path. With readOnly set the file is opened O_RDONLY
// and every write fails with msf.ErrNotWritable.
func Open(path string, readOnly bool) (m *Map, err error) {
	flags := unix.O_RDWR
	if readOnly {
		flags = unix.O_RDONLY
	}
	fd, err := unix.Open(path, flags|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, errors.Wrapf(err, "opening container %s", path)
	}

	var stat unix.Stat_t
	if err = unix.Fstat(fd, &stat); err != nil {
		unix.Close(fd)
		return nil, errors.Wrap(err, "stating container")
	}
	if stat.Size > int64(^uint32(0)) {
		unix.Close(fd)
		return nil, errors.Wrapf(msf.ErrInvalidFormat, "container %s is %d bytes, beyond the 32-bit address space", path, stat.Size)
	}

	m = &Map{fd: fd, readOnly: readOnly}
	if stat.Size == 0 {
		return m, nil
	}
	m.data, err = unix.Mmap(fd, 0, int(stat.Size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		unix.Close(fd)
		return nil, errors.Wrap(err, "memory-mapping container")
	}
	return m, nil
}

// Create creates (or truncates) the file at path with size bytes and maps it
// read-write.
func Create(path string, size int64) (*Map, error) {
	fd, err := unix.Open(path, unix.O_CREAT|unix.O_TRUNC|unix.O_RDWR|unix.O_CLOEXEC, 0o644)
	if err != nil {
		return nil, errors.Wrapf(err, "creating container %s", path)
	}
	err = unix.Ftruncate(fd, size)
	unix.Close(fd)
	if err != nil {
		return nil, errors.Wrapf(err, "truncating container to %d bytes", size)
	}
	return Open(path, false)
}

// Size returns the mapped size in bytes.
func (m *Map) Size() int64 {
	return int64(len(m.data))
}

// ReadBytes returns a view of [offset, offset+size) of the mapping.
func (m *Map) ReadBytes(offset uint32, size uint32) ([]byte, error) {
	end := uint64(offset) + uint64(size)
	if end > uint64(len(m.data)) {
		return nil, errors.Wrapf(msf.ErrInsufficientBuffer, "read [%d, %d) beyond container size %d",
			offset, end, len(m.data))
	}
	return m.data[offset:end:end], nil
}

// ReadAt copies from the mapping. A page fault caused by an I/O error on the
// underlying storage is reported as an error instead of crashing.
func (m *Map) ReadAt(p []byte, off int64) (n int, err error) {
	if off < 0 || off > int64(len(m.data)) {
		return 0, errors.Wrapf(msf.ErrInsufficientBuffer, "read at %d beyond container size %d", off, len(m.data))
	}

	old := debug.SetPanicOnFault(true)
	defer func() {
		debug.SetPanicOnFault(old)
		if r := recover(); r != nil {
			err = errors.Errorf("page fault reading container at offset %d: %v", off, r)
		}
	}()

	n = copy(p, m.data[off:])
	if n < len(p) {
		err = errors.Wrapf(msf.ErrInsufficientBuffer, "short read at %d", off)
	}
	return
}

// WriteBytes writes data at offset with pwrite. The container never grows.
func (m *Map) WriteBytes(offset uint32, data []byte) error {
	if m.readOnly {
		return errors.WithStack(msf.ErrNotWritable)
	}
	off := int64(offset)
	if off+int64(len(data)) > int64(len(m.data)) {
		return errors.Wrapf(msf.ErrInsufficientBuffer, "write [%d, +%d) beyond container size %d",
			offset, len(data), len(m.data))
	}

	for len(data) > 0 {
		written, err := unix.Pwrite(m.fd, data, off)
		if err != nil {
			return errors.Wrapf(err, "pwrite at offset %d", off)
		}
		data = data[written:]
		off += int64(written)
	}
	return nil
}

// Commit flushes written data to stable storage.
func (m *Map) Commit() error {
	if m.readOnly {
		return nil
	}
	return errors.Wrap(unix.Fsync(m.fd), "fsync container")
}

// Close unmaps the file and closes its descriptor. Slices returned by
// ReadBytes must not be used afterwards.
func (m *Map) Close() error {
	var firstErr error
	if m.data != nil {
		if err := unix.Munmap(m.data); err != nil {
			firstErr = errors.Wrap(err, "unmapping container")
		}
	}
	if err := unix.Close(m.fd); err != nil && firstErr == nil {
		firstErr = errors.Wrap(err, "closing container fd")
	}
	m.data = nil
	m.fd = -1
	return firstErr
}
