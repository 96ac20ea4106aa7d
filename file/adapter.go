// Copyright 2025 dacapoday
// SPDX-License-Identifier: Apache-2.0

// Package file provides containers backed by files on disk.
package file

import (
	"io"

	"github.com/dacapoday/msf"
	"github.com/pkg/errors"
)

// Adapter turns any msf.File, such as *os.File, into a container. Every
// read allocates a fresh buffer, so streams over an Adapter never get
// zero-copy references; use Map for that. A reference a stream returned
// from a contiguous read is such a copy and does not observe later writes.
type Adapter[F msf.File] struct {
	file     F
	readOnly bool
}

var _ msf.WritableContainer = (*Adapter[msf.File])(nil)

// Adapt wraps file. Writes fail with msf.ErrNotWritable when readOnly is set.
func Adapt[F msf.File](file F, readOnly bool) *Adapter[F] {
	return &Adapter[F]{file: file, readOnly: readOnly}
}

func (a *Adapter[F]) File() F {
	return a.file
}

func (a *Adapter[F]) ReadBytes(offset uint32, size uint32) (data []byte, err error) {
	data = make([]byte, size)
	n, err := a.file.ReadAt(data, int64(offset))
	if n == len(data) {
		return data, nil
	}
	if err == nil || err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return nil, errors.Wrapf(err, "read %d bytes at %d", size, offset)
}

func (a *Adapter[F]) WriteBytes(offset uint32, data []byte) error {
	if a.readOnly {
		return errors.WithStack(msf.ErrNotWritable)
	}
	if _, err := a.file.WriteAt(data, int64(offset)); err != nil {
		return errors.Wrapf(err, "write %d bytes at %d", len(data), offset)
	}
	return nil
}

func (a *Adapter[F]) Commit() error {
	if a.readOnly {
		return nil
	}
	return a.file.Sync()
}

func (a *Adapter[F]) Close() error {
	return a.file.Close()
}
