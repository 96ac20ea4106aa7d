// Copyright 2025 dacapoday
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"io"
	"os"

	"github.com/dacapoday/msf"
	"github.com/dacapoday/msf/file"
	"github.com/dacapoday/msf/manifest"
	"github.com/dacapoday/msf/stream"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

type container interface {
	msf.WritableContainer
	io.Closer
}

// session is a container opened together with its manifest.
type session struct {
	manifest *manifest.Manifest
	layout   *msf.Layout
	data     container
}

// open loads the manifest and opens the container named by the first
// command argument.
func open(ctx *cli.Context, readOnly bool) (s *session, err error) {
	if ctx.Args().Len() < 1 {
		return nil, errors.New("CONTAINER is needed")
	}
	path := ctx.Args().First()

	s = new(session)
	if s.manifest, err = manifest.Load(ctx.String("manifest")); err != nil {
		return nil, err
	}
	if s.layout, err = s.manifest.Layout(); err != nil {
		return nil, err
	}
	if s.data, err = openContainer(path, readOnly, !ctx.Bool("no-mmap")); err != nil {
		return nil, err
	}
	sb := s.layout.SuperBlock
	logger.Debugf("opened %s: %d blocks of %s, %d streams",
		path, sb.NumBlocks, humanize.IBytes(uint64(sb.BlockSize)), s.layout.NumStreams())
	return
}

func (s *session) Close() error {
	return s.data.Close()
}

const directoryRef = "directory"

func (s *session) stream(ref string) (st *stream.MappedBlockStream[container], name string, err error) {
	if ref == directoryRef {
		st, err = stream.NewDirectory(s.layout, s.data)
		return st, directoryRef, err
	}
	index, err := s.manifest.Index(ref)
	if err != nil {
		return
	}
	st, err = stream.NewIndexed(s.layout, s.data, index)
	return st, s.manifest.Name(index), err
}

func (s *session) writableStream(ref string) (*stream.WritableMappedBlockStream[container], error) {
	if ref == directoryRef {
		return stream.NewWritableDirectory(s.layout, s.data)
	}
	index, err := s.manifest.Index(ref)
	if err != nil {
		return nil, err
	}
	return stream.NewWritableIndexed(s.layout, s.data, index)
}

// openFile opens path through the os.File API.
func openFile(path string, readOnly bool) (container, error) {
	flag := os.O_RDWR
	if readOnly {
		flag = os.O_RDONLY
	}
	f, err := os.OpenFile(path, flag, 0)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return file.Adapt(f, readOnly), nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// streamArg returns the n-th command argument or an error naming it.
func streamArg(ctx *cli.Context, n int, what string) (string, error) {
	if ctx.Args().Len() <= n {
		return "", errors.Errorf("%s is needed", what)
	}
	return ctx.Args().Get(n), nil
}
