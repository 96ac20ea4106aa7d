// Copyright 2025 dacapoday
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/hex"
	"io"

	"github.com/dacapoday/msf"
	"github.com/dacapoday/msf/stream"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

func catCommand() *cli.Command {
	return &cli.Command{
		Name:      "cat",
		Usage:     "write the content of a stream to stdout",
		ArgsUsage: "CONTAINER STREAM",
		Action:    cat,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "hex",
				Usage: "print a hex dump (default when stdout is a terminal)",
			},
			&cli.UintFlag{
				Name:  "offset",
				Usage: "start at byte `N` of the stream",
			},
			&cli.UintFlag{
				Name:  "length",
				Usage: "stop after `N` bytes (0 means up to the end)",
			},
		},
	}
}

func cat(ctx *cli.Context) (err error) {
	ref, err := streamArg(ctx, 1, "STREAM")
	if err != nil {
		return
	}
	s, err := open(ctx, true)
	if err != nil {
		return
	}
	defer s.Close()

	st, _, err := s.stream(ref)
	if err != nil {
		return
	}

	r := stream.NewReader(st)
	offset := ctx.Uint("offset")
	if uint64(offset) > uint64(r.Length()) {
		return errors.Wrapf(msf.ErrInsufficientBuffer, "offset %d beyond length %d", offset, r.Length())
	}
	r.SetOffset(uint32(offset))

	out := ctx.App.Writer
	if ctx.Bool("hex") || isTerminal(out) {
		dumper := hex.Dumper(out)
		defer func() {
			if cerr := dumper.Close(); err == nil {
				err = cerr
			}
		}()
		out = dumper
	}

	// a length past the end stops at the end of the stream
	if n := ctx.Uint("length"); n > 0 {
		_, err = io.CopyN(out, r, int64(min(uint64(n), uint64(r.BytesRemaining()))))
		return
	}
	_, err = r.WriteTo(out)
	return
}
