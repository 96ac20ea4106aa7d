// Copyright 2025 dacapoday
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/dacapoday/msf/stream"
	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v2"
)

func chunksCommand() *cli.Command {
	return &cli.Command{
		Name:      "chunks",
		Usage:     "list the contiguous runs of a stream",
		ArgsUsage: "CONTAINER STREAM",
		Action:    chunks,
	}
}

func chunks(ctx *cli.Context) error {
	ref, err := streamArg(ctx, 1, "STREAM")
	if err != nil {
		return err
	}
	s, err := open(ctx, true)
	if err != nil {
		return err
	}
	defer s.Close()

	st, _, err := s.stream(ref)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(ctx.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "OFFSET\tLENGTH\tBLOCK\tSIZE")
	blocks := st.Layout().Blocks
	var offset uint32
	for chunk, err := range stream.Chunks(st, 0) {
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%d\t%d\t%d\t%s\n", offset, len(chunk),
			blocks[offset/st.BlockSize()], humanize.IBytes(uint64(len(chunk))))
		offset += uint32(len(chunk))
	}
	return w.Flush()
}
