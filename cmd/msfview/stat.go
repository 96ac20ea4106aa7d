// Copyright 2025 dacapoday
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/dacapoday/msf"
	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v2"
)

func statCommand() *cli.Command {
	return &cli.Command{
		Name:      "stat",
		Usage:     "show the container layout",
		ArgsUsage: "CONTAINER",
		Action:    stat,
	}
}

func stat(ctx *cli.Context) error {
	s, err := open(ctx, true)
	if err != nil {
		return err
	}
	defer s.Close()

	sb := s.layout.SuperBlock
	out := ctx.App.Writer
	fmt.Fprintf(out, "block size: %s\n", humanize.IBytes(uint64(sb.BlockSize)))
	fmt.Fprintf(out, "blocks:     %s (%s)\n", humanize.Comma(int64(sb.NumBlocks)),
		humanize.IBytes(uint64(sb.NumBlocks)*uint64(sb.BlockSize)))
	dir := s.layout.Directory()
	fmt.Fprintf(out, "directory:  %s in %d blocks, %d runs\n",
		humanize.IBytes(uint64(dir.Length)), len(dir.Blocks), runs(dir, sb.BlockSize))
	fmt.Fprintf(out, "streams:    %d\n\n", s.layout.NumStreams())

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "INDEX\tNAME\tLENGTH\tBLOCKS\tRUNS")
	for i := range s.layout.NumStreams() {
		sl, err := s.layout.Stream(i)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%d\n", i, s.manifest.Name(i),
			humanize.IBytes(uint64(sl.Length)), len(sl.Blocks), runs(sl, sb.BlockSize))
	}
	return w.Flush()
}

// runs counts the runs of consecutive container blocks that hold the
// stream's bytes. Blocks past the end of the stream are not counted.
func runs(sl msf.StreamLayout, blockSize uint32) (n int) {
	used := min(int(msf.BytesToBlocks(sl.Length, blockSize)), len(sl.Blocks))
	for i := range used {
		if i == 0 || uint64(sl.Blocks[i]) != uint64(sl.Blocks[i-1])+1 {
			n++
		}
	}
	return
}
