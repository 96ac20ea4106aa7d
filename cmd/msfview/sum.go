// Copyright 2025 dacapoday
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"

	"github.com/dacapoday/msf/stream"
	"github.com/urfave/cli/v2"
	"github.com/zeebo/blake3"
)

func sumCommand() *cli.Command {
	return &cli.Command{
		Name:      "sum",
		Usage:     "print the BLAKE3 digest of streams",
		ArgsUsage: "CONTAINER STREAM...",
		Action:    sum,
	}
}

func sum(ctx *cli.Context) error {
	if _, err := streamArg(ctx, 1, "STREAM"); err != nil {
		return err
	}
	s, err := open(ctx, true)
	if err != nil {
		return err
	}
	defer s.Close()

	for _, ref := range ctx.Args().Slice()[1:] {
		st, name, err := s.stream(ref)
		if err != nil {
			return err
		}
		h := blake3.New()
		if _, err = stream.NewReader(st).WriteTo(h); err != nil {
			return err
		}
		fmt.Fprintf(ctx.App.Writer, "%x  %s\n", h.Sum(nil), name)
	}
	return nil
}
