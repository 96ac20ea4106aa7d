// Copyright 2025 dacapoday
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/hex"
	"strconv"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

func patchCommand() *cli.Command {
	return &cli.Command{
		Name:      "patch",
		Usage:     "overwrite bytes of a stream in place",
		ArgsUsage: "CONTAINER STREAM OFFSET HEX",
		Action:    patch,
	}
}

func patch(ctx *cli.Context) error {
	if ctx.Args().Len() < 4 {
		return errors.New("CONTAINER STREAM OFFSET HEX are needed")
	}
	ref := ctx.Args().Get(1)
	offset, err := strconv.ParseUint(ctx.Args().Get(2), 0, 32)
	if err != nil {
		return errors.Wrapf(err, "offset %q", ctx.Args().Get(2))
	}
	data, err := hex.DecodeString(ctx.Args().Get(3))
	if err != nil {
		return errors.Wrap(err, "data")
	}

	s, err := open(ctx, false)
	if err != nil {
		return err
	}
	defer s.Close()

	st, err := s.writableStream(ref)
	if err != nil {
		return err
	}
	if err = st.WriteBytes(uint32(offset), data); err != nil {
		return err
	}
	if err = st.Commit(); err != nil {
		return err
	}
	logger.Infof("patched %d bytes of stream %s at offset %d", len(data), ref, offset)
	return nil
}
