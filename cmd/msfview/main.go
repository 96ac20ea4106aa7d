// Copyright 2025 dacapoday
// SPDX-License-Identifier: Apache-2.0

// msfview inspects and patches the streams of a multi-stream container file
// whose layout is described by a YAML manifest.
//
// Usage:
//
//	msfview -m layout.yaml stat <container>
//	msfview -m layout.yaml chunks <container> <stream>
//	msfview -m layout.yaml cat [--hex] [--offset N] [--length N] <container> <stream>
//	msfview -m layout.yaml sum <container> <stream>...
//	msfview -m layout.yaml patch <container> <stream> <offset> <hex>
//
// A stream is named by its manifest name, by its index, or as "directory".
// The manifest path may also come from MSFVIEW_MANIFEST.
package main

import (
	"os"

	"github.com/dacapoday/msf/internal/logging"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var logger = logging.GetLogger("msfview")

func main() {
	if err := newApp().Run(os.Args); err != nil {
		logger.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "msfview",
		Usage: "inspect streams of a multi-stream container file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "manifest",
				Aliases:  []string{"m"},
				Usage:    "YAML `FILE` describing the container layout",
				EnvVars:  []string{"MSFVIEW_MANIFEST"},
				Required: true,
			},
			&cli.BoolFlag{
				Name:  "no-mmap",
				Usage: "read the container through the file API instead of mapping it",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "enable debug log",
			},
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "append log to `FILE` instead of stderr",
			},
		},
		Before: setup,
		Commands: []*cli.Command{
			statCommand(),
			chunksCommand(),
			catCommand(),
			sumCommand(),
			patchCommand(),
		},
	}
}

func setup(ctx *cli.Context) error {
	if ctx.Bool("verbose") {
		logging.SetLogLevel(logrus.DebugLevel)
	}
	if name := ctx.String("log-file"); name != "" {
		return logging.SetOutFile(name)
	}
	return nil
}
