// Copyright 2025 dacapoday
// SPDX-License-Identifier: Apache-2.0

//go:build darwin || linux

package main

import (
	"github.com/dacapoday/msf/file"
)

func openContainer(path string, readOnly, mmap bool) (container, error) {
	if !mmap {
		return openFile(path, readOnly)
	}
	m, err := file.Open(path, readOnly)
	if err != nil {
		return nil, err
	}
	return m, nil
}
