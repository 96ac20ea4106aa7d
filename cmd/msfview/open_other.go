// Copyright 2025 dacapoday
// SPDX-License-Identifier: Apache-2.0

//go:build !(darwin || linux)

package main

func openContainer(path string, readOnly, _ bool) (container, error) {
	return openFile(path, readOnly)
}
