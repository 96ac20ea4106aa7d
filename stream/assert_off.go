//go:build !debug

package stream

import "github.com/dacapoday/msf"

const debug = false

// assertLayout is a no-op in production.
// Enable with -tags debug for runtime checks.
func assertLayout(string, uint32, msf.StreamLayout) {}
