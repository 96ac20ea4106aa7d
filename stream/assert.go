//go:build debug

package stream

import (
	"fmt"

	"github.com/dacapoday/msf"
)

const debug = true

// assertLayout panics if layout has fewer blocks than its length needs.
// Only enabled with -tags debug.
func assertLayout(method string, blockSize uint32, layout msf.StreamLayout) {
	if need := msf.BytesToBlocks(layout.Length, blockSize); uint32(len(layout.Blocks)) < need {
		panic(fmt.Sprintf("%s: %d bytes need %d blocks, layout has %d", method, layout.Length, need, len(layout.Blocks)))
	}
}
