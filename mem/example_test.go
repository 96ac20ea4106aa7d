package mem_test

import (
	"fmt"

	"github.com/dacapoday/msf/mem"
)

func Example() {
	// No initialization needed - just declare and use
	var f mem.File

	// Write some data
	f.WriteBytes(0, []byte("hello"))
	f.WriteBytes(5, []byte("world"))

	// Read it back
	data, _ := f.ReadBytes(0, 10)
	fmt.Printf("%s\n", data)

	// Check file size
	fmt.Printf("Size: %d\n", f.Size())

	// Output:
	// helloworld
	// Size: 10
}
