package stream

import (
	"testing"

	"github.com/dacapoday/msf"
	"github.com/dacapoday/msf/mem"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

var errInjected = errors.New("injected")

// container counts accesses to a mem.File and can fail chosen ones.
type container struct {
	*mem.File
	reads, writes, commits int

	failRead  func(offset uint32) bool
	failWrite func(offset uint32) bool
}

var _ msf.WritableContainer = (*container)(nil)

func (c *container) ReadBytes(offset uint32, size uint32) ([]byte, error) {
	c.reads++
	if c.failRead != nil && c.failRead(offset) {
		return nil, errInjected
	}
	return c.File.ReadBytes(offset, size)
}

func (c *container) WriteBytes(offset uint32, data []byte) error {
	c.writes++
	if c.failWrite != nil && c.failWrite(offset) {
		return errInjected
	}
	return c.File.WriteBytes(offset, data)
}

func (c *container) Commit() error {
	c.commits++
	return c.File.Commit()
}

func (c *container) reset() {
	c.reads, c.writes, c.commits = 0, 0, 0
}

// newContainer returns numBlocks blocks filled with a position-dependent pattern.
func newContainer(numBlocks, blockSize uint32) *container {
	data := make([]byte, numBlocks*blockSize)
	for i := range data {
		data[i] = byte(i*31 + i/int(blockSize))
	}
	return &container{File: mem.New(data)}
}

// reference assembles the stream content block by block.
func reference(t *testing.T, c *container, blockSize uint32, layout msf.StreamLayout) []byte {
	t.Helper()
	var out []byte
	for _, block := range layout.Blocks {
		buf := make([]byte, blockSize)
		_, err := c.File.ReadAt(buf, int64(block)*int64(blockSize))
		require.NoError(t, err)
		out = append(out, buf...)
	}
	return out[:layout.Length]
}

const exampleBlockSize = 4096

// exampleLayout is three consecutive blocks followed by a detached one.
func exampleLayout() msf.StreamLayout {
	return msf.StreamLayout{
		Blocks: []uint32{10, 11, 12, 50},
		Length: exampleBlockSize*3 + 100,
	}
}

func newExample(t *testing.T) (*WritableMappedBlockStream[*container], *container) {
	t.Helper()
	c := newContainer(64, exampleBlockSize)
	s, err := NewWritable(exampleBlockSize, 64, exampleLayout(), c)
	require.NoError(t, err)
	return s, c
}
