package stream

import (
	"bytes"
	"testing"

	"github.com/dacapoday/msf"
	"github.com/dacapoday/msf/file"
	"github.com/stretchr/testify/require"
)

func testLayout() *msf.Layout {
	return &msf.Layout{
		SuperBlock: msf.SuperBlock{
			BlockSize:         512,
			NumBlocks:         16,
			NumDirectoryBytes: 40,
		},
		DirectoryBlocks: []uint32{1},
		StreamSizes:     []uint32{0, 700, 512},
		StreamMap:       [][]uint32{{}, {4, 9}, {12}},
	}
}

func TestIndexedStreams(t *testing.T) {
	layout := testLayout()
	require.NoError(t, layout.Validate())
	c := newContainer(16, 512)

	s, err := NewIndexed(layout, c, 1)
	require.NoError(t, err)
	require.Equal(t, uint32(700), s.Length())
	require.Equal(t, uint32(512), s.BlockSize())
	require.Equal(t, uint32(16), s.NumBlocks())
	sl, _ := layout.Stream(1)
	require.Equal(t, sl, s.Layout())

	got, err := s.ReadBytes(0, 700)
	require.NoError(t, err)
	require.Equal(t, reference(t, c, 512, sl), got)

	dir, err := NewDirectory(layout, c)
	require.NoError(t, err)
	require.Equal(t, uint32(40), dir.Length())
	got, err = dir.ReadBytes(0, 40)
	require.NoError(t, err)
	require.Equal(t, reference(t, c, 512, layout.Directory()), got)

	_, err = NewIndexed(layout, c, 3)
	require.ErrorIs(t, err, msf.ErrNoStream)
	_, err = NewIndexed(layout, c, -1)
	require.ErrorIs(t, err, msf.ErrNoStream)
	_, err = NewWritableIndexed(layout, c, 3)
	require.ErrorIs(t, err, msf.ErrNoStream)

	w, err := NewWritableDirectory(layout, c)
	require.NoError(t, err)
	require.NoError(t, w.WriteBytes(0, []byte("directory")))
	got, err = dir.ReadBytes(0, 9)
	require.NoError(t, err)
	require.Equal(t, []byte("directory"), got)
}

func TestWritableFacetsShareCache(t *testing.T) {
	layout := testLayout()
	c := newContainer(16, 512)
	w, err := NewWritableIndexed(layout, c, 1)
	require.NoError(t, err)
	r := w.ReadOnly()

	before, err := r.ReadBytes(500, 30)
	require.NoError(t, err)
	require.Equal(t, uint64(30), w.BytesCopied())

	patch := bytes.Repeat([]byte{0x5A}, 16)
	require.NoError(t, w.WriteBytes(505, patch))
	require.Equal(t, patch, before[5:21])

	after, err := w.ReadBytes(500, 30)
	require.NoError(t, err)
	require.Same(t, &before[0], &after[0])

	w.InvalidateCache()
	require.Zero(t, r.BytesCopied())
}

func TestWritableSingleBlock(t *testing.T) {
	layout := testLayout()
	c := newContainer(16, 512)
	w, err := NewWritableIndexed(layout, c, 2)
	require.NoError(t, err)

	require.NoError(t, w.WriteBytes(0, nil))
	require.Zero(t, c.writes)

	require.NoError(t, w.WriteBytes(511, []byte{7}))
	require.Equal(t, 1, c.writes)

	last := make([]byte, 1)
	_, err = c.File.ReadAt(last, 13*512-1)
	require.NoError(t, err)
	require.Equal(t, []byte{7}, last)

	chunk, err := w.ReadLongestContiguousChunk(0)
	require.NoError(t, err)
	require.Len(t, chunk, 512)
	require.Equal(t, byte(7), chunk[511])
}

func TestCommit(t *testing.T) {
	s, c := newExample(t)
	require.NoError(t, s.Commit())
	require.Equal(t, 1, c.commits)
}

func TestAsWritable(t *testing.T) {
	c := newContainer(64, exampleBlockSize)

	r, err := New(exampleBlockSize, 64, exampleLayout(), c)
	require.NoError(t, err)
	_, err = AsWritable(r)
	require.ErrorIs(t, err, msf.ErrNotWritable)

	w, err := NewWritable(exampleBlockSize, 64, exampleLayout(), c)
	require.NoError(t, err)
	ws, err := AsWritable(w)
	require.NoError(t, err)
	require.NoError(t, ws.WriteBytes(0, []byte{1}))

	_, err = AsWritable(w.ReadOnly())
	require.ErrorIs(t, err, msf.ErrNotWritable)
}

func TestWriteMissingBlock(t *testing.T) {
	if debug {
		t.Skip("short layouts panic in debug builds")
	}
	c := newContainer(4, 512)
	// the layout claims more bytes than its blocks hold
	w, err := NewWritable(512, 4, msf.StreamLayout{Blocks: []uint32{2}, Length: 600}, c)
	require.NoError(t, err)

	err = w.WriteBytes(500, make([]byte, 20))
	require.ErrorIs(t, err, msf.ErrInvalidFormat)
	require.ErrorIs(t, w.ReadInto(500, make([]byte, 20)), msf.ErrInvalidFormat)
}

func TestCoherenceFollowsContainer(t *testing.T) {
	layout := exampleLayout()
	patch := bytes.Repeat([]byte{0xEE}, 8)

	// views into a single-segment mem.File observe the write
	views := newContainer(64, exampleBlockSize)
	s, err := NewWritable(exampleBlockSize, 64, layout, views)
	require.NoError(t, err)
	held, err := s.ReadBytes(200, 8)
	require.NoError(t, err)
	require.NoError(t, s.WriteBytes(200, patch))
	require.Equal(t, patch, held)

	// an Adapter hands out copies; cached buffers are still patched
	copies := file.Adapt(newContainer(64, exampleBlockSize).File, false)
	w, err := NewWritable(exampleBlockSize, 64, layout, copies)
	require.NoError(t, err)
	contiguous, err := w.ReadBytes(200, 8)
	require.NoError(t, err)
	kept := bytes.Clone(contiguous)
	cached, err := w.ReadBytes(exampleBlockSize*3-4, 8)
	require.NoError(t, err)
	require.Equal(t, uint64(8), w.BytesCopied())

	require.NoError(t, w.WriteBytes(200, patch))
	require.NoError(t, w.WriteBytes(exampleBlockSize*3-4, patch))
	require.Equal(t, kept, contiguous)
	require.Equal(t, patch, cached)

	fresh, err := w.ReadBytes(200, 8)
	require.NoError(t, err)
	require.Equal(t, patch, fresh)
}
