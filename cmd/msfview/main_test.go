package main

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dacapoday/msf"
	"github.com/stretchr/testify/require"
	"github.com/zeebo/blake3"
)

const testManifest = `
block_size: 512
num_blocks: 64
directory:
  blocks: [1]
  length: 100
streams:
  - name: header
    blocks: [10-12, 50]
    length: 1636
  - name: names
    blocks: [20]
    length: 5
`

type fixture struct {
	manifest  string
	container string
	data      []byte
}

func newFixture(t *testing.T) *fixture {
	dir := t.TempDir()
	f := &fixture{
		manifest:  filepath.Join(dir, "layout.yaml"),
		container: filepath.Join(dir, "container.msf"),
		data:      make([]byte, 64*512),
	}
	for i := range f.data {
		f.data[i] = byte(i*7 + i/512)
	}
	require.NoError(t, os.WriteFile(f.manifest, []byte(testManifest), 0o644))
	require.NoError(t, os.WriteFile(f.container, f.data, 0o644))
	return f
}

// header returns the expected content of the header stream.
func (f *fixture) header() []byte {
	var out []byte
	for _, block := range []int{10, 11, 12, 50} {
		out = append(out, f.data[block*512:(block+1)*512]...)
	}
	return out[:1636]
}

func (f *fixture) run(args ...string) (string, error) {
	app := newApp()
	var out bytes.Buffer
	app.Writer = &out
	app.ErrWriter = &out
	err := app.Run(append([]string{"msfview", "-m", f.manifest}, args...))
	return out.String(), err
}

func TestCat(t *testing.T) {
	f := newFixture(t)

	out, err := f.run("cat", f.container, "header")
	require.NoError(t, err)
	require.Equal(t, string(f.header()), out)

	out, err = f.run("cat", "--hex", f.container, "0")
	require.NoError(t, err)
	require.Equal(t, hex.Dump(f.header()), out)

	out, err = f.run("cat", "--offset", "1530", "--length", "20", f.container, "header")
	require.NoError(t, err)
	require.Equal(t, string(f.header()[1530:1550]), out)

	out, err = f.run("--no-mmap", "cat", f.container, "directory")
	require.NoError(t, err)
	require.Equal(t, string(f.data[512:612]), out)
}

func TestCatRange(t *testing.T) {
	f := newFixture(t)
	names := string(f.data[20*512 : 20*512+5])

	// a length past the end stops at the end of the stream
	out, err := f.run("cat", "--length", "10", f.container, "names")
	require.NoError(t, err)
	require.Equal(t, names, out)

	out, err = f.run("cat", "--offset", "3", "--length", "100", f.container, "names")
	require.NoError(t, err)
	require.Equal(t, names[3:], out)

	out, err = f.run("cat", "--offset", "5", "--length", "1", f.container, "names")
	require.NoError(t, err)
	require.Empty(t, out)

	// offsets beyond 32 bits must not wrap around to the start of the stream
	out, err = f.run("cat", "--offset", "4294967297", "--length", "2", f.container, "names")
	require.ErrorIs(t, err, msf.ErrInsufficientBuffer)
	require.Empty(t, out)
}

func TestCatErrors(t *testing.T) {
	f := newFixture(t)

	_, err := f.run("cat", f.container)
	require.Error(t, err)

	_, err = f.run("cat", f.container, "missing")
	require.ErrorIs(t, err, msf.ErrNoStream)

	_, err = f.run("cat", "--offset", "1637", f.container, "header")
	require.ErrorIs(t, err, msf.ErrInsufficientBuffer)

	_, err = f.run("cat", filepath.Join(t.TempDir(), "missing"), "header")
	require.Error(t, err)
}

func TestSum(t *testing.T) {
	f := newFixture(t)

	out, err := f.run("sum", f.container, "header", "names")
	require.NoError(t, err)

	header := blake3.Sum256(f.header())
	names := blake3.Sum256(f.data[20*512 : 20*512+5])
	require.Equal(t, fmt.Sprintf("%x  header\n%x  names\n", header, names), out)
}

func TestStatAndChunks(t *testing.T) {
	f := newFixture(t)

	out, err := f.run("stat", f.container)
	require.NoError(t, err)
	require.Contains(t, out, "block size: 512 B")
	require.Contains(t, out, "streams:    2")
	require.Contains(t, out, "header")
	require.Contains(t, out, "names")

	out, err = f.run("chunks", f.container, "header")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	require.Equal(t, []string{"0", "1536", "10"}, strings.Fields(lines[1])[:3])
	require.Equal(t, []string{"1536", "100", "50"}, strings.Fields(lines[2])[:3])
}

func TestPatch(t *testing.T) {
	for _, mmap := range []bool{true, false} {
		t.Run(fmt.Sprint("mmap=", mmap), func(t *testing.T) {
			f := newFixture(t)
			var global []string
			if !mmap {
				global = []string{"--no-mmap"}
			}

			_, err := f.run(append(global, "patch", f.container, "header", "1534", "deadbeef")...)
			require.NoError(t, err)

			out, err := f.run("cat", "--offset", "1534", "--length", "4", f.container, "header")
			require.NoError(t, err)
			require.Equal(t, "\xde\xad\xbe\xef", out)

			// the write was split across blocks 12 and 50
			data, err := os.ReadFile(f.container)
			require.NoError(t, err)
			require.Equal(t, []byte{0xde, 0xad}, data[13*512-2:13*512])
			require.Equal(t, []byte{0xbe, 0xef}, data[50*512:50*512+2])

			_, err = f.run(append(global, "patch", f.container, "names", "4", "0000")...)
			require.ErrorIs(t, err, msf.ErrInsufficientBuffer)

			_, err = f.run("patch", f.container, "names", "0", "zz")
			require.Error(t, err)
		})
	}
}

func TestManifestFromEnv(t *testing.T) {
	f := newFixture(t)
	t.Setenv("MSFVIEW_MANIFEST", f.manifest)

	app := newApp()
	var out bytes.Buffer
	app.Writer = &out
	require.NoError(t, app.Run([]string{"msfview", "cat", f.container, "names"}))
	require.Equal(t, string(f.data[20*512:20*512+5]), out.String())
}

func TestRuns(t *testing.T) {
	require.Equal(t, 0, runs(msf.StreamLayout{}, 512))
	require.Equal(t, 2, runs(msf.StreamLayout{Blocks: []uint32{10, 11, 12, 50}, Length: 1636}, 512))
	// trailing blocks beyond the length do not count
	require.Equal(t, 1, runs(msf.StreamLayout{Blocks: []uint32{10, 11, 12, 50}, Length: 1536}, 512))
	require.Equal(t, 3, runs(msf.StreamLayout{Blocks: []uint32{4, 3, 2}, Length: 1536}, 512))
}
