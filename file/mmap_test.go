//go:build darwin || linux

package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dacapoday/msf"
	"github.com/stretchr/testify/require"
)

func TestMapCreateReadWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "container.msf")
	m, err := Create(path, 4*4096)
	require.NoError(t, err)
	defer m.Close()
	require.Equal(t, int64(4*4096), m.Size())

	view, err := m.ReadBytes(4096, 16)
	require.NoError(t, err)
	require.Equal(t, make([]byte, 16), view)

	require.NoError(t, m.WriteBytes(4096+4, []byte("mapped")))
	require.NoError(t, m.Commit())

	// the view is the mapping itself
	require.Equal(t, []byte("mapped"), view[4:10])

	buf := make([]byte, 6)
	n, err := m.ReadAt(buf, 4096+4)
	require.NoError(t, err)
	require.Equal(t, 6, n)
	require.Equal(t, []byte("mapped"), buf)
}

func TestMapBounds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "container.msf")
	m, err := Create(path, 4096)
	require.NoError(t, err)
	defer m.Close()

	_, err = m.ReadBytes(4000, 200)
	require.ErrorIs(t, err, msf.ErrInsufficientBuffer)

	err = m.WriteBytes(4090, make([]byte, 10))
	require.ErrorIs(t, err, msf.ErrInsufficientBuffer)
}

func TestMapReadOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "container.msf")
	require.NoError(t, os.WriteFile(path, []byte("read only container"), 0o644))

	m, err := Open(path, true)
	require.NoError(t, err)
	defer m.Close()

	data, err := m.ReadBytes(5, 4)
	require.NoError(t, err)
	require.Equal(t, []byte("only"), data)

	err = m.WriteBytes(0, []byte("x"))
	require.ErrorIs(t, err, msf.ErrNotWritable)
	require.NoError(t, m.Commit())
}

func TestMapEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.msf")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	m, err := Open(path, true)
	require.NoError(t, err)
	require.Zero(t, m.Size())
	require.NoError(t, m.Close())
}
