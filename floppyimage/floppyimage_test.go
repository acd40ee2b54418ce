package floppyimage

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSectorRoundTrip(t *testing.T) {
	path := t.TempDir() + "/floppy.nd100.00.img"
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, f.Truncate(64*SectorBytes))
	require.NoError(t, f.Close())

	img, err := Open(path, false)
	require.NoError(t, err)
	defer img.Close()

	want := make([]uint16, SectorWords)
	for i := range want {
		want[i] = uint16(i*7 + 1)
	}

	index := SectorIndex(0, 0, 1)
	require.NoError(t, img.WriteSector(index, want))

	got := make([]uint16, SectorWords)
	require.NoError(t, img.ReadSector(index, got))
	assert.Equal(t, want, got)
}

func TestSectorIndexFormula(t *testing.T) {
	assert.Equal(t, 0, SectorIndex(0, 0, 0))
	assert.Equal(t, 9, SectorIndex(1, 0, 1))
	assert.Equal(t, 17, SectorIndex(1, 1, 1))
}

func TestReadOnlyRejectsWrite(t *testing.T) {
	path := t.TempDir() + "/floppy.nd100.01.img"
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, f.Truncate(8*SectorBytes))
	require.NoError(t, f.Close())

	img, err := Open(path, true)
	require.NoError(t, err)
	defer img.Close()

	buf := make([]uint16, SectorWords)
	assert.Error(t, img.WriteSector(0, buf))
}
