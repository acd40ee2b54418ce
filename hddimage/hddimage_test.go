package hddimage

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSectorRoundTrip(t *testing.T) {
	path := t.TempDir() + "/" + Name
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, f.Truncate(Offset(1, 0, 0)+SectorBytes))
	require.NoError(t, f.Close())

	img, err := Open(path, false)
	require.NoError(t, err)
	defer img.Close()

	want := make([]uint16, SectorWords)
	for i := range want {
		want[i] = uint16(i * 3)
	}
	require.NoError(t, img.WriteSector(0, 2, 5, want))

	got := make([]uint16, SectorWords)
	require.NoError(t, img.ReadSector(0, 2, 5, got))
	assert.Equal(t, want, got)
}

func TestOffsetFormula(t *testing.T) {
	assert.EqualValues(t, 0, Offset(0, 0, 0))
	assert.EqualValues(t, SectorBytes, Offset(0, 0, 1))
	assert.EqualValues(t, SectorsPerTrk*SectorBytes, Offset(0, 1, 0))
	assert.EqualValues(t, Surfaces*SectorsPerTrk*SectorBytes, Offset(1, 0, 0))
}
