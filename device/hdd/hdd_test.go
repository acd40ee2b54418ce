package hdd

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nd100/hddimage"
	"nd100/memory"
)

func newTestImage(t *testing.T) *hddimage.Image {
	t.Helper()
	path := t.TempDir() + "/" + hddimage.Name
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, f.Truncate(hddimage.Offset(1, 0, 0)+hddimage.SectorBytes))
	require.NoError(t, f.Close())
	img, err := hddimage.Open(path, false)
	require.NoError(t, err)
	t.Cleanup(func() { img.Close() })
	return img
}

func TestReadTransferDMA(t *testing.T) {
	img := newTestImage(t)
	want := make([]uint16, hddimage.SectorWords)
	for i := range want {
		want[i] = uint16(i + 1)
	}
	require.NoError(t, img.WriteSector(0, 0, 0, want))

	mem := memory.New()
	d := New(mem, img)
	var level int
	var ident uint16
	d.Raise = func(l int, id uint16) { level, ident = l, id }

	d.IOXWrite(Base+regWWC, hddimage.SectorWords)
	d.IOXWrite(Base+regWADDR, 0x100)
	d.IOXWrite(Base+regWCHS, 0)
	d.IOXWrite(Base+regWCMD, (1<<14)|OpReadTransfer)

	assert.Equal(t, 11, level)
	assert.EqualValues(t, 017, ident)

	for i := 0; i < hddimage.SectorWords; i++ {
		assert.Equal(t, want[i], mem.ReadWord(0x100+uint16(i)))
	}

	sr1 := d.IOXRead(Base + regRSR1)
	assert.NotZero(t, sr1&sr1Complete)
}

func TestNoMediaIsHardwareError(t *testing.T) {
	mem := memory.New()
	d := New(mem, nil)
	d.IOXWrite(Base+regWCMD, OpReadTransfer)
	sr2 := d.IOXRead(Base + regRSR2)
	assert.NotZero(t, sr2&sr2Hardware)
}
