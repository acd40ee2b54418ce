package floppy

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nd100/floppyimage"
)

func newTestImage(t *testing.T) *floppyimage.Image {
	t.Helper()
	path := t.TempDir() + "/floppy.nd100.00.img"
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, f.Truncate(64*floppyimage.SectorBytes))
	require.NoError(t, f.Close())
	img, err := floppyimage.Open(path, false)
	require.NoError(t, err)
	t.Cleanup(func() { img.Close() })
	return img
}

// TestReadDataCompletion matches spec.md §8 scenario 6: configure
// track=0, sector=1, issue WCWD with the READ_DATA command bit, and
// observe completion plus the posted interrupt.
func TestReadDataCompletion(t *testing.T) {
	img := newTestImage(t)
	want := make([]uint16, floppyimage.SectorWords)
	for i := range want {
		want[i] = uint16(i + 100)
	}
	require.NoError(t, img.WriteSector(floppyimage.SectorIndex(0, 0, 1), want))

	d := New(img)
	var raisedLevel int
	var raisedIdent uint16
	d.Raise = func(level int, ident uint16) { raisedLevel, raisedIdent = level, ident }

	d.IOXWrite(Base+regWDAD, 0)
	d.IOXWrite(Base+regWSCT, 1)
	d.IOXWrite(Base+regWCWD, uint16(CmdReadData)<<8|(1<<7))

	assert.Equal(t, 11, raisedLevel)
	assert.EqualValues(t, 021, raisedIdent)

	sr1 := d.IOXRead(Base + regRSR1)
	assert.NotZero(t, sr1&sr1Complete)
	assert.Zero(t, sr1&sr1Busy)

	got := make([]uint16, floppyimage.SectorWords)
	for i := range got {
		got[i] = d.IOXRead(Base + regRDAD)
	}
	assert.Equal(t, want, got)
}

func TestNoMediaReportsNotReady(t *testing.T) {
	d := New(nil)
	d.IOXWrite(Base+regWCWD, uint16(CmdRecalibrate)<<8)
	sr2 := d.IOXRead(Base + regRSR2)
	assert.NotZero(t, sr2&sr2NotReady)
}
