package console

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInputRoundTrip(t *testing.T) {
	d := New()
	var level int
	var ident uint16
	d.Raise = func(l int, id uint16) { level, ident = l, id }
	d.IOXWrite(Base+regInControl, 1<<7) // enable input interrupts

	d.PushInput('A')

	assert.Equal(t, 12, level)
	assert.EqualValues(t, 021, ident)
	assert.NotZero(t, d.IOXRead(Base+regInStatus)&statusReady)
	assert.EqualValues(t, 'A', d.IOXRead(Base+regInData))
	assert.Zero(t, d.IOXRead(Base+regInStatus)&statusReady)
}

func TestOutputSinkAndInterrupt(t *testing.T) {
	d := New()
	var got []byte
	d.Sink = func(b byte) { got = append(got, b) }
	var level int
	d.Raise = func(l int, _ uint16) { level = l }
	d.IOXWrite(Base+regOutControl, 1<<7)

	d.IOXWrite(Base+regOutData, 'x')

	assert.Equal(t, []byte{'x'}, got)
	assert.Equal(t, 10, level)
}

func TestWordSizeAndParityDecoding(t *testing.T) {
	assert.Equal(t, 5, WordSize(0))
	assert.Equal(t, 8, WordSize(3<<11))
	assert.Equal(t, 7, WordSize(2<<11))
	assert.True(t, EvenParity(1<<14))
	assert.False(t, EvenParity(0))
}
