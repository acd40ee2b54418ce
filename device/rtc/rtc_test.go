package rtc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTicksRaiseLevel13WhenEnabled(t *testing.T) {
	d := New()
	raised := make(chan int, 8)
	d.Raise = func(level int, _ uint16) { raised <- level }

	d.IOXWrite(Base+regControl, 1)
	d.Start()
	defer d.Stop()

	select {
	case level := <-raised:
		assert.Equal(t, 13, level)
	case <-time.After(200 * time.Millisecond):
		t.Fatal("no tick interrupt observed")
	}
}

func TestDisabledProducesNoInterrupt(t *testing.T) {
	d := New()
	raised := false
	d.Raise = func(int, uint16) { raised = true }
	d.Start()
	time.Sleep(50 * time.Millisecond)
	d.Stop()
	assert.False(t, raised)
}

func TestStatusBitsReflectEnable(t *testing.T) {
	d := New()
	d.IOXWrite(Base+regControl, 1)
	assert.NotZero(t, d.IOXRead(Base+regStatus)&2)
	d.IOXWrite(Base+regControl, 0)
	assert.Zero(t, d.IOXRead(Base+regStatus)&2)
}
