/*
 * ND100 - Real-time clock device.
 *
 * Copyright 2024, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

// Package rtc implements the ND100 real-time clock: a 20ms ticker that
// raises a level-13 interrupt when enabled and increments a
// panel-processor counter every 50 ticks (spec.md §4.8). The exact
// tick-to-interrupt coupling is one of spec.md §9's explicit Open
// Questions ("do NOT guess intent" beyond what's written); this package
// implements only the behavior the spec states outright and leaves the
// panel-processor semantics as a bare counter with no further meaning
// attached.
package rtc

import (
	"sync"
	"time"
)

// Base is the first IOX address of the RTC's 4-address range (octal 0010).
const Base uint16 = 0010

const (
	regStatus  = 0 // read: bit0 = tick pending, bit1 = enabled
	regControl = 1 // write: bit0 = enable
	regCounter = 2 // read: panel-processor tick counter, low word
	regUnused  = 3
)

const tickInterval = 20 * time.Millisecond

// Device is the RTC controller plus its own ticker goroutine.
type Device struct {
	mu      sync.Mutex
	enabled bool
	pending bool
	ticks   uint32
	panel   uint32 // panel-processor counter, incremented every 50 ticks

	// Raise posts the level-13 interrupt, wired by package machine.
	Raise func(level int, identCode uint16)

	stop chan struct{}
	wg   sync.WaitGroup
}

// New returns a stopped RTC device; call Start to begin ticking.
func New() *Device {
	return &Device{}
}

// Start launches the ticker goroutine. Stop must be called once to shut
// it down cleanly (spec.md §5's cooperative-shutdown discipline).
func (d *Device) Start() {
	d.stop = make(chan struct{})
	d.wg.Add(1)
	go d.run()
}

// Stop terminates the ticker goroutine and waits for it to exit.
func (d *Device) Stop() {
	close(d.stop)
	d.wg.Wait()
}

func (d *Device) run() {
	defer d.wg.Done()
	t := time.NewTicker(tickInterval)
	defer t.Stop()
	for {
		select {
		case <-d.stop:
			return
		case <-t.C:
			d.tick()
		}
	}
}

func (d *Device) tick() {
	d.mu.Lock()
	d.ticks++
	en := d.enabled
	if en {
		d.pending = true
	}
	if d.ticks%50 == 0 {
		d.panel++ // visible via IOXRead(regCounter); no further meaning defined (spec.md §9 Open Questions)
	}
	d.mu.Unlock()

	if en && d.Raise != nil {
		d.Raise(13, 0)
	}
}

// IOXRead implements iodispatch.Handler.
func (d *Device) IOXRead(addr uint16) uint16 {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch addr - Base {
	case regStatus:
		var v uint16
		if d.pending {
			v |= 1
		}
		if d.enabled {
			v |= 2
		}
		return v
	case regCounter:
		return uint16(d.panel)
	default:
		return 0
	}
}

// IOXWrite implements iodispatch.Handler.
func (d *Device) IOXWrite(addr uint16, value uint16) {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch addr - Base {
	case regControl:
		d.enabled = value&1 != 0
		if !d.enabled {
			d.pending = false
		}
	case regStatus:
		// Writing status clears the pending tick flag (acknowledge).
		d.pending = false
	}
}
