/*
 * ND100 - Console device: input/output channels over ring buffers.
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

// Package console implements the ND100 console device (spec.md §4.8):
// an input channel fed by the host's stdin or the port-5101 telnet
// socket, and an output channel drained to stdout/socket, each with its
// own status/control register and a 256-byte ring buffer.
package console

import (
	"log/slog"
	"sync"
)

// Base is the first IOX address of the console's 8-address range
// (octal 0300).
const Base uint16 = 0300

const ringSize = 256

// ring is a single-producer/single-consumer byte ring, per spec.md §5's
// "Console ring buffers" discipline: 8-bit head/tail wrap naturally.
type ring struct {
	mu         sync.Mutex
	cond       *sync.Cond
	buf        [ringSize]byte
	head, tail uint8
}

func newRing() *ring {
	r := &ring{}
	r.cond = sync.NewCond(&r.mu)
	return r
}

func (r *ring) empty() bool {
	return r.head == r.tail
}

func (r *ring) full() bool {
	return r.head+1 == r.tail
}

// push appends b, dropping the oldest byte if the ring is full (no flow
// control is modeled beyond the ready/not-ready status bit).
func (r *ring) push(b byte) {
	r.mu.Lock()
	if r.full() {
		r.tail++
	}
	r.buf[r.head] = b
	r.head++
	r.cond.Broadcast()
	r.mu.Unlock()
}

func (r *ring) pop() (byte, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.empty() {
		return 0, false
	}
	b := r.buf[r.tail]
	r.tail++
	return b, true
}

// Console register addresses, relative to Base (spec.md §4.8 names the
// registers but not their offsets within the 8-address range; this
// even=read/odd=write layout is this project's own — see DESIGN.md).
const (
	regInStatus   = 0 // read: input channel status
	regInControl  = 1 // write: input channel control
	regInData     = 2 // read: pop next input byte
	regInUnused   = 3
	regOutStatus  = 4 // read: output channel status
	regOutControl = 5 // write: output channel control
	regOutUnused  = 6
	regOutData    = 7 // write: push byte to output channel
)

// Status bit 3, common to both channels: ready for transfer.
const statusReady = 1 << 3

// Device is the ND100 console controller. Raise is called to post a
// pending interrupt (wired to *interrupt.Controller.Raise by Machine);
// it is a function rather than a direct dependency so this package
// doesn't need to import interrupt.
type Device struct {
	mu sync.Mutex

	inControl  uint16
	outControl uint16
	inIRQEn    bool
	outIRQEn   bool

	in  *ring
	out *ring

	// Raise posts interrupt level/ident for level 12 (input ready) or
	// level 10 (output ready), wired by package machine.
	Raise func(level int, identCode uint16)

	// Sink receives output bytes (stdout, or a telnet connection); it may
	// be nil during tests. Host input bytes arrive through PushInput.
	Sink func(b byte)
}

// New returns a console device with empty ring buffers.
func New() *Device {
	return &Device{in: newRing(), out: newRing()}
}

// PushInput is called by the host-input worker goroutine (stdin or
// telnet reader) whenever a byte arrives.
func (d *Device) PushInput(b byte) {
	d.in.push(b)
	d.mu.Lock()
	en := d.inIRQEn
	d.mu.Unlock()
	if en && d.Raise != nil {
		d.Raise(12, 021)
	}
}

// drainOutput hands the byte written by IOXWrite straight to Sink, then
// raises the output-ready interrupt if enabled.
// Called synchronously from IOXWrite in this single-buffered model —
// there is no separate output goroutine because writes are not blocking.
func (d *Device) drainOutput(b byte) {
	if d.Sink != nil {
		d.Sink(b)
	}
	d.mu.Lock()
	en := d.outIRQEn
	d.mu.Unlock()
	if en && d.Raise != nil {
		d.Raise(10, 021)
	}
}

// IOXRead implements iodispatch.Handler.
func (d *Device) IOXRead(addr uint16) uint16 {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch addr - Base {
	case regInStatus:
		if !d.in.empty() {
			return statusReady
		}
		return 0
	case regInData:
		b, ok := d.in.pop()
		if !ok {
			return 0
		}
		return uint16(b)
	case regOutStatus:
		return statusReady // output is always ready: Sink never blocks
	default:
		slog.Debug("console: read of write-only or unused register", "addr", addr)
		return 0
	}
}

// IOXWrite implements iodispatch.Handler.
func (d *Device) IOXWrite(addr uint16, value uint16) {
	d.mu.Lock()
	switch addr - Base {
	case regInControl:
		d.inControl = value
		d.inIRQEn = value&(1<<7) != 0
		d.mu.Unlock()
		return
	case regOutControl:
		d.outControl = value
		d.outIRQEn = value&(1<<7) != 0
		d.mu.Unlock()
		return
	case regOutData:
		d.mu.Unlock()
		d.drainOutput(byte(value))
		return
	default:
		slog.Debug("console: write of read-only or unused register", "addr", addr)
	}
	d.mu.Unlock()
}

// WordSize reports the configured word size (5, 6, 7 or 8 bits) for the
// output channel, decoded from control bits 11-12 (spec.md §4.8).
func WordSize(control uint16) int {
	switch (control >> 11) & 0x3 {
	case 0:
		return 5
	case 1:
		return 6
	case 2:
		return 7
	default:
		return 8
	}
}

// EvenParity reports whether the channel's control register selects even
// parity (bit 14 set).
func EvenParity(control uint16) bool {
	return control&(1<<14) != 0
}
