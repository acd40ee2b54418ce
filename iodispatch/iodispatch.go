/*
 * ND100 - IOX/IOXT dispatch table.
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

// Package iodispatch routes IOX/IOXT instructions to per-device handlers.
//
// spec.md §9 notes a flat 2^16-entry table is acceptable but "a map keyed
// by the device's 8-address range is equivalent and smaller" — this
// package takes that option: handlers register an address range once at
// startup, and Dispatch looks them up in a small map rather than
// allocating 65536 table slots.
package iodispatch

import "sync"

// Handler is a device's IOX/IOXT binding. Even addresses read (result goes
// into A); odd addresses write (value comes from A); exact per-address
// meaning is device-specific.
type Handler interface {
	IOXRead(addr uint16) uint16
	IOXWrite(addr uint16, value uint16)
}

// Dispatch is the IOX/IOXT routing table.
type Dispatch struct {
	mu    sync.RWMutex
	table map[uint16]Handler

	// RaiseIOXError is invoked by the default handler when an unmapped
	// address is accessed and IIE bit 7 (IOX-error enable) is set.
	RaiseIOXError func()
	// IOXErrorEnabled reports whether IIE bit 7 is set.
	IOXErrorEnabled func() bool
}

// New returns an empty dispatch table.
func New() *Dispatch {
	return &Dispatch{table: make(map[uint16]Handler)}
}

// Register binds h to every address in [first, first+count).
func (d *Dispatch) Register(first uint16, count int, h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := 0; i < count; i++ {
		d.table[first+uint16(i)] = h
	}
}

// Read performs an IOX/IOXT read at addr.
func (d *Dispatch) Read(addr uint16) uint16 {
	d.mu.RLock()
	h, ok := d.table[addr]
	d.mu.RUnlock()
	if !ok {
		d.defaultMiss()
		return 0
	}
	return h.IOXRead(addr)
}

// Write performs an IOX/IOXT write at addr.
func (d *Dispatch) Write(addr uint16, value uint16) {
	d.mu.RLock()
	h, ok := d.table[addr]
	d.mu.RUnlock()
	if !ok {
		d.defaultMiss()
		return
	}
	h.IOXWrite(addr, value)
}

// defaultMiss implements spec.md §4.8's default handler: unmapped reads
// return 0, writes are ignored; if IIE bit 7 is set, an internal
// interrupt (IOX error) is raised, simulating a 10us device timeout.
func (d *Dispatch) defaultMiss() {
	if d.IOXErrorEnabled != nil && d.IOXErrorEnabled() && d.RaiseIOXError != nil {
		d.RaiseIOXError()
	}
}
