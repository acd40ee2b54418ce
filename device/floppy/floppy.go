/*
 * ND100 - Floppy disk controller.
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

// Package floppy implements the ND100 floppy controller (spec.md §4.8):
// it executes one controller command at a time, synchronously within the
// command-register write, against a 2K-word buffer and a
// floppyimage-backed disk.
package floppy

import (
	"sync"

	"nd100/floppyimage"
)

// Base is the first IOX address of the floppy's 8-address range
// (octal 1560).
const Base uint16 = 01560

// Register offsets relative to Base, per spec.md §4.8's named-register
// list (RDAD, WDAT, RSR1, WCWD, RSR2, WDAD, RTEST, WSCT), laid out
// even=read/odd=write to match the project-wide IOX convention.
const (
	regRDAD  = 0 // read: next data word out of the transfer buffer
	regWDAT  = 1 // write: next data word into the transfer buffer
	regRSR1  = 2 // read: status register 1 (busy/complete/error)
	regWCWD  = 3 // write: command word, command in bits 8-15
	regRSR2  = 4 // read: status register 2 (drive-not-ready/write-protect/missing-sector)
	regWDAD  = 5 // write: track/side select
	regRTEST = 6 // read: self-test/diagnostic register, always 0
	regWSCT  = 7 // write: sector/count select
)

// Commands, packed into the high byte of WCWD (spec.md §4.8).
const (
	CmdFormatTrack  = 1
	CmdWriteData    = 4 | 2
	CmdReadID       = 8
	CmdReadData     = 16
	CmdSeek         = 32
	CmdRecalibrate  = 64
	CmdControlReset = 128
)

// Status register 1 bits.
const (
	sr1Busy     = 1 << 0
	sr1Complete = 1 << 1
	sr1Error    = 1 << 2
)

// Status register 2 (error detail) bits.
const (
	sr2NotReady      = 1 << 0
	sr2WriteProtect  = 1 << 1
	sr2MissingSector = 1 << 2
)

const bufferWords = 2048

// Device is the floppy controller. Commands are executed synchronously
// by IOXWrite(regWCWD, ...) in this implementation — spec.md §8 scenario
// 6 only observes the post-completion state, not true asynchrony, and
// the controller has no long-running seek model to justify a separate
// goroutine per spec.md §5's "one worker thread per asynchronous
// device".
type Device struct {
	mu sync.Mutex

	img *floppyimage.Image

	track, side, sector int
	buf                  [bufferWords]uint16
	bufPos               int

	sr1, sr2 uint16
	irqEn    bool

	// Raise posts interrupt level 11, ident 021 on completion, wired by
	// package machine.
	Raise func(level int, identCode uint16)
}

// New returns a floppy device backed by img (may be nil to model an
// empty drive, which always reports not-ready).
func New(img *floppyimage.Image) *Device {
	return &Device{img: img}
}

func (d *Device) IOXRead(addr uint16) uint16 {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch addr - Base {
	case regRDAD:
		if d.bufPos < len(d.buf) {
			v := d.buf[d.bufPos]
			d.bufPos++
			return v
		}
		return 0
	case regRSR1:
		return d.sr1
	case regRSR2:
		return d.sr2
	case regRTEST:
		return 0
	default:
		return 0
	}
}

func (d *Device) IOXWrite(addr uint16, value uint16) {
	d.mu.Lock()
	switch addr - Base {
	case regWDAT:
		if d.bufPos < len(d.buf) {
			d.buf[d.bufPos] = value
			d.bufPos++
		}
		d.mu.Unlock()
		return
	case regWDAD:
		d.track = int(value & 0xff)
		d.side = int((value >> 8) & 1)
		d.mu.Unlock()
		return
	case regWSCT:
		d.sector = int(value & 0xff)
		d.mu.Unlock()
		return
	case regWCWD:
		cmd := value >> 8
		d.irqEn = value&(1<<7) != 0
		d.mu.Unlock()
		d.runCommand(int(cmd))
		return
	}
	d.mu.Unlock()
}

// runCommand executes one controller command against the buffer and
// image, then updates status and raises the completion interrupt if
// enabled (spec.md §8 scenario 6).
func (d *Device) runCommand(cmd int) {
	d.mu.Lock()
	d.sr1 = sr1Busy
	d.sr2 = 0

	if d.img == nil {
		d.sr2 = sr2NotReady
		d.sr1 = sr1Error
		d.mu.Unlock()
		d.postComplete()
		return
	}

	var err error
	switch cmd {
	case CmdRecalibrate:
		d.track = 0
	case CmdSeek:
		// track/side already loaded via WDAD.
	case CmdReadID, CmdReadData:
		d.bufPos = 0
		idx := floppyimage.SectorIndex(d.track, d.side, d.sector)
		err = d.img.ReadSector(idx, d.buf[:floppyimage.SectorWords])
	case CmdWriteData:
		idx := floppyimage.SectorIndex(d.track, d.side, d.sector)
		err = d.img.WriteSector(idx, d.buf[:floppyimage.SectorWords])
		d.bufPos = 0
	case CmdFormatTrack:
		var zero [floppyimage.SectorWords]uint16
		for s := 0; s < floppyimage.SectorsPerTrack; s++ {
			idx := floppyimage.SectorIndex(d.track, d.side, s)
			if e := d.img.WriteSector(idx, zero[:]); e != nil {
				err = e
				break
			}
		}
	case CmdControlReset:
		d.bufPos = 0
	}

	if err != nil {
		d.sr2 = sr2MissingSector
		d.sr1 = sr1Error
	} else {
		d.sr1 = sr1Complete
	}
	d.mu.Unlock()
	d.postComplete()
}

func (d *Device) postComplete() {
	d.mu.Lock()
	en := d.irqEn
	d.sr1 &^= sr1Busy
	d.mu.Unlock()
	if en && d.Raise != nil {
		d.Raise(11, 021)
	}
}
