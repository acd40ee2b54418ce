/*
 * ND100 - Per-level register banks and the STS status word.
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

// Package register implements the ND100's 16 per-level register banks
// (STS, D, P, B, L, A, T, X) plus per-level PCR, and the STS status-word
// bit layout.
package register

// Index layout within a bank, fixed by the ISA.
const (
	STS = iota
	D
	P
	B
	L
	A
	T
	X
	NumRegs
)

// Levels is the number of program levels.
const Levels = 16

// STSBits names the individual status flags packed into the STS word.
type STSBits struct {
	C     bool // carry
	Q     bool // dynamic overflow
	O     bool // static (sticky) overflow
	M     bool // multi-shift link
	K     bool
	Z     bool
	N100  bool
	Level uint8 // current-level field, 0..15
}

// Pack encodes STSBits into the 16-bit STS word. Bit layout (low to high):
// 0 C, 1 Q, 2 O, 3 M, 4 K, 5 Z, 6 N100, then the 4-bit level field in the
// top nibble (bits 12-15) — the remaining bits are reserved/unused.
func (s STSBits) Pack() uint16 {
	var v uint16
	if s.C {
		v |= 1 << 0
	}
	if s.Q {
		v |= 1 << 1
	}
	if s.O {
		v |= 1 << 2
	}
	if s.M {
		v |= 1 << 3
	}
	if s.K {
		v |= 1 << 4
	}
	if s.Z {
		v |= 1 << 5
	}
	if s.N100 {
		v |= 1 << 6
	}
	v |= uint16(s.Level&0xf) << 12
	return v
}

// UnpackSTS decodes a 16-bit STS word into STSBits.
func UnpackSTS(v uint16) STSBits {
	return STSBits{
		C:     v&(1<<0) != 0,
		Q:     v&(1<<1) != 0,
		O:     v&(1<<2) != 0,
		M:     v&(1<<3) != 0,
		K:     v&(1<<4) != 0,
		Z:     v&(1<<5) != 0,
		N100:  v&(1<<6) != 0,
		Level: uint8(v >> 12),
	}
}

// File holds all 16 per-level register banks and their PCRs.
type File struct {
	banks  [Levels][NumRegs]uint16
	pcr    [Levels]uint16
	active int // ACTL mirror, kept in step by SetActive
}

// New returns a zeroed register file.
func New() *File {
	return &File{}
}

// Clear zeros every bank and PCR, as performed by MCL. The caller (MCL
// handler) is responsible for re-establishing STS.O/N100 on level 0
// afterwards, per spec.md §3.
func (f *File) Clear() {
	for l := 0; l < Levels; l++ {
		for r := 0; r < NumRegs; r++ {
			f.banks[l][r] = 0
		}
		f.pcr[l] = 0
	}
}

// Get returns register idx of level's bank.
func (f *File) Get(level int, idx int) uint16 {
	return f.banks[level%Levels][idx%NumRegs]
}

// Set writes register idx of level's bank. Writing STS re-stamps the
// current-level field when level is the active level, preserving the
// invariant ACTL == STS[ACTL].level_field.
func (f *File) Set(level int, idx int, value uint16) {
	f.banks[level%Levels][idx%NumRegs] = value
	if idx == STS && level == f.active {
		f.stampLevel(level)
	}
}

// PCR returns the paging-control register for level.
func (f *File) PCR(level int) uint16 {
	return f.pcr[level%Levels]
}

// SetPCR writes the paging-control register for level.
func (f *File) SetPCR(level int, value uint16) {
	f.pcr[level%Levels] = value
}

// STS returns the decoded status bits for level.
func (f *File) STS(level int) STSBits {
	return UnpackSTS(f.banks[level%Levels][STS])
}

// SetSTS writes the decoded status bits for level, honoring the
// current-level invariant like Set does.
func (f *File) SetSTS(level int, bits STSBits) {
	if level == f.active {
		bits.Level = uint8(level)
	}
	f.banks[level%Levels][STS] = bits.Pack()
}

// Active returns the currently active level (the RegisterFile's mirror of
// InterruptController.ACTL).
func (f *File) Active() int {
	return f.active
}

// SetActive records a level switch: stamps the new active level's
// current-level field into its own STS, keeping the invariant intact.
// Called by the InterruptController (via Machine) on every level switch.
func (f *File) SetActive(level int) {
	f.active = level % Levels
	f.stampLevel(f.active)
}

func (f *File) stampLevel(level int) {
	bits := UnpackSTS(f.banks[level][STS])
	bits.Level = uint8(level)
	f.banks[level][STS] = bits.Pack()
}

// P returns the program counter (P register) of the active level.
func (f *File) P() uint16 {
	return f.banks[f.active][P]
}

// SetP advances/sets the program counter of the active level.
func (f *File) SetP(value uint16) {
	f.banks[f.active][P] = value
}
