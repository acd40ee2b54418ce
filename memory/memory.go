/*
 * ND100 - Physical memory store.
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

// Package memory implements the ND100's word-addressed physical store
// and its big-endian byte view.
package memory

// Number of words of physical memory (16-bit address space).
const Words = 1 << 16

// Byte-select values for WriteWord.
const (
	SelectHigh Byte = 0 // replace only the high (most significant) byte with value's low byte
	SelectLow  Byte = 1 // replace only the low byte
	SelectWord Byte = 2 // replace the whole word
)

type Byte int

// Store is the ND100's 64K-word physical memory, word-addressed and also
// addressable as a big-endian byte view (byte 0 of word W is W's high byte).
type Store struct {
	words [Words]uint16
}

// New returns a zeroed memory store.
func New() *Store {
	return &Store{}
}

// Clear zeros every word, as performed by MCL.
func (s *Store) Clear() {
	for i := range s.words {
		s.words[i] = 0
	}
}

// ReadWord returns memory[addr]. addr wraps modulo the 64K address space.
func (s *Store) ReadWord(addr uint16) uint16 {
	return s.words[addr]
}

// WriteWord replaces all or part of memory[addr] depending on sel. For a
// single-byte select the byte stored is the low byte of value.
func (s *Store) WriteWord(addr uint16, value uint16, sel Byte) {
	switch sel {
	case SelectHigh:
		s.words[addr] = (s.words[addr] & 0x00ff) | (value&0x00ff)<<8
	case SelectLow:
		s.words[addr] = (s.words[addr] & 0xff00) | (value & 0x00ff)
	default:
		s.words[addr] = value
	}
}

// ReadByte returns byte N of the memory image, big-endian: byte 0 of word W
// is the high byte, byte_addr = 2W + (N&1).
func (s *Store) ReadByte(byteAddr uint32) uint8 {
	word := s.words[uint16(byteAddr>>1)]
	if byteAddr&1 == 0 {
		return uint8(word >> 8)
	}
	return uint8(word)
}

// WriteByte stores b into the byte addressed by byteAddr, leaving the other
// byte of that word untouched.
func (s *Store) WriteByte(byteAddr uint32, b uint8) {
	addr := uint16(byteAddr >> 1)
	if byteAddr&1 == 0 {
		s.WriteWord(addr, uint16(b), SelectHigh)
	} else {
		s.WriteWord(addr, uint16(b), SelectLow)
	}
}

// ReadDouble reads two consecutive words (used by LDD/LDF/FAD etc.), MSB
// word first.
func (s *Store) ReadDouble(addr uint16) uint32 {
	hi := uint32(s.ReadWord(addr))
	lo := uint32(s.ReadWord(addr + 1))
	return hi<<16 | lo
}

// WriteDouble writes two consecutive words, MSB word first.
func (s *Store) WriteDouble(addr uint16, value uint32) {
	s.WriteWord(addr, uint16(value>>16), SelectWord)
	s.WriteWord(addr+1, uint16(value), SelectWord)
}
