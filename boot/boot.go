/*
 * ND100 - BPUN/BP boot image loaders and writers.
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

// Package boot reads and writes the ND100's two boot image formats
// (spec.md §6): BPUN ("binary punch", an ASCII-headered load image with
// a checksum) and BP (a raw 65536-word memory dump). Both are paper-tape
// era formats, carried here as plain file I/O rather than a device.
package boot

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"nd100/memory"
)

// ErrChecksum is returned by LoadBPUN when the payload's checksum does
// not match the trailing checksum word.
var ErrChecksum = errors.New("boot: BPUN checksum mismatch")

// BPUN holds one decoded BPUN image: its ASCII header, the load address
// and payload the header's words described, and the trailing action code.
type BPUN struct {
	Header     string
	LoadAddr   uint16
	Payload    []uint16
	Checksum   uint16
	ActionCode uint16
}

// checksum is the arithmetic sum of payload modulo 2^16, per spec.md §6.
func checksum(payload []uint16) uint16 {
	var sum uint16
	for _, w := range payload {
		sum += w
	}
	return sum
}

// ReadBPUN parses a BPUN image from r: a 7-bit ASCII header ending in
// '!', then big-endian load-address and word-count, then word-count
// big-endian payload words, then a checksum and an action code.
func ReadBPUN(r io.Reader) (*BPUN, error) {
	br := bufio.NewReader(r)

	var header []byte
	for {
		b, err := br.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("boot: reading BPUN header: %w", err)
		}
		header = append(header, b)
		if b == '!' {
			break
		}
	}

	loadAddr, err := readWord(br)
	if err != nil {
		return nil, fmt.Errorf("boot: reading BPUN load address: %w", err)
	}
	count, err := readWord(br)
	if err != nil {
		return nil, fmt.Errorf("boot: reading BPUN word count: %w", err)
	}

	payload := make([]uint16, count)
	for i := range payload {
		w, err := readWord(br)
		if err != nil {
			return nil, fmt.Errorf("boot: reading BPUN payload word %d: %w", i, err)
		}
		payload[i] = w
	}

	sum, err := readWord(br)
	if err != nil {
		return nil, fmt.Errorf("boot: reading BPUN checksum: %w", err)
	}
	action, err := readWord(br)
	if err != nil {
		return nil, fmt.Errorf("boot: reading BPUN action code: %w", err)
	}

	if checksum(payload) != sum {
		return nil, ErrChecksum
	}

	return &BPUN{
		Header:     string(header),
		LoadAddr:   loadAddr,
		Payload:    payload,
		Checksum:   sum,
		ActionCode: action,
	}, nil
}

// LoadBPUNFile reads the BPUN image at path and deposits its payload
// into mem at its encoded load address, returning the action code.
func LoadBPUNFile(path string, mem *memory.Store) (actionCode uint16, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("boot: open %s: %w", path, err)
	}
	defer f.Close()

	img, err := ReadBPUN(f)
	if err != nil {
		return 0, err
	}
	for i, w := range img.Payload {
		mem.WriteWord(img.LoadAddr+uint16(i), w, memory.SelectWord)
	}
	return img.ActionCode, nil
}

// WriteBPUNFile writes payload out as a BPUN image to be loaded at
// loadAddr, with the given ASCII header (caller supplies the trailing '!')
// and action code.
func WriteBPUNFile(path, header string, loadAddr uint16, payload []uint16, actionCode uint16) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("boot: create %s: %w", path, err)
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	if _, err := bw.WriteString(header); err != nil {
		return err
	}
	if err := writeWord(bw, loadAddr); err != nil {
		return err
	}
	if err := writeWord(bw, uint16(len(payload))); err != nil {
		return err
	}
	for _, w := range payload {
		if err := writeWord(bw, w); err != nil {
			return err
		}
	}
	if err := writeWord(bw, checksum(payload)); err != nil {
		return err
	}
	if err := writeWord(bw, actionCode); err != nil {
		return err
	}
	return bw.Flush()
}

// LoadBPFile reads a raw 65536-word big-endian memory dump into mem.
func LoadBPFile(path string, mem *memory.Store) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("boot: open %s: %w", path, err)
	}
	defer f.Close()

	br := bufio.NewReader(f)
	for addr := 0; addr < memory.Words; addr++ {
		w, err := readWord(br)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("boot: reading BP word %#o: %w", addr, err)
		}
		mem.WriteWord(uint16(addr), w, memory.SelectWord)
	}
	return nil
}

// WriteBPFile dumps the full 64K-word memory image to path, big-endian.
func WriteBPFile(path string, mem *memory.Store) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("boot: create %s: %w", path, err)
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	for addr := 0; addr < memory.Words; addr++ {
		if err := writeWord(bw, mem.ReadWord(uint16(addr))); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func readWord(r io.Reader) (uint16, error) {
	var b [2]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return uint16(b[0])<<8 | uint16(b[1]), nil
}

func writeWord(w io.Writer, v uint16) error {
	_, err := w.Write([]byte{byte(v >> 8), byte(v)})
	return err
}
