/*
 * ND100 - Priority-level and interrupt controller.
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

// Package interrupt implements the ND100's 16-level priority-interrupt
// mechanism: PID/PIE, the level-priority encoder, level switching, and the
// IDENT chain. It is the single synchronization point between the CPU
// thread and the asynchronous device worker goroutines (spec.md §5):
// every Raise/Clear/EnqueueIdent/PopIdent call acquires the controller's
// mutex, exactly the "interrupt mutex" spec.md §5 names.
package interrupt

import "sync"

// Levels is the number of program levels.
const Levels = 16

// Internal-interrupt sub-codes recorded in IIC when level 14 is raised.
const (
	IICIllegalInstruction uint16 = 1
	IICPrivileged         uint16 = 2
	IICIOXError           uint16 = 3
	IICPageFault           uint16 = 4
	IICProtectViolation    uint16 = 5
	IICMONUnhandled        uint16 = 6
	IICNoIdent             uint16 = 7
)

// IdentEntry is one pending device-identification entry in the IDENT chain.
type IdentEntry struct {
	Level    int
	IdentCode uint16
	CallerID  uint16
}

// Controller holds PID, PIE, PVL, ACTL, the per-level pending internal-
// interrupt sub-code, and the IDENT chain. All fields are guarded by mu;
// device workers call Raise/EnqueueIdent concurrently with the CPU thread's
// CheckAndSwitch/Pop calls.
type Controller struct {
	mu    sync.Mutex
	cond  *sync.Cond
	pid   uint16
	pie   uint16
	pvl   int
	actl  int
	iic   [Levels]uint16
	chain [Levels][]IdentEntry
}

// New returns a controller with everything clear and level 0 active.
func New() *Controller {
	c := &Controller{}
	c.cond = sync.NewCond(&c.mu)
	return c
}

// Clear resets PID/PIE/PVL/IIC/IDENT chain and makes level 0 active, as
// performed by MCL.
func (c *Controller) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pid = 0
	c.pie = 0
	c.pvl = 0
	c.actl = 0
	for l := range c.iic {
		c.iic[l] = 0
	}
	for l := range c.chain {
		c.chain[l] = nil
	}
}

// Raise sets PID bit `level` and, for internal interrupts (level 14),
// records subcode in IIC. Safe for concurrent device-worker calls.
func (c *Controller) Raise(level int, subcode uint16) {
	c.mu.Lock()
	c.pid |= 1 << uint(level%Levels)
	c.iic[level%Levels] = subcode
	c.cond.Broadcast()
	c.mu.Unlock()
}

// ClearLevel clears PID bit `level`.
func (c *Controller) ClearLevel(level int) {
	c.mu.Lock()
	c.pid &^= 1 << uint(level%Levels)
	c.mu.Unlock()
}

// PID returns the current pending mask.
func (c *Controller) PID() uint16 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pid
}

// SetPID overwrites the pending mask (TRA/TRR access to the PID register).
func (c *Controller) SetPID(v uint16) {
	c.mu.Lock()
	c.pid = v
	c.cond.Broadcast()
	c.mu.Unlock()
}

// PIE returns the current enable mask.
func (c *Controller) PIE() uint16 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pie
}

// SetPIE overwrites the enable mask (TRA/TRR access to the PIE register).
func (c *Controller) SetPIE(v uint16) {
	c.mu.Lock()
	c.pie = v
	c.cond.Broadcast()
	c.mu.Unlock()
}

// PVL returns the previous (pre-switch) level.
func (c *Controller) PVL() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pvl
}

// SetPVL overwrites PVL directly, used only by snapshot restore.
func (c *Controller) SetPVL(level int) {
	c.mu.Lock()
	c.pvl = level % Levels
	c.mu.Unlock()
}

// ACTL returns the currently active level.
func (c *Controller) ACTL() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.actl
}

// SetACTL overwrites ACTL directly, used only by snapshot restore (the
// caller is responsible for keeping RegisterFile's active mirror, see
// register.File.SetActive, in step with this).
func (c *Controller) SetACTL(level int) {
	c.mu.Lock()
	c.actl = level % Levels
	c.mu.Unlock()
}

// IIC returns the recorded internal-interrupt sub-code for level.
func (c *Controller) IIC(level int) uint16 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.iic[level%Levels]
}

// SetIIC overwrites the recorded internal-interrupt sub-code for level,
// used only by snapshot restore.
func (c *Controller) SetIIC(level int, subcode uint16) {
	c.mu.Lock()
	c.iic[level%Levels] = subcode
	c.mu.Unlock()
}

// pendingLocked computes PID & PIE with level 0 forced runnable, the
// fallback level per spec.md §3.
func (c *Controller) pendingLocked() uint16 {
	return (c.pid & c.pie) | 1
}

// highestLocked returns the highest-numbered set bit in v.
func highestLocked(v uint16) int {
	for l := Levels - 1; l >= 0; l-- {
		if v&(1<<uint(l)) != 0 {
			return l
		}
	}
	return 0
}

// CheckAndSwitch computes pending = PID & PIE (level 0 always runnable),
// and if the highest-numbered runnable level differs from ACTL, switches:
// PVL <- ACTL, ACTL <- new level. onSwitch, if non-nil, is called with the
// new level while the controller's mutex is held, so the caller (Machine)
// can atomically update RegisterFile's active-level mirror in step with
// ACTL. Returns whether a switch occurred.
func (c *Controller) CheckAndSwitch(onSwitch func(newLevel int)) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	next := highestLocked(c.pendingLocked())
	if next == c.actl {
		return false
	}
	c.pvl = c.actl
	c.actl = next
	if onSwitch != nil {
		onSwitch(next)
	}
	return true
}

// WaitForInterrupt blocks the calling (CPU) goroutine until some bit
// becomes runnable for a level other than the currently active one, or
// until cancel is closed. Implements the WAIT instruction (spec.md §4.6)
// and the CPU thread's blocking half of spec.md §5's "the CPU thread may
// block on WAIT until any PID bit becomes set for a level unmasked in
// PIE".
func (c *Controller) WaitForInterrupt(cancel <-chan struct{}) {
	done := make(chan struct{})
	go func() {
		c.mu.Lock()
		for highestLocked(c.pendingLocked()) == c.actl {
			c.cond.Wait()
		}
		c.mu.Unlock()
		close(done)
	}()
	select {
	case <-done:
	case <-cancel:
	}
}

// EnqueueIdent appends an identification entry to level's IDENT chain and
// wakes the CPU thread, used by device workers on I/O completion.
func (c *Controller) EnqueueIdent(level int, identCode uint16, callerID uint16) {
	c.mu.Lock()
	c.chain[level%Levels] = append(c.chain[level%Levels], IdentEntry{Level: level, IdentCode: identCode, CallerID: callerID})
	c.cond.Broadcast()
	c.mu.Unlock()
}

// PopIdent dequeues the first entry for level in FIFO order. ok is false
// if the chain for level was empty (the IDENT handler must then raise
// internal interrupt level 14 with IICNoIdent).
func (c *Controller) PopIdent(level int) (identCode uint16, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	q := c.chain[level%Levels]
	if len(q) == 0 {
		return 0, false
	}
	identCode = q[0].IdentCode
	c.chain[level%Levels] = q[1:]
	return identCode, true
}

// IdentEntries flattens every level's IDENT chain, in level order then
// FIFO order within a level, for snapshot serialization (spec.md §6's
// IDC###/IDL###/IDI### records).
func (c *Controller) IdentEntries() []IdentEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []IdentEntry
	for l := range c.chain {
		out = append(out, c.chain[l]...)
	}
	return out
}

// RestoreIdent rebuilds the IDENT chains from a flattened entry list, used
// only by snapshot restore.
func (c *Controller) RestoreIdent(entries []IdentEntry) {
	c.mu.Lock()
	for l := range c.chain {
		c.chain[l] = nil
	}
	for _, e := range entries {
		c.chain[e.Level%Levels] = append(c.chain[e.Level%Levels], e)
	}
	c.mu.Unlock()
}
