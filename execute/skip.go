/*
 * ND100 - Skip family (SKP).
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

package execute

// SkipCond enumerates the ND100 SKP condition selectors (spec.md §4.5).
type SkipCond int

const (
	SkipEQL  SkipCond = iota // signed/unsigned equal
	SkipGEQ                  // signed >=
	SkipGRE                  // signed >
	SkipMGRE                 // unsigned >
	SkipUEQ                  // not equal
	SkipLSS                  // signed <
	SkipLSSE                 // signed <=
	SkipMLSS                 // unsigned <
)

// EvalSkip evaluates whether cond holds between a and b, per spec.md §4.5's
// skip-family condition selectors. Exported for direct testing (spec.md §8
// scenario 2).
func EvalSkip(cond SkipCond, a, b uint16) bool {
	sa, sb := int16(a), int16(b)
	switch cond {
	case SkipEQL:
		return a == b
	case SkipGEQ:
		return sa >= sb
	case SkipGRE:
		return sa > sb
	case SkipMGRE:
		return a > b
	case SkipUEQ:
		return a != b
	case SkipLSS:
		return sa < sb
	case SkipLSSE:
		return sa <= sb
	case SkipMLSS:
		return a < b
	}
	return false
}

func (c *CPU) execSkip(reg1, reg2, arg int) {
	level := c.Regs.Active()
	a := c.Regs.Get(level, reg1)
	b := c.Regs.Get(level, reg2)
	cond := SkipCond(arg & 0x7)

	if EvalSkip(cond, a, b) {
		c.Regs.SetP(c.Regs.P() + 1)
	}
}
