package execute

import (
	"testing"

	"nd100/register"
)

// TestSkipEqualScenario matches spec.md §8 scenario 2.
func TestSkipEqualScenario(t *testing.T) {
	c := newTestCPU()
	c.Regs.Set(0, register.A, 5)
	c.Regs.Set(0, register.X, 5)
	c.Regs.SetP(10)

	c.execSkip(register.A, register.X, int(SkipEQL))
	if c.Regs.P() != 11 {
		t.Fatalf("P = %d, want 11 (skip taken)", c.Regs.P())
	}

	c.Regs.Set(0, register.X, 6)
	c.Regs.SetP(10)
	c.execSkip(register.A, register.X, int(SkipEQL))
	if c.Regs.P() != 10 {
		t.Fatalf("P = %d, want 10 (skip not taken)", c.Regs.P())
	}
}

func TestEvalSkipConditions(t *testing.T) {
	cases := []struct {
		cond SkipCond
		a, b uint16
		want bool
	}{
		{SkipEQL, 5, 5, true},
		{SkipUEQ, 5, 6, true},
		{SkipGEQ, 5, 5, true},
		{SkipGRE, 6, 5, true},
		{SkipLSS, 0xffff, 0, true}, // -1 as a signed word
		{SkipLSSE, 5, 5, true},
		{SkipMGRE, 0xffff, 1, true}, // unsigned: 0xffff > 1
		{SkipMLSS, 1, 0xffff, true}, // unsigned: 1 < 0xffff
	}
	for _, tc := range cases {
		if got := EvalSkip(tc.cond, tc.a, tc.b); got != tc.want {
			t.Errorf("EvalSkip(%v, %#x, %#x) = %v, want %v", tc.cond, tc.a, tc.b, got, tc.want)
		}
	}
}
