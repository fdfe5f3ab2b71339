package vm

import (
	"testing"

	"jargon/internal/isa"
)

func resolved(idx int) isa.Location {
	return isa.Location{Resolved: true, Index: idx}
}

func TestArithmeticAndHalt(t *testing.T) {
	code := []isa.Instr{
		{Op: isa.OpPush, Lit: isa.IntLiteral(2)},
		{Op: isa.OpPush, Lit: isa.IntLiteral(3)},
		{Op: isa.OpOper, Binary: isa.BAdd},
		{Op: isa.OpHalt},
	}
	m := New(code, 16, 16)
	status, err := m.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if status != Halted {
		t.Fatalf("status = %v, want Halted", status)
	}
	top := m.Peek(m.SP() - 1)
	if top.Tag != SInt || top.Int != 5 {
		t.Errorf("top = %v, want INT 5", top)
	}
}

func TestDivideByZeroFaults(t *testing.T) {
	code := []isa.Instr{
		{Op: isa.OpPush, Lit: isa.IntLiteral(1)},
		{Op: isa.OpPush, Lit: isa.IntLiteral(0)},
		{Op: isa.OpOper, Binary: isa.BDiv},
	}
	m := New(code, 16, 16)
	_, err := m.Run()
	if err == nil {
		t.Fatal("expected a fault")
	}
	f, ok := err.(*Fault)
	if !ok {
		t.Fatalf("err = %v, want *Fault", err)
	}
	if f.Code != FaultDivideByZero {
		t.Errorf("Code = %v, want FaultDivideByZero", f.Code)
	}
}

func TestApplyOnNonClosureFaults(t *testing.T) {
	// Push two ordinary ints where APPLY expects [arg, closure] and apply.
	code := []isa.Instr{
		{Op: isa.OpPush, Lit: isa.IntLiteral(1)},
		{Op: isa.OpPush, Lit: isa.IntLiteral(2)},
		{Op: isa.OpApply},
	}
	m := New(code, 16, 16)
	_, err := m.Run()
	f, ok := err.(*Fault)
	if !ok {
		t.Fatalf("err = %v, want *Fault", err)
	}
	if f.Code != FaultTypeMismatch {
		t.Errorf("Code = %v, want FaultTypeMismatch", f.Code)
	}
}

func TestCaseOnNonSumFaults(t *testing.T) {
	// A ref cell has no HEADER at all; CASE requires one tagged INL/INR.
	code := []isa.Instr{
		{Op: isa.OpPush, Lit: isa.IntLiteral(9)},
		{Op: isa.OpMkRef},
		{Op: isa.OpCase, Target: resolved(0)},
	}
	m := New(code, 16, 16)
	_, err := m.Run()
	f, ok := err.(*Fault)
	if !ok {
		t.Fatalf("err = %v, want *Fault", err)
	}
	if f.Code != FaultBadHeapBlock {
		t.Errorf("Code = %v, want FaultBadHeapBlock", f.Code)
	}
}

func TestStackUnderflowOnPop(t *testing.T) {
	// New leaves a synthetic frame (FP, RA) occupying stack[0:2], so it
	// takes three pops past an empty program to hit real underflow.
	code := []isa.Instr{
		{Op: isa.OpPop},
		{Op: isa.OpPop},
		{Op: isa.OpPop},
	}
	m := New(code, 16, 16)
	status, err := m.Run()
	if err != nil {
		t.Fatalf("Run returned an error, want a Status transition: %v", err)
	}
	if status != StackUnderflow {
		t.Errorf("status = %v, want StackUnderflow", status)
	}
}

func TestHeapExhaustionWithNoGCAborts(t *testing.T) {
	code := []isa.Instr{
		{Op: isa.OpPush, Lit: isa.IntLiteral(1)},
		{Op: isa.OpMkRef},
	}
	m := New(code, 16, 0) // zero heap capacity
	status, err := m.Run()
	if err != nil {
		t.Fatalf("Run returned an error, want a Status transition: %v", err)
	}
	if status != HeapIndexOutOfBound {
		t.Errorf("status = %v, want HeapIndexOutOfBound", status)
	}
}

func TestRaiseWithNoHandlerIsTerminalStatus(t *testing.T) {
	code := []isa.Instr{
		{Op: isa.OpPush, Lit: isa.IntLiteral(1)},
		{Op: isa.OpRaise},
	}
	m := New(code, 16, 16)
	status, err := m.Run()
	if err != nil {
		t.Fatalf("Run returned an error, want a Status transition: %v", err)
	}
	if status != NoHandler {
		t.Errorf("status = %v, want NoHandler", status)
	}
}

// TestApplyReturnStackDiscipline directly builds a tiny closure by hand
// (bypassing the compiler) and checks that after APPLY and RETURN the
// caller's stack height is restored to what it was before the call plus
// one slot for the result.
func TestApplyReturnStackDiscipline(t *testing.T) {
	// The argument is pushed before the closure (the App node's compiler
	// rule compiles the argument first), so the closure lands on top at sp-1
	// where APPLY expects it.
	// def at label 4: LOOKUP stack-2 (the argument); RETURN.
	// main: PUSH 41; MK_CLOSURE(entry=4, nfree=0); APPLY; HALT.
	code := []isa.Instr{
		{Op: isa.OpPush, Lit: isa.IntLiteral(41)},             // 0
		{Op: isa.OpMkClosure, Entry: resolved(4), NumFree: 0}, // 1
		{Op: isa.OpApply},                                     // 2
		{Op: isa.OpHalt},                                      // 3
		{Op: isa.OpLookup, Path: isa.StackLocation(-2)},       // 4: the identity function
		{Op: isa.OpReturn},                                    // 5
	}
	m := New(code, 32, 32)
	spBefore := m.SP()
	status, err := m.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if status != Halted {
		t.Fatalf("status = %v, want Halted", status)
	}
	if m.SP() != spBefore+1 {
		t.Errorf("SP() = %d, want %d (stack height restored plus one result)", m.SP(), spBefore+1)
	}
	top := m.Peek(m.SP() - 1)
	if top.Tag != SInt || top.Int != 41 {
		t.Errorf("result = %v, want INT 41", top)
	}
}

func TestAllocationIsMonotone(t *testing.T) {
	code := []isa.Instr{
		{Op: isa.OpPush, Lit: isa.IntLiteral(1)},
		{Op: isa.OpMkRef},
		{Op: isa.OpPop},
		{Op: isa.OpPush, Lit: isa.IntLiteral(2)},
		{Op: isa.OpMkRef},
		{Op: isa.OpHalt},
	}
	m := New(code, 16, 16)
	var hps []int
	for m.Status() == Running {
		hps = append(hps, m.HP())
		if err := m.Step(); err != nil {
			t.Fatalf("Step: %v", err)
		}
	}
	for i := 1; i < len(hps); i++ {
		if hps[i] < hps[i-1] {
			t.Fatalf("hp decreased from %d to %d between steps %d and %d", hps[i-1], hps[i], i-1, i)
		}
	}
}

// TestTryRaiseUnwindsToHandler exercises the exception-frame scheme
// (deliberately the fragile encoding, not a redesigned one): TRY pushes
// three tagged SInt cells, RAISE scans for them, restores sp/fp/ep and
// jumps to the recorded handler with the raised value left on top of stack.
func TestTryRaiseUnwindsToHandler(t *testing.T) {
	// try (raise 7) ... with e => e + 1
	code := []isa.Instr{
		{Op: isa.OpTry, Target: resolved(4)},     // 0
		{Op: isa.OpPush, Lit: isa.IntLiteral(7)}, // 1
		{Op: isa.OpRaise},                        // 2
		{Op: isa.OpGoto, Target: resolved(7)},    // 3 (unreached: guarded body raised)
		{Op: isa.OpLabel, Label: "handler"},      // 4
		{Op: isa.OpPush, Lit: isa.IntLiteral(1)}, // 5
		{Op: isa.OpOper, Binary: isa.BAdd},       // 6
		{Op: isa.OpHalt},                         // 7
	}
	m := New(code, 32, 16)
	status, err := m.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if status != Halted {
		t.Fatalf("status = %v, want Halted", status)
	}
	top := m.Peek(m.SP() - 1)
	if top.Tag != SInt || top.Int != 8 {
		t.Errorf("result = %v, want INT 8", top)
	}
}
