package vm

import "jargon/internal/isa"

// Tracer observes VM execution: every instruction Step is about to
// execute, before the registers it reads have changed, and every heap
// block the VM allocates. It never influences dispatch — a misbehaving
// Tracer can only fail to log, not corrupt a run. internal/trace supplies
// the CLI's implementation; this package only needs the contract and the
// default no-op.
type Tracer interface {
	Instr(vm *VM, in isa.Instr)
	Alloc(addr, n int)
}

type NopTracer struct{}

func (NopTracer) Instr(*VM, isa.Instr) {}
func (NopTracer) Alloc(int, int)       {}
