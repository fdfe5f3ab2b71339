// Package vm executes a resolved isa.Instr listing. It never
// sees Slang source or labels — that is internal/compiler and
// internal/loader's job. The VM owns four regions: a code listing, a stack,
// a heap, and five registers (sp, fp, ep, cp, hp), plus a terminal Status.
package vm

import (
	"fmt"
	"os"

	"jargon/internal/isa"
)

// statusAbort is panicked by push/pop/at/heapRead/heapWrite when a bound is
// violated, and by the allocating instructions when allocate reports the
// heap exhausted. Step's recover distinguishes it from a *Fault: an
// abort is a Status (something the driver reports and exits on), a Fault
// is a *Fault (a listing that violates the compiler/VM contract).
type statusAbort Status

// VM is one program's execution state. Zero value is not usable; build one
// with New.
type VM struct {
	code []isa.Instr

	stack []StackCell
	heap  []HeapCell

	sp int // next free stack slot
	fp int // current frame's base
	ep int // most recent exception-frame stack index, advisory only
	cp int // code pointer: index of the next instruction to execute
	hp int // next free heap slot

	status Status

	gc     GCHook
	input  InputProvider
	tracer Tracer
}

// Option configures a VM at construction time.
type Option func(*VM)

func WithGC(gc GCHook) Option             { return func(vm *VM) { vm.gc = gc } }
func WithInput(in InputProvider) Option   { return func(vm *VM) { vm.input = in } }
func WithTracer(t Tracer) Option          { return func(vm *VM) { vm.tracer = t } }

// New builds a VM ready to run code starting at instruction 0. The initial
// frame is a synthetic one: FP and RA are pushed so that
// a top-level RETURN (if the listing ever executes one) has something
// harmless to pop; fp points at that frame and sp starts past it. READ
// reads from a buffered os.Stdin unless WithInput supplies another provider.
func New(code []isa.Instr, stackSize, heapSize int, opts ...Option) *VM {
	vm := &VM{
		code:  code,
		stack: make([]StackCell, stackSize),
		heap:  make([]HeapCell, heapSize),
		gc: NopGC{},
		input: NewStdinProvider(os.Stdin),
	}
	vm.stack[0] = mkFP(0)
	vm.stack[1] = mkRA(0)
	vm.sp = 2
	vm.tracer = NopTracer{}
	for _, opt := range opts {
		opt(vm)
	}
	return vm
}

func (vm *VM) Status() Status { return vm.status }
func (vm *VM) SP() int        { return vm.sp }
func (vm *VM) FP() int        { return vm.fp }
func (vm *VM) CP() int        { return vm.cp }
func (vm *VM) HP() int        { return vm.hp }

// StackCap and HeapCap report the fixed capacities passed to New, so a
// caller (the debug TUI's heap-usage gauge) can render occupancy as a
// fraction without reaching into unexported fields.
func (vm *VM) StackCap() int { return len(vm.stack) }
func (vm *VM) HeapCap() int  { return len(vm.heap) }

// Peek returns the stack cell at absolute index i without popping it. Used
// by internal/driver to decode the result and by the debug TUI to render
// the top of the stack.
func (vm *VM) Peek(i int) StackCell { return vm.stack[i] }

// HeapCellAt is a read-only view of heap cell i; unlike heapRead it never
// aborts, so i must already be a valid index (e.g. one a successful
// heapRead accepted).
func (vm *VM) HeapCellAt(i int) HeapCell { return vm.heap[i] }

func (vm *VM) abort(s Status) {
	vm.status = s
	panic(statusAbort(s))
}

func (vm *VM) push(c StackCell) {
	if vm.sp >= len(vm.stack) {
		vm.abort(StackIndexOutOfBound)
	}
	vm.stack[vm.sp] = c
	vm.sp++
}

func (vm *VM) pop() StackCell {
	if vm.sp <= 0 {
		vm.abort(StackUnderflow)
	}
	vm.sp--
	return vm.stack[vm.sp]
}

func (vm *VM) at(idx int) StackCell {
	if idx < 0 || idx >= vm.sp {
		vm.abort(StackIndexOutOfBound)
	}
	return vm.stack[idx]
}

// Run steps the VM until it leaves Running, returning the terminal status
// or the first Fault encountered. A Fault always means the driver aborted
// mid-instruction; the Status at that point is whatever it was before the
// faulting instruction started (usually still Running).
func (vm *VM) Run() (Status, error) {
	for vm.status == Running {
		if err := vm.Step(); err != nil {
			return vm.status, err
		}
	}
	return vm.status, nil
}

// Step executes exactly one instruction. It returns a non-nil error only
// for a *Fault (a contract violation in the listing, or a division by
// zero); ordinary run-state
// transitions are reported through Status, not through the error return.
func (vm *VM) Step() (err error) {
	if vm.status != Running {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			switch v := r.(type) {
			case statusAbort:
				vm.status = Status(v)
			case *Fault:
				err = v
			default:
				panic(r)
			}
		}
	}()

	if vm.cp < 0 || vm.cp >= len(vm.code) {
		vm.abort(CodeIndexOutOfBound)
	}
	in := vm.code[vm.cp]
	vm.tracer.Instr(vm, in)

	jumped := vm.exec(in)
	if vm.status != Running {
		return nil
	}
	if !jumped {
		vm.cp++
	}
	return nil
}

func (vm *VM) exec(in isa.Instr) (jumped bool) {
	switch in.Op {
	case isa.OpPush:
		vm.push(literalToStack(in.Lit))

	case isa.OpUnary:
		vm.execUnary(in.Unary)

	case isa.OpOper:
		vm.execBinary(in.Binary)

	case isa.OpSwap:
		b := vm.pop()
		a := vm.pop()
		vm.push(b)
		vm.push(a)

	case isa.OpPop:
		vm.pop()

	case isa.OpLabel:
		// no-op at runtime; the loader has already turned every reference
		// to this label into a resolved index.

	case isa.OpMkPair:
		snd := vm.pop()
		fst := vm.pop()
		addr, ok := vm.allocate(3)
		if !ok {
			vm.abort(HeapIndexOutOfBound)
		}
		vm.heapWrite(addr, heapHeader(3, HdrPair))
		vm.heapWrite(addr+1, stackToHeap(fst))
		vm.heapWrite(addr+2, stackToHeap(snd))
		vm.push(mkHI(addr))

	case isa.OpFst, isa.OpSnd:
		h := vm.popHeapIndex()
		if hdr := vm.heapAt(h); hdr.Tag != HHeader || hdr.Kind != HdrPair {
			vm.fault(FaultBadHeapBlock, "FST/SND operand is not a PAIR block")
		}
		off := 1
		if in.Op == isa.OpSnd {
			off = 2
		}
		vm.push(heapToStack(vm.heapAt(h + off)))

	case isa.OpMkInl:
		vm.mkTagged(HdrInl)

	case isa.OpMkInr:
		vm.mkTagged(HdrInr)

	case isa.OpCase:
		vm.execCase(in.Target)
		return true

	case isa.OpMkRef:
		v := vm.pop()
		addr, ok := vm.allocate(1)
		if !ok {
			vm.abort(HeapIndexOutOfBound)
		}
		vm.heapWrite(addr, stackToHeap(v))
		vm.push(mkHI(addr))

	case isa.OpDeref:
		vm.push(heapToStack(vm.heapAt(vm.popHeapIndex())))

	case isa.OpAssign:
		v := vm.pop()
		h := vm.popHeapIndex()
		vm.heapWrite(h, stackToHeap(v))
		vm.push(mkUnit())

	case isa.OpTest:
		c := vm.pop()
		if c.Tag != SBool {
			vm.fault(FaultTypeMismatch, "TEST expects a BOOL")
		}
		if !c.Bool {
			vm.cp = vm.target(in.Target)
			return true
		}

	case isa.OpGoto:
		vm.cp = vm.target(in.Target)
		return true

	case isa.OpHalt:
		vm.status = Halted

	case isa.OpMkClosure:
		vm.execMkClosure(in)

	case isa.OpApply:
		vm.execApply()
		return true

	case isa.OpReturn:
		vm.execReturn()
		return true

	case isa.OpLookup:
		vm.push(vm.load(in.Path))

	case isa.OpTry:
		vm.execTry(in.Target)

	case isa.OpUntry:
		vm.execUntry()

	case isa.OpRaise:
		vm.execRaise()
		return true

	default:
		vm.fault(FaultTypeMismatch, fmt.Sprintf("unknown opcode %v", in.Op))
	}
	return false
}

func literalToStack(l isa.Literal) StackCell {
	switch l.Kind {
	case isa.LitInt:
		return mkInt(l.Int)
	case isa.LitBool:
		return mkBool(l.Bool)
	default:
		return mkUnit()
	}
}

func (vm *VM) target(loc isa.Location) int {
	if !loc.Resolved {
		vm.fault(FaultUnresolvedTarget, fmt.Sprintf("unresolved label %q", loc.Label))
	}
	return loc.Index
}

// popHeapIndex pops a stack cell that must carry a heap reference.
func (vm *VM) popHeapIndex() int {
	c := vm.pop()
	if c.Tag != SHI {
		vm.fault(FaultTypeMismatch, "expected a heap reference")
	}
	return c.H
}

func (vm *VM) heapAt(idx int) HeapCell { return vm.heapRead(idx) }

func (vm *VM) mkTagged(kind HeaderKind) {
	v := vm.pop()
	addr, ok := vm.allocate(2)
	if !ok {
		vm.abort(HeapIndexOutOfBound)
	}
	vm.heapWrite(addr, heapHeader(2, kind))
	vm.heapWrite(addr+1, stackToHeap(v))
	vm.push(mkHI(addr))
}

func (vm *VM) execUnary(op isa.UnaryOp) {
	switch op {
	case isa.UNot:
		v := vm.pop()
		if v.Tag != SBool {
			vm.fault(FaultTypeMismatch, "NOT expects a BOOL")
		}
		vm.push(mkBool(!v.Bool))
	case isa.UNeg:
		v := vm.pop()
		if v.Tag != SInt {
			vm.fault(FaultTypeMismatch, "NEG expects an INT")
		}
		vm.push(mkInt(-v.Int))
	case isa.URead:
		vm.pop() // the operand slang's `read <e>` evaluates; READ ignores its value
		if vm.input == nil {
			vm.fault(FaultTypeMismatch, "READ with no input provider configured")
		}
		n, err := vm.input.ReadInt()
		if err != nil {
			vm.fault(FaultTypeMismatch, fmt.Sprintf("READ failed: %v", err))
		}
		vm.push(mkInt(n))
	default:
		vm.fault(FaultTypeMismatch, "unknown unary operator")
	}
}

func (vm *VM) execBinary(op isa.BinOp) {
	rhs := vm.pop()
	lhs := vm.pop()
	switch op {
	case isa.BAnd:
		vm.push(mkBool(vm.mustBool(lhs) && vm.mustBool(rhs)))
	case isa.BOr:
		vm.push(mkBool(vm.mustBool(lhs) || vm.mustBool(rhs)))
	case isa.BEqB:
		vm.push(mkBool(vm.mustBool(lhs) == vm.mustBool(rhs)))
	case isa.BLt:
		vm.push(mkBool(vm.mustInt(lhs) < vm.mustInt(rhs)))
	case isa.BEqI:
		vm.push(mkBool(vm.mustInt(lhs) == vm.mustInt(rhs)))
	case isa.BAdd:
		vm.push(mkInt(vm.mustInt(lhs) + vm.mustInt(rhs)))
	case isa.BSub:
		vm.push(mkInt(vm.mustInt(lhs) - vm.mustInt(rhs)))
	case isa.BMul:
		vm.push(mkInt(vm.mustInt(lhs) * vm.mustInt(rhs)))
	case isa.BDiv:
		d := vm.mustInt(rhs)
		if d == 0 {
			vm.fault(FaultDivideByZero, "division by zero")
		}
		vm.push(mkInt(vm.mustInt(lhs) / d))
	default:
		vm.fault(FaultTypeMismatch, "unknown binary operator")
	}
}

func (vm *VM) mustBool(c StackCell) bool {
	if c.Tag != SBool {
		vm.fault(FaultTypeMismatch, "expected a BOOL")
	}
	return c.Bool
}

func (vm *VM) mustInt(c StackCell) int {
	if c.Tag != SInt {
		vm.fault(FaultTypeMismatch, "expected an INT")
	}
	return c.Int
}

// load resolves a compiled variable reference through one of the two
// addressing modes. STACK_LOCATION is relative to fp; HEAP_LOCATION reads
// through the closure cell sitting one below fp.
func (vm *VM) load(p isa.Path) StackCell {
	switch p.Kind {
	case isa.StackPath:
		return vm.at(vm.fp + p.Offset)
	case isa.HeapPath:
		closure := vm.at(vm.fp - 1)
		if closure.Tag != SHI {
			vm.fault(FaultTypeMismatch, "HEAP_LOCATION with no closure at fp-1")
		}
		return heapToStack(vm.heapAt(closure.H + 1 + p.Offset))
	default:
		vm.fault(FaultTypeMismatch, "unknown addressing mode")
		return StackCell{}
	}
}

// execMkClosure builds a CLOSURE block: HEADER(2+n, CLOSURE), the entry
// point, then the n free variables captured by value in the order the
// compiler pushed them. The free variables sit on top of
// the stack, nearest-first, so fv_i is at sp-1-i for i in [0,n).
func (vm *VM) execMkClosure(in isa.Instr) {
	n := in.NumFree
	fvs := make([]StackCell, n)
	for i := 0; i < n; i++ {
		fvs[i] = vm.pop()
	}
	addr, ok := vm.allocate(2 + n)
	if !ok {
		vm.abort(HeapIndexOutOfBound)
	}
	vm.heapWrite(addr, heapHeader(2+n, HdrClosure))
	vm.heapWrite(addr+1, heapCI(vm.target(in.Entry)))
	for i, fv := range fvs {
		vm.heapWrite(addr+2+i, stackToHeap(fv))
	}
	vm.push(mkHI(addr))
}

// execApply leaves the closure and argument in place on the stack (they
// become stack[fp-1] and stack[fp-2] of the new frame), sets fp to the
// current sp, and pushes the saved FP and return address on top of them.
// stack[fp] is the caller's saved FP, stack[fp+1] the return
// address, stack[fp-1] the closure, stack[fp-2] the argument.
func (vm *VM) execApply() {
	if vm.sp < 2 {
		vm.abort(StackUnderflow)
	}
	clo := vm.at(vm.sp - 1)
	if clo.Tag != SHI {
		vm.fault(FaultTypeMismatch, "APPLY expects a closure at sp-1")
	}
	hdr := vm.heapAt(clo.H)
	if hdr.Tag != HHeader || hdr.Kind != HdrClosure {
		vm.fault(FaultBadHeapBlock, "APPLY target is not a CLOSURE block")
	}
	entry := vm.heapAt(clo.H + 1)
	if entry.Tag != HCI {
		vm.fault(FaultBadHeapBlock, "CLOSURE block missing its entry point")
	}

	savedFP := vm.fp
	retAddr := vm.cp + 1
	vm.fp = vm.sp
	vm.push(mkFP(savedFP))
	vm.push(mkRA(retAddr))
	vm.cp = entry.C
}

// execReturn tears down the current frame using the saved FP/RA sitting at
// stack[fp]/stack[fp+1], drops the argument and closure below them, and
// leaves the callee's result on top of the caller's stack.
func (vm *VM) execReturn() {
	result := vm.pop()
	savedFP := vm.at(vm.fp)
	if savedFP.Tag != SFP {
		vm.fault(FaultBadHeapBlock, "RETURN found no saved FP at fp+0")
	}
	ra := vm.at(vm.fp + 1)
	if ra.Tag != SRA {
		vm.fault(FaultBadHeapBlock, "RETURN found no return address at fp+1")
	}
	fpEntry := vm.fp
	vm.cp = ra.Int
	vm.fp = savedFP.Int
	vm.sp = fpEntry - 2
	vm.push(result)
}

// execCase implements the sum-type eliminator: it inspects the tag on the
// scrutinee's heap block and jumps to the matching arm, leaving the
// payload on the stack for the arm to consume — the Case node desugars
// its two arms into lambdas applied by CASE/APPLY.
func (vm *VM) execCase(target isa.Location) {
	scrut := vm.popHeapIndex()
	hdr := vm.heapAt(scrut)
	if hdr.Tag != HHeader || (hdr.Kind != HdrInl && hdr.Kind != HdrInr) {
		vm.fault(FaultBadHeapBlock, "CASE scrutinee is not INL/INR")
	}
	vm.push(heapToStack(vm.heapAt(scrut + 1)))
	if hdr.Kind == HdrInl {
		vm.cp++
	} else {
		vm.cp = vm.target(target)
	}
}

// execTry pushes a three-cell exception frame: ep_saved, fp_saved and the
// handler's code address, each tagged SInt rather than as their own
// distinct tags. ep
// itself is left untouched — RAISE finds a frame by scanning for three
// consecutive SInt cells, not by following an EP chain. This is
// deliberately the fragile scheme, not the redesigned one.
func (vm *VM) execTry(handler isa.Location) {
	vm.push(mkInt(vm.ep))
	vm.push(mkInt(vm.fp))
	vm.push(mkInt(vm.target(handler)))
}

// execUntry pops a try-frame installed by execTry when the guarded
// expression completed without raising.
func (vm *VM) execUntry() {
	result := vm.pop()
	vm.pop()
	vm.pop()
	vm.pop()
	vm.push(result)
}

// execRaise scans downward from sp looking for three consecutive SInt
// cells (an installed try-frame) and transfers control to the recorded
// handler address, discarding everything above it. No frame found is a
// NoHandler run-state, not a Fault: it is the Slang program's own
// unhandled exception, not a contract violation.
func (vm *VM) execRaise() {
	val := vm.pop()
	i := vm.sp - 1
	for i >= 2 {
		if vm.stack[i].Tag == SInt && vm.stack[i-1].Tag == SInt && vm.stack[i-2].Tag == SInt {
			handler := vm.stack[i].Int
			savedFP := vm.stack[i-1].Int
			savedEP := vm.stack[i-2].Int
			vm.sp = i - 2
			vm.fp = savedFP
			vm.ep = savedEP
			vm.cp = handler
			vm.push(val)
			return
		}
		i--
	}
	vm.status = NoHandler
}
