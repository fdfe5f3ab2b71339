package vm

import "fmt"

// StackTag is the runtime tag of a single stack cell.
type StackTag uint8

const (
	SInt StackTag = iota
	SBool
	SUnit
	SHI // heap index
	SRA // saved return address (code index)
	SFP // saved frame pointer
	SEP // saved exception pointer
)

func (t StackTag) String() string {
	switch t {
	case SInt:
		return "INT"
	case SBool:
		return "BOOL"
	case SUnit:
		return "UNIT"
	case SHI:
		return "HI"
	case SRA:
		return "RA"
	case SFP:
		return "FP"
	case SEP:
		return "EP"
	default:
		return "?"
	}
}

// StackCell is one tagged stack slot. Only the field matching Tag is
// meaningful; the others are left at their zero value.
type StackCell struct {
	Tag  StackTag
	Int  int // SInt, SRA, SFP, SEP (the payload is a plain index/int)
	Bool bool
	H    int // SHI: heap index
}

func mkInt(n int) StackCell  { return StackCell{Tag: SInt, Int: n} }
func mkBool(b bool) StackCell { return StackCell{Tag: SBool, Bool: b} }
func mkUnit() StackCell      { return StackCell{Tag: SUnit} }
func mkHI(h int) StackCell   { return StackCell{Tag: SHI, H: h} }
func mkRA(c int) StackCell   { return StackCell{Tag: SRA, Int: c} }
func mkFP(s int) StackCell   { return StackCell{Tag: SFP, Int: s} }
func mkEP(s int) StackCell   { return StackCell{Tag: SEP, Int: s} }

func (c StackCell) String() string {
	switch c.Tag {
	case SInt:
		return fmt.Sprintf("INT %d", c.Int)
	case SBool:
		return fmt.Sprintf("BOOL %v", c.Bool)
	case SUnit:
		return "UNIT"
	case SHI:
		return fmt.Sprintf("HI %d", c.H)
	case SRA:
		return fmt.Sprintf("RA %d", c.Int)
	case SFP:
		return fmt.Sprintf("FP %d", c.Int)
	case SEP:
		return fmt.Sprintf("EP %d", c.Int)
	default:
		return "?"
	}
}

// HeapTag is the runtime tag of a single heap cell.
type HeapTag uint8

const (
	HInt HeapTag = iota
	HBool
	HUnit
	HHI
	HCI // code index (a closure's entry point)
	HHeader
)

func (t HeapTag) String() string {
	switch t {
	case HInt:
		return "INT"
	case HBool:
		return "BOOL"
	case HUnit:
		return "UNIT"
	case HHI:
		return "HI"
	case HCI:
		return "CI"
	case HHeader:
		return "HEADER"
	default:
		return "?"
	}
}

// HeaderKind distinguishes the four block shapes a HEADER can introduce.
type HeaderKind uint8

const (
	HdrPair HeaderKind = iota
	HdrInl
	HdrInr
	HdrClosure
)

func (k HeaderKind) String() string {
	switch k {
	case HdrPair:
		return "PAIR"
	case HdrInl:
		return "INL"
	case HdrInr:
		return "INR"
	case HdrClosure:
		return "CLOSURE"
	default:
		return "?"
	}
}

// HeapCell is one tagged heap slot.
type HeapCell struct {
	Tag  HeapTag
	Int  int
	Bool bool
	H    int // HHI
	C    int // HCI: code index
	N    int // HHeader: block size in cells, header included
	Kind HeaderKind
}

func heapInt(n int) HeapCell  { return HeapCell{Tag: HInt, Int: n} }
func heapBool(b bool) HeapCell { return HeapCell{Tag: HBool, Bool: b} }
func heapUnit() HeapCell      { return HeapCell{Tag: HUnit} }
func heapHI(h int) HeapCell   { return HeapCell{Tag: HHI, H: h} }
func heapCI(c int) HeapCell   { return HeapCell{Tag: HCI, C: c} }
func heapHeader(n int, k HeaderKind) HeapCell {
	return HeapCell{Tag: HHeader, N: n, Kind: k}
}

func (c HeapCell) String() string {
	switch c.Tag {
	case HInt:
		return fmt.Sprintf("INT %d", c.Int)
	case HBool:
		return fmt.Sprintf("BOOL %v", c.Bool)
	case HUnit:
		return "UNIT"
	case HHI:
		return fmt.Sprintf("HI %d", c.H)
	case HCI:
		return fmt.Sprintf("CI %d", c.C)
	case HHeader:
		return fmt.Sprintf("HEADER(%d,%s)", c.N, c.Kind)
	default:
		return "?"
	}
}

// stackToHeap coerces a stack cell into the heap cell it becomes when
// copied there (MK_PAIR, MK_INL/INR, MK_CLOSURE free-variable capture).
// RA/FP/EP never appear on the heap; coercing one is a compiler/VM
// contract violation, not a user-triggerable fault.
func stackToHeap(c StackCell) HeapCell {
	switch c.Tag {
	case SInt:
		return heapInt(c.Int)
	case SBool:
		return heapBool(c.Bool)
	case SUnit:
		return heapUnit()
	case SHI:
		return heapHI(c.H)
	default:
		panic(fmt.Sprintf("vm: stack cell tag %s has no heap representation", c.Tag))
	}
}

// heapToStack is the inverse of stackToHeap, used by FST/SND/DEREF/CASE
// when copying a payload cell back onto the stack.
func heapToStack(c HeapCell) StackCell {
	switch c.Tag {
	case HInt:
		return mkInt(c.Int)
	case HBool:
		return mkBool(c.Bool)
	case HUnit:
		return mkUnit()
	case HHI:
		return mkHI(c.H)
	case HCI:
		panic("vm: CI cell read as a stack value")
	default:
		panic(fmt.Sprintf("vm: heap cell tag %s has no stack representation", c.Tag))
	}
}
