package vm

import "fmt"

// DecodedKind tags the shape a Decoded value takes: whatever sits on top
// of the stack when the VM halts.
type DecodedKind uint8

const (
	DecInt DecodedKind = iota
	DecBool
	DecUnit
	DecPair
	DecInl
	DecInr
	DecClosure
)

func (k DecodedKind) String() string {
	switch k {
	case DecInt:
		return "int"
	case DecBool:
		return "bool"
	case DecUnit:
		return "unit"
	case DecPair:
		return "pair"
	case DecInl:
		return "inl"
	case DecInr:
		return "inr"
	case DecClosure:
		return "closure"
	default:
		return "?"
	}
}

// Decoded is a recursively-expanded view of a stack (or heap payload)
// value, suitable for a driver to print without knowing about StackCell or
// HeapCell tags.
type Decoded struct {
	Kind  DecodedKind
	Int   int
	Bool  bool
	Fst   *Decoded // DecPair
	Snd   *Decoded // DecPair
	Inner *Decoded // DecInl, DecInr
}

func (d *Decoded) String() string {
	if d == nil {
		return "<nil>"
	}
	switch d.Kind {
	case DecInt:
		return fmt.Sprintf("%d", d.Int)
	case DecBool:
		return fmt.Sprintf("%v", d.Bool)
	case DecUnit:
		return "()"
	case DecPair:
		return fmt.Sprintf("(%s, %s)", d.Fst, d.Snd)
	case DecInl:
		return fmt.Sprintf("inl(%s)", d.Inner)
	case DecInr:
		return fmt.Sprintf("inr(%s)", d.Inner)
	case DecClosure:
		return "CLOSURE"
	default:
		return "?"
	}
}

// Decode expands a stack cell into a Decoded tree, following every HI
// through the heap. A closure decodes to the literal string "CLOSURE"
// rather than exposing its captured environment.
func (vm *VM) Decode(c StackCell) (*Decoded, error) {
	switch c.Tag {
	case SInt:
		return &Decoded{Kind: DecInt, Int: c.Int}, nil
	case SBool:
		return &Decoded{Kind: DecBool, Bool: c.Bool}, nil
	case SUnit:
		return &Decoded{Kind: DecUnit}, nil
	case SHI:
		return vm.decodeHeap(c.H)
	default:
		return nil, fmt.Errorf("vm: cannot decode a %s cell as a value", c.Tag)
	}
}

func (vm *VM) decodeHeap(addr int) (*Decoded, error) {
	if addr < 0 || addr >= vm.hp {
		return nil, fmt.Errorf("vm: heap index %d out of bound", addr)
	}
	hdr := vm.heap[addr]
	if hdr.Tag != HHeader {
		return nil, fmt.Errorf("vm: expected a HEADER at heap[%d], found %s", addr, hdr.Tag)
	}
	switch hdr.Kind {
	case HdrPair:
		fst, err := vm.decodePayload(addr + 1)
		if err != nil {
			return nil, err
		}
		snd, err := vm.decodePayload(addr + 2)
		if err != nil {
			return nil, err
		}
		return &Decoded{Kind: DecPair, Fst: fst, Snd: snd}, nil
	case HdrInl, HdrInr:
		inner, err := vm.decodePayload(addr + 1)
		if err != nil {
			return nil, err
		}
		kind := DecInl
		if hdr.Kind == HdrInr {
			kind = DecInr
		}
		return &Decoded{Kind: kind, Inner: inner}, nil
	case HdrClosure:
		return &Decoded{Kind: DecClosure}, nil
	default:
		return nil, fmt.Errorf("vm: unknown header kind at heap[%d]", addr)
	}
}

func (vm *VM) decodePayload(addr int) (*Decoded, error) {
	if addr < 0 || addr >= vm.hp {
		return nil, fmt.Errorf("vm: heap index %d out of bound", addr)
	}
	cell := vm.heap[addr]
	switch cell.Tag {
	case HInt:
		return &Decoded{Kind: DecInt, Int: cell.Int}, nil
	case HBool:
		return &Decoded{Kind: DecBool, Bool: cell.Bool}, nil
	case HUnit:
		return &Decoded{Kind: DecUnit}, nil
	case HHI:
		return vm.decodeHeap(cell.H)
	default:
		return nil, fmt.Errorf("vm: heap[%d] tag %s has no decoded form", addr, cell.Tag)
	}
}
