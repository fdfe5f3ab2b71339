package isa

import (
	"fmt"
	"strings"
)

// String renders an instruction the way Disassemble prints one listing
// line, minus the address prefix. Grounded on
// isaacev-Plaid_v1/backend/disassembly.go's one-mnemonic-per-opcode style.
func (in Instr) String() string {
	switch in.Op {
	case OpPush:
		return fmt.Sprintf("PUSH %s", in.Lit)
	case OpUnary:
		return fmt.Sprintf("UNARY %s", in.Unary)
	case OpOper:
		return fmt.Sprintf("OPER %s", in.Binary)
	case OpLabel:
		return fmt.Sprintf("LABEL %s", in.Label)
	case OpLookup:
		return fmt.Sprintf("LOOKUP %s", in.Path)
	case OpGoto:
		return fmt.Sprintf("GOTO %s", targetString(in.Target))
	case OpTest:
		return fmt.Sprintf("TEST %s", targetString(in.Target))
	case OpCase:
		return fmt.Sprintf("CASE %s", targetString(in.Target))
	case OpTry:
		return fmt.Sprintf("TRY %s", targetString(in.Target))
	case OpMkClosure:
		return fmt.Sprintf("MK_CLOSURE %s %d", targetString(in.Entry), in.NumFree)
	default:
		return in.Op.String()
	}
}

func targetString(loc Location) string {
	if loc.Resolved {
		return fmt.Sprintf("%s(%d)", loc.Label, loc.Index)
	}
	return string(loc.Label)
}

// Disassemble renders a full listing, one line per instruction, addresses
// left-padded to line up regardless of code_bound's digit count.
func Disassemble(listing []Instr) string {
	var b strings.Builder
	width := len(fmt.Sprintf("%d", len(listing)))
	for i, in := range listing {
		fmt.Fprintf(&b, "%*d  %s\n", width, i, in)
	}
	return b.String()
}
