// Package loader resolves the labels a compiled listing still carries into
// concrete code indices. The compiler never sees an index — only
// internal/loader does, which keeps label allocation and address
// resolution as two separate concerns.
package loader

import (
	"fmt"

	"jargon/internal/isa"
)

// Error reports a label the listing referenced but never defined.
type Error struct {
	Label isa.Label
}

func (e *Error) Error() string {
	return fmt.Sprintf("loader: unresolved label %q", e.Label)
}

// Program is a flat, resolved instruction listing ready to hand to vm.New.
type Program struct {
	Code      []isa.Instr
	CodeBound int
}

// Load builds a label→index table from listing (every instruction,
// including LABEL markers themselves, counts as one slot), then rewrites
// every GOTO/TEST/CASE/TRY/MK_CLOSURE target from a bare label into a
// resolved index. LABEL instructions are left in the output — the VM
// treats them as no-ops — since dropping them would shift every index the
// first pass already computed.
func Load(listing []isa.Instr) (*Program, error) {
	index := make(map[isa.Label]int, len(listing))
	for i, in := range listing {
		if in.Op == isa.OpLabel {
			index[in.Label] = i
		}
	}

	out := make([]isa.Instr, len(listing))
	copy(out, listing)

	for i := range out {
		switch out[i].Op {
		case isa.OpGoto, isa.OpTest, isa.OpCase, isa.OpTry:
			resolved, err := resolve(index, out[i].Target)
			if err != nil {
				return nil, err
			}
			out[i].Target = resolved
		case isa.OpMkClosure:
			resolved, err := resolve(index, out[i].Entry)
			if err != nil {
				return nil, err
			}
			out[i].Entry = resolved
		}
	}

	return &Program{Code: out, CodeBound: len(out)}, nil
}

func resolve(index map[isa.Label]int, loc isa.Location) (isa.Location, error) {
	if loc.Resolved {
		return loc, nil
	}
	idx, ok := index[loc.Label]
	if !ok {
		return isa.Location{}, &Error{Label: loc.Label}
	}
	return isa.Location{Label: loc.Label, Resolved: true, Index: idx}, nil
}
