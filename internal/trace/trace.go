// Package trace implements a verbosity-gated trace sink: a vm.Tracer that
// prints one line per instruction and per heap allocation, plus a listing
// pretty-printer for `jargon build`. Adapted from internal/vm/trace.go's
// original Tracer, split out so the CLI's colorized rendering doesn't live
// inside the VM package it's tracing.
package trace

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"jargon/internal/isa"
	"jargon/internal/vm"
)

// Tracer writes a line per instruction (address, mnemonic, registers) and
// per heap allocation. It satisfies vm.Tracer structurally.
type Tracer struct {
	w           io.Writer
	instrColor  *color.Color
	allocColor  *color.Color
	steps       int
}

// New builds a Tracer writing to w. Mnemonics and allocation notices are
// colorized when colorize is true — callers decide that from
// golang.org/x/term.IsTerminal plus a --color flag, the same check
// cmd/surge/main.go's isTerminal makes.
func New(w io.Writer, colorize bool) *Tracer {
	t := &Tracer{w: w}
	if colorize {
		t.instrColor = color.New(color.FgCyan, color.Bold)
		t.allocColor = color.New(color.FgMagenta)
	}
	return t
}

func (t *Tracer) Instr(v *vm.VM, in isa.Instr) {
	mnem := in.String()
	if t.instrColor != nil {
		mnem = t.instrColor.Sprint(mnem)
	}
	fmt.Fprintf(t.w, "%6d  cp=%-5d sp=%-4d fp=%-4d hp=%-4d  %s\n",
		t.steps, v.CP(), v.SP(), v.FP(), v.HP(), mnem)
	t.steps++
}

func (t *Tracer) Alloc(addr, n int) {
	msg := fmt.Sprintf("        alloc heap[%d..%d)", addr, addr+n)
	if t.allocColor != nil {
		msg = t.allocColor.Sprint(msg)
	}
	fmt.Fprintln(t.w, msg)
}

// Listing pretty-prints a resolved instruction listing the way
// isa.Disassemble does, but with the opcode mnemonic colorized when
// colorize is true — used by `jargon build` to show a compiled program
// without running it.
func Listing(w io.Writer, code []isa.Instr, colorize bool) {
	var c *color.Color
	if colorize {
		c = color.New(color.FgCyan, color.Bold)
	}
	width := len(fmt.Sprintf("%d", len(code)))
	for i, in := range code {
		line := in.String()
		if c != nil {
			line = c.Sprint(line)
		}
		fmt.Fprintf(w, "%*d  %s\n", width, i, line)
	}
}
