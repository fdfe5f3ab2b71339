// Package diagfmt renders diag.Bag contents for a terminal. Grounded on
// internal/diagfmt's Pretty/PrettyOpts shape, filled in here from scratch.
package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"jargon/internal/diag"
	"jargon/internal/source"
)

// PrettyOpts configures pretty-printing of diagnostics.
type PrettyOpts struct {
	Color   bool
	Context int
}

// Pretty prints each diagnostic in bag as:
//
//	<path>:<line>:<col>: <severity> <code>: <message>
//	    <source line>
//	    <caret underline>
//
// followed by any attached notes in the same shape.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	for _, d := range bag.Items() {
		printOne(w, d.Severity, d.Code.String(), d.Message, d.Primary, fs, opts)
		for _, n := range d.Notes {
			printOne(w, diag.SevInfo, "note", n.Msg, n.Span, fs, opts)
		}
	}
}

func printOne(w io.Writer, sev diag.Severity, code, msg string, sp source.Span, fs *source.FileSet, opts PrettyOpts) {
	path := "<input>"
	line, col := uint32(0), uint32(0)
	if fs != nil {
		f := fs.Get(sp.File)
		path = f.Path
		start, _ := fs.Resolve(sp)
		line, col = start.Line, start.Col
	}

	label := sev.String()
	if opts.Color {
		label = severityColor(sev).Sprint(label)
	}
	fmt.Fprintf(w, "%s:%d:%d: %s %s: %s\n", path, line, col, label, code, msg)

	if fs == nil {
		return
	}
	src := fs.Get(sp.File).GetLine(line)
	if src == "" {
		return
	}
	fmt.Fprintf(w, "    %s\n", strings.TrimRight(src, "\n"))
	width := int(sp.Len())
	if width < 1 {
		width = 1
	}
	pad := int(col) - 1
	if pad < 0 {
		pad = 0
	}
	underline := "    " + strings.Repeat(" ", pad) + strings.Repeat("^", width)
	if opts.Color {
		underline = severityColor(sev).Sprint(underline)
	}
	fmt.Fprintln(w, underline)
}

func severityColor(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return color.New(color.FgRed, color.Bold)
	case diag.SevWarning:
		return color.New(color.FgYellow, color.Bold)
	default:
		return color.New(color.FgCyan)
	}
}
