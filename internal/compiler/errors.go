package compiler

import (
	"fmt"

	"jargon/internal/source"
)

// Error reports an internal invariant violation in the AST being compiled
// — an unbound identifier at LOOKUP resolution time, or a malformed node
// that shouldn't reach the compiler at all. These are bugs in the AST
// producer, not source-level mistakes a user made, so they are kept apart
// from diag.Bag rather than folded into it.
type Error struct {
	Span source.Span
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Span, e.Msg)
}

func unbound(sp source.Span, name string) error {
	return &Error{Span: sp, Msg: fmt.Sprintf("unbound identifier %q", name)}
}
