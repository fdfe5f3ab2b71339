package diag

import "jargon/internal/source"

// Note attaches a secondary span/message to a Diagnostic, e.g. pointing at
// a matching opening delimiter.
type Note struct {
	Span source.Span
	Msg  string
}

// Diagnostic is one lexer/parser-level report. Nothing downstream of the
// front end uses this type: compiler-internal invariant violations are a
// distinct compiler.Error (see internal/compiler/errors.go).
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  source.Span
	Notes    []Note
}

func New(sev Severity, code Code, primary source.Span, msg string) Diagnostic {
	return Diagnostic{Severity: sev, Code: code, Primary: primary, Message: msg}
}

func NewError(code Code, primary source.Span, msg string) Diagnostic {
	return New(SevError, code, primary, msg)
}

func (d Diagnostic) WithNote(sp source.Span, msg string) Diagnostic {
	d.Notes = append(d.Notes, Note{Span: sp, Msg: msg})
	return d
}
