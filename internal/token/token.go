// Package token defines the lexical tokens of Slang.
package token

import "jargon/internal/source"

type Kind uint8

const (
	EOF Kind = iota
	Ident
	Int

	KwTrue
	KwFalse
	KwUnit
	KwIf
	KwThen
	KwElse
	KwWhile
	KwDo
	KwLet
	KwRec
	KwIn
	KwFun
	KwFst
	KwSnd
	KwInl
	KwInr
	KwCase
	KwOf
	KwRef
	KwTry
	KwWith
	KwRaise
	KwNot
	KwRead

	Plus
	Minus
	Star
	Slash
	Eq
	EqEq
	Lt
	Bang
	Amp
	AmpAmp
	Pipe
	PipePipe
	ColonEq
	Arrow  // ->
	FatArrow // =>

	LParen
	RParen
	Comma
	Semi

	// Invalid marks a byte the lexer doesn't recognize as the start of any
	// token — a lone `:` (only `:=` is meaningful), or any other stray
	// character. It carries a fixed sentinel value rather than sitting in
	// the iota sequence so a future keyword or operator addition can't
	// silently shift it out from under callers that switch on it directly.
	Invalid Kind = 0xff
)

var keywords = map[string]Kind{
	"true": KwTrue, "false": KwFalse, "unit": KwUnit,
	"if": KwIf, "then": KwThen, "else": KwElse,
	"while": KwWhile, "do": KwDo,
	"let": KwLet, "rec": KwRec, "in": KwIn, "fun": KwFun,
	"fst": KwFst, "snd": KwSnd, "inl": KwInl, "inr": KwInr,
	"case": KwCase, "of": KwOf, "ref": KwRef,
	"try": KwTry, "with": KwWith, "raise": KwRaise,
	"not": KwNot, "read": KwRead,
}

// Lookup returns the keyword Kind for an identifier, or (Ident, false) if
// it is an ordinary identifier.
func Lookup(ident string) (Kind, bool) {
	k, ok := keywords[ident]
	if !ok {
		return Ident, false
	}
	return k, true
}

type Token struct {
	Kind Kind
	Text string
	Int  int
	Span source.Span
}

func (k Kind) String() string {
	switch k {
	case EOF:
		return "EOF"
	case Ident:
		return "identifier"
	case Int:
		return "integer"
	case LParen:
		return "("
	case RParen:
		return ")"
	case Comma:
		return ","
	case Semi:
		return ";"
	case Arrow:
		return "->"
	case FatArrow:
		return "=>"
	case Invalid:
		return "invalid character"
	default:
		return "token"
	}
}
