package lexer_test

import (
	"testing"

	"jargon/internal/lexer"
	"jargon/internal/source"
	"jargon/internal/token"
)

func scan(src string) []token.Token {
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.slang", []byte(src))
	lx := lexer.New(fs.Get(id))
	var toks []token.Token
	for {
		tok := lx.Next()
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			return toks
		}
	}
}

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, len(toks))
	for i, tok := range toks {
		out[i] = tok.Kind
	}
	return out
}

func assertKinds(t *testing.T, src string, want ...token.Kind) {
	t.Helper()
	got := kinds(scan(src))
	if len(got) != len(want) {
		t.Fatalf("scan(%q) = %v, want %v", src, got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("scan(%q)[%d] = %v, want %v", src, i, got[i], want[i])
		}
	}
}

func TestIdentifierAndInteger(t *testing.T) {
	toks := scan("foo 42")
	if len(toks) != 3 {
		t.Fatalf("len(toks) = %d, want 3", len(toks))
	}
	if toks[0].Kind != token.Ident || toks[0].Text != "foo" {
		t.Errorf("toks[0] = %+v, want Ident %q", toks[0], "foo")
	}
	if toks[1].Kind != token.Int || toks[1].Int != 42 {
		t.Errorf("toks[1] = %+v, want Int 42", toks[1])
	}
	if toks[2].Kind != token.EOF {
		t.Errorf("toks[2].Kind = %v, want EOF", toks[2].Kind)
	}
}

func TestAllKeywords(t *testing.T) {
	src := "true false unit if then else while do let rec in fun fst snd inl inr case of ref try with raise not read"
	assertKinds(t, src,
		token.KwTrue, token.KwFalse, token.KwUnit,
		token.KwIf, token.KwThen, token.KwElse,
		token.KwWhile, token.KwDo,
		token.KwLet, token.KwRec, token.KwIn, token.KwFun,
		token.KwFst, token.KwSnd, token.KwInl, token.KwInr,
		token.KwCase, token.KwOf, token.KwRef,
		token.KwTry, token.KwWith, token.KwRaise,
		token.KwNot, token.KwRead,
		token.EOF,
	)
}

func TestOperatorsAndPunctuation(t *testing.T) {
	assertKinds(t, "+ - * / ( ) , ;",
		token.Plus, token.Minus, token.Star, token.Slash,
		token.LParen, token.RParen, token.Comma, token.Semi,
		token.EOF,
	)
}

func TestTwoCharOperatorsPreferredOverOneChar(t *testing.T) {
	assertKinds(t, "-> => == := && ||",
		token.Arrow, token.FatArrow, token.EqEq, token.ColonEq, token.AmpAmp, token.PipePipe,
		token.EOF,
	)
}

func TestSingleCharFallbacksNotGreedilyConsumed(t *testing.T) {
	assertKinds(t, "= < ! & |",
		token.Eq, token.Lt, token.Bang, token.Amp, token.Pipe,
		token.EOF,
	)
}

func TestCommentsAndWhitespaceAreSkipped(t *testing.T) {
	toks := scan("  # a comment\n\t1  # trailing\n")
	if len(toks) != 2 {
		t.Fatalf("len(toks) = %d, want 2 (Int, EOF)", len(toks))
	}
	if toks[0].Kind != token.Int || toks[0].Int != 1 {
		t.Errorf("toks[0] = %+v, want Int 1", toks[0])
	}
}

func TestKeywordLookupIsCaseInsensitive(t *testing.T) {
	assertKinds(t, "IF True", token.KwIf, token.KwTrue, token.EOF)
}

func TestIdentifierWithDigitsAndUnderscore(t *testing.T) {
	toks := scan("_x1_2")
	if toks[0].Kind != token.Ident || toks[0].Text != "_x1_2" {
		t.Errorf("toks[0] = %+v, want Ident %q", toks[0], "_x1_2")
	}
}

func TestSpanCoversWholeToken(t *testing.T) {
	toks := scan("  foobar")
	sp := toks[0].Span
	if sp.Len() != uint32(len("foobar")) {
		t.Errorf("span length = %d, want %d", sp.Len(), len("foobar"))
	}
}

func TestEmptyInputIsJustEOF(t *testing.T) {
	toks := scan("")
	if len(toks) != 1 || toks[0].Kind != token.EOF {
		t.Fatalf("scan(\"\") = %v, want [EOF]", kinds(toks))
	}
}
