package parser_test

import (
	"testing"

	"jargon/internal/ast"
	"jargon/internal/diag"
	"jargon/internal/parser"
	"jargon/internal/source"
)

func parse(t *testing.T, src string) (ast.Expr, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.slang", []byte(src))
	bag := diag.NewBag(16)
	e := parser.Parse(fs.Get(id), diag.BagReporter{Bag: bag})
	return e, bag
}

func mustParse(t *testing.T, src string) ast.Expr {
	t.Helper()
	e, bag := parse(t, src)
	if bag.HasErrors() {
		t.Fatalf("parse(%q): unexpected errors: %+v", src, bag.Items())
	}
	if e == nil {
		t.Fatalf("parse(%q): got nil Expr with no reported errors", src)
	}
	return e
}

func TestParsePlainLetDesugarsToImmediateApp(t *testing.T) {
	// `let x = 5 in x + 1` has no dedicated AST node — it must desugar to
	// App(Lambda(x, x+1), 5), a beta redex, not to a LetFun (which would
	// bind x to a *closure* instead of to 5's value).
	e := mustParse(t, "let x = 5 in x + 1")
	app, ok := e.(*ast.App)
	if !ok {
		t.Fatalf("got %T, want *ast.App", e)
	}
	lam, ok := app.Func.(*ast.Lambda)
	if !ok {
		t.Fatalf("App.Func = %T, want *ast.Lambda", app.Func)
	}
	if lam.Param != "x" {
		t.Errorf("Lambda.Param = %q, want %q", lam.Param, "x")
	}
	lit, ok := app.Arg.(*ast.Integer)
	if !ok || lit.Value != 5 {
		t.Fatalf("App.Arg = %+v, want Integer(5)", app.Arg)
	}
	bin, ok := lam.Body.(*ast.BinExpr)
	if !ok || bin.Op != ast.OpAdd {
		t.Fatalf("Lambda.Body = %+v, want BinExpr(ADD)", lam.Body)
	}
}

func TestParseLetFunIsRecognizedAsFunctionBinding(t *testing.T) {
	e := mustParse(t, "let f x = x in f")
	fn, ok := e.(*ast.LetFun)
	if !ok {
		t.Fatalf("got %T, want *ast.LetFun", e)
	}
	if fn.Name != "f" || fn.Param != "x" {
		t.Errorf("LetFun = %+v, want Name=f Param=x", fn)
	}
}

func TestParseLetRecFun(t *testing.T) {
	e := mustParse(t, "let rec f n = f n in f")
	fn, ok := e.(*ast.LetRecFun)
	if !ok {
		t.Fatalf("got %T, want *ast.LetRecFun", e)
	}
	if fn.Name != "f" || fn.Param != "n" {
		t.Errorf("LetRecFun = %+v, want Name=f Param=n", fn)
	}
}

func TestParsePlainLetRecIsAnError(t *testing.T) {
	// `let rec x = 5 in x` has no parameter, so it cannot be a function
	// binding — the parser reports and aborts rather than guessing.
	e, bag := parse(t, "let rec x = 5 in x")
	if e != nil {
		t.Errorf("got %v, want nil Expr", e)
	}
	if !bag.HasErrors() {
		t.Error("expected an error to be reported")
	}
}

func TestParseArithmeticPrecedence(t *testing.T) {
	// 1 + 2 * 3 must parse as 1 + (2 * 3), not (1 + 2) * 3.
	e := mustParse(t, "1 + 2 * 3")
	add, ok := e.(*ast.BinExpr)
	if !ok || add.Op != ast.OpAdd {
		t.Fatalf("got %+v, want top-level ADD", e)
	}
	if _, ok := add.Left.(*ast.Integer); !ok {
		t.Errorf("Left = %T, want *ast.Integer", add.Left)
	}
	mul, ok := add.Right.(*ast.BinExpr)
	if !ok || mul.Op != ast.OpMul {
		t.Fatalf("Right = %+v, want MUL", add.Right)
	}
}

func TestParseAdditiveIsLeftAssociative(t *testing.T) {
	// 1 - 2 - 3 must parse as (1 - 2) - 3.
	e := mustParse(t, "1 - 2 - 3")
	outer, ok := e.(*ast.BinExpr)
	if !ok || outer.Op != ast.OpSub {
		t.Fatalf("got %+v, want top-level SUB", e)
	}
	inner, ok := outer.Left.(*ast.BinExpr)
	if !ok || inner.Op != ast.OpSub {
		t.Fatalf("Left = %+v, want SUB", outer.Left)
	}
	if _, ok := outer.Right.(*ast.Integer); !ok {
		t.Errorf("Right = %T, want *ast.Integer", outer.Right)
	}
}

func TestParseEqualityPicksOperatorBySyntax(t *testing.T) {
	eqb := mustParse(t, "true = false")
	bin, ok := eqb.(*ast.BinExpr)
	if !ok || bin.Op != ast.OpEqB {
		t.Fatalf("`=` got %+v, want EQB", eqb)
	}
	eqi := mustParse(t, "1 == 2")
	bin, ok = eqi.(*ast.BinExpr)
	if !ok || bin.Op != ast.OpEqI {
		t.Fatalf("`==` got %+v, want EQI", eqi)
	}
}

func TestParseApplicationIsLeftAssociativeJuxtaposition(t *testing.T) {
	// `f x y` parses as App(App(f,x),y).
	e := mustParse(t, "f x y")
	outer, ok := e.(*ast.App)
	if !ok {
		t.Fatalf("got %T, want *ast.App", e)
	}
	if v, ok := outer.Arg.(*ast.Var); !ok || v.Name != "y" {
		t.Fatalf("outer.Arg = %+v, want Var(y)", outer.Arg)
	}
	inner, ok := outer.Func.(*ast.App)
	if !ok {
		t.Fatalf("outer.Func = %T, want *ast.App", outer.Func)
	}
	if v, ok := inner.Arg.(*ast.Var); !ok || v.Name != "x" {
		t.Fatalf("inner.Arg = %+v, want Var(x)", inner.Arg)
	}
}

func TestParseAppBindsTighterThanUnary(t *testing.T) {
	// `not f x` parses as NOT(App(f,x)) since parseUnary recurses into
	// parseUnary, which falls through to parseApp for a non-operator token.
	e := mustParse(t, "not f x")
	u, ok := e.(*ast.UnaryExpr)
	if !ok || u.Op != ast.OpNot {
		t.Fatalf("got %+v, want UnaryExpr(NOT)", e)
	}
	if _, ok := u.Arg.(*ast.App); !ok {
		t.Fatalf("Arg = %T, want *ast.App", u.Arg)
	}
}

func TestParsePairAndUnitLiterals(t *testing.T) {
	e := mustParse(t, "(1, 2)")
	pair, ok := e.(*ast.Pair)
	if !ok {
		t.Fatalf("got %T, want *ast.Pair", e)
	}
	if l, ok := pair.Left.(*ast.Integer); !ok || l.Value != 1 {
		t.Errorf("Left = %+v, want Integer(1)", pair.Left)
	}

	u := mustParse(t, "()")
	if _, ok := u.(*ast.Unit); !ok {
		t.Fatalf("got %T, want *ast.Unit", u)
	}
}

func TestParseCase(t *testing.T) {
	e := mustParse(t, "case s of inl x => x | inr y => y")
	c, ok := e.(*ast.Case)
	if !ok {
		t.Fatalf("got %T, want *ast.Case", e)
	}
	if c.Inl.Name != "x" || c.Inr.Name != "y" {
		t.Errorf("Case arms = %+v / %+v, want x / y", c.Inl, c.Inr)
	}
}

func TestParseTry(t *testing.T) {
	e := mustParse(t, "try raise 1 with e => e")
	tr, ok := e.(*ast.Try)
	if !ok {
		t.Fatalf("got %T, want *ast.Try", e)
	}
	if tr.Name != "e" {
		t.Errorf("Try.Name = %q, want %q", tr.Name, "e")
	}
	if _, ok := tr.Body.(*ast.Raise); !ok {
		t.Errorf("Try.Body = %T, want *ast.Raise", tr.Body)
	}
}

func TestParseSequence(t *testing.T) {
	e := mustParse(t, "1; 2; 3")
	seq, ok := e.(*ast.Seq)
	if !ok {
		t.Fatalf("got %T, want *ast.Seq", e)
	}
	if len(seq.Exprs) != 3 {
		t.Fatalf("len(Exprs) = %d, want 3", len(seq.Exprs))
	}
}

func TestParseAssignmentIsRightAssociative(t *testing.T) {
	e := mustParse(t, "x := y := 1")
	outer, ok := e.(*ast.Assign)
	if !ok {
		t.Fatalf("got %T, want *ast.Assign", e)
	}
	if _, ok := outer.Value.(*ast.Assign); !ok {
		t.Fatalf("outer.Value = %T, want *ast.Assign", outer.Value)
	}
}

func TestParseUnexpectedTokenReportsSyntaxError(t *testing.T) {
	e, bag := parse(t, "+ 1")
	if e != nil {
		t.Errorf("got %v, want nil Expr", e)
	}
	if !bag.HasErrors() {
		t.Fatal("expected a syntax error to be reported")
	}
	if bag.Items()[0].Code != diag.SynUnexpectedToken {
		t.Errorf("Code = %v, want %v", bag.Items()[0].Code, diag.SynUnexpectedToken)
	}
}

func TestParseTrailingInputIsAnError(t *testing.T) {
	_, bag := parse(t, "1 2 )")
	if !bag.HasErrors() {
		t.Error("expected an error for the stray trailing `)`")
	}
}
