// Package parser builds an ast.Expr tree from a token.Token stream using
// recursive descent with a precedence-climbing expression core. Parse
// errors are reported through a diag.Reporter rather than panicking. Parsing
// stops at the first syntax error, so at most one error is reported per
// Parse call.
package parser

import (
	"fmt"

	"jargon/internal/ast"
	"jargon/internal/diag"
	"jargon/internal/lexer"
	"jargon/internal/source"
	"jargon/internal/token"
)

type Parser struct {
	file *source.File
	lx   *lexer.Lexer
	tok  token.Token
	rep  diag.Reporter

	// aborted stops parsing once a syntax error has been reported, so a
	// single mistake doesn't cascade into a page of nonsense diagnostics.
	aborted bool
}

// Parse lexes and parses file into a single Expr. A nil Expr means parsing
// failed; every failure is reported to rep before Parse returns.
func Parse(file *source.File, rep diag.Reporter) ast.Expr {
	p := &Parser{file: file, lx: lexer.New(file), rep: rep}
	p.advance()
	e := p.parseExpr()
	if !p.aborted && p.tok.Kind != token.EOF {
		p.errorf(p.tok.Span, diag.SynUnexpectedToken, "unexpected trailing input")
	}
	if p.aborted {
		return nil
	}
	return e
}

func (p *Parser) advance() { p.tok = p.lx.Next() }

func (p *Parser) errorf(sp source.Span, code diag.Code, format string, args ...any) {
	if p.aborted {
		return
	}
	p.aborted = true
	diag.ReportError(p.rep, code, sp, fmt.Sprintf(format, args...)).Emit()
}

func (p *Parser) expect(k token.Kind) token.Token {
	if p.tok.Kind != k {
		p.errorf(p.tok.Span, diag.SynExpectToken, "expected %s, found %s", k, p.tok.Kind)
		return p.tok
	}
	t := p.tok
	p.advance()
	return t
}

func (p *Parser) expectIdent() string {
	if p.tok.Kind != token.Ident {
		p.errorf(p.tok.Span, diag.SynExpectIdent, "expected an identifier, found %s", p.tok.Kind)
		return ""
	}
	name := p.tok.Text
	p.advance()
	return name
}

// parseExpr is the entry point for one full expression, including the
// sequencing (`;`) that only makes sense at statement position. Slang
// treats everything as an expression, so this is also what a
// parenthesized sub-expression parses through.
func (p *Parser) parseExpr() ast.Expr {
	first := p.parseSingle()
	if p.tok.Kind != token.Semi {
		return first
	}
	exprs := []ast.Expr{first}
	sp := spanOf(first)
	for p.tok.Kind == token.Semi && !p.aborted {
		p.advance()
		next := p.parseSingle()
		exprs = append(exprs, next)
		sp = sp.Cover(spanOf(next))
	}
	return ast.NewSeq(sp, exprs)
}

// parseSingle parses one expression with no top-level `;`.
func (p *Parser) parseSingle() ast.Expr {
	switch p.tok.Kind {
	case token.KwIf:
		return p.parseIf()
	case token.KwWhile:
		return p.parseWhile()
	case token.KwLet:
		return p.parseLet()
	case token.KwCase:
		return p.parseCase()
	case token.KwTry:
		return p.parseTry()
	case token.KwFun:
		return p.parseFun()
	case token.KwRaise:
		start := p.tok.Span
		p.advance()
		arg := p.parseSingle()
		if arg == nil {
			return nil
		}
		return ast.NewRaise(start.Cover(arg.Span()), arg)
	default:
		return p.parseAssign()
	}
}

// spanOf tolerates a nil Expr (a sub-parse that already failed) so callers
// building a covering span don't need to special-case every failure path.
func spanOf(e ast.Expr) source.Span {
	if e == nil {
		return source.Span{}
	}
	return e.Span()
}

func (p *Parser) parseIf() ast.Expr {
	start := p.tok.Span
	p.advance()
	cond := p.parseExpr()
	p.expect(token.KwThen)
	then := p.parseSingle()
	p.expect(token.KwElse)
	els := p.parseSingle()
	if cond == nil || then == nil || els == nil {
		return nil
	}
	return ast.NewIf(start.Cover(els.Span()), cond, then, els)
}

func (p *Parser) parseWhile() ast.Expr {
	start := p.tok.Span
	p.advance()
	cond := p.parseExpr()
	p.expect(token.KwDo)
	body := p.parseSingle()
	if cond == nil || body == nil {
		return nil
	}
	return ast.NewWhile(start.Cover(body.Span()), cond, body)
}

// parseLet handles `let f x = e1 in e2`, `let rec f x = e1 in e2`, and the
// plain value binding `let x = e1 in e2`. The plain form has no AST node of
// its own — the ast package only has LetFun/LetRecFun, both function
// definitions — so it compiles directly to `App(Lambda(x,e2), e1)`, the
// usual core-ML reading of a value let as an immediate beta redex; wrapping
// e1 in a second lambda (as LetFun's own desugaring does) would bind x to a
// closure instead of to e1's value.
func (p *Parser) parseLet() ast.Expr {
	start := p.tok.Span
	p.advance()
	rec := false
	if p.tok.Kind == token.KwRec {
		rec = true
		p.advance()
	}
	name := p.expectIdent()
	if p.tok.Kind == token.Eq {
		p.advance()
		value := p.parseExpr()
		p.expect(token.KwIn)
		body := p.parseExpr()
		if value == nil || body == nil {
			return nil
		}
		if rec {
			p.errorf(start, diag.SynBadCaseArm, "a plain `let rec %s = ...` binding needs a parameter", name)
			return nil
		}
		sp := start.Cover(body.Span())
		return ast.NewApp(sp, ast.NewLambda(sp, name, body), value)
	}
	param := p.expectIdent()
	p.expect(token.Eq)
	value := p.parseExpr()
	p.expect(token.KwIn)
	body := p.parseExpr()
	if value == nil || body == nil {
		return nil
	}
	if rec {
		return ast.NewLetRecFun(start.Cover(body.Span()), name, param, value, body)
	}
	return ast.NewLetFun(start.Cover(body.Span()), name, param, value, body)
}

func (p *Parser) parseFun() ast.Expr {
	start := p.tok.Span
	p.advance()
	param := p.expectIdent()
	p.expect(token.Arrow)
	body := p.parseSingle()
	if body == nil {
		return nil
	}
	return ast.NewLambda(start.Cover(body.Span()), param, body)
}

func (p *Parser) parseCase() ast.Expr {
	start := p.tok.Span
	p.advance()
	scrut := p.parseSingle()
	p.expect(token.KwOf)
	p.expect(token.KwInl)
	inlName := p.expectIdent()
	p.expect(token.FatArrow)
	inlBody := p.parseSingle()
	p.expect(token.Pipe)
	p.expect(token.KwInr)
	inrName := p.expectIdent()
	p.expect(token.FatArrow)
	inrBody := p.parseSingle()
	if scrut == nil || inlBody == nil || inrBody == nil {
		return nil
	}
	return ast.NewCase(start.Cover(inrBody.Span()), scrut,
		ast.CaseArm{Name: inlName, Body: inlBody},
		ast.CaseArm{Name: inrName, Body: inrBody})
}

func (p *Parser) parseTry() ast.Expr {
	start := p.tok.Span
	p.advance()
	body := p.parseSingle()
	p.expect(token.KwWith)
	name := p.expectIdent()
	p.expect(token.FatArrow)
	handler := p.parseSingle()
	if body == nil || handler == nil {
		return nil
	}
	return ast.NewTry(start.Cover(handler.Span()), body, name, handler)
}

func (p *Parser) parseAssign() ast.Expr {
	target := p.parseOr()
	if p.tok.Kind == token.ColonEq {
		p.advance()
		value := p.parseAssign()
		if target == nil || value == nil {
			return nil
		}
		return ast.NewAssign(target.Span().Cover(value.Span()), target, value)
	}
	return target
}

func (p *Parser) parseOr() ast.Expr {
	left := p.parseAnd()
	for p.tok.Kind == token.PipePipe && !p.aborted {
		p.advance()
		right := p.parseAnd()
		if left == nil || right == nil {
			return nil
		}
		left = ast.NewBinExpr(left.Span().Cover(right.Span()), ast.OpOr, left, right)
	}
	return left
}

func (p *Parser) parseAnd() ast.Expr {
	left := p.parseEquality()
	for p.tok.Kind == token.AmpAmp && !p.aborted {
		p.advance()
		right := p.parseEquality()
		if left == nil || right == nil {
			return nil
		}
		left = ast.NewBinExpr(left.Span().Cover(right.Span()), ast.OpAnd, left, right)
	}
	return left
}

// parseEquality: `=` is boolean equality (EQB), `==` is integer equality
// (EQI). Slang has no static types visible to the parser, so it picks the
// operator by concrete syntax rather than inferring it — a deliberate
// simplification of the minimal front end.
func (p *Parser) parseEquality() ast.Expr {
	left := p.parseRelational()
	for (p.tok.Kind == token.Eq || p.tok.Kind == token.EqEq) && !p.aborted {
		op := ast.OpEqB
		if p.tok.Kind == token.EqEq {
			op = ast.OpEqI
		}
		p.advance()
		right := p.parseRelational()
		if left == nil || right == nil {
			return nil
		}
		left = ast.NewBinExpr(left.Span().Cover(right.Span()), op, left, right)
	}
	return left
}

func (p *Parser) parseRelational() ast.Expr {
	left := p.parseAdditive()
	for p.tok.Kind == token.Lt && !p.aborted {
		p.advance()
		right := p.parseAdditive()
		if left == nil || right == nil {
			return nil
		}
		left = ast.NewBinExpr(left.Span().Cover(right.Span()), ast.OpLt, left, right)
	}
	return left
}

func (p *Parser) parseAdditive() ast.Expr {
	left := p.parseMultiplicative()
	for (p.tok.Kind == token.Plus || p.tok.Kind == token.Minus) && !p.aborted {
		op := ast.OpAdd
		if p.tok.Kind == token.Minus {
			op = ast.OpSub
		}
		p.advance()
		right := p.parseMultiplicative()
		if left == nil || right == nil {
			return nil
		}
		left = ast.NewBinExpr(left.Span().Cover(right.Span()), op, left, right)
	}
	return left
}

func (p *Parser) parseMultiplicative() ast.Expr {
	left := p.parseUnary()
	for (p.tok.Kind == token.Star || p.tok.Kind == token.Slash) && !p.aborted {
		op := ast.OpMul
		if p.tok.Kind == token.Slash {
			op = ast.OpDiv
		}
		p.advance()
		right := p.parseUnary()
		if left == nil || right == nil {
			return nil
		}
		left = ast.NewBinExpr(left.Span().Cover(right.Span()), op, left, right)
	}
	return left
}

func (p *Parser) parseUnary() ast.Expr {
	start := p.tok.Span
	switch p.tok.Kind {
	case token.Minus:
		p.advance()
		arg := p.parseUnary()
		if arg == nil {
			return nil
		}
		return ast.NewUnaryExpr(start.Cover(arg.Span()), ast.OpNeg, arg)
	case token.KwNot:
		p.advance()
		arg := p.parseUnary()
		if arg == nil {
			return nil
		}
		return ast.NewUnaryExpr(start.Cover(arg.Span()), ast.OpNot, arg)
	case token.KwRead:
		p.advance()
		arg := p.parseUnary()
		if arg == nil {
			return nil
		}
		return ast.NewUnaryExpr(start.Cover(arg.Span()), ast.OpRead, arg)
	case token.KwFst:
		p.advance()
		arg := p.parseUnary()
		if arg == nil {
			return nil
		}
		return ast.NewFst(start.Cover(arg.Span()), arg)
	case token.KwSnd:
		p.advance()
		arg := p.parseUnary()
		if arg == nil {
			return nil
		}
		return ast.NewSnd(start.Cover(arg.Span()), arg)
	case token.KwInl:
		p.advance()
		arg := p.parseUnary()
		if arg == nil {
			return nil
		}
		return ast.NewInl(start.Cover(arg.Span()), arg)
	case token.KwInr:
		p.advance()
		arg := p.parseUnary()
		if arg == nil {
			return nil
		}
		return ast.NewInr(start.Cover(arg.Span()), arg)
	case token.KwRef:
		p.advance()
		arg := p.parseUnary()
		if arg == nil {
			return nil
		}
		return ast.NewRef(start.Cover(arg.Span()), arg)
	case token.Bang:
		p.advance()
		arg := p.parseUnary()
		if arg == nil {
			return nil
		}
		return ast.NewDeref(start.Cover(arg.Span()), arg)
	default:
		return p.parseApp()
	}
}

// parseApp handles juxtaposition (curried application): a run of primary
// expressions `f x y` parses as App(App(f,x),y).
func (p *Parser) parseApp() ast.Expr {
	fn := p.parsePrimary()
	for startsPrimary(p.tok.Kind) && !p.aborted {
		arg := p.parsePrimary()
		if fn == nil || arg == nil {
			return nil
		}
		fn = ast.NewApp(fn.Span().Cover(arg.Span()), fn, arg)
	}
	return fn
}

func startsPrimary(k token.Kind) bool {
	switch k {
	case token.Ident, token.Int, token.KwTrue, token.KwFalse, token.KwUnit, token.LParen:
		return true
	default:
		return false
	}
}

func (p *Parser) parsePrimary() ast.Expr {
	t := p.tok
	switch t.Kind {
	case token.Int:
		p.advance()
		return ast.NewInteger(t.Span, t.Int)
	case token.KwTrue:
		p.advance()
		return ast.NewBoolean(t.Span, true)
	case token.KwFalse:
		p.advance()
		return ast.NewBoolean(t.Span, false)
	case token.KwUnit:
		p.advance()
		return ast.NewUnit(t.Span)
	case token.Ident:
		p.advance()
		return ast.NewVar(t.Span, t.Text)
	case token.LParen:
		p.advance()
		if p.tok.Kind == token.RParen {
			end := p.tok.Span
			p.advance()
			return ast.NewUnit(t.Span.Cover(end))
		}
		first := p.parseExpr()
		if p.tok.Kind == token.Comma {
			p.advance()
			second := p.parseExpr()
			end := p.expect(token.RParen)
			if first == nil || second == nil {
				return nil
			}
			return ast.NewPair(t.Span.Cover(end.Span), first, second)
		}
		p.expect(token.RParen)
		return first
	case token.Invalid:
		p.errorf(t.Span, diag.LexUnknownChar, "unrecognized character")
		return nil
	default:
		p.errorf(t.Span, diag.SynUnexpectedToken, "unexpected %s", t.Kind)
		return nil
	}
}
