// Package compiler translates a Slang ast.Expr into an unresolved isa.Instr
// listing: the main code stream plus a defs stream of function bodies to be
// appended after a trailing HALT. Labels are left unresolved —
// internal/loader turns them into code indices.
package compiler

import (
	"jargon/internal/ast"
	"jargon/internal/freevars"
	"jargon/internal/isa"
	"jargon/internal/source"
)

// Compiler holds the label counter for one top-level compilation. A fresh
// Compiler per call is what makes the counter reset between independent
// compilations without reaching for a package-level global.
type Compiler struct {
	labels int
}

// Compile compiles a whole program: code_of_e ++ HALT ++ defs. The result
// still has unresolved labels; pass it to internal/loader before running
// it.
func Compile(e ast.Expr) ([]isa.Instr, error) {
	c := &Compiler{}
	code, defs, err := c.comp(nil, e)
	if err != nil {
		return nil, err
	}
	prog := make([]isa.Instr, 0, len(code)+1+len(defs))
	prog = append(prog, code...)
	prog = append(prog, isa.Instr{Op: isa.OpHalt})
	prog = append(prog, defs...)
	return prog, nil
}

func (c *Compiler) fresh(prefix string) isa.Label {
	c.labels++
	return isa.Label(prefix + "_" + itoa(c.labels))
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

func lbl(l isa.Label) isa.Instr        { return isa.Instr{Op: isa.OpLabel, Label: l} }
func goto_(l isa.Label) isa.Instr      { return isa.Instr{Op: isa.OpGoto, Target: isa.UnresolvedLocation(l)} }
func test(l isa.Label) isa.Instr       { return isa.Instr{Op: isa.OpTest, Target: isa.UnresolvedLocation(l)} }
func caseOp(l isa.Label) isa.Instr     { return isa.Instr{Op: isa.OpCase, Target: isa.UnresolvedLocation(l)} }
func tryOp(l isa.Label) isa.Instr      { return isa.Instr{Op: isa.OpTry, Target: isa.UnresolvedLocation(l)} }
func lookup(p isa.Path) isa.Instr      { return isa.Instr{Op: isa.OpLookup, Path: p} }
func push(lit isa.Literal) isa.Instr   { return isa.Instr{Op: isa.OpPush, Lit: lit} }
func unary(op isa.UnaryOp) isa.Instr   { return isa.Instr{Op: isa.OpUnary, Unary: op} }
func oper(op isa.BinOp) isa.Instr      { return isa.Instr{Op: isa.OpOper, Binary: op} }

var (
	iPop    = isa.Instr{Op: isa.OpPop}
	iMkPair = isa.Instr{Op: isa.OpMkPair}
	iFst    = isa.Instr{Op: isa.OpFst}
	iSnd    = isa.Instr{Op: isa.OpSnd}
	iMkInl  = isa.Instr{Op: isa.OpMkInl}
	iMkInr  = isa.Instr{Op: isa.OpMkInr}
	iMkRef  = isa.Instr{Op: isa.OpMkRef}
	iDeref  = isa.Instr{Op: isa.OpDeref}
	iAssign = isa.Instr{Op: isa.OpAssign}
	iApply  = isa.Instr{Op: isa.OpApply}
	iReturn = isa.Instr{Op: isa.OpReturn}
	iUntry  = isa.Instr{Op: isa.OpUntry}
	iRaise  = isa.Instr{Op: isa.OpRaise}
)

// comp implements the expression-to-instructions translation table. It
// returns the main-stream code for e and the accumulated defs (function
// bodies) that code refers to by label.
func (c *Compiler) comp(vmap Env, e ast.Expr) (code, defs []isa.Instr, err error) {
	switch n := e.(type) {
	case *ast.Unit:
		return []isa.Instr{push(isa.UnitLiteral())}, nil, nil
	case *ast.Boolean:
		return []isa.Instr{push(isa.BoolLiteral(n.Value))}, nil, nil
	case *ast.Integer:
		return []isa.Instr{push(isa.IntLiteral(n.Value))}, nil, nil

	case *ast.Var:
		path, ok := vmap.lookup(n.Name)
		if !ok {
			return nil, nil, unbound(n.Span(), n.Name)
		}
		return []isa.Instr{lookup(path)}, nil, nil

	case *ast.UnaryExpr:
		argCode, argDefs, err := c.comp(vmap, n.Arg)
		if err != nil {
			return nil, nil, err
		}
		return append(argCode, unary(unaryOp(n.Op))), argDefs, nil

	case *ast.BinExpr:
		return c.combine2(vmap, n.Left, n.Right, oper(binOp(n.Op)))

	case *ast.Pair:
		return c.combine2(vmap, n.Left, n.Right, iMkPair)
	case *ast.Fst:
		return c.combine1(vmap, n.Arg, iFst)
	case *ast.Snd:
		return c.combine1(vmap, n.Arg, iSnd)
	case *ast.Inl:
		return c.combine1(vmap, n.Arg, iMkInl)
	case *ast.Inr:
		return c.combine1(vmap, n.Arg, iMkInr)
	case *ast.Ref:
		return c.combine1(vmap, n.Arg, iMkRef)
	case *ast.Deref:
		return c.combine1(vmap, n.Arg, iDeref)
	case *ast.Assign:
		return c.combine2(vmap, n.Target, n.Value, iAssign)

	case *ast.Seq:
		return c.compSeq(vmap, n.Exprs)

	case *ast.If:
		return c.compIf(vmap, n)
	case *ast.While:
		return c.compWhile(vmap, n)
	case *ast.Case:
		return c.compCase(vmap, n)

	case *ast.App:
		// Argument is pushed before the function.
		argCode, argDefs, err := c.comp(vmap, n.Arg)
		if err != nil {
			return nil, nil, err
		}
		fnCode, fnDefs, err := c.comp(vmap, n.Func)
		if err != nil {
			return nil, nil, err
		}
		code = append(code, argCode...)
		code = append(code, fnCode...)
		code = append(code, iApply)
		return code, append(argDefs, fnDefs...), nil

	case *ast.Lambda:
		return c.compileClosure(vmap, nil, n.Param, n.Body, n.Span())

	case *ast.LetFun:
		return c.compLetFun(vmap, n)
	case *ast.LetRecFun:
		return c.compLetRecFun(vmap, n)

	case *ast.Try:
		return c.compTry(vmap, n)
	case *ast.Raise:
		argCode, argDefs, err := c.comp(vmap, n.Arg)
		if err != nil {
			return nil, nil, err
		}
		return append(argCode, iRaise), argDefs, nil
	}
	return nil, nil, &Error{Span: e.Span(), Msg: "unrecognized expression node"}
}

func (c *Compiler) combine1(vmap Env, e ast.Expr, tail isa.Instr) (code, defs []isa.Instr, err error) {
	code, defs, err = c.comp(vmap, e)
	if err != nil {
		return nil, nil, err
	}
	return append(code, tail), defs, nil
}

func (c *Compiler) combine2(vmap Env, left, right ast.Expr, tail isa.Instr) (code, defs []isa.Instr, err error) {
	lc, ld, err := c.comp(vmap, left)
	if err != nil {
		return nil, nil, err
	}
	rc, rd, err := c.comp(vmap, right)
	if err != nil {
		return nil, nil, err
	}
	code = append(code, lc...)
	code = append(code, rc...)
	code = append(code, tail)
	return code, append(ld, rd...), nil
}

func (c *Compiler) compSeq(vmap Env, exprs []ast.Expr) (code, defs []isa.Instr, err error) {
	for i, e := range exprs {
		ec, ed, err := c.comp(vmap, e)
		if err != nil {
			return nil, nil, err
		}
		code = append(code, ec...)
		if i != len(exprs)-1 {
			code = append(code, iPop)
		}
		defs = append(defs, ed...)
	}
	return code, defs, nil
}

func (c *Compiler) compIf(vmap Env, n *ast.If) (code, defs []isa.Instr, err error) {
	condCode, condDefs, err := c.comp(vmap, n.Cond)
	if err != nil {
		return nil, nil, err
	}
	thenCode, thenDefs, err := c.comp(vmap, n.Then)
	if err != nil {
		return nil, nil, err
	}
	elseCode, elseDefs, err := c.comp(vmap, n.Else)
	if err != nil {
		return nil, nil, err
	}
	lElse := c.fresh("if_else")
	lEnd := c.fresh("if_end")
	code = append(code, condCode...)
	code = append(code, test(lElse))
	code = append(code, thenCode...)
	code = append(code, goto_(lEnd))
	code = append(code, lbl(lElse))
	code = append(code, elseCode...)
	code = append(code, lbl(lEnd))
	defs = append(defs, thenDefs...)
	defs = append(defs, elseDefs...)
	defs = append(defs, condDefs...)
	return code, defs, nil
}

func (c *Compiler) compWhile(vmap Env, n *ast.While) (code, defs []isa.Instr, err error) {
	condCode, condDefs, err := c.comp(vmap, n.Cond)
	if err != nil {
		return nil, nil, err
	}
	bodyCode, bodyDefs, err := c.comp(vmap, n.Body)
	if err != nil {
		return nil, nil, err
	}
	lTop := c.fresh("while_top")
	lEnd := c.fresh("while_end")
	code = append(code, lbl(lTop))
	code = append(code, condCode...)
	code = append(code, test(lEnd))
	code = append(code, bodyCode...)
	code = append(code, iPop)
	code = append(code, goto_(lTop))
	code = append(code, lbl(lEnd))
	code = append(code, push(isa.UnitLiteral()))
	return code, append(condDefs, bodyDefs...), nil
}

func (c *Compiler) compCase(vmap Env, n *ast.Case) (code, defs []isa.Instr, err error) {
	scrutCode, scrutDefs, err := c.comp(vmap, n.Scrutinee)
	if err != nil {
		return nil, nil, err
	}
	inlCode, inlDefs, err := c.compileClosure(vmap, nil, n.Inl.Name, n.Inl.Body, n.Span())
	if err != nil {
		return nil, nil, err
	}
	inrCode, inrDefs, err := c.compileClosure(vmap, nil, n.Inr.Name, n.Inr.Body, n.Span())
	if err != nil {
		return nil, nil, err
	}
	lInr := c.fresh("case_inr")
	lAfter := c.fresh("case_after")
	code = append(code, scrutCode...)
	code = append(code, caseOp(lInr))
	code = append(code, inlCode...)
	code = append(code, iApply)
	code = append(code, goto_(lAfter))
	code = append(code, lbl(lInr))
	code = append(code, inrCode...)
	code = append(code, iApply)
	code = append(code, lbl(lAfter))
	defs = append(defs, scrutDefs...)
	defs = append(defs, inlDefs...)
	defs = append(defs, inrDefs...)
	return code, defs, nil
}

// compLetFun desugars `let f x = e1 in e2` to App(Lambda(f,e2), Lambda(x,e1))
// and compiles the desugared form.
func (c *Compiler) compLetFun(vmap Env, n *ast.LetFun) (code, defs []isa.Instr, err error) {
	sp := n.Span()
	outer := ast.NewLambda(sp, n.Name, n.Body)
	inner := ast.NewLambda(sp, n.Param, n.Value)
	return c.comp(vmap, ast.NewApp(sp, outer, inner))
}

// compLetRecFun compiles `let rec f x = e1 in e2` as: c2 (the recursive
// closure for f), c1 (Lambda(f,e2)), APPLY.
func (c *Compiler) compLetRecFun(vmap Env, n *ast.LetRecFun) (code, defs []isa.Instr, err error) {
	sp := n.Span()
	c1Code, c1Defs, err := c.compileClosure(vmap, nil, n.Name, n.Body, sp)
	if err != nil {
		return nil, nil, err
	}
	name := n.Name
	c2Code, c2Defs, err := c.compileClosure(vmap, &name, n.Param, n.Value, sp)
	if err != nil {
		return nil, nil, err
	}
	code = append(code, c2Code...)
	code = append(code, c1Code...)
	code = append(code, iApply)
	return code, append(c2Defs, c1Defs...), nil
}

func (c *Compiler) compTry(vmap Env, n *ast.Try) (code, defs []isa.Instr, err error) {
	bodyCode, bodyDefs, err := c.comp(vmap, n.Body)
	if err != nil {
		return nil, nil, err
	}
	handlerCode, handlerDefs, err := c.compileClosure(vmap, nil, n.Name, n.Handler, n.Span())
	if err != nil {
		return nil, nil, err
	}
	lExc := c.fresh("try_exc")
	lEnd := c.fresh("try_end")
	code = append(code, tryOp(lExc))
	code = append(code, bodyCode...)
	code = append(code, iUntry)
	code = append(code, goto_(lEnd))
	code = append(code, lbl(lExc))
	code = append(code, handlerCode...)
	code = append(code, iApply)
	code = append(code, lbl(lEnd))
	return code, append(bodyDefs, handlerDefs...), nil
}

// compileClosure builds a closure's captured-variable prologue and MK_CLOSURE
// instruction. recName is non-nil for a recursive binding (`let rec f x =
// body`); param is the lambda's argument name. It returns the main-stream
// code (the free-variable LOOKUPs plus MK_CLOSURE) and the defs entry for
// the body.
func (c *Compiler) compileClosure(vmap Env, recName *string, param string, body ast.Expr, sp source.Span) (code, defs []isa.Instr, err error) {
	bound := map[string]bool{param: true}
	if recName != nil {
		bound[*recName] = true
	}
	free := freevars.Of(bound, body)

	lf := c.fresh("lambda")

	// Emit LOOKUPs in reverse order (last free variable first) so that
	// after they've all been pushed, sp-i holds fv_i.
	for i := len(free) - 1; i >= 0; i-- {
		path, ok := vmap.lookup(free[i])
		if !ok {
			return nil, nil, unbound(sp, free[i])
		}
		code = append(code, lookup(path))
	}
	code = append(code, isa.Instr{Op: isa.OpMkClosure, Entry: isa.UnresolvedLocation(lf), NumFree: len(free)})

	inner := Env{}
	inner = inner.extend(param, isa.StackLocation(-2))
	if recName != nil {
		inner = inner.extend(*recName, isa.StackLocation(-1))
	}
	for i, fv := range free {
		inner = inner.extend(fv, isa.HeapLocation(i+1))
	}

	bodyCode, bodyDefs, err := c.comp(inner, body)
	if err != nil {
		return nil, nil, err
	}
	defs = append(defs, lbl(lf))
	defs = append(defs, bodyCode...)
	defs = append(defs, iReturn)
	defs = append(defs, bodyDefs...)
	return code, defs, nil
}

func unaryOp(op ast.UnaryOp) isa.UnaryOp {
	switch op {
	case ast.OpNot:
		return isa.UNot
	case ast.OpNeg:
		return isa.UNeg
	case ast.OpRead:
		return isa.URead
	default:
		return isa.UNot
	}
}

func binOp(op ast.BinOp) isa.BinOp {
	switch op {
	case ast.OpAnd:
		return isa.BAnd
	case ast.OpOr:
		return isa.BOr
	case ast.OpEqB:
		return isa.BEqB
	case ast.OpLt:
		return isa.BLt
	case ast.OpEqI:
		return isa.BEqI
	case ast.OpAdd:
		return isa.BAdd
	case ast.OpSub:
		return isa.BSub
	case ast.OpMul:
		return isa.BMul
	case ast.OpDiv:
		return isa.BDiv
	default:
		return isa.BAdd
	}
}
