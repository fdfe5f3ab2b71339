// Package freevars computes the free variables of a Slang expression, the
// analysis closure compilation needs to build a captured environment.
// It needs this list in a stable order: LOOKUP indices for the captured
// environment are assigned by position, so two calls over the same
// expression must agree.
package freevars

import "jargon/internal/ast"

// Of returns the free variables of e given the set of names already bound
// in the enclosing scope, in first-occurrence order with no duplicates.
// This order is load-bearing: the compiler assigns HEAP_LOCATION offsets
// to captured variables by their position in this list.
func Of(bound map[string]bool, e ast.Expr) []string {
	c := &collector{bound: bound, seen: map[string]bool{}}
	c.walk(e)
	return c.order
}

type collector struct {
	bound map[string]bool
	seen  map[string]bool
	order []string
}

func (c *collector) use(name string) {
	if c.bound[name] || c.seen[name] {
		return
	}
	c.seen[name] = true
	c.order = append(c.order, name)
}

// withBound runs fn with name additionally treated as bound, then restores
// the previous binding state — a plain save/restore rather than a copied
// map, since expressions nest shallowly enough that this never shows up on
// a profile.
func (c *collector) withBound(name string, fn func()) {
	prev := c.bound[name]
	c.bound[name] = true
	fn()
	c.bound[name] = prev
}

func (c *collector) walk(e ast.Expr) {
	if e == nil {
		return
	}
	switch n := e.(type) {
	case *ast.Unit, *ast.Boolean, *ast.Integer:
		// no children, no variables
	case *ast.Var:
		c.use(n.Name)
	case *ast.UnaryExpr:
		c.walk(n.Arg)
	case *ast.BinExpr:
		c.walk(n.Left)
		c.walk(n.Right)
	case *ast.Pair:
		c.walk(n.Left)
		c.walk(n.Right)
	case *ast.Fst:
		c.walk(n.Arg)
	case *ast.Snd:
		c.walk(n.Arg)
	case *ast.Inl:
		c.walk(n.Arg)
	case *ast.Inr:
		c.walk(n.Arg)
	case *ast.Case:
		c.walk(n.Scrutinee)
		c.withBound(n.Inl.Name, func() { c.walk(n.Inl.Body) })
		c.withBound(n.Inr.Name, func() { c.walk(n.Inr.Body) })
	case *ast.If:
		c.walk(n.Cond)
		c.walk(n.Then)
		c.walk(n.Else)
	case *ast.Seq:
		for _, sub := range n.Exprs {
			c.walk(sub)
		}
	case *ast.Ref:
		c.walk(n.Arg)
	case *ast.Deref:
		c.walk(n.Arg)
	case *ast.Assign:
		c.walk(n.Target)
		c.walk(n.Value)
	case *ast.While:
		c.walk(n.Cond)
		c.walk(n.Body)
	case *ast.App:
		c.walk(n.Func)
		c.walk(n.Arg)
	case *ast.Lambda:
		c.withBound(n.Param, func() { c.walk(n.Body) })
	case *ast.LetFun:
		// Value is the function body (x is its parameter, e1 in
		// `let f x = e1 in e2`), so x is bound while walking it; only
		// e2 sees the bound name f.
		c.withBound(n.Param, func() { c.walk(n.Value) })
		c.withBound(n.Name, func() { c.walk(n.Body) })
	case *ast.LetRecFun:
		// The bound function name is in scope for both its own value
		// (it may recurse) and the let body; the parameter is bound
		// only within the value.
		c.withBound(n.Name, func() {
			c.withBound(n.Param, func() { c.walk(n.Value) })
			c.walk(n.Body)
		})
	case *ast.Try:
		c.walk(n.Body)
		c.withBound(n.Name, func() { c.walk(n.Handler) })
	case *ast.Raise:
		c.walk(n.Arg)
	}
}
