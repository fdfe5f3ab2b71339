package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"jargon/internal/ast"
)

// astTreeNode is a label plus its children, grounded on
// internal/diagfmt/ast_tree.go's treeNode shape. Rendering here uses plain
// indentation rather than that file's box-drawing layout algorithm, since
// Slang's expression tree has no need for its multi-column item listing.
type astTreeNode struct {
	label    string
	children []*astTreeNode
}

// FormatAST prints e as an indented tree, one node per line.
func FormatAST(w io.Writer, e ast.Expr) {
	writeTree(w, buildASTNode(e), "")
}

func writeTree(w io.Writer, n *astTreeNode, prefix string) {
	fmt.Fprintln(w, prefix+n.label)
	childPrefix := prefix + "  "
	for _, c := range n.children {
		writeTree(w, c, childPrefix)
	}
}

func buildASTNode(e ast.Expr) *astTreeNode {
	if e == nil {
		return &astTreeNode{label: "<nil>"}
	}
	leaf := func(label string) *astTreeNode { return &astTreeNode{label: label} }
	node := func(label string, kids ...ast.Expr) *astTreeNode {
		n := &astTreeNode{label: label}
		for _, k := range kids {
			n.children = append(n.children, buildASTNode(k))
		}
		return n
	}

	switch n := e.(type) {
	case *ast.Unit:
		return leaf("Unit")
	case *ast.Boolean:
		return leaf(fmt.Sprintf("Boolean(%v)", n.Value))
	case *ast.Integer:
		return leaf(fmt.Sprintf("Integer(%d)", n.Value))
	case *ast.Var:
		return leaf(fmt.Sprintf("Var(%s)", n.Name))
	case *ast.UnaryExpr:
		return node(fmt.Sprintf("Unary(%s)", n.Op), n.Arg)
	case *ast.BinExpr:
		return node(fmt.Sprintf("Bin(%s)", n.Op), n.Left, n.Right)
	case *ast.Pair:
		return node("Pair", n.Left, n.Right)
	case *ast.Fst:
		return node("Fst", n.Arg)
	case *ast.Snd:
		return node("Snd", n.Arg)
	case *ast.Inl:
		return node("Inl", n.Arg)
	case *ast.Inr:
		return node("Inr", n.Arg)
	case *ast.Case:
		nn := &astTreeNode{label: "Case"}
		nn.children = append(nn.children,
			labeled("Scrutinee", buildASTNode(n.Scrutinee)),
			labeled(fmt.Sprintf("InlArm(%s)", n.Inl.Name), buildASTNode(n.Inl.Body)),
			labeled(fmt.Sprintf("InrArm(%s)", n.Inr.Name), buildASTNode(n.Inr.Body)),
		)
		return nn
	case *ast.If:
		nn := &astTreeNode{label: "If"}
		nn.children = append(nn.children,
			labeled("Cond", buildASTNode(n.Cond)),
			labeled("Then", buildASTNode(n.Then)),
			labeled("Else", buildASTNode(n.Else)),
		)
		return nn
	case *ast.Seq:
		nn := &astTreeNode{label: "Seq"}
		for _, sub := range n.Exprs {
			nn.children = append(nn.children, buildASTNode(sub))
		}
		return nn
	case *ast.Ref:
		return node("Ref", n.Arg)
	case *ast.Deref:
		return node("Deref", n.Arg)
	case *ast.Assign:
		return node("Assign", n.Target, n.Value)
	case *ast.While:
		return node("While", n.Cond, n.Body)
	case *ast.App:
		return node("App", n.Func, n.Arg)
	case *ast.Lambda:
		return node(fmt.Sprintf("Lambda(%s)", n.Param), n.Body)
	case *ast.LetFun:
		nn := &astTreeNode{label: fmt.Sprintf("LetFun(%s %s)", n.Name, n.Param)}
		nn.children = append(nn.children,
			labeled("Value", buildASTNode(n.Value)),
			labeled("Body", buildASTNode(n.Body)),
		)
		return nn
	case *ast.LetRecFun:
		nn := &astTreeNode{label: fmt.Sprintf("LetRecFun(%s %s)", n.Name, n.Param)}
		nn.children = append(nn.children,
			labeled("Value", buildASTNode(n.Value)),
			labeled("Body", buildASTNode(n.Body)),
		)
		return nn
	case *ast.Try:
		nn := &astTreeNode{label: fmt.Sprintf("Try(handler=%s)", n.Name)}
		nn.children = append(nn.children,
			labeled("Body", buildASTNode(n.Body)),
			labeled("Handler", buildASTNode(n.Handler)),
		)
		return nn
	case *ast.Raise:
		return node("Raise", n.Arg)
	default:
		return leaf(strings.TrimPrefix(fmt.Sprintf("%T", e), "*ast."))
	}
}

func labeled(label string, child *astTreeNode) *astTreeNode {
	return &astTreeNode{label: label, children: []*astTreeNode{child}}
}
