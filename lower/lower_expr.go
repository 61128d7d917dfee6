// Package lower performs Pass B: recursively translating a pt.Module's
// expression and statement trees into st nodes, resolving every name to
// a register via a synctx.Context and deciding mono-ness bottom-up
// (spec.md §4.2-§4.3). It is the Go counterpart of syntaxchecker.rs's
// to_syntax_node family.
package lower

import (
	"strings"

	"janus/diag"
	"janus/pt"
	"janus/st"
	"janus/synctx"
)

// isMonoName reports whether a variable/parameter name denotes a mono
// (forward-only) binding: by convention, any name beginning with "."
// (spec.md's pt.LookupNode doc: "A name beginning with \".\" is mono").
func isMonoName(name string) bool {
	return strings.HasPrefix(name, ".")
}

// Expr lowers a single parse-tree expression against ctx.
func Expr(ctx *synctx.Context, e pt.Expr) (st.Expression, error) {
	switch n := e.(type) {
	case *pt.FractionNode:
		return st.NewFractionNode(ctx.AddConst(n.Value)), nil

	case *pt.StringNode:
		return st.NewStringNode(ctx.AddString(n.Value)), nil

	case *pt.LookupNode:
		return lookup(ctx, n)

	case *pt.BinopNode:
		lhs, err := Expr(ctx, n.LHS)
		if err != nil {
			return nil, err
		}
		rhs, err := Expr(ctx, n.RHS)
		if err != nil {
			return nil, err
		}
		return st.NewBinopNode(lhs, rhs, n.Op), nil

	case *pt.UniopNode:
		inner, err := Expr(ctx, n.Expr)
		if err != nil {
			return nil, err
		}
		return st.NewUniopNode(inner, n.Op), nil

	case *pt.ArrayLiteralNode:
		items := make([]st.Expression, len(n.Items))
		for i, item := range n.Items {
			lowered, err := Expr(ctx, item)
			if err != nil {
				return nil, err
			}
			items[i] = lowered
		}
		return st.NewArrayLiteralNode(items), nil

	case *pt.ArrayRepeatNode:
		item, err := Expr(ctx, n.Item)
		if err != nil {
			return nil, err
		}
		dims, err := Expr(ctx, n.Dimensions)
		if err != nil {
			return nil, err
		}
		return st.NewArrayRepeatNode(item, dims), nil
	}
	return nil, diag.InternalErrorf("lower: unhandled expression type %T", e)
}

// lookup resolves a name (plus optional subscripts) to a *st.LookupNode.
func lookup(ctx *synctx.Context, n *pt.LookupNode) (*st.LookupNode, error) {
	ref, err := ctx.LookupVariable(n.At, n.Name)
	if err != nil {
		return nil, err
	}
	indices := make([]st.Expression, len(n.Indices))
	for i, idx := range n.Indices {
		lowered, err := Expr(ctx, idx)
		if err != nil {
			return nil, err
		}
		indices[i] = lowered
	}
	return st.NewLookupNode(ref.Register, indices, ref.Var.ID, isMonoName(n.Name)), nil
}
