package codegen

import (
	"janus/bytecode"
	"janus/st"
)

// Expr emits instructions that leave one value on the VM stack,
// appended to out. Expressions are always evaluated forward only, even
// inside a statement that itself has a backward form (spec.md §4.4.1):
// a modop's RHS, say, is recomputed from the same registers on the way
// back rather than undone.
func Expr(out *[]bytecode.Instruction, e st.Expression) {
	switch n := e.(type) {
	case *st.FractionNode:
		*out = append(*out, bytecode.InsLoadConst(n.ConstIdx))

	case *st.StringNode:
		*out = append(*out, bytecode.InsLoadConst(n.StrIdx))

	case *st.LookupNode:
		lookup(out, n)

	case *st.BinopNode:
		binop(out, n)

	case *st.UniopNode:
		Expr(out, n.Expr)
		*out = append(*out, n.Op.Instr())

	case *st.ArrayLiteralNode:
		for _, item := range n.Items {
			Expr(out, item)
		}
		*out = append(*out, bytecode.InsArrayLiteral(len(n.Items)))

	case *st.ArrayRepeatNode:
		Expr(out, n.Item)
		Expr(out, n.Dimensions)
		*out = append(*out, bytecode.InsArrayRepeat())
	}
}

// binop emits n's operator, short-circuiting BinopAnd/BinopOr instead of
// evaluating both sides unconditionally: the RHS is skipped and a
// literal substituted whenever the LHS alone already decides the result
// (mirrors compiler.rs's BinopNode::compile()).
func binop(out *[]bytecode.Instruction, n *st.BinopNode) {
	if n.Op != bytecode.OpAnd && n.Op != bytecode.OpOr {
		Expr(out, n.LHS)
		Expr(out, n.RHS)
		*out = append(*out, n.Op.Instr())
		return
	}

	var rhs []bytecode.Instruction
	Expr(&rhs, n.RHS)

	Expr(out, n.LHS)
	if n.Op == bytecode.OpAnd {
		*out = append(*out, bytecode.InsRelativeJumpIfTrue(3))
		*out = append(*out, bytecode.InsCreateInt(0))
	} else {
		*out = append(*out, bytecode.InsRelativeJumpIfFalse(3))
		*out = append(*out, bytecode.InsCreateInt(1))
	}
	*out = append(*out, bytecode.InsRelativeJump(len(rhs)+1))
	*out = append(*out, rhs...)
}

// lookup emits a register load followed by one Subscript per index
// expression, reading into the interior named by Indices.
func lookup(out *[]bytecode.Instruction, n *st.LookupNode) {
	*out = append(*out, bytecode.InsLoadRegister(n.Register))
	for _, idx := range n.Indices {
		Expr(out, idx)
		*out = append(*out, bytecode.InsSubscript(1))
	}
}
