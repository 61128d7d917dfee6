package st

import (
	"math/big"

	"github.com/bits-and-blooms/bitset"

	"janus/bytecode"
)

// Expression is a resolved, register-bound expression node. IsMono and
// UsedVars are computed bottom-up during lowering (spec.md §4.3).
// Lowering reads IsMono to decide each statement's mono-ness; UsedVars
// is carried on every node but no later pass reads it.
type Expression interface {
	IsMono() bool
	UsedVars() *bitset.BitSet
}

// FractionNode loads a constant rational from the pool.
type FractionNode struct {
	ConstIdx int
	used     *bitset.BitSet
}

func NewFractionNode(constIdx int) *FractionNode {
	return &FractionNode{ConstIdx: constIdx, used: bitset.New(0)}
}

func (n *FractionNode) IsMono() bool             { return false }
func (n *FractionNode) UsedVars() *bitset.BitSet { return n.used }

// StringNode loads a constant string from the pool.
type StringNode struct {
	StrIdx int
	used   *bitset.BitSet
}

func NewStringNode(strIdx int) *StringNode {
	return &StringNode{StrIdx: strIdx, used: bitset.New(0)}
}

func (n *StringNode) IsMono() bool             { return false }
func (n *StringNode) UsedVars() *bitset.BitSet { return n.used }

// LookupNode reads a (possibly interior) variable. VarIsMono is the
// name-prefix-derived flag (spec.md §4.3); IsMono additionally folds in
// mono-ness of any subscript expressions.
type LookupNode struct {
	Register  int
	Indices   []Expression
	Mono      bool
	VarIsMono bool
	used      *bitset.BitSet
}

func NewLookupNode(register int, indices []Expression, varID int, varIsMono bool) *LookupNode {
	used := bitset.New(0)
	mono := varIsMono
	for _, idx := range indices {
		used.InPlaceUnion(idx.UsedVars())
		mono = mono || idx.IsMono()
	}
	used.Set(uint(varID))
	return &LookupNode{Register: register, Indices: indices, Mono: mono, VarIsMono: varIsMono, used: used}
}

func (n *LookupNode) IsMono() bool             { return n.Mono }
func (n *LookupNode) UsedVars() *bitset.BitSet { return n.used }

// BinopNode applies a reversible binary operator.
type BinopNode struct {
	LHS, RHS Expression
	Op       bytecode.Op
	mono     bool
	used     *bitset.BitSet
}

func NewBinopNode(lhs, rhs Expression, op bytecode.Op) *BinopNode {
	used := lhs.UsedVars().Clone()
	used.InPlaceUnion(rhs.UsedVars())
	return &BinopNode{LHS: lhs, RHS: rhs, Op: op, mono: lhs.IsMono() || rhs.IsMono(), used: used}
}

func (n *BinopNode) IsMono() bool             { return n.mono }
func (n *BinopNode) UsedVars() *bitset.BitSet { return n.used }

// UniopNode applies a reversible unary operator.
type UniopNode struct {
	Expr Expression
	Op   bytecode.Op
}

func NewUniopNode(expr Expression, op bytecode.Op) *UniopNode {
	return &UniopNode{Expr: expr, Op: op}
}

func (n *UniopNode) IsMono() bool             { return n.Expr.IsMono() }
func (n *UniopNode) UsedVars() *bitset.BitSet { return n.Expr.UsedVars() }

// ArrayLiteralNode builds an array from explicit items.
type ArrayLiteralNode struct {
	Items []Expression
	mono  bool
	used  *bitset.BitSet
}

func NewArrayLiteralNode(items []Expression) *ArrayLiteralNode {
	used := bitset.New(0)
	mono := false
	for _, item := range items {
		used.InPlaceUnion(item.UsedVars())
		mono = mono || item.IsMono()
	}
	return &ArrayLiteralNode{Items: items, mono: mono, used: used}
}

func (n *ArrayLiteralNode) IsMono() bool             { return n.mono }
func (n *ArrayLiteralNode) UsedVars() *bitset.BitSet { return n.used }

// ArrayRepeatNode builds an array by repeating Item Dimensions times.
type ArrayRepeatNode struct {
	Item       Expression
	Dimensions Expression
	mono       bool
	used       *bitset.BitSet
}

func NewArrayRepeatNode(item, dims Expression) *ArrayRepeatNode {
	used := item.UsedVars().Clone()
	used.InPlaceUnion(dims.UsedVars())
	return &ArrayRepeatNode{Item: item, Dimensions: dims, mono: item.IsMono() || dims.IsMono(), used: used}
}

func (n *ArrayRepeatNode) IsMono() bool             { return n.mono }
func (n *ArrayRepeatNode) UsedVars() *bitset.BitSet { return n.used }

// RatConst is one opaque arithmetic value in a constant pool: an exact
// rational, per spec.md §1's "opaque arithmetic value type".
type RatConst = big.Rat
