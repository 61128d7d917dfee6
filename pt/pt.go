// Package pt defines the parse-tree node shapes handed to the middle end
// by the (out-of-scope) lexer/parser. Nothing in this package performs
// analysis; it is the frozen input contract described in spec.md §6.
package pt

import (
	"math/big"
	"strconv"

	"janus/bytecode"
)

// Pos is a source position, carried by every node for diagnostics.
type Pos struct {
	Line, Col int
}

func (p Pos) String() string {
	if p.Line == 0 && p.Col == 0 {
		return "?"
	}
	return strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Col)
}

// Expr is any expression node of the parse tree.
type Expr interface {
	Pos() Pos
	exprNode()
}

// Stmt is any statement node of the parse tree.
type Stmt interface {
	Pos() Pos
	stmtNode()
}

// FractionNode is a literal rational constant.
type FractionNode struct {
	At    Pos
	Value *big.Rat
}

func (n *FractionNode) Pos() Pos { return n.At }
func (*FractionNode) exprNode()  {}

// StringNode is a literal string, used only where the grammar allows
// strings as expressions (e.g. print arguments).
type StringNode struct {
	At    Pos
	Value string
}

func (n *StringNode) Pos() Pos { return n.At }
func (*StringNode) exprNode()  {}

// ArrayLiteralNode builds an array from explicit elements.
type ArrayLiteralNode struct {
	At    Pos
	Items []Expr
}

func (n *ArrayLiteralNode) Pos() Pos { return n.At }
func (*ArrayLiteralNode) exprNode()  {}

// ArrayRepeatNode builds an array by repeating Item Dimensions times.
type ArrayRepeatNode struct {
	At         Pos
	Item       Expr
	Dimensions Expr
}

func (n *ArrayRepeatNode) Pos() Pos { return n.At }
func (*ArrayRepeatNode) exprNode()  {}

// LookupNode names a variable, optionally subscripted by Indices to
// reach an interior element. A name beginning with "." is mono.
type LookupNode struct {
	At      Pos
	Name    string
	Indices []Expr
}

func (n *LookupNode) Pos() Pos { return n.At }
func (*LookupNode) exprNode()  {}

// BinopNode is a binary operator expression.
type BinopNode struct {
	At       Pos
	LHS, RHS Expr
	Op       bytecode.Op
}

func (n *BinopNode) Pos() Pos { return n.At }
func (*BinopNode) exprNode()  {}

// UniopNode is a unary operator expression.
type UniopNode struct {
	At   Pos
	Expr Expr
	Op   bytecode.Op
}

func (n *UniopNode) Pos() Pos { return n.At }
func (*UniopNode) exprNode()  {}

// PrintNode is always mono; it is only ever emitted forward.
type PrintNode struct {
	At      Pos
	Items   []Expr
	Newline bool
}

func (n *PrintNode) Pos() Pos { return n.At }
func (*PrintNode) stmtNode()  {}

// LetUnletNode is a paired variable introduction/retirement. Both
// directions of the pair must supply the same RHS initializer.
type LetUnletNode struct {
	At      Pos
	IsUnlet bool
	Name    string
	RHS     Expr
}

func (n *LetUnletNode) Pos() Pos { return n.At }
func (*LetUnletNode) stmtNode()  {}

// RefUnrefNode introduces/retires a named alias of an existing variable.
type RefUnrefNode struct {
	At      Pos
	IsUnref bool
	Name    string
	RHS     *LookupNode
}

func (n *RefUnrefNode) Pos() Pos { return n.At }
func (*RefUnrefNode) stmtNode()  {}

// ModopNode is an in-place reversible update ("+=", "-=", "*=", "/=").
type ModopNode struct {
	Lookup *LookupNode
	Op     bytecode.Op
	RHS    Expr
}

func (n *ModopNode) Pos() Pos { return n.Lookup.Pos() }
func (*ModopNode) stmtNode()  {}

// PushPullNode moves a variable into/out of the end of an array.
type PushPullNode struct {
	At     Pos
	IsPush bool
	Name   string
	Lookup *LookupNode
}

func (n *PushPullNode) Pos() Pos { return n.At }
func (*PushPullNode) stmtNode()  {}

// IfNode: the forward branch is chosen by FwdExpr; on the way back,
// BkwdExpr must pick out the same branch that forward execution took.
type IfNode struct {
	FwdExpr            Expr
	IfStmts, ElseStmts []Stmt
	BkwdExpr           Expr
}

func (n *IfNode) Pos() Pos { return n.FwdExpr.Pos() }
func (*IfNode) stmtNode()  {}

// WhileNode: BkwdExpr is optional (nil) only when the loop body and
// condition are entirely mono, since such a loop has no backward form.
type WhileNode struct {
	FwdExpr  Expr
	Stmts    []Stmt
	BkwdExpr Expr // nil iff the loop is fully mono
}

func (n *WhileNode) Pos() Pos { return n.FwdExpr.Pos() }
func (*WhileNode) stmtNode()  {}

// ForNode iterates IterVar over Iterator, which must be a reversible
// iterator source.
type ForNode struct {
	At       Pos
	IterVar  string
	Iterator *LookupNode
	Stmts    []Stmt
}

func (n *ForNode) Pos() Pos { return n.At }
func (*ForNode) stmtNode()  {}

// DoYieldNode runs DoStmts, then YieldStmts, then undoes DoStmts. Only
// YieldStmts need not be reversible with respect to the caller's frame.
type DoYieldNode struct {
	DoStmts, YieldStmts []Stmt
}

func (n *DoYieldNode) Pos() Pos { return Pos{} }
func (*DoYieldNode) stmtNode()  {}

// CatchNode flips execution direction when Expr holds true.
type CatchNode struct {
	At   Pos
	Expr Expr
}

func (n *CatchNode) Pos() Pos { return n.At }
func (*CatchNode) stmtNode()  {}

// CallNode invokes (or, if IsUncall, runs backward) the named function.
type CallNode struct {
	At         Pos
	IsUncall   bool
	Name       string
	BorrowArgs []*LookupNode
	StolenArgs []string
	ReturnArgs []string
}

func (n *CallNode) Pos() Pos { return n.At }
func (*CallNode) stmtNode()  {}

// FunctionParam is one entry of a borrow/steal/return parameter list.
type FunctionParam struct {
	Name  string
	IsRef bool
	Link  string // "" means no link annotation
}

// FunctionDecl is a complete function definition.
type FunctionDecl struct {
	At           Pos
	Name         string
	OwnedLinks   []string
	BorrowParams []FunctionParam
	StealParams  []FunctionParam
	ReturnParams []FunctionParam
	Stmts        []Stmt
}

// Module is the whole compilation unit: top-level statements (the
// "global function") plus every declared function, including main.
type Module struct {
	GlobalFunc FunctionDecl
	Functions  []FunctionDecl
}
