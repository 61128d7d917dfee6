package st

import "janus/bytecode"

// Statement is a resolved statement node ready for codegen. IsMono is
// computed during lowering (spec.md §4.3); mono statements are emitted
// forward only (spec.md §4.4.1).
type Statement interface {
	IsMono() bool
}

// PrintNode is always mono.
type PrintNode struct {
	Items   []Expression
	Newline bool
}

func (n *PrintNode) IsMono() bool { return true }

// LetUnletNode introduces (IsUnlet=false) or retires (IsUnlet=true) a
// variable bound to Register, initialized/deinitialized by RHS.
type LetUnletNode struct {
	IsUnlet bool
	Register int
	RHS      Expression
	Mono     bool
}

func (n *LetUnletNode) IsMono() bool { return n.Mono }

// RefUnrefNode introduces/retires a reference, aliasing RHS's variable.
type RefUnrefNode struct {
	IsUnref  bool
	Register int
	RHS      *LookupNode
	Mono     bool
}

func (n *RefUnrefNode) IsMono() bool { return n.Mono }

// ModopNode is a reversible in-place update (op ∈ {+,-,*,/}).
type ModopNode struct {
	Lookup *LookupNode
	RHS    Expression
	Op     bytecode.Op
	Mono   bool
}

func (n *ModopNode) IsMono() bool { return n.Mono }

// PushPullNode moves a variable into/out of the end of an array.
type PushPullNode struct {
	IsPush   bool
	Register int
	Lookup   *LookupNode
	Mono     bool
}

func (n *PushPullNode) IsMono() bool { return n.Mono }

// IfNode: FwdExpr selects the forward branch; BkwdExpr must select the
// same branch on the way back (spec.md §4.4.1).
type IfNode struct {
	FwdExpr            Expression
	IfStmts, ElseStmts []Statement
	BkwdExpr           Expression
	Mono               bool
}

func (n *IfNode) IsMono() bool { return n.Mono }

// WhileNode: BkwdExpr is nil iff the loop is fully mono (no backward
// form is ever emitted for it).
type WhileNode struct {
	FwdExpr  Expression
	Stmts    []Statement
	BkwdExpr Expression
	Mono     bool
}

func (n *WhileNode) IsMono() bool { return n.Mono }

// ForNode iterates a fresh reference (Register) over Iterator.
type ForNode struct {
	Register int
	Iterator *LookupNode
	Stmts    []Statement
	Mono     bool
}

func (n *ForNode) IsMono() bool { return n.Mono }

// DoYieldNode is never mono: §4.4.1's do/yield construct always keeps
// both directions, reusing the forward do-block's reverse for the
// epilogue.
type DoYieldNode struct {
	DoStmts, YieldStmts []Statement
}

func (n *DoYieldNode) IsMono() bool { return false }

// CatchNode is always mono; it only ever changes forward-direction
// control flow.
type CatchNode struct {
	Expr Expression
}

func (n *CatchNode) IsMono() bool { return true }

// CallNode invokes (IsUncall=false) or uncalls (IsUncall=true) FuncIdx.
//
// Mono-ness of a call site is hard-coded false, per spec.md §9's open
// ambiguity ("the prototype should carry an is_mono flag derived from
// the callee" — not yet reconstructed here); see DESIGN.md.
type CallNode struct {
	IsUncall bool
	Name     string // callee name; FuncIdx is resolved once every function's index is known
	FuncIdx  int
	BorrowArgs []*LookupNode
	StolenArgs []int // registers
	ReturnArgs []int // registers
	Mono       bool
}

func (n *CallNode) IsMono() bool { return n.Mono }
