package codegen

import (
	"janus/bytecode"
	"janus/diag"
	"janus/st"
)

// Sequence compiles a run of statements into one Buffer, concatenating
// each statement's forward and backward segments in source order
// (spec.md §4.4: "extend ... concatenate both directions").
func Sequence(stmts []st.Statement) (*Buffer, error) {
	buf := NewBuffer()
	for _, s := range stmts {
		sb, err := Stmt(s)
		if err != nil {
			return nil, err
		}
		buf.Extend(sb)
	}
	return buf, nil
}

// Stmt compiles one statement into its own Buffer.
func Stmt(s st.Statement) (*Buffer, error) {
	switch n := s.(type) {
	case *st.PrintNode:
		return printStmt(n)
	case *st.LetUnletNode:
		return letUnletStmt(n)
	case *st.RefUnrefNode:
		return refUnrefStmt(n)
	case *st.ModopNode:
		return modopStmt(n)
	case *st.PushPullNode:
		return pushPullStmt(n)
	case *st.IfNode:
		return ifStmt(n)
	case *st.WhileNode:
		return whileStmt(n)
	case *st.ForNode:
		return forStmt(n)
	case *st.DoYieldNode:
		return doYieldStmt(n)
	case *st.CatchNode:
		return catchStmt(n)
	case *st.CallNode:
		return callStmt(n)
	}
	return nil, diag.InternalErrorf("codegen: unhandled statement type %T", s)
}

func compileExpr(e st.Expression) []bytecode.Instruction {
	var out []bytecode.Instruction
	Expr(&out, e)
	return out
}

func compileLookup(n *st.LookupNode) []bytecode.Instruction {
	var out []bytecode.Instruction
	lookup(&out, n)
	return out
}

// printStmt mirrors print's compile template: forward items are pushed
// in reverse declaration order (they unwind off the stack in that
// order), and the backward segment built as the same items in natural
// order, reversed once more by AppendBkwd so Finalize's whole-function
// reversal restores them to the forward evaluation order on the way
// back. Print is always mono (spec.md §4.4.1: printing is not
// reversible), so its backward segment is dropped unconditionally.
func printStmt(n *st.PrintNode) (*Buffer, error) {
	buf := NewBuffer()
	for i := len(n.Items) - 1; i >= 0; i-- {
		buf.AppendFwd(compileExpr(n.Items[i]))
	}
	count := len(n.Items)
	if n.Newline {
		count = -count
	}
	buf.PushFwd(bytecode.InsPrint(count))

	buf.PushBkwd(bytecode.InsPrint(count))
	for _, item := range n.Items {
		buf.AppendBkwd(compileExpr(item))
	}

	if err := buf.ClearBkwd(); err != nil {
		return nil, err
	}
	return buf, nil
}

// letUnletStmt implements spec.md §4.4.1's symmetric let/unlet template:
// unlet is let's inverse, built by swapping which half is forward and
// which is backward.
func letUnletStmt(n *st.LetUnletNode) (*Buffer, error) {
	buf := NewBuffer()
	if n.IsUnlet {
		buf.PushFwd(bytecode.InsFreeRegister(n.Register))
		buf.PushBkwd(bytecode.InsStoreRegister(n.Register))
		buf.PushBkwd(bytecode.InsUniqueVar())
		buf.AppendBkwd(compileExpr(n.RHS))
	} else {
		buf.AppendFwd(compileExpr(n.RHS))
		buf.PushFwd(bytecode.InsUniqueVar())
		buf.PushFwd(bytecode.InsStoreRegister(n.Register))
		buf.PushBkwd(bytecode.InsFreeRegister(n.Register))
	}
	if n.Mono {
		if err := buf.ClearBkwd(); err != nil {
			return nil, err
		}
	}
	return buf, nil
}

// refUnrefStmt is ref/unref's counterpart to letUnletStmt: creating a
// reference is a lookup followed by storing it into a fresh register;
// removing one is just freeing that register.
func refUnrefStmt(n *st.RefUnrefNode) (*Buffer, error) {
	createRef := compileLookup(n.RHS)
	createRef = append(createRef, bytecode.InsStoreRegister(n.Register))
	removeRef := []bytecode.Instruction{bytecode.InsFreeRegister(n.Register)}

	buf := NewBuffer()
	if n.IsUnref {
		buf.AppendFwd(removeRef)
		buf.AppendBkwd(createRef)
	} else {
		buf.AppendFwd(createRef)
		buf.AppendBkwd(removeRef)
	}
	if n.Mono {
		if err := buf.ClearBkwd(); err != nil {
			return nil, err
		}
	}
	return buf, nil
}

// modopStmt implements spec.md §4.4.1's bracket template for +=-style
// updates: the target is duplicated so the store at the end writes back
// to the same location the lookup read from, and the backward segment
// applies the operator's inverse to undo the update.
func modopStmt(n *st.ModopNode) (*Buffer, error) {
	lookupInstrs := compileLookup(n.Lookup)
	rhsInstrs := compileExpr(n.RHS)
	bkwdOp := n.Op.Inverse()

	buf := NewBuffer()
	buf.AppendFwd(lookupInstrs)
	buf.PushFwd(bytecode.InsDuplicateRef())
	buf.AppendFwd(rhsInstrs)
	buf.PushFwd(n.Op.Instr())
	buf.PushFwd(bytecode.InsStore())

	buf.PushBkwd(bytecode.InsStore())
	buf.PushBkwd(bkwdOp.Instr())
	buf.AppendBkwd(rhsInstrs)
	buf.PushBkwd(bytecode.InsDuplicateRef())
	buf.AppendBkwd(lookupInstrs)

	if n.Mono {
		if err := buf.ClearBkwd(); err != nil {
			return nil, err
		}
	}
	return buf, nil
}

// pushPullStmt mirrors modop's bracket convention: push and pull are
// each other's inverse, addressed by the same array lookup on both
// ends of the bracket.
func pushPullStmt(n *st.PushPullNode) (*Buffer, error) {
	lookupInstrs := compileLookup(n.Lookup)

	buf := NewBuffer()
	buf.AppendFwd(lookupInstrs)
	if n.IsPush {
		buf.PushFwd(bytecode.InsPush(n.Register))
		buf.PushBkwd(bytecode.InsPull(n.Register))
	} else {
		buf.PushFwd(bytecode.InsPull(n.Register))
		buf.PushBkwd(bytecode.InsPush(n.Register))
	}
	buf.AppendBkwd(lookupInstrs)

	if n.Mono {
		if err := buf.ClearBkwd(); err != nil {
			return nil, err
		}
	}
	return buf, nil
}

// ifStmt implements spec.md §4.4.1's if/else bracket: two inner jumps
// so the backward executor, guided by BkwdExpr, re-enters the same arm
// the forward pass took. Each arm is its own independently-compiled
// Buffer spliced in with Extend, which keeps the fwd/bkwd offset
// bookkeeping correct without tracking it by hand here.
func ifStmt(n *st.IfNode) (*Buffer, error) {
	thenBuf, err := Sequence(n.IfStmts)
	if err != nil {
		return nil, err
	}
	elseBuf, err := Sequence(n.ElseStmts)
	if err != nil {
		return nil, err
	}

	ifBkwdLen := thenBuf.BkwdLen()
	elseBkwdLen := elseBuf.BkwdLen()

	buf := NewBuffer()
	buf.AppendFwd(compileExpr(n.FwdExpr))
	buf.PushFwd(bytecode.InsRelativeJumpIfFalse(thenBuf.FwdLen() + 2))
	buf.Extend(thenBuf)
	buf.PushFwd(bytecode.InsRelativeJump(elseBuf.FwdLen() + 1))
	buf.PushBkwd(bytecode.InsRelativeJump(ifBkwdLen + 1))
	buf.Extend(elseBuf)
	buf.PushBkwd(bytecode.InsRelativeJumpIfTrue(elseBkwdLen + 2))
	buf.AppendBkwd(compileExpr(n.BkwdExpr))

	if n.Mono {
		if err := buf.ClearBkwd(); err != nil {
			return nil, err
		}
	}
	return buf, nil
}

// whileStmt implements spec.md §4.4.1's while bracket; when BkwdExpr is
// nil (a fully mono loop) no backward segment is emitted at all.
func whileStmt(n *st.WhileNode) (*Buffer, error) {
	bodyBuf, err := Sequence(n.Stmts)
	if err != nil {
		return nil, err
	}

	fwdExpr := compileExpr(n.FwdExpr)
	stmtsFwdLen := bodyBuf.FwdLen()
	stmtsBkwdLen := bodyBuf.BkwdLen()

	buf := NewBuffer()
	buf.AppendFwd(fwdExpr)
	buf.PushFwd(bytecode.InsRelativeJumpIfFalse(stmtsFwdLen + 2))

	var bkwdExpr []bytecode.Instruction
	if n.BkwdExpr != nil {
		bkwdExpr = compileExpr(n.BkwdExpr)
		buf.PushBkwd(bytecode.InsRelativeJump(-stmtsBkwdLen - len(bkwdExpr) - 1))
	}

	buf.Extend(bodyBuf)

	buf.PushFwd(bytecode.InsRelativeJump(-stmtsFwdLen - len(fwdExpr) - 1))
	if n.BkwdExpr != nil {
		buf.PushBkwd(bytecode.InsRelativeJumpIfFalse(stmtsBkwdLen + 2))
		buf.AppendBkwd(bkwdExpr)
	}

	if n.Mono {
		if err := buf.ClearBkwd(); err != nil {
			return nil, err
		}
	}
	return buf, nil
}

// forStmt implements spec.md §4.4.1's for bracket: both directions
// share the same CreateIter/StepIter framing, since the iterator itself
// is reversible and the loop body's own direction symmetry does the
// rest.
func forStmt(n *st.ForNode) (*Buffer, error) {
	bodyBuf, err := Sequence(n.Stmts)
	if err != nil {
		return nil, err
	}

	iterLookup := compileLookup(n.Iterator)
	stmtsFwdLen := bodyBuf.FwdLen()
	stmtsBkwdLen := bodyBuf.BkwdLen()

	buf := NewBuffer()
	buf.AppendFwd(iterLookup)
	buf.PushFwd(bytecode.InsCreateIter(n.Register))
	buf.PushFwd(bytecode.InsStepIter(stmtsFwdLen + 2))
	buf.PushBkwd(bytecode.InsRelativeJump(-(1 + stmtsBkwdLen)))

	buf.Extend(bodyBuf)

	buf.PushFwd(bytecode.InsRelativeJump(-(1 + stmtsFwdLen)))
	buf.PushBkwd(bytecode.InsStepIter(stmtsBkwdLen + 2))
	buf.PushBkwd(bytecode.InsCreateIter(n.Register))
	buf.AppendBkwd(iterLookup)

	if n.Mono {
		if err := buf.ClearBkwd(); err != nil {
			return nil, err
		}
	}
	return buf, nil
}

// doYieldStmt implements spec.md §4.4.1's do/yield construct: D, then Y,
// then D⁻¹ forward; D, then Y⁻¹, then D⁻¹ backward. The undo block is
// captured by reversing D before Y is appended, so plain sequential
// Extend of D, Y, and reversed(D) produces both streams at once.
func doYieldStmt(n *st.DoYieldNode) (*Buffer, error) {
	doBuf, err := Sequence(n.DoStmts)
	if err != nil {
		return nil, err
	}
	undoBuf := doBuf.Reversed()
	yieldBuf, err := Sequence(n.YieldStmts)
	if err != nil {
		return nil, err
	}

	buf := NewBuffer()
	buf.Extend(doBuf)
	buf.Extend(yieldBuf)
	buf.Extend(undoBuf)
	return buf, nil
}

// catchStmt implements spec.md §4.4.1's catch: a conditional direction
// flip, realized as a placeholder Reverse instruction whose target is
// resolved once the enclosing function's backward stream is complete.
// Catch never touches the backward stream itself, so it has nothing to
// clear even though it is always mono.
func catchStmt(n *st.CatchNode) (*Buffer, error) {
	buf := NewBuffer()
	buf.AppendFwd(compileExpr(n.Expr))
	buf.PushFwd(bytecode.InsRelativeJumpIfFalse(2))
	reverseIdx := buf.PushFwd(bytecode.InsReverse(0))
	buf.LinkFwdToBkwd(reverseIdx)
	return buf, nil
}

// callStmt implements spec.md §4.4.1's call/uncall template. Stolen
// arguments are handed off the caller's registers onto the stack before
// the call regardless of direction; an uncall site skips re-evaluating
// its borrowed arguments and simply runs Call on the way back, since
// Uncall's own VM semantics already restore what Call's did. Backward
// here is therefore always a single instruction: the call's own
// opposite.
func callStmt(n *st.CallNode) (*Buffer, error) {
	buf := NewBuffer()
	for i := len(n.StolenArgs) - 1; i >= 0; i-- {
		r := n.StolenArgs[i]
		buf.PushFwd(bytecode.InsLoadRegister(r))
		buf.PushFwd(bytecode.InsFreeRegister(r))
	}

	if n.IsUncall {
		buf.PushBkwd(bytecode.InsCall(n.FuncIdx))
		buf.PushFwd(bytecode.InsUncall(n.FuncIdx))
	} else {
		for i := len(n.BorrowArgs) - 1; i >= 0; i-- {
			buf.AppendFwd(compileLookup(n.BorrowArgs[i]))
		}
		buf.PushFwd(bytecode.InsCall(n.FuncIdx))
		buf.PushBkwd(bytecode.InsUncall(n.FuncIdx))
	}

	for i := len(n.ReturnArgs) - 1; i >= 0; i-- {
		buf.PushFwd(bytecode.InsStoreRegister(n.ReturnArgs[i]))
	}

	if n.Mono {
		if err := buf.ClearBkwd(); err != nil {
			return nil, err
		}
	}
	return buf, nil
}
