package lower

import (
	"janus/diag"
	"janus/pt"
	"janus/st"
	"janus/synctx"
)

// Block lowers a sequence of statements against ctx, in order.
func Block(ctx *synctx.Context, stmts []pt.Stmt) ([]st.Statement, error) {
	out := make([]st.Statement, 0, len(stmts))
	for _, s := range stmts {
		lowered, err := Stmt(ctx, s)
		if err != nil {
			return nil, err
		}
		out = append(out, lowered)
	}
	return out, nil
}

func allMono(stmts []st.Statement) bool {
	for _, s := range stmts {
		if !s.IsMono() {
			return false
		}
	}
	return true
}

// Stmt lowers a single parse-tree statement against ctx.
func Stmt(ctx *synctx.Context, s pt.Stmt) (st.Statement, error) {
	switch n := s.(type) {
	case *pt.PrintNode:
		return lowerPrint(ctx, n)
	case *pt.LetUnletNode:
		return lowerLetUnlet(ctx, n)
	case *pt.RefUnrefNode:
		return lowerRefUnref(ctx, n)
	case *pt.ModopNode:
		return lowerModop(ctx, n)
	case *pt.PushPullNode:
		return lowerPushPull(ctx, n)
	case *pt.IfNode:
		return lowerIf(ctx, n)
	case *pt.WhileNode:
		return lowerWhile(ctx, n)
	case *pt.ForNode:
		return lowerFor(ctx, n)
	case *pt.DoYieldNode:
		return lowerDoYield(ctx, n)
	case *pt.CatchNode:
		return lowerCatch(ctx, n)
	case *pt.CallNode:
		return lowerCall(ctx, n)
	}
	return nil, diag.InternalErrorf("lower: unhandled statement type %T", s)
}

func lowerPrint(ctx *synctx.Context, n *pt.PrintNode) (st.Statement, error) {
	items := make([]st.Expression, len(n.Items))
	for i, item := range n.Items {
		lowered, err := Expr(ctx, item)
		if err != nil {
			return nil, err
		}
		items[i] = lowered
	}
	return &st.PrintNode{Items: items, Newline: n.Newline}, nil
}

func lowerLetUnlet(ctx *synctx.Context, n *pt.LetUnletNode) (st.Statement, error) {
	if !n.IsUnlet {
		rhs, err := Expr(ctx, n.RHS)
		if err != nil {
			return nil, err
		}
		ref, err := ctx.CreateVariable(n.At, n.Name)
		if err != nil {
			return nil, err
		}
		mono := rhs.IsMono() || isMonoName(n.Name)
		return &st.LetUnletNode{IsUnlet: false, Register: ref.Register, RHS: rhs, Mono: mono}, nil
	}

	ref, err := ctx.LookupVariable(n.At, n.Name)
	if err != nil {
		return nil, err
	}
	if err := ctx.CheckSinglyOwned(n.At, ref.Var); err != nil {
		return nil, err
	}
	rhs, err := Expr(ctx, n.RHS)
	if err != nil {
		return nil, err
	}
	register := ref.Register
	if _, err := ctx.RemoveVariable(n.At, n.Name); err != nil {
		return nil, err
	}
	mono := rhs.IsMono() || isMonoName(n.Name)
	return &st.LetUnletNode{IsUnlet: true, Register: register, RHS: rhs, Mono: mono}, nil
}

func lowerRefUnref(ctx *synctx.Context, n *pt.RefUnrefNode) (st.Statement, error) {
	if !n.IsUnref {
		targetRef, err := ctx.LookupVariable(n.RHS.At, n.RHS.Name)
		if err != nil {
			return nil, err
		}
		indices, err := lowerIndices(ctx, n.RHS.Indices)
		if err != nil {
			return nil, err
		}
		interior := len(n.RHS.Indices) > 0
		rhsLookup := st.NewLookupNode(targetRef.Register, indices, targetRef.Var.ID, isMonoName(n.RHS.Name))
		newRef, err := ctx.CreateRef(n.At, n.Name, targetRef, interior, false)
		if err != nil {
			return nil, err
		}
		mono := rhsLookup.IsMono() || isMonoName(n.Name)
		return &st.RefUnrefNode{IsUnref: false, Register: newRef.Register, RHS: rhsLookup, Mono: mono}, nil
	}

	ref, err := ctx.LookupVariable(n.At, n.Name)
	if err != nil {
		return nil, err
	}
	partnerRef, err := ctx.LookupVariable(n.RHS.At, n.RHS.Name)
	if err != nil {
		return nil, err
	}
	indices, err := lowerIndices(ctx, n.RHS.Indices)
	if err != nil {
		return nil, err
	}
	rhsLookup := st.NewLookupNode(partnerRef.Register, indices, partnerRef.Var.ID, isMonoName(n.RHS.Name))
	register := ref.Register
	if _, err := ctx.RemoveRef(n.At, n.Name, partnerRef); err != nil {
		return nil, err
	}
	mono := rhsLookup.IsMono() || isMonoName(n.Name)
	return &st.RefUnrefNode{IsUnref: true, Register: register, RHS: rhsLookup, Mono: mono}, nil
}

func lowerIndices(ctx *synctx.Context, indices []pt.Expr) ([]st.Expression, error) {
	out := make([]st.Expression, len(indices))
	for i, idx := range indices {
		lowered, err := Expr(ctx, idx)
		if err != nil {
			return nil, err
		}
		out[i] = lowered
	}
	return out, nil
}

func lowerModop(ctx *synctx.Context, n *pt.ModopNode) (st.Statement, error) {
	lookupNode, err := lookup(ctx, n.Lookup)
	if err != nil {
		return nil, err
	}
	rhs, err := Expr(ctx, n.RHS)
	if err != nil {
		return nil, err
	}
	mono := lookupNode.IsMono() || rhs.IsMono()
	return &st.ModopNode{Lookup: lookupNode, RHS: rhs, Op: n.Op, Mono: mono}, nil
}

func lowerPushPull(ctx *synctx.Context, n *pt.PushPullNode) (st.Statement, error) {
	arrayRef, err := ctx.LookupVariable(n.Lookup.At, n.Lookup.Name)
	if err != nil {
		return nil, err
	}
	if err := ctx.CheckRefIsResizable(n.At, n.Lookup.Name, arrayRef); err != nil {
		return nil, err
	}
	lookupNode, err := lookup(ctx, n.Lookup)
	if err != nil {
		return nil, err
	}

	var register int
	if n.IsPush {
		ref, err := ctx.LookupVariable(n.At, n.Name)
		if err != nil {
			return nil, err
		}
		if err := ctx.CheckSinglyOwned(n.At, ref.Var); err != nil {
			return nil, err
		}
		register = ref.Register
		if _, err := ctx.RemoveVariable(n.At, n.Name); err != nil {
			return nil, err
		}
	} else {
		ref, err := ctx.CreateVariable(n.At, n.Name)
		if err != nil {
			return nil, err
		}
		register = ref.Register
	}

	mono := isMonoName(n.Name) || lookupNode.IsMono()
	return &st.PushPullNode{IsPush: n.IsPush, Register: register, Lookup: lookupNode, Mono: mono}, nil
}

func lowerIf(ctx *synctx.Context, n *pt.IfNode) (st.Statement, error) {
	fwd, err := Expr(ctx, n.FwdExpr)
	if err != nil {
		return nil, err
	}
	ifStmts, err := Block(ctx, n.IfStmts)
	if err != nil {
		return nil, err
	}
	elseStmts, err := Block(ctx, n.ElseStmts)
	if err != nil {
		return nil, err
	}
	bkwd, err := Expr(ctx, n.BkwdExpr)
	if err != nil {
		return nil, err
	}
	mono := fwd.IsMono() && bkwd.IsMono() && allMono(ifStmts) && allMono(elseStmts)
	return &st.IfNode{FwdExpr: fwd, IfStmts: ifStmts, ElseStmts: elseStmts, BkwdExpr: bkwd, Mono: mono}, nil
}

func lowerWhile(ctx *synctx.Context, n *pt.WhileNode) (st.Statement, error) {
	fwd, err := Expr(ctx, n.FwdExpr)
	if err != nil {
		return nil, err
	}
	stmts, err := Block(ctx, n.Stmts)
	if err != nil {
		return nil, err
	}
	var bkwd st.Expression
	if n.BkwdExpr != nil {
		bkwd, err = Expr(ctx, n.BkwdExpr)
		if err != nil {
			return nil, err
		}
	}
	mono := n.BkwdExpr == nil
	return &st.WhileNode{FwdExpr: fwd, Stmts: stmts, BkwdExpr: bkwd, Mono: mono}, nil
}

func lowerFor(ctx *synctx.Context, n *pt.ForNode) (st.Statement, error) {
	targetRef, err := ctx.LookupVariable(n.Iterator.At, n.Iterator.Name)
	if err != nil {
		return nil, err
	}
	indices, err := lowerIndices(ctx, n.Iterator.Indices)
	if err != nil {
		return nil, err
	}
	iterator := st.NewLookupNode(targetRef.Register, indices, targetRef.Var.ID, isMonoName(n.Iterator.Name))

	iterRef, err := ctx.CreateRef(n.At, n.IterVar, targetRef, true, true)
	if err != nil {
		return nil, err
	}
	stmts, err := Block(ctx, n.Stmts)
	if err != nil {
		return nil, err
	}
	ctx.ReleaseForVar(n.IterVar)

	mono := iterator.IsMono() && allMono(stmts)
	return &st.ForNode{Register: iterRef.Register, Iterator: iterator, Stmts: stmts, Mono: mono}, nil
}

func lowerDoYield(ctx *synctx.Context, n *pt.DoYieldNode) (st.Statement, error) {
	doStmts, err := Block(ctx, n.DoStmts)
	if err != nil {
		return nil, err
	}
	yieldStmts, err := Block(ctx, n.YieldStmts)
	if err != nil {
		return nil, err
	}
	return &st.DoYieldNode{DoStmts: doStmts, YieldStmts: yieldStmts}, nil
}

func lowerCatch(ctx *synctx.Context, n *pt.CatchNode) (st.Statement, error) {
	expr, err := Expr(ctx, n.Expr)
	if err != nil {
		return nil, err
	}
	return &st.CatchNode{Expr: expr}, nil
}

func lowerCall(ctx *synctx.Context, n *pt.CallNode) (st.Statement, error) {
	p, err := ctx.LookupFunction(n.At, n.Name)
	if err != nil {
		return nil, err
	}

	if len(n.BorrowArgs) != len(p.BorrowParams) || len(n.StolenArgs) != len(p.StealParams) || len(n.ReturnArgs) != len(p.ReturnParams) {
		return nil, diag.Errorf(n.At, diag.ArityMismatch, "call to %q supplies the wrong number of arguments for its parameter lists", n.Name)
	}

	// used_links/used_vars catch the same variable passed under two
	// different link annotations, or the same link annotation passed
	// two different variables, within this one call (mirrors
	// syntaxchecker.rs's to_syntax_node for PT::CallNode).
	usedLinks := make(map[*st.Variable]string)
	usedVars := make(map[string]*st.Variable)

	borrowArgs := make([]*st.LookupNode, len(n.BorrowArgs))
	for i, arg := range n.BorrowArgs {
		protoLink := p.BorrowParams[i]
		ref, err := ctx.LookupVariable(arg.At, arg.Name)
		if err != nil {
			return nil, err
		}

		if prevLink, ok := usedLinks[ref.Var]; ok && prevLink != protoLink.Link {
			return nil, diag.Errorf(n.At, diag.LinkMismatch, "%q is passed under inconsistent links in this call", arg.Name)
		}
		usedLinks[ref.Var] = protoLink.Link
		if protoLink.Link != "" {
			if prevVar, ok := usedVars[protoLink.Link]; ok && prevVar != ref.Var {
				return nil, diag.Errorf(n.At, diag.LinkMismatch, "link %q is passed two different variables in this call", protoLink.Link)
			}
			usedVars[protoLink.Link] = ref.Var
		}

		if protoLink.IsRef {
			if !protoLink.IsInterior && ref.IsInterior {
				return nil, diag.Errorf(n.At, diag.ExteriorExpected, "%q is an interior reference but %q's parameter expects an exterior one", arg.Name, n.Name)
			}
		} else if err := ctx.CheckSinglyOwned(n.At, ref.Var); err != nil {
			return nil, err
		}

		lowered, err := lookup(ctx, arg)
		if err != nil {
			return nil, err
		}
		borrowArgs[i] = lowered
	}

	stolenArgs := make([]int, len(n.StolenArgs))
	for i, name := range n.StolenArgs {
		ref, err := ctx.LookupVariable(n.At, name)
		if err != nil {
			return nil, err
		}
		if err := ctx.CheckSinglyOwned(n.At, ref.Var); err != nil {
			return nil, err
		}
		stolenArgs[i] = ref.Register
		if _, err := ctx.RemoveVariable(n.At, name); err != nil {
			return nil, err
		}
	}

	returnArgs := make([]int, len(n.ReturnArgs))
	for i, name := range n.ReturnArgs {
		ref, err := ctx.CreateVariable(n.At, name)
		if err != nil {
			return nil, err
		}
		returnArgs[i] = ref.Register
	}

	return &st.CallNode{
		IsUncall:   n.IsUncall,
		Name:       n.Name,
		FuncIdx:    -1,
		BorrowArgs: borrowArgs,
		StolenArgs: stolenArgs,
		ReturnArgs: returnArgs,
		Mono:       false,
	}, nil
}
