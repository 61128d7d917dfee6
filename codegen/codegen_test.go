package codegen

import (
	"math/big"
	"testing"

	"janus/bytecode"
	"janus/st"
)

func ratConst(n int64) *big.Rat { return big.NewRat(n, 1) }

func instrsEqual(t *testing.T, label string, got, want []bytecode.Instruction) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("%s: length mismatch: got %v, want %v", label, got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("%s: instruction %d: got %v, want %v", label, i, got[i], want[i])
		}
	}
}

// TestLetUnlet covers spec.md §8 scenario 1: "let x := 3;" compiles to
// LoadConst/UniqueVar/StoreRegister forward and a single FreeRegister
// backward.
func TestLetUnlet(t *testing.T) {
	n := &st.LetUnletNode{
		Register: 0,
		RHS:      st.NewFractionNode(0),
	}
	buf, err := letUnletStmt(n)
	if err != nil {
		t.Fatal(err)
	}
	if err := buf.Finalize(); err != nil {
		t.Fatal(err)
	}
	instrsEqual(t, "fwd", buf.Fwd, []bytecode.Instruction{
		bytecode.InsLoadConst(0),
		bytecode.InsUniqueVar(),
		bytecode.InsStoreRegister(0),
	})
	instrsEqual(t, "bkwd", buf.Bkwd, []bytecode.Instruction{
		bytecode.InsFreeRegister(0),
	})
}

// TestUnletIsLetInverse checks unlet produces exactly let's mirror image.
func TestUnletIsLetInverse(t *testing.T) {
	let, err := letUnletStmt(&st.LetUnletNode{Register: 2, RHS: st.NewFractionNode(1)})
	if err != nil {
		t.Fatal(err)
	}
	unlet, err := letUnletStmt(&st.LetUnletNode{IsUnlet: true, Register: 2, RHS: st.NewFractionNode(1)})
	if err != nil {
		t.Fatal(err)
	}
	instrsEqual(t, "unlet.fwd vs let.bkwd(pre-reverse)", unlet.Fwd, []bytecode.Instruction{bytecode.InsFreeRegister(2)})
	instrsEqual(t, "let.fwd", let.Fwd, []bytecode.Instruction{
		bytecode.InsLoadConst(1), bytecode.InsUniqueVar(), bytecode.InsStoreRegister(2),
	})
}

// TestModop covers spec.md §8 scenario 2: "x += 2;" with its operator
// inverse on the way back.
func TestModop(t *testing.T) {
	n := &st.ModopNode{
		Lookup: st.NewLookupNode(0, nil, 0, false),
		RHS:    st.NewFractionNode(1),
		Op:     bytecode.OpAdd,
	}
	buf, err := modopStmt(n)
	if err != nil {
		t.Fatal(err)
	}
	if err := buf.Finalize(); err != nil {
		t.Fatal(err)
	}
	instrsEqual(t, "fwd", buf.Fwd, []bytecode.Instruction{
		bytecode.InsLoadRegister(0),
		bytecode.InsDuplicateRef(),
		bytecode.InsLoadConst(1),
		{Op: bytecode.BinopAdd},
		bytecode.InsStore(),
	})
	instrsEqual(t, "bkwd", buf.Bkwd, []bytecode.Instruction{
		bytecode.InsLoadRegister(0),
		bytecode.InsDuplicateRef(),
		bytecode.InsLoadConst(1),
		{Op: bytecode.BinopSub},
		bytecode.InsStore(),
	})
}

// buildFunction assembles and finalizes an st.Function, returning the
// compiled bytecode.Function and any sanity violations.
func buildFunction(t *testing.T, f *st.Function) (*bytecode.Function, []error) {
	t.Helper()
	bc, err := Function(f)
	if err != nil {
		t.Fatalf("Function: %v", err)
	}
	return bc, SanityCheck(bc)
}

// TestIfElseSanity covers spec.md §8 scenario 3: an if/else whose
// backward condition reselects the same arm the forward pass took. The
// structural invariants (jump locality, reverse pairing, register
// conservation) are checked for both arms via SanityCheck.
func TestIfElseSanity(t *testing.T) {
	cond := func() st.Expression { return st.NewLookupNode(0, nil, 0, false) }
	f := &st.Function{
		Name:         "f",
		NumRegisters: 2,
		Consts:       []*big.Rat{ratConst(3), ratConst(1), ratConst(2)},
		Stmts: []st.Statement{
			&st.LetUnletNode{Register: 0, RHS: st.NewFractionNode(0)},
			&st.IfNode{
				FwdExpr: cond(),
				IfStmts: []st.Statement{
					&st.LetUnletNode{Register: 1, RHS: st.NewFractionNode(1)},
				},
				ElseStmts: []st.Statement{
					&st.LetUnletNode{Register: 1, RHS: st.NewFractionNode(2)},
				},
				BkwdExpr: cond(),
			},
			&st.LetUnletNode{IsUnlet: true, Register: 1, RHS: st.NewFractionNode(1)},
			&st.LetUnletNode{IsUnlet: true, Register: 0, RHS: st.NewFractionNode(0)},
		},
	}
	bc, violations := buildFunction(t, f)
	for _, v := range violations {
		t.Errorf("sanity: %v", v)
	}
	if len(bc.Forward) == 0 || len(bc.Backward) == 0 {
		t.Fatalf("expected non-empty forward/backward streams")
	}
}

// TestWhileSanity covers spec.md §8 scenario 4: a while loop whose
// backward form decrements/increments symmetrically with the forward
// one, checked structurally via SanityCheck.
func TestWhileSanity(t *testing.T) {
	cond := func() st.Expression { return st.NewLookupNode(0, nil, 0, false) }
	f := &st.Function{
		Name:         "f",
		NumRegisters: 1,
		BorrowRegisters: []int{0},
		ReturnRegisters: []int{0},
		Consts:       []*big.Rat{ratConst(1)},
		Stmts: []st.Statement{
			&st.WhileNode{
				FwdExpr: cond(),
				Stmts: []st.Statement{
					&st.ModopNode{
						Lookup: st.NewLookupNode(0, nil, 0, false),
						RHS:    st.NewFractionNode(0),
						Op:     bytecode.OpSub,
					},
				},
				BkwdExpr: cond(),
			},
		},
	}
	_, violations := buildFunction(t, f)
	for _, v := range violations {
		t.Errorf("sanity: %v", v)
	}
}

// TestForLoopSanity covers spec.md §8 scenario 6: CreateIter/StepIter
// forward and backward symmetric structure.
func TestForLoopSanity(t *testing.T) {
	f := &st.Function{
		Name:            "f",
		NumRegisters:    2,
		BorrowRegisters: []int{0},
		ReturnRegisters: []int{0},
		Stmts: []st.Statement{
			&st.ForNode{
				Register: 1,
				Iterator: st.NewLookupNode(0, nil, 0, false),
				Stmts: []st.Statement{
					&st.PrintNode{Items: []st.Expression{st.NewLookupNode(1, nil, 1, false)}},
				},
			},
		},
	}
	bc, violations := buildFunction(t, f)
	for _, v := range violations {
		t.Errorf("sanity: %v", v)
	}
	// Forward[0] is the borrow prologue's StoreRegister(0).
	if bc.Forward[1].Op != bytecode.LoadRegister {
		t.Fatalf("expected the iterator lookup right after the borrow prologue, got %v", bc.Forward[1])
	}
	foundCreateIter, foundStepIter := false, false
	for _, ins := range bc.Forward {
		switch ins.Op {
		case bytecode.CreateIter:
			foundCreateIter = true
		case bytecode.StepIter:
			foundStepIter = true
		}
	}
	if !foundCreateIter || !foundStepIter {
		t.Fatalf("expected both CreateIter and StepIter in forward stream: %v", bc.Forward)
	}
}

// TestCatchLinking covers spec.md §8 scenario 5: a catch's forward
// Reverse placeholder must resolve to a Reverse sitting in the backward
// stream once the function is finalized.
func TestCatchLinking(t *testing.T) {
	f := &st.Function{
		Name:            "f",
		NumRegisters:    1,
		BorrowRegisters: []int{0},
		ReturnRegisters: []int{0},
		Consts:          []*big.Rat{ratConst(1)},
		Stmts: []st.Statement{
			&st.CatchNode{Expr: st.NewLookupNode(0, nil, 0, false)},
			&st.ModopNode{
				Lookup: st.NewLookupNode(0, nil, 0, false),
				RHS:    st.NewFractionNode(0),
				Op:     bytecode.OpAdd,
			},
		},
	}
	bc, violations := buildFunction(t, f)
	for _, v := range violations {
		t.Errorf("sanity: %v", v)
	}
	foundReverse := false
	for _, ins := range bc.Forward {
		if ins.Op == bytecode.Reverse {
			foundReverse = true
			if bc.Backward[ins.Operand].Op != bytecode.Reverse {
				t.Fatalf("forward Reverse target %d is not itself a Reverse: %v", ins.Operand, bc.Backward[ins.Operand])
			}
		}
	}
	if !foundReverse {
		t.Fatalf("expected a Reverse placeholder in the forward stream")
	}
}

// TestDoYieldAndCallSanity exercises the do/yield undo-block construct
// alongside a call statement in the same function, the two constructs
// spec.md §4.4.1 calls out as needing exact push/extend ordering.
func TestDoYieldAndCallSanity(t *testing.T) {
	f := &st.Function{
		Name:            "f",
		NumRegisters:    2,
		BorrowRegisters: []int{0},
		ReturnRegisters: []int{0},
		Consts:          []*big.Rat{ratConst(5)},
		Stmts: []st.Statement{
			&st.DoYieldNode{
				DoStmts: []st.Statement{
					&st.LetUnletNode{Register: 1, RHS: st.NewFractionNode(0)},
				},
				YieldStmts: []st.Statement{
					&st.PrintNode{Items: []st.Expression{st.NewLookupNode(1, nil, 1, false)}},
				},
			},
			&st.CallNode{
				Name:       "g",
				FuncIdx:    0,
				BorrowArgs: []*st.LookupNode{st.NewLookupNode(0, nil, 0, false)},
			},
		},
	}
	_, violations := buildFunction(t, f)
	for _, v := range violations {
		t.Errorf("sanity: %v", v)
	}
}

// TestReversedIsInvolution checks that reversing a Buffer twice restores
// its original forward/backward content, a basic algebraic sanity check
// on the Extend/Reversed machinery underlying do/yield.
func TestReversedIsInvolution(t *testing.T) {
	buf := NewBuffer()
	buf.PushFwd(bytecode.InsLoadConst(0))
	buf.PushFwd(bytecode.InsStoreRegister(0))
	buf.PushBkwd(bytecode.InsFreeRegister(0))

	twice := buf.Reversed().Reversed()
	instrsEqual(t, "fwd", twice.Fwd, buf.Fwd)
	instrsEqual(t, "bkwd", twice.Bkwd, buf.Bkwd)
}

// TestClearBkwdRejectsPendingLink checks that ClearBkwd refuses to drop
// a backward stream still holding an unresolved Reverse placeholder.
func TestClearBkwdRejectsPendingLink(t *testing.T) {
	buf := NewBuffer()
	buf.PushBkwd(bytecode.InsReverse(0))
	if err := buf.ClearBkwd(); err == nil {
		t.Fatalf("expected ClearBkwd to reject a pending Reverse placeholder")
	}
}

// TestClearBkwdAllowsOrdinaryContent checks the common case: a backward
// stream with no pending link clears without error.
func TestClearBkwdAllowsOrdinaryContent(t *testing.T) {
	buf := NewBuffer()
	buf.PushBkwd(bytecode.InsFreeRegister(0))
	if err := buf.ClearBkwd(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(buf.Bkwd) != 0 {
		t.Fatalf("expected Bkwd to be cleared, got %v", buf.Bkwd)
	}
}
