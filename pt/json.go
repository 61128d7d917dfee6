package pt

import (
	"encoding/json"
	"fmt"
	"math/big"

	"janus/bytecode"
)

// The parse tree's Expr and Stmt are interfaces, so decoding one from
// JSON needs a discriminator; every node is wrapped as
// {"node": "<kind>", ...its own fields}. This is cmd/janusc's wire
// format for "a parse tree with the node shapes of spec.md §3/§4"
// (spec.md §6) — the grammar/parser themselves are out of scope, so
// nothing here is dictated beyond that contract.

type jsonNode struct {
	Node string `json:"node"`

	At   Pos    `json:"at"`
	Name string `json:"name"`

	// expression fields
	Value      string            `json:"value"`
	Items      []json.RawMessage `json:"items"`
	Item       json.RawMessage   `json:"item"`
	Dimensions json.RawMessage   `json:"dimensions"`
	Indices    []json.RawMessage `json:"indices"`
	LHS        json.RawMessage   `json:"lhs"`
	RHSExpr    json.RawMessage   `json:"rhs"`
	Operand    json.RawMessage   `json:"operand"`
	Op         string            `json:"op"`
	Newline    bool              `json:"newline"`

	// statement fields
	IsUnlet  bool              `json:"is_unlet"`
	IsUnref  bool              `json:"is_unref"`
	IsPush   bool              `json:"is_push"`
	IsUncall bool              `json:"is_uncall"`
	RHSLook  json.RawMessage   `json:"rhs_lookup"`
	Lookup   json.RawMessage   `json:"lookup"`
	FwdExpr  json.RawMessage   `json:"fwd_expr"`
	BkwdExpr json.RawMessage   `json:"bkwd_expr"`
	IfStmts  []json.RawMessage `json:"if_stmts"`
	ElseStmts []json.RawMessage `json:"else_stmts"`
	Stmts    []json.RawMessage `json:"stmts"`
	IterVar  string            `json:"iter_var"`
	Iterator json.RawMessage   `json:"iterator"`
	DoStmts  []json.RawMessage `json:"do_stmts"`
	YieldStmts []json.RawMessage `json:"yield_stmts"`
	Expr     json.RawMessage   `json:"expr"`
	BorrowArgs []json.RawMessage `json:"borrow_args"`
	StolenArgs []string        `json:"stolen_args"`
	ReturnArgs []string        `json:"return_args"`

	// function/module fields
	OwnedLinks   []string          `json:"owned_links"`
	BorrowParams []jsonParam       `json:"borrow_params"`
	StealParams  []jsonParam       `json:"steal_params"`
	ReturnParams []jsonParam       `json:"return_params"`
	GlobalFunc   json.RawMessage   `json:"global_func"`
	Functions    []json.RawMessage `json:"functions"`
}

type jsonParam struct {
	Name  string `json:"name"`
	IsRef bool   `json:"is_ref"`
	Link  string `json:"link"`
}

func decodeExpr(raw json.RawMessage) (Expr, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var n jsonNode
	if err := json.Unmarshal(raw, &n); err != nil {
		return nil, fmt.Errorf("pt: decoding expression: %w", err)
	}
	switch n.Node {
	case "fraction":
		v := new(big.Rat)
		if _, ok := v.SetString(n.Value); !ok {
			return nil, fmt.Errorf("pt: invalid fraction literal %q", n.Value)
		}
		return &FractionNode{At: n.At, Value: v}, nil

	case "string":
		return &StringNode{At: n.At, Value: n.Value}, nil

	case "array_literal":
		items, err := decodeExprs(n.Items)
		if err != nil {
			return nil, err
		}
		return &ArrayLiteralNode{At: n.At, Items: items}, nil

	case "array_repeat":
		item, err := decodeExpr(n.Item)
		if err != nil {
			return nil, err
		}
		dims, err := decodeExpr(n.Dimensions)
		if err != nil {
			return nil, err
		}
		return &ArrayRepeatNode{At: n.At, Item: item, Dimensions: dims}, nil

	case "lookup":
		idx, err := decodeExprs(n.Indices)
		if err != nil {
			return nil, err
		}
		return &LookupNode{At: n.At, Name: n.Name, Indices: idx}, nil

	case "binop":
		lhs, err := decodeExpr(n.LHS)
		if err != nil {
			return nil, err
		}
		rhs, err := decodeExpr(n.RHSExpr)
		if err != nil {
			return nil, err
		}
		op, err := decodeOp(n.Op)
		if err != nil {
			return nil, err
		}
		return &BinopNode{At: n.At, LHS: lhs, RHS: rhs, Op: op}, nil

	case "uniop":
		operand, err := decodeExpr(n.Operand)
		if err != nil {
			return nil, err
		}
		op, err := decodeOp(n.Op)
		if err != nil {
			return nil, err
		}
		return &UniopNode{At: n.At, Expr: operand, Op: op}, nil
	}
	return nil, fmt.Errorf("pt: unknown expression node %q", n.Node)
}

func decodeExprs(raws []json.RawMessage) ([]Expr, error) {
	out := make([]Expr, len(raws))
	for i, r := range raws {
		e, err := decodeExpr(r)
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}

func decodeLookup(raw json.RawMessage) (*LookupNode, error) {
	e, err := decodeExpr(raw)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, nil
	}
	l, ok := e.(*LookupNode)
	if !ok {
		return nil, fmt.Errorf("pt: expected a lookup node, got %T", e)
	}
	return l, nil
}

func decodeOp(s string) (bytecode.Op, error) {
	switch s {
	case "add":
		return bytecode.OpAdd, nil
	case "sub":
		return bytecode.OpSub, nil
	case "mul":
		return bytecode.OpMul, nil
	case "div":
		return bytecode.OpDiv, nil
	case "and":
		return bytecode.OpAnd, nil
	case "or":
		return bytecode.OpOr, nil
	}
	return 0, fmt.Errorf("pt: unknown operator %q", s)
}

func decodeStmt(raw json.RawMessage) (Stmt, error) {
	var n jsonNode
	if err := json.Unmarshal(raw, &n); err != nil {
		return nil, fmt.Errorf("pt: decoding statement: %w", err)
	}
	switch n.Node {
	case "print":
		items, err := decodeExprs(n.Items)
		if err != nil {
			return nil, err
		}
		return &PrintNode{At: n.At, Items: items, Newline: n.Newline}, nil

	case "let_unlet":
		rhs, err := decodeExpr(n.RHSExpr)
		if err != nil {
			return nil, err
		}
		return &LetUnletNode{At: n.At, IsUnlet: n.IsUnlet, Name: n.Name, RHS: rhs}, nil

	case "ref_unref":
		rhs, err := decodeLookup(n.RHSLook)
		if err != nil {
			return nil, err
		}
		return &RefUnrefNode{At: n.At, IsUnref: n.IsUnref, Name: n.Name, RHS: rhs}, nil

	case "modop":
		lookup, err := decodeLookup(n.Lookup)
		if err != nil {
			return nil, err
		}
		rhs, err := decodeExpr(n.RHSExpr)
		if err != nil {
			return nil, err
		}
		op, err := decodeOp(n.Op)
		if err != nil {
			return nil, err
		}
		return &ModopNode{Lookup: lookup, Op: op, RHS: rhs}, nil

	case "push_pull":
		lookup, err := decodeLookup(n.Lookup)
		if err != nil {
			return nil, err
		}
		return &PushPullNode{At: n.At, IsPush: n.IsPush, Name: n.Name, Lookup: lookup}, nil

	case "if":
		fwd, err := decodeExpr(n.FwdExpr)
		if err != nil {
			return nil, err
		}
		bkwd, err := decodeExpr(n.BkwdExpr)
		if err != nil {
			return nil, err
		}
		ifStmts, err := decodeStmts(n.IfStmts)
		if err != nil {
			return nil, err
		}
		elseStmts, err := decodeStmts(n.ElseStmts)
		if err != nil {
			return nil, err
		}
		return &IfNode{FwdExpr: fwd, IfStmts: ifStmts, ElseStmts: elseStmts, BkwdExpr: bkwd}, nil

	case "while":
		fwd, err := decodeExpr(n.FwdExpr)
		if err != nil {
			return nil, err
		}
		bkwd, err := decodeExpr(n.BkwdExpr)
		if err != nil {
			return nil, err
		}
		stmts, err := decodeStmts(n.Stmts)
		if err != nil {
			return nil, err
		}
		return &WhileNode{FwdExpr: fwd, Stmts: stmts, BkwdExpr: bkwd}, nil

	case "for":
		iter, err := decodeLookup(n.Iterator)
		if err != nil {
			return nil, err
		}
		stmts, err := decodeStmts(n.Stmts)
		if err != nil {
			return nil, err
		}
		return &ForNode{At: n.At, IterVar: n.IterVar, Iterator: iter, Stmts: stmts}, nil

	case "do_yield":
		do, err := decodeStmts(n.DoStmts)
		if err != nil {
			return nil, err
		}
		yield, err := decodeStmts(n.YieldStmts)
		if err != nil {
			return nil, err
		}
		return &DoYieldNode{DoStmts: do, YieldStmts: yield}, nil

	case "catch":
		expr, err := decodeExpr(n.Expr)
		if err != nil {
			return nil, err
		}
		return &CatchNode{At: n.At, Expr: expr}, nil

	case "call":
		borrow := make([]*LookupNode, len(n.BorrowArgs))
		for i, r := range n.BorrowArgs {
			l, err := decodeLookup(r)
			if err != nil {
				return nil, err
			}
			borrow[i] = l
		}
		return &CallNode{
			At:         n.At,
			IsUncall:   n.IsUncall,
			Name:       n.Name,
			BorrowArgs: borrow,
			StolenArgs: n.StolenArgs,
			ReturnArgs: n.ReturnArgs,
		}, nil
	}
	return nil, fmt.Errorf("pt: unknown statement node %q", n.Node)
}

func decodeStmts(raws []json.RawMessage) ([]Stmt, error) {
	out := make([]Stmt, len(raws))
	for i, r := range raws {
		s, err := decodeStmt(r)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

func decodeParams(params []jsonParam) []FunctionParam {
	out := make([]FunctionParam, len(params))
	for i, p := range params {
		out[i] = FunctionParam{Name: p.Name, IsRef: p.IsRef, Link: p.Link}
	}
	return out
}

func decodeFunctionDecl(raw json.RawMessage) (FunctionDecl, error) {
	var n jsonNode
	if err := json.Unmarshal(raw, &n); err != nil {
		return FunctionDecl{}, fmt.Errorf("pt: decoding function: %w", err)
	}
	stmts, err := decodeStmts(n.Stmts)
	if err != nil {
		return FunctionDecl{}, err
	}
	return FunctionDecl{
		At:           n.At,
		Name:         n.Name,
		OwnedLinks:   n.OwnedLinks,
		BorrowParams: decodeParams(n.BorrowParams),
		StealParams:  decodeParams(n.StealParams),
		ReturnParams: decodeParams(n.ReturnParams),
		Stmts:        stmts,
	}, nil
}

// DecodeModule decodes a parse-tree Module from its JSON wire form.
func DecodeModule(data []byte) (Module, error) {
	var n jsonNode
	if err := json.Unmarshal(data, &n); err != nil {
		return Module{}, fmt.Errorf("pt: decoding module: %w", err)
	}
	global, err := decodeFunctionDecl(n.GlobalFunc)
	if err != nil {
		return Module{}, err
	}
	functions := make([]FunctionDecl, len(n.Functions))
	for i, f := range n.Functions {
		decl, err := decodeFunctionDecl(f)
		if err != nil {
			return Module{}, err
		}
		functions[i] = decl
	}
	return Module{GlobalFunc: global, Functions: functions}, nil
}
