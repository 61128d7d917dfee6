package lower

import (
	"janus/proto"
	"janus/pt"
	"janus/st"
)

// Module lowers every function of m, plus its synthesized global
// function, against the given prototype table.
func Module(m pt.Module, protos map[string]*proto.FunctionPrototype) (*st.Module, error) {
	global, err := Function(m.GlobalFunc, protos)
	if err != nil {
		return nil, err
	}

	funcs := make([]*st.Function, len(m.Functions))
	nameToIdx := make(map[string]int, len(m.Functions))
	for i, decl := range m.Functions {
		f, err := Function(decl, protos)
		if err != nil {
			return nil, err
		}
		funcs[i] = f
		nameToIdx[decl.Name] = i
	}

	for _, f := range funcs {
		resolveCallIndices(f.Stmts, nameToIdx)
	}
	resolveCallIndices(global.Stmts, nameToIdx)

	mainIdx := -1
	if idx, ok := nameToIdx["main"]; ok {
		mainIdx = idx
	}

	return &st.Module{Functions: funcs, MainIdx: mainIdx, GlobalFunc: global}, nil
}

// resolveCallIndices fills in every CallNode's FuncIdx now that every
// function's position in the module is known, recursing into nested
// blocks (if/while/for/do-yield bodies).
func resolveCallIndices(stmts []st.Statement, nameToIdx map[string]int) {
	for _, s := range stmts {
		switch n := s.(type) {
		case *st.CallNode:
			if idx, ok := nameToIdx[n.Name]; ok {
				n.FuncIdx = idx
			}
		case *st.IfNode:
			resolveCallIndices(n.IfStmts, nameToIdx)
			resolveCallIndices(n.ElseStmts, nameToIdx)
		case *st.WhileNode:
			resolveCallIndices(n.Stmts, nameToIdx)
		case *st.ForNode:
			resolveCallIndices(n.Stmts, nameToIdx)
		case *st.DoYieldNode:
			resolveCallIndices(n.DoStmts, nameToIdx)
			resolveCallIndices(n.YieldStmts, nameToIdx)
		}
	}
}
