package lower

import (
	"janus/diag"
	"janus/proto"
	"janus/pt"
	"janus/st"
	"janus/synctx"
)

// Function lowers one complete function declaration into an st.Function,
// wiring the prototype's parameter roles through a fresh synctx.Context.
func Function(decl pt.FunctionDecl, protos map[string]*proto.FunctionPrototype) (*st.Function, error) {
	p, err := protoFor(decl, protos)
	if err != nil {
		return nil, err
	}

	ctx := synctx.New(protos)
	if err := ctx.InitFunc(decl, p); err != nil {
		return nil, err
	}

	stmts, err := Block(ctx, decl.Stmts)
	if err != nil {
		return nil, err
	}

	if err := ctx.EndFunc(decl); err != nil {
		return nil, err
	}

	return &st.Function{
		Name:            decl.Name,
		Stmts:           stmts,
		BorrowRegisters: ctx.BorrowRegisters(),
		StealRegisters:  ctx.StealRegisters(),
		ReturnRegisters: ctx.ReturnRegisters(),
		Consts:          ctx.Consts(),
		Strings:         ctx.Strings(),
		NumRegisters:    ctx.NumRegisters(),
	}, nil
}

func protoFor(decl pt.FunctionDecl, protos map[string]*proto.FunctionPrototype) (*proto.FunctionPrototype, error) {
	p, ok := protos[decl.Name]
	if !ok {
		return nil, diag.Errorf(decl.At, diag.UnknownFunction, "unknown function %q", decl.Name)
	}
	return p, nil
}
