package codegen

import (
	"janus/bytecode"
	"janus/st"
)

// Function compiles a lowered st.Function into its bytecode form. Around
// the statement sequence itself it wraps the register-ownership prologue
// and epilogue spec.md §3.2's borrow/steal/return roles require: a
// borrowed register is saved and restored around the call, a stolen one
// is claimed forward and given back on the way out, and a returned one
// is handed over forward and reclaimed on the way back.
func Function(f *st.Function) (*bytecode.Function, error) {
	buf := NewBuffer()

	for _, r := range f.BorrowRegisters {
		buf.PushFwd(bytecode.InsStoreRegister(r))
	}
	for _, r := range f.StealRegisters {
		buf.PushFwd(bytecode.InsStoreRegister(r))
		buf.PushBkwd(bytecode.InsLoadRegister(r))
	}

	body, err := Sequence(f.Stmts)
	if err != nil {
		return nil, err
	}
	buf.Extend(body)

	for _, r := range f.ReturnRegisters {
		buf.PushFwd(bytecode.InsLoadRegister(r))
		buf.PushBkwd(bytecode.InsStoreRegister(r))
	}
	for _, r := range f.BorrowRegisters {
		buf.PushBkwd(bytecode.InsStoreRegister(r))
	}

	if err := buf.Finalize(); err != nil {
		return nil, err
	}

	return &bytecode.Function{
		Name:            f.Name,
		Consts:          f.Consts,
		Strings:         f.Strings,
		Forward:         buf.Fwd,
		Backward:        buf.Bkwd,
		NumRegisters:    f.NumRegisters,
		BorrowRegisters: f.BorrowRegisters,
		StealRegisters:  f.StealRegisters,
		ReturnRegisters: f.ReturnRegisters,
	}, nil
}
