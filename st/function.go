package st

import "math/big"

// Function is a fully lowered function body: statements plus the
// register layout and pools a SyntaxContext accumulated while lowering
// it (spec.md §3 "Function / Module (ST level)").
type Function struct {
	Name            string
	Stmts           []Statement
	BorrowRegisters []int
	StealRegisters  []int
	ReturnRegisters []int
	Consts          []*big.Rat
	Strings         []string
	NumRegisters    int
}

// Module is every lowered function plus the index of main and the
// separately-lowered global initializer (spec.md §4.5).
type Module struct {
	Functions  []*Function
	MainIdx    int // -1 if no "main" function was declared
	GlobalFunc *Function
}
