// Package bytecode defines the dual-direction instruction set and the
// Module/Function container consumed by the reversible stack VM
// (spec.md §6). Everything here is pure data: no analysis, no codegen.
package bytecode

import "fmt"

// OpCode identifies one VM instruction kind. Operand shapes vary by
// kind and are documented on the constructor functions below, mirroring
// the enumerated instruction set of spec.md §6.
type OpCode uint8

const (
	LoadConst OpCode = iota
	LoadRegister
	StoreRegister
	FreeRegister
	LoadGlobalRegister
	StoreGlobalRegister
	CreateInt
	UniqueVar
	DuplicateRef
	Store
	Subscript
	ArrayLiteral
	ArrayRepeat
	BinopAdd
	BinopSub
	BinopMul
	BinopDiv
	BinopAnd
	BinopOr
	Jump
	JumpIfTrue
	JumpIfFalse
	RelativeJump
	RelativeJumpIfTrue
	RelativeJumpIfFalse
	StepIter
	CreateIter
	Push
	Pull
	Call
	Uncall
	Reverse
	Print
)

var opNames = [...]string{
	LoadConst:           "LoadConst",
	LoadRegister:        "LoadRegister",
	StoreRegister:       "StoreRegister",
	FreeRegister:        "FreeRegister",
	LoadGlobalRegister:  "LoadGlobalRegister",
	StoreGlobalRegister: "StoreGlobalRegister",
	CreateInt:           "CreateInt",
	UniqueVar:           "UniqueVar",
	DuplicateRef:        "DuplicateRef",
	Store:               "Store",
	Subscript:           "Subscript",
	ArrayLiteral:        "ArrayLiteral",
	ArrayRepeat:         "ArrayRepeat",
	BinopAdd:            "BinopAdd",
	BinopSub:            "BinopSub",
	BinopMul:            "BinopMul",
	BinopDiv:            "BinopDiv",
	BinopAnd:            "BinopAnd",
	BinopOr:             "BinopOr",
	Jump:                "Jump",
	JumpIfTrue:          "JumpIfTrue",
	JumpIfFalse:         "JumpIfFalse",
	RelativeJump:        "RelativeJump",
	RelativeJumpIfTrue:  "RelativeJumpIfTrue",
	RelativeJumpIfFalse: "RelativeJumpIfFalse",
	StepIter:            "StepIter",
	CreateIter:          "CreateIter",
	Push:                "Push",
	Pull:                "Pull",
	Call:                "Call",
	Uncall:              "Uncall",
	Reverse:             "Reverse",
	Print:               "Print",
}

func (op OpCode) String() string {
	if int(op) < len(opNames) && opNames[op] != "" {
		return opNames[op]
	}
	return fmt.Sprintf("OpCode(%d)", op)
}

// relative reports whether op is one of the pre-finalize RelativeJump*
// instructions. StepIter is not included, although its operand is also
// relative to its own position until Finalize makes it absolute.
func (op OpCode) relative() bool {
	switch op {
	case RelativeJump, RelativeJumpIfTrue, RelativeJumpIfFalse:
		return true
	}
	return false
}

// Instruction is a single VM operation. Every instruction in spec.md §6
// carries at most one integer operand (a register index, constant/string
// pool index, instruction pointer, relative delta, or signed print
// count), so one Operand field suffices; Op determines how it is read.
type Instruction struct {
	Op      OpCode
	Operand int
}

func (i Instruction) String() string {
	switch i.Op {
	case UniqueVar, DuplicateRef, Store, ArrayRepeat,
		BinopAdd, BinopSub, BinopMul, BinopDiv, BinopAnd, BinopOr:
		return i.Op.String()
	default:
		return fmt.Sprintf("%s(%d)", i.Op, i.Operand)
	}
}

// Constructors below name each instruction the way spec.md §6 does;
// they exist so codegen reads like the templates in spec.md §4.4.1
// instead of a sea of untyped struct literals.

func InsLoadConst(idx int) Instruction           { return Instruction{LoadConst, idx} }
func InsLoadRegister(r int) Instruction           { return Instruction{LoadRegister, r} }
func InsStoreRegister(r int) Instruction          { return Instruction{StoreRegister, r} }
func InsFreeRegister(r int) Instruction           { return Instruction{FreeRegister, r} }
func InsLoadGlobalRegister(r int) Instruction     { return Instruction{LoadGlobalRegister, r} }
func InsStoreGlobalRegister(r int) Instruction    { return Instruction{StoreGlobalRegister, r} }
func InsCreateInt(v int) Instruction              { return Instruction{CreateInt, v} }
func InsUniqueVar() Instruction                   { return Instruction{Op: UniqueVar} }
func InsDuplicateRef() Instruction                { return Instruction{Op: DuplicateRef} }
func InsStore() Instruction                       { return Instruction{Op: Store} }
func InsSubscript(n int) Instruction              { return Instruction{Subscript, n} }
func InsArrayLiteral(n int) Instruction           { return Instruction{ArrayLiteral, n} }
func InsArrayRepeat() Instruction                 { return Instruction{Op: ArrayRepeat} }
func InsJump(ip int) Instruction                  { return Instruction{Jump, ip} }
func InsJumpIfTrue(ip int) Instruction            { return Instruction{JumpIfTrue, ip} }
func InsJumpIfFalse(ip int) Instruction           { return Instruction{JumpIfFalse, ip} }
func InsRelativeJump(delta int) Instruction       { return Instruction{RelativeJump, delta} }
func InsRelativeJumpIfTrue(delta int) Instruction { return Instruction{RelativeJumpIfTrue, delta} }
func InsRelativeJumpIfFalse(delta int) Instruction {
	return Instruction{RelativeJumpIfFalse, delta}
}
func InsStepIter(ip int) Instruction   { return Instruction{StepIter, ip} }
func InsCreateIter(r int) Instruction  { return Instruction{CreateIter, r} }
func InsPush(r int) Instruction        { return Instruction{Push, r} }
func InsPull(r int) Instruction        { return Instruction{Pull, r} }
func InsCall(idx int) Instruction      { return Instruction{Call, idx} }
func InsUncall(idx int) Instruction    { return Instruction{Uncall, idx} }
func InsReverse(idx int) Instruction   { return Instruction{Reverse, idx} }
func InsPrint(count int) Instruction   { return Instruction{Print, count} }

// Op is a reversible arithmetic/logical operator, shared by expression
// binop/uniop nodes and by ModopNode's in-place update instruction.
// It is distinct from OpCode: an Op names an operator in source, an
// OpCode names a VM instruction; Instr bridges the two.
type Op uint8

const (
	OpAdd Op = iota
	OpSub
	OpMul
	OpDiv
	OpAnd
	OpOr
)

// Instr returns the instruction that applies op to the top of stack.
func (op Op) Instr() Instruction {
	switch op {
	case OpAdd:
		return Instruction{Op: BinopAdd}
	case OpSub:
		return Instruction{Op: BinopSub}
	case OpMul:
		return Instruction{Op: BinopMul}
	case OpDiv:
		return Instruction{Op: BinopDiv}
	case OpAnd:
		return Instruction{Op: BinopAnd}
	case OpOr:
		return Instruction{Op: BinopOr}
	default:
		panic(fmt.Sprintf("bytecode: unknown Op %d", op))
	}
}

// Inverse returns the operator that undoes a "+=", "-=", "*=", "/="
// modop (spec.md §4.4.1's op↔inv_op table). And/Or have no modop
// inverse and are never passed here.
func (op Op) Inverse() Op {
	switch op {
	case OpAdd:
		return OpSub
	case OpSub:
		return OpAdd
	case OpMul:
		return OpDiv
	case OpDiv:
		return OpMul
	default:
		panic(fmt.Sprintf("bytecode: operator %v has no modop inverse", op))
	}
}
